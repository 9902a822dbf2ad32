package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/arloliu/mcnbt/nbt"
	"github.com/arloliu/mcnbt/region"
)

var errVerifyFailed = errors.New("verification failed")

type anvilFlags struct {
	x, z   int
	verify bool
	digest bool
}

func newAnvilCmd(opts *inspectOptions) *cobra.Command {
	flags := &anvilFlags{}

	cmd := &cobra.Command{
		Use:   "anvil <file>",
		Short: "Inspect an .mca (Anvil) region file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hasX, hasZ := cmd.Flags().Changed("x"), cmd.Flags().Changed("z")
			if hasX != hasZ {
				return errors.New("-x and -z must be given together")
			}

			r, err := region.Open(args[0], region.WithReadOnly(), region.WithLogger(opts.logger))
			if err != nil {
				return err
			}
			defer r.Close()

			out := cmd.OutOrStdout()
			if hasX {
				return printChunk(out, r, flags.x, flags.z)
			}

			if err := printSummary(out, r); err != nil {
				return err
			}
			if flags.verify || flags.digest {
				return scanChunks(out, cmd.ErrOrStderr(), r, flags)
			}

			return nil
		},
	}
	cmd.Flags().IntVarP(&flags.x, "x", "x", 0, "local chunk X coordinate (0..31)")
	cmd.Flags().IntVarP(&flags.z, "z", "z", 0, "local chunk Z coordinate (0..31)")
	cmd.Flags().BoolVar(&flags.verify, "verify", false, "decompress and parse every chunk")
	cmd.Flags().BoolVar(&flags.digest, "digest", false, "print an xxHash64 digest per chunk")

	return cmd
}

func printChunk(out io.Writer, r *region.Region, x, z int) error {
	nt, ok, err := r.GetChunkNBT(x, z)
	if err != nil {
		return err
	}
	if !ok {
		_, err := fmt.Fprintf(out, "Chunk (%d, %d) is not present in this region.\n", x, z)
		return err
	}

	if _, err := fmt.Fprintf(out, "Chunk (%d, %d) root tag name: '%s'\n", x, z, nt.Name); err != nil {
		return err
	}

	return nbt.Dump(out, nt)
}

func printSummary(out io.Writer, r *region.Region) error {
	stats, err := r.Stats()
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(out, "Region %s: %d chunks, %d sectors (%d free)\n",
		filepath.Base(r.Path()), stats.Chunks, stats.FileSectors, stats.FreeSectors)

	return err
}

func scanChunks(out, progress io.Writer, r *region.Region, flags *anvilFlags) error {
	var bar *progressbar.ProgressBar
	if flags.verify {
		bar = progressbar.NewOptions(r.Len(),
			progressbar.OptionSetWriter(progress),
			progressbar.OptionSetDescription("verifying chunks"),
			progressbar.OptionClearOnFinish(),
		)
	}

	var failed int
	for c, err := range r.Chunks() {
		if err == nil && flags.verify {
			_, err = nbt.Parse(c.Data)
			if err != nil {
				err = &region.ChunkError{X: c.X, Z: c.Z, Err: err}
			}
		}
		if bar != nil {
			_ = bar.Add(1)
		}

		if err != nil {
			failed++
			if _, werr := fmt.Fprintf(out, "FAIL %v\n", err); werr != nil {
				return werr
			}

			continue
		}
		if flags.digest {
			if _, werr := fmt.Fprintf(out, "(%2d, %2d) %-6s %8d bytes %016x\n",
				c.X, c.Z, c.Scheme, len(c.Data), c.Digest()); werr != nil {
				return werr
			}
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d chunks unreadable", errVerifyFailed, failed, r.Len())
	}
	if flags.verify {
		_, err := fmt.Fprintf(out, "OK %d chunks\n", r.Len())
		return err
	}

	return nil
}
