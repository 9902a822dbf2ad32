package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/arloliu/mcnbt"
	"github.com/arloliu/mcnbt/format"
	"github.com/arloliu/mcnbt/nbt"
)

func newNBTCmd(opts *inspectOptions) *cobra.Command {
	var uncompressed bool

	cmd := &cobra.Command{
		Use:   "nbt <file>",
		Short: "Inspect a .dat (NBT) file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			scheme := format.CompressionNone
			if !uncompressed {
				data, scheme, err = mcnbt.Decompress(data)
				if err != nil {
					return err
				}
			}
			opts.logger.Debug("nbt file loaded",
				slog.String("path", args[0]),
				slog.String("compression", scheme.String()),
				slog.Int("bytes", len(data)))

			nt, err := nbt.Parse(data)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if _, err := fmt.Fprintf(out, "Root tag name: '%s'\n", nt.Name); err != nil {
				return err
			}

			return nbt.Dump(out, nt)
		},
	}
	cmd.Flags().BoolVarP(&uncompressed, "uncompressed", "u", false, "treat the file as raw NBT and skip detection")

	return cmd
}
