package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"
)

type inspectOptions struct {
	verbose bool
	logger  *slog.Logger
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &inspectOptions{}

	root := &cobra.Command{
		Use:           "mcinspect",
		Short:         "Inspect Minecraft NBT and Anvil files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if opts.verbose {
				level = slog.LevelDebug
			}
			opts.logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log allocation and I/O details to stderr")

	root.AddCommand(newNBTCmd(opts), newAnvilCmd(opts))

	return root
}
