package main

import (
	"github.com/spf13/cobra"

	"treeprobe/internal/probe"
)

func newWatchCmd() *cobra.Command {
	var (
		edits     []string
		quiet     bool
		printTime bool
	)
	cmd := &cobra.Command{
		Use:   "watch [path]",
		Short: "Re-parse a file every time it is saved",
		Long: `Parses the file once, then again after every write until interrupted.
Rendering follows the render section of the config.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := proberOptions(cfg, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			opts.Edits = edits
			opts.Quiet = quiet
			opts.PrintTime = printTime
			opts.MaxPathLength = len(args[0])

			w, err := probe.NewWatcher(probe.New(opts, nil), args[0], cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return w.Run(cmd.Context())
		},
	}
	cmd.Flags().StringArrayVarP(&edits, "edit", "e", nil, "Apply an edit after every load (repeatable)")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not print the tree")
	cmd.Flags().BoolVarP(&printTime, "time", "t", false, "Print a timing line after every parse")
	return cmd
}
