package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gnana997/observing-components/pkg/runner"
)

func newWatchCmd(a *app) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Rewrite files as they change",
		Long: `Watch a directory tree (default: the current directory) and wrap the components
of every source file that is created or saved, until interrupted.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			if isFile(root) {
				return fmt.Errorf("%s is not a directory", root)
			}

			p, err := a.newPlugin()
			if err != nil {
				return err
			}
			defer p.Close()

			opts := runner.DefaultWatchOptions()
			opts.Options = a.runnerOptions(cmd)
			opts.Options.Write = !dryRun

			w, err := runner.NewWatcher(runner.New(p, a.logger), opts, a.logger)
			if err != nil {
				return err
			}
			if dryRun {
				w.OnResult = func(r runner.FileReport, err error) {
					if err == nil && r.Status == runner.StatusChanged {
						fmt.Fprintf(cmd.OutOrStdout(), "would change: %s\n", r.Path)
					}
				}
			}
			return w.Run(cmd.Context(), root)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report changes without writing")
	addWorkersFlag(cmd)
	return cmd
}
