package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/gnana997/observing-components/pkg/runner"
	"github.com/gnana997/observing-components/pkg/util"
)

const pathArgsHelp = `Paths may be files or directories; directories are walked recursively.
Without paths the current directory is used.`

func newTransformCmd(a *app) *cobra.Command {
	var write, diff bool

	cmd := &cobra.Command{
		Use:   "transform [paths...]",
		Short: "Wrap components in the given files",
		Long: `Wrap the components of every selected file. Without --write nothing is saved:
a single file is printed to stdout, a directory produces a summary.

` + pathArgsHelp,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.newPlugin()
			if err != nil {
				return err
			}
			defer p.Close()

			r := runner.New(p, a.logger)
			opts := a.runnerOptions(cmd)
			opts.Write = write
			opts.Diff = diff

			if len(args) == 1 && !write && !diff && isFile(args[0]) {
				return printSingleFile(cmd.OutOrStdout(), r, args[0], opts)
			}

			report, err := r.Run(cmd.Context(), args, opts)
			if err != nil {
				return err
			}
			if diff {
				printDiffs(cmd.OutOrStdout(), report)
			}
			printSummary(cmd.OutOrStdout(), report)

			if report.Failed > 0 {
				return exitError{code: 1, msg: fmt.Sprintf("%d file(s) failed", report.Failed)}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&write, "write", "w", false, "rewrite changed files in place")
	cmd.Flags().BoolVarP(&diff, "diff", "d", false, "print a unified diff of every change")
	addWorkersFlag(cmd)
	return cmd
}

func newCheckCmd(a *app) *cobra.Command {
	var diff bool

	cmd := &cobra.Command{
		Use:   "check [paths...]",
		Short: "Fail when any file would change",
		Long: `Report the files transform would rewrite and exit with status 1 if there are any.
Nothing is written.

` + pathArgsHelp,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.newPlugin()
			if err != nil {
				return err
			}
			defer p.Close()

			opts := a.runnerOptions(cmd)
			opts.Diff = diff
			report, err := runner.New(p, a.logger).Run(cmd.Context(), args, opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, f := range report.Files {
				if f.Status == runner.StatusChanged {
					fmt.Fprintf(out, "would change: %s (%d wrapped)\n", f.Path, f.Wrapped)
				}
			}
			if diff {
				printDiffs(out, report)
			}

			switch {
			case report.Failed > 0:
				return exitError{code: 1, msg: fmt.Sprintf("%d file(s) failed", report.Failed)}
			case report.Changed > 0:
				return exitError{code: 1, msg: fmt.Sprintf("%d file(s) would change", report.Changed)}
			}
			fmt.Fprintf(out, "%d file(s) checked, nothing to change\n", len(report.Files))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&diff, "diff", "d", false, "print a unified diff of every change")
	addWorkersFlag(cmd)
	return cmd
}

func addWorkersFlag(cmd *cobra.Command) {
	cmd.Flags().Int(workersFlagName, 0, "files processed concurrently (default: 2 x CPUs)")
}

// runnerOptions reads the runner settings, letting --workers override the
// configured value.
func (a *app) runnerOptions(cmd *cobra.Command) runner.Options {
	opts := runnerOptions(a.v)
	if cmd.Flags().Changed(workersFlagName) {
		opts.Workers, _ = cmd.Flags().GetInt(workersFlagName)
	}
	return opts
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// printSingleFile writes the transformed text of path, or its original text
// when nothing changes.
func printSingleFile(w io.Writer, r *runner.Runner, path string, opts runner.Options) error {
	report, err := r.ProcessFile(path, opts)
	if err != nil {
		return err
	}
	out := report.Output
	if report.Status != runner.StatusChanged {
		if out, err = util.LoadSource(path, nil); err != nil {
			return err
		}
	}
	_, err = w.Write(out)
	return err
}

func printDiffs(w io.Writer, report *runner.Report) {
	for _, f := range report.Files {
		if f.Diff != "" {
			fmt.Fprint(w, f.Diff)
		}
	}
}

// printSummary renders the per-file outcome of a run as a table.
func printSummary(w io.Writer, report *runner.Report) {
	var tableBuffer bytes.Buffer
	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"File", "Status", "Wrapped", "Import"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_CENTER,
	})

	for _, f := range report.Files {
		if f.Status == runner.StatusUnchanged {
			continue
		}
		imp := ""
		if f.ImportInserted {
			imp = "added"
		}
		status := string(f.Status)
		if f.Written {
			status = "written"
		}
		if f.Error != "" {
			status = "failed: " + f.Error
		}
		table.Append([]string{f.Path, status, strconv.Itoa(f.Wrapped), imp})
	}

	table.SetFooter([]string{
		fmt.Sprintf("%d files", len(report.Files)),
		fmt.Sprintf("%d changed", report.Changed),
		fmt.Sprintf("%d excluded", report.Excluded),
		fmt.Sprintf("%d failed", report.Failed),
	})
	table.Render()

	fmt.Fprint(w, tableBuffer.String())
	fmt.Fprintf(w, "%d unchanged, %s\n", report.Unchanged, report.Duration.Round(time.Millisecond))
}
