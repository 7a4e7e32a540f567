// Package runner applies the plugin to files on disk: in batches over a
// directory tree, or continuously from file system events.
package runner

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/sync/errgroup"

	"github.com/gnana997/observing-components/pkg/plugin"
	"github.com/gnana997/observing-components/pkg/util"
)

// Runner processes files with one plugin.
type Runner struct {
	plugin *plugin.Plugin
	logger *slog.Logger
}

// New returns a runner for p. The plugin stays owned by the caller.
func New(p *plugin.Plugin, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{plugin: p, logger: logger}
}

// Run expands paths, processes every selected file on a worker pool and
// returns a report ordered by path. Per-file failures are recorded in the
// report; the returned error is reserved for discovery failures and
// cancellation.
func (r *Runner) Run(ctx context.Context, paths []string, opts Options) (*Report, error) {
	start := time.Now()

	files, err := Expand(paths, opts, r.logger)
	if err != nil {
		return nil, err
	}

	workers := util.GetOptimalPoolSizeWithOverride(opts.Workers)
	report := &Report{Workers: workers}
	r.logger.Info("processing files", "files", len(files), "workers", workers, "write", opts.Write)

	g, gctx := errgroup.WithContext(ctx)
	pool := NewWorkerPool(gctx, workers, func(path string) (FileReport, error) {
		return r.ProcessFile(path, opts)
	}, r.logger)
	pool.Start()

	g.Go(func() error {
		defer pool.Stop()
		for i, file := range files {
			if err := pool.Submit(FileJob{FilePath: file, JobID: i}); err != nil {
				return err
			}
		}
		return nil
	})

	g.Go(func() error {
		results, errs := pool.Results(), pool.Errors()
		for results != nil || errs != nil {
			select {
			case res, ok := <-results:
				if !ok {
					results = nil
					continue
				}
				report.add(res.Report)
			case fe, ok := <-errs:
				if !ok {
					errs = nil
					continue
				}
				r.logger.Warn("failed to process file", "file", fe.FilePath, "error", fe.Error)
				report.add(FileReport{Path: fe.FilePath, Status: StatusFailed, Error: fe.Error.Error()})
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return report, err
	}
	if err := ctx.Err(); err != nil {
		return report, err
	}

	sort.Slice(report.Files, func(i, j int) bool {
		return report.Files[i].Path < report.Files[j].Path
	})
	report.Duration = time.Since(start)

	r.logger.Info("processing complete",
		"changed", report.Changed,
		"unchanged", report.Unchanged,
		"excluded", report.Excluded,
		"failed", report.Failed,
		"duration", report.Duration)
	return report, nil
}

// ProcessFile runs the plugin on one file. With opts.Write a changed file is
// replaced atomically; with opts.Diff the report carries a unified diff.
func (r *Runner) ProcessFile(path string, opts Options) (FileReport, error) {
	start := time.Now()
	report := FileReport{Path: path}

	src, err := util.LoadSource(path, r.logger)
	if err != nil {
		return report, err
	}

	out, outcome, err := r.plugin.ProcessSource(src, path)
	if err != nil {
		return report, err
	}

	report.Decision = outcome.Decision
	report.Wrapped = outcome.Wrapped
	report.ImportInserted = outcome.ImportInserted

	switch {
	case outcome.Excluded:
		report.Status = StatusExcluded
	case bytes.Equal(src, out):
		report.Status = StatusUnchanged
	default:
		report.Status = StatusChanged
		report.Output = out
		if opts.Diff {
			diff, err := UnifiedDiff(path, src, out)
			if err != nil {
				return report, err
			}
			report.Diff = diff
		}
		if opts.Write {
			if err := WriteFileAtomic(path, out); err != nil {
				return report, err
			}
			report.Written = true
		}
	}

	report.Duration = time.Since(start)
	r.logger.Debug("processed file",
		"file", path,
		"status", report.Status,
		"wrapped", report.Wrapped,
		"written", report.Written)
	return report, nil
}

// UnifiedDiff renders the change from before to after in unified format
// with three lines of context.
func UnifiedDiff(path string, before, after []byte) (string, error) {
	name := filepath.ToSlash(path)
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(before)),
		B:        difflib.SplitLines(string(after)),
		FromFile: "a/" + name,
		ToFile:   "b/" + name,
		Context:  3,
	})
	if err != nil {
		return "", fmt.Errorf("failed to diff %s: %w", path, err)
	}
	return diff, nil
}

// WriteFileAtomic replaces path with data through a temporary file in the
// same directory, keeping the file mode.
func WriteFileAtomic(path string, data []byte) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("failed to write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("failed to close %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, info.Mode().Perm()); err != nil {
		cleanup()
		return fmt.Errorf("failed to set mode on %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
