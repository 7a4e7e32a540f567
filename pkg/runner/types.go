package runner

import (
	"time"

	"github.com/gnana997/observing-components/pkg/exclude"
)

// Options configures a batch run.
type Options struct {
	// Include patterns (doublestar syntax, relative to the walked root).
	// Empty selects every file with a supported extension.
	Include []string

	// Exclude patterns pruned during discovery, before any file is read.
	// Unlike the plugin's exclude list these are matched against paths
	// relative to the walked root only.
	Exclude []string

	// Write rewrites changed files in place.
	Write bool

	// Diff attaches a unified diff to every changed file.
	Diff bool

	// Workers is the number of files processed concurrently.
	// Zero selects util.GetOptimalPoolSize.
	Workers int
}

// DefaultOptions returns options that discover every source file outside
// dependency and build directories, without writing.
func DefaultOptions() Options {
	return Options{
		Include: []string{"**/*.{js,jsx,ts,tsx,mjs,cjs,mts,cts}"},
		Exclude: []string{
			"**/node_modules/**",
			"**/.git/**",
			"**/dist/**",
			"**/build/**",
			"**/.next/**",
		},
	}
}

// Status is the result of processing one file.
type Status string

const (
	StatusChanged   Status = "changed"
	StatusUnchanged Status = "unchanged"
	StatusExcluded  Status = "excluded"
	StatusFailed    Status = "failed"
)

// FileReport describes one processed file.
type FileReport struct {
	Path   string `json:"path"`
	Status Status `json:"status"`

	Wrapped        int              `json:"wrapped"`
	ImportInserted bool             `json:"import_inserted"`
	Decision       exclude.Decision `json:"decision"`

	// Written is true when the change was saved to disk.
	Written bool `json:"written"`

	// Diff is the unified diff of the change, set when Options.Diff is.
	Diff string `json:"diff,omitempty"`

	// Output is the transformed source of a changed file.
	Output []byte `json:"-"`

	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Report summarizes a batch run. Files are ordered by path.
type Report struct {
	Files []FileReport `json:"files"`

	Changed   int `json:"changed"`
	Unchanged int `json:"unchanged"`
	Excluded  int `json:"excluded"`
	Failed    int `json:"failed"`

	Workers  int           `json:"workers"`
	Duration time.Duration `json:"duration"`
}

// add records r in the totals.
func (rep *Report) add(r FileReport) {
	rep.Files = append(rep.Files, r)
	switch r.Status {
	case StatusChanged:
		rep.Changed++
	case StatusUnchanged:
		rep.Unchanged++
	case StatusExcluded:
		rep.Excluded++
	case StatusFailed:
		rep.Failed++
	}
}

// FileError pairs a file with the error that stopped its processing.
type FileError struct {
	FilePath string
	Error    error
}

// WatchOptions configures the watcher.
type WatchOptions struct {
	// Debounce groups rapid events on one file into a single run.
	// Default: 200ms.
	Debounce time.Duration

	// SuppressSize is the number of recently written files remembered to
	// ignore the events caused by the watcher's own writes. Default: 256.
	SuppressSize int

	// Options are used for discovery and per-file processing. Write is
	// what makes the watcher rewrite files.
	Options Options
}

// DefaultWatchOptions returns options that rewrite files in place.
func DefaultWatchOptions() WatchOptions {
	opts := DefaultOptions()
	opts.Write = true
	return WatchOptions{
		Debounce:     200 * time.Millisecond,
		SuppressSize: 256,
		Options:      opts,
	}
}
