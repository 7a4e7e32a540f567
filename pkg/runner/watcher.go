package runner

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/gnana997/observing-components/pkg/exclude"
	"github.com/gnana997/observing-components/pkg/parser"
	"github.com/gnana997/observing-components/pkg/util"
)

// Watcher rewrites source files as they change under a root directory.
//
// Rapid events on one file are debounced into a single run. The content the
// watcher writes is remembered by hash, so the events its own writes cause
// are recognized and dropped.
//
// Usage:
//
//	w, err := NewWatcher(runner, DefaultWatchOptions(), logger)
//	if err != nil {
//	    return err
//	}
//	return w.Run(ctx, "./src")
type Watcher struct {
	runner  *Runner
	watcher *fsnotify.Watcher
	logger  *slog.Logger
	options WatchOptions
	root    string

	// OnResult, when set, is called after every processed file.
	OnResult func(FileReport, error)

	debounceTimers map[string]*time.Timer
	debounceMu     sync.Mutex

	// written maps a path to the hash of the content last written to it.
	written *lru.Cache[string, string]

	stopChan chan struct{}
	started  bool
	stopped  bool
	mu       sync.Mutex
}

// NewWatcher creates a watcher that processes files with r.
func NewWatcher(r *Runner, options WatchOptions, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if options.Debounce <= 0 {
		options.Debounce = 200 * time.Millisecond
	}
	if options.SuppressSize <= 0 {
		options.SuppressSize = 256
	}
	if err := validatePatterns(options.Options); err != nil {
		return nil, err
	}

	written, err := lru.New[string, string](options.SuppressSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create write cache: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	return &Watcher{
		runner:         r,
		watcher:        fsw,
		logger:         logger,
		options:        options,
		debounceTimers: make(map[string]*time.Timer),
		written:        written,
		stopChan:       make(chan struct{}),
	}, nil
}

// Run watches root until ctx is done.
func (w *Watcher) Run(ctx context.Context, root string) error {
	if err := w.Start(root); err != nil {
		return err
	}
	<-ctx.Done()
	return w.Stop()
}

// Start registers root and every directory below it that discovery would
// walk, then handles events in the background.
func (w *Watcher) Start(root string) error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return fmt.Errorf("watcher already stopped")
	}
	if w.started {
		w.mu.Unlock()
		return fmt.Errorf("watcher already started")
	}
	w.started = true
	w.root = root
	w.mu.Unlock()

	if err := w.addTree(root); err != nil {
		return err
	}

	w.logger.Info("File watcher started", "root", root, "debounce", w.options.Debounce)
	go w.eventLoop()
	return nil
}

// Stop cancels pending runs and closes the underlying watcher. Safe to call
// more than once.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil
	}
	w.stopped = true
	close(w.stopChan)

	w.debounceMu.Lock()
	for _, timer := range w.debounceTimers {
		timer.Stop()
	}
	w.debounceTimers = make(map[string]*time.Timer)
	w.debounceMu.Unlock()

	err := w.watcher.Close()
	w.logger.Info("File watcher stopped")
	return err
}

func (w *Watcher) addTree(dir string) error {
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && w.ignoreDir(path) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("Failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to setup watches: %w", err)
	}
	return nil
}

func (w *Watcher) eventLoop() {
	for {
		select {
		case <-w.stopChan:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("File watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if !w.ignoreDir(path) {
				if err := w.addTree(path); err != nil {
					w.logger.Warn("Failed to watch new directory", "path", path, "error", err)
				}
			}
			return
		}
	}

	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
			w.written.Remove(path)
		}
		return
	}
	if !w.selects(path) {
		return
	}

	w.logger.Debug("File event", "op", event.Op.String(), "file", path)
	w.debounce(path)
}

// debounce schedules path to be processed once no event arrived for it
// during the debounce window.
func (w *Watcher) debounce(path string) {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if timer, exists := w.debounceTimers[path]; exists {
		timer.Stop()
	}
	w.debounceTimers[path] = time.AfterFunc(w.options.Debounce, func() {
		w.debounceMu.Lock()
		delete(w.debounceTimers, path)
		w.debounceMu.Unlock()

		w.processFile(path)
	})
}

func (w *Watcher) processFile(path string) {
	src, err := util.LoadSource(path, w.logger)
	if err != nil {
		w.logger.Debug("File vanished before processing", "file", path, "error", err)
		return
	}
	if w.isOwnWrite(path, src) {
		w.logger.Debug("Ignoring own write", "file", path)
		return
	}

	report, err := w.runner.ProcessFile(path, w.options.Options)
	if err != nil {
		w.logger.Warn("Failed to process file", "file", path, "error", err)
	} else {
		if report.Written {
			w.remember(path, report.Output)
		}
		w.logger.Info("Processed file",
			"file", path,
			"status", report.Status,
			"wrapped", report.Wrapped,
			"written", report.Written)
	}

	if w.OnResult != nil {
		w.OnResult(report, err)
	}
}

// remember records content as written to path by the watcher.
func (w *Watcher) remember(path string, content []byte) {
	w.written.Add(path, contentHash(content))
}

// isOwnWrite reports whether content is what the watcher last wrote to path.
func (w *Watcher) isOwnWrite(path string, content []byte) bool {
	h, ok := w.written.Get(path)
	return ok && h == contentHash(content)
}

// selects reports whether a file event concerns a file discovery would pick.
func (w *Watcher) selects(path string) bool {
	if !parser.IsSourceFile(path) || exclude.IsVendored(path) {
		return false
	}
	rel := w.rel(path)
	return !matchAny(w.options.Options.Exclude, rel) && included(rel, w.options.Options.Include)
}

func (w *Watcher) ignoreDir(path string) bool {
	return exclude.IsVendored(path) || dirExcluded(w.rel(path), w.options.Options.Exclude)
}

func (w *Watcher) rel(path string) string {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// GetStats returns file watcher statistics.
func (w *Watcher) GetStats() WatcherStats {
	w.debounceMu.Lock()
	pending := len(w.debounceTimers)
	w.debounceMu.Unlock()

	w.mu.Lock()
	running := w.started && !w.stopped
	w.mu.Unlock()

	return WatcherStats{
		Pending:    pending,
		Remembered: w.written.Len(),
		IsRunning:  running,
	}
}

// WatcherStats contains file watcher statistics.
type WatcherStats struct {
	Pending    int
	Remembered int
	IsRunning  bool
}

func contentHash(content []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(content))
}
