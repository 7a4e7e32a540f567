package runner

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/gnana997/observing-components/pkg/parser"
)

// Discover walks root and returns the source files selected by opts, in
// lexical order. Patterns are validated before the walk starts.
func Discover(root string, opts Options, logger *slog.Logger) ([]string, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := validatePatterns(opts); err != nil {
		return nil, err
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warn("walk error", "path", path, "error", err)
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel != "." && dirExcluded(rel, opts.Exclude) {
				logger.Debug("skipping directory", "path", path)
				return filepath.SkipDir
			}
			return nil
		}

		if matchAny(opts.Exclude, rel) || !included(rel, opts.Include) {
			return nil
		}
		if !parser.IsSourceFile(path) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}
	return files, nil
}

// Expand resolves command line paths: directories are discovered, files are
// taken as given when they have a supported extension. The result is sorted
// and free of duplicates.
func Expand(paths []string, opts Options, logger *slog.Logger) ([]string, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(paths) == 0 {
		paths = []string{"."}
	}

	seen := make(map[string]bool)
	var out []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("cannot read %s: %w", p, err)
		}
		if !info.IsDir() {
			if !parser.IsSourceFile(p) {
				logger.Warn("skipping file with unsupported extension", "file", p)
				continue
			}
			add(filepath.Clean(p))
			continue
		}
		files, err := Discover(p, opts, logger)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			add(f)
		}
	}
	sort.Strings(out)
	return out, nil
}

func validatePatterns(opts Options) error {
	for _, pattern := range opts.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid exclude pattern: %s", pattern)
		}
	}
	for _, pattern := range opts.Include {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid include pattern: %s", pattern)
		}
	}
	return nil
}

func matchAny(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

func included(rel string, include []string) bool {
	return len(include) == 0 || matchAny(include, rel)
}

// dirExcluded reports whether a directory is pruned. Only a pattern ending
// in "/**" that covers an arbitrary file below the directory prunes it; a
// pattern such as "src/*" excludes direct children, not whole subtrees.
func dirExcluded(rel string, exclude []string) bool {
	probe := rel + "/" + dirProbe
	for _, pattern := range exclude {
		if !strings.HasSuffix(pattern, "/**") {
			continue
		}
		if ok, _ := doublestar.Match(pattern, probe); ok {
			return true
		}
	}
	return false
}

// dirProbe stands for an arbitrary file inside a directory.
const dirProbe = "\x00"
