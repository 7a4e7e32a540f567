// Package exclude decides from a path string and a list of glob patterns
// whether a file is skipped by the wrapping pass.
//
// Matching is a pure string operation: nothing is read from disk and no
// result is cached. Patterns are tried in four layers, from the most to the
// least literal:
//
//  1. the glob set against the whole path
//  2. the glob set against the file name
//  3. each pattern's components as a case-insensitive, in-order
//     subsequence of the path components
//  4. the glob set against every suffix of the path components, which
//     models patterns written relative to some project root
//
// Only layer 3 ignores case.
package exclude

import (
	"errors"
	"log/slog"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// VendorDir is the directory marker of installed third-party packages.
// Paths containing it are always excluded.
const VendorDir = "node_modules"

// Strategy names the layer that produced a decision.
type Strategy string

const (
	StrategyNone       Strategy = "none"
	StrategyVendored   Strategy = "vendored"
	StrategyGlobPath   Strategy = "glob-path"
	StrategyGlobName   Strategy = "glob-file-name"
	StrategyComponents Strategy = "components"
	StrategyGlobSuffix Strategy = "glob-suffix"
)

// Decision is the explained outcome of a match.
type Decision struct {
	Excluded bool     `json:"excluded"`
	Strategy Strategy `json:"strategy"`

	// Pattern is the pattern that matched, empty when nothing did.
	Pattern string `json:"pattern,omitempty"`
}

var errEmptyGlobSet = errors.New("no exclude pattern compiled")

// Matcher evaluates exclusion queries. The zero value logs to slog.Default.
type Matcher struct {
	logger *slog.Logger
}

// NewMatcher returns a Matcher logging pattern diagnostics to logger.
func NewMatcher(logger *slog.Logger) *Matcher {
	return &Matcher{logger: logger}
}

func (m *Matcher) log() *slog.Logger {
	if m == nil || m.logger == nil {
		return slog.Default()
	}
	return m.logger
}

// ShouldExclude reports whether filePath matches any of patterns.
func ShouldExclude(filePath string, patterns []string) bool {
	return (*Matcher)(nil).Explain(filePath, patterns).Excluded
}

// IsVendored reports whether filePath lies inside an installed-dependency
// directory.
func IsVendored(filePath string) bool {
	return strings.Contains(filePath, VendorDir)
}

// ShouldExclude reports whether filePath matches any of patterns.
func (m *Matcher) ShouldExclude(filePath string, patterns []string) bool {
	return m.Explain(filePath, patterns).Excluded
}

// Explain runs the matching layers and reports which one, if any, matched.
func (m *Matcher) Explain(filePath string, patterns []string) Decision {
	none := Decision{Strategy: StrategyNone}
	if len(patterns) == 0 {
		return none
	}

	sep := string(os.PathSeparator)
	components := splitNonEmpty(filePath, sep)
	fileName := ""
	if len(components) > 0 {
		fileName = components[len(components)-1]
	}

	set, err := m.compile(patterns)
	if err != nil {
		m.log().Warn("exclude patterns unusable, matching nothing",
			"file", filePath,
			"error", err)
		return none
	}

	if p, ok := set.match(filePath); ok {
		return Decision{Excluded: true, Strategy: StrategyGlobPath, Pattern: p}
	}
	if fileName != "" {
		if p, ok := set.match(fileName); ok {
			return Decision{Excluded: true, Strategy: StrategyGlobName, Pattern: p}
		}
	}

	for _, p := range set.raw {
		if componentsMatch(components, splitNonEmpty(p, "/")) {
			return Decision{Excluded: true, Strategy: StrategyComponents, Pattern: p}
		}
	}

	for i := range components {
		suffix := strings.Join(components[i:], sep)
		if p, ok := set.match(suffix); ok {
			return Decision{Excluded: true, Strategy: StrategyGlobSuffix, Pattern: p}
		}
	}

	return none
}

// globSet is the compiled form of a pattern list.
type globSet struct {
	// globs holds the patterns that passed validation.
	globs []string

	// raw holds every non-blank pattern, valid glob or not, for the
	// component layer.
	raw []string
}

// compile validates patterns, dropping the ones that are not valid globs.
// It fails only when no pattern survives.
func (m *Matcher) compile(patterns []string) (*globSet, error) {
	set := &globSet{}
	for _, p := range patterns {
		if strings.TrimSpace(p) == "" {
			m.log().Debug("ignoring blank exclude pattern")
			continue
		}
		set.raw = append(set.raw, p)
		if !doublestar.ValidatePathPattern(p) {
			m.log().Warn("invalid exclude pattern, skipping", "pattern", p)
			continue
		}
		set.globs = append(set.globs, p)
	}
	if len(set.globs) == 0 {
		return nil, errEmptyGlobSet
	}
	return set, nil
}

// match returns the first glob matching name.
func (s *globSet) match(name string) (string, bool) {
	for _, g := range s.globs {
		if ok, err := doublestar.PathMatch(g, name); err == nil && ok {
			return g, true
		}
	}
	return "", false
}

// componentsMatch reports whether pattern occurs in path as an in-order,
// not necessarily contiguous, case-insensitive subsequence. An empty
// pattern matches everything.
func componentsMatch(path, pattern []string) bool {
	if len(pattern) == 0 {
		return true
	}
	j := 0
	for _, c := range path {
		if strings.EqualFold(c, pattern[j]) {
			j++
			if j == len(pattern) {
				return true
			}
		}
	}
	return false
}

func splitNonEmpty(s, sep string) []string {
	parts := strings.Split(s, sep)
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
