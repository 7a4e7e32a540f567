// Package plugin is the boundary between a host and the wrapping pass.
//
// A host hands over a configuration payload once and then, per file, either
// a lowered module (Process) or raw source (ProcessSource). The plugin
// applies the exclusion rules and runs the transform.
package plugin

import (
	"fmt"
	"log/slog"

	"github.com/gnana997/observing-components/pkg/ast"
	"github.com/gnana997/observing-components/pkg/exclude"
	"github.com/gnana997/observing-components/pkg/parser"
	"github.com/gnana997/observing-components/pkg/parser/queries"
	"github.com/gnana997/observing-components/pkg/printer"
	"github.com/gnana997/observing-components/pkg/transform"
)

// Metadata is what the host knows about the file being processed.
type Metadata struct {
	// Filename is the file path, absolute or relative. Empty when the host
	// does not supply one.
	Filename string
}

// Outcome describes what happened to one file.
type Outcome struct {
	Filename string `json:"file"`

	// Excluded is true when the file was passed through untouched because
	// of the vendored rule or an exclude pattern.
	Excluded bool             `json:"excluded"`
	Decision exclude.Decision `json:"decision"`

	Wrapped        int    `json:"wrapped"`
	ImportInserted bool   `json:"import_inserted"`
	Alias          string `json:"alias,omitempty"`

	// Changed is true when the printed output differs from the input.
	Changed bool `json:"changed"`
}

// Plugin runs the pass with one configuration. It is safe for concurrent
// use and must be closed to release its parsers.
type Plugin struct {
	cfg     transform.Config
	matcher *exclude.Matcher
	parser  *parser.ParserManager
	queries *queries.QueryManager
	logger  *slog.Logger
}

// New parses payload with ParseConfig and returns a ready plugin.
func New(payload []byte, logger *slog.Logger) (*Plugin, error) {
	cfg, err := ParseConfig(payload)
	if err != nil {
		return nil, err
	}
	return NewWithConfig(cfg, logger)
}

// NewWithConfig returns a plugin for an already built configuration.
func NewWithConfig(cfg transform.Config, logger *slog.Logger) (*Plugin, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Plugin{
		cfg:     cfg,
		matcher: exclude.NewMatcher(logger),
		parser:  parser.NewParserManager(logger),
		queries: queries.NewQueryManager(logger),
		logger:  logger,
	}, nil
}

// Config returns the configuration the plugin runs with.
func (p *Plugin) Config() transform.Config {
	return p.cfg
}

// Close releases the parser pools and compiled queries.
func (p *Plugin) Close() error {
	_ = p.queries.Close()
	return p.parser.Close()
}

// Decide reports whether filename is skipped. Vendored paths are always
// skipped, before any pattern is consulted.
func (p *Plugin) Decide(filename string) exclude.Decision {
	if exclude.IsVendored(filename) {
		return exclude.Decision{Excluded: true, Strategy: exclude.StrategyVendored, Pattern: exclude.VendorDir}
	}
	return p.matcher.Explain(filename, p.cfg.ExcludePatterns)
}

// Process runs the pass over m unless the file is excluded, in which case
// m is returned as is.
func (p *Plugin) Process(m *ast.Module, meta Metadata) *ast.Module {
	out, _ := p.process(m, meta)
	return out
}

func (p *Plugin) process(m *ast.Module, meta Metadata) (*ast.Module, Outcome) {
	decision := p.Decide(meta.Filename)
	p.logger.Debug("exclusion check",
		"file", meta.Filename,
		"patterns", p.cfg.ExcludePatterns,
		"excluded", decision.Excluded,
		"strategy", decision.Strategy)

	outcome := Outcome{Filename: meta.Filename, Excluded: decision.Excluded, Decision: decision}
	if decision.Excluded {
		return m, outcome
	}

	res := transform.Run(m, p.cfg)
	outcome.Wrapped = res.Stats.Wrapped
	outcome.ImportInserted = res.Stats.ImportInserted
	outcome.Alias = res.Stats.Alias
	outcome.Changed = res.Stats.Changed()
	return res.Module, outcome
}

// ProcessSource parses src as filename, runs the pass and prints the result.
// Excluded files are returned without being parsed, and files without any
// JSX are returned without being lowered.
func (p *Plugin) ProcessSource(src []byte, filename string) ([]byte, Outcome, error) {
	d := p.Decide(filename)
	if d.Excluded {
		p.logger.Debug("skipping excluded file",
			"file", filename,
			"strategy", d.Strategy,
			"pattern", d.Pattern)
		return src, Outcome{Filename: filename, Excluded: true, Decision: d}, nil
	}

	tree, err := p.parser.ParseFile(src, filename)
	if err != nil {
		return nil, Outcome{Filename: filename}, fmt.Errorf("failed to parse %s: %w", filename, err)
	}
	defer tree.Close()

	if !tree.RootNode().IsError() {
		hasJSX, err := p.queries.HasJSX(tree, parser.DetectGrammar(filename), src)
		if err != nil {
			p.logger.Warn("jsx query failed, lowering anyway", "file", filename, "error", err)
		} else if !hasJSX {
			p.logger.Debug("no jsx, nothing to wrap", "file", filename)
			return src, Outcome{Filename: filename, Decision: d}, nil
		}
	}

	m, err := p.parser.Lower(tree, src, filename)
	if err != nil {
		return nil, Outcome{Filename: filename}, fmt.Errorf("failed to parse %s: %w", filename, err)
	}

	out, outcome := p.process(m, Metadata{Filename: filename})
	if !outcome.Changed {
		return src, outcome, nil
	}
	return printer.Print(out), outcome, nil
}
