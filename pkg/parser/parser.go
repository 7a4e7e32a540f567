package parser

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/observing-components/pkg/ast"
	"github.com/gnana997/observing-components/pkg/util"
)

var (
	// ErrUnsupportedLanguage is returned for files whose extension maps to
	// no grammar.
	ErrUnsupportedLanguage = errors.New("unsupported language")

	// ErrSyntax is returned when the source could not be parsed into a
	// module at all.
	ErrSyntax = errors.New("syntax error")
)

// ParserManager owns one parser pool per grammar and turns source text into
// ast modules.
//
// Pools are created on first use. The manager is safe for concurrent use and
// must be closed via Close.
//
// Example:
//
//	manager := parser.NewParserManager(logger)
//	defer manager.Close()
//
//	m, err := manager.ParseModule(src, "src/App.tsx")
//	if err != nil {
//	    return err
//	}
type ParserManager struct {
	pools map[Grammar]*parserPool

	// mutex guards pools and stats.
	mutex sync.RWMutex

	logger *slog.Logger

	// poolSize caps the parsers of each pool.
	poolSize int

	stats struct {
		parsesCalled int
	}
}

// NewParserManager creates a manager sized for util.GetOptimalPoolSize
// concurrent parses per grammar.
func NewParserManager(logger *slog.Logger) *ParserManager {
	return NewParserManagerWithSize(logger, 0)
}

// NewParserManagerWithSize creates a manager whose pools hold up to poolSize
// parsers. Zero selects the CPU-based default.
func NewParserManagerWithSize(logger *slog.Logger, poolSize int) *ParserManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &ParserManager{
		pools:    make(map[Grammar]*parserPool),
		logger:   logger,
		poolSize: util.GetOptimalPoolSizeWithOverride(poolSize),
	}
}

// Parse parses source with grammar g. The caller must Close the returned
// tree.
//
// Trees containing syntax errors are returned without error; a partial tree
// is still useful to the caller.
func (pm *ParserManager) Parse(source []byte, g Grammar) (*ts.Tree, error) {
	if g == GrammarUnknown {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, g)
	}

	pm.mutex.Lock()
	pm.stats.parsesCalled++
	pm.mutex.Unlock()

	pool := pm.getOrCreatePool(g)
	parser, err := pool.acquire()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire parser: %w", err)
	}
	tree := parser.Parse(source, nil)
	pool.release(parser)

	if tree == nil {
		return nil, fmt.Errorf("parser returned no tree for %s source", g)
	}
	return tree, nil
}

// ParseFile parses source with the grammar selected by filePath's extension.
// The caller must Close the returned tree.
func (pm *ParserManager) ParseFile(source []byte, filePath string) (*ts.Tree, error) {
	g := DetectGrammar(filePath)
	if g == GrammarUnknown {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, filePath)
	}
	return pm.Parse(source, g)
}

// ParseModule parses source and lowers it to an ast.Module whose Source is
// source. The tree-sitter tree is released before returning.
//
// Recoverable syntax errors are logged and the partial module is returned.
// ErrSyntax is returned only when nothing could be recovered.
func (pm *ParserManager) ParseModule(source []byte, filePath string) (*ast.Module, error) {
	tree, err := pm.ParseFile(source, filePath)
	if err != nil {
		return nil, err
	}
	defer tree.Close()
	return pm.Lower(tree, source, filePath)
}

// Lower converts a tree parsed from source to an ast.Module. The tree stays
// owned by the caller.
func (pm *ParserManager) Lower(tree *ts.Tree, source []byte, filePath string) (*ast.Module, error) {
	root := tree.RootNode()
	if root.IsError() {
		return nil, fmt.Errorf("%w in %s", ErrSyntax, filePath)
	}
	if root.HasError() {
		pm.logger.Warn("parse tree contains errors",
			"file", filePath,
			"grammar", DetectGrammar(filePath).String())
	}

	return lowerModule(root, source), nil
}

// Close releases every pooled parser. The manager cannot be used afterwards.
func (pm *ParserManager) Close() error {
	pm.mutex.Lock()
	defer pm.mutex.Unlock()

	pm.logger.Debug("closing ParserManager",
		"parses_called", pm.stats.parsesCalled)

	for _, pool := range pm.pools {
		if pool != nil {
			pool.close()
		}
	}
	pm.pools = make(map[Grammar]*parserPool)
	return nil
}

// getOrCreatePool returns the pool of g, creating it under the write lock.
func (pm *ParserManager) getOrCreatePool(g Grammar) *parserPool {
	pm.mutex.RLock()
	pool, exists := pm.pools[g]
	pm.mutex.RUnlock()
	if exists {
		return pool
	}

	pm.mutex.Lock()
	defer pm.mutex.Unlock()
	if pool, exists = pm.pools[g]; exists {
		return pool
	}

	pool = newParserPool(g, pm.poolSize, pm.logger)
	pm.pools[g] = pool
	pm.logger.Debug("created new parser pool",
		"grammar", g.String(),
		"maxSize", pm.poolSize)
	return pool
}

// GetStats returns parser usage statistics.
func (pm *ParserManager) GetStats() ParserStats {
	pm.mutex.RLock()
	defer pm.mutex.RUnlock()

	total := 0
	for _, pool := range pm.pools {
		total += pool.getCreatedCount()
	}
	return ParserStats{
		ParsersCreated: total,
		ParsesCalled:   pm.stats.parsesCalled,
		PoolSize:       pm.poolSize,
	}
}

// ParserStats contains parser usage statistics.
type ParserStats struct {
	// ParsersCreated is the number of parsers created across all pools.
	ParsersCreated int

	// ParsesCalled is the number of Parse calls.
	ParsesCalled int

	// PoolSize is the per-grammar parser cap.
	PoolSize int
}
