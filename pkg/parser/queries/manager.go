// Package queries provides tree-sitter query compilation, caching, and execution.
package queries

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/observing-components/pkg/parser"
	"github.com/gnana997/observing-components/pkg/parser/queries/jsx"
)

// ErrNoQuery is returned when a query type does not exist for a grammar.
var ErrNoQuery = errors.New("no query for grammar")

// QueryType identifies which query to execute.
type QueryType int

const (
	// QueryTypeJSX locates JSX elements.
	QueryTypeJSX QueryType = iota
)

// String returns the string representation of a QueryType.
func (qt QueryType) String() string {
	switch qt {
	case QueryTypeJSX:
		return "jsx"
	default:
		return "unknown"
	}
}

// queryKey uniquely identifies a compiled query (grammar + type).
type queryKey struct {
	grammar parser.Grammar
	qtype   QueryType
}

// QueryManager manages tree-sitter query compilation and caching.
//
// Queries are compiled on first use and shared by every caller; the cache
// is safe for concurrent use. Close releases them.
//
// Usage:
//
//	qm := NewQueryManager(logger)
//	defer qm.Close()
//
//	ok, err := qm.HasJSX(tree, parser.GrammarTSX, source)
type QueryManager struct {
	cache  map[queryKey]*ts.Query
	mutex  sync.RWMutex
	logger *slog.Logger
}

// NewQueryManager creates a new query manager. Logger can be nil.
func NewQueryManager(logger *slog.Logger) *QueryManager {
	if logger == nil {
		logger = slog.Default()
	}

	return &QueryManager{
		cache:  make(map[queryKey]*ts.Query),
		logger: logger,
	}
}

// GetQuery returns a compiled query for the grammar and type, compiling it
// on first access.
func (qm *QueryManager) GetQuery(g parser.Grammar, qtype QueryType) (*ts.Query, error) {
	key := queryKey{grammar: g, qtype: qtype}

	qm.mutex.RLock()
	query, exists := qm.cache[key]
	qm.mutex.RUnlock()

	if exists {
		return query, nil
	}

	qm.mutex.Lock()
	defer qm.mutex.Unlock()

	if query, exists = qm.cache[key]; exists {
		return query, nil
	}

	queryString, err := queryString(g, qtype)
	if err != nil {
		return nil, err
	}

	lang := g.Language()
	if lang == nil {
		return nil, fmt.Errorf("%w: %s", parser.ErrUnsupportedLanguage, g)
	}

	query, qerr := ts.NewQuery(lang, queryString)
	if qerr != nil {
		return nil, fmt.Errorf("failed to compile %s query for %s: %s", qtype, g, qerr.Message)
	}

	qm.cache[key] = query
	qm.logger.Debug("compiled query",
		"grammar", g.String(),
		"type", qtype.String())

	return query, nil
}

func queryString(g parser.Grammar, qtype QueryType) (string, error) {
	switch qtype {
	case QueryTypeJSX:
		if !g.SupportsJSX() {
			return "", fmt.Errorf("%w: %s has no %s", ErrNoQuery, g, qtype)
		}
		return jsx.Queries, nil
	default:
		return "", fmt.Errorf("unknown query type: %d", qtype)
	}
}

// HasJSX reports whether tree contains a JSX element. Grammars without JSX
// report false without running a query. The search stops at the first
// match.
func (qm *QueryManager) HasJSX(tree *ts.Tree, g parser.Grammar, source []byte) (bool, error) {
	if tree == nil {
		return false, fmt.Errorf("tree is nil")
	}
	if !g.SupportsJSX() {
		return false, nil
	}

	query, err := qm.GetQuery(g, QueryTypeJSX)
	if err != nil {
		return false, err
	}

	cursor := ts.NewQueryCursor()
	defer cursor.Close()

	matches := cursor.Matches(query, tree.RootNode(), source)
	return matches.Next() != nil, nil
}

// ExecuteQuery runs a compiled query on a parse tree and returns structured
// matches. Captured nodes are only valid while tree is open.
func (qm *QueryManager) ExecuteQuery(tree *ts.Tree, query *ts.Query, source []byte) ([]QueryMatch, error) {
	if tree == nil {
		return nil, fmt.Errorf("tree is nil")
	}
	if query == nil {
		return nil, fmt.Errorf("query is nil")
	}

	cursor := ts.NewQueryCursor()
	defer cursor.Close()

	iter := cursor.Matches(query, tree.RootNode(), source)
	captureNames := query.CaptureNames()

	var matches []QueryMatch
	for {
		match := iter.Next()
		if match == nil {
			break
		}

		var captures []QueryCapture
		for _, capture := range match.Captures {
			var captureName string
			if int(capture.Index) < len(captureNames) {
				captureName = captureNames[capture.Index]
			}
			category, field := parseCaptureName(captureName)

			captures = append(captures, QueryCapture{
				Name:      captureName,
				Category:  category,
				Field:     field,
				Text:      capture.Node.Utf8Text(source),
				StartByte: capture.Node.StartByte(),
				EndByte:   capture.Node.EndByte(),
			})
		}

		matches = append(matches, QueryMatch{
			PatternIndex: uint32(match.PatternIndex),
			Captures:     captures,
		})
	}

	return matches, nil
}

// Close releases all compiled queries. The manager cannot be used
// afterwards.
func (qm *QueryManager) Close() error {
	qm.mutex.Lock()
	defer qm.mutex.Unlock()

	qm.logger.Debug("closing QueryManager",
		"queries_compiled", len(qm.cache))

	for key, query := range qm.cache {
		if query != nil {
			query.Close()
		}
		delete(qm.cache, key)
	}
	return nil
}

// QueryMatch represents a single pattern match from query execution.
type QueryMatch struct {
	// PatternIndex identifies which query pattern matched
	PatternIndex uint32

	// Captures contains all captured nodes for this match
	Captures []QueryCapture
}

// QueryCapture represents a single captured node from a query match.
type QueryCapture struct {
	// Name is the full capture name (e.g., "jsx.element")
	Name string

	// Category is the part before the first dot ("jsx")
	Category string

	// Field is the part after it ("element"), empty if there is no dot
	Field string

	// Text is the source text of the captured node
	Text string

	StartByte uint
	EndByte   uint
}

// parseCaptureName splits a capture name like "jsx.element" into
// ("jsx", "element"). A name without a dot is returned as (name, "").
func parseCaptureName(name string) (category, field string) {
	parts := strings.SplitN(name, ".", 2)
	if len(parts) == 2 {
		return parts[0], parts[1]
	}
	return name, ""
}
