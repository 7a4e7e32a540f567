package parser

import (
	"fmt"
	"log/slog"
	"sync"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/observing-components/pkg/util"
)

// parserPool hands out tree-sitter parsers bound to one grammar.
//
// Parsers are created lazily up to maxSize; once that many exist, acquire
// blocks until one is released. The size matches the runner's worker count
// so workers never wait on parsers.
type parserPool struct {
	// pool holds idle parsers.
	pool chan *ts.Parser

	grammar Grammar
	maxSize int

	// mutex protects created.
	mutex   sync.Mutex
	created int

	logger *slog.Logger
}

func newParserPool(grammar Grammar, maxSize int, logger *slog.Logger) *parserPool {
	if maxSize <= 0 {
		maxSize = util.GetOptimalPoolSize()
	}
	return &parserPool{
		pool:    make(chan *ts.Parser, maxSize),
		grammar: grammar,
		maxSize: maxSize,
		logger:  logger,
	}
}

// acquire returns an idle parser, creating one while below maxSize.
func (p *parserPool) acquire() (*ts.Parser, error) {
	select {
	case parser := <-p.pool:
		return parser, nil
	default:
		return p.createParserIfNeeded()
	}
}

// createParserIfNeeded creates a parser when the pool may still grow and
// otherwise waits for one to be released.
func (p *parserPool) createParserIfNeeded() (*ts.Parser, error) {
	p.mutex.Lock()
	if p.created >= p.maxSize {
		p.mutex.Unlock()
		return <-p.pool, nil
	}

	langPtr, ok := p.grammar.pointer()
	if !ok {
		p.mutex.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, p.grammar)
	}

	parser := ts.NewParser()
	if parser == nil {
		p.mutex.Unlock()
		return nil, fmt.Errorf("failed to create parser")
	}
	if err := parser.SetLanguage(ts.NewLanguage(langPtr)); err != nil {
		parser.Close()
		p.mutex.Unlock()
		return nil, fmt.Errorf("failed to set language %s: %w", p.grammar, err)
	}

	p.created++
	p.logger.Debug("created parser in pool",
		"grammar", p.grammar.String(),
		"pool_size", p.created)
	p.mutex.Unlock()
	return parser, nil
}

// release returns a parser to the pool.
func (p *parserPool) release(parser *ts.Parser) {
	if parser == nil {
		return
	}
	select {
	case p.pool <- parser:
	default:
		parser.Close()
		p.logger.Warn("parser pool full, closing excess parser",
			"grammar", p.grammar.String())
	}
}

// close closes every idle parser. The pool is unusable afterwards.
func (p *parserPool) close() {
	close(p.pool)
	count := 0
	for parser := range p.pool {
		if parser != nil {
			parser.Close()
			count++
		}
	}
	p.logger.Debug("closed parser pool",
		"grammar", p.grammar.String(),
		"parsers_closed", count)
}

func (p *parserPool) getCreatedCount() int {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.created
}
