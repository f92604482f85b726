package parser

import (
	"sync"
	"sync/atomic"

	"doccov/internal/shared/observability"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// ParserPool recycles tree-sitter parser instances so concurrent analyses
// each get their own parser without paying sitter.NewParser() per file.
//
// Usage:
//
//	sp := pool.Get()
//	defer pool.Put(sp)
//	tree := sp.Parse(source, nil)
//
// Concurrency: safe for use by multiple goroutines simultaneously. A leased
// parser must only be used by the goroutine that leased it.
type ParserPool struct {
	lang   *sitter.Language
	pool   sync.Pool
	leases atomic.Int64
}

// NewParserPool creates a pool for the given language grammar.
// The language must remain valid for the lifetime of the pool.
func NewParserPool(lang *sitter.Language) *ParserPool {
	p := &ParserPool{lang: lang}
	p.pool = sync.Pool{
		New: func() any {
			sp := sitter.NewParser()
			_ = sp.SetLanguage(lang)
			return sp
		},
	}
	return p
}

// Get retrieves a parser from the pool, or allocates a new one if the pool is
// empty. The returned parser is already configured for the pool's language.
func (p *ParserPool) Get() *sitter.Parser {
	sp := p.pool.Get().(*sitter.Parser)
	// Ensure the language is set in case the parser was Reset() externally.
	_ = sp.SetLanguage(p.lang)

	observability.ParserLeases.Set(float64(p.leases.Add(1)))
	return sp
}

// Put returns a parser to the pool for reuse. The parser is reset before
// being stored so that no references to previous parse trees are retained.
// Callers must not use sp after calling Put.
func (p *ParserPool) Put(sp *sitter.Parser) {
	if sp == nil {
		return
	}
	observability.ParserLeases.Set(float64(p.leases.Add(-1)))

	sp.Reset()
	p.pool.Put(sp)
}

// Active returns the number of currently leased parsers.
func (p *ParserPool) Active() int {
	return int(p.leases.Load())
}
