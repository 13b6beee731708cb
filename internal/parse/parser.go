// Package parse implements the DSL's hand-written recursive-descent parser.
// It turns a token.Token stream into the ast.Node tree the runner walks,
// fusing data-definition (SDL), queries, and the general statement/
// expression language into one grammar (§4.4).
package parse

import (
	"errors"
	"fmt"
	"strings"

	"github.com/filipkocis/drumnbase/internal/ast"
	"github.com/filipkocis/drumnbase/internal/token"
)

// Parser holds the token stream and accumulates errors rather than aborting
// on the first one, per §4.4's "every production records the current token
// as the error site and recovers by advancing past the faulty token".
type Parser struct {
	toks   []token.Token
	pos    int
	errors []error
}

// New constructs a Parser over an already-tokenized source.
func New(toks []token.Token) *Parser {
	return &Parser{toks: toks}
}

// Parse tokenizes and parses src in one call, returning the top-level Block
// and a combined error (via errors.Join) if any production failed.
func Parse(src string) (*ast.Block, error) {
	toks, err := token.Tokenize(src)
	if err != nil {
		return nil, err
	}
	p := New(toks)
	return p.ParseProgram()
}

// ParseProgram parses a sequence of top-level statements/queries/SDL until
// EOF, returning all accumulated errors joined together.
func (p *Parser) ParseProgram() (*ast.Block, error) {
	start := p.cur().Span
	var stmts []ast.Node
	for !p.atEOF() {
		n := p.parseTopLevel()
		if n != nil {
			stmts = append(stmts, n)
		}
		p.consumeStatementTerminator()
	}
	if len(p.errors) > 0 {
		return nil, errors.Join(p.errors...)
	}
	return &ast.Block{Span: start, Statements: stmts}, nil
}

func (p *Parser) parseTopLevel() ast.Node {
	switch {
	case p.cur().IsQueryKeyword("query"):
		return p.parseQuery()
	case p.cur().IsSDLKeyword("create") || p.cur().IsSDLKeyword("drop") || p.cur().IsSDLKeyword("grant"):
		return p.parseSDL()
	default:
		return p.parseStatement()
	}
}

// --- token stream helpers ---

func (p *Parser) cur() token.Token {
	if p.pos >= len(p.toks) {
		return token.Token{Kind: token.KindEOF}
	}
	return p.toks[p.pos]
}

func (p *Parser) peekAt(n int) token.Token {
	idx := p.pos + n
	if idx >= len(p.toks) {
		return token.Token{Kind: token.KindEOF}
	}
	return p.toks[idx]
}

func (p *Parser) atEOF() bool { return p.cur().Kind == token.KindEOF }

func (p *Parser) advance() token.Token {
	t := p.cur()
	if p.pos < len(p.toks)-1 || t.Kind != token.KindEOF {
		p.pos++
	}
	return t
}

// expectSymbol consumes a symbol/operator token with the given spelling or
// records an error at the current position and does not advance, so the
// caller's recovery (consumeStatementTerminator / synchronize) can proceed.
func (p *Parser) expectSymbol(s string) bool {
	if p.cur().IsSymbol(s) {
		p.advance()
		return true
	}
	p.errorf("expected %q, got %q", s, p.cur().Text)
	return false
}

func (p *Parser) expectIdentifier() (string, bool) {
	if p.cur().Kind == token.KindIdentifier {
		t := p.advance()
		return t.Text, true
	}
	p.errorf("expected identifier, got %q", p.cur().Text)
	return "", false
}

func (p *Parser) errorf(format string, args ...any) {
	line := p.cur().Span.Line
	msg := fmt.Sprintf(format, args...)
	p.errors = append(p.errors, fmt.Errorf("parse error at line %d: %s", line, msg))
}

// synchronize advances past tokens until a statement boundary (';' or '}')
// or EOF, so a single bad production doesn't cascade into spurious errors
// for everything that follows it.
func (p *Parser) synchronize() {
	for !p.atEOF() {
		if p.cur().IsSymbol(";") {
			p.advance()
			return
		}
		if p.cur().IsSymbol("}") {
			return
		}
		p.advance()
	}
}

// consumeStatementTerminator eats one optional trailing ';' — semicolons
// terminate statements at the top level and inside blocks (§4.4).
func (p *Parser) consumeStatementTerminator() {
	if p.cur().IsSymbol(";") {
		p.advance()
	}
}

func joinErrorStrings(errs []error) string {
	parts := make([]string, len(errs))
	for i, e := range errs {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "; ")
}
