// Package token implements the DSL's tokenizer: it turns source text into
// a flat stream of Tokens, each carrying a source Span, ready for the
// recursive-descent parser.
package token

import "github.com/filipkocis/drumnbase/internal/ast"

// Kind classifies a Token.
type Kind int

const (
	KindIdentifier Kind = iota
	KindInt
	KindUInt
	KindFloat
	KindString
	KindKeyword      // control-flow keywords: let, if, else, while, for, loop, break, continue, return, fn, true, false, null
	KindQueryKeyword // query, select, insert, update, delete, where, order, limit, offset, exclude, join, on
	KindSDLKeyword   // create, drop, grant, database, table, column, policy, role, user, required, unique, default, connect, alter, execute, for
	KindSymbol       // { } ( ) [ ] , . ; : ?
	KindOperator     // arithmetic/comparison/assignment/logical/bitwise/shift/inc-dec, and ->
	KindEOF
)

// ControlKeywords is the fixed set recognized as KindKeyword.
var ControlKeywords = map[string]bool{
	"let": true, "if": true, "else": true, "while": true, "for": true,
	"loop": true, "break": true, "continue": true, "return": true,
	"fn": true, "true": true, "false": true, "null": true,
}

// QueryKeywords is the fixed set recognized as KindQueryKeyword.
var QueryKeywords = map[string]bool{
	"query": true, "select": true, "insert": true, "update": true,
	"delete": true, "where": true, "order": true, "limit": true,
	"offset": true, "exclude": true, "join": true, "on": true,
}

// SDLKeywords is the fixed set recognized as KindSDLKeyword.
var SDLKeywords = map[string]bool{
	"create": true, "drop": true, "grant": true, "database": true,
	"table": true, "column": true, "policy": true, "role": true,
	"user": true, "required": true, "unique": true, "default": true,
	"connect": true, "alter": true, "execute": true, "for": true,
}

// Token is one lexical unit.
type Token struct {
	Kind Kind
	Text string // raw source text (identifier name, operator symbol, keyword spelling)

	// Literal values, populated according to Kind.
	Int    int64
	UInt   uint64
	Float  float64
	String string

	Span ast.Span
}

func (t Token) String() string { return t.Text }

// IsKeyword reports whether t is the given control-flow keyword spelling.
func (t Token) IsKeyword(s string) bool { return t.Kind == KindKeyword && t.Text == s }

// IsQueryKeyword reports whether t is the given query keyword spelling.
func (t Token) IsQueryKeyword(s string) bool { return t.Kind == KindQueryKeyword && t.Text == s }

// IsSDLKeyword reports whether t is the given SDL keyword spelling. "for"
// is in both keyword sets and is lexed as KindKeyword, so a KindKeyword
// token whose text is in SDLKeywords also counts.
func (t Token) IsSDLKeyword(s string) bool {
	return t.Text == s && (t.Kind == KindSDLKeyword || (t.Kind == KindKeyword && SDLKeywords[s]))
}

// IsSymbol reports whether t is the given symbol/operator spelling.
func (t Token) IsSymbol(s string) bool {
	return (t.Kind == KindSymbol || t.Kind == KindOperator) && t.Text == s
}
