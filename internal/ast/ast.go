// Package ast defines the node set the parser builds and the runner walks:
// blocks, literals, statements, expressions, queries, and SDL — all fused
// into one small family of types, following the grammar described by the
// tokenizer/parser component design.
package ast

// Span locates a node in its source text, for error reporting.
type Span struct {
	Start int
	End   int
	Line  int
}

// Node is implemented by every AST node. Node-specific behaviour is reached
// through a type switch in the parser and runner, the same way the teacher's
// Operation/OperationKind pairing is switched on in migration planning.
type Node interface {
	Span() Span
}

func (s Span) Span() Span { return s }
