package dbvalue

import "github.com/filipkocis/drumnbase/internal/ast"

// Column describes one field of a Table: its storage type, optional default
// expression, and the flags that govern how values are accepted into it.
type Column struct {
	Name     string
	Type     ColumnType
	NotNull  bool
	Unique   bool
	ReadOnly bool

	// Default is the AST expression evaluated to produce a value when an
	// INSERT omits this column; nil when the column has no default.
	Default ast.Node
}

// Len returns the column's fixed on-disk width.
func (c Column) Len() (int, error) { return c.Type.Len() }
