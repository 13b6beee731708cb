// Package scope implements the runner's variable environment: a chain of
// frames supporting `let` declarations that shadow outer names within a
// block and are discarded on scope exit (§4.5).
package scope

import (
	"fmt"

	"github.com/filipkocis/drumnbase/internal/dbvalue"
)

// Scope is one frame in the chain. The root scope of a query has no
// parent; `if`/`while`/`for`/`loop` bodies and function calls each push a
// child frame before evaluating their block and pop it on exit.
type Scope struct {
	parent *Scope
	vars   map[string]dbvalue.Value
}

// New creates a root scope with no parent.
func New() *Scope {
	return &Scope{vars: make(map[string]dbvalue.Value)}
}

// Push returns a new child scope nested under s.
func (s *Scope) Push() *Scope {
	return &Scope{parent: s, vars: make(map[string]dbvalue.Value)}
}

// Declare binds name to value in this frame, shadowing any outer binding
// of the same name until this frame is discarded.
func (s *Scope) Declare(name string, value dbvalue.Value) {
	s.vars[name] = value
}

// Lookup walks the scope chain from s upward, returning the nearest
// binding of name.
func (s *Scope) Lookup(name string) (dbvalue.Value, bool) {
	for f := s; f != nil; f = f.parent {
		if v, ok := f.vars[name]; ok {
			return v, true
		}
	}
	return dbvalue.Value{}, false
}

// Assign rebinds the nearest existing slot named name. It fails if no such
// slot exists anywhere in the chain — assignment never creates a new slot.
func (s *Scope) Assign(name string, value dbvalue.Value) error {
	for f := s; f != nil; f = f.parent {
		if _, ok := f.vars[name]; ok {
			f.vars[name] = value
			return nil
		}
	}
	return fmt.Errorf("scope: undeclared variable %q", name)
}
