package runner

import (
	"fmt"

	"github.com/filipkocis/drumnbase/internal/dbvalue"
)

// NativeFunc is a built-in's Go implementation, registered on a Function
// in place of an AST Body (§4.5, §10 "built-in function library").
type NativeFunc func(c *Ctx, args []dbvalue.Value) (dbvalue.Value, error)

// Call invokes fn with args already evaluated in the caller's scope. A
// user-defined function runs its Body in a fresh child scope with one
// binding per parameter; a built-in just forwards to Native. Both share
// the same arity check (§7 "calling a function with the wrong number of
// arguments").
func (fn *Function) Call(c *Ctx, args []dbvalue.Value) (dbvalue.Value, error) {
	if len(args) != len(fn.Params) {
		return dbvalue.Value{}, fmt.Errorf("%s: expected %d argument(s), got %d", fn.Name, len(fn.Params), len(args))
	}

	if fn.Native != nil {
		return fn.Native(c, args)
	}

	callCtx := c.child()
	for i, p := range fn.Params {
		callCtx.Scope.Declare(p.Name, args[i])
	}

	res := Eval(callCtx, fn.Body)
	switch res.Signal {
	case SigReturn, SigNone:
		return res.Value, nil
	case SigError:
		return dbvalue.Value{}, res.Err
	default:
		// break/continue escaping a function body is a parser/evaluator
		// invariant violation, not a user-facing error condition; treat it
		// as an implicit empty return.
		return dbvalue.Value{}, nil
	}
}
