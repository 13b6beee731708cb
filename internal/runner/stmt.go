package runner

import (
	"fmt"

	"github.com/filipkocis/drumnbase/internal/ast"
	"github.com/filipkocis/drumnbase/internal/dbvalue"
)

// evalBlock evaluates statements in order; the block's value is its last
// statement's value, and any non-SigNone result from a child statement
// stops the block immediately and propagates upward (§4.5, §9).
func evalBlock(c *Ctx, n *ast.Block) Result {
	inner := c.child()
	last := value(dbvalue.Null)
	for _, stmt := range n.Statements {
		last = Eval(inner, stmt)
		if last.Signal != SigNone {
			return last
		}
	}
	return last
}

// evalLet declares a new binding in the current scope, shadowing any outer
// binding of the same name for the block's lifetime (§9).
func evalLet(c *Ctx, n *ast.Let) Result {
	r := Eval(c, n.Value)
	if r.Signal != SigNone {
		return r
	}
	c.Scope.Declare(n.Name, r.Value)
	return value(r.Value)
}

// evalAssign resolves the target's existing slot and rebinds it; compound
// operators (+=, -=, ...) evaluate as `name = name op value`.
func evalAssign(c *Ctx, n *ast.Assign) Result {
	ident, ok := n.Target.(*ast.Identifier)
	if !ok {
		return errResult(fmt.Errorf("runner: assignment target must be an identifier"))
	}
	rhs := Eval(c, n.Value)
	if rhs.Signal != SigNone {
		return rhs
	}
	newVal := rhs.Value
	if n.Op != "=" {
		op, ok := compoundOp(n.Op)
		if !ok {
			return errResult(fmt.Errorf("runner: unknown assignment operator %q", n.Op))
		}
		cur, err := c.resolve(ident.Name)
		if err != nil {
			return errResult(err)
		}
		res := applyBinary(op, cur, rhs.Value)
		if res.IsError() {
			return res
		}
		newVal = res.Value
	}
	if err := c.Scope.Assign(ident.Name, newVal); err != nil {
		return errResult(err)
	}
	return value(newVal)
}

func compoundOp(op string) (string, bool) {
	if len(op) < 2 || op[len(op)-1] != '=' {
		return "", false
	}
	return op[:len(op)-1], true
}

func evalReturn(c *Ctx, n *ast.Return) Result {
	if n.Value == nil {
		return Result{Value: dbvalue.Null, Signal: SigReturn}
	}
	r := Eval(c, n.Value)
	if r.Signal == SigError {
		return r
	}
	return Result{Value: r.Value, Signal: SigReturn}
}

func evalIf(c *Ctx, n *ast.If) Result {
	cond := Eval(c, n.Cond)
	if cond.Signal != SigNone {
		return cond
	}
	if cond.Value.Kind != dbvalue.KindBoolean {
		return errResult(fmt.Errorf("if condition must be boolean"))
	}
	if cond.Value.Boolean {
		return Eval(c, n.Then)
	}
	if n.Else != nil {
		return Eval(c, n.Else)
	}
	return value(dbvalue.Null)
}

func evalWhile(c *Ctx, n *ast.While) Result {
	inner := c.child()
	for {
		cond := Eval(inner, n.Cond)
		if cond.Signal != SigNone {
			return cond
		}
		if cond.Value.Kind != dbvalue.KindBoolean {
			return errResult(fmt.Errorf("while condition must be boolean"))
		}
		if !cond.Value.Boolean {
			return value(dbvalue.Null)
		}
		res := Eval(inner, n.Body)
		switch res.Signal {
		case SigBreak:
			return value(dbvalue.Null)
		case SigReturn, SigError:
			return res
		case SigContinue, SigNone:
			// fall through to the next iteration
		}
	}
}

// evalFor establishes the loop's own scope, evaluates Init once, then
// re-checks Cond before each iteration and runs Post after each body
// evaluation (§4.5).
func evalFor(c *Ctx, n *ast.For) Result {
	inner := c.child()
	if n.Init != nil {
		r := Eval(inner, n.Init)
		if r.Signal == SigError {
			return r
		}
	}
	for {
		if n.Cond != nil {
			cond := Eval(inner, n.Cond)
			if cond.Signal != SigNone {
				return cond
			}
			if cond.Value.Kind != dbvalue.KindBoolean {
				return errResult(fmt.Errorf("for condition must be boolean"))
			}
			if !cond.Value.Boolean {
				return value(dbvalue.Null)
			}
		}
		res := Eval(inner, n.Body)
		switch res.Signal {
		case SigBreak:
			return value(dbvalue.Null)
		case SigReturn, SigError:
			return res
		}
		if n.Post != nil {
			p := Eval(inner, n.Post)
			if p.Signal == SigError {
				return p
			}
		}
	}
}

func evalLoop(c *Ctx, n *ast.Loop) Result {
	inner := c.child()
	for {
		res := Eval(inner, n.Body)
		switch res.Signal {
		case SigBreak:
			return value(dbvalue.Null)
		case SigReturn, SigError:
			return res
		}
	}
}

// evalFuncDecl registers a user-defined function in the current database,
// keyed by name (§4.5 "Function declarations").
func evalFuncDecl(c *Ctx, n *ast.FuncDecl) Result {
	c.DB.AddFunction(&Function{
		Name:       n.Name,
		Params:     n.Params,
		ReturnType: n.ReturnType,
		Body:       n.Body,
	})
	return value(dbvalue.Null)
}
