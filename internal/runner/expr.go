package runner

import (
	"fmt"

	"github.com/filipkocis/drumnbase/internal/ast"
	"github.com/filipkocis/drumnbase/internal/dbvalue"
)

// Eval dispatches on the concrete AST node type and returns its Result.
// Statement nodes may carry a control Signal; expression nodes always
// return SigNone.
func Eval(c *Ctx, node ast.Node) Result {
	switch n := node.(type) {
	case nil:
		return value(dbvalue.Null)

	// Literals
	case *ast.IntLiteral:
		return value(dbvalue.NewInt(dbvalue.NumI64, n.Value))
	case *ast.UIntLiteral:
		return value(dbvalue.NewUint(dbvalue.NumU64, n.Value))
	case *ast.FloatLiteral:
		return value(dbvalue.NewFloat(dbvalue.NumF64, n.Value))
	case *ast.StringLiteral:
		return value(dbvalue.NewText(n.Value))
	case *ast.BoolLiteral:
		return value(dbvalue.NewBoolean(n.Value))
	case *ast.NullLiteral:
		return value(dbvalue.Null)
	case *ast.ArrayLiteral:
		elems := make([]dbvalue.Value, 0, len(n.Elements))
		for _, e := range n.Elements {
			r := Eval(c, e)
			if r.Signal != SigNone {
				return r
			}
			elems = append(elems, r.Value)
		}
		return value(dbvalue.NewArray(elems))

	case *ast.Identifier:
		v, err := c.resolve(n.Name)
		if err != nil {
			return errResult(err)
		}
		return value(v)

	case *ast.Member:
		return evalMember(c, n)

	case *ast.Wildcard:
		return errResult(fmt.Errorf("wildcard is only valid in a select column list"))

	case *ast.Unary:
		return evalUnary(c, n)

	case *ast.Binary:
		return evalBinary(c, n)

	case *ast.Call:
		return evalCall(c, n)

	case *ast.Index:
		return evalIndex(c, n)

	// Statements delegate to stmt.go.
	case *ast.Block:
		return evalBlock(c, n)
	case *ast.Let:
		return evalLet(c, n)
	case *ast.Assign:
		return evalAssign(c, n)
	case *ast.ExprStmt:
		return Eval(c, n.Expr)
	case *ast.Return:
		return evalReturn(c, n)
	case *ast.Break:
		return Result{Signal: SigBreak}
	case *ast.Continue:
		return Result{Signal: SigContinue}
	case *ast.If:
		return evalIf(c, n)
	case *ast.While:
		return evalWhile(c, n)
	case *ast.For:
		return evalFor(c, n)
	case *ast.Loop:
		return evalLoop(c, n)
	case *ast.FuncDecl:
		return evalFuncDecl(c, n)

	// Queries and SDL are valid top-level (and nested-block) statements in
	// a program (§4.4's grammar mixes them freely with control flow); each
	// delegates to its dedicated executor in query.go/sdl.go.
	case *ast.Select:
		v, err := ExecSelect(c, n)
		if err != nil {
			return errResult(err)
		}
		return value(v)
	case *ast.Insert:
		v, err := ExecInsert(c, n)
		if err != nil {
			return errResult(err)
		}
		return value(v)
	case *ast.Update:
		v, err := ExecUpdate(c, n)
		if err != nil {
			return errResult(err)
		}
		return value(v)
	case *ast.Delete:
		v, err := ExecDelete(c, n)
		if err != nil {
			return errResult(err)
		}
		return value(v)
	case *ast.CreateTable, *ast.CreateRlsPolicy, *ast.CreateDatabase, *ast.CreateRole,
		*ast.CreateUser, *ast.GrantRole, *ast.GrantAction, *ast.Drop:
		if err := ExecSDL(c, n, c.DB.Schema); err != nil {
			return errResult(err)
		}
		return value(dbvalue.NewBoolean(true))

	default:
		return errResult(fmt.Errorf("runner: cannot evaluate node of type %T", node))
	}
}

// resolve implements identifier resolution: current row's columns first
// (base table, then joined tables), then the scope chain (§4.5).
func (c *Ctx) resolve(name string) (dbvalue.Value, error) {
	if c.BaseTable != nil {
		if idx := c.BaseTable.ColumnIndex(name); idx >= 0 {
			if c.BaseRow == nil {
				return dbvalue.Null, nil
			}
			return c.BaseRow.Values[idx], nil
		}
	}
	for _, ref := range c.Joined {
		if ref.Null || ref.Table == nil {
			continue
		}
		if idx := ref.Table.ColumnIndex(name); idx >= 0 {
			if ref.RowIndex < 0 || ref.RowIndex >= len(ref.Table.Committed) {
				return dbvalue.Null, nil
			}
			return ref.Table.Committed[ref.RowIndex].Values[idx], nil
		}
	}
	if v, ok := c.Scope.Lookup(name); ok {
		return v, nil
	}
	return dbvalue.Value{}, fmt.Errorf("undefined identifier %q", name)
}

func evalMember(c *Ctx, n *ast.Member) Result {
	if ident, ok := n.Target.(*ast.Identifier); ok {
		if ref, ok := c.JoinedByName[ident.Name]; ok {
			if ref.Null {
				return value(dbvalue.Null)
			}
			idx := ref.Table.ColumnIndex(n.Name)
			if idx < 0 {
				return errResult(fmt.Errorf("table %q has no column %q", ident.Name, n.Name))
			}
			return value(ref.Table.Committed[ref.RowIndex].Values[idx])
		}
		if c.BaseTable != nil && ident.Name == c.BaseTable.Name {
			idx := c.BaseTable.ColumnIndex(n.Name)
			if idx < 0 {
				return errResult(fmt.Errorf("table %q has no column %q", ident.Name, n.Name))
			}
			if c.BaseRow == nil {
				return value(dbvalue.Null)
			}
			return value(c.BaseRow.Values[idx])
		}
	}
	return errResult(fmt.Errorf("runner: member access %q is not a table.column selector", n.Name))
}

func evalIndex(c *Ctx, n *ast.Index) Result {
	tr := Eval(c, n.Target)
	if tr.Signal != SigNone {
		return tr
	}
	ir := Eval(c, n.Index)
	if ir.Signal != SigNone {
		return ir
	}
	if tr.Value.Kind != dbvalue.KindArray {
		return errResult(fmt.Errorf("index target is not an array"))
	}
	if ir.Value.Kind != dbvalue.KindNumeric {
		return errResult(fmt.Errorf("index must be numeric"))
	}
	i := int(ir.Value.Numeric.AsF64())
	if i < 0 || i >= len(tr.Value.Array) {
		return errResult(fmt.Errorf("index %d out of range", i))
	}
	return value(tr.Value.Array[i])
}

func evalCall(c *Ctx, n *ast.Call) Result {
	ident, ok := n.Callee.(*ast.Identifier)
	if !ok {
		return errResult(fmt.Errorf("runner: call target must be a function name"))
	}
	fn, ok := c.DB.Function(ident.Name)
	if !ok {
		return errResult(fmt.Errorf("undefined function %q", ident.Name))
	}
	args := make([]dbvalue.Value, 0, len(n.Args))
	for _, a := range n.Args {
		r := Eval(c, a)
		if r.Signal != SigNone {
			return r
		}
		args = append(args, r.Value)
	}
	v, err := fn.Call(c, args)
	if err != nil {
		return errResult(err)
	}
	return value(v)
}

func evalUnary(c *Ctx, n *ast.Unary) Result {
	if n.Op == "++" || n.Op == "--" {
		return evalIncDec(c, n)
	}
	r := Eval(c, n.Operand)
	if r.Signal != SigNone {
		return r
	}
	switch n.Op {
	case "!":
		if r.Value.Kind != dbvalue.KindBoolean {
			return errResult(fmt.Errorf("! requires a boolean operand"))
		}
		return value(dbvalue.NewBoolean(!r.Value.Boolean))
	case "-":
		return negate(r.Value)
	default:
		return errResult(fmt.Errorf("runner: unknown unary operator %q", n.Op))
	}
}

func negate(v dbvalue.Value) Result {
	if v.Kind != dbvalue.KindNumeric {
		return errResult(fmt.Errorf("unary - requires a numeric operand"))
	}
	num := v.Numeric
	switch {
	case num.Width.IsFloat():
		return value(dbvalue.NewFloat(num.Width, -num.F))
	case num.Width.IsSigned():
		return value(dbvalue.NewInt(num.Width, -num.I))
	default:
		return value(dbvalue.NewInt(dbvalue.NumI64, -int64(num.U)))
	}
}

// evalIncDec desugars ++x/x++/--x/x-- to `name = name ± 1`, returning the
// new value per §4.5.
func evalIncDec(c *Ctx, n *ast.Unary) Result {
	ident, ok := n.Operand.(*ast.Identifier)
	if !ok {
		return errResult(fmt.Errorf("%s requires an identifier operand", n.Op))
	}
	cur, err := c.resolve(ident.Name)
	if err != nil {
		return errResult(err)
	}
	if cur.Kind != dbvalue.KindNumeric {
		return errResult(fmt.Errorf("%s requires a numeric identifier", n.Op))
	}
	delta := int64(1)
	if n.Op == "--" {
		delta = -1
	}
	next := addNumericDelta(cur.Numeric, delta)
	if err := c.Scope.Assign(ident.Name, next); err != nil {
		return errResult(err)
	}
	return value(next)
}

func addNumericDelta(n dbvalue.Numeric, delta int64) dbvalue.Value {
	switch {
	case n.Width.IsFloat():
		return dbvalue.NewFloat(n.Width, n.F+float64(delta))
	case n.Width.IsSigned():
		return dbvalue.NewInt(n.Width, n.I+delta)
	default:
		return dbvalue.NewUint(n.Width, uint64(int64(n.U)+delta))
	}
}

func evalBinary(c *Ctx, n *ast.Binary) Result {
	lr := Eval(c, n.Left)
	if lr.Signal != SigNone {
		return lr
	}
	if n.Op == "&&" {
		if lr.Value.Kind != dbvalue.KindBoolean {
			return errResult(fmt.Errorf("&& requires boolean operands"))
		}
		if !lr.Value.Boolean {
			return value(dbvalue.NewBoolean(false))
		}
		rr := Eval(c, n.Right)
		if rr.Signal != SigNone {
			return rr
		}
		if rr.Value.Kind != dbvalue.KindBoolean {
			return errResult(fmt.Errorf("&& requires boolean operands"))
		}
		return value(dbvalue.NewBoolean(rr.Value.Boolean))
	}
	if n.Op == "||" {
		if lr.Value.Kind != dbvalue.KindBoolean {
			return errResult(fmt.Errorf("|| requires boolean operands"))
		}
		if lr.Value.Boolean {
			return value(dbvalue.NewBoolean(true))
		}
		rr := Eval(c, n.Right)
		if rr.Signal != SigNone {
			return rr
		}
		if rr.Value.Kind != dbvalue.KindBoolean {
			return errResult(fmt.Errorf("|| requires boolean operands"))
		}
		return value(dbvalue.NewBoolean(rr.Value.Boolean))
	}

	rr := Eval(c, n.Right)
	if rr.Signal != SigNone {
		return rr
	}
	return applyBinary(n.Op, lr.Value, rr.Value)
}

func applyBinary(op string, l, r dbvalue.Value) Result {
	switch op {
	case "==":
		return value(dbvalue.NewBoolean(l.Equal(r)))
	case "!=":
		return value(dbvalue.NewBoolean(!l.Equal(r)))
	case "<":
		return value(dbvalue.NewBoolean(l.Compare(r) < 0))
	case "<=":
		return value(dbvalue.NewBoolean(l.Compare(r) <= 0))
	case ">":
		return value(dbvalue.NewBoolean(l.Compare(r) > 0))
	case ">=":
		return value(dbvalue.NewBoolean(l.Compare(r) >= 0))
	}

	if op == "+" || op == "-" {
		if l.Kind == dbvalue.KindText && r.Kind == dbvalue.KindText && op == "+" {
			return value(dbvalue.NewText(l.Text + r.Text))
		}
		if l.Kind == dbvalue.KindArray && r.Kind == dbvalue.KindArray && op == "+" {
			out := append(append([]dbvalue.Value(nil), l.Array...), r.Array...)
			return value(dbvalue.NewArray(out))
		}
		if l.Kind == dbvalue.KindBoolean && r.Kind == dbvalue.KindBoolean {
			if op == "+" {
				return value(dbvalue.NewBoolean(l.Boolean || r.Boolean))
			}
			return value(dbvalue.NewBoolean(l.Boolean && !r.Boolean))
		}
	}

	if l.Kind == dbvalue.KindNumeric && r.Kind == dbvalue.KindNumeric {
		return arithmetic(op, l.Numeric, r.Numeric)
	}

	if isBitwise(op) {
		if l.Kind != dbvalue.KindNumeric || r.Kind != dbvalue.KindNumeric || l.Numeric.Width.IsFloat() || r.Numeric.Width.IsFloat() {
			return errResult(fmt.Errorf("%s requires integer operands", op))
		}
		return bitwise(op, l.Numeric, r.Numeric)
	}

	return errResult(fmt.Errorf("runner: operator %q not supported for %s and %s", op, l.Kind, r.Kind))
}

func isBitwise(op string) bool {
	switch op {
	case "&", "|", "^", "<<", ">>":
		return true
	default:
		return false
	}
}

// arithmetic implements the promotion table: i64⊕i64→i64, u64⊕u64→u64,
// any⊕f64→f64, mixed signed/unsigned→i64 (§4.5).
func arithmetic(op string, l, r dbvalue.Numeric) Result {
	if l.Width.IsFloat() || r.Width.IsFloat() {
		a, b := l.AsF64(), r.AsF64()
		f, err := floatOp(op, a, b)
		if err != nil {
			return errResult(err)
		}
		return value(dbvalue.NewFloat(dbvalue.NumF64, f))
	}
	if l.Width.IsUnsigned() && r.Width.IsUnsigned() {
		u, err := uintOp(op, l.U, r.U)
		if err != nil {
			return errResult(err)
		}
		return value(dbvalue.NewUint(dbvalue.NumU64, u))
	}
	a, b := asI64(l), asI64(r)
	i, err := intOp(op, a, b)
	if err != nil {
		return errResult(err)
	}
	return value(dbvalue.NewInt(dbvalue.NumI64, i))
}

func asI64(n dbvalue.Numeric) int64 {
	if n.Width.IsSigned() {
		return n.I
	}
	return int64(n.U)
}

func floatOp(op string, a, b float64) (float64, error) {
	switch op {
	case "+":
		return a + b, nil
	case "-":
		return a - b, nil
	case "*":
		return a * b, nil
	case "/":
		if b == 0 {
			return 0, fmt.Errorf("division by zero")
		}
		return a / b, nil
	default:
		return 0, fmt.Errorf("runner: unsupported float operator %q", op)
	}
}

func intOp(op string, a, b int64) (int64, error) {
	switch op {
	case "+":
		return a + b, nil
	case "-":
		return a - b, nil
	case "*":
		return a * b, nil
	case "/":
		if b == 0 {
			return 0, fmt.Errorf("division by zero")
		}
		return a / b, nil
	case "%":
		if b == 0 {
			return 0, fmt.Errorf("division by zero")
		}
		return a % b, nil
	default:
		return 0, fmt.Errorf("runner: unsupported integer operator %q", op)
	}
}

func uintOp(op string, a, b uint64) (uint64, error) {
	switch op {
	case "+":
		return a + b, nil
	case "-":
		return a - b, nil
	case "*":
		return a * b, nil
	case "/":
		if b == 0 {
			return 0, fmt.Errorf("division by zero")
		}
		return a / b, nil
	case "%":
		if b == 0 {
			return 0, fmt.Errorf("division by zero")
		}
		return a % b, nil
	default:
		return 0, fmt.Errorf("runner: unsupported integer operator %q", op)
	}
}

func bitwise(op string, l, r dbvalue.Numeric) Result {
	a, b := asI64(l), asI64(r)
	var out int64
	switch op {
	case "&":
		out = a & b
	case "|":
		out = a | b
	case "^":
		out = a ^ b
	case "<<":
		out = a << uint64(b)
	case ">>":
		out = a >> uint64(b)
	default:
		return errResult(fmt.Errorf("runner: unsupported bitwise operator %q", op))
	}
	return value(dbvalue.NewInt(dbvalue.NumI64, out))
}

