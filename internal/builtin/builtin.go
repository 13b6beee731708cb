// Package builtin implements the engine's built-in function library:
// print/println, arithmetic and formatting helpers, the sequence
// generator used by column defaults, and the current-user/stats
// introspection functions, each registered as a runner.Function with a
// NativeFunc body (§13, grounded on original_source's
// function/builtins.rs).
package builtin

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"

	"github.com/filipkocis/drumnbase/internal/ast"
	"github.com/filipkocis/drumnbase/internal/dbvalue"
	"github.com/filipkocis/drumnbase/internal/random"
	"github.com/filipkocis/drumnbase/internal/runner"
)

// Install registers every built-in function on db, overwriting any
// previous registration under the same name (§4.5, §13).
func Install(db *runner.Database) {
	for _, fn := range all() {
		db.AddFunction(fn)
	}
}

func param(name string, t ast.TypeRef) ast.Param { return ast.Param{Name: name, Type: t} }

func native(name string, params []ast.Param, ret ast.TypeRef, fn runner.NativeFunc) *runner.Function {
	return &runner.Function{Name: name, Params: params, ReturnType: ret, Native: fn}
}

func all() []*runner.Function {
	return []*runner.Function{
		printFn(), printlnFn(),
		nowFn(),
		floorFn(), ceilFn(), roundFn(), absFn(), sqrtFn(), powFn(),
		lenFn(),
		randomFn(), randomRangeFn(),
		formatFn(),
		seqFn(),
		currentUserNameFn(), currentUserIDFn(),
		statsFn(),
	}
}

func printFn() *runner.Function {
	return native("print", []ast.Param{param("values", ast.TypeRef{Name: "any"})}, ast.TypeRef{Name: "void"},
		func(c *runner.Ctx, args []dbvalue.Value) (dbvalue.Value, error) {
			if c.Log != nil {
				c.Log.Debug(args[0].String(), nil)
			}
			return dbvalue.Null, nil
		})
}

func printlnFn() *runner.Function {
	return native("println", []ast.Param{param("values", ast.TypeRef{Name: "any"})}, ast.TypeRef{Name: "void"},
		func(c *runner.Ctx, args []dbvalue.Value) (dbvalue.Value, error) {
			if c.Log != nil {
				c.Log.Debug(args[0].String()+"\n", nil)
			}
			return dbvalue.Null, nil
		})
}

func nowFn() *runner.Function {
	return native("now", nil, ast.TypeRef{Name: "time"},
		func(c *runner.Ctx, args []dbvalue.Value) (dbvalue.Value, error) {
			ms := uint64(time.Now().UnixMilli())
			return dbvalue.NewTimestamp(dbvalue.UnitMillis, ms), nil
		})
}

func asFloat(v dbvalue.Value) (float64, bool) {
	if v.Kind != dbvalue.KindNumeric {
		return 0, false
	}
	return v.Numeric.AsF64(), true
}

func floorFn() *runner.Function {
	return native("floor", []ast.Param{param("value", ast.TypeRef{Name: "f64"})}, ast.TypeRef{Name: "f64"},
		func(c *runner.Ctx, args []dbvalue.Value) (dbvalue.Value, error) {
			f, ok := asFloat(args[0])
			if !ok {
				return dbvalue.Value{}, fmt.Errorf("floor: expected argument 'value' to be of type 'float'")
			}
			return dbvalue.NewFloat(dbvalue.NumF64, math.Floor(f)), nil
		})
}

func ceilFn() *runner.Function {
	return native("ceil", []ast.Param{param("value", ast.TypeRef{Name: "f64"})}, ast.TypeRef{Name: "f64"},
		func(c *runner.Ctx, args []dbvalue.Value) (dbvalue.Value, error) {
			f, ok := asFloat(args[0])
			if !ok {
				return dbvalue.Value{}, fmt.Errorf("ceil: expected argument 'value' to be of type 'float'")
			}
			return dbvalue.NewFloat(dbvalue.NumF64, math.Ceil(f)), nil
		})
}

func roundFn() *runner.Function {
	return native("round", []ast.Param{
		param("value", ast.TypeRef{Name: "f64"}),
		param("precision", ast.TypeRef{Name: "i64"}),
	}, ast.TypeRef{Name: "f64"},
		func(c *runner.Ctx, args []dbvalue.Value) (dbvalue.Value, error) {
			f, ok := asFloat(args[0])
			if !ok {
				return dbvalue.Value{}, fmt.Errorf("round: expected argument 'value' to be of type 'float'")
			}
			p, ok := asFloat(args[1])
			if !ok {
				return dbvalue.Value{}, fmt.Errorf("round: expected argument 'precision' to be of type 'number'")
			}
			if p == 0 {
				return dbvalue.NewFloat(dbvalue.NumF64, math.Round(f)), nil
			}
			scale := math.Pow(10, p)
			return dbvalue.NewFloat(dbvalue.NumF64, math.Round(f*scale)/scale), nil
		})
}

func absFn() *runner.Function {
	return native("abs", []ast.Param{param("value", ast.TypeRef{Name: "any"})}, ast.TypeRef{Name: "f64"},
		func(c *runner.Ctx, args []dbvalue.Value) (dbvalue.Value, error) {
			f, ok := asFloat(args[0])
			if !ok {
				return dbvalue.Value{}, fmt.Errorf("abs: expected argument 'value' to be of type 'number'")
			}
			return dbvalue.NewFloat(dbvalue.NumF64, math.Abs(f)), nil
		})
}

func sqrtFn() *runner.Function {
	return native("sqrt", []ast.Param{param("value", ast.TypeRef{Name: "any"})}, ast.TypeRef{Name: "f64"},
		func(c *runner.Ctx, args []dbvalue.Value) (dbvalue.Value, error) {
			f, ok := asFloat(args[0])
			if !ok {
				return dbvalue.Value{}, fmt.Errorf("sqrt: expected argument 'value' to be of type 'number'")
			}
			return dbvalue.NewFloat(dbvalue.NumF64, math.Sqrt(f)), nil
		})
}

func powFn() *runner.Function {
	return native("pow", []ast.Param{
		param("base", ast.TypeRef{Name: "any"}),
		param("exponent", ast.TypeRef{Name: "any"}),
	}, ast.TypeRef{Name: "f64"},
		func(c *runner.Ctx, args []dbvalue.Value) (dbvalue.Value, error) {
			base, ok := asFloat(args[0])
			if !ok {
				return dbvalue.Value{}, fmt.Errorf("pow: expected argument 'base' to be of type 'number'")
			}
			exp, ok := asFloat(args[1])
			if !ok {
				return dbvalue.Value{}, fmt.Errorf("pow: expected argument 'exponent' to be of type 'number'")
			}
			return dbvalue.NewFloat(dbvalue.NumF64, math.Pow(base, exp)), nil
		})
}

func lenFn() *runner.Function {
	return native("len", []ast.Param{param("value", ast.TypeRef{Name: "any"})}, ast.TypeRef{Name: "u64"},
		func(c *runner.Ctx, args []dbvalue.Value) (dbvalue.Value, error) {
			switch args[0].Kind {
			case dbvalue.KindText:
				return dbvalue.NewUint(dbvalue.NumU64, uint64(len(args[0].Text))), nil
			case dbvalue.KindArray:
				return dbvalue.NewUint(dbvalue.NumU64, uint64(len(args[0].Array))), nil
			default:
				return dbvalue.Value{}, fmt.Errorf("len: expected argument 'value' to be of type 'text' or 'array'")
			}
		})
}

func randomFn() *runner.Function {
	return native("random", nil, ast.TypeRef{Name: "f64"},
		func(c *runner.Ctx, args []dbvalue.Value) (dbvalue.Value, error) {
			return dbvalue.NewFloat(dbvalue.NumF64, random.Float64()), nil
		})
}

func randomRangeFn() *runner.Function {
	return native("random_range", []ast.Param{
		param("min", ast.TypeRef{Name: "f64"}),
		param("max", ast.TypeRef{Name: "f64"}),
	}, ast.TypeRef{Name: "f64"},
		func(c *runner.Ctx, args []dbvalue.Value) (dbvalue.Value, error) {
			min, ok := asFloat(args[0])
			if !ok {
				return dbvalue.Value{}, fmt.Errorf("random_range: expected argument 'min' to be of type 'number'")
			}
			max, ok := asFloat(args[1])
			if !ok {
				return dbvalue.Value{}, fmt.Errorf("random_range: expected argument 'max' to be of type 'number'")
			}
			return dbvalue.NewFloat(dbvalue.NumF64, random.Range(min, max)), nil
		})
}

// formatFn implements printf-style substitution of "{}" placeholders in
// template with the textual form of each value in args, in order (§13).
func formatFn() *runner.Function {
	return native("format", []ast.Param{
		param("template", ast.TypeRef{Name: "text"}),
		param("values", ast.TypeRef{Name: "array"}),
	}, ast.TypeRef{Name: "text"},
		func(c *runner.Ctx, args []dbvalue.Value) (dbvalue.Value, error) {
			if args[0].Kind != dbvalue.KindText {
				return dbvalue.Value{}, fmt.Errorf("format: expected argument 'template' to be of type 'text'")
			}
			if args[1].Kind != dbvalue.KindArray {
				return dbvalue.Value{}, fmt.Errorf("format: expected argument 'values' to be of type 'array'")
			}
			template := args[0].Text
			values := args[1].Array
			var out strings.Builder
			vi := 0
			for i := 0; i < len(template); i++ {
				if template[i] == '{' && i+1 < len(template) && template[i+1] == '}' {
					if vi >= len(values) {
						return dbvalue.Value{}, fmt.Errorf("format: not enough values for template")
					}
					out.WriteString(values[vi].String())
					vi++
					i++
					continue
				}
				out.WriteByte(template[i])
			}
			return dbvalue.NewText(out.String()), nil
		})
}

// seqFn returns max(column)+1 scanned over the table currently bound as
// the insert's base table, used inside a column's default expression
// (§9, §13).
func seqFn() *runner.Function {
	return native("seq", []ast.Param{param("column", ast.TypeRef{Name: "text"})}, ast.TypeRef{Name: "u64"},
		func(c *runner.Ctx, args []dbvalue.Value) (dbvalue.Value, error) {
			if args[0].Kind != dbvalue.KindText {
				return dbvalue.Value{}, fmt.Errorf("seq: expected argument 'column' to be of type 'text'")
			}
			if c.BaseTable == nil {
				return dbvalue.Value{}, fmt.Errorf("seq: no table in scope (must be used in a column default)")
			}
			t := c.BaseTable
			idx := t.ColumnIndex(args[0].Text)
			if idx < 0 {
				return dbvalue.Value{}, fmt.Errorf("seq: unknown column %q", args[0].Text)
			}
			var max int64 = -1
			for _, row := range t.Committed {
				v := row.Values[idx]
				if v.Kind != dbvalue.KindNumeric {
					continue
				}
				if i := int64(v.Numeric.AsF64()); i > max {
					max = i
				}
			}
			next := max + 1
			if next < 0 {
				return dbvalue.NewUint(dbvalue.NumU64, 0), nil
			}
			return dbvalue.NewUint(dbvalue.NumU64, uint64(next)), nil
		})
}

func currentUserNameFn() *runner.Function {
	return native("current_user_name", nil, ast.TypeRef{Name: "text"},
		func(c *runner.Ctx, args []dbvalue.Value) (dbvalue.Value, error) {
			if c.AuthUser == nil {
				return dbvalue.Null, nil
			}
			return dbvalue.NewText(c.AuthUser.Name), nil
		})
}

// currentUserIDFn returns the authenticated user's name as well — the
// engine has no separate numeric user id (§3 "User" has only a name), so
// "id" here means the same stable identifier exposed as text.
func currentUserIDFn() *runner.Function {
	return native("current_user_id", nil, ast.TypeRef{Name: "text"},
		func(c *runner.Ctx, args []dbvalue.Value) (dbvalue.Value, error) {
			if c.AuthUser == nil {
				return dbvalue.Null, nil
			}
			return dbvalue.NewText(c.AuthUser.Name), nil
		})
}

// statsFn reports a process/host resource snapshot: resident memory and
// overall CPU utilization, surfaced for the engine's own operational
// introspection (§11, §13).
func statsFn() *runner.Function {
	return native("stats", nil, ast.TypeRef{Name: "array"},
		func(c *runner.Ctx, args []dbvalue.Value) (dbvalue.Value, error) {
			vm, err := mem.VirtualMemory()
			if err != nil {
				return dbvalue.Value{}, fmt.Errorf("stats: memory: %w", err)
			}
			percents, err := cpu.Percent(0, false)
			if err != nil {
				return dbvalue.Value{}, fmt.Errorf("stats: cpu: %w", err)
			}
			var cpuPct float64
			if len(percents) > 0 {
				cpuPct = percents[0]
			}
			return dbvalue.NewArray([]dbvalue.Value{
				dbvalue.NewUint(dbvalue.NumU64, vm.Used),
				dbvalue.NewUint(dbvalue.NumU64, vm.Total),
				dbvalue.NewFloat(dbvalue.NumF64, cpuPct),
			}), nil
		})
}
