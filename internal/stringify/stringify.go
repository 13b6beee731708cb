// Package stringify implements the canonical SDL pretty-printer: it turns a
// parsed SDL statement back into source text so the schema file stays a
// plain, replayable sequence of statements (§4.7, §6 "Schema file").
package stringify

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/filipkocis/drumnbase/internal/ast"
)

// Stmt renders one SDL statement node as source text, terminated by ";".
func Stmt(node ast.Node) string {
	var sb strings.Builder
	writeStmt(&sb, node)
	sb.WriteString(";")
	return sb.String()
}

func writeStmt(sb *strings.Builder, node ast.Node) {
	switch n := node.(type) {
	case *ast.CreateDatabase:
		fmt.Fprintf(sb, "create database %s", n.Name)
	case *ast.CreateTable:
		writeCreateTable(sb, n)
	case *ast.CreateRlsPolicy:
		writeCreatePolicy(sb, n)
	case *ast.CreateRole:
		fmt.Fprintf(sb, "create role %s", n.Name)
	case *ast.CreateUser:
		fmt.Fprintf(sb, "create user %s %q", n.Name, n.Password)
		if n.IsSuperuser {
			sb.WriteString(" superuser")
		}
	case *ast.GrantRole:
		fmt.Fprintf(sb, "grant role %s for %s", n.Role, n.To)
	case *ast.GrantAction:
		writeGrantAction(sb, n)
	case *ast.Drop:
		fmt.Fprintf(sb, "drop %s %s", n.Kind, n.Name)
	default:
		fmt.Fprintf(sb, "/* unrenderable node %T */", node)
	}
}

// writeCreateTable renders `create table NAME { col: type, flag; col:
// type, flag }`, matching parse.parseCreateTable exactly: columns are
// separated by ";" (a "," there would be consumed as another flag of the
// preceding column), flags within a column are "," separated.
func writeCreateTable(sb *strings.Builder, n *ast.CreateTable) {
	fmt.Fprintf(sb, "create table %s { ", n.Name)
	for i, col := range n.Columns {
		if i > 0 {
			sb.WriteString("; ")
		}
		writeColumnDef(sb, col)
	}
	sb.WriteString(" }")
}

func writeColumnDef(sb *strings.Builder, col ast.ColumnDef) {
	fmt.Fprintf(sb, "%s: %s", col.Name, columnTypeRefString(col.Type))
	if col.NotNull {
		sb.WriteString(", required")
	}
	if col.Unique {
		sb.WriteString(", unique")
	}
	if col.ReadOnly {
		sb.WriteString(", read_only")
	}
	if col.Default != nil {
		sb.WriteString(", default ")
		sb.WriteString(Expr(col.Default))
	}
}

func columnTypeRefString(t ast.ColumnTypeRef) string {
	switch t.Name {
	case "fixed":
		return fmt.Sprintf("fixed(%d)", t.FixedLen)
	case "time":
		return fmt.Sprintf("time(%s)", t.TimestampUnit)
	default:
		return t.Name
	}
}

// writeCreatePolicy renders `create policy "name" for table.action
// condition`, matching parse.parseCreatePolicy (no "on"/"using" keywords).
func writeCreatePolicy(sb *strings.Builder, n *ast.CreateRlsPolicy) {
	fmt.Fprintf(sb, "create policy %q for %s.%s %s",
		n.Policy.Name, n.Table, n.Policy.Action, Expr(n.Policy.Condition))
}

func writeGrantAction(sb *strings.Builder, n *ast.GrantAction) {
	sb.WriteString("grant ")
	sb.WriteString(strings.Join(n.Actions, ", "))
	sb.WriteString(" ")
	sb.WriteString(n.ObjectKind)
	sb.WriteString(" ")
	sb.WriteString(n.ObjectName)
	if n.Column != "" {
		sb.WriteString(".")
		sb.WriteString(n.Column)
	}
	fmt.Fprintf(sb, " for %s", n.To)
}

// Expr renders an expression node, used for column defaults and policy
// conditions embedded inside an SDL statement.
func Expr(node ast.Node) string {
	switch n := node.(type) {
	case nil:
		return "null"
	case *ast.IntLiteral:
		return strconv.FormatInt(n.Value, 10)
	case *ast.UIntLiteral:
		return strconv.FormatUint(n.Value, 10)
	case *ast.FloatLiteral:
		return strconv.FormatFloat(n.Value, 'g', -1, 64)
	case *ast.StringLiteral:
		return strconv.Quote(n.Value)
	case *ast.BoolLiteral:
		return strconv.FormatBool(n.Value)
	case *ast.NullLiteral:
		return "null"
	case *ast.Identifier:
		return n.Name
	case *ast.ArrayLiteral:
		parts := make([]string, len(n.Elements))
		for i, e := range n.Elements {
			parts[i] = Expr(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *ast.Unary:
		if n.Postfix {
			return Expr(n.Operand) + n.Op
		}
		return n.Op + Expr(n.Operand)
	case *ast.Binary:
		return fmt.Sprintf("%s %s %s", Expr(n.Left), n.Op, Expr(n.Right))
	case *ast.Member:
		return Expr(n.Target) + "." + n.Name
	case *ast.Index:
		return fmt.Sprintf("%s[%s]", Expr(n.Target), Expr(n.Index))
	case *ast.Call:
		args := make([]string, len(n.Args))
		for i, a := range n.Args {
			args[i] = Expr(a)
		}
		return fmt.Sprintf("%s(%s)", Expr(n.Callee), strings.Join(args, ", "))
	default:
		return fmt.Sprintf("/* unrenderable expr %T */", node)
	}
}
