package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filipkocis/drumnbase/internal/ast"
)

func TestParseSelectWithJoinWhereOrder(t *testing.T) {
	prog, err := Parse(`query users select id, name left join orders on orders.user_id == id where id > 1 order ++name limit 10;`)
	require.NoError(t, err)
	require.Len(t, prog.Statements, 1)

	sel, ok := prog.Statements[0].(*ast.Select)
	require.True(t, ok)
	assert.Equal(t, "users", sel.Table)
	require.Len(t, sel.Columns, 2)
	require.Len(t, sel.Joins, 1)
	assert.Equal(t, ast.JoinLeft, sel.Joins[0].Kind)
	assert.Equal(t, "orders", sel.Joins[0].Table)
	require.NotNil(t, sel.Where)
	require.NotNil(t, sel.Order)
	assert.Equal(t, "name", sel.Order.Column)
	assert.True(t, sel.Order.Ascending)
	require.NotNil(t, sel.Limit)
}

func TestParseSelectWildcardAndTableWildcard(t *testing.T) {
	prog, err := Parse(`query users select *;`)
	require.NoError(t, err)
	sel := prog.Statements[0].(*ast.Select)
	_, ok := sel.Columns[0].(*ast.Wildcard)
	assert.True(t, ok)

	prog2, err := Parse(`query users select users.*;`)
	require.NoError(t, err)
	sel2 := prog2.Statements[0].(*ast.Select)
	wc, ok := sel2.Columns[0].(*ast.Wildcard)
	require.True(t, ok)
	assert.Equal(t, "users", wc.Table)
}

func TestParseInsertAndUpdate(t *testing.T) {
	prog, err := Parse(`query users insert name:"alice", age:30;`)
	require.NoError(t, err)
	ins := prog.Statements[0].(*ast.Insert)
	require.Len(t, ins.Values, 2)
	assert.Equal(t, "name", ins.Values[0].Column)

	prog2, err := Parse(`query users update age:31 where id == 1;`)
	require.NoError(t, err)
	upd := prog2.Statements[0].(*ast.Update)
	require.Len(t, upd.Values, 1)
	require.NotNil(t, upd.Where)
}

func TestParseUpdateWithoutWhereErrors(t *testing.T) {
	_, err := Parse(`query users update age:31;`)
	require.Error(t, err)
}

func TestParseDeleteOrderPostfixDirection(t *testing.T) {
	prog, err := Parse(`query users delete where id == 1;`)
	require.NoError(t, err)
	del := prog.Statements[0].(*ast.Delete)
	require.NotNil(t, del.Where)

	prog2, err := Parse(`query users select id order name --;`)
	require.NoError(t, err)
	sel := prog2.Statements[0].(*ast.Select)
	require.NotNil(t, sel.Order)
	assert.False(t, sel.Order.Ascending)
}

func TestParseCreateTable(t *testing.T) {
	prog, err := Parse(`create table accounts { id: u64, unique; name: fixed(32), required; created_at: time(ms) };`)
	require.NoError(t, err)
	ct := prog.Statements[0].(*ast.CreateTable)
	assert.Equal(t, "accounts", ct.Name)
	require.Len(t, ct.Columns, 3)
	assert.Equal(t, "u64", ct.Columns[0].Type.Name)
	assert.True(t, ct.Columns[0].Unique)
	assert.Equal(t, "fixed", ct.Columns[1].Type.Name)
	assert.Equal(t, 32, ct.Columns[1].Type.FixedLen)
	assert.True(t, ct.Columns[1].NotNull)
	assert.Equal(t, "time", ct.Columns[2].Type.Name)
	assert.Equal(t, "ms", ct.Columns[2].Type.TimestampUnit)
}

func TestParseCreatePolicy(t *testing.T) {
	prog, err := Parse(`create policy "self" for accounts.select id == current_user_id();`)
	require.NoError(t, err)
	cp := prog.Statements[0].(*ast.CreateRlsPolicy)
	assert.Equal(t, "accounts", cp.Table)
	assert.Equal(t, "self", cp.Policy.Name)
	assert.Equal(t, "select", cp.Policy.Action)
	require.NotNil(t, cp.Policy.Condition)
}

func TestParseCreateUserAndRole(t *testing.T) {
	prog, err := Parse(`create role editor; create user admin "hunter2" superuser;`)
	require.NoError(t, err)
	require.Len(t, prog.Statements, 2)
	role := prog.Statements[0].(*ast.CreateRole)
	assert.Equal(t, "editor", role.Name)
	user := prog.Statements[1].(*ast.CreateUser)
	assert.Equal(t, "admin", user.Name)
	assert.Equal(t, "hunter2", user.Password)
	assert.True(t, user.IsSuperuser)
}

func TestParseGrantRoleAndGrantAction(t *testing.T) {
	prog, err := Parse(`grant role editor for alice; grant select, update table accounts for editor;`)
	require.NoError(t, err)
	require.Len(t, prog.Statements, 2)

	gr := prog.Statements[0].(*ast.GrantRole)
	assert.Equal(t, "editor", gr.Role)
	assert.Equal(t, "alice", gr.To)

	ga := prog.Statements[1].(*ast.GrantAction)
	assert.Equal(t, []string{"select", "update"}, ga.Actions)
	assert.Equal(t, "table", ga.ObjectKind)
	assert.Equal(t, "accounts", ga.ObjectName)
	assert.Equal(t, "editor", ga.To)
}

func TestParseDrop(t *testing.T) {
	prog, err := Parse(`drop table accounts;`)
	require.NoError(t, err)
	d := prog.Statements[0].(*ast.Drop)
	assert.Equal(t, "table", d.Kind)
	assert.Equal(t, "accounts", d.Name)
}

func TestParseFuncDeclAndControlFlow(t *testing.T) {
	prog, err := Parse(`fn add(a: int, b: int) -> int { return a + b; }`)
	require.NoError(t, err)
	fn := prog.Statements[0].(*ast.FuncDecl)
	assert.Equal(t, "add", fn.Name)
	require.Len(t, fn.Params, 2)
	assert.Equal(t, "int", fn.ReturnType.Name)

	prog2, err := Parse(`let i = 0; while i < 3 { i = i + 1; }`)
	require.NoError(t, err)
	require.Len(t, prog2.Statements, 2)
	_, ok := prog2.Statements[1].(*ast.While)
	assert.True(t, ok)
}

func TestParseAccumulatesMultipleErrors(t *testing.T) {
	_, err := Parse(`query ; query ;`)
	require.Error(t, err)
}
