package runner_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filipkocis/drumnbase/internal/auth"
	"github.com/filipkocis/drumnbase/internal/parse"
	"github.com/filipkocis/drumnbase/internal/runner"
	"github.com/filipkocis/drumnbase/internal/scope"
)

// superuserDB builds a fresh Database and runs every statement in src
// against it as an implicit superuser, returning the last statement's
// result.
func superuserDB(t *testing.T) (*runner.Database, *runner.Ctx) {
	t.Helper()
	db := runner.NewDatabase("test", t.TempDir())
	user := &auth.User{Name: "root", IsSuperuser: true}
	ctx := &runner.Ctx{DB: db, ClusterUser: user, AuthUser: user, Scope: scope.New()}
	return db, ctx
}

func run(t *testing.T, ctx *runner.Ctx, src string) runner.Result {
	t.Helper()
	block, err := parse.Parse(src)
	require.NoError(t, err)
	var last runner.Result
	for _, stmt := range block.Statements {
		last = runner.Eval(ctx, stmt)
		require.False(t, last.IsError(), "statement %q failed: %v", src, last.Err)
	}
	return last
}

func seedAccounts(t *testing.T, ctx *runner.Ctx) {
	t.Helper()
	run(t, ctx, `create table accounts { id: u64, unique; name: fixed(32), required; balance: f64 };`)
	run(t, ctx, `query accounts insert id:1, name:"alice", balance:100.0;`)
	run(t, ctx, `query accounts insert id:2, name:"bob", balance:50.0;`)
}

func TestInsertAndSelectAll(t *testing.T) {
	_, ctx := superuserDB(t)
	seedAccounts(t, ctx)

	r := run(t, ctx, `query accounts select *;`)
	require.Len(t, r.Value.Array, 2)
}

func TestSelectWithDescendingOrder(t *testing.T) {
	_, ctx := superuserDB(t)
	seedAccounts(t, ctx)

	r := run(t, ctx, `query accounts select name order --balance;`)
	require.Len(t, r.Value.Array, 2)
	assert.Equal(t, "alice", r.Value.Array[0].Array[0].Text)
	assert.Equal(t, "bob", r.Value.Array[1].Array[0].Text)
}

func TestUpdateMutatesMatchingRows(t *testing.T) {
	_, ctx := superuserDB(t)
	seedAccounts(t, ctx)

	run(t, ctx, `query accounts update balance:200.0 where id == 1;`)
	r := run(t, ctx, `query accounts select balance where id == 1;`)
	require.Len(t, r.Value.Array, 1)
	assert.Equal(t, 200.0, r.Value.Array[0].Array[0].Numeric.F)
}

func TestDeleteRemovesMatchingRows(t *testing.T) {
	_, ctx := superuserDB(t)
	seedAccounts(t, ctx)

	run(t, ctx, `query accounts delete where id == 2;`)
	r := run(t, ctx, `query accounts select *;`)
	assert.Len(t, r.Value.Array, 1)
}

func TestSelectRejectsUnauthorizedUser(t *testing.T) {
	db, ctx := superuserDB(t)
	seedAccounts(t, ctx)

	plain := &auth.User{Name: "guest"}
	guestCtx := &runner.Ctx{DB: db, ClusterUser: plain, AuthUser: plain, Scope: scope.New()}
	block, err := parse.Parse(`query accounts select *;`)
	require.NoError(t, err)
	r := runner.Eval(guestCtx, block.Statements[0])
	assert.True(t, r.IsError())
}

func TestInsertCoercesNumericLiteralToColumnWidth(t *testing.T) {
	_, ctx := superuserDB(t)
	run(t, ctx, `create table counters { n: u8 };`)
	run(t, ctx, `query counters insert n:200;`)

	r := run(t, ctx, `query counters select n;`)
	require.Len(t, r.Value.Array, 1)
	assert.Equal(t, uint64(200), r.Value.Array[0].Array[0].Numeric.U)
}

func TestInsertRejectsOutOfRangeNumericLiteral(t *testing.T) {
	_, ctx := superuserDB(t)
	run(t, ctx, `create table counters { n: u8 };`)

	block, err := parse.Parse(`query counters insert n:999;`)
	require.NoError(t, err)
	r := runner.Eval(ctx, block.Statements[0])
	assert.True(t, r.IsError())
}

func TestInsertRejectsNotNullColumnWithoutValue(t *testing.T) {
	_, ctx := superuserDB(t)
	run(t, ctx, `create table people { name: fixed(16), required };`)

	block, err := parse.Parse(`query people insert name:null;`)
	require.NoError(t, err)
	r := runner.Eval(ctx, block.Statements[0])
	assert.True(t, r.IsError())
}

func TestCreateTableRequiresSuperuser(t *testing.T) {
	db := runner.NewDatabase("test", t.TempDir())
	plain := &auth.User{Name: "guest"}
	ctx := &runner.Ctx{DB: db, ClusterUser: plain, AuthUser: plain, Scope: scope.New()}
	block, err := parse.Parse(`create table t { id: u64 };`)
	require.NoError(t, err)
	r := runner.Eval(ctx, block.Statements[0])
	assert.True(t, r.IsError())
}
