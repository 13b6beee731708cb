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

func seedUsersAndOrders(t *testing.T, ctx *runner.Ctx) {
	t.Helper()
	run(t, ctx, `create table users { id: u64, unique; name: fixed(32), required };`)
	run(t, ctx, `create table orders { id: u64, unique; user_id: u64, required; total: f64 };`)
	run(t, ctx, `query users insert id:1, name:"alice";`)
	run(t, ctx, `query users insert id:2, name:"bob";`)
	run(t, ctx, `query orders insert id:100, user_id:1, total:9.5;`)
}

func TestSelectLeftJoinPadsUnmatchedRows(t *testing.T) {
	_, ctx := superuserDB(t)
	seedUsersAndOrders(t, ctx)

	r := run(t, ctx, `query users select name left join orders on orders.user_id == id order ++name;`)
	require.Len(t, r.Value.Array, 2)
	assert.Equal(t, "alice", r.Value.Array[0].Array[0].Text)
	assert.Equal(t, "bob", r.Value.Array[1].Array[0].Text)
}

func TestSelectInnerJoinDropsUnmatchedRows(t *testing.T) {
	_, ctx := superuserDB(t)
	seedUsersAndOrders(t, ctx)

	r := run(t, ctx, `query users select name join orders on orders.user_id == id;`)
	require.Len(t, r.Value.Array, 1)
	assert.Equal(t, "alice", r.Value.Array[0].Array[0].Text)
}

func TestRlsPolicyFiltersRowsForNonSuperuser(t *testing.T) {
	db, ctx := superuserDB(t)
	seedAccounts(t, ctx)
	run(t, ctx, `create policy "only_alice" for accounts.select name == "alice";`)

	restricted := &auth.User{
		Name: "viewer",
		Privileges: []auth.Privilege{
			auth.PrivilegeForTable("accounts", auth.RlsSelect),
		},
	}
	restrictedCtx := &runner.Ctx{DB: db, ClusterUser: restricted, AuthUser: restricted, Scope: scope.New()}
	block, err := parse.Parse(`query accounts select name;`)
	require.NoError(t, err)
	r := runner.Eval(restrictedCtx, block.Statements[0])
	require.False(t, r.IsError())
	require.Len(t, r.Value.Array, 1)
	assert.Equal(t, "alice", r.Value.Array[0].Array[0].Text)
}

func TestRlsPolicyDoesNotApplyToSuperuser(t *testing.T) {
	_, ctx := superuserDB(t)
	seedAccounts(t, ctx)
	run(t, ctx, `create policy "only_alice" for accounts.select name == "alice";`)

	r := run(t, ctx, `query accounts select name;`)
	require.Len(t, r.Value.Array, 2)
}
