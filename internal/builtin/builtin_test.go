package builtin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filipkocis/drumnbase/internal/auth"
	"github.com/filipkocis/drumnbase/internal/dbvalue"
	"github.com/filipkocis/drumnbase/internal/runner"
)

func mustFn(t *testing.T, db *runner.Database, name string) *runner.Function {
	t.Helper()
	fn, ok := db.Function(name)
	require.True(t, ok, "function %q not installed", name)
	return fn
}

func call(t *testing.T, fn *runner.Function, ctx *runner.Ctx, args ...dbvalue.Value) dbvalue.Value {
	t.Helper()
	v, err := fn.Native(ctx, args)
	require.NoError(t, err)
	return v
}

func TestInstallRegistersAllBuiltins(t *testing.T) {
	db := runner.NewDatabase("test", t.TempDir())
	Install(db)

	for _, name := range []string{
		"print", "println", "now", "floor", "ceil", "round", "abs", "sqrt",
		"pow", "len", "random", "random_range", "format", "seq",
		"current_user_name", "current_user_id", "stats",
	} {
		_, ok := db.Function(name)
		assert.True(t, ok, "expected builtin %q to be registered", name)
	}
}

func TestMathBuiltins(t *testing.T) {
	db := runner.NewDatabase("test", t.TempDir())
	Install(db)
	ctx := &runner.Ctx{}

	assert.Equal(t, 2.0, call(t, mustFn(t, db, "floor"), ctx, dbvalue.NewFloat(dbvalue.NumF64, 2.9)).Numeric.F)
	assert.Equal(t, 3.0, call(t, mustFn(t, db, "ceil"), ctx, dbvalue.NewFloat(dbvalue.NumF64, 2.1)).Numeric.F)
	assert.Equal(t, 4.0, call(t, mustFn(t, db, "abs"), ctx, dbvalue.NewFloat(dbvalue.NumF64, -4)).Numeric.F)
	assert.Equal(t, 3.0, call(t, mustFn(t, db, "sqrt"), ctx, dbvalue.NewFloat(dbvalue.NumF64, 9)).Numeric.F)
	assert.Equal(t, 8.0, call(t, mustFn(t, db, "pow"), ctx, dbvalue.NewFloat(dbvalue.NumF64, 2), dbvalue.NewFloat(dbvalue.NumF64, 3)).Numeric.F)
}

func TestRoundWithPrecision(t *testing.T) {
	db := runner.NewDatabase("test", t.TempDir())
	Install(db)
	ctx := &runner.Ctx{}
	fn := mustFn(t, db, "round")

	assert.Equal(t, 1.23, call(t, fn, ctx, dbvalue.NewFloat(dbvalue.NumF64, 1.234), dbvalue.NewFloat(dbvalue.NumF64, 2)).Numeric.F)
	assert.Equal(t, 1.0, call(t, fn, ctx, dbvalue.NewFloat(dbvalue.NumF64, 1.4), dbvalue.NewFloat(dbvalue.NumF64, 0)).Numeric.F)
}

func TestLenTextAndArray(t *testing.T) {
	db := runner.NewDatabase("test", t.TempDir())
	Install(db)
	ctx := &runner.Ctx{}
	fn := mustFn(t, db, "len")

	assert.Equal(t, uint64(5), call(t, fn, ctx, dbvalue.NewText("hello")).Numeric.U)
	assert.Equal(t, uint64(2), call(t, fn, ctx, dbvalue.NewArray([]dbvalue.Value{dbvalue.NewText("a"), dbvalue.NewText("b")})).Numeric.U)

	_, err := fn.Native(ctx, []dbvalue.Value{dbvalue.NewUint(dbvalue.NumU64, 1)})
	assert.Error(t, err)
}

func TestFormatSubstitutesPlaceholders(t *testing.T) {
	db := runner.NewDatabase("test", t.TempDir())
	Install(db)
	ctx := &runner.Ctx{}
	fn := mustFn(t, db, "format")

	out := call(t, fn, ctx, dbvalue.NewText("hello {}, you are {}"),
		dbvalue.NewArray([]dbvalue.Value{dbvalue.NewText("alice"), dbvalue.NewUint(dbvalue.NumU64, 30)}))
	assert.Equal(t, "hello alice, you are 30", out.Text)
}

func TestFormatErrorsOnTooFewValues(t *testing.T) {
	db := runner.NewDatabase("test", t.TempDir())
	Install(db)
	ctx := &runner.Ctx{}
	fn := mustFn(t, db, "format")

	_, err := fn.Native(ctx, []dbvalue.Value{dbvalue.NewText("{} {}"), dbvalue.NewArray([]dbvalue.Value{dbvalue.NewText("only")})})
	assert.Error(t, err)
}

func TestCurrentUserFunctionsReflectCtx(t *testing.T) {
	db := runner.NewDatabase("test", t.TempDir())
	Install(db)
	ctx := &runner.Ctx{AuthUser: &auth.User{Name: "alice"}}

	assert.Equal(t, "alice", call(t, mustFn(t, db, "current_user_name"), ctx).Text)
	assert.Equal(t, "alice", call(t, mustFn(t, db, "current_user_id"), ctx).Text)

	anonCtx := &runner.Ctx{}
	assert.True(t, call(t, mustFn(t, db, "current_user_name"), anonCtx).IsNull())
}
