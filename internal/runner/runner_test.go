package runner_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filipkocis/drumnbase/internal/parse"
	"github.com/filipkocis/drumnbase/internal/runner"
	"github.com/filipkocis/drumnbase/internal/scope"
)

func evalSrc(t *testing.T, src string) runner.Result {
	t.Helper()
	block, err := parse.Parse(src)
	require.NoError(t, err)
	db := runner.NewDatabase("test", t.TempDir())
	ctx := &runner.Ctx{DB: db, Scope: scope.New()}
	return runner.Eval(ctx, block)
}

func TestEvalArithmeticPrecedence(t *testing.T) {
	r := evalSrc(t, `1 + 2 * 3;`)
	require.False(t, r.IsError())
	assert.Equal(t, uint64(7), r.Value.Numeric.U)
}

func TestEvalLetAndAssign(t *testing.T) {
	r := evalSrc(t, `let x = 1; x = x + 1; x;`)
	require.False(t, r.IsError())
	assert.Equal(t, uint64(2), r.Value.Numeric.U)
}

func TestEvalCompoundAssign(t *testing.T) {
	r := evalSrc(t, `let x = 10; x += 5; x;`)
	require.False(t, r.IsError())
	assert.Equal(t, uint64(15), r.Value.Numeric.U)
}

func TestEvalIfElse(t *testing.T) {
	r := evalSrc(t, `let x = 5; if x > 3 { "big"; } else { "small"; }`)
	require.False(t, r.IsError())
	assert.Equal(t, "big", r.Value.Text)

	r = evalSrc(t, `let x = 1; if x > 3 { "big"; } else { "small"; }`)
	require.False(t, r.IsError())
	assert.Equal(t, "small", r.Value.Text)
}

func TestEvalIfConditionMustBeBoolean(t *testing.T) {
	r := evalSrc(t, `if 1 { "yes"; }`)
	assert.True(t, r.IsError())
}

func TestEvalWhileLoop(t *testing.T) {
	r := evalSrc(t, `let i = 0; while i < 3 { i = i + 1; } i;`)
	require.False(t, r.IsError())
	assert.Equal(t, uint64(3), r.Value.Numeric.U)
}

func TestEvalWhileBreak(t *testing.T) {
	r := evalSrc(t, `let i = 0; while i < 10 { if i == 3 { break; } i = i + 1; } i;`)
	require.False(t, r.IsError())
	assert.Equal(t, uint64(3), r.Value.Numeric.U)
}

func TestEvalForLoopAccumulates(t *testing.T) {
	r := evalSrc(t, `let sum = 0; for let i = 0; i < 5; i = i + 1 { sum = sum + i; } sum;`)
	require.False(t, r.IsError())
	assert.Equal(t, uint64(10), r.Value.Numeric.U)
}

func TestEvalLoopWithBreakAndContinue(t *testing.T) {
	r := evalSrc(t, `
		let i = 0;
		let sum = 0;
		loop {
			i = i + 1;
			if i > 10 { break; }
			if i % 2 == 0 { continue; }
			sum = sum + i;
		}
		sum;
	`)
	require.False(t, r.IsError())
	assert.Equal(t, uint64(25), r.Value.Numeric.U)
}

func TestEvalFuncDeclAndCall(t *testing.T) {
	r := evalSrc(t, `fn add(a: int, b: int) -> int { return a + b; } add(2, 3);`)
	require.False(t, r.IsError())
	assert.Equal(t, uint64(5), r.Value.Numeric.U)
}

func TestEvalUnknownIdentifierErrors(t *testing.T) {
	r := evalSrc(t, `ghost;`)
	assert.True(t, r.IsError())
}

func TestEvalArrayIndexing(t *testing.T) {
	r := evalSrc(t, `let xs = [1, 2, 3]; xs[1];`)
	require.False(t, r.IsError())
	assert.Equal(t, uint64(2), r.Value.Numeric.U)
}
