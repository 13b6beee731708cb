package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filipkocis/drumnbase/internal/dbvalue"
)

func TestDeclareAndLookup(t *testing.T) {
	s := New()
	s.Declare("x", dbvalue.NewInt(dbvalue.NumI64, 1))

	v, ok := s.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, int64(1), v.Numeric.I)

	_, ok = s.Lookup("missing")
	assert.False(t, ok)
}

func TestChildScopeShadowsAndRestoresOnDiscard(t *testing.T) {
	outer := New()
	outer.Declare("x", dbvalue.NewText("outer"))

	inner := outer.Push()
	inner.Declare("x", dbvalue.NewText("inner"))

	v, ok := inner.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, "inner", v.Text)

	v, ok = outer.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, "outer", v.Text)
}

func TestAssignUpdatesNearestExistingSlot(t *testing.T) {
	outer := New()
	outer.Declare("count", dbvalue.NewInt(dbvalue.NumI64, 0))
	inner := outer.Push()

	err := inner.Assign("count", dbvalue.NewInt(dbvalue.NumI64, 5))
	require.NoError(t, err)

	v, _ := outer.Lookup("count")
	assert.Equal(t, int64(5), v.Numeric.I)

	_, ok := inner.vars["count"]
	assert.False(t, ok, "assign must not create a new slot in the inner scope")
}

func TestAssignToUndeclaredFails(t *testing.T) {
	s := New()
	err := s.Assign("nope", dbvalue.NewBoolean(true))
	assert.Error(t, err)
}
