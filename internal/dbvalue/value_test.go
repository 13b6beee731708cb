package dbvalue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueEqualNumericCrossWidth(t *testing.T) {
	a := NewUint(NumU8, 5)
	b := NewFloat(NumF64, 5.0)
	assert.True(t, a.Equal(b))
}

func TestValueEqualNullOnlyEqualsNull(t *testing.T) {
	assert.True(t, Null.Equal(Null))
	assert.False(t, Null.Equal(NewInt(NumI32, 0)))
}

func TestValueCompareIncomparableIsEqual(t *testing.T) {
	text := NewText("a")
	boolean := NewBoolean(true)
	assert.Equal(t, 0, text.Compare(boolean))
}

func TestValueBetweenNumeric(t *testing.T) {
	v := NewInt(NumI32, 5)
	ok, err := v.Between(NewInt(NumI32, 0), NewInt(NumI32, 10))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = v.Between(NewInt(NumI32, 6), NewInt(NumI32, 10))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestValueBetweenUnsupportedKind(t *testing.T) {
	v := NewText("x")
	_, err := v.Between(NewText("a"), NewText("z"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported value kind")
}
