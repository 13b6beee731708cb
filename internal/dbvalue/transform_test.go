package dbvalue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransformNumericWideningAlwaysSucceeds(t *testing.T) {
	col := Column{Name: "n", Type: NumericType(NumU64)}
	got, err := col.Transform(NewUint(NumU8, 255))
	require.NoError(t, err)
	assert.Equal(t, uint64(255), got.Numeric.U)
}

func TestTransformNumericNarrowingOverflowFails(t *testing.T) {
	col := Column{Name: "n", Type: NumericType(NumU8)}
	_, err := col.Transform(NewUint(NumU32, 300))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "overflow")
}

func TestTransformNumericNarrowingInRangeSucceeds(t *testing.T) {
	col := Column{Name: "n", Type: NumericType(NumU8)}
	got, err := col.Transform(NewUint(NumU32, 255))
	require.NoError(t, err)
	assert.Equal(t, uint64(255), got.Numeric.U)
}

func TestTransformNullRejectedByNotNull(t *testing.T) {
	col := Column{Name: "n", Type: NumericType(NumU8), NotNull: true}
	_, err := col.Transform(Null)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not_null")
}

func TestTransformNullAllowedWhenNullable(t *testing.T) {
	col := Column{Name: "n", Type: NumericType(NumU8)}
	got, err := col.Transform(Null)
	require.NoError(t, err)
	assert.True(t, got.IsNull())
}

func TestTransformTimestampWideningMultipliesUnit(t *testing.T) {
	col := Column{Name: "t", Type: TimestampType(UnitMillis)}
	got, err := col.Transform(NewTimestamp(UnitSeconds, 5))
	require.NoError(t, err)
	assert.Equal(t, uint64(5000), got.Timestamp.Value)
}

func TestTransformTimestampNarrowingDividesUnit(t *testing.T) {
	col := Column{Name: "t", Type: TimestampType(UnitSeconds)}
	got, err := col.Transform(NewTimestamp(UnitMillis, 5500))
	require.NoError(t, err)
	assert.Equal(t, uint64(5), got.Timestamp.Value)
}

func TestTransformTextFixedLengthEnforced(t *testing.T) {
	col := Column{Name: "name", Type: FixedTextType(4)}
	_, err := col.Transform(NewText("toolong"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds fixed")
}
