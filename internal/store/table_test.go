package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filipkocis/drumnbase/internal/dbvalue"
)

func testColumns() []dbvalue.Column {
	return []dbvalue.Column{
		{Name: "id", Type: dbvalue.NumericType(dbvalue.NumU64), Unique: true, NotNull: true},
		{Name: "name", Type: dbvalue.FixedTextType(16), NotNull: true},
		{Name: "active", Type: dbvalue.BooleanType()},
	}
}

func row(id uint64, name string, active bool) Row {
	return Row{Values: []dbvalue.Value{
		dbvalue.NewUint(dbvalue.NumU64, id),
		dbvalue.NewText(name),
		dbvalue.NewBoolean(active),
	}}
}

func TestAppendAndSyncBufferRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.tbl")
	tb, err := Create(path, "accounts", testColumns(), Memory)
	require.NoError(t, err)
	defer tb.Close()

	tb.Append(row(1, "alice", true))
	tb.Append(row(2, "bob", false))
	require.NoError(t, tb.SyncBuffer())
	require.Len(t, tb.Committed, 2)

	reopened, err := Open(path, "accounts", testColumns(), Memory)
	require.NoError(t, err)
	defer reopened.Close()
	require.Len(t, reopened.Committed, 2)
	assert.Equal(t, uint64(1), reopened.Committed[0].Values[0].Numeric.U)
	assert.Equal(t, "alice", reopened.Committed[0].Values[1].Text)
	assert.True(t, reopened.Committed[0].Values[2].Boolean)
	assert.Equal(t, "bob", reopened.Committed[1].Values[1].Text)
}

func TestSyncRowPartsUpdatesOnlyNamedColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.tbl")
	tb, err := Create(path, "accounts", testColumns(), Memory)
	require.NoError(t, err)
	defer tb.Close()

	tb.Append(row(1, "alice", true))
	require.NoError(t, tb.SyncBuffer())

	tb.Committed[0].Values[2] = dbvalue.NewBoolean(false)
	require.NoError(t, tb.SyncRowParts(0, []int{2}))

	reopened, err := Open(path, "accounts", testColumns(), Memory)
	require.NoError(t, err)
	defer reopened.Close()
	assert.Equal(t, "alice", reopened.Committed[0].Values[1].Text)
	assert.False(t, reopened.Committed[0].Values[2].Boolean)
}

func TestMarkDeletedAndPurge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.tbl")
	tb, err := Create(path, "accounts", testColumns(), Memory)
	require.NoError(t, err)
	defer tb.Close()

	tb.Append(row(1, "alice", true))
	tb.Append(row(2, "bob", false))
	require.NoError(t, tb.SyncBuffer())

	require.NoError(t, tb.MarkDeleted(0))
	require.NoError(t, tb.SyncFlag(0))
	assert.True(t, tb.Committed[0].IsDeleted())

	require.NoError(t, tb.Purge())
	require.Len(t, tb.Committed, 1)
	assert.Equal(t, "bob", tb.Committed[0].Values[1].Text)

	reopened, err := Open(path, "accounts", testColumns(), Memory)
	require.NoError(t, err)
	defer reopened.Close()
	require.Len(t, reopened.Committed, 1)
	assert.Equal(t, "bob", reopened.Committed[0].Values[1].Text)
}

func TestCheckUniqueRejectsDuplicate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.tbl")
	tb, err := Create(path, "accounts", testColumns(), Memory)
	require.NoError(t, err)
	defer tb.Close()

	tb.Append(row(1, "alice", true))
	require.NoError(t, tb.SyncBuffer())

	err = tb.CheckUnique(row(1, "mallory", false))
	assert.Error(t, err)

	err = tb.CheckUnique(row(2, "bob", false))
	assert.NoError(t, err)
}

func TestColumnIndex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.tbl")
	tb, err := Create(path, "accounts", testColumns(), Memory)
	require.NoError(t, err)
	defer tb.Close()

	assert.Equal(t, 1, tb.ColumnIndex("name"))
	assert.Equal(t, -1, tb.ColumnIndex("missing"))
}
