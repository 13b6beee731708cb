package main

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filipkocis/drumnbase/internal/cluster"
	"github.com/filipkocis/drumnbase/internal/config"
	"github.com/filipkocis/drumnbase/internal/log"
	"github.com/filipkocis/drumnbase/internal/parse"
)

func newTestCluster(t *testing.T) *cluster.Cluster {
	t.Helper()
	cfg := config.Cluster{
		RootDir:              filepath.Join(t.TempDir(), "cluster"),
		InternalDatabaseName: "drumnbase",
		DefaultSelectLimit:   100,
	}
	c, err := cluster.Create(cfg, "admin", "hunter2", log.NewConsole())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestRunStatementCreateInsertSelect(t *testing.T) {
	c := newTestCluster(t)
	require.NoError(t, c.CreateDatabase("shop"))

	_, err := runStatement(c, "admin", "hunter2", "shop",
		`create table accounts { id: u64, unique; name: fixed(32), required };`)
	require.NoError(t, err)

	_, err = runStatement(c, "admin", "hunter2", "shop",
		`query accounts insert id:1, name:"alice";`)
	require.NoError(t, err)

	out, err := runStatement(c, "admin", "hunter2", "shop", `query accounts select *;`)
	require.NoError(t, err)
	assert.Contains(t, out, "alice")
}

func TestRunStatementRejectsBadAuth(t *testing.T) {
	c := newTestCluster(t)
	_, err := runStatement(c, "admin", "wrongpassword", "drumnbase", `query users select *;`)
	assert.Error(t, err)
}

func TestRunStatementRejectsUnknownDatabase(t *testing.T) {
	c := newTestCluster(t)
	_, err := runStatement(c, "admin", "hunter2", "ghost", `query users select *;`)
	assert.Error(t, err)
}

func TestRunStatementRejectsParseError(t *testing.T) {
	c := newTestCluster(t)
	_, err := runStatement(c, "admin", "hunter2", "drumnbase", `not a real statement`)
	assert.Error(t, err)
}

func TestBlockIsReadOnlyOnlyForPlainSelects(t *testing.T) {
	cases := []struct {
		src      string
		readOnly bool
	}{
		{`query accounts select *;`, true},
		{`query accounts select id; query accounts select name;`, true},
		{`query accounts insert id:1;`, false},
		{`query accounts update id:2 where id == 1;`, false},
		{`query accounts delete where id == 1;`, false},
		{`create table t { id: u64 };`, false},
		{`let x = 1; query accounts select *;`, false},
	}
	for _, tc := range cases {
		block, err := parse.Parse(tc.src)
		require.NoError(t, err, tc.src)
		assert.Equal(t, tc.readOnly, blockIsReadOnly(block), tc.src)
	}
}

// TestConcurrentSelectsDoNotSerialize proves SELECTs take the shared read
// lock: two concurrent SELECTs against the same database both complete
// quickly, which would not happen if either one held the exclusive writer
// lock for its duration.
func TestConcurrentSelectsDoNotSerialize(t *testing.T) {
	c := newTestCluster(t)
	require.NoError(t, c.CreateDatabase("shop"))
	_, err := runStatement(c, "admin", "hunter2", "shop",
		`create table accounts { id: u64, unique; name: fixed(32), required };`)
	require.NoError(t, err)
	_, err = runStatement(c, "admin", "hunter2", "shop", `query accounts insert id:1, name:"alice";`)
	require.NoError(t, err)

	db, ok := c.Database("shop")
	require.True(t, ok)

	first := db.BeginRead()
	defer first.Release()

	done := make(chan error, 1)
	go func() {
		_, err := runStatement(c, "admin", "hunter2", "shop", `query accounts select *;`)
		done <- err
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("second SELECT blocked behind an already-held read lock")
	}
}
