package cluster

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filipkocis/drumnbase/internal/config"
)

type noopSink struct{}

func (noopSink) Info(string, map[string]any)             {}
func (noopSink) Success(string, map[string]any)          {}
func (noopSink) Warn(string, map[string]any)             {}
func (noopSink) Error(string, error, map[string]any)     {}
func (noopSink) Debug(string, map[string]any)            {}

func testConfig(t *testing.T) config.Cluster {
	t.Helper()
	return config.Cluster{
		RootDir:              filepath.Join(t.TempDir(), "cluster"),
		InternalDatabaseName: "drumnbase",
		DefaultSelectLimit:   100,
	}
}

func TestCreateSeedsSuperuser(t *testing.T) {
	cfg := testConfig(t)
	c, err := Create(cfg, "admin", "hunter2", noopSink{})
	require.NoError(t, err)
	defer c.Close()

	u, ok := c.UserLookup("admin")
	require.True(t, ok)
	assert.True(t, u.IsSuperuser)
	assert.Empty(t, u.Roles)
}

func TestCreateRejectsExistingRootDir(t *testing.T) {
	cfg := testConfig(t)
	c, err := Create(cfg, "admin", "hunter2", noopSink{})
	require.NoError(t, err)
	c.Close()

	_, err = Create(cfg, "admin", "hunter2", noopSink{})
	assert.Error(t, err)
}

func TestLoadRejectsRootWithoutInternalDatabase(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.MkdirAll(cfg.RootDir, 0o755))

	_, err := Load(cfg, noopSink{})
	assert.Error(t, err)
}

func TestCreateThenLoadRoundTrip(t *testing.T) {
	cfg := testConfig(t)
	c, err := Create(cfg, "admin", "hunter2", noopSink{})
	require.NoError(t, err)
	require.NoError(t, c.CreateDatabase("shop"))
	require.NoError(t, c.CreateRole("viewer"))
	require.NoError(t, c.GrantAction([]string{"select"}, "table", "orders", "", "viewer"))
	require.NoError(t, c.CreateUser("bob", "somehash", false))
	require.NoError(t, c.GrantRole("viewer", "bob"))
	require.NoError(t, c.Close())

	loaded, err := Load(cfg, noopSink{})
	require.NoError(t, err)
	defer loaded.Close()

	_, ok := loaded.Database("shop")
	assert.True(t, ok)

	role, ok := loaded.RoleLookup("viewer")
	require.True(t, ok)
	require.Len(t, role.Privileges, 1)
	assert.Equal(t, "orders", role.Privileges[0].Table)

	bob, ok := loaded.UserLookup("bob")
	require.True(t, ok)
	assert.Equal(t, []string{"viewer"}, bob.Roles)
}

func TestCreateDatabaseRejectsDuplicateName(t *testing.T) {
	cfg := testConfig(t)
	c, err := Create(cfg, "admin", "hunter2", noopSink{})
	require.NoError(t, err)
	defer c.Close()

	assert.Error(t, c.CreateDatabase("drumnbase"))
}

func TestGrantRoleIsIdempotent(t *testing.T) {
	cfg := testConfig(t)
	c, err := Create(cfg, "admin", "hunter2", noopSink{})
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.CreateRole("viewer"))
	require.NoError(t, c.CreateUser("bob", "somehash", false))
	require.NoError(t, c.GrantRole("viewer", "bob"))
	require.NoError(t, c.GrantRole("viewer", "bob"))

	bob, ok := c.UserLookup("bob")
	require.True(t, ok)
	assert.Equal(t, []string{"viewer"}, bob.Roles)
}

func TestGrantRoleRejectsUnknownRole(t *testing.T) {
	cfg := testConfig(t)
	c, err := Create(cfg, "admin", "hunter2", noopSink{})
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.CreateUser("bob", "somehash", false))
	assert.Error(t, c.GrantRole("ghost", "bob"))
}

func TestSplitRoles(t *testing.T) {
	assert.Nil(t, splitRoles(""))
	assert.Equal(t, []string{"a"}, splitRoles("a"))
	assert.Equal(t, []string{"a", "b", "c"}, splitRoles("a,b,c"))
	assert.Equal(t, []string{"a", "b"}, splitRoles("a,,b,"))
}

func TestPrivilegeFromRow(t *testing.T) {
	_, ok := privilegeFromRow("", "", "", "")
	assert.False(t, ok)

	p, ok := privilegeFromRow("table", "orders", "select", "")
	require.True(t, ok)
	assert.Equal(t, "orders", p.Table)

	p, ok = privilegeFromRow("column", "orders", "select", "total")
	require.True(t, ok)
	assert.Equal(t, "total", p.Column)
}
