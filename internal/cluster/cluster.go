// Package cluster owns the lifecycle above a single Database: the
// directory tree on disk, the append-only schema file, the internal
// bookkeeping database seeding users/roles, and the ClusterHost/
// SchemaWriter collaborators the runner calls into for SDL execution
// (§4.7, grounded on original_source's cluster/ and database/ modules).
package cluster

import (
	"fmt"
	"sync"

	"github.com/filipkocis/drumnbase/internal/ast"
	"github.com/filipkocis/drumnbase/internal/auth"
	"github.com/filipkocis/drumnbase/internal/builtin"
	"github.com/filipkocis/drumnbase/internal/log"
	"github.com/filipkocis/drumnbase/internal/runner"
)

// InternalDatabaseName is the fixed name of the bootstrap database holding
// the users/roles tables; loading a cluster requires exactly one database
// under this name (§4.7).
const InternalDatabaseName = "drumnbase"

// SchemaFileName is the append-only SDL log every database directory
// carries (§4.7, §6).
const SchemaFileName = "schema.bob"

// database pairs a loaded runner.Database with the schema file collaborator
// that appends every SDL mutation run against it.
type database struct {
	db     *runner.Database
	schema *schemaFile
}

// Cluster is the top-level collaborator: every database under its root
// directory, the flattened role/user tables mirrored from the internal
// database, and the logging sink used across the whole lifecycle.
type Cluster struct {
	mu sync.RWMutex

	RootDir string
	Log     log.Sink

	databases map[string]*database

	// roles/users mirror the internal database's roles/users tables,
	// rebuilt from those rows after load, create, or any GRANT/CREATE
	// USER/CREATE ROLE mutation (§4.6, §4.7).
	roles map[string]*auth.Role
	users map[string]*auth.User
}

// Database returns the loaded database registered under name.
func (c *Cluster) Database(name string) (*runner.Database, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.databases[name]
	if !ok {
		return nil, false
	}
	return d.db, true
}

// Internal returns the fixed internal bookkeeping database.
func (c *Cluster) Internal() *runner.Database {
	d, _ := c.Database(InternalDatabaseName)
	return d
}

// UserLookup resolves a username against the cluster's mirrored user
// table, implementing auth.UserLookup.
func (c *Cluster) UserLookup(name string) (*auth.User, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	u, ok := c.users[name]
	return u, ok
}

// RoleLookup resolves a role name against the cluster's mirrored role
// table, implementing auth.RoleLookup.
func (c *Cluster) RoleLookup(name string) (*auth.Role, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.roles[name]
	return r, ok
}

// registerDatabase installs db (with its schema-file collaborator) and
// wires the built-in function library into it.
func (c *Cluster) registerDatabase(name string, db *runner.Database, sf *schemaFile) {
	builtin.Install(db)
	db.Schema = sf
	c.mu.Lock()
	c.databases[name] = &database{db: db, schema: sf}
	c.mu.Unlock()
}

func (c *Cluster) logf(format string, args ...any) {
	if c.Log != nil {
		c.Log.Info(fmt.Sprintf(format, args...), nil)
	}
}

// reloadRolesAndUsers rebuilds the roles/users maps from the internal
// database's current rows, run after every mutation so UserLookup/
// RoleLookup always reflect the latest grant (§4.6, §4.7).
func (c *Cluster) reloadRolesAndUsers() error {
	internal := c.Internal()
	if internal == nil {
		return fmt.Errorf("cluster: no internal database loaded")
	}
	ctx := c.internalCtx(internal)

	roleRows, err := runner.ExecSelect(ctx, &ast.Select{
		Table:   "roles",
		Columns: []ast.Node{&ast.Wildcard{}},
	})
	if err != nil {
		return fmt.Errorf("cluster: load roles: %w", err)
	}
	roles := make(map[string]*auth.Role)
	for _, row := range roleRows.Array {
		name := rowText(row, 0)
		if name == "" {
			continue
		}
		r, ok := roles[name]
		if !ok {
			r = &auth.Role{Name: name}
			roles[name] = r
		}
		if priv, ok := privilegeFromRow(rowText(row, 1), rowText(row, 2), rowText(row, 3), rowText(row, 4)); ok {
			r.Privileges = append(r.Privileges, priv)
		}
	}

	userRows, err := runner.ExecSelect(ctx, &ast.Select{
		Table:   "users",
		Columns: []ast.Node{&ast.Wildcard{}},
	})
	if err != nil {
		return fmt.Errorf("cluster: load users: %w", err)
	}
	users := make(map[string]*auth.User)
	for _, row := range userRows.Array {
		name := rowText(row, 0)
		if name == "" {
			continue
		}
		u := &auth.User{
			Name:         name,
			PasswordHash: rowText(row, 1),
			IsSuperuser:  rowBool(row, 3),
		}
		if roleList := rowText(row, 2); roleList != "" {
			u.Roles = splitRoles(roleList)
		}
		users[name] = u
	}

	c.mu.Lock()
	c.roles = roles
	c.users = users
	c.mu.Unlock()
	return nil
}

func splitRoles(s string) []string {
	var out []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			if i > start {
				out = append(out, s[start:i])
			}
			start = i + 1
		}
	}
	return out
}
