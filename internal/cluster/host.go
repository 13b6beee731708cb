package cluster

import (
	"fmt"
	"strings"

	"github.com/filipkocis/drumnbase/internal/ast"
	"github.com/filipkocis/drumnbase/internal/auth"
	"github.com/filipkocis/drumnbase/internal/dbvalue"
	"github.com/filipkocis/drumnbase/internal/runner"
	"github.com/filipkocis/drumnbase/internal/scope"
)

// internalActor is the identity every cluster-level mutation runs the
// query engine as: SDL execution's superuser gate has already been passed
// by the caller (runner.requireSuperuser, checked against the real
// connected user before ExecSDL ever reaches here), so these internal
// writes themselves always run as an implicit superuser.
var internalActor = &auth.User{Name: "cluster", IsSuperuser: true}

// internalCtx builds a Ctx for running one query against db as the
// implicit cluster actor.
func (c *Cluster) internalCtx(db *runner.Database) *runner.Ctx {
	return &runner.Ctx{
		DB:          db,
		Scope:       scope.New(),
		ClusterUser: internalActor,
		AuthUser:    internalActor,
		RoleLookup:  c.RoleLookup,
		Cluster:     c,
		Log:         c.Log,
	}
}

func strLit(s string) ast.Node  { return &ast.StringLiteral{Value: s} }
func boolLit(b bool) ast.Node   { return &ast.BoolLiteral{Value: b} }
func eqName(name string) ast.Node {
	return &ast.Binary{Op: "==", Left: &ast.Identifier{Name: "name"}, Right: strLit(name)}
}

// CreateDatabase implements runner.ClusterHost: it materializes a fresh
// database directory tree and registers it, without touching the internal
// database (databases are discovered on load by listing subdirectories,
// per §4.7, not recorded in any manifest).
func (c *Cluster) CreateDatabase(name string) error {
	if _, exists := c.Database(name); exists {
		return fmt.Errorf("cluster: database %q already exists", name)
	}
	db, sf, err := createDatabaseDir(c.RootDir, name)
	if err != nil {
		return err
	}
	c.registerDatabase(name, db, sf)
	c.logf("database %q created", name)
	return nil
}

// CreateRole implements runner.ClusterHost: it records the role's
// existence as a privilege-less row in the internal roles table (§4.5,
// §4.7). A role with no granted privileges has no matching rows beyond
// this marker.
func (c *Cluster) CreateRole(name string) error {
	internal := c.Internal()
	if internal == nil {
		return fmt.Errorf("cluster: no internal database loaded")
	}
	ctx := c.internalCtx(internal)
	ins := &ast.Insert{Table: "roles", Values: []ast.Assignment{
		{Column: "name", Value: strLit(name)},
		{Column: "object", Value: strLit("")},
		{Column: "object_name", Value: strLit("")},
		{Column: "action", Value: strLit("")},
		{Column: "extra", Value: strLit("")},
	}}
	if _, err := runner.ExecInsert(ctx, ins); err != nil {
		return fmt.Errorf("cluster: create role %q: %w", name, err)
	}
	return c.reloadRolesAndUsers()
}

// CreateUser implements runner.ClusterHost: it inserts a row into the
// internal users table with no roles assigned yet (§4.5, §4.7).
func (c *Cluster) CreateUser(name, passwordHash string, isSuperuser bool) error {
	internal := c.Internal()
	if internal == nil {
		return fmt.Errorf("cluster: no internal database loaded")
	}
	ctx := c.internalCtx(internal)
	ins := &ast.Insert{Table: "users", Values: []ast.Assignment{
		{Column: "name", Value: strLit(name)},
		{Column: "hash", Value: strLit(passwordHash)},
		{Column: "roles", Value: strLit("")},
		{Column: "is_superuser", Value: boolLit(isSuperuser)},
	}}
	if _, err := runner.ExecInsert(ctx, ins); err != nil {
		return fmt.Errorf("cluster: create user %q: %w", name, err)
	}
	return c.reloadRolesAndUsers()
}

// GrantRole implements runner.ClusterHost: it appends roleName to the
// comma-separated roles column of userName's row (§4.5, §4.7).
func (c *Cluster) GrantRole(roleName, userName string) error {
	internal := c.Internal()
	if internal == nil {
		return fmt.Errorf("cluster: no internal database loaded")
	}
	if _, ok := c.RoleLookup(roleName); !ok {
		return fmt.Errorf("cluster: role %q not found", roleName)
	}
	current, err := c.userRoles(internal, userName)
	if err != nil {
		return err
	}
	for _, r := range current {
		if r == roleName {
			return nil // already granted
		}
	}
	next := append(current, roleName)
	ctx := c.internalCtx(internal)
	upd := &ast.Update{
		Table: "users",
		Values: []ast.Assignment{
			{Column: "roles", Value: strLit(strings.Join(next, ","))},
		},
		Where: eqName(userName),
	}
	if _, err := runner.ExecUpdate(ctx, upd); err != nil {
		return fmt.Errorf("cluster: grant role %q to %q: %w", roleName, userName, err)
	}
	return c.reloadRolesAndUsers()
}

// GrantAction implements runner.ClusterHost: it inserts one roles-table
// row per requested action, each naming the object and the grantee role
// (§4.5, §4.7).
func (c *Cluster) GrantAction(actions []string, objectKind, objectName, column, toRole string) error {
	internal := c.Internal()
	if internal == nil {
		return fmt.Errorf("cluster: no internal database loaded")
	}
	if _, ok := c.RoleLookup(toRole); !ok {
		return fmt.Errorf("cluster: role %q not found", toRole)
	}
	ctx := c.internalCtx(internal)
	for _, action := range actions {
		ins := &ast.Insert{Table: "roles", Values: []ast.Assignment{
			{Column: "name", Value: strLit(toRole)},
			{Column: "object", Value: strLit(objectKind)},
			{Column: "object_name", Value: strLit(objectName)},
			{Column: "action", Value: strLit(action)},
			{Column: "extra", Value: strLit(column)},
		}}
		if _, err := runner.ExecInsert(ctx, ins); err != nil {
			return fmt.Errorf("cluster: grant %s %s %s for %s: %w", action, objectKind, objectName, toRole, err)
		}
	}
	return c.reloadRolesAndUsers()
}

// userRoles returns the current comma-separated roles list for userName,
// split into its component role names (empty slice when unset).
func (c *Cluster) userRoles(internal *runner.Database, userName string) ([]string, error) {
	ctx := c.internalCtx(internal)
	sel := &ast.Select{
		Table:   "users",
		Columns: []ast.Node{&ast.Identifier{Name: "roles"}},
		Where:   eqName(userName),
	}
	result, err := runner.ExecSelect(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("cluster: look up user %q: %w", userName, err)
	}
	if result.Kind != dbvalue.KindArray || len(result.Array) == 0 {
		return nil, fmt.Errorf("cluster: user %q not found", userName)
	}
	row := result.Array[0]
	if row.Kind != dbvalue.KindArray || len(row.Array) == 0 {
		return nil, fmt.Errorf("cluster: user %q row malformed", userName)
	}
	raw := row.Array[0].Text
	if raw == "" {
		return nil, nil
	}
	return strings.Split(raw, ","), nil
}
