package cluster

import (
	"fmt"
	"os"

	"github.com/filipkocis/drumnbase/internal/ast"
	"github.com/filipkocis/drumnbase/internal/auth"
	"github.com/filipkocis/drumnbase/internal/config"
	"github.com/filipkocis/drumnbase/internal/log"
	"github.com/filipkocis/drumnbase/internal/runner"
)

// Create initializes a brand-new cluster at cfg.RootDir: the root
// directory, the internal bookkeeping database with its users/roles
// tables, and a superuser account seeded with the given name and password
// (§4.6, §4.7 "cluster initialization").
func Create(cfg config.Cluster, superuserName, superuserPassword string, logSink log.Sink) (*Cluster, error) {
	if _, err := os.Stat(cfg.RootDir); err == nil {
		return nil, fmt.Errorf("cluster: root directory %q already exists", cfg.RootDir)
	}
	if err := os.MkdirAll(cfg.RootDir, 0o755); err != nil {
		return nil, fmt.Errorf("cluster: create root directory %q: %w", cfg.RootDir, err)
	}

	c := &Cluster{
		RootDir:   cfg.RootDir,
		Log:       logSink,
		databases: make(map[string]*database),
		roles:     make(map[string]*auth.Role),
		users:     make(map[string]*auth.User),
	}

	internalName := cfg.InternalDatabaseName
	if internalName == "" {
		internalName = InternalDatabaseName
	}
	db, sf, err := createDatabaseDir(cfg.RootDir, internalName)
	if err != nil {
		return nil, err
	}
	if cfg.DefaultSelectLimit > 0 {
		db.DefaultSelectLimit = cfg.DefaultSelectLimit
	}
	if err := bootstrapInternalSchema(db, sf, c.RoleLookup); err != nil {
		return nil, err
	}
	c.registerDatabase(internalName, db, sf)

	hash, err := auth.HashPassword(superuserPassword)
	if err != nil {
		return nil, fmt.Errorf("cluster: hash superuser password: %w", err)
	}
	ctx := c.internalCtx(db)
	ins := &ast.Insert{Table: "users", Values: []ast.Assignment{
		{Column: "name", Value: strLit(superuserName)},
		{Column: "hash", Value: strLit(hash)},
		{Column: "roles", Value: strLit("")},
		{Column: "is_superuser", Value: boolLit(true)},
	}}
	if _, err := runner.ExecInsert(ctx, ins); err != nil {
		return nil, fmt.Errorf("cluster: seed superuser %q: %w", superuserName, err)
	}
	if err := c.reloadRolesAndUsers(); err != nil {
		return nil, err
	}

	c.logf("cluster initialized at %q with superuser %q", cfg.RootDir, superuserName)
	return c, nil
}
