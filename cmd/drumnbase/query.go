package main

import (
	"fmt"

	"github.com/filipkocis/drumnbase/internal/ast"
	"github.com/filipkocis/drumnbase/internal/auth"
	"github.com/filipkocis/drumnbase/internal/cluster"
	"github.com/filipkocis/drumnbase/internal/parse"
	"github.com/filipkocis/drumnbase/internal/runner"
	"github.com/filipkocis/drumnbase/internal/scope"
	"github.com/filipkocis/drumnbase/internal/store"
)

// runStatement authenticates username/password against database, parses
// src as a sequence of statements, and evaluates them in order against
// that database, returning the last statement's value rendered as text.
func runStatement(c *cluster.Cluster, username, password, database, src string) (string, error) {
	user, err := auth.Authenticate(c.UserLookup, c.RoleLookup, username, password, database)
	if err != nil {
		return "", fmt.Errorf("authentication failed: %w", err)
	}
	db, ok := c.Database(database)
	if !ok {
		return "", fmt.Errorf("unknown database %q", database)
	}

	block, err := parse.Parse(src)
	if err != nil {
		return "", fmt.Errorf("parse error: %w", err)
	}

	var handle *store.Handle
	if blockIsReadOnly(block) {
		handle = db.BeginRead()
	} else {
		handle = db.BeginWrite()
	}
	defer handle.Release()

	ctx := &runner.Ctx{
		DB:          db,
		Handle:      handle,
		Scope:       scope.New(),
		ClusterUser: user,
		AuthUser:    user,
		RoleLookup:  c.RoleLookup,
		Cluster:     c,
	}

	result := runner.Eval(ctx, block)
	if result.IsError() {
		return "", result.Err
	}
	return result.Value.String(), nil
}

// blockIsReadOnly reports whether every top-level statement in block is a
// plain SELECT, letting runStatement take the cluster's shared read lock
// instead of its exclusive write lock (store.Handle, §5 "readers can run
// concurrently with other readers"). Anything else - INSERT/UPDATE/DELETE,
// any SDL form, or a script statement that could contain one - takes the
// write lock, since a top-level Let/If/While/Call may hide a mutation.
func blockIsReadOnly(block *ast.Block) bool {
	if len(block.Statements) == 0 {
		return false
	}
	for _, stmt := range block.Statements {
		if _, ok := stmt.(*ast.Select); !ok {
			return false
		}
	}
	return true
}
