package cluster

import (
	"fmt"
	"os"

	"github.com/filipkocis/drumnbase/internal/auth"
	"github.com/filipkocis/drumnbase/internal/config"
	"github.com/filipkocis/drumnbase/internal/log"
)

// Load opens an existing cluster at cfg.RootDir: every subdirectory is
// loaded as a database, its schema file replayed to reconstruct tables and
// policies, and each table's committed rows purged of tombstones before
// the cluster is handed back ready to serve (§4.7 "cluster startup").
// Exactly one loaded database must be named cfg.InternalDatabaseName.
func Load(cfg config.Cluster, logSink log.Sink) (*Cluster, error) {
	entries, err := os.ReadDir(cfg.RootDir)
	if err != nil {
		return nil, fmt.Errorf("cluster: read root directory %q: %w", cfg.RootDir, err)
	}

	internalName := cfg.InternalDatabaseName
	if internalName == "" {
		internalName = InternalDatabaseName
	}

	c := &Cluster{
		RootDir:   cfg.RootDir,
		Log:       logSink,
		databases: make(map[string]*database),
		roles:     make(map[string]*auth.Role),
		users:     make(map[string]*auth.User),
	}

	foundInternal := false
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		db, sf, schemaSrc, err := openDatabaseDir(cfg.RootDir, name)
		if err != nil {
			return nil, err
		}
		if cfg.DefaultSelectLimit > 0 {
			db.DefaultSelectLimit = cfg.DefaultSelectLimit
		}
		if err := replaySchema(db, schemaSrc, c.RoleLookup); err != nil {
			return nil, err
		}
		for _, t := range db.Tables {
			if err := t.Purge(); err != nil {
				return nil, fmt.Errorf("cluster: purge table %q in database %q: %w", t.Name, name, err)
			}
		}
		c.registerDatabase(name, db, sf)
		if name == internalName {
			foundInternal = true
		}
	}

	if !foundInternal {
		return nil, fmt.Errorf("cluster: no internal database named %q found under %q", internalName, cfg.RootDir)
	}
	if err := c.reloadRolesAndUsers(); err != nil {
		return nil, err
	}

	c.logf("cluster loaded from %q with %d database(s)", cfg.RootDir, len(c.databases))
	return c, nil
}

// Close flushes and releases every database's schema file handle.
func (c *Cluster) Close() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var firstErr error
	for _, d := range c.databases {
		if err := d.schema.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
