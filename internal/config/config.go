// Package config loads the cluster's YAML configuration file: where the
// cluster's data directory lives, the name of its internal bookkeeping
// database, the default SELECT row limit, and the server's listen
// address (§10, grounded on cuemby-warren's YAML-driven configuration).
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Cluster is the cluster-wide configuration, loaded from a YAML file and
// overridable per-field by environment variables.
type Cluster struct {
	// RootDir is the directory holding one subdirectory per database
	// (§4.7).
	RootDir string `yaml:"root_dir"`

	// InternalDatabaseName names the bootstrap database holding the
	// users/roles tables (§4.6, §4.7).
	InternalDatabaseName string `yaml:"internal_database_name"`

	// DefaultSelectLimit seeds every loaded Database's
	// runner.Database.DefaultSelectLimit (§4.5 step 5).
	DefaultSelectLimit int `yaml:"default_select_limit"`

	// ListenAddr is the address cmd/drumnbase's serve subcommand binds to.
	ListenAddr string `yaml:"listen_addr"`
}

// Default returns the configuration used when no file is given.
func Default() Cluster {
	return Cluster{
		RootDir:              "./data",
		InternalDatabaseName: "drumnbase",
		DefaultSelectLimit:   1000,
		ListenAddr:           "127.0.0.1:5432",
	}
}

// envOverrides are applied after the YAML file is parsed, letting a
// deployment override individual fields without editing the file.
var envOverrides = map[string]func(*Cluster, string){
	"DRUMNBASE_ROOT_DIR":               func(c *Cluster, v string) { c.RootDir = v },
	"DRUMNBASE_INTERNAL_DATABASE_NAME": func(c *Cluster, v string) { c.InternalDatabaseName = v },
	"DRUMNBASE_LISTEN_ADDR":            func(c *Cluster, v string) { c.ListenAddr = v },
}

// Load reads and parses the YAML file at path, applying the Default values
// for any field the file omits and any matching environment override
// afterward. An empty path returns Default() with environment overrides
// applied.
func Load(path string) (Cluster, error) {
	cfg := Default()
	if path == "" {
		applyEnv(&cfg)
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Cluster{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Cluster{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(c *Cluster) {
	for name, set := range envOverrides {
		if v, ok := os.LookupEnv(name); ok {
			set(c, v)
		}
	}
}
