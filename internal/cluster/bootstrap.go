package cluster

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/filipkocis/drumnbase/internal/auth"
	"github.com/filipkocis/drumnbase/internal/dbvalue"
	"github.com/filipkocis/drumnbase/internal/parse"
	"github.com/filipkocis/drumnbase/internal/runner"
)

// internalSchema declares the two tables backing cluster-wide identity and
// privilege bookkeeping (§4.6, §4.7). roles widens the original single
// role_name-per-user column into a comma-separated list, since one user
// may be granted more than one role by repeated GRANT ROLE statements; a
// bare CREATE ROLE inserts a placeholder row (object/action left blank) so
// an as-yet-privilege-less role is still discoverable on reload.
const internalSchema = `
create table users { name: fixed(64), required, unique; hash: fixed(200), required; roles: fixed(512); is_superuser: bool, default false };
create table roles { name: fixed(64), required; object: fixed(16); object_name: fixed(128); action: fixed(32); extra: fixed(128) };
`

// dirTree holds the on-disk layout for one database directory.
type dirTree struct {
	dir        string
	tablesDir  string
	schemaPath string
}

func databaseDirTree(rootDir, name string) dirTree {
	dir := filepath.Join(rootDir, name)
	return dirTree{
		dir:        dir,
		tablesDir:  filepath.Join(dir, "tables"),
		schemaPath: filepath.Join(dir, SchemaFileName),
	}
}

// createDatabaseDir materializes a brand-new database directory tree
// (mkdir, empty schema file) and returns its freshly bootstrapped,
// registration-ready runner.Database.
func createDatabaseDir(rootDir, name string) (*runner.Database, *schemaFile, error) {
	tree := databaseDirTree(rootDir, name)
	if _, err := os.Stat(tree.dir); err == nil {
		return nil, nil, fmt.Errorf("cluster: database directory %q already exists", tree.dir)
	}
	if err := os.MkdirAll(tree.tablesDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("cluster: create database directory %q: %w", tree.dir, err)
	}
	sf, err := createSchemaFile(tree.schemaPath)
	if err != nil {
		return nil, nil, err
	}
	return runner.NewDatabase(name, tree.dir), sf, nil
}

// openDatabaseDir opens an existing database directory's schema file and
// returns its contents for replay alongside a freshly constructed
// (not-yet-replayed) runner.Database.
func openDatabaseDir(rootDir, name string) (*runner.Database, *schemaFile, string, error) {
	tree := databaseDirTree(rootDir, name)
	sf, contents, err := openSchemaFile(tree.schemaPath)
	if err != nil {
		return nil, nil, "", err
	}
	return runner.NewDatabase(name, tree.dir), sf, contents, nil
}

// replaySchema parses src as a sequence of SDL statements and executes each
// against db with IsSchema set, so execCreateTable opens rather than
// creates each table's already-existing data file (§4.7).
func replaySchema(db *runner.Database, src string, roleLookup auth.RoleLookup) error {
	if src == "" {
		return nil
	}
	block, err := parse.Parse(src)
	if err != nil {
		return fmt.Errorf("cluster: parse schema for %q: %w", db.Name, err)
	}
	ctx := &runner.Ctx{
		DB:          db,
		ClusterUser: internalActor,
		AuthUser:    internalActor,
		RoleLookup:  roleLookup,
		IsSchema:    true,
	}
	for _, stmt := range block.Statements {
		if err := runner.ExecSDL(ctx, stmt, nil); err != nil {
			return fmt.Errorf("cluster: replay schema for %q: %w", db.Name, err)
		}
	}
	return nil
}

// bootstrapInternalSchema runs internalSchema against a freshly created
// internal database, appending each statement to its schema file so a
// later Load replays it like any other database's schema (§4.6, §4.7).
func bootstrapInternalSchema(db *runner.Database, sf *schemaFile, roleLookup auth.RoleLookup) error {
	block, err := parse.Parse(internalSchema)
	if err != nil {
		return fmt.Errorf("cluster: parse internal schema: %w", err)
	}
	ctx := &runner.Ctx{
		DB:          db,
		ClusterUser: internalActor,
		AuthUser:    internalActor,
		RoleLookup:  roleLookup,
	}
	for _, stmt := range block.Statements {
		if err := runner.ExecSDL(ctx, stmt, sf); err != nil {
			return fmt.Errorf("cluster: bootstrap internal schema: %w", err)
		}
	}
	return nil
}

// privilegeFromRow reconstructs an auth.Privilege from one roles-table row
// (name, object, object_name, action, extra), skipping the placeholder row
// a bare CREATE ROLE inserts (object == "").
func privilegeFromRow(object, objectName, action, extra string) (auth.Privilege, bool) {
	switch object {
	case "":
		return auth.Privilege{}, false
	case "database":
		return auth.PrivilegeForDatabase(objectName, action), true
	case "table":
		return auth.PrivilegeForTable(objectName, action), true
	case "column":
		return auth.PrivilegeForColumn(objectName, extra, action), true
	case "function":
		return auth.PrivilegeForFunction(objectName, action), true
	default:
		return auth.Privilege{}, false
	}
}

// rowText extracts column idx of row as a trimmed string, returning "" for
// null or non-text values.
func rowText(row dbvalue.Value, idx int) string {
	if row.Kind != dbvalue.KindArray || idx >= len(row.Array) {
		return ""
	}
	v := row.Array[idx]
	if v.Kind != dbvalue.KindText {
		return ""
	}
	return v.Text
}

func rowBool(row dbvalue.Value, idx int) bool {
	if row.Kind != dbvalue.KindArray || idx >= len(row.Array) {
		return false
	}
	v := row.Array[idx]
	return v.Kind == dbvalue.KindBoolean && v.Boolean
}
