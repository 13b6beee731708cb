package runner

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/filipkocis/drumnbase/internal/ast"
	"github.com/filipkocis/drumnbase/internal/auth"
	"github.com/filipkocis/drumnbase/internal/store"
)

// Table wraps the raw row store with the authorization-facing concerns the
// runner needs: whether RLS is enabled and its policy list, and whether the
// table refuses mutation (§3 "Table").
type Table struct {
	*store.Table
	RlsEnabled bool
	Policies   []auth.RlsPolicy
	ReadOnly   bool
}

// Function is one callable the evaluator can invoke: a user-defined
// function's AST body, or a built-in's native Go implementation. Exactly
// one of Body/Native is set (§4.5 "Function declarations").
type Function struct {
	Name       string
	Params     []ast.Param
	ReturnType ast.TypeRef
	Body       ast.Node // nil for a built-in
	Native     NativeFunc
}

// SchemaWriter persists a pretty-printed SDL statement to the database's
// append-only schema file (§4.7, §6 "Schema file"). Owned by internal/
// cluster, injected here to keep the runner free of filesystem concerns.
type SchemaWriter interface {
	AppendSDL(stmt string) error
}

// Database is the runner's unit of shared mutable state: its tables,
// user-defined/built-in functions, and RLS policy bookkeeping, guarded by a
// single reader/writer lock per §5's concurrency model.
type Database struct {
	Name string
	Dir  string // <root>/<name>/, holding tables/ and schema.bob (§4.7)

	// DefaultSelectLimit is used by a SELECT with no LIMIT clause; the
	// cluster sets this from config.Cluster at load time (§4.5 step 5, §10).
	DefaultSelectLimit int

	mu sync.RWMutex

	Tables     map[string]*Table
	TableOrder []string
	Functions  map[string]*Function

	Schema SchemaWriter
}

// defaultSelectLimit is the reference implementation's hardcoded constant,
// used when no cluster configuration overrides it (§4.5 step 5).
const defaultSelectLimit = 1000

// NewDatabase creates an empty Database ready to receive tables and
// functions (typically followed by registering the built-in function
// library).
func NewDatabase(name, dir string) *Database {
	return &Database{
		Name:               name,
		Dir:                dir,
		DefaultSelectLimit: defaultSelectLimit,
		Tables:             make(map[string]*Table),
		Functions:          make(map[string]*Function),
	}
}

// TablePath returns the on-disk path for table name's row-store file, under
// this database's tables/ subdirectory (§4.7).
func (db *Database) TablePath(name string) string {
	return filepath.Join(db.Dir, "tables", name)
}

// BeginRead and BeginWrite return a Handle over db's single reader/writer
// lock (§5, §9).
func (db *Database) BeginRead() *store.Handle  { return store.BeginRead(&db.mu) }
func (db *Database) BeginWrite() *store.Handle { return store.BeginWrite(&db.mu) }

// AddTable registers t under its own name. It errors on a duplicate name
// per §7's Name-category errors.
func (db *Database) AddTable(t *Table) error {
	if _, exists := db.Tables[t.Name]; exists {
		return fmt.Errorf("runner: duplicate table %q", t.Name)
	}
	db.Tables[t.Name] = t
	db.TableOrder = append(db.TableOrder, t.Name)
	return nil
}

// Table looks up a table by name.
func (db *Database) Table(name string) (*Table, bool) {
	t, ok := db.Tables[name]
	return t, ok
}

// AddFunction registers fn under its own name, overwriting any previous
// registration — used both for built-in installation at load and for
// user-defined `fn` declarations (§4.5).
func (db *Database) AddFunction(fn *Function) {
	db.Functions[fn.Name] = fn
}

// Function looks up a callable by name.
func (db *Database) Function(name string) (*Function, bool) {
	fn, ok := db.Functions[name]
	return fn, ok
}
