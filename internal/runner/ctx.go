package runner

import (
	"github.com/filipkocis/drumnbase/internal/auth"
	"github.com/filipkocis/drumnbase/internal/log"
	"github.com/filipkocis/drumnbase/internal/scope"
	"github.com/filipkocis/drumnbase/internal/store"
)

// JoinRowRef is one per-table slot of a joined-row vector: the table and
// the row index within it, or Null (no index) to denote "no matching row"
// on the outer side of a Left/Right/Full join (§4.5 step 2).
type JoinRowRef struct {
	Table    *Table
	RowIndex int
	Null     bool
}

// Ctx is the evaluator's per-query environment: the scoped variable chain,
// the current row context for column-identifier resolution, the
// authenticated and claimed users, a handle back to the cluster for SDL,
// and the is_schema replay flag (§4.5).
type Ctx struct {
	DB     *Database
	Handle *store.Handle

	Scope *scope.Scope

	// Current-row context for a scan. BaseTable/BaseRow back plain column
	// identifiers and table.column selectors against the base table;
	// Joined holds one slot per joined table in join-clause order, keyed
	// by table name via JoinedByName.
	BaseTable    *Table
	BaseRow      *store.Row
	BaseRowIndex int
	Joined       []JoinRowRef
	JoinedByName map[string]JoinRowRef

	ClusterUser *auth.User // the authenticated identity enforcing privileges/RLS
	AuthUser    *auth.User // the identity the query claims to run as
	RoleLookup  auth.RoleLookup

	Cluster ClusterHost
	Log     log.Sink // destination for the print/println built-ins (§10, §13)

	IsSchema bool
}

// ClusterHost is the narrow surface of internal/cluster the runner needs
// for SDL statements that mutate cluster-wide state (CREATE DATABASE/ROLE/
// USER, GRANT) rather than just one Database's tables (§4.5 "SDL
// execution"). Kept as an interface here, implemented by cluster.Cluster,
// so runner never imports cluster (which itself imports runner).
type ClusterHost interface {
	CreateDatabase(name string) error
	CreateRole(name string) error
	CreateUser(name, passwordHash string, isSuperuser bool) error
	GrantRole(roleName, userName string) error
	GrantAction(actions []string, objectKind, objectName, column, toRole string) error
}

// authorize checks want against the caller's authenticated identity
// (cluster_user), not the claimed auth_user — privileges are enforced
// against whoever actually connected (§4.6).
func (c *Ctx) authorize(want auth.Privilege) bool {
	return auth.Authorize(want, c.ClusterUser, c.RoleLookup)
}

func (c *Ctx) authorizeAll(wants []auth.Privilege) bool {
	return auth.AuthorizeAll(wants, c.ClusterUser, c.RoleLookup)
}

// child returns a Ctx sharing everything with c except a freshly pushed
// child Scope — used for block/loop/function entry (§4.5 "Statements").
func (c *Ctx) child() *Ctx {
	cp := *c
	cp.Scope = c.Scope.Push()
	return &cp
}

// withRow returns a Ctx with BaseTable/BaseRow/BaseRowIndex replaced,
// used while scanning a table's rows.
func (c *Ctx) withRow(t *Table, row *store.Row, idx int) *Ctx {
	cp := *c
	cp.BaseTable = t
	cp.BaseRow = row
	cp.BaseRowIndex = idx
	return &cp
}

// withJoined returns a Ctx with the joined-row vector replaced.
func (c *Ctx) withJoined(joined []JoinRowRef, byName map[string]JoinRowRef) *Ctx {
	cp := *c
	cp.Joined = joined
	cp.JoinedByName = byName
	return &cp
}
