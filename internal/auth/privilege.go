// Package auth implements the cluster's authorization model: users, roles,
// tagged privileges, row-level security policy matching, authentication,
// and password hashing (§4.6).
package auth

import "fmt"

// PrivilegeKind identifies which object a Privilege names.
type PrivilegeKind string

const (
	PrivilegeDatabase PrivilegeKind = "DATABASE"
	PrivilegeTable    PrivilegeKind = "TABLE"
	PrivilegeColumn   PrivilegeKind = "COLUMN"
	PrivilegeFunction PrivilegeKind = "FUNCTION"
)

// actionAll matches any requested action for its object, used by `grant all
// ... for <role>` and by a policy declared with action All.
const actionAll = "all"

// Privilege is a capability attached to (object, action), granted directly
// to a User or via one of its Roles (§3 "Privilege").
type Privilege struct {
	Kind     PrivilegeKind
	Database string
	Table    string
	Column   string
	Function string
	Action   string
}

func PrivilegeForDatabase(name, action string) Privilege {
	return Privilege{Kind: PrivilegeDatabase, Database: name, Action: action}
}

func PrivilegeForTable(name, action string) Privilege {
	return Privilege{Kind: PrivilegeTable, Table: name, Action: action}
}

func PrivilegeForColumn(table, column, action string) Privilege {
	return Privilege{Kind: PrivilegeColumn, Table: table, Column: column, Action: action}
}

func PrivilegeForFunction(name, action string) Privilege {
	return Privilege{Kind: PrivilegeFunction, Function: name, Action: action}
}

// Matches reports whether a granted privilege p covers the requested
// privilege want — same object identity, and either the same action or
// either side being the "all" wildcard.
func (p Privilege) Matches(want Privilege) bool {
	if p.Kind != want.Kind {
		return false
	}
	switch p.Kind {
	case PrivilegeDatabase:
		if p.Database != want.Database {
			return false
		}
	case PrivilegeTable:
		if p.Table != want.Table {
			return false
		}
	case PrivilegeColumn:
		if p.Table != want.Table || p.Column != want.Column {
			return false
		}
	case PrivilegeFunction:
		if p.Function != want.Function {
			return false
		}
	}
	return p.Action == want.Action || p.Action == actionAll || want.Action == actionAll
}

func (p Privilege) String() string {
	switch p.Kind {
	case PrivilegeDatabase:
		return fmt.Sprintf("database(%s).%s", p.Database, p.Action)
	case PrivilegeTable:
		return fmt.Sprintf("table(%s).%s", p.Table, p.Action)
	case PrivilegeColumn:
		return fmt.Sprintf("column(%s.%s).%s", p.Table, p.Column, p.Action)
	case PrivilegeFunction:
		return fmt.Sprintf("function(%s).%s", p.Function, p.Action)
	default:
		return "privilege(unknown)"
	}
}
