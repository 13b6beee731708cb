package auth

import "github.com/filipkocis/drumnbase/internal/ast"

// RlsAction identifies which query shape an RlsPolicy guards.
const (
	RlsSelect = "select"
	RlsInsert = "insert"
	RlsUpdate = "update"
	RlsDelete = "delete"
	RlsAll    = "all"
)

// RlsPolicy is one named row-level security rule: its action and the AST
// condition evaluated with the candidate row in scope (§3 "RlsPolicy").
type RlsPolicy struct {
	Name      string
	Action    string
	Condition ast.Node
}

// Police returns the list of policy conditions that apply to action on a
// table with the given policies and rlsEnabled flag. RLS disabled or a
// superuser caller yields an empty list, meaning "allowed" unconditionally;
// otherwise the evaluator must short-circuit to true on the first condition
// that evaluates Boolean(true), rejecting the row if none do (§4.6
// "police").
func Police(policies []RlsPolicy, rlsEnabled bool, user *User, action string) []ast.Node {
	if !rlsEnabled || user.IsSuperuser {
		return nil
	}
	var out []ast.Node
	for _, p := range policies {
		if p.Action == action || p.Action == RlsAll || action == RlsAll {
			out = append(out, p.Condition)
		}
	}
	return out
}
