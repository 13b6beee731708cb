package runner

import (
	"fmt"

	"github.com/filipkocis/drumnbase/internal/ast"
	"github.com/filipkocis/drumnbase/internal/auth"
	"github.com/filipkocis/drumnbase/internal/dbvalue"
	"github.com/filipkocis/drumnbase/internal/store"
)

// joinRow is one candidate row of the accumulated join product: one ref per
// table, in table order (base table first, then one per join clause).
type joinRow struct {
	refs []JoinRowRef
}

// buildRowContext returns a Ctx whose BaseTable/BaseRow back unqualified
// identifiers against the first table, and whose Joined/JoinedByName expose
// every table in tables (by name) for table.column selectors — used for
// both ON-expression and WHERE/column-list evaluation (§4.5 step 2-4).
func buildRowContext(c *Ctx, tables []*Table, row joinRow) *Ctx {
	byName := make(map[string]JoinRowRef, len(tables))
	for i, t := range tables {
		byName[t.Name] = row.refs[i]
	}
	cp := c.withJoined(row.refs[1:], byName)
	if row.refs[0].Null {
		return cp.withRow(tables[0], nil, -1)
	}
	return cp.withRow(tables[0], &tables[0].Committed[row.refs[0].RowIndex], row.refs[0].RowIndex)
}

// policyContext evaluates a single table's own RLS policy against one of
// its committed candidate rows, in isolation from any join context (§4.6
// "police").
func policyContext(c *Ctx, t *Table, rowIndex int) *Ctx {
	return policyContextForRow(c, t, &t.Committed[rowIndex])
}

// policyContextForRow is the same as policyContext but against a row not
// yet committed to the table — used to police an INSERT candidate before
// it is appended (§4.5 "INSERT execution").
func policyContextForRow(c *Ctx, t *Table, row *store.Row) *Ctx {
	return c.withJoined(nil, nil).withRow(t, row, -1)
}

// passesPolicies evaluates conds under ctx and reports whether at least one
// is Boolean(true); an empty list always passes (§4.6 "police").
func passesPolicies(ctx *Ctx, conds []ast.Node) (bool, error) {
	if len(conds) == 0 {
		return true, nil
	}
	for _, cond := range conds {
		r := Eval(ctx, cond)
		if r.IsError() {
			return false, r.Err
		}
		if r.Value.Kind == dbvalue.KindBoolean && r.Value.Boolean {
			return true, nil
		}
	}
	return false, nil
}

// buildJoinPlan evaluates the select's join clauses left to right, applying
// each joined table's SELECT RLS policies to every candidate row before
// testing the ON expression, then padding unmatched rows with null refs
// per the join kind (§4.5 step 2).
func buildJoinPlan(c *Ctx, base *Table, joins []ast.Join) ([]*Table, []joinRow, error) {
	tables := []*Table{base}
	rows := make([]joinRow, 0, len(base.Committed))
	for i, row := range base.Committed {
		if row.IsDeleted() {
			continue
		}
		rows = append(rows, joinRow{refs: []JoinRowRef{{Table: base, RowIndex: i}}})
	}

	for _, j := range joins {
		candidate, ok := c.DB.Table(j.Table)
		if !ok {
			return nil, nil, fmt.Errorf("runner: unknown table %q in join", j.Table)
		}
		if !c.authorize(auth.PrivilegeForTable(candidate.Name, auth.RlsSelect)) {
			return nil, nil, ErrUnauthorized
		}
		policies := auth.Police(candidate.Policies, candidate.RlsEnabled, c.ClusterUser, auth.RlsSelect)

		tables = append(tables, candidate)
		matchedCandidate := make([]bool, len(candidate.Committed))
		var next []joinRow

		for _, pr := range rows {
			matchedAny := false
			for ci, crow := range candidate.Committed {
				if crow.IsDeleted() {
					continue
				}
				ok, err := passesPolicies(policyContext(c, candidate, ci), policies)
				if err != nil {
					return nil, nil, err
				}
				if !ok {
					continue
				}
				extended := joinRow{refs: append(append([]JoinRowRef(nil), pr.refs...), JoinRowRef{Table: candidate, RowIndex: ci})}
				onRes := Eval(buildRowContext(c, tables, extended), j.On)
				if onRes.IsError() {
					return nil, nil, onRes.Err
				}
				if onRes.Value.Kind == dbvalue.KindBoolean && onRes.Value.Boolean {
					next = append(next, extended)
					matchedAny = true
					matchedCandidate[ci] = true
				}
			}
			if !matchedAny && (j.Kind == ast.JoinLeft || j.Kind == ast.JoinFull) {
				next = append(next, joinRow{refs: append(append([]JoinRowRef(nil), pr.refs...), JoinRowRef{Null: true})})
			}
		}

		if j.Kind == ast.JoinRight || j.Kind == ast.JoinFull {
			for ci, crow := range candidate.Committed {
				if crow.IsDeleted() || matchedCandidate[ci] {
					continue
				}
				padded := make([]JoinRowRef, len(tables))
				for i := range tables[:len(tables)-1] {
					padded[i] = JoinRowRef{Null: true}
				}
				padded[len(tables)-1] = JoinRowRef{Table: candidate, RowIndex: ci}
				next = append(next, joinRow{refs: padded})
			}
		}

		rows = next
	}

	return tables, rows, nil
}
