package runner

import (
	"fmt"
	"sort"

	"github.com/filipkocis/drumnbase/internal/ast"
	"github.com/filipkocis/drumnbase/internal/auth"
	"github.com/filipkocis/drumnbase/internal/dbvalue"
	"github.com/filipkocis/drumnbase/internal/store"
)

// ExecSelect runs the six-step SELECT algorithm: authorize, join, resolve
// columns, filter, order/paginate, materialise (§4.5 "SELECT execution").
func ExecSelect(c *Ctx, n *ast.Select) (dbvalue.Value, error) {
	if c.IsSchema {
		return dbvalue.Value{}, ErrSchemaQuery
	}
	base, ok := c.DB.Table(n.Table)
	if !ok {
		return dbvalue.Value{}, fmt.Errorf("runner: unknown table %q", n.Table)
	}
	if !c.authorize(auth.PrivilegeForTable(base.Name, auth.RlsSelect)) {
		return dbvalue.Value{}, ErrUnauthorized
	}

	tables, rows, err := buildJoinPlan(c, base, n.Joins)
	if err != nil {
		return dbvalue.Value{}, err
	}

	basePolicies := auth.Police(base.Policies, base.RlsEnabled, c.ClusterUser, auth.RlsSelect)

	var kept []joinRow
	for _, r := range rows {
		ctx := buildRowContext(c, tables, r)
		if !r.refs[0].Null {
			ok, err := passesPolicies(policyContext(c, base, r.refs[0].RowIndex), basePolicies)
			if err != nil {
				return dbvalue.Value{}, err
			}
			if !ok {
				continue
			}
		}
		if n.Where != nil {
			w := Eval(ctx, n.Where)
			if w.IsError() {
				return dbvalue.Value{}, w.Err
			}
			if w.Value.Kind != dbvalue.KindBoolean || !w.Value.Boolean {
				continue
			}
		}
		kept = append(kept, r)
	}

	if n.Order != nil {
		tableIdx, colIdx, err := resolveOrderColumn(tables, n.Order.Column)
		if err != nil {
			return dbvalue.Value{}, err
		}
		sort.SliceStable(kept, func(i, j int) bool {
			vi := orderValue(kept[i], tableIdx, colIdx)
			vj := orderValue(kept[j], tableIdx, colIdx)
			cmp := vi.Compare(vj)
			if n.Order.Ascending {
				return cmp < 0
			}
			return cmp > 0
		})
	}

	kept = applyOffsetLimit(kept, n.Offset, n.Limit, c)

	columns, err := resolveColumns(tables, n.Columns, n.Exclude)
	if err != nil {
		return dbvalue.Value{}, err
	}

	out := make([]dbvalue.Value, 0, len(kept))
	for _, r := range kept {
		ctx := buildRowContext(c, tables, r)
		rowVals := make([]dbvalue.Value, 0, len(columns))
		for _, col := range columns {
			res := Eval(ctx, col)
			if res.IsError() {
				return dbvalue.Value{}, res.Err
			}
			rowVals = append(rowVals, res.Value)
		}
		out = append(out, dbvalue.NewArray(rowVals))
	}
	return dbvalue.NewArray(out), nil
}

func orderValue(r joinRow, tableIdx, colIdx int) dbvalue.Value {
	ref := r.refs[tableIdx]
	if ref.Null {
		return dbvalue.Null
	}
	return ref.Table.Committed[ref.RowIndex].Values[colIdx]
}

func resolveOrderColumn(tables []*Table, name string) (tableIdx, colIdx int, err error) {
	for ti, t := range tables {
		if idx := t.ColumnIndex(name); idx >= 0 {
			return ti, idx, nil
		}
	}
	return 0, 0, fmt.Errorf("runner: order column %q not found", name)
}

func applyOffsetLimit(rows []joinRow, offsetExpr, limitExpr ast.Node, c *Ctx) []joinRow {
	offset := 0
	if offsetExpr != nil {
		if r := Eval(c, offsetExpr); !r.IsError() && r.Value.Kind == dbvalue.KindNumeric {
			offset = int(r.Value.Numeric.AsF64())
		}
	}
	if offset > 0 {
		if offset >= len(rows) {
			return nil
		}
		rows = rows[offset:]
	}
	limit := c.DB.DefaultSelectLimit
	if limit <= 0 {
		limit = defaultSelectLimit
	}
	if limitExpr != nil {
		if r := Eval(c, limitExpr); !r.IsError() && r.Value.Kind == dbvalue.KindNumeric {
			limit = int(r.Value.Numeric.AsF64())
		}
	}
	if limit >= 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}

// resolveColumns expands the selector list into a flat list of expression
// nodes: identifiers and member selectors pass through, `*`/`table.*`
// expand to that table's declared columns in order, and the exclude list
// removes matching base-table columns (§4.5 step 3).
func resolveColumns(tables []*Table, selectors []ast.Node, exclude []string) ([]ast.Node, error) {
	base := tables[0]
	excluded := make(map[string]bool, len(exclude))
	for _, e := range exclude {
		excluded[e] = true
	}

	var out []ast.Node
	for _, sel := range selectors {
		w, isWild := sel.(*ast.Wildcard)
		if !isWild {
			out = append(out, sel)
			continue
		}
		target := base
		if w.Table != "" {
			found := false
			for _, t := range tables {
				if t.Name == w.Table {
					target = t
					found = true
					break
				}
			}
			if !found {
				return nil, fmt.Errorf("runner: unknown table %q in wildcard", w.Table)
			}
		}
		for _, col := range target.Columns {
			if target == base && excluded[col.Name] {
				continue
			}
			if w.Table != "" {
				out = append(out, &ast.Member{Target: &ast.Identifier{Name: target.Name}, Name: col.Name})
			} else {
				out = append(out, &ast.Identifier{Name: col.Name})
			}
		}
	}
	return out, nil
}

// ExecInsert authorizes, evaluates every assignment's RHS, fills in
// defaults and nulls, checks uniqueness, polices the candidate row, and
// appends it (§4.5 "INSERT execution").
func ExecInsert(c *Ctx, n *ast.Insert) (dbvalue.Value, error) {
	if c.IsSchema {
		return dbvalue.Value{}, ErrSchemaQuery
	}
	t, ok := c.DB.Table(n.Table)
	if !ok {
		return dbvalue.Value{}, fmt.Errorf("runner: unknown table %q", n.Table)
	}
	if t.Mode != store.Memory {
		return dbvalue.Value{}, ErrDiskModeTable
	}
	if !c.authorize(auth.PrivilegeForTable(t.Name, auth.RlsInsert)) {
		return dbvalue.Value{}, ErrUnauthorized
	}

	provided := make(map[string]dbvalue.Value, len(n.Values))
	seen := make(map[string]bool, len(n.Values))
	for _, a := range n.Values {
		if seen[a.Column] {
			return dbvalue.Value{}, fmt.Errorf("runner: duplicate column %q in insert", a.Column)
		}
		seen[a.Column] = true
		if t.ColumnIndex(a.Column) < 0 {
			return dbvalue.Value{}, fmt.Errorf("runner: unknown column %q in table %q", a.Column, t.Name)
		}
		r := Eval(c, a.Value)
		if r.IsError() {
			return dbvalue.Value{}, r.Err
		}
		provided[a.Column] = r.Value
	}

	values := make([]dbvalue.Value, len(t.Columns))
	for i, col := range t.Columns {
		var v dbvalue.Value
		switch {
		case seen[col.Name]:
			v = provided[col.Name]
		case col.Default != nil:
			r := Eval(c.withRow(t, nil, -1), col.Default)
			if r.IsError() {
				return dbvalue.Value{}, r.Err
			}
			v = r.Value
		case col.NotNull:
			return dbvalue.Value{}, fmt.Errorf("runner: column %q is not-null and has no default", col.Name)
		default:
			v = dbvalue.Null
		}
		tv, err := col.Transform(v)
		if err != nil {
			return dbvalue.Value{}, err
		}
		values[i] = tv
	}

	row := store.Row{Values: values}
	if err := t.CheckUnique(row); err != nil {
		return dbvalue.Value{}, err
	}

	policies := auth.Police(t.Policies, t.RlsEnabled, c.ClusterUser, auth.RlsInsert)
	ok2, err := passesPolicies(policyContextForRow(c, t, &row), policies)
	if err != nil {
		return dbvalue.Value{}, err
	}
	if !ok2 {
		return dbvalue.Value{}, ErrRlsInsert
	}

	t.Append(row)
	if err := t.SyncBuffer(); err != nil {
		return dbvalue.Value{}, err
	}
	return dbvalue.NewBoolean(true), nil
}

// ExecUpdate requires WHERE, refuses to touch unique columns, and aborts
// the whole statement on the first UPDATE-policy rejection (§4.5 "UPDATE
// execution").
func ExecUpdate(c *Ctx, n *ast.Update) (dbvalue.Value, error) {
	if c.IsSchema {
		return dbvalue.Value{}, ErrSchemaQuery
	}
	t, ok := c.DB.Table(n.Table)
	if !ok {
		return dbvalue.Value{}, fmt.Errorf("runner: unknown table %q", n.Table)
	}
	if t.Mode != store.Memory {
		return dbvalue.Value{}, ErrDiskModeTable
	}
	if !c.authorize(auth.PrivilegeForTable(t.Name, auth.RlsUpdate)) {
		return dbvalue.Value{}, ErrUnauthorized
	}
	if n.Where == nil {
		return dbvalue.Value{}, fmt.Errorf("runner: update requires a where clause")
	}

	colIndices := make([]int, 0, len(n.Values))
	for _, a := range n.Values {
		idx := t.ColumnIndex(a.Column)
		if idx < 0 {
			return dbvalue.Value{}, fmt.Errorf("runner: unknown column %q in table %q", a.Column, t.Name)
		}
		if t.Columns[idx].Unique {
			return dbvalue.Value{}, fmt.Errorf("runner: column %q is unique and cannot be updated by this query shape", a.Column)
		}
		colIndices = append(colIndices, idx)
	}

	policies := auth.Police(t.Policies, t.RlsEnabled, c.ClusterUser, auth.RlsUpdate)

	count := 0
	for i := range t.Committed {
		if t.Committed[i].IsDeleted() {
			continue
		}
		ok, err := passesPolicies(policyContext(c, t, i), policies)
		if err != nil {
			return dbvalue.Value{}, err
		}
		if !ok {
			return dbvalue.Value{}, ErrRlsUpdate
		}

		rowCtx := c.withRow(t, &t.Committed[i], i)
		w := Eval(rowCtx, n.Where)
		if w.IsError() {
			return dbvalue.Value{}, w.Err
		}
		if w.Value.Kind != dbvalue.KindBoolean || !w.Value.Boolean {
			continue
		}

		for j, a := range n.Values {
			r := Eval(rowCtx, a.Value)
			if r.IsError() {
				return dbvalue.Value{}, r.Err
			}
			tv, err := t.Columns[colIndices[j]].Transform(r.Value)
			if err != nil {
				return dbvalue.Value{}, err
			}
			t.Committed[i].Values[colIndices[j]] = tv
		}
		if err := t.SyncRowParts(i, colIndices); err != nil {
			return dbvalue.Value{}, err
		}
		count++
	}
	return dbvalue.NewInt(dbvalue.NumI64, int64(count)), nil
}

// ExecDelete requires WHERE and aborts on the first DELETE-policy
// rejection, otherwise tombstoning matching rows (§4.5 "DELETE execution").
func ExecDelete(c *Ctx, n *ast.Delete) (dbvalue.Value, error) {
	if c.IsSchema {
		return dbvalue.Value{}, ErrSchemaQuery
	}
	t, ok := c.DB.Table(n.Table)
	if !ok {
		return dbvalue.Value{}, fmt.Errorf("runner: unknown table %q", n.Table)
	}
	if t.Mode != store.Memory {
		return dbvalue.Value{}, ErrDiskModeTable
	}
	if !c.authorize(auth.PrivilegeForTable(t.Name, auth.RlsDelete)) {
		return dbvalue.Value{}, ErrUnauthorized
	}
	if n.Where == nil {
		return dbvalue.Value{}, fmt.Errorf("runner: delete requires a where clause")
	}

	policies := auth.Police(t.Policies, t.RlsEnabled, c.ClusterUser, auth.RlsDelete)

	count := 0
	for i := range t.Committed {
		if t.Committed[i].IsDeleted() {
			continue
		}
		ok, err := passesPolicies(policyContext(c, t, i), policies)
		if err != nil {
			return dbvalue.Value{}, err
		}
		if !ok {
			return dbvalue.Value{}, ErrRlsDelete
		}

		rowCtx := c.withRow(t, &t.Committed[i], i)
		w := Eval(rowCtx, n.Where)
		if w.IsError() {
			return dbvalue.Value{}, w.Err
		}
		if w.Value.Kind != dbvalue.KindBoolean || !w.Value.Boolean {
			continue
		}

		if err := t.MarkDeleted(i); err != nil {
			return dbvalue.Value{}, err
		}
		if err := t.SyncFlag(i); err != nil {
			return dbvalue.Value{}, err
		}
		count++
	}
	return dbvalue.NewInt(dbvalue.NumI64, int64(count)), nil
}
