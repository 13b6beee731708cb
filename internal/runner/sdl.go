package runner

import (
	"fmt"

	"github.com/filipkocis/drumnbase/internal/ast"
	"github.com/filipkocis/drumnbase/internal/auth"
	"github.com/filipkocis/drumnbase/internal/dbvalue"
	"github.com/filipkocis/drumnbase/internal/store"
	"github.com/filipkocis/drumnbase/internal/stringify"
)

// ExecSDL dispatches one SDL statement. Every form is gated by an explicit
// per-statement superuser check rather than a fine-grained privilege
// lookup, mirroring the per-statement-kind check the original reference
// performs before mutating the cluster or a database (§4.5 "SDL
// execution", §13).
func ExecSDL(c *Ctx, node ast.Node, writer SchemaWriter) error {
	switch n := node.(type) {
	case *ast.CreateTable:
		return execCreateTable(c, n, writer)
	case *ast.CreateRlsPolicy:
		return execCreatePolicy(c, n, writer)
	case *ast.CreateDatabase:
		return execCreateDatabase(c, n)
	case *ast.CreateRole:
		return execCreateRole(c, n)
	case *ast.CreateUser:
		return execCreateUser(c, n)
	case *ast.GrantRole:
		return execGrantRole(c, n)
	case *ast.GrantAction:
		return execGrantAction(c, n)
	case *ast.Drop:
		return fmt.Errorf("%w: drop %s", ErrNotImplemented, n.Kind)
	default:
		return fmt.Errorf("runner: node of type %T is not an SDL statement", node)
	}
}

func requireSuperuser(c *Ctx, form string) error {
	if c.ClusterUser == nil || !c.ClusterUser.IsSuperuser {
		return fmt.Errorf("%w: %s requires a superuser", ErrNotSuperuser, form)
	}
	return nil
}

// columnTypeFromRef translates the parser's syntax-only ColumnTypeRef into
// a storage-aware dbvalue.ColumnType (§4.1, §4.4 "ColumnTypeRef").
func columnTypeFromRef(ref ast.ColumnTypeRef) (dbvalue.ColumnType, error) {
	switch ref.Name {
	case "u8":
		return dbvalue.NumericType(dbvalue.NumU8), nil
	case "u16":
		return dbvalue.NumericType(dbvalue.NumU16), nil
	case "u32":
		return dbvalue.NumericType(dbvalue.NumU32), nil
	case "u64":
		return dbvalue.NumericType(dbvalue.NumU64), nil
	case "i8":
		return dbvalue.NumericType(dbvalue.NumI8), nil
	case "i16":
		return dbvalue.NumericType(dbvalue.NumI16), nil
	case "i32":
		return dbvalue.NumericType(dbvalue.NumI32), nil
	case "i64":
		return dbvalue.NumericType(dbvalue.NumI64), nil
	case "f32":
		return dbvalue.NumericType(dbvalue.NumF32), nil
	case "f64":
		return dbvalue.NumericType(dbvalue.NumF64), nil
	case "bool":
		return dbvalue.BooleanType(), nil
	case "binary":
		return dbvalue.BinaryType(), nil
	case "uuid":
		return dbvalue.UUIDType(), nil
	case "char":
		return dbvalue.CharType(), nil
	case "fixed":
		return dbvalue.FixedTextType(ref.FixedLen), nil
	case "time":
		unit, err := timestampUnitFromRef(ref.TimestampUnit)
		if err != nil {
			return dbvalue.ColumnType{}, err
		}
		return dbvalue.TimestampType(unit), nil
	default:
		return dbvalue.ColumnType{}, fmt.Errorf("runner: unknown column type %q", ref.Name)
	}
}

func timestampUnitFromRef(unit string) (dbvalue.TimestampUnit, error) {
	switch unit {
	case "s":
		return dbvalue.UnitSeconds, nil
	case "ms":
		return dbvalue.UnitMillis, nil
	case "us":
		return dbvalue.UnitMicros, nil
	case "ns":
		return dbvalue.UnitNanos, nil
	default:
		return 0, fmt.Errorf("runner: unknown timestamp unit %q", unit)
	}
}

func execCreateTable(c *Ctx, n *ast.CreateTable, writer SchemaWriter) error {
	if err := requireSuperuser(c, "create table"); err != nil {
		return err
	}
	if _, exists := c.DB.Table(n.Name); exists {
		return fmt.Errorf("runner: table %q already exists", n.Name)
	}
	columns := make([]dbvalue.Column, 0, len(n.Columns))
	for _, cd := range n.Columns {
		ct, err := columnTypeFromRef(cd.Type)
		if err != nil {
			return err
		}
		columns = append(columns, dbvalue.Column{
			Name:     cd.Name,
			Type:     ct,
			NotNull:  cd.NotNull,
			Unique:   cd.Unique,
			ReadOnly: cd.ReadOnly,
			Default:  cd.Default,
		})
	}

	// Schema replay re-declares a table whose data file already exists on
	// disk; open it instead of trying (and failing) to create it fresh.
	path := c.DB.TablePath(n.Name)
	var st *store.Table
	var err error
	if c.IsSchema {
		st, err = store.Open(path, n.Name, columns, store.Memory)
	} else {
		st, err = store.Create(path, n.Name, columns, store.Memory)
	}
	if err != nil {
		return err
	}
	if err := c.DB.AddTable(&Table{Table: st}); err != nil {
		return err
	}
	if writer != nil && !c.IsSchema {
		return writer.AppendSDL(stringify.Stmt(n))
	}
	return nil
}

func execCreatePolicy(c *Ctx, n *ast.CreateRlsPolicy, writer SchemaWriter) error {
	if err := requireSuperuser(c, "create policy"); err != nil {
		return err
	}
	t, ok := c.DB.Table(n.Table)
	if !ok {
		return fmt.Errorf("runner: unknown table %q", n.Table)
	}
	t.RlsEnabled = true
	t.Policies = append(t.Policies, auth.RlsPolicy{
		Name:      n.Policy.Name,
		Action:    n.Policy.Action,
		Condition: n.Policy.Condition,
	})
	if writer != nil && !c.IsSchema {
		return writer.AppendSDL(stringify.Stmt(n))
	}
	return nil
}

func execCreateDatabase(c *Ctx, n *ast.CreateDatabase) error {
	if err := requireSuperuser(c, "create database"); err != nil {
		return err
	}
	if c.Cluster == nil {
		return fmt.Errorf("runner: no cluster bound to this context")
	}
	return c.Cluster.CreateDatabase(n.Name)
}

func execCreateRole(c *Ctx, n *ast.CreateRole) error {
	if err := requireSuperuser(c, "create role"); err != nil {
		return err
	}
	if c.Cluster == nil {
		return fmt.Errorf("runner: no cluster bound to this context")
	}
	return c.Cluster.CreateRole(n.Name)
}

func execCreateUser(c *Ctx, n *ast.CreateUser) error {
	if err := requireSuperuser(c, "create user"); err != nil {
		return err
	}
	if c.Cluster == nil {
		return fmt.Errorf("runner: no cluster bound to this context")
	}
	hash, err := auth.HashPassword(n.Password)
	if err != nil {
		return err
	}
	return c.Cluster.CreateUser(n.Name, hash, n.IsSuperuser)
}

func execGrantRole(c *Ctx, n *ast.GrantRole) error {
	if err := requireSuperuser(c, "grant role"); err != nil {
		return err
	}
	if c.Cluster == nil {
		return fmt.Errorf("runner: no cluster bound to this context")
	}
	return c.Cluster.GrantRole(n.Role, n.To)
}

func execGrantAction(c *Ctx, n *ast.GrantAction) error {
	if err := requireSuperuser(c, "grant"); err != nil {
		return err
	}
	if c.Cluster == nil {
		return fmt.Errorf("runner: no cluster bound to this context")
	}
	return c.Cluster.GrantAction(n.Actions, n.ObjectKind, n.ObjectName, n.Column, n.To)
}
