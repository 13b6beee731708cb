package ast

// ColumnTypeRef is the parsed form of a column type declaration
// (u8..u64, i8..i64, f32, f64, char, fixed(n), time(unit), bool, …) — kept
// as syntax here rather than dbvalue.ColumnType so that this package has no
// dependency on the value/storage layer; the SDL evaluator is responsible
// for translating a ColumnTypeRef into a dbvalue.ColumnType.
type ColumnTypeRef struct {
	Name          string // "u8", "i64", "f32", "char", "fixed", "time", "bool", "binary", "uuid"
	FixedLen      int    // set when Name == "fixed"
	TimestampUnit string // set when Name == "time": "s", "ms", "us", "ns"
}

// ColumnDef is one column declaration inside `create table`.
type ColumnDef struct {
	Name     string
	Type     ColumnTypeRef
	NotNull  bool
	Unique   bool
	ReadOnly bool
	Default  Node // nil when absent
}

// RlsPolicyDef is the body of a `create policy` statement.
type RlsPolicyDef struct {
	Name      string
	Action    string // "select", "insert", "update", "delete", "all"
	Condition Node
}

type CreateDatabase struct {
	Span
	Name string
}

type CreateTable struct {
	Span
	Name    string
	Columns []ColumnDef
}

type CreateRlsPolicy struct {
	Span
	Table  string
	Policy RlsPolicyDef
}

type CreateRole struct {
	Span
	Name string
}

type CreateUser struct {
	Span
	Name        string
	Password    string
	IsSuperuser bool
}

// GrantRole is `grant role <name> for <to>`.
type GrantRole struct {
	Span
	Role string
	To   string
}

// GrantAction is `grant <actions...> <objectKind> <objectName> for <to>`.
type GrantAction struct {
	Span
	Actions    []string
	ObjectKind string // "database", "table", "column", "function"
	ObjectName string
	Column     string // set when ObjectKind == "column"
	To         string
}

// Drop is declared in the grammar but left unevaluated by the runner per
// the reference implementation's own open question; the parser still
// produces it so schema files containing one round-trip through stringify.
type Drop struct {
	Span
	Kind string // "database", "table", "policy", "role", "user"
	Name string
}
