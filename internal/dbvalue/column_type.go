package dbvalue

import "fmt"

// TextKind distinguishes the three storage strategies the spec allows for
// Text columns. Variable is declared but not implemented (§9 Open Questions).
type TextKind int

const (
	TextChar TextKind = iota
	TextFixed
	TextVariable
)

// ColumnType mirrors Value's Kind set but describes how a column stores its
// values on disk: a variant tag plus enough parameters to compute a fixed
// byte width.
type ColumnType struct {
	Kind Kind

	NumericWidth  NumericWidth
	TimestampUnit TimestampUnit
	TextKind      TextKind
	FixedLen      int // meaningful when TextKind == TextFixed
	Array         *ColumnType
}

func NumericType(w NumericWidth) ColumnType   { return ColumnType{Kind: KindNumeric, NumericWidth: w} }
func TimestampType(u TimestampUnit) ColumnType { return ColumnType{Kind: KindTimestamp, TimestampUnit: u} }
func BooleanType() ColumnType                 { return ColumnType{Kind: KindBoolean} }
func BinaryType() ColumnType                  { return ColumnType{Kind: KindBinary} }
func UUIDType() ColumnType                    { return ColumnType{Kind: KindUUID} }
func EnumType() ColumnType                    { return ColumnType{Kind: KindEnum} }
func CharType() ColumnType                    { return ColumnType{Kind: KindText, TextKind: TextChar} }
func FixedTextType(n int) ColumnType {
	return ColumnType{Kind: KindText, TextKind: TextFixed, FixedLen: n}
}
func VariableTextType() ColumnType { return ColumnType{Kind: KindText, TextKind: TextVariable} }

// uuidByteLen is the fixed 16-byte binary width of a UUID value.
const uuidByteLen = 16

// Len returns the fixed-width byte length this column type occupies in a
// row record, or an error if the width is not yet storable (Binary, Array,
// Enum, and Variable text have no fixed width here; §4.1).
func (t ColumnType) Len() (int, error) {
	switch t.Kind {
	case KindNumeric:
		n := t.NumericWidth.ByteLen()
		if n == 0 {
			return 0, fmt.Errorf("column type: unknown numeric width %v", t.NumericWidth)
		}
		return n, nil
	case KindTimestamp:
		return 8, nil
	case KindBoolean:
		return 1, nil
	case KindBinary:
		return 0, fmt.Errorf("column type: binary has no static length; not storable yet")
	case KindUUID:
		return uuidByteLen, nil
	case KindText:
		switch t.TextKind {
		case TextChar:
			return 1, nil
		case TextFixed:
			if t.FixedLen <= 0 {
				return 0, fmt.Errorf("column type: fixed text requires a positive length")
			}
			return t.FixedLen, nil
		case TextVariable:
			return 0, fmt.Errorf("column type: variable-length text is not implemented (reserved)")
		default:
			return 0, fmt.Errorf("column type: unknown text kind %v", t.TextKind)
		}
	case KindArray:
		return 0, fmt.Errorf("column type: array columns are reserved, not storable yet")
	case KindEnum:
		return 0, fmt.Errorf("column type: enum columns are reserved, not storable yet")
	default:
		return 0, fmt.Errorf("column type: kind %s has no storage width", t.Kind)
	}
}

func (t ColumnType) String() string {
	switch t.Kind {
	case KindNumeric:
		return fmt.Sprintf("numeric(%d)", t.NumericWidth)
	case KindTimestamp:
		return fmt.Sprintf("timestamp(unit=%d)", t.TimestampUnit)
	case KindText:
		switch t.TextKind {
		case TextChar:
			return "char"
		case TextFixed:
			return fmt.Sprintf("fixed(%d)", t.FixedLen)
		case TextVariable:
			return "variable"
		}
		return "text"
	default:
		return t.Kind.String()
	}
}
