// Package dbvalue implements the engine's typed scalar value system: the
// tagged-union Value, the on-disk ColumnType descriptors, and the
// column-level coercion rules that sit between them.
package dbvalue

import (
	"fmt"

	"github.com/google/uuid"
)

// Kind identifies which variant of Value is populated.
type Kind int

const (
	KindText Kind = iota
	KindNumeric
	KindTimestamp
	KindBoolean
	KindBinary
	KindArray
	KindEnum
	KindUUID
	KindNull
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumeric:
		return "numeric"
	case KindTimestamp:
		return "timestamp"
	case KindBoolean:
		return "boolean"
	case KindBinary:
		return "binary"
	case KindArray:
		return "array"
	case KindEnum:
		return "enum"
	case KindUUID:
		return "uuid"
	case KindNull:
		return "null"
	default:
		return "unknown"
	}
}

// NumericWidth enumerates the ten concrete numeric representations the
// engine supports.
type NumericWidth int

const (
	NumU8 NumericWidth = iota
	NumU16
	NumU32
	NumU64
	NumI8
	NumI16
	NumI32
	NumI64
	NumF32
	NumF64
)

// ByteLen returns the fixed storage width, in bytes, of a numeric variant.
func (w NumericWidth) ByteLen() int {
	switch w {
	case NumU8, NumI8:
		return 1
	case NumU16, NumI16:
		return 2
	case NumU32, NumI32, NumF32:
		return 4
	case NumU64, NumI64, NumF64:
		return 8
	default:
		return 0
	}
}

// IsFloat reports whether the width is one of the two float variants.
func (w NumericWidth) IsFloat() bool { return w == NumF32 || w == NumF64 }

// IsSigned reports whether the width is one of the four signed integer variants.
func (w NumericWidth) IsSigned() bool {
	switch w {
	case NumI8, NumI16, NumI32, NumI64:
		return true
	default:
		return false
	}
}

// IsUnsigned reports whether the width is one of the four unsigned integer variants.
func (w NumericWidth) IsUnsigned() bool {
	switch w {
	case NumU8, NumU16, NumU32, NumU64:
		return true
	default:
		return false
	}
}

// TimestampUnit identifies the granularity a Timestamp's u64 counts in.
type TimestampUnit int

const (
	UnitSeconds TimestampUnit = iota
	UnitMillis
	UnitMicros
	UnitNanos
)

// perSecond returns how many of this unit fit in one second, used to convert
// between units via multiplication (widening) or division (narrowing).
func (u TimestampUnit) perSecond() uint64 {
	switch u {
	case UnitSeconds:
		return 1
	case UnitMillis:
		return 1_000
	case UnitMicros:
		return 1_000_000
	case UnitNanos:
		return 1_000_000_000
	default:
		return 1
	}
}

// Numeric holds a numeric Value's width tag plus its value, stored widened
// into the two host representations (int64/uint64/float64 as appropriate)
// without losing the original width — the width decides how the value is
// later serialised and re-coerced, not how it is held in memory.
type Numeric struct {
	Width NumericWidth
	I     int64
	U     uint64
	F     float64
}

// AsF64 promotes the numeric to float64, the engine's universal comparison
// and equality domain (§3 of the data model).
func (n Numeric) AsF64() float64 {
	switch {
	case n.Width.IsFloat():
		return n.F
	case n.Width.IsSigned():
		return float64(n.I)
	default:
		return float64(n.U)
	}
}

// Timestamp holds a timestamp Value's raw counter and its unit.
type Timestamp struct {
	Unit  TimestampUnit
	Value uint64
}

// Value is the tagged union every expression in the DSL evaluates to, and
// every stored row cell holds. Exactly one of the typed fields below is
// meaningful, selected by Kind.
type Value struct {
	Kind Kind

	Text      string
	Numeric   Numeric
	Timestamp Timestamp
	Boolean   bool
	Binary    []byte
	Array     []Value
	Enum      string
	UUID      uuid.UUID
}

// Null is the first-class absence-of-value Value; it is a real value, not
// an optional wrapper, and participates in equality/ordering like any other.
var Null = Value{Kind: KindNull}

func NewText(s string) Value  { return Value{Kind: KindText, Text: s} }
func NewBoolean(b bool) Value { return Value{Kind: KindBoolean, Boolean: b} }
func NewBinary(b []byte) Value {
	cp := make([]byte, len(b))
	copy(cp, b)
	return Value{Kind: KindBinary, Binary: cp}
}
func NewArray(vs []Value) Value { return Value{Kind: KindArray, Array: vs} }
func NewEnum(name string) Value { return Value{Kind: KindEnum, Enum: name} }
func NewUUID(id uuid.UUID) Value { return Value{Kind: KindUUID, UUID: id} }

func NewInt(w NumericWidth, v int64) Value {
	return Value{Kind: KindNumeric, Numeric: Numeric{Width: w, I: v}}
}

func NewUint(w NumericWidth, v uint64) Value {
	return Value{Kind: KindNumeric, Numeric: Numeric{Width: w, U: v}}
}

func NewFloat(w NumericWidth, v float64) Value {
	return Value{Kind: KindNumeric, Numeric: Numeric{Width: w, F: v}}
}

func NewTimestamp(unit TimestampUnit, v uint64) Value {
	return Value{Kind: KindTimestamp, Timestamp: Timestamp{Unit: unit, Value: v}}
}

// IsNull reports whether v is the Null value.
func (v Value) IsNull() bool { return v.Kind == KindNull }

// String renders v for diagnostics, logging, and the print/println builtins.
func (v Value) String() string {
	switch v.Kind {
	case KindText:
		return v.Text
	case KindNumeric:
		if v.Numeric.Width.IsFloat() {
			return fmt.Sprintf("%v", v.Numeric.F)
		}
		if v.Numeric.Width.IsSigned() {
			return fmt.Sprintf("%d", v.Numeric.I)
		}
		return fmt.Sprintf("%d", v.Numeric.U)
	case KindTimestamp:
		return fmt.Sprintf("%d", v.Timestamp.Value)
	case KindBoolean:
		return fmt.Sprintf("%v", v.Boolean)
	case KindBinary:
		return fmt.Sprintf("%x", v.Binary)
	case KindArray:
		out := "["
		for i, e := range v.Array {
			if i > 0 {
				out += ", "
			}
			out += e.String()
		}
		return out + "]"
	case KindEnum:
		return v.Enum
	case KindUUID:
		return v.UUID.String()
	case KindNull:
		return "null"
	default:
		return "<invalid>"
	}
}

// Equal implements the cross-kind equality rule: numeric kinds compare by
// f64 promotion, everything else compares structurally. Null equals only Null.
func (v Value) Equal(other Value) bool {
	if v.Kind == KindNumeric && other.Kind == KindNumeric {
		return v.Numeric.AsF64() == other.Numeric.AsF64()
	}
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case KindText:
		return v.Text == other.Text
	case KindTimestamp:
		return v.Timestamp.Value == other.Timestamp.Value && v.Timestamp.Unit == other.Timestamp.Unit
	case KindBoolean:
		return v.Boolean == other.Boolean
	case KindBinary:
		if len(v.Binary) != len(other.Binary) {
			return false
		}
		for i := range v.Binary {
			if v.Binary[i] != other.Binary[i] {
				return false
			}
		}
		return true
	case KindArray:
		if len(v.Array) != len(other.Array) {
			return false
		}
		for i := range v.Array {
			if !v.Array[i].Equal(other.Array[i]) {
				return false
			}
		}
		return true
	case KindEnum:
		return v.Enum == other.Enum
	case KindUUID:
		return v.UUID == other.UUID
	case KindNull:
		return true
	default:
		return false
	}
}

// Compare imposes the engine's total order: numeric and timestamp values
// compare by their natural order (f64 promotion for numerics), text and enum
// compare lexicographically, boolean false < true, and any pair the engine
// has no intrinsic order for (including cross-kind pairs) is treated as
// Equal rather than raising an error, per the data model's total-order
// invariant (§3).
func (v Value) Compare(other Value) int {
	if v.Kind == KindNumeric && other.Kind == KindNumeric {
		return compareF64(v.Numeric.AsF64(), other.Numeric.AsF64())
	}
	if v.Kind != other.Kind {
		return 0
	}
	switch v.Kind {
	case KindText:
		return compareStrings(v.Text, other.Text)
	case KindEnum:
		return compareStrings(v.Enum, other.Enum)
	case KindTimestamp:
		return compareF64(float64(v.Timestamp.Value), float64(other.Timestamp.Value))
	case KindBoolean:
		if v.Boolean == other.Boolean {
			return 0
		}
		if !v.Boolean {
			return -1
		}
		return 1
	default:
		return 0
	}
}

func compareF64(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Between reports whether v falls within [lo, hi] inclusive. Defined for
// Numeric (f64-promoted) and Timestamp (raw counter, same unit); any other
// kind is a type error since the DSL's `between` semantics are not otherwise
// specified by the grammar.
func (v Value) Between(lo, hi Value) (bool, error) {
	switch v.Kind {
	case KindNumeric:
		if lo.Kind != KindNumeric || hi.Kind != KindNumeric {
			return false, fmt.Errorf("between: bounds must be numeric, got %s/%s", lo.Kind, hi.Kind)
		}
		f := v.Numeric.AsF64()
		return f >= lo.Numeric.AsF64() && f <= hi.Numeric.AsF64(), nil
	case KindTimestamp:
		if lo.Kind != KindTimestamp || hi.Kind != KindTimestamp {
			return false, fmt.Errorf("between: bounds must be timestamp, got %s/%s", lo.Kind, hi.Kind)
		}
		return v.Timestamp.Value >= lo.Timestamp.Value && v.Timestamp.Value <= hi.Timestamp.Value, nil
	default:
		return false, fmt.Errorf("between: unsupported value kind %s", v.Kind)
	}
}
