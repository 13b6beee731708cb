package dbvalue

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
)

// FromBytes is the inverse of ToBytes: it decodes exactly len(raw) bytes
// under the given column type. For a Text column, a field consisting
// entirely of nullSentinel bytes decodes to Null; this is a temporary
// scheme that only works for Text, since every other kind has real values
// whose own encoding is all-sentinel bytes (e.g. NewUint(NumU8, 255)).
func FromBytes(raw []byte, t ColumnType) (Value, error) {
	if t.Kind == KindText && allSentinel(raw) {
		return Null, nil
	}

	switch t.Kind {
	case KindNumeric:
		return numericFromBytes(raw, t.NumericWidth)
	case KindTimestamp:
		if len(raw) != 8 {
			return Value{}, fmt.Errorf("from_bytes: timestamp requires 8 bytes, got %d", len(raw))
		}
		return NewTimestamp(t.TimestampUnit, binary.BigEndian.Uint64(raw)), nil
	case KindBoolean:
		if len(raw) != 1 {
			return Value{}, fmt.Errorf("from_bytes: boolean requires 1 byte, got %d", len(raw))
		}
		return NewBoolean(raw[0] != 0), nil
	case KindBinary:
		return NewBinary(raw), nil
	case KindUUID:
		id, err := uuid.FromBytes(raw)
		if err != nil {
			return Value{}, fmt.Errorf("from_bytes: %w", err)
		}
		return NewUUID(id), nil
	case KindText:
		return textFromBytes(raw, t)
	default:
		return Value{}, fmt.Errorf("from_bytes: column type %s is not storable", t.Kind)
	}
}

func allSentinel(raw []byte) bool {
	if len(raw) == 0 {
		return false
	}
	for _, b := range raw {
		if b != nullSentinel {
			return false
		}
	}
	return true
}

func textFromBytes(raw []byte, t ColumnType) (Value, error) {
	switch t.TextKind {
	case TextChar:
		if len(raw) != 1 {
			return Value{}, fmt.Errorf("from_bytes: char requires 1 byte, got %d", len(raw))
		}
		return NewText(string(raw)), nil
	case TextFixed:
		return NewText(strings.TrimRight(string(raw), "\x00")), nil
	case TextVariable:
		return Value{}, fmt.Errorf("from_bytes: variable-length text is not implemented")
	default:
		return Value{}, fmt.Errorf("from_bytes: unknown text kind %v", t.TextKind)
	}
}

func numericFromBytes(raw []byte, w NumericWidth) (Value, error) {
	switch w {
	case NumU8:
		if len(raw) != 1 {
			return Value{}, fmt.Errorf("from_bytes: u8 requires 1 byte, got %d", len(raw))
		}
		return NewUint(w, uint64(raw[0])), nil
	case NumU16:
		if len(raw) != 2 {
			return Value{}, fmt.Errorf("from_bytes: u16 requires 2 bytes, got %d", len(raw))
		}
		return NewUint(w, uint64(binary.BigEndian.Uint16(raw))), nil
	case NumU32:
		if len(raw) != 4 {
			return Value{}, fmt.Errorf("from_bytes: u32 requires 4 bytes, got %d", len(raw))
		}
		return NewUint(w, uint64(binary.BigEndian.Uint32(raw))), nil
	case NumU64:
		if len(raw) != 8 {
			return Value{}, fmt.Errorf("from_bytes: u64 requires 8 bytes, got %d", len(raw))
		}
		return NewUint(w, binary.BigEndian.Uint64(raw)), nil
	case NumI8:
		if len(raw) != 1 {
			return Value{}, fmt.Errorf("from_bytes: i8 requires 1 byte, got %d", len(raw))
		}
		return NewInt(w, int64(int8(raw[0]))), nil
	case NumI16:
		if len(raw) != 2 {
			return Value{}, fmt.Errorf("from_bytes: i16 requires 2 bytes, got %d", len(raw))
		}
		return NewInt(w, int64(int16(binary.BigEndian.Uint16(raw)))), nil
	case NumI32:
		if len(raw) != 4 {
			return Value{}, fmt.Errorf("from_bytes: i32 requires 4 bytes, got %d", len(raw))
		}
		return NewInt(w, int64(int32(binary.BigEndian.Uint32(raw)))), nil
	case NumI64:
		if len(raw) != 8 {
			return Value{}, fmt.Errorf("from_bytes: i64 requires 8 bytes, got %d", len(raw))
		}
		return NewInt(w, int64(binary.BigEndian.Uint64(raw))), nil
	case NumF32:
		if len(raw) != 4 {
			return Value{}, fmt.Errorf("from_bytes: f32 requires 4 bytes, got %d", len(raw))
		}
		return NewFloat(w, float64(math.Float32frombits(binary.BigEndian.Uint32(raw)))), nil
	case NumF64:
		if len(raw) != 8 {
			return Value{}, fmt.Errorf("from_bytes: f64 requires 8 bytes, got %d", len(raw))
		}
		return NewFloat(w, math.Float64frombits(binary.BigEndian.Uint64(raw))), nil
	default:
		return Value{}, fmt.Errorf("from_bytes: unknown numeric width %v", w)
	}
}
