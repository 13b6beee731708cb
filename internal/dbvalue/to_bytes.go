package dbvalue

import (
	"encoding/binary"
	"fmt"
	"math"
)

// nullSentinel is the reserved byte used to fill a field's entire width when
// storing Null. 0xFF never occurs as a trailing pad byte of a right-padded
// Fixed/Char text field (those pad with 0x00), so a field of all 0xFF bytes
// is unambiguously Null on decode.
const nullSentinel = 0xFF

// ToBytes serialises v into exactly width bytes for storage under the given
// column type. Numerics and timestamps are big-endian; text is UTF-8,
// right-padded with 0x00 up to width; boolean is one byte (0 or 1); binary
// is copied raw (must already be exactly width bytes); Null serialises as
// width bytes of nullSentinel regardless of the target type. FromBytes only
// recognises that sentinel as Null for Text columns (see its doc comment);
// a Null written for any other column type round-trips as bytes, not as a
// decoded Null, until a less ambiguous NULL representation replaces this.
func ToBytes(v Value, t ColumnType, width int) ([]byte, error) {
	if v.IsNull() {
		buf := make([]byte, width)
		for i := range buf {
			buf[i] = nullSentinel
		}
		return buf, nil
	}

	switch t.Kind {
	case KindNumeric:
		return numericToBytes(v, t.NumericWidth, width)
	case KindTimestamp:
		if v.Kind != KindTimestamp {
			return nil, fmt.Errorf("to_bytes: expected timestamp value, got %s", v.Kind)
		}
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, v.Timestamp.Value)
		return buf, nil
	case KindBoolean:
		if v.Kind != KindBoolean {
			return nil, fmt.Errorf("to_bytes: expected boolean value, got %s", v.Kind)
		}
		if v.Boolean {
			return []byte{1}, nil
		}
		return []byte{0}, nil
	case KindBinary:
		if v.Kind != KindBinary {
			return nil, fmt.Errorf("to_bytes: expected binary value, got %s", v.Kind)
		}
		if len(v.Binary) != width {
			return nil, fmt.Errorf("to_bytes: binary value length %d does not match column width %d", len(v.Binary), width)
		}
		out := make([]byte, width)
		copy(out, v.Binary)
		return out, nil
	case KindUUID:
		if v.Kind != KindUUID {
			return nil, fmt.Errorf("to_bytes: expected uuid value, got %s", v.Kind)
		}
		raw, err := v.UUID.MarshalBinary()
		if err != nil {
			return nil, fmt.Errorf("to_bytes: %w", err)
		}
		return raw, nil
	case KindText:
		if v.Kind != KindText {
			return nil, fmt.Errorf("to_bytes: expected text value, got %s", v.Kind)
		}
		return textToBytes(v.Text, t, width)
	default:
		return nil, fmt.Errorf("to_bytes: column type %s is not storable", t.Kind)
	}
}

func textToBytes(s string, t ColumnType, width int) ([]byte, error) {
	raw := []byte(s)
	switch t.TextKind {
	case TextChar:
		if len(raw) != 1 {
			return nil, fmt.Errorf("to_bytes: char column requires exactly 1 byte, got %d", len(raw))
		}
	case TextFixed:
		if len(raw) > width {
			return nil, fmt.Errorf("to_bytes: text %q exceeds fixed(%d) column width", s, width)
		}
	case TextVariable:
		return nil, fmt.Errorf("to_bytes: variable-length text is not implemented")
	default:
		return nil, fmt.Errorf("to_bytes: unknown text kind %v", t.TextKind)
	}
	out := make([]byte, width)
	copy(out, raw)
	return out, nil
}

func numericToBytes(v Value, w NumericWidth, width int) ([]byte, error) {
	if v.Kind != KindNumeric {
		return nil, fmt.Errorf("to_bytes: expected numeric value, got %s", v.Kind)
	}
	buf := make([]byte, width)
	n := v.Numeric
	switch w {
	case NumU8:
		buf[0] = byte(n.U)
	case NumU16:
		binary.BigEndian.PutUint16(buf, uint16(n.U))
	case NumU32:
		binary.BigEndian.PutUint32(buf, uint32(n.U))
	case NumU64:
		binary.BigEndian.PutUint64(buf, n.U)
	case NumI8:
		buf[0] = byte(n.I)
	case NumI16:
		binary.BigEndian.PutUint16(buf, uint16(int16(n.I)))
	case NumI32:
		binary.BigEndian.PutUint32(buf, uint32(int32(n.I)))
	case NumI64:
		binary.BigEndian.PutUint64(buf, uint64(n.I))
	case NumF32:
		binary.BigEndian.PutUint32(buf, math.Float32bits(float32(n.F)))
	case NumF64:
		binary.BigEndian.PutUint64(buf, math.Float64bits(n.F))
	default:
		return nil, fmt.Errorf("to_bytes: unknown numeric width %v", w)
	}
	return buf, nil
}
