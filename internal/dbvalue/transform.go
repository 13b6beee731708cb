package dbvalue

import "fmt"

// Transform coerces v into the representation c's type demands, applying
// the engine's numeric widening/narrowing rules, Timestamp unit conversion,
// text length checks, and the not_null rule (§4.1). The returned Value is
// ready to hand to ToBytes with c.Type.
func (c Column) Transform(v Value) (Value, error) {
	if v.IsNull() {
		if c.NotNull {
			return Value{}, fmt.Errorf("column %q: null value not permitted (not_null)", c.Name)
		}
		return Null, nil
	}

	switch c.Type.Kind {
	case KindNumeric:
		return transformNumeric(c, v)
	case KindTimestamp:
		return transformTimestamp(c, v)
	case KindText:
		return transformText(c, v)
	case KindBoolean:
		if v.Kind != KindBoolean {
			return Value{}, fmt.Errorf("column %q: expected boolean, got %s", c.Name, v.Kind)
		}
		return v, nil
	case KindBinary:
		if v.Kind != KindBinary {
			return Value{}, fmt.Errorf("column %q: expected binary, got %s", c.Name, v.Kind)
		}
		return v, nil
	case KindUUID:
		if v.Kind != KindUUID {
			return Value{}, fmt.Errorf("column %q: expected uuid, got %s", c.Name, v.Kind)
		}
		return v, nil
	default:
		return Value{}, fmt.Errorf("column %q: type %s is not a storable column type", c.Name, c.Type.Kind)
	}
}

// transformNumeric coerces a numeric Value into the column's declared
// width. The value-based range check subsumes the width-based
// widening/narrowing distinction from the spec: a value that fits the
// target's range always succeeds (which is exactly every widening
// conversion), and a narrowing conversion is rejected only when the
// concrete value would actually lose range.
func transformNumeric(c Column, v Value) (Value, error) {
	if v.Kind != KindNumeric {
		return Value{}, fmt.Errorf("column %q: expected numeric, got %s", c.Name, v.Kind)
	}
	dst := c.Type.NumericWidth
	src := v.Numeric

	if dst.IsFloat() {
		return NewFloat(dst, src.AsF64()), nil
	}

	if src.Width.IsFloat() {
		f := src.F
		if f != float64(int64(f)) && f != float64(uint64(f)) {
			return Value{}, fmt.Errorf("column %q: float value %v has no exact integer representation for %s", c.Name, f, dst)
		}
	}

	if dst.IsUnsigned() {
		var u uint64
		switch {
		case src.Width.IsFloat():
			if src.F < 0 {
				return Value{}, overflowErr(c, src, dst)
			}
			u = uint64(src.F)
		case src.Width.IsSigned():
			if src.I < 0 {
				return Value{}, overflowErr(c, src, dst)
			}
			u = uint64(src.I)
		default:
			u = src.U
		}
		if !fitsUnsigned(u, dst) {
			return Value{}, overflowErr(c, src, dst)
		}
		return NewUint(dst, u), nil
	}

	// dst is signed
	var i int64
	switch {
	case src.Width.IsFloat():
		i = int64(src.F)
	case src.Width.IsSigned():
		i = src.I
	default:
		if src.U > (1<<63 - 1) {
			return Value{}, overflowErr(c, src, dst)
		}
		i = int64(src.U)
	}
	if !fitsSigned(i, dst) {
		return Value{}, overflowErr(c, src, dst)
	}
	return NewInt(dst, i), nil
}

func fitsUnsigned(u uint64, w NumericWidth) bool {
	switch w {
	case NumU8:
		return u <= 0xFF
	case NumU16:
		return u <= 0xFFFF
	case NumU32:
		return u <= 0xFFFFFFFF
	case NumU64:
		return true
	default:
		return false
	}
}

func fitsSigned(i int64, w NumericWidth) bool {
	switch w {
	case NumI8:
		return i >= -128 && i <= 127
	case NumI16:
		return i >= -32768 && i <= 32767
	case NumI32:
		return i >= -2147483648 && i <= 2147483647
	case NumI64:
		return true
	default:
		return false
	}
}

func overflowErr(c Column, src Numeric, dst NumericWidth) error {
	return fmt.Errorf("column %q: numeric overflow converting %s to %s", c.Name, src.Width, dst)
}

// transformTimestamp converts between timestamp units: multiplying
// (checked for overflow) to move to a finer unit, dividing (unchecked,
// lossy) to move to a coarser one.
func transformTimestamp(c Column, v Value) (Value, error) {
	if v.Kind != KindTimestamp {
		return Value{}, fmt.Errorf("column %q: expected timestamp, got %s", c.Name, v.Kind)
	}
	src := v.Timestamp
	dstUnit := c.Type.TimestampUnit
	if src.Unit == dstUnit {
		return v, nil
	}

	srcPerSec := src.Unit.perSecond()
	dstPerSec := dstUnit.perSecond()

	if dstPerSec > srcPerSec {
		ratio := dstPerSec / srcPerSec
		out := src.Value * ratio
		if ratio != 0 && out/ratio != src.Value {
			return Value{}, fmt.Errorf("column %q: timestamp overflow converting unit", c.Name)
		}
		return NewTimestamp(dstUnit, out), nil
	}

	ratio := srcPerSec / dstPerSec
	return NewTimestamp(dstUnit, src.Value/ratio), nil
}

func transformText(c Column, v Value) (Value, error) {
	if v.Kind != KindText {
		return Value{}, fmt.Errorf("column %q: expected text, got %s", c.Name, v.Kind)
	}
	switch c.Type.TextKind {
	case TextChar:
		if len(v.Text) != 1 {
			return Value{}, fmt.Errorf("column %q: char requires exactly 1 byte, got %d", c.Name, len(v.Text))
		}
	case TextFixed:
		if len(v.Text) > c.Type.FixedLen {
			return Value{}, fmt.Errorf("column %q: text %q exceeds fixed(%d)", c.Name, v.Text, c.Type.FixedLen)
		}
	case TextVariable:
		return Value{}, fmt.Errorf("column %q: variable-length text is not implemented", c.Name)
	default:
		return Value{}, fmt.Errorf("column %q: unknown text kind", c.Name)
	}
	return v, nil
}
