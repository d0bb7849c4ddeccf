package dtype

import (
	"encoding/binary"
	"math"
)

// Scalar is one kind-tagged field value. Integer bits are held sign- or
// zero-extended to 64 bits, f32 holds its float32 bits, byte strings hold
// exactly Len() bytes.
type Scalar struct {
	raw  []byte
	bits uint64
	kind ScalarKind
}

// Int returns the integer kind k holding v wrapped to k's width.
func Int(k ScalarKind, v int64) Scalar {
	return Scalar{kind: k, bits: wrapBits(k, uint64(v))}
}

// Uint returns the integer kind k holding v wrapped to k's width.
func Uint(k ScalarKind, v uint64) Scalar {
	return Scalar{kind: k, bits: wrapBits(k, v)}
}

// Float returns the float kind k holding v, rounded to float32 for f32.
func Float(k ScalarKind, v float64) Scalar {
	if k.kind == KindF32 {
		return Scalar{kind: k, bits: uint64(math.Float32bits(float32(v)))}
	}
	return Scalar{kind: Float64, bits: math.Float64bits(v)}
}

// ByteString returns a byte string of kind k. b is zero padded or cut to k's length.
func ByteString(k ScalarKind, b []byte) Scalar {
	raw := make([]byte, k.Len())
	copy(raw, b)
	return Scalar{kind: k, raw: raw}
}

func (s Scalar) Kind() ScalarKind {
	return s.kind
}

// Bits returns the raw 64-bit cell contents.
func (s Scalar) Bits() uint64 {
	return s.bits
}

// Int64 returns the value as a signed integer, truncating floats.
func (s Scalar) Int64() int64 {
	switch s.kind.kind {
	case KindF32:
		return int64(math.Float32frombits(uint32(s.bits)))
	case KindF64:
		return int64(math.Float64frombits(s.bits))
	default:
		return int64(s.bits)
	}
}

// Uint64 returns the raw cell reinterpreted as unsigned.
func (s Scalar) Uint64() uint64 {
	return s.bits
}

// Float64 returns the value as a float64, honoring the kind's signedness.
func (s Scalar) Float64() float64 {
	switch s.kind.kind {
	case KindF32:
		return float64(math.Float32frombits(uint32(s.bits)))
	case KindF64:
		return math.Float64frombits(s.bits)
	case KindU64:
		return float64(s.bits)
	default:
		return float64(int64(s.bits))
	}
}

// Bytes returns a copy of the byte string contents, trailing zeros included.
func (s Scalar) Bytes() []byte {
	out := make([]byte, len(s.raw))
	copy(out, s.raw)
	return out
}

// Load reads a value of kind k from the first k.Size() bytes of mem.
// The access width is exactly the kind size.
func Load(k ScalarKind, mem []byte) Scalar {
	switch k.kind {
	case KindI8:
		return Scalar{kind: k, bits: uint64(int64(int8(mem[0])))}
	case KindU8:
		return Scalar{kind: k, bits: uint64(mem[0])}
	case KindI16:
		return Scalar{kind: k, bits: uint64(int64(int16(binary.LittleEndian.Uint16(mem))))}
	case KindU16:
		return Scalar{kind: k, bits: uint64(binary.LittleEndian.Uint16(mem))}
	case KindI32:
		return Scalar{kind: k, bits: uint64(int64(int32(binary.LittleEndian.Uint32(mem))))}
	case KindU32, KindF32:
		return Scalar{kind: k, bits: uint64(binary.LittleEndian.Uint32(mem))}
	case KindI64, KindU64, KindF64:
		return Scalar{kind: k, bits: binary.LittleEndian.Uint64(mem)}
	case KindBytes:
		raw := make([]byte, k.length)
		copy(raw, mem[:k.length])
		return Scalar{kind: k, raw: raw}
	default:
		return Scalar{kind: k}
	}
}

// Store writes s into the first s.Kind().Size() bytes of mem.
func (s Scalar) Store(mem []byte) {
	switch s.kind.kind {
	case KindI8, KindU8:
		mem[0] = byte(s.bits)
	case KindI16, KindU16:
		binary.LittleEndian.PutUint16(mem, uint16(s.bits))
	case KindI32, KindU32, KindF32:
		binary.LittleEndian.PutUint32(mem, uint32(s.bits))
	case KindI64, KindU64, KindF64:
		binary.LittleEndian.PutUint64(mem, s.bits)
	case KindBytes:
		copy(mem[:s.kind.length], s.raw)
	}
}

// Promote widens s to its arithmetic kind. The result is exact.
func (s Scalar) Promote() Scalar {
	p := s.kind.Promoted()
	switch s.kind.kind {
	case KindF32:
		return Scalar{kind: p, bits: math.Float64bits(float64(math.Float32frombits(uint32(s.bits))))}
	default:
		return Scalar{kind: p, bits: s.bits, raw: s.raw}
	}
}

// Convert stores the promoted value of s into kind to. Narrowing integers
// wrap, float to integer truncates toward zero and saturates (NaN becomes 0),
// integer to float rounds to nearest even, f64 to f32 rounds to nearest even.
// Byte strings convert only to byte strings of equal length; ok is false otherwise.
func (s Scalar) Convert(to ScalarKind) (out Scalar, ok bool) {
	src := s.Promote()
	switch {
	case to.IsBytes() || src.kind.IsBytes():
		if !to.IsBytes() || !src.kind.IsBytes() || to.length != src.kind.length {
			return Scalar{}, false
		}
		return ByteString(to, src.raw), true
	case to.IsInteger():
		if src.kind.IsFloat() {
			f := math.Float64frombits(src.bits)
			if to.kind == KindU64 {
				return Uint(to, truncSatU64(f)), true
			}
			return Int(to, truncSatI64(f)), true
		}
		return Uint(to, src.bits), true
	case to.IsFloat():
		var f float64
		switch src.kind.kind {
		case KindF64:
			f = math.Float64frombits(src.bits)
		case KindU64:
			f = float64(src.bits)
		default:
			f = float64(int64(src.bits))
		}
		return Float(to, f), true
	default:
		return Scalar{}, false
	}
}

func wrapBits(k ScalarKind, v uint64) uint64 {
	switch k.kind {
	case KindI8:
		return uint64(int64(int8(v)))
	case KindU8:
		return uint64(uint8(v))
	case KindI16:
		return uint64(int64(int16(v)))
	case KindU16:
		return uint64(uint16(v))
	case KindI32:
		return uint64(int64(int32(v)))
	case KindU32:
		return uint64(uint32(v))
	default:
		return v
	}
}

// truncSatI64 matches i64.trunc_sat_f64_s.
func truncSatI64(f float64) int64 {
	switch {
	case f != f:
		return 0
	case f >= 9223372036854775808.0:
		return math.MaxInt64
	case f < -9223372036854775808.0:
		return math.MinInt64
	default:
		return int64(f)
	}
}

// truncSatU64 matches i64.trunc_sat_f64_u.
func truncSatU64(f float64) uint64 {
	switch {
	case f != f || f <= -1:
		return 0
	case f >= 18446744073709551616.0:
		return math.MaxUint64
	case f < 0:
		return 0
	default:
		return uint64(f)
	}
}
