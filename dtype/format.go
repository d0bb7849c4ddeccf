package dtype

import (
	"bytes"
	"math"
	"strconv"
	"strings"
)

// Format appends the printed form of s, interpreted as kind k, to dst.
// Integers print in decimal, floats in the interpreter's repr form and
// byte strings raw with trailing zero bytes stripped.
func (k ScalarKind) Format(dst []byte, s Scalar) []byte {
	switch k.kind {
	case KindI8, KindI16, KindI32, KindI64:
		return strconv.AppendInt(dst, int64(s.bits), 10)
	case KindU8, KindU16, KindU32, KindU64:
		return strconv.AppendUint(dst, s.bits, 10)
	case KindF32:
		return AppendFloat(dst, float64(math.Float32frombits(uint32(s.bits))), 32)
	case KindF64:
		return AppendFloat(dst, math.Float64frombits(s.bits), 64)
	case KindBytes:
		return append(dst, TrimZeros(s.raw)...)
	default:
		return dst
	}
}

// String returns the printed form of s.
func (s Scalar) String() string {
	return string(s.kind.Format(nil, s))
}

// TrimZeros strips trailing zero bytes. Interior zeros are kept.
func TrimZeros(b []byte) []byte {
	return bytes.TrimRight(b, "\x00")
}

// AppendFloat appends f in repr form: the shortest digits that round-trip at
// bitSize, positional with a ".0" suffix when the decimal exponent is in
// [-4, 16), scientific with a signed two-digit exponent otherwise.
func AppendFloat(dst []byte, f float64, bitSize int) []byte {
	switch {
	case math.IsNaN(f):
		return append(dst, "nan"...)
	case math.IsInf(f, 1):
		return append(dst, "inf"...)
	case math.IsInf(f, -1):
		return append(dst, "-inf"...)
	}

	sci := strconv.FormatFloat(f, 'e', -1, bitSize)
	mant, exp, _ := strings.Cut(sci, "e")
	e, _ := strconv.Atoi(exp)

	if e < -4 || e >= 16 {
		dst = append(dst, mant...)
		return append(append(dst, 'e'), exp...)
	}

	start := len(dst)
	dst = strconv.AppendFloat(dst, f, 'f', -1, bitSize)
	if bytes.IndexByte(dst[start:], '.') < 0 {
		dst = append(dst, ".0"...)
	}
	return dst
}
