package dtype

import (
	"strconv"
	"strings"

	"github.com/wippyai/recjit/errors"
)

// Kind identifies a scalar element kind.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindI8
	KindI16
	KindI32
	KindI64
	KindU8
	KindU16
	KindU32
	KindU64
	KindF32
	KindF64
	KindBytes
)

var kindNames = [...]string{
	KindInvalid: "invalid",
	KindI8:      "i8",
	KindI16:     "i16",
	KindI32:     "i32",
	KindI64:     "i64",
	KindU8:      "u8",
	KindU16:     "u16",
	KindU32:     "u32",
	KindU64:     "u64",
	KindF32:     "f32",
	KindF64:     "f64",
	KindBytes:   "bytes",
}

// String returns the kind name, or "unknown" outside the enum.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// ScalarKind is the element kind of one record field. Byte strings carry
// their fixed length; numeric kinds ignore it.
type ScalarKind struct {
	kind   Kind
	length uint32
}

var (
	Int8    = ScalarKind{kind: KindI8}
	Int16   = ScalarKind{kind: KindI16}
	Int32   = ScalarKind{kind: KindI32}
	Int64   = ScalarKind{kind: KindI64}
	Uint8   = ScalarKind{kind: KindU8}
	Uint16  = ScalarKind{kind: KindU16}
	Uint32  = ScalarKind{kind: KindU32}
	Uint64  = ScalarKind{kind: KindU64}
	Float32 = ScalarKind{kind: KindF32}
	Float64 = ScalarKind{kind: KindF64}
)

// Bytes returns the fixed-length byte string kind of length n.
func Bytes(n uint32) ScalarKind {
	return ScalarKind{kind: KindBytes, length: n}
}

// Numeric returns the numeric kind k. ok is false for byte strings and
// invalid kinds, which need a length.
func Numeric(k Kind) (ScalarKind, bool) {
	if k <= KindInvalid || k >= KindBytes {
		return ScalarKind{}, false
	}
	return ScalarKind{kind: k}, true
}

// Kind returns the element kind without the byte string length.
func (s ScalarKind) Kind() Kind {
	return s.kind
}

// Len returns the byte string length, or the size for numeric kinds.
func (s ScalarKind) Len() uint32 {
	if s.kind == KindBytes {
		return s.length
	}
	return s.Size()
}

// Valid reports whether s is a known kind; byte strings need a length of at least 1.
func (s ScalarKind) Valid() bool {
	if s.kind == KindBytes {
		return s.length > 0
	}
	return s.kind > KindInvalid && s.kind < KindBytes
}

// Size returns the storage width in bytes.
func (s ScalarKind) Size() uint32 {
	switch s.kind {
	case KindI8, KindU8:
		return 1
	case KindI16, KindU16:
		return 2
	case KindI32, KindU32, KindF32:
		return 4
	case KindI64, KindU64, KindF64:
		return 8
	case KindBytes:
		return s.length
	default:
		return 0
	}
}

// Align returns the natural alignment: the size for numeric kinds, 1 for byte strings.
func (s ScalarKind) Align() uint32 {
	switch s.kind {
	case KindBytes:
		return 1
	case KindInvalid:
		return 1
	default:
		return s.Size()
	}
}

// IsInteger reports whether s is a signed or unsigned integer kind.
func (s ScalarKind) IsInteger() bool {
	switch s.kind {
	case KindI8, KindI16, KindI32, KindI64, KindU8, KindU16, KindU32, KindU64:
		return true
	default:
		return false
	}
}

// IsSigned reports whether s is a signed integer or a float kind.
func (s ScalarKind) IsSigned() bool {
	switch s.kind {
	case KindI8, KindI16, KindI32, KindI64, KindF32, KindF64:
		return true
	default:
		return false
	}
}

// IsFloat reports whether s is f32 or f64.
func (s ScalarKind) IsFloat() bool {
	return s.kind == KindF32 || s.kind == KindF64
}

// IsBytes reports whether s is a fixed-length byte string.
func (s ScalarKind) IsBytes() bool {
	return s.kind == KindBytes
}

// String returns the descriptor tag for the kind.
func (s ScalarKind) String() string {
	if s.kind == KindBytes {
		return "bytes<" + strconv.FormatUint(uint64(s.length), 10) + ">"
	}
	return s.kind.String()
}

// Promoted returns the kind arithmetic on a value of s is carried out in:
// every integer widens to i64 except u64, every float widens to f64.
func (s ScalarKind) Promoted() ScalarKind {
	switch s.kind {
	case KindI8, KindI16, KindI32, KindI64, KindU8, KindU16, KindU32:
		return Int64
	case KindU64:
		return Uint64
	case KindF32, KindF64:
		return Float64
	default:
		return s
	}
}

// ParseKind parses a descriptor element tag from the closed vocabulary
// i8,i16,i32,i64,u8,u16,u32,u64,f32,f64,bytes<N>.
func ParseKind(tag string) (ScalarKind, error) {
	switch tag {
	case "i8":
		return Int8, nil
	case "i16":
		return Int16, nil
	case "i32":
		return Int32, nil
	case "i64":
		return Int64, nil
	case "u8":
		return Uint8, nil
	case "u16":
		return Uint16, nil
	case "u32":
		return Uint32, nil
	case "u64":
		return Uint64, nil
	case "f32":
		return Float32, nil
	case "f64":
		return Float64, nil
	}

	if inner, ok := strings.CutPrefix(tag, "bytes<"); ok {
		if digits, ok := strings.CutSuffix(inner, ">"); ok {
			n, err := strconv.ParseUint(digits, 10, 32)
			if err == nil && n > 0 {
				return Bytes(uint32(n)), nil
			}
		}
	}

	return ScalarKind{}, errors.UnsupportedFieldKind(nil, tag)
}
