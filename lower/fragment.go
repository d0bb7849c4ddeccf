package lower

import (
	"github.com/wippyai/recjit/dtype"
	"github.com/wippyai/recjit/internal/wasmgen"
)

// Mode selects a read or a write access.
type Mode uint8

const (
	Read Mode = iota
	Write
)

func (m Mode) String() string {
	if m == Write {
		return "write"
	}
	return "read"
}

// Fragment is straight-line code with its stack effect. Type is the value
// it leaves on the stack (ValNone for none). Kind is the scalar kind that
// value represents; a byte-string kind means the value is its address.
type Fragment struct {
	Code []byte
	Kind dtype.ScalarKind
	Type wasmgen.ValType
}

// Addr wraps code that leaves an i32 address.
func Addr(code []byte) Fragment {
	return Fragment{Code: code, Type: wasmgen.ValI32}
}

// Local returns a fragment reading local idx of type t.
func Local(idx uint32, t wasmgen.ValType) Fragment {
	return Fragment{Code: wasmgen.NewCode().LocalGet(idx).Bytes(), Type: t}
}

// I64 returns a fragment pushing the constant v.
func I64(v int64) Fragment {
	return Fragment{Code: wasmgen.NewCode().I64Const(v).Bytes(), Kind: dtype.Int64, Type: wasmgen.ValI64}
}

// StackType returns the value type a loaded value of kind k occupies:
// i32 for integers up to 32 bits, i64 for 64-bit integers, f32, f64 and
// i32 addresses for byte strings.
func StackType(k dtype.ScalarKind) wasmgen.ValType {
	switch k.Kind() {
	case dtype.KindI8, dtype.KindI16, dtype.KindI32, dtype.KindU8, dtype.KindU16, dtype.KindU32:
		return wasmgen.ValI32
	case dtype.KindI64, dtype.KindU64:
		return wasmgen.ValI64
	case dtype.KindF32:
		return wasmgen.ValF32
	case dtype.KindF64:
		return wasmgen.ValF64
	case dtype.KindBytes:
		return wasmgen.ValI32
	default:
		return wasmgen.ValNone
	}
}
