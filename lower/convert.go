package lower

import (
	"github.com/wippyai/recjit/dtype"
	"github.com/wippyai/recjit/internal/wasmgen"
)

// Promote widens a loaded value of kind k to its arithmetic kind.
func Promote(v Fragment) Fragment {
	c := wasmgen.NewCode().Append(v.Code)
	switch v.Kind.Kind() {
	case dtype.KindI8, dtype.KindI16, dtype.KindI32:
		c.Op(wasmgen.OpI64ExtendI32S)
	case dtype.KindU8, dtype.KindU16, dtype.KindU32:
		c.Op(wasmgen.OpI64ExtendI32U)
	case dtype.KindF32:
		c.Op(wasmgen.OpF64PromoteF32)
	case dtype.KindI64, dtype.KindU64, dtype.KindF64, dtype.KindBytes, dtype.KindInvalid:
	}
	p := v.Kind.Promoted()
	return Fragment{Code: c.Bytes(), Kind: p, Type: StackType(p)}
}

// Narrow converts a promoted value (i64, u64 or f64) to the stack
// representation of kind to. Integer narrowing wraps, float to integer
// truncates with saturation, integer to float rounds to nearest.
func Narrow(v Fragment, to dtype.ScalarKind) Fragment {
	c := wasmgen.NewCode().Append(v.Code)
	fromFloat := v.Kind.IsFloat()
	fromUnsigned := v.Kind.Kind() == dtype.KindU64

	switch to.Kind() {
	case dtype.KindI8, dtype.KindI16, dtype.KindI32, dtype.KindU8, dtype.KindU16, dtype.KindU32:
		if fromFloat {
			c.PrefixedOp(wasmgen.OpI64TruncSatF64S)
		}
		c.Op(wasmgen.OpI32WrapI64)
	case dtype.KindI64:
		if fromFloat {
			c.PrefixedOp(wasmgen.OpI64TruncSatF64S)
		}
	case dtype.KindU64:
		if fromFloat {
			c.PrefixedOp(wasmgen.OpI64TruncSatF64U)
		}
	case dtype.KindF32, dtype.KindF64:
		if !fromFloat {
			if fromUnsigned {
				c.Op(wasmgen.OpF64ConvertI64U)
			} else {
				c.Op(wasmgen.OpF64ConvertI64S)
			}
		}
		if to.Kind() == dtype.KindF32 {
			c.Op(wasmgen.OpF32DemoteF64)
		}
	case dtype.KindBytes, dtype.KindInvalid:
	}
	return Fragment{Code: c.Bytes(), Kind: to, Type: StackType(to)}
}
