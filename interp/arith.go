package interp

import (
	"github.com/wippyai/recjit/dtype"
	"github.com/wippyai/recjit/ir"
)

// promote widens s to the kind locals and results hold it in.
func promote(s dtype.Scalar) dtype.Scalar {
	if s.Kind().IsBytes() {
		return s
	}
	return s.Promote()
}

func toInt64(s dtype.Scalar) int64 {
	out, _ := s.Convert(dtype.Int64)
	return out.Int64()
}

// arith evaluates x op y in the kind ir.ArithKind selects. Integer results
// wrap at 64 bits.
func arith(op ir.BinaryOp, x, y dtype.Scalar) dtype.Scalar {
	k := ir.ArithKind(x.Kind(), y.Kind())
	a, _ := x.Convert(k)
	b, _ := y.Convert(k)

	switch {
	case k.IsFloat():
		p, q := a.Float64(), b.Float64()
		var r float64
		switch op {
		case ir.OpAdd:
			r = p + q
		case ir.OpSub:
			r = p - q
		case ir.OpMul:
			r = p * q
		}
		return dtype.Float(k, r)

	case k == dtype.Uint64:
		p, q := a.Uint64(), b.Uint64()
		var r uint64
		switch op {
		case ir.OpAdd:
			r = p + q
		case ir.OpSub:
			r = p - q
		case ir.OpMul:
			r = p * q
		}
		return dtype.Uint(k, r)

	default:
		p, q := a.Int64(), b.Int64()
		var r int64
		switch op {
		case ir.OpAdd:
			r = p + q
		case ir.OpSub:
			r = p - q
		case ir.OpMul:
			r = p * q
		}
		return dtype.Int(k, r)
	}
}
