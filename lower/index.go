package lower

import (
	"github.com/wippyai/recjit/errors"
	"github.com/wippyai/recjit/internal/wasmgen"
	"github.com/wippyai/recjit/record"
)

// Bounds configures index checking. When Enabled, an index outside
// [0, Count) calls Trap(index, count) and then traps with unreachable.
// Count must leave an i64; Temp is a scratch i64 local.
type Bounds struct {
	Count   Fragment
	Temp    uint32
	Trap    uint32
	Enabled bool
}

// LowerIndex emits the address of element index of an array of t at base:
// base + index * t.Size(). index must leave an i64.
func LowerIndex(base Fragment, t *record.Type, index Fragment, b Bounds) (Fragment, error) {
	return lowerIndex(base, t, 0, index, b)
}

// LowerColumnIndex emits the address of field name of element index:
// base + offset(name) + index * t.Size(). The result carries the field kind.
func LowerColumnIndex(base Fragment, t *record.Type, name string, index Fragment, b Bounds) (Fragment, error) {
	f, ok := t.Field(name)
	if !ok {
		return Fragment{}, errors.UnknownField(errors.PhaseLower, t.String(), name)
	}
	addr, err := lowerIndex(base, t, f.Offset, index, b)
	if err != nil {
		return Fragment{}, err
	}
	addr.Kind = f.Kind
	return addr, nil
}

func lowerIndex(base Fragment, t *record.Type, offset uint32, index Fragment, b Bounds) (Fragment, error) {
	if base.Type != wasmgen.ValI32 {
		return Fragment{}, errors.New(errors.PhaseLower, errors.KindTypeMismatch).
			RecordType(t.String()).
			Detail("array base is %s, want i32", base.Type).
			Build()
	}
	if index.Type != wasmgen.ValI64 {
		return Fragment{}, errors.New(errors.PhaseLower, errors.KindTypeMismatch).
			RecordType(t.String()).
			Detail("index is %s, want i64", index.Type).
			Build()
	}

	c := wasmgen.NewCode()
	if b.Enabled {
		if b.Count.Type != wasmgen.ValI64 {
			return Fragment{}, errors.New(errors.PhaseLower, errors.KindTypeMismatch).
				RecordType(t.String()).
				Detail("element count is %s, want i64", b.Count.Type).
				Build()
		}
		// Unsigned compare rejects negative indices too.
		c.Append(index.Code).LocalTee(b.Temp)
		c.Append(b.Count.Code).Op(wasmgen.OpI64GeU)
		c.If()
		c.LocalGet(b.Temp).Append(b.Count.Code).Call(b.Trap)
		c.Op(wasmgen.OpUnreachable)
		c.End()
		c.Append(base.Code).LocalGet(b.Temp)
	} else {
		c.Append(base.Code).Append(index.Code)
	}

	c.I64Const(int64(t.Size())).Op(wasmgen.OpI64Mul).Op(wasmgen.OpI32WrapI64).Op(wasmgen.OpI32Add)
	if offset != 0 {
		c.I32Const(int32(offset)).Op(wasmgen.OpI32Add)
	}
	return Fragment{Code: c.Bytes(), Type: wasmgen.ValI32}, nil
}
