package lower

import (
	"math/bits"
	"sync"

	"github.com/wippyai/recjit/dtype"
	"github.com/wippyai/recjit/errors"
	"github.com/wippyai/recjit/internal/wasmgen"
	"github.com/wippyai/recjit/record"
)

// accessor is the precomputed load/store template for one field.
type accessor struct {
	kind      dtype.ScalarKind
	offset    uint32
	alignLog2 uint32
	load      byte
	store     byte
}

type accessorKey struct {
	t    *record.Type
	name string
}

// accessors memoizes templates per canonical record type. Types interned in
// one registry share entries.
var accessors sync.Map // accessorKey -> accessor

func lookupAccessor(t *record.Type, name string) (accessor, error) {
	key := accessorKey{t: t, name: name}
	if cached, ok := accessors.Load(key); ok {
		return cached.(accessor), nil
	}

	f, ok := t.Field(name)
	if !ok {
		return accessor{}, errors.UnknownField(errors.PhaseLower, t.String(), name)
	}

	a := newAccessor(f.Kind, f.Offset, t.Packed())
	accessors.Store(key, a)
	return a, nil
}

func newAccessor(k dtype.ScalarKind, offset uint32, packed bool) accessor {
	a := accessor{kind: k, offset: offset}
	if !packed && k.Align() > 0 {
		a.alignLog2 = uint32(bits.TrailingZeros32(k.Align()))
	}

	switch k.Kind() {
	case dtype.KindI8:
		a.load, a.store = wasmgen.OpI32Load8S, wasmgen.OpI32Store8
	case dtype.KindU8:
		a.load, a.store = wasmgen.OpI32Load8U, wasmgen.OpI32Store8
	case dtype.KindI16:
		a.load, a.store = wasmgen.OpI32Load16S, wasmgen.OpI32Store16
	case dtype.KindU16:
		a.load, a.store = wasmgen.OpI32Load16U, wasmgen.OpI32Store16
	case dtype.KindI32, dtype.KindU32:
		a.load, a.store = wasmgen.OpI32Load, wasmgen.OpI32Store
	case dtype.KindI64, dtype.KindU64:
		a.load, a.store = wasmgen.OpI64Load, wasmgen.OpI64Store
	case dtype.KindF32:
		a.load, a.store = wasmgen.OpF32Load, wasmgen.OpF32Store
	case dtype.KindF64:
		a.load, a.store = wasmgen.OpF64Load, wasmgen.OpF64Store
	case dtype.KindBytes, dtype.KindInvalid:
	}
	return a
}

// LowerFieldAccess emits the access of field name of a record at base.
// base must leave the i32 record address. The field offset is carried in
// the memarg so the effective address is base + offset, and the access
// width is exactly the field size.
//
// Read returns a fragment producing the field value in its stack type; for
// a byte string it produces the address of the L-byte field. Write consumes
// value, which must already be in the field's stack type (a source address
// for byte strings), and produces nothing.
func LowerFieldAccess(t *record.Type, name string, base Fragment, mode Mode, value Fragment) (Fragment, error) {
	a, err := lookupAccessor(t, name)
	if err != nil {
		return Fragment{}, err
	}
	return a.emit(base, mode, value)
}

// LowerScalarAccess emits an access of kind k at the exact address left by
// addr. packed selects the byte alignment hint.
func LowerScalarAccess(k dtype.ScalarKind, packed bool, addr Fragment, mode Mode, value Fragment) (Fragment, error) {
	return newAccessor(k, 0, packed).emit(addr, mode, value)
}

func (a accessor) emit(base Fragment, mode Mode, value Fragment) (Fragment, error) {
	if base.Type != wasmgen.ValI32 {
		return Fragment{}, errors.New(errors.PhaseLower, errors.KindTypeMismatch).
			FieldKind(a.kind.String()).
			Detail("base address is %s, want i32", base.Type).
			Build()
	}

	c := wasmgen.NewCode().Append(base.Code)

	if a.kind.IsBytes() {
		if a.offset != 0 {
			c.I32Const(int32(a.offset)).Op(wasmgen.OpI32Add)
		}
		if mode == Read {
			return Fragment{Code: c.Bytes(), Kind: a.kind, Type: wasmgen.ValI32}, nil
		}
		if value.Type != wasmgen.ValI32 || !value.Kind.IsBytes() || value.Kind.Len() != a.kind.Len() {
			return Fragment{}, errors.New(errors.PhaseLower, errors.KindTypeMismatch).
				FieldKind(a.kind.String()).
				Detail("cannot copy %s into the field", value.Kind).
				Build()
		}
		c.Append(value.Code).I32Const(int32(a.kind.Len())).MemoryCopy()
		return Fragment{Code: c.Bytes(), Kind: a.kind}, nil
	}

	if mode == Read {
		c.Mem(a.load, a.alignLog2, a.offset)
		return Fragment{Code: c.Bytes(), Kind: a.kind, Type: StackType(a.kind)}, nil
	}

	if value.Type != StackType(a.kind) {
		return Fragment{}, errors.New(errors.PhaseLower, errors.KindTypeMismatch).
			FieldKind(a.kind.String()).
			Detail("stored value is %s, want %s", value.Type, StackType(a.kind)).
			Build()
	}
	c.Append(value.Code).Mem(a.store, a.alignLog2, a.offset)
	return Fragment{Code: c.Bytes(), Kind: a.kind}, nil
}
