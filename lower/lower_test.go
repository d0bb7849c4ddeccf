package lower

import (
	"bytes"
	"context"
	"encoding/binary"
	"math"
	"testing"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/recjit/dtype"
	"github.com/wippyai/recjit/errors"
	"github.com/wippyai/recjit/internal/wasmgen"
	"github.com/wippyai/recjit/record"
)

func fixtureType(t *testing.T, packed bool) *record.Type {
	t.Helper()
	d := dtype.Aligned(dtype.F("f1", "i64"), dtype.F("s1", "bytes<3>"), dtype.F("f2", "f64"), dtype.F("f3", "i8"))
	if packed {
		d = d.WithPacked(true)
	}
	return record.NewConverter(record.NewRegistry()).MustConvert(d)
}

// harness runs a single exported function "run(base i32, count i64, index i64)"
// against a fresh instance whose memory starts with mem.
type harness struct {
	t      *testing.T
	m      *wasmgen.Module
	f      *wasmgen.Func
	trap   uint32
	trips  [][2]int64
	result wasmgen.ValType
}

const (
	argBase  = 0
	argCount = 1
	argIndex = 2
)

func newHarness(t *testing.T, result wasmgen.ValType) *harness {
	h := &harness{t: t, m: wasmgen.NewModule(), result: result}
	h.trap = h.m.ImportFunc("env", "index_error", wasmgen.FuncType{Params: []wasmgen.ValType{wasmgen.ValI64, wasmgen.ValI64}})
	ft := wasmgen.FuncType{Params: []wasmgen.ValType{wasmgen.ValI32, wasmgen.ValI64, wasmgen.ValI64}}
	if result != wasmgen.ValNone {
		ft.Results = []wasmgen.ValType{result}
	}
	h.f = wasmgen.NewFunc(ft)
	return h
}

func (h *harness) bounds(enabled bool) Bounds {
	return Bounds{
		Enabled: enabled,
		Count:   Local(argCount, wasmgen.ValI64),
		Temp:    h.f.Local(wasmgen.ValI64),
		Trap:    h.trap,
	}
}

func (h *harness) run(mem []byte, count, index int64) (uint64, []byte, error) {
	h.t.Helper()
	ctx := context.Background()
	r := wazero.NewRuntime(ctx)
	defer r.Close(ctx)

	_, err := r.NewHostModuleBuilder("env").
		NewFunctionBuilder().
		WithFunc(func(_ context.Context, i, n int64) { h.trips = append(h.trips, [2]int64{i, n}) }).
		Export("index_error").
		Instantiate(ctx)
	if err != nil {
		h.t.Fatalf("host module: %v", err)
	}

	h.m.ExportFunc("run", h.m.AddFunc(h.f))
	h.m.SetMemory("memory", wasmgen.Limits{Min: 1})
	mod, err := r.Instantiate(ctx, h.m.Encode())
	if err != nil {
		h.t.Fatalf("instantiate: %v", err)
	}
	const base = 64
	mod.Memory().Write(base, mem)

	res, err := mod.ExportedFunction("run").Call(ctx, api.EncodeI32(base), api.EncodeI64(count), api.EncodeI64(index))
	out, _ := mod.Memory().Read(base, uint32(len(mem)))
	out = bytes.Clone(out)
	if err != nil {
		return 0, out, err
	}
	if len(res) == 0 {
		return 0, out, nil
	}
	return res[0], out, nil
}

func fixtureBytes(typ *record.Type, n int) []byte {
	arr, _ := record.NewArray(typ, n)
	for k := 0; k < n; k++ {
		v, _ := arr.At(k)
		_ = v.Set("f1", dtype.Int(dtype.Int64, int64(k)))
		_ = v.Set("s1", dtype.ByteString(dtype.Bytes(3), []byte("abc")))
		_ = v.Set("f2", dtype.Float(dtype.Float64, float64(k+2)))
		_ = v.Set("f3", dtype.Int(dtype.Int64, int64(-k)))
	}
	return arr.Bytes()
}

func TestLowerFieldAccess_Encoding(t *testing.T) {
	base := Addr(wasmgen.NewCode().LocalGet(0).Bytes())

	tests := []struct {
		name   string
		packed bool
		field  string
		want   []byte
	}{
		{"packed f2", true, "f2", []byte{wasmgen.OpLocalGet, 0, wasmgen.OpF64Load, 0, 11}},
		{"aligned f2", false, "f2", []byte{wasmgen.OpLocalGet, 0, wasmgen.OpF64Load, 3, 16}},
		{"packed f3", true, "f3", []byte{wasmgen.OpLocalGet, 0, wasmgen.OpI32Load8S, 0, 19}},
		{"aligned f1", false, "f1", []byte{wasmgen.OpLocalGet, 0, wasmgen.OpI64Load, 3, 0}},
		{"packed s1 address", true, "s1", []byte{wasmgen.OpLocalGet, 0, wasmgen.OpI32Const, 8, wasmgen.OpI32Add}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			typ := fixtureType(t, tt.packed)
			got, err := LowerFieldAccess(typ, tt.field, base, Read, Fragment{})
			if err != nil {
				t.Fatalf("LowerFieldAccess failed: %v", err)
			}
			if !bytes.Equal(got.Code, tt.want) {
				t.Errorf("code = % x, want % x", got.Code, tt.want)
			}
			f, _ := typ.Field(tt.field)
			if got.Kind != f.Kind {
				t.Errorf("kind = %v, want %v", got.Kind, f.Kind)
			}
		})
	}
}

func TestLowerFieldAccess_UnknownField(t *testing.T) {
	typ := fixtureType(t, true)
	_, err := LowerFieldAccess(typ, "missing", Addr(nil), Read, Fragment{})
	if !errors.Is(err, errors.ErrUnknownField) {
		t.Fatalf("error = %v, want UnknownField", err)
	}
	var e *errors.Error
	if errors.As(err, &e) && e.Phase != errors.PhaseLower {
		t.Errorf("phase = %v, want lower", e.Phase)
	}

	_, err = LowerColumnIndex(Addr(nil), typ, "missing", I64(0), Bounds{})
	if !errors.Is(err, errors.ErrUnknownField) {
		t.Fatalf("column error = %v, want UnknownField", err)
	}
}

func TestLowerFieldAccess_SharedAccessor(t *testing.T) {
	reg := record.NewRegistry()
	conv := record.NewConverter(reg)
	a := conv.MustConvert(dtype.Packed(dtype.F("x", "u16"), dtype.F("y", "f32")))
	b := conv.MustConvert(dtype.Packed(dtype.F("x", "u16"), dtype.F("y", "f32")))
	if a != b {
		t.Fatal("registry should return one instance")
	}

	if _, err := LowerFieldAccess(a, "y", Addr(nil), Read, Fragment{}); err != nil {
		t.Fatal(err)
	}
	if _, ok := accessors.Load(accessorKey{t: b, name: "y"}); !ok {
		t.Error("accessor for an interned type should be reused")
	}
}

func TestLowerFieldAccess_TypeChecks(t *testing.T) {
	typ := fixtureType(t, false)
	base := Addr(wasmgen.NewCode().LocalGet(0).Bytes())

	if _, err := LowerFieldAccess(typ, "f1", Local(1, wasmgen.ValI64), Read, Fragment{}); err == nil {
		t.Error("i64 base should be rejected")
	}
	if _, err := LowerFieldAccess(typ, "f1", base, Write, Local(2, wasmgen.ValF64)); err == nil {
		t.Error("f64 value for i64 field should be rejected")
	}
	src := Fragment{Code: wasmgen.NewCode().LocalGet(0).Bytes(), Kind: dtype.Bytes(4), Type: wasmgen.ValI32}
	if _, err := LowerFieldAccess(typ, "s1", base, Write, src); err == nil {
		t.Error("bytes<4> source for bytes<3> field should be rejected")
	}
}

func TestLowerIndex_AccessOrders(t *testing.T) {
	for _, packed := range []bool{true, false} {
		typ := fixtureType(t, packed)
		mem := fixtureBytes(typ, 5)

		for _, field := range []string{"f1", "f2", "f3"} {
			f, _ := typ.Field(field)
			result := wasmgen.ValI64
			if f.Kind.IsFloat() {
				result = wasmgen.ValF64
			}

			for _, viaColumn := range []bool{false, true} {
				h := newHarness(t, result)
				base := Local(argBase, wasmgen.ValI32)
				index := Local(argIndex, wasmgen.ValI64)

				var v Fragment
				var err error
				if viaColumn {
					var addr Fragment
					addr, err = LowerColumnIndex(base, typ, field, index, h.bounds(true))
					if err == nil {
						v, err = LowerScalarAccess(addr.Kind, typ.Packed(), addr, Read, Fragment{})
					}
				} else {
					var elem Fragment
					elem, err = LowerIndex(base, typ, index, h.bounds(true))
					if err == nil {
						v, err = LowerFieldAccess(typ, field, elem, Read, Fragment{})
					}
				}
				if err != nil {
					t.Fatal(err)
				}
				h.f.Body.Append(Promote(v).Code)

				got, _, err := h.run(mem, 5, 3)
				if err != nil {
					t.Fatalf("packed=%v %s column=%v: %v", packed, field, viaColumn, err)
				}
				arr, _ := record.WrapArray(typ, mem)
				view, _ := arr.At(3)
				want, _ := view.Get(field)

				var gotStr string
				if f.Kind.IsFloat() {
					gotStr = dtype.Float(dtype.Float64, api.DecodeF64(got)).String()
				} else {
					gotStr = dtype.Int(dtype.Int64, int64(got)).String()
				}
				if gotStr != want.String() {
					t.Errorf("packed=%v %s column=%v: got %s, want %s", packed, field, viaColumn, gotStr, want)
				}
			}
		}
	}
}

func TestLowerIndex_Bounds(t *testing.T) {
	for _, packed := range []bool{true, false} {
		for _, index := range []int64{5, 6, -1} {
			typ := fixtureType(t, packed)
			h := newHarness(t, wasmgen.ValI64)
			elem, err := LowerIndex(Local(argBase, wasmgen.ValI32), typ, Local(argIndex, wasmgen.ValI64), h.bounds(true))
			if err != nil {
				t.Fatal(err)
			}
			v, err := LowerFieldAccess(typ, "f1", elem, Read, Fragment{})
			if err != nil {
				t.Fatal(err)
			}
			h.f.Body.Append(v.Code)

			_, _, err = h.run(fixtureBytes(typ, 5), 5, index)
			if err == nil {
				t.Fatalf("packed=%v index %d: expected trap", packed, index)
			}
			if len(h.trips) != 1 || h.trips[0] != [2]int64{index, 5} {
				t.Errorf("packed=%v index %d: trap calls = %v", packed, index, h.trips)
			}
		}
	}
}

func TestLowerIndex_Unchecked(t *testing.T) {
	typ := fixtureType(t, true)
	h := newHarness(t, wasmgen.ValI64)
	elem, err := LowerIndex(Local(argBase, wasmgen.ValI32), typ, Local(argIndex, wasmgen.ValI64), h.bounds(false))
	if err != nil {
		t.Fatal(err)
	}
	v, _ := LowerFieldAccess(typ, "f1", elem, Read, Fragment{})
	h.f.Body.Append(v.Code)

	// One past the end reads whatever follows in linear memory; no trap is raised.
	if _, _, err := h.run(fixtureBytes(typ, 5), 5, 5); err != nil {
		t.Fatalf("unchecked access trapped: %v", err)
	}
	if len(h.trips) != 0 {
		t.Errorf("trap import called with bounds disabled: %v", h.trips)
	}
}

func TestLowerFieldAccess_Writes(t *testing.T) {
	for _, packed := range []bool{true, false} {
		typ := fixtureType(t, packed)
		h := newHarness(t, wasmgen.ValNone)
		base := Local(argBase, wasmgen.ValI32)
		index := Local(argIndex, wasmgen.ValI64)

		// x[index].f2 = x[index].f2 * 2.5
		elem, _ := LowerIndex(base, typ, index, h.bounds(true))
		old, _ := LowerFieldAccess(typ, "f2", elem, Read, Fragment{})
		c := wasmgen.NewCode().Append(old.Code).F64Const(2.5).Op(wasmgen.OpF64Mul)
		val := Narrow(Fragment{Code: c.Bytes(), Kind: dtype.Float64, Type: wasmgen.ValF64}, dtype.Float64)
		st, err := LowerFieldAccess(typ, "f2", elem, Write, val)
		if err != nil {
			t.Fatal(err)
		}
		h.f.Body.Append(st.Code)

		// x.f3[index] = 300 (wraps to 44)
		addr, _ := LowerColumnIndex(base, typ, "f3", index, h.bounds(true))
		st, err = LowerScalarAccess(addr.Kind, packed, addr, Write, Narrow(I64(300), dtype.Int8))
		if err != nil {
			t.Fatal(err)
		}
		h.f.Body.Append(st.Code)

		// x[index].s1 = x[0].s1 after x[0].s1 was changed by the host
		zero, _ := LowerIndex(base, typ, I64(0), Bounds{})
		src, _ := LowerFieldAccess(typ, "s1", zero, Read, Fragment{})
		st, err = LowerFieldAccess(typ, "s1", elem, Write, src)
		if err != nil {
			t.Fatal(err)
		}
		h.f.Body.Append(st.Code)

		mem := fixtureBytes(typ, 5)
		arr, _ := record.WrapArray(typ, mem)
		first, _ := arr.At(0)
		_ = first.Set("s1", dtype.ByteString(dtype.Bytes(3), []byte("x")))

		_, out, err := h.run(mem, 5, 2)
		if err != nil {
			t.Fatal(err)
		}

		got, _ := record.WrapArray(typ, out)
		v, _ := got.At(2)
		if f2, _ := v.Get("f2"); f2.Float64() != 10 {
			t.Errorf("packed=%v f2 = %s, want 10.0", packed, f2)
		}
		if f3, _ := v.Get("f3"); f3.Int64() != 44 {
			t.Errorf("packed=%v f3 = %s, want 44", packed, f3)
		}
		if s1, _ := v.Get("s1"); !bytes.Equal(s1.Bytes(), []byte{'x', 0, 0}) {
			t.Errorf("packed=%v s1 = %q, want \"x\\x00\\x00\"", packed, s1.Bytes())
		}
		neighbor, _ := got.At(3)
		if f2, _ := neighbor.Get("f2"); f2.Float64() != 5 {
			t.Errorf("packed=%v neighbor f2 = %s, want 5.0", packed, f2)
		}
	}
}

func TestNarrow_MatchesScalarConvert(t *testing.T) {
	tests := []struct {
		in dtype.Scalar
		to dtype.ScalarKind
	}{
		{dtype.Float(dtype.Float64, -3.75), dtype.Int16},
		{dtype.Float(dtype.Float64, 1e20), dtype.Int32},
		{dtype.Float(dtype.Float64, math.NaN()), dtype.Int64},
		{dtype.Float(dtype.Float64, -1), dtype.Uint64},
		{dtype.Int(dtype.Int64, 70000), dtype.Uint16},
		{dtype.Int(dtype.Int64, -5), dtype.Float32},
		{dtype.Uint(dtype.Uint64, math.MaxUint64), dtype.Float64},
		{dtype.Float(dtype.Float64, 0.1), dtype.Float32},
	}

	for _, tt := range tests {
		t.Run(tt.in.String()+"->"+tt.to.String(), func(t *testing.T) {
			var src Fragment
			c := wasmgen.NewCode()
			if tt.in.Kind().IsFloat() {
				c.F64Const(tt.in.Float64())
				src = Fragment{Code: c.Bytes(), Kind: dtype.Float64, Type: wasmgen.ValF64}
			} else {
				c.I64Const(int64(tt.in.Uint64()))
				src = Fragment{Code: c.Bytes(), Kind: tt.in.Kind(), Type: wasmgen.ValI64}
			}

			h := newHarness(t, wasmgen.ValNone)
			st, err := LowerScalarAccess(tt.to, true, Local(argBase, wasmgen.ValI32), Write, Narrow(src, tt.to))
			if err != nil {
				t.Fatal(err)
			}
			h.f.Body.Append(st.Code)

			_, out, err := h.run(make([]byte, 8), 0, 0)
			if err != nil {
				t.Fatal(err)
			}
			got := dtype.Load(tt.to, out)
			want, _ := tt.in.Convert(tt.to)
			if got.String() != want.String() {
				t.Errorf("compiled %s, scalar %s", got, want)
			}
		})
	}
}

func TestPromote(t *testing.T) {
	h := newHarness(t, wasmgen.ValI64)
	mem := make([]byte, 4)
	binary.LittleEndian.PutUint32(mem, 0xffffffff)
	v, _ := LowerScalarAccess(dtype.Uint32, false, Local(argBase, wasmgen.ValI32), Read, Fragment{})
	p := Promote(v)
	if p.Kind != dtype.Int64 || p.Type != wasmgen.ValI64 {
		t.Fatalf("Promote kind/type = %v/%v", p.Kind, p.Type)
	}
	h.f.Body.Append(p.Code)
	got, _, err := h.run(mem, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if int64(got) != 0xffffffff {
		t.Errorf("u32 max promoted = %d, want %d", int64(got), int64(0xffffffff))
	}
}
