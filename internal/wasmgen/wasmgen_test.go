package wasmgen

import (
	"bytes"
	"context"
	"math"
	"testing"

	"github.com/tetratelabs/wazero"
)

func TestWriterLEB128(t *testing.T) {
	tests := []struct {
		name  string
		write func(w *Writer)
		want  []byte
	}{
		{"u32 0", func(w *Writer) { w.WriteU32(0) }, []byte{0x00}},
		{"u32 127", func(w *Writer) { w.WriteU32(127) }, []byte{0x7f}},
		{"u32 128", func(w *Writer) { w.WriteU32(128) }, []byte{0x80, 0x01}},
		{"u32 624485", func(w *Writer) { w.WriteU32(624485) }, []byte{0xe5, 0x8e, 0x26}},
		{"s64 -1", func(w *Writer) { w.WriteS64(-1) }, []byte{0x7f}},
		{"s64 63", func(w *Writer) { w.WriteS64(63) }, []byte{0x3f}},
		{"s64 64", func(w *Writer) { w.WriteS64(64) }, []byte{0xc0, 0x00}},
		{"s64 -123456", func(w *Writer) { w.WriteS64(-123456) }, []byte{0xc0, 0xbb, 0x78}},
		{"name", func(w *Writer) { w.WriteName("run") }, []byte{3, 'r', 'u', 'n'}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWriter()
			tt.write(w)
			if !bytes.Equal(w.Bytes(), tt.want) {
				t.Errorf("got % x, want % x", w.Bytes(), tt.want)
			}
		})
	}
}

func TestModule_AddTypeDedupes(t *testing.T) {
	m := NewModule()
	a := m.AddType(FuncType{Params: []ValType{ValI64}})
	b := m.AddType(FuncType{Params: []ValType{ValI64}})
	c := m.AddType(FuncType{Params: []ValType{ValF64}})
	if a != b || a == c {
		t.Errorf("type indices = %d, %d, %d", a, b, c)
	}
}

func TestFunc_LocalIndices(t *testing.T) {
	f := NewFunc(FuncType{Params: []ValType{ValI32, ValI64}})
	if got := f.Local(ValI64); got != 2 {
		t.Errorf("first local = %d, want 2", got)
	}
	if got := f.Local(ValF64); got != 3 {
		t.Errorf("second local = %d, want 3", got)
	}
}

func TestModule_EncodeHeader(t *testing.T) {
	bin := NewModule().Encode()
	want := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
	if !bytes.Equal(bin, want) {
		t.Errorf("empty module = % x, want % x", bin, want)
	}
}

// TestModule_Executes builds a module that stores through memory, copies
// bytes, converts floats and calls an import, then runs it with wazero.
func TestModule_Executes(t *testing.T) {
	ctx := context.Background()
	r := wazero.NewRuntime(ctx)
	defer r.Close(ctx)

	var trapped []int64
	_, err := r.NewHostModuleBuilder("env").
		NewFunctionBuilder().
		WithFunc(func(_ context.Context, v int64) { trapped = append(trapped, v) }).
		Export("note").
		Instantiate(ctx)
	if err != nil {
		t.Fatalf("host module: %v", err)
	}

	m := NewModule()
	note := m.ImportFunc("env", "note", FuncType{Params: []ValType{ValI64}})

	f := NewFunc(FuncType{Params: []ValType{ValI32}, Results: []ValType{ValI64}})
	tmp := f.Local(ValI64)
	c := f.Body

	// mem[base+8] = 1.9e0 as f64; mem[base+16..19] = mem[base..3]
	c.LocalGet(0).F64Const(1.9).Mem(OpF64Store, 3, 8)
	c.LocalGet(0).I32Const(16).Op(OpI32Add).LocalGet(0).I32Const(3).MemoryCopy()

	// tmp = trunc_sat(mem[base+8]) + load8_s(mem[base+16])
	c.LocalGet(0).Mem(OpF64Load, 3, 8).PrefixedOp(OpI64TruncSatF64S)
	c.LocalGet(0).Mem(OpI32Load8S, 0, 16).Op(OpI64ExtendI32S)
	c.Op(OpI64Add).LocalSet(tmp)

	// loop three times calling note(tmp)
	i := f.Local(ValI64)
	c.Block().Loop()
	c.LocalGet(i).I64Const(3).Op(OpI64GeU).BrIf(1)
	c.LocalGet(tmp).Call(note)
	c.LocalGet(i).I64Const(1).Op(OpI64Add).LocalSet(i)
	c.Br(0)
	c.End().End()
	c.LocalGet(tmp)

	m.ExportFunc("run", m.AddFunc(f))
	m.SetMemory("memory", Limits{Min: 1})

	mod, err := r.Instantiate(ctx, m.Encode())
	if err != nil {
		t.Fatalf("instantiate: %v", err)
	}
	if !mod.Memory().WriteByte(32, 0xfe) {
		t.Fatal("memory write failed")
	}

	res, err := mod.ExportedFunction("run").Call(ctx, 32)
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if got := int64(res[0]); got != -1 {
		t.Errorf("run() = %d, want -1", got)
	}
	if len(trapped) != 3 || trapped[0] != -1 {
		t.Errorf("note calls = %v, want three calls with -1", trapped)
	}

	got, ok := mod.Memory().ReadFloat64Le(40)
	if !ok || got != 1.9 {
		t.Errorf("stored f64 = %v, want 1.9", got)
	}
	b, _ := mod.Memory().ReadByte(48)
	if b != 0xfe {
		t.Errorf("copied byte = %#x, want 0xfe", b)
	}
}

func TestModule_RejectsLateImport(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("ImportFunc after AddFunc should panic")
		}
	}()
	m := NewModule()
	m.AddFunc(NewFunc(FuncType{}))
	m.ImportFunc("env", "x", FuncType{})
}

func TestCode_F64Const(t *testing.T) {
	c := NewCode().F64Const(math.Inf(1))
	want := []byte{OpF64Const, 0, 0, 0, 0, 0, 0, 0xf0, 0x7f}
	if !bytes.Equal(c.Bytes(), want) {
		t.Errorf("got % x, want % x", c.Bytes(), want)
	}
}
