package jit

import (
	"context"
	"testing"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/recjit/dtype"
	"github.com/wippyai/recjit/ir"
	"github.com/wippyai/recjit/record"
)

func TestGenerate_Signature(t *testing.T) {
	rt := record.NewConverter(record.NewRegistry()).MustConvert(dtype.Packed(dtype.F("a", "i32")))

	tests := []struct {
		name        string
		fn          *ir.Function
		args        []ir.Type
		wantParams  []api.ValueType
		wantResults []api.ValueType
	}{
		{
			name:       "array and int",
			fn:         ir.Func("f", []string{"x", "n"}),
			args:       []ir.Type{ir.ArrayOf(rt), ir.Int},
			wantParams: []api.ValueType{api.ValueTypeI32, api.ValueTypeI64, api.ValueTypeI64},
		},
		{
			name:        "record and float returning int",
			fn:          ir.Func("f", []string{"r", "v"}, ir.Ret(ir.Get(ir.V("r"), "a"))),
			args:        []ir.Type{ir.RecordOf(rt), ir.Float},
			wantParams:  []api.ValueType{api.ValueTypeI32, api.ValueTypeF64},
			wantResults: []api.ValueType{api.ValueTypeI32, api.ValueTypeI64},
		},
		{
			name:        "narrow scalar param promotes",
			fn:          ir.Func("f", []string{"v"}, ir.Ret(ir.V("v"))),
			args:        []ir.Type{ir.Scalar(dtype.Float32)},
			wantParams:  []api.ValueType{api.ValueTypeF64},
			wantResults: []api.ValueType{api.ValueTypeI32, api.ValueTypeF64},
		},
	}

	ctx := context.Background()
	r := wazero.NewRuntime(ctx)
	defer r.Close(ctx)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := ir.Check(tt.fn, tt.args)
			if err != nil {
				t.Fatal(err)
			}
			wasm, err := generate(info, Config{BoundsCheck: true})
			if err != nil {
				t.Fatalf("generate failed: %v", err)
			}
			compiled, err := r.CompileModule(ctx, wasm)
			if err != nil {
				t.Fatalf("CompileModule failed: %v", err)
			}
			defer compiled.Close(ctx)

			def := compiled.ExportedFunctions()[entryName]
			if def == nil {
				t.Fatalf("export %q missing", entryName)
			}
			if string(def.ParamTypes()) != string(tt.wantParams) {
				t.Errorf("params = %v, want %v", def.ParamTypes(), tt.wantParams)
			}
			if string(def.ResultTypes()) != string(tt.wantResults) {
				t.Errorf("results = %v, want %v", def.ResultTypes(), tt.wantResults)
			}

			imports := compiled.ImportedFunctions()
			if len(imports) != int(numHostFuncs) {
				t.Fatalf("imports = %d, want %d", len(imports), numHostFuncs)
			}
			for i, imp := range imports {
				mod, name, _ := imp.Import()
				if mod != hostModule || name != hostFuncs[i].name {
					t.Errorf("import %d = %s.%s, want %s.%s", i, mod, name, hostModule, hostFuncs[i].name)
				}
			}
		})
	}
}

func TestGenerate_MemoryLimit(t *testing.T) {
	info, err := ir.Check(ir.Func("f", nil), nil)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	r := wazero.NewRuntime(ctx)
	defer r.Close(ctx)

	wasm, err := generate(info, Config{MemoryLimitPages: 8})
	if err != nil {
		t.Fatal(err)
	}
	compiled, err := r.CompileModule(ctx, wasm)
	if err != nil {
		t.Fatal(err)
	}
	mem := compiled.ExportedMemories()[memoryName]
	if mem == nil {
		t.Fatal("memory export missing")
	}
	if hi, ok := mem.Max(); !ok || hi != 8 || mem.Min() != 1 {
		t.Errorf("memory limits = %d..%d (%v), want 1..8", mem.Min(), hi, ok)
	}
}
