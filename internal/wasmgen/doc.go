// Package wasmgen emits WebAssembly instructions and encodes single-memory
// modules.
//
// Code is an append-only instruction buffer with one method per opcode
// family. Func pairs a signature with a body and its declared locals.
// Module collects types, function imports, local functions, one memory and
// exports, and Encode writes the binary format:
//
//	m := wasmgen.NewModule()
//	trap := m.ImportFunc("env", "trap", wasmgen.FuncType{Params: []wasmgen.ValType{wasmgen.ValI64}})
//	f := wasmgen.NewFunc(wasmgen.FuncType{Results: []wasmgen.ValType{wasmgen.ValI64}})
//	f.Body.I64Const(42)
//	m.ExportFunc("run", m.AddFunc(f))
//	m.SetMemory("memory", wasmgen.Limits{Min: 1})
//	bin := m.Encode()
//
// This package is internal to recjit.
package wasmgen
