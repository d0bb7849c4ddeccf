// Package recjit compiles functions over arrays of fixed-layout records to
// WebAssembly and runs them in-process.
//
// A record layout is described by an ordered list of named scalar fields.
// The layout is converted into a canonical record type, functions over
// arrays of those records are type checked, and field accesses are lowered
// to offset arithmetic over the array's raw bytes. The same functions can
// be run by a reference interpreter, which is the ground truth compiled
// code is checked against.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	recjit/
//	├── dtype/           Layout descriptors, scalar kinds, value formatting
//	├── record/          Descriptor conversion, type registry, arrays and views
//	├── lower/           Field access and index lowering to offset arithmetic
//	├── ir/              Function IR, builders and the type checker
//	├── interp/          Reference interpreter
//	├── jit/             WebAssembly code generation and wazero execution
//	├── errors/          Structured error types for debugging
//	└── cmd/recjit/      Layout inspection and parity CLI
//
// # Quick Start
//
// Convert a descriptor and compile a function over it:
//
//	rt, err := record.NewConverter(record.Default()).Convert(
//	    dtype.Packed(dtype.F("f1", "i64"), dtype.F("s1", "bytes<3>"), dtype.F("f2", "f64")))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	c, err := jit.New(ctx, jit.Config{BoundsCheck: true})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer c.Close(ctx)
//
//	ep, err := c.Compile(ctx, fn, ir.ArrayOf(rt), ir.Int)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	_, err = ep.Call(ctx, os.Stdout, arr, arr.Len())
//
// # Thread Safety
//
// Converters, registries, compilers and entry points are safe for
// concurrent use. Arrays and views are not: concurrent calls that write the
// same array must be synchronized by the caller.
//
// # Memory Model
//
// Each call stages its arrays into the linear memory of a pooled instance
// and copies them back when the call returns, including after a trap.
// Linear memory only grows, so an instance that staged a large array keeps
// that memory until it is discarded by the pool.
package recjit
