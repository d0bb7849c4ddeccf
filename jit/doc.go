// Package jit is the isolated compilation harness.
//
// A Compiler checks a function against argument types, lowers it to a
// WebAssembly module with the lower package, compiles it with wazero and
// returns an EntryPoint. Each call runs in its own pooled instance: record
// arrays are staged into the instance's linear memory as (base, count)
// pairs and copied back afterwards, so callers observe every mutation.
//
// Printing goes through the "recjit" host module:
//
//	print_int(kind i32, v i64)
//	print_float(kind i32, v f64)
//	print_bytes(addr i32, len i32)
//	print_sep()
//	print_end()
//	index_error(index i64, count i64)
//
// Values are formatted by the dtype package, so compiled output matches the
// interpreter byte for byte. With Config.BoundsCheck every array index is
// compared against the element count and an out of range index fails the
// call with errors.ErrIndexOutOfRange.
package jit
