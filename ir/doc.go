// Package ir is the function representation shared by the reference
// interpreter and the compiler.
//
// Functions are built in Go from expression and statement nodes:
//
//	fn := ir.Func("usecase2", []string{"x", "n"},
//		ir.Range("k", ir.V("n"),
//			ir.Let("y", ir.At(ir.V("x"), ir.V("k"))),
//			ir.Println(ir.Get(ir.V("y"), "f1"), ir.Get(ir.V("y"), "s1"), ir.Get(ir.V("y"), "f2")),
//		),
//	)
//
// Check resolves every expression type for concrete argument types. Both
// execution paths run on the checked Info, so they agree on promotion,
// field resolution and which programs are rejected.
//
// Locals are function scoped. Scalars bound to locals are promoted: every
// integer kind becomes i64 except u64, every float becomes f64. Byte
// strings cannot be bound to locals; they can be printed or stored into a
// byte-string field of the same length.
package ir
