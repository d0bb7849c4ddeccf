// Package usecases holds the record-array functions the compiler is
// exercised against, with the fixtures they run on.
package usecases

import (
	"github.com/wippyai/recjit/ir"
)

// Usecase1 is the two-array cross update:
//
//	for i1 in range(len(arr1)):
//	    st1 = arr1[i1]
//	    for i2 in range(len(arr2)):
//	        st2 = arr2[i2]
//	        st2.row += st1.p * st2.p + st1.row - st1.col
//	    st1.p += st2.p
//	    st1.col -= st2.col
func Usecase1() *ir.Function {
	return ir.Func("usecase1", []string{"arr1", "arr2"},
		ir.Let("n1", ir.LenOf(ir.V("arr1"))),
		ir.Let("n2", ir.LenOf(ir.V("arr2"))),
		ir.Range("i1", ir.V("n1"),
			ir.Let("st1", ir.At(ir.V("arr1"), ir.V("i1"))),
			ir.Range("i2", ir.V("n2"),
				ir.Let("st2", ir.At(ir.V("arr2"), ir.V("i2"))),
				ir.Put(ir.V("st2"), "row", ir.Add(ir.Get(ir.V("st2"), "row"),
					ir.Sub(ir.Add(ir.Mul(ir.Get(ir.V("st1"), "p"), ir.Get(ir.V("st2"), "p")), ir.Get(ir.V("st1"), "row")), ir.Get(ir.V("st1"), "col")))),
			),
			ir.Put(ir.V("st1"), "p", ir.Add(ir.Get(ir.V("st1"), "p"), ir.Get(ir.V("st2"), "p"))),
			ir.Put(ir.V("st1"), "col", ir.Sub(ir.Get(ir.V("st1"), "col"), ir.Get(ir.V("st2"), "col"))),
		),
	)
}

// Usecase2 prints each record through a view:
//
//	for k in range(N):
//	    y = x[k]
//	    print(y.f1, y.s1, y.f2)
func Usecase2() *ir.Function {
	return ir.Func("usecase2", []string{"x", "N"},
		ir.Range("k", ir.V("N"),
			ir.Let("y", ir.At(ir.V("x"), ir.V("k"))),
			ir.Println(ir.Get(ir.V("y"), "f1"), ir.Get(ir.V("y"), "s1"), ir.Get(ir.V("y"), "f2")),
		),
	)
}

// Usecase3 prints each record by indexing the field columns:
//
//	for k in range(N):
//	    print(x.f1[k], x.s1[k], x.f2[k])
func Usecase3() *ir.Function {
	return ir.Func("usecase3", []string{"x", "N"},
		ir.Range("k", ir.V("N"),
			ir.Println(ir.Col(ir.V("x"), "f1", ir.V("k")), ir.Col(ir.V("x"), "s1", ir.V("k")), ir.Col(ir.V("x"), "f2", ir.V("k"))),
		),
	)
}

// Usecase4 mixes a view with a column read:
//
//	for k in range(N):
//	    y = x[k]
//	    print(y.f1, x.s1[k], y.f2)
func Usecase4() *ir.Function {
	return ir.Func("usecase4", []string{"x", "N"},
		ir.Range("k", ir.V("N"),
			ir.Let("y", ir.At(ir.V("x"), ir.V("k"))),
			ir.Println(ir.Get(ir.V("y"), "f1"), ir.Col(ir.V("x"), "s1", ir.V("k")), ir.Get(ir.V("y"), "f2")),
		),
	)
}

// Usecase5 indexes the array once per field:
//
//	for k in range(N):
//	    print(x[k].f1, x.s1[k], x[k].f2)
func Usecase5() *ir.Function {
	return ir.Func("usecase5", []string{"x", "N"},
		ir.Range("k", ir.V("N"),
			ir.Println(ir.Get(ir.At(ir.V("x"), ir.V("k")), "f1"), ir.Col(ir.V("x"), "s1", ir.V("k")), ir.Get(ir.At(ir.V("x"), ir.V("k")), "f2")),
		),
	)
}

// Printer is one of the printing use cases.
type Printer struct {
	Name string
	Fn   func() *ir.Function
}

// Printers lists usecases 2 to 5 in order.
func Printers() []Printer {
	return []Printer{
		{"usecase2", Usecase2},
		{"usecase3", Usecase3},
		{"usecase4", Usecase4},
		{"usecase5", Usecase5},
	}
}
