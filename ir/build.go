package ir

// Constructors for building functions in Go.

func V(name string) *Var             { return &Var{Name: name} }
func I(v int64) *IntConst            { return &IntConst{Value: v} }
func F(v float64) *FloatConst        { return &FloatConst{Value: v} }
func Add(x, y Expr) *Binary          { return &Binary{Op: OpAdd, X: x, Y: y} }
func Sub(x, y Expr) *Binary          { return &Binary{Op: OpSub, X: x, Y: y} }
func Mul(x, y Expr) *Binary          { return &Binary{Op: OpMul, X: x, Y: y} }
func LenOf(x Expr) *Len              { return &Len{X: x} }
func At(x, index Expr) *Index        { return &Index{X: x, Index: index} }
func Get(x Expr, name string) *Field { return &Field{X: x, Name: name} }

func Col(x Expr, name string, index Expr) *ColumnIndex {
	return &ColumnIndex{X: x, Name: name, Index: index}
}

func Let(name string, v Expr) *Assign { return &Assign{Name: name, Value: v} }

func Put(x Expr, name string, v Expr) *SetField {
	return &SetField{X: x, Name: name, Value: v}
}

func PutCol(x Expr, name string, index, v Expr) *SetColumn {
	return &SetColumn{X: x, Name: name, Index: index, Value: v}
}

func Range(v string, stop Expr, body ...Stmt) *For {
	return &For{Var: v, Stop: stop, Body: body}
}

func Println(args ...Expr) *Print { return &Print{Args: args} }
func Ret(v Expr) *Return          { return &Return{Value: v} }

// Func returns a function with the given parameters and body.
func Func(name string, params []string, body ...Stmt) *Function {
	return &Function{Name: name, Params: params, Body: body}
}
