package ir

import (
	"github.com/wippyai/recjit/dtype"
	"github.com/wippyai/recjit/errors"
)

// Local is a function-scoped variable. Parameters come first, in order.
type Local struct {
	Type  Type
	Name  string
	Param bool
}

// Info holds the results of checking one function against argument types.
type Info struct {
	Fn *Function

	// Types maps every expression to its type. Field reads carry the
	// field kind; arithmetic carries the promoted kind.
	Types map[Expr]Type

	// Params are the argument types, in order.
	Params []Type

	// Locals lists parameters, then locals in order of first assignment.
	Locals []Local

	// Result is the return type, or nil when no value is returned.
	Result Type

	locals map[string]int
}

// TypeOf returns the checked type of e.
func (in *Info) TypeOf(e Expr) Type {
	return in.Types[e]
}

// Local looks up a local by name and returns its index in Locals.
func (in *Info) Local(name string) (Local, int, bool) {
	i, ok := in.locals[name]
	if !ok {
		return Local{}, -1, false
	}
	return in.Locals[i], i, true
}

// Key identifies the function and argument types.
func (in *Info) Key() string {
	return in.Fn.Name + "(" + TypeKey(in.Params) + ")"
}

type checker struct {
	info     *Info
	returned bool
}

// Check resolves the type of every expression in fn given argument types.
// It enforces arithmetic promotion, field existence, byte-string usage and
// consistent local and return types.
func Check(fn *Function, argTypes []Type) (*Info, error) {
	if len(argTypes) != len(fn.Params) {
		return nil, errors.New(errors.PhaseCompile, errors.KindInvalidInput).
			Path(fn.Name).
			Detail("function takes %d arguments, got %d types", len(fn.Params), len(argTypes)).
			Build()
	}

	c := &checker{info: &Info{
		Fn:     fn,
		Types:  make(map[Expr]Type),
		Params: argTypes,
		locals: make(map[string]int),
	}}

	for i, name := range fn.Params {
		if _, dup := c.info.locals[name]; dup {
			return nil, errors.New(errors.PhaseCompile, errors.KindInvalidInput).
				Path(fn.Name, name).
				Detail("duplicate parameter %q", name).
				Build()
		}
		t := argTypes[i]
		if k, ok := kindOf(t); ok {
			if k.IsBytes() {
				return nil, errors.TypeMismatch(errors.PhaseCompile, []string{fn.Name, name}, "byte string parameters are not supported")
			}
			t = Scalar(k.Promoted())
		}
		c.info.locals[name] = len(c.info.Locals)
		c.info.Locals = append(c.info.Locals, Local{Name: name, Type: t, Param: true})
	}

	if err := c.stmts(fn.Body); err != nil {
		return nil, err
	}
	return c.info, nil
}

func (c *checker) stmts(list []Stmt) error {
	for _, s := range list {
		if err := c.stmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (c *checker) stmt(s Stmt) error {
	switch s := s.(type) {
	case *Assign:
		t, err := c.expr(s.Value)
		if err != nil {
			return err
		}
		if k, ok := kindOf(t); ok {
			if k.IsBytes() {
				return errors.TypeMismatch(errors.PhaseCompile, []string{s.Name}, "byte string %s cannot be bound to a local", k)
			}
			t = Scalar(k.Promoted())
		}
		return c.bind(s.Name, t)

	case *SetField:
		t, err := c.expr(s.X)
		if err != nil {
			return err
		}
		rt, ok := t.(*RecordType)
		if !ok {
			return errors.TypeMismatch(errors.PhaseCompile, []string{s.Name}, "field assignment on %s", t)
		}
		f, ok := rt.Rec.Field(s.Name)
		if !ok {
			return errors.UnknownField(errors.PhaseLower, rt.Rec.String(), s.Name)
		}
		return c.assignable(s.Name, f.Kind, s.Value)

	case *SetColumn:
		t, err := c.expr(s.X)
		if err != nil {
			return err
		}
		at, ok := t.(*ArrayType)
		if !ok {
			return errors.TypeMismatch(errors.PhaseCompile, []string{s.Name}, "column assignment on %s", t)
		}
		f, ok := at.Elem.Field(s.Name)
		if !ok {
			return errors.UnknownField(errors.PhaseLower, at.Elem.String(), s.Name)
		}
		if err := c.integer(s.Index, s.Name); err != nil {
			return err
		}
		return c.assignable(s.Name, f.Kind, s.Value)

	case *For:
		if err := c.integer(s.Stop, s.Var); err != nil {
			return err
		}
		if err := c.bind(s.Var, Int); err != nil {
			return err
		}
		return c.stmts(s.Body)

	case *Print:
		for _, a := range s.Args {
			t, err := c.expr(a)
			if err != nil {
				return err
			}
			if _, ok := kindOf(t); !ok {
				return errors.Unsupported(errors.PhaseCompile, "printing "+t.String())
			}
		}
		return nil

	case *Return:
		var t Type
		if s.Value != nil {
			vt, err := c.expr(s.Value)
			if err != nil {
				return err
			}
			k, ok := kindOf(vt)
			if !ok || k.IsBytes() {
				return errors.Unsupported(errors.PhaseCompile, "returning "+vt.String())
			}
			t = Scalar(k.Promoted())
		}
		return c.result(t)

	default:
		return errors.Unsupported(errors.PhaseCompile, "statement")
	}
}

func (c *checker) bind(name string, t Type) error {
	if i, ok := c.info.locals[name]; ok {
		if !SameType(c.info.Locals[i].Type, t) {
			return errors.TypeMismatch(errors.PhaseCompile, []string{name},
				"local is %s, cannot rebind to %s", c.info.Locals[i].Type, t)
		}
		return nil
	}
	c.info.locals[name] = len(c.info.Locals)
	c.info.Locals = append(c.info.Locals, Local{Name: name, Type: t})
	return nil
}

func (c *checker) result(t Type) error {
	if !c.returned {
		c.returned = true
		c.info.Result = t
		return nil
	}
	prev := c.info.Result
	if (prev == nil) != (t == nil) || (prev != nil && !SameType(prev, t)) {
		return errors.TypeMismatch(errors.PhaseCompile, []string{c.info.Fn.Name},
			"inconsistent return types %v and %v", prev, t)
	}
	return nil
}

// assignable checks that value can be stored into a field of kind k.
func (c *checker) assignable(name string, k dtype.ScalarKind, value Expr) error {
	t, err := c.expr(value)
	if err != nil {
		return err
	}
	vk, ok := kindOf(t)
	if !ok {
		return errors.TypeMismatch(errors.PhaseCompile, []string{name}, "cannot store %s into %s field", t, k)
	}
	if k.IsBytes() || vk.IsBytes() {
		if k != vk {
			return errors.TypeMismatch(errors.PhaseCompile, []string{name}, "cannot store %s into %s field", vk, k)
		}
	}
	return nil
}

func (c *checker) integer(e Expr, name string) error {
	t, err := c.expr(e)
	if err != nil {
		return err
	}
	k, ok := kindOf(t)
	if !ok || !k.IsInteger() {
		return errors.TypeMismatch(errors.PhaseCompile, []string{name}, "index must be an integer, got %s", t)
	}
	return nil
}

func (c *checker) expr(e Expr) (Type, error) {
	t, err := c.exprType(e)
	if err != nil {
		return nil, err
	}
	c.info.Types[e] = t
	return t, nil
}

func (c *checker) exprType(e Expr) (Type, error) {
	switch e := e.(type) {
	case *Var:
		l, _, ok := c.info.Local(e.Name)
		if !ok {
			return nil, errors.New(errors.PhaseCompile, errors.KindUnboundLocal).
				Path(e.Name).
				Detail("local %q read before assignment", e.Name).
				Build()
		}
		return l.Type, nil

	case *IntConst:
		return Int, nil

	case *FloatConst:
		return Float, nil

	case *Binary:
		xt, err := c.expr(e.X)
		if err != nil {
			return nil, err
		}
		yt, err := c.expr(e.Y)
		if err != nil {
			return nil, err
		}
		xk, xok := kindOf(xt)
		yk, yok := kindOf(yt)
		if !xok || !yok || xk.IsBytes() || yk.IsBytes() {
			return nil, errors.TypeMismatch(errors.PhaseCompile, nil, "unsupported operands %s %s %s", xt, e.Op, yt)
		}
		return Scalar(ArithKind(xk, yk)), nil

	case *Len:
		t, err := c.expr(e.X)
		if err != nil {
			return nil, err
		}
		if _, ok := t.(*ArrayType); !ok {
			return nil, errors.TypeMismatch(errors.PhaseCompile, nil, "len of %s", t)
		}
		return Int, nil

	case *Index:
		t, err := c.expr(e.X)
		if err != nil {
			return nil, err
		}
		at, ok := t.(*ArrayType)
		if !ok {
			return nil, errors.TypeMismatch(errors.PhaseCompile, nil, "indexing %s", t)
		}
		if err := c.integer(e.Index, "index"); err != nil {
			return nil, err
		}
		return RecordOf(at.Elem), nil

	case *Field:
		t, err := c.expr(e.X)
		if err != nil {
			return nil, err
		}
		switch xt := t.(type) {
		case *RecordType:
			f, ok := xt.Rec.Field(e.Name)
			if !ok {
				return nil, errors.UnknownField(errors.PhaseLower, xt.Rec.String(), e.Name)
			}
			return Scalar(f.Kind), nil
		case *ArrayType:
			return nil, errors.TypeMismatch(errors.PhaseCompile, []string{e.Name}, "column %q must be indexed", e.Name)
		default:
			return nil, errors.TypeMismatch(errors.PhaseCompile, []string{e.Name}, "field access on %s", t)
		}

	case *ColumnIndex:
		t, err := c.expr(e.X)
		if err != nil {
			return nil, err
		}
		at, ok := t.(*ArrayType)
		if !ok {
			return nil, errors.TypeMismatch(errors.PhaseCompile, []string{e.Name}, "column access on %s", t)
		}
		f, ok := at.Elem.Field(e.Name)
		if !ok {
			return nil, errors.UnknownField(errors.PhaseLower, at.Elem.String(), e.Name)
		}
		if err := c.integer(e.Index, e.Name); err != nil {
			return nil, err
		}
		return Scalar(f.Kind), nil

	default:
		return nil, errors.Unsupported(errors.PhaseCompile, "expression")
	}
}

// ArithKind returns the kind binary arithmetic on x and y is carried out
// in: f64 if either is a float, u64 if both promote to u64, i64 otherwise.
func ArithKind(x, y dtype.ScalarKind) dtype.ScalarKind {
	px, py := x.Promoted(), y.Promoted()
	switch {
	case px.IsFloat() || py.IsFloat():
		return dtype.Float64
	case px == dtype.Uint64 && py == dtype.Uint64:
		return dtype.Uint64
	default:
		return dtype.Int64
	}
}

// HasResult reports whether the function returns a value.
func (in *Info) HasResult() bool {
	return in.Result != nil
}
