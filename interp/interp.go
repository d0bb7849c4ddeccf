package interp

import (
	"io"

	"github.com/wippyai/recjit/dtype"
	"github.com/wippyai/recjit/errors"
	"github.com/wippyai/recjit/ir"
	"github.com/wippyai/recjit/record"
)

// Run checks fn against argTypes and evaluates it with args. Printed lines
// are written to stdout.
func Run(fn *ir.Function, argTypes []ir.Type, args []any, stdout io.Writer) (ir.Result, error) {
	info, err := ir.Check(fn, argTypes)
	if err != nil {
		return ir.Result{}, err
	}
	return Eval(info, args, stdout)
}

// Eval evaluates an already checked function.
func Eval(info *ir.Info, args []any, stdout io.Writer) (ir.Result, error) {
	if err := ir.CheckArgs(info.Params, args); err != nil {
		return ir.Result{}, err
	}
	if stdout == nil {
		stdout = io.Discard
	}

	fr := &frame{
		info:   info,
		out:    stdout,
		locals: make([]value, len(info.Locals)),
	}
	for i, t := range info.Params {
		var v value
		switch t := t.(type) {
		case *ir.ArrayType:
			v.arr, _ = ir.ArrayArg(t, args[i], i)
		case *ir.RecordType:
			v.view, _ = ir.RecordArg(t, args[i], i)
		case *ir.ScalarType:
			v.s, _ = ir.ScalarArg(t, args[i], i)
		}
		v.bound = true
		fr.locals[i] = v
	}

	if err := fr.stmts(info.Fn.Body); err != nil {
		return ir.Result{}, err
	}
	return fr.result, nil
}

// value is one evaluated local or expression. Exactly one of arr, view
// and s is meaningful, selected by the checked type.
type value struct {
	arr   *record.Array
	view  record.View
	s     dtype.Scalar
	bound bool
}

type frame struct {
	info     *ir.Info
	out      io.Writer
	locals   []value
	line     []byte
	result   ir.Result
	returned bool
}

func (fr *frame) stmts(list []ir.Stmt) error {
	for _, s := range list {
		if err := fr.stmt(s); err != nil {
			return err
		}
		if fr.returned {
			return nil
		}
	}
	return nil
}

func (fr *frame) stmt(s ir.Stmt) error {
	switch s := s.(type) {
	case *ir.Assign:
		v, err := fr.expr(s.Value)
		if err != nil {
			return err
		}
		if _, ok := fr.info.TypeOf(s.Value).(*ir.ScalarType); ok {
			v.s = promote(v.s)
		}
		fr.bind(s.Name, v)
		return nil

	case *ir.SetField:
		x, err := fr.expr(s.X)
		if err != nil {
			return err
		}
		v, err := fr.expr(s.Value)
		if err != nil {
			return err
		}
		return x.view.Set(s.Name, v.s)

	case *ir.SetColumn:
		x, err := fr.expr(s.X)
		if err != nil {
			return err
		}
		i, err := fr.index(s.Index, x.arr)
		if err != nil {
			return err
		}
		v, err := fr.expr(s.Value)
		if err != nil {
			return err
		}
		col, err := x.arr.Column(s.Name)
		if err != nil {
			return err
		}
		return col.Set(i, v.s)

	case *ir.For:
		stop, err := fr.expr(s.Stop)
		if err != nil {
			return err
		}
		n := toInt64(stop.s)
		for k := int64(0); k < n; k++ {
			fr.bind(s.Var, value{s: dtype.Int(dtype.Int64, k)})
			if err := fr.stmts(s.Body); err != nil {
				return err
			}
			if fr.returned {
				return nil
			}
		}
		return nil

	case *ir.Print:
		fr.line = fr.line[:0]
		for i, a := range s.Args {
			v, err := fr.expr(a)
			if err != nil {
				return err
			}
			if i > 0 {
				fr.line = append(fr.line, ' ')
			}
			fr.line = v.s.Kind().Format(fr.line, v.s)
		}
		fr.line = append(fr.line, '\n')
		if _, err := fr.out.Write(fr.line); err != nil {
			return errors.Wrap(errors.PhaseRuntime, errors.KindOutput, err, "write output")
		}
		return nil

	case *ir.Return:
		fr.returned = true
		if s.Value == nil {
			return nil
		}
		v, err := fr.expr(s.Value)
		if err != nil {
			return err
		}
		fr.result = ir.Result{Value: promote(v.s), Valid: true}
		return nil

	default:
		return errors.Unsupported(errors.PhaseRuntime, "statement")
	}
}

// bind assigns a local and marks it bound.
func (fr *frame) bind(name string, v value) {
	_, i, _ := fr.info.Local(name)
	v.bound = true
	fr.locals[i] = v
}

func (fr *frame) expr(e ir.Expr) (value, error) {
	switch e := e.(type) {
	case *ir.Var:
		_, i, ok := fr.info.Local(e.Name)
		if !ok || !fr.locals[i].bound {
			return value{}, errors.New(errors.PhaseRuntime, errors.KindUnboundLocal).
				Path(fr.info.Fn.Name, e.Name).
				Detail("local %q referenced before assignment", e.Name).
				Build()
		}
		return fr.locals[i], nil

	case *ir.IntConst:
		return value{s: dtype.Int(dtype.Int64, e.Value)}, nil

	case *ir.FloatConst:
		return value{s: dtype.Float(dtype.Float64, e.Value)}, nil

	case *ir.Binary:
		x, err := fr.expr(e.X)
		if err != nil {
			return value{}, err
		}
		y, err := fr.expr(e.Y)
		if err != nil {
			return value{}, err
		}
		return value{s: arith(e.Op, x.s, y.s)}, nil

	case *ir.Len:
		x, err := fr.expr(e.X)
		if err != nil {
			return value{}, err
		}
		return value{s: dtype.Int(dtype.Int64, int64(x.arr.Len()))}, nil

	case *ir.Index:
		x, err := fr.expr(e.X)
		if err != nil {
			return value{}, err
		}
		i, err := fr.index(e.Index, x.arr)
		if err != nil {
			return value{}, err
		}
		view, err := x.arr.At(i)
		if err != nil {
			return value{}, err
		}
		return value{view: view}, nil

	case *ir.Field:
		x, err := fr.expr(e.X)
		if err != nil {
			return value{}, err
		}
		s, err := x.view.Get(e.Name)
		if err != nil {
			return value{}, err
		}
		return value{s: s}, nil

	case *ir.ColumnIndex:
		x, err := fr.expr(e.X)
		if err != nil {
			return value{}, err
		}
		i, err := fr.index(e.Index, x.arr)
		if err != nil {
			return value{}, err
		}
		col, err := x.arr.Column(e.Name)
		if err != nil {
			return value{}, err
		}
		s, err := col.Get(i)
		if err != nil {
			return value{}, err
		}
		return value{s: s}, nil

	default:
		return value{}, errors.Unsupported(errors.PhaseRuntime, "expression")
	}
}

// index evaluates e as an element index of arr. Negative indices are out
// of range.
func (fr *frame) index(e ir.Expr, arr *record.Array) (int, error) {
	v, err := fr.expr(e)
	if err != nil {
		return 0, err
	}
	i, n := toInt64(v.s), int64(arr.Len())
	if i < 0 || i >= n {
		return 0, errors.IndexOutOfRange(errors.PhaseRuntime, i, n)
	}
	return int(i), nil
}
