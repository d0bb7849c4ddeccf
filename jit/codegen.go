package jit

import (
	"github.com/wippyai/recjit/dtype"
	"github.com/wippyai/recjit/errors"
	"github.com/wippyai/recjit/internal/wasmgen"
	"github.com/wippyai/recjit/ir"
	"github.com/wippyai/recjit/lower"
	"github.com/wippyai/recjit/record"
)

const (
	entryName  = "run"
	memoryName = "memory"
)

// slot holds the wasm locals backing one ir local. Arrays use base and
// count; records use base as the address; scalars use base as the value.
type slot struct {
	base  uint32
	count uint32
}

type generator struct {
	info   *ir.Info
	f      *wasmgen.Func
	host   [numHostFuncs]uint32
	slots  []slot
	temp   uint32
	bounds bool
}

// generate lowers a checked function into a module exporting entryName and
// its linear memory. The entry takes arrays as (base i32, count i64),
// records as base i32 and scalars as i64 or f64. If the function returns a
// value the entry returns (valid i32, value).
func generate(info *ir.Info, cfg Config) ([]byte, error) {
	m := wasmgen.NewModule()
	g := &generator{info: info, bounds: cfg.BoundsCheck}
	for i, h := range hostFuncs {
		g.host[i] = m.ImportFunc(hostModule, h.name, wasmgen.FuncType{Params: h.params})
	}

	var ft wasmgen.FuncType
	g.slots = make([]slot, len(info.Locals))
	for i, t := range info.Params {
		n := uint32(len(ft.Params))
		switch t.(type) {
		case *ir.ArrayType:
			ft.Params = append(ft.Params, wasmgen.ValI32, wasmgen.ValI64)
			g.slots[i] = slot{base: n, count: n + 1}
		case *ir.RecordType:
			ft.Params = append(ft.Params, wasmgen.ValI32)
			g.slots[i] = slot{base: n}
		case *ir.ScalarType:
			ft.Params = append(ft.Params, lower.StackType(scalarKind(info.Locals[i].Type)))
			g.slots[i] = slot{base: n}
		}
	}
	if info.HasResult() {
		ft.Results = []wasmgen.ValType{wasmgen.ValI32, lower.StackType(scalarKind(info.Result))}
	}

	g.f = wasmgen.NewFunc(ft)
	for i := len(info.Params); i < len(info.Locals); i++ {
		switch t := info.Locals[i].Type.(type) {
		case *ir.ArrayType:
			g.slots[i] = slot{base: g.f.Local(wasmgen.ValI32), count: g.f.Local(wasmgen.ValI64)}
		case *ir.RecordType:
			g.slots[i] = slot{base: g.f.Local(wasmgen.ValI32)}
		case *ir.ScalarType:
			g.slots[i] = slot{base: g.f.Local(lower.StackType(t.Kind))}
		}
	}
	g.temp = g.f.Local(wasmgen.ValI64)

	if err := g.stmts(info.Fn.Body); err != nil {
		return nil, err
	}
	if info.HasResult() {
		g.f.Body.I32Const(0).Append(zero(scalarKind(info.Result)))
	}

	m.ExportFunc(entryName, m.AddFunc(g.f))
	limits := wasmgen.Limits{Min: 1}
	if cfg.MemoryLimitPages > 0 {
		limits.Max = &cfg.MemoryLimitPages
	}
	m.SetMemory(memoryName, limits)
	return m.Encode(), nil
}

func scalarKind(t ir.Type) dtype.ScalarKind {
	if s, ok := t.(*ir.ScalarType); ok {
		return s.Kind
	}
	return dtype.ScalarKind{}
}

func zero(k dtype.ScalarKind) []byte {
	if k.IsFloat() {
		return wasmgen.NewCode().F64Const(0).Bytes()
	}
	return wasmgen.NewCode().I64Const(0).Bytes()
}

func (g *generator) stmts(list []ir.Stmt) error {
	for _, s := range list {
		if err := g.stmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (g *generator) stmt(s ir.Stmt) error {
	c := g.f.Body

	switch s := s.(type) {
	case *ir.Assign:
		l, i, _ := g.info.Local(s.Name)
		sl := g.slots[i]
		switch t := l.Type.(type) {
		case *ir.ArrayType:
			base, count, _, err := g.array(s.Value)
			if err != nil {
				return err
			}
			c.Append(base.Code).LocalSet(sl.base)
			c.Append(count.Code).LocalSet(sl.count)
		case *ir.RecordType:
			v, err := g.expr(s.Value)
			if err != nil {
				return err
			}
			c.Append(v.Code).LocalSet(sl.base)
		case *ir.ScalarType:
			v, err := g.arith(s.Value)
			if err != nil {
				return err
			}
			c.Append(coerce(v, t.Kind).Code).LocalSet(sl.base)
		}
		return nil

	case *ir.SetField:
		rt := g.info.TypeOf(s.X).(*ir.RecordType)
		f, _ := rt.Rec.Field(s.Name)
		base, err := g.expr(s.X)
		if err != nil {
			return err
		}
		v, err := g.storeValue(s.Value, f.Kind)
		if err != nil {
			return err
		}
		frag, err := lower.LowerFieldAccess(rt.Rec, s.Name, base, lower.Write, v)
		if err != nil {
			return err
		}
		c.Append(frag.Code)
		return nil

	case *ir.SetColumn:
		addr, rec, err := g.column(s.X, s.Name, s.Index)
		if err != nil {
			return err
		}
		v, err := g.storeValue(s.Value, addr.Kind)
		if err != nil {
			return err
		}
		frag, err := lower.LowerScalarAccess(addr.Kind, rec.Packed(), lower.Addr(addr.Code), lower.Write, v)
		if err != nil {
			return err
		}
		c.Append(frag.Code)
		return nil

	case *ir.For:
		stop, err := g.index(s.Stop)
		if err != nil {
			return err
		}
		_, i, _ := g.info.Local(s.Var)
		v := g.slots[i].base
		stopL := g.f.Local(wasmgen.ValI64)
		ctr := g.f.Local(wasmgen.ValI64)

		c.Append(stop.Code).LocalSet(stopL)
		c.I64Const(0).LocalSet(ctr)
		c.Block().Loop()
		c.LocalGet(ctr).LocalGet(stopL).Op(wasmgen.OpI64LtS).Op(wasmgen.OpI32Eqz).BrIf(1)
		c.LocalGet(ctr).LocalSet(v)
		if err := g.stmts(s.Body); err != nil {
			return err
		}
		c.LocalGet(ctr).I64Const(1).Op(wasmgen.OpI64Add).LocalSet(ctr)
		c.Br(0)
		c.End().End()
		return nil

	case *ir.Print:
		for i, a := range s.Args {
			if i > 0 {
				c.Call(g.host[hostPrintSep])
			}
			v, err := g.expr(a)
			if err != nil {
				return err
			}
			switch {
			case v.Kind.IsBytes():
				c.Append(v.Code).I32Const(int32(v.Kind.Len())).Call(g.host[hostPrintBytes])
			case v.Kind.IsFloat():
				c.I32Const(int32(v.Kind.Kind())).Append(lower.Promote(v).Code).Call(g.host[hostPrintFloat])
			default:
				c.I32Const(int32(v.Kind.Kind())).Append(lower.Promote(v).Code).Call(g.host[hostPrintInt])
			}
		}
		c.Call(g.host[hostPrintEnd])
		return nil

	case *ir.Return:
		if s.Value == nil {
			c.Op(wasmgen.OpReturn)
			return nil
		}
		v, err := g.arith(s.Value)
		if err != nil {
			return err
		}
		c.I32Const(1).Append(coerce(v, scalarKind(g.info.Result)).Code).Op(wasmgen.OpReturn)
		return nil

	default:
		return errors.Unsupported(errors.PhaseCompile, "statement")
	}
}

// storeValue evaluates e converted to the stack representation of field
// kind k. Byte strings stay addresses.
func (g *generator) storeValue(e ir.Expr, k dtype.ScalarKind) (lower.Fragment, error) {
	if k.IsBytes() {
		return g.expr(e)
	}
	v, err := g.arith(e)
	if err != nil {
		return lower.Fragment{}, err
	}
	return lower.Narrow(v, k), nil
}

// arith evaluates e promoted to i64, u64 or f64.
func (g *generator) arith(e ir.Expr) (lower.Fragment, error) {
	v, err := g.expr(e)
	if err != nil {
		return lower.Fragment{}, err
	}
	return lower.Promote(v), nil
}

// index evaluates an integer expression as an i64.
func (g *generator) index(e ir.Expr) (lower.Fragment, error) {
	v, err := g.arith(e)
	if err != nil {
		return lower.Fragment{}, err
	}
	return coerce(v, dtype.Int64), nil
}

// coerce converts a promoted value to promoted kind k. i64 and u64 share
// their bits.
func coerce(v lower.Fragment, k dtype.ScalarKind) lower.Fragment {
	if v.Kind == k {
		return v
	}
	if k.IsFloat() || v.Kind.IsFloat() {
		return lower.Narrow(v, k)
	}
	v.Kind = k
	return v
}

func (g *generator) boundsFor(count lower.Fragment) lower.Bounds {
	return lower.Bounds{
		Enabled: g.bounds,
		Count:   count,
		Temp:    g.temp,
		Trap:    g.host[hostIndexError],
	}
}

// array returns the base and count of an array-typed expression.
func (g *generator) array(e ir.Expr) (lower.Fragment, lower.Fragment, *record.Type, error) {
	v, ok := e.(*ir.Var)
	at, isArray := g.info.TypeOf(e).(*ir.ArrayType)
	if !ok || !isArray {
		return lower.Fragment{}, lower.Fragment{}, nil, errors.Unsupported(errors.PhaseCompile, "array expression")
	}
	_, i, _ := g.info.Local(v.Name)
	base := lower.Local(g.slots[i].base, wasmgen.ValI32)
	count := lower.Local(g.slots[i].count, wasmgen.ValI64)
	count.Kind = dtype.Int64
	return base, count, at.Elem, nil
}

// column emits the address of x.name[index]. The result carries the field kind.
func (g *generator) column(x ir.Expr, name string, index ir.Expr) (lower.Fragment, *record.Type, error) {
	base, count, rec, err := g.array(x)
	if err != nil {
		return lower.Fragment{}, nil, err
	}
	idx, err := g.index(index)
	if err != nil {
		return lower.Fragment{}, nil, err
	}
	addr, err := lower.LowerColumnIndex(base, rec, name, idx, g.boundsFor(count))
	if err != nil {
		return lower.Fragment{}, nil, err
	}
	return addr, rec, nil
}

func (g *generator) expr(e ir.Expr) (lower.Fragment, error) {
	switch e := e.(type) {
	case *ir.Var:
		l, i, _ := g.info.Local(e.Name)
		switch t := l.Type.(type) {
		case *ir.RecordType:
			return lower.Addr(wasmgen.NewCode().LocalGet(g.slots[i].base).Bytes()), nil
		case *ir.ScalarType:
			v := lower.Local(g.slots[i].base, lower.StackType(t.Kind))
			v.Kind = t.Kind
			return v, nil
		default:
			return lower.Fragment{}, errors.Unsupported(errors.PhaseCompile, "array used as a value")
		}

	case *ir.IntConst:
		return lower.I64(e.Value), nil

	case *ir.FloatConst:
		return lower.Fragment{
			Code: wasmgen.NewCode().F64Const(e.Value).Bytes(),
			Kind: dtype.Float64,
			Type: wasmgen.ValF64,
		}, nil

	case *ir.Binary:
		x, err := g.arith(e.X)
		if err != nil {
			return lower.Fragment{}, err
		}
		y, err := g.arith(e.Y)
		if err != nil {
			return lower.Fragment{}, err
		}
		k := ir.ArithKind(x.Kind, y.Kind)
		c := wasmgen.NewCode().Append(coerce(x, k).Code).Append(coerce(y, k).Code)
		c.Op(binaryOp(e.Op, k.IsFloat()))
		return lower.Fragment{Code: c.Bytes(), Kind: k, Type: lower.StackType(k)}, nil

	case *ir.Len:
		_, count, _, err := g.array(e.X)
		return count, err

	case *ir.Index:
		base, count, rec, err := g.array(e.X)
		if err != nil {
			return lower.Fragment{}, err
		}
		idx, err := g.index(e.Index)
		if err != nil {
			return lower.Fragment{}, err
		}
		return lower.LowerIndex(base, rec, idx, g.boundsFor(count))

	case *ir.Field:
		rt, ok := g.info.TypeOf(e.X).(*ir.RecordType)
		if !ok {
			return lower.Fragment{}, errors.Unsupported(errors.PhaseCompile, "field access on a non-record")
		}
		base, err := g.expr(e.X)
		if err != nil {
			return lower.Fragment{}, err
		}
		return lower.LowerFieldAccess(rt.Rec, e.Name, base, lower.Read, lower.Fragment{})

	case *ir.ColumnIndex:
		addr, rec, err := g.column(e.X, e.Name, e.Index)
		if err != nil {
			return lower.Fragment{}, err
		}
		if addr.Kind.IsBytes() {
			return addr, nil
		}
		return lower.LowerScalarAccess(addr.Kind, rec.Packed(), lower.Addr(addr.Code), lower.Read, lower.Fragment{})

	default:
		return lower.Fragment{}, errors.Unsupported(errors.PhaseCompile, "expression")
	}
}

func binaryOp(op ir.BinaryOp, float bool) byte {
	switch {
	case float && op == ir.OpAdd:
		return wasmgen.OpF64Add
	case float && op == ir.OpSub:
		return wasmgen.OpF64Sub
	case float:
		return wasmgen.OpF64Mul
	case op == ir.OpAdd:
		return wasmgen.OpI64Add
	case op == ir.OpSub:
		return wasmgen.OpI64Sub
	default:
		return wasmgen.OpI64Mul
	}
}
