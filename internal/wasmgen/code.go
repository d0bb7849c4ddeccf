package wasmgen

// Code accumulates one instruction sequence.
type Code struct {
	w Writer
}

// NewCode returns an empty instruction sequence.
func NewCode() *Code {
	return &Code{}
}

// Bytes returns the encoded instructions.
func (c *Code) Bytes() []byte {
	return c.w.Bytes()
}

func (c *Code) Len() int {
	return c.w.Len()
}

// Append splices pre-encoded instructions.
func (c *Code) Append(code []byte) *Code {
	c.w.WriteBytes(code)
	return c
}

// Op emits a bare opcode.
func (c *Code) Op(op byte) *Code {
	c.w.Byte(op)
	return c
}

// PrefixedOp emits a 0xFC-prefixed opcode.
func (c *Code) PrefixedOp(sub uint32) *Code {
	c.w.Byte(OpPrefixFC)
	c.w.WriteU32(sub)
	return c
}

func (c *Code) I32Const(v int32) *Code {
	c.w.Byte(OpI32Const)
	c.w.WriteS32(v)
	return c
}

func (c *Code) I64Const(v int64) *Code {
	c.w.Byte(OpI64Const)
	c.w.WriteS64(v)
	return c
}

func (c *Code) F64Const(v float64) *Code {
	c.w.Byte(OpF64Const)
	c.w.WriteF64(v)
	return c
}

func (c *Code) LocalGet(idx uint32) *Code {
	c.w.Byte(OpLocalGet)
	c.w.WriteU32(idx)
	return c
}

func (c *Code) LocalSet(idx uint32) *Code {
	c.w.Byte(OpLocalSet)
	c.w.WriteU32(idx)
	return c
}

func (c *Code) LocalTee(idx uint32) *Code {
	c.w.Byte(OpLocalTee)
	c.w.WriteU32(idx)
	return c
}

func (c *Code) Call(funcIdx uint32) *Code {
	c.w.Byte(OpCall)
	c.w.WriteU32(funcIdx)
	return c
}

// Mem emits a load or store with its memarg. alignLog2 is the alignment
// hint as a power of two exponent.
func (c *Code) Mem(op byte, alignLog2, offset uint32) *Code {
	c.w.Byte(op)
	c.w.WriteU32(alignLog2)
	c.w.WriteU32(offset)
	return c
}

// MemoryCopy emits memory.copy on memory 0 (dst, src, n on the stack).
func (c *Code) MemoryCopy() *Code {
	c.PrefixedOp(OpMemoryCopy)
	c.w.Byte(0)
	c.w.Byte(0)
	return c
}

// Block opens a void block.
func (c *Code) Block() *Code {
	c.w.Byte(OpBlock)
	c.w.Byte(BlockTypeVoid)
	return c
}

// Loop opens a void loop.
func (c *Code) Loop() *Code {
	c.w.Byte(OpLoop)
	c.w.Byte(BlockTypeVoid)
	return c
}

// If opens a void if.
func (c *Code) If() *Code {
	c.w.Byte(OpIf)
	c.w.Byte(BlockTypeVoid)
	return c
}

func (c *Code) Br(depth uint32) *Code {
	c.w.Byte(OpBr)
	c.w.WriteU32(depth)
	return c
}

func (c *Code) BrIf(depth uint32) *Code {
	c.w.Byte(OpBrIf)
	c.w.WriteU32(depth)
	return c
}

func (c *Code) End() *Code {
	c.w.Byte(OpEnd)
	return c
}

// Func is one function body under construction. Params occupy the first
// local indices; locals added with Local follow them.
type Func struct {
	Type   FuncType
	Body   *Code
	locals []ValType
}

// NewFunc returns an empty function of the given signature.
func NewFunc(ft FuncType) *Func {
	return &Func{Type: ft, Body: NewCode()}
}

// Local declares a new local and returns its index.
func (f *Func) Local(t ValType) uint32 {
	f.locals = append(f.locals, t)
	return uint32(len(f.Type.Params) + len(f.locals) - 1)
}

// Locals returns the declared non-parameter locals.
func (f *Func) Locals() []ValType {
	return f.locals
}

// encodeBody writes the locals vector (run-length grouped) and the body.
func (f *Func) encodeBody() []byte {
	w := NewWriter()

	type run struct {
		t ValType
		n uint32
	}
	var runs []run
	for _, t := range f.locals {
		if len(runs) > 0 && runs[len(runs)-1].t == t {
			runs[len(runs)-1].n++
			continue
		}
		runs = append(runs, run{t: t, n: 1})
	}

	w.WriteU32(uint32(len(runs)))
	for _, r := range runs {
		w.WriteU32(r.n)
		w.Byte(byte(r.t))
	}
	w.WriteBytes(f.Body.Bytes())
	w.Byte(OpEnd)
	return w.Bytes()
}
