package jit

import (
	"context"
	"io"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/recjit/dtype"
	"github.com/wippyai/recjit/errors"
	"github.com/wippyai/recjit/internal/wasmgen"
)

const hostModule = "recjit"

// Host function indices. Generated modules import them in this order.
const (
	hostPrintInt = iota
	hostPrintFloat
	hostPrintBytes
	hostPrintSep
	hostPrintEnd
	hostIndexError
	numHostFuncs
)

type hostFunc struct {
	name   string
	params []wasmgen.ValType
	fn     api.GoModuleFunc
}

var hostFuncs = [numHostFuncs]hostFunc{
	hostPrintInt:   {"print_int", []wasmgen.ValType{wasmgen.ValI32, wasmgen.ValI64}, printInt},
	hostPrintFloat: {"print_float", []wasmgen.ValType{wasmgen.ValI32, wasmgen.ValF64}, printFloat},
	hostPrintBytes: {"print_bytes", []wasmgen.ValType{wasmgen.ValI32, wasmgen.ValI32}, printBytes},
	hostPrintSep:   {"print_sep", nil, printSep},
	hostPrintEnd:   {"print_end", nil, printEnd},
	hostIndexError: {"index_error", []wasmgen.ValType{wasmgen.ValI64, wasmgen.ValI64}, indexError},
}

// instantiateHost registers the host module every generated module imports.
func instantiateHost(ctx context.Context, r wazero.Runtime) error {
	builder := r.NewHostModuleBuilder(hostModule)
	for _, h := range hostFuncs {
		params := make([]api.ValueType, len(h.params))
		for i, p := range h.params {
			params[i] = api.ValueType(p)
		}
		builder = builder.NewFunctionBuilder().
			WithGoModuleFunction(h.fn, params, nil).
			Export(h.name)
	}
	_, err := builder.Instantiate(ctx)
	return err
}

// callState is the per-call output channel and error slot. Host functions
// find it in the call context.
type callState struct {
	out  io.Writer
	err  error
	trap *errors.Error
	line []byte
}

type stateKey struct{}

func withState(ctx context.Context, st *callState) context.Context {
	return context.WithValue(ctx, stateKey{}, st)
}

func stateFrom(ctx context.Context) *callState {
	st, _ := ctx.Value(stateKey{}).(*callState)
	return st
}

func (st *callState) fail(err error) {
	if st.err == nil {
		st.err = err
	}
}

func printInt(ctx context.Context, _ api.Module, stack []uint64) {
	st := stateFrom(ctx)
	if st == nil {
		return
	}
	k, ok := dtype.Numeric(dtype.Kind(api.DecodeI32(stack[0])))
	if !ok {
		st.fail(errors.InvalidInput(errors.PhaseRuntime, "print_int: bad kind"))
		return
	}
	st.line = k.Format(st.line, dtype.Uint(k, stack[1]))
}

func printFloat(ctx context.Context, _ api.Module, stack []uint64) {
	st := stateFrom(ctx)
	if st == nil {
		return
	}
	k, ok := dtype.Numeric(dtype.Kind(api.DecodeI32(stack[0])))
	if !ok || !k.IsFloat() {
		st.fail(errors.InvalidInput(errors.PhaseRuntime, "print_float: bad kind"))
		return
	}
	st.line = k.Format(st.line, dtype.Float(k, api.DecodeF64(stack[1])))
}

func printBytes(ctx context.Context, mod api.Module, stack []uint64) {
	st := stateFrom(ctx)
	if st == nil {
		return
	}
	addr, n := api.DecodeU32(stack[0]), api.DecodeU32(stack[1])
	b, ok := mod.Memory().Read(addr, n)
	if !ok {
		st.fail(errors.New(errors.PhaseRuntime, errors.KindTrap).
			Detail("print_bytes: [%d, %d) outside memory", addr, uint64(addr)+uint64(n)).
			Build())
		return
	}
	st.line = append(st.line, dtype.TrimZeros(b)...)
}

func printSep(ctx context.Context, _ api.Module, _ []uint64) {
	if st := stateFrom(ctx); st != nil {
		st.line = append(st.line, ' ')
	}
}

func printEnd(ctx context.Context, _ api.Module, _ []uint64) {
	st := stateFrom(ctx)
	if st == nil {
		return
	}
	st.line = append(st.line, '\n')
	if st.err == nil && st.out != nil {
		if _, err := st.out.Write(st.line); err != nil {
			st.fail(errors.Wrap(errors.PhaseRuntime, errors.KindOutput, err, "write output"))
		}
	}
	st.line = st.line[:0]
}

func indexError(ctx context.Context, _ api.Module, stack []uint64) {
	if st := stateFrom(ctx); st != nil {
		st.trap = errors.IndexOutOfRange(errors.PhaseRuntime, int64(stack[0]), int64(stack[1]))
	}
}
