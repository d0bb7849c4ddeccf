package jit

import (
	"context"
	"io"
	"sort"
	"unsafe"

	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/recjit/dtype"
	"github.com/wippyai/recjit/errors"
	"github.com/wippyai/recjit/ir"
)

const (
	// scratchSize bytes at address 0 are zeroed before each call. Record
	// locals that were never assigned address this region.
	scratchSize = 64
	stageAlign  = 16
	pageSize    = 65536
)

var zeroScratch [scratchSize]byte

// EntryPoint is a compiled function. It is safe for concurrent use; every
// call runs in its own pooled instance.
type EntryPoint struct {
	compiler *Compiler
	info     *ir.Info
	pool     *instancePool
	size     int
}

// Info returns the checked function the entry point was compiled from.
func (ep *EntryPoint) Info() *ir.Info {
	return ep.info
}

// ModuleSize returns the size of the generated wasm module in bytes.
func (ep *EntryPoint) ModuleSize() int {
	return ep.size
}

// region is caller storage copied into linear memory for one call.
type region struct {
	data   []byte
	offset uint32
}

// stager holds argument storage placed in linear memory after the scratch
// region. Overlapping storage, such as a view into an array or a sub-array
// wrapping another array's bytes, shares one region so aliasing survives
// staging.
type stager struct {
	regions []region
	end     uint64
}

func addr(b []byte) uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(b)))
}

// stageStorage places storage and returns the linear-memory offset of each
// entry. Entries are merged by address into disjoint spans; every span is
// staged once. Empty storage maps to offset 0.
func stageStorage(storage [][]byte) (*stager, []uint32) {
	st := &stager{end: scratchSize}
	offsets := make([]uint32, len(storage))

	order := make([]int, 0, len(storage))
	for i, b := range storage {
		if len(b) > 0 {
			order = append(order, i)
		}
	}
	sort.SliceStable(order, func(a, b int) bool {
		return addr(storage[order[a]]) < addr(storage[order[b]])
	})

	for j := 0; j < len(order); {
		first := storage[order[j]]
		lo := addr(first)
		hi := lo + uintptr(len(first))

		k := j + 1
		for ; k < len(order); k++ {
			b := storage[order[k]]
			if addr(b) >= hi {
				break
			}
			if e := addr(b) + uintptr(len(b)); e > hi {
				hi = e
			}
		}

		// Overlapping slices share a backing array, so the span is
		// addressable from the lowest one.
		off := st.add(unsafe.Slice(unsafe.SliceData(first), hi-lo))
		for _, i := range order[j:k] {
			offsets[i] = off + uint32(addr(storage[i])-lo)
		}
		j = k
	}
	return st, offsets
}

func (s *stager) add(data []byte) uint32 {
	off := (s.end + stageAlign - 1) &^ (stageAlign - 1)
	s.regions = append(s.regions, region{data: data, offset: uint32(off)})
	s.end = off + uint64(len(data))
	return uint32(off)
}

// Call runs the function. args follow the parameter order: *record.Array
// for arrays, record.View for records, Go integers or floats for scalars.
// Arrays and records are updated in place. Printed lines go to stdout.
func (ep *EntryPoint) Call(ctx context.Context, stdout io.Writer, args ...any) (ir.Result, error) {
	m := ep.compiler.metrics
	if err := ir.CheckArgs(ep.info.Params, args); err != nil {
		m.observeCall(outcomeError)
		return ir.Result{}, err
	}

	params, st := ep.stage(args)
	if st.end > uint64(ep.maxBytes()) {
		m.observeCall(outcomeError)
		return ir.Result{}, errors.InvalidInput(errors.PhaseRuntime, "arguments exceed the instance memory limit")
	}

	inst, err := ep.pool.get(ctx)
	if err != nil {
		m.observeCall(outcomeError)
		return ir.Result{}, err
	}

	if err := load(inst.mem, st); err != nil {
		ep.pool.discard(ctx, inst)
		m.observeCall(outcomeError)
		return ir.Result{}, err
	}

	cs := &callState{out: stdout}
	res, callErr := inst.fn.Call(withState(ctx, cs), params...)

	// Copy back even on failure: mutations before a trap stay visible, as
	// they would in the interpreter.
	for _, r := range st.regions {
		if b, ok := inst.mem.Read(r.offset, uint32(len(r.data))); ok {
			copy(r.data, b)
		}
	}

	switch {
	case cs.trap != nil:
		ep.pool.discard(ctx, inst)
		m.observeCall(outcomeIndexError)
		return ir.Result{}, cs.trap
	case callErr != nil:
		ep.pool.discard(ctx, inst)
		m.observeCall(outcomeTrap)
		return ir.Result{}, errors.Trap(callErr)
	}
	ep.pool.put(ctx, inst)

	if cs.err != nil {
		m.observeCall(outcomeError)
		return ir.Result{}, cs.err
	}
	m.observeCall(outcomeOK)
	return ep.result(res), nil
}

func (ep *EntryPoint) stage(args []any) ([]uint64, *stager) {
	storage := make([][]byte, len(args))
	for i, t := range ep.info.Params {
		switch t := t.(type) {
		case *ir.ArrayType:
			arr, _ := ir.ArrayArg(t, args[i], i)
			storage[i] = arr.Bytes()
		case *ir.RecordType:
			v, _ := ir.RecordArg(t, args[i], i)
			storage[i] = v.Bytes()
		}
	}
	st, offsets := stageStorage(storage)

	params := make([]uint64, 0, len(args)+1)
	for i, t := range ep.info.Params {
		switch t := t.(type) {
		case *ir.ArrayType:
			arr, _ := ir.ArrayArg(t, args[i], i)
			params = append(params, api.EncodeU32(offsets[i]), api.EncodeI64(int64(arr.Len())))
		case *ir.RecordType:
			params = append(params, api.EncodeU32(offsets[i]))
		case *ir.ScalarType:
			s, _ := ir.ScalarArg(t, args[i], i)
			params = append(params, s.Bits())
		}
	}
	return params, st
}

func (ep *EntryPoint) maxBytes() uint64 {
	pages := uint64(ep.compiler.cfg.MemoryLimitPages)
	if pages == 0 {
		pages = 65536
	}
	return pages * pageSize
}

// load grows memory to fit the staged regions, clears the scratch region
// and copies argument storage in.
func load(mem api.Memory, st *stager) error {
	if size := uint64(mem.Size()); st.end > size {
		pages := (st.end - size + pageSize - 1) / pageSize
		if _, ok := mem.Grow(uint32(pages)); !ok {
			return errors.New(errors.PhaseRuntime, errors.KindInvalidInput).
				Detail("cannot grow memory to %d bytes", st.end).
				Build()
		}
	}
	mem.Write(0, zeroScratch[:])
	for _, r := range st.regions {
		if !mem.Write(r.offset, r.data) {
			return errors.New(errors.PhaseRuntime, errors.KindInvalidInput).
				Detail("cannot stage %d bytes at %d", len(r.data), r.offset).
				Build()
		}
	}
	return nil
}

func (ep *EntryPoint) result(res []uint64) ir.Result {
	if !ep.info.HasResult() || len(res) < 2 || api.DecodeI32(res[0]) == 0 {
		return ir.Result{}
	}
	switch k := scalarKind(ep.info.Result); {
	case k.IsFloat():
		return ir.Result{Value: dtype.Float(dtype.Float64, api.DecodeF64(res[1])), Valid: true}
	case k == dtype.Uint64:
		return ir.Result{Value: dtype.Uint(dtype.Uint64, res[1]), Valid: true}
	default:
		return ir.Result{Value: dtype.Int(dtype.Int64, int64(res[1])), Valid: true}
	}
}
