package jit

import (
	"context"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/multierr"

	"github.com/wippyai/recjit/errors"
)

const (
	// Idle instances kept per entry point. Extra instances are closed on put.
	poolMaxIdle     = 16
	poolInitialIdle = 4
)

// instance is one isolated module instance with its own linear memory.
type instance struct {
	mod api.Module
	fn  api.Function
	mem api.Memory
}

// instancePool hands out instances so concurrent calls never share memory.
type instancePool struct {
	runtime  wazero.Runtime
	compiled wazero.CompiledModule
	idle     []*instance
	max      int
	mu       sync.Mutex
	closed   bool
}

func newInstancePool(r wazero.Runtime, compiled wazero.CompiledModule, maxIdle int) *instancePool {
	if maxIdle <= 0 {
		maxIdle = poolMaxIdle
	}
	return &instancePool{
		runtime:  r,
		compiled: compiled,
		max:      maxIdle,
		idle:     make([]*instance, 0, min(maxIdle, poolInitialIdle)),
	}
}

func (p *instancePool) get(ctx context.Context) (*instance, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, errors.InvalidInput(errors.PhaseRuntime, "entry point is closed")
	}
	if n := len(p.idle); n > 0 {
		inst := p.idle[n-1]
		p.idle = p.idle[:n-1]
		p.mu.Unlock()
		return inst, nil
	}
	p.mu.Unlock()

	// anonymous for parallel instantiation
	mod, err := p.runtime.InstantiateModule(ctx, p.compiled, wazero.NewModuleConfig().WithName(""))
	if err != nil {
		return nil, errors.Instantiation(err)
	}
	inst := &instance{mod: mod, fn: mod.ExportedFunction(entryName), mem: mod.Memory()}
	if inst.fn == nil || inst.mem == nil {
		_ = mod.Close(ctx)
		return nil, errors.NotFound(errors.PhaseRuntime, "export", entryName)
	}
	return inst, nil
}

// put returns inst for reuse, or closes it when the pool is full or closed.
func (p *instancePool) put(ctx context.Context, inst *instance) {
	p.mu.Lock()
	if p.closed || len(p.idle) >= p.max {
		p.mu.Unlock()
		_ = inst.mod.Close(ctx)
		return
	}
	p.idle = append(p.idle, inst)
	p.mu.Unlock()
}

// discard closes an instance that must not be reused.
func (p *instancePool) discard(ctx context.Context, inst *instance) {
	_ = inst.mod.Close(ctx)
}

func (p *instancePool) close(ctx context.Context) error {
	p.mu.Lock()
	idle := p.idle
	p.idle = nil
	p.closed = true
	p.mu.Unlock()

	var err error
	for _, inst := range idle {
		err = multierr.Append(err, inst.mod.Close(ctx))
	}
	return multierr.Append(err, p.compiled.Close(ctx))
}

// idleCount reports the number of pooled instances.
func (p *instancePool) idleCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.idle)
}
