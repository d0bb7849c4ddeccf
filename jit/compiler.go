package jit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/tetratelabs/wazero"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/wippyai/recjit/errors"
	"github.com/wippyai/recjit/ir"
)

// Config holds configuration for a Compiler.
type Config struct {
	// Logger overrides the package logger.
	Logger *zap.Logger

	// Registerer receives the compiler's metrics. Nil disables metrics.
	Registerer prometheus.Registerer

	// MemoryLimitPages sets the maximum memory per instance in pages (64KB each).
	// 0 means the wazero default (65536 pages = 4GB).
	MemoryLimitPages uint32

	// MaxIdleInstances bounds the pooled instances kept per entry point.
	// 0 means 16.
	MaxIdleInstances int

	// BoundsCheck emits an index check on every array access. Out of range
	// indices fail the call with IndexOutOfRange. Without it an out of
	// range index reads or writes whatever lies at the computed address.
	BoundsCheck bool
}

// Compiler compiles functions into isolated wasm entry points. Entry points
// are cached by function and argument types.
type Compiler struct {
	runtime wazero.Runtime
	logger  *zap.Logger
	metrics *metrics
	entries map[string]*EntryPoint
	group   singleflight.Group
	cfg     Config
	mu      sync.RWMutex
	closed  bool
}

// New creates a compiler with its own wazero runtime.
func New(ctx context.Context, cfg Config) (*Compiler, error) {
	runtimeCfg := wazero.NewRuntimeConfig()
	if cfg.MemoryLimitPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}
	r := wazero.NewRuntimeWithConfig(ctx, runtimeCfg)

	if err := instantiateHost(ctx, r); err != nil {
		return nil, multierr.Append(errors.Instantiation(err), r.Close(ctx))
	}

	return &Compiler{
		runtime: r,
		logger:  cfg.Logger,
		metrics: newMetrics(cfg.Registerer),
		entries: make(map[string]*EntryPoint),
		cfg:     cfg,
	}, nil
}

func (c *Compiler) log() *zap.Logger {
	if c.logger != nil {
		return c.logger
	}
	return Logger()
}

// Compile returns the entry point for fn called with argTypes, compiling it
// on first use. Concurrent compiles of the same key share one compilation.
func (c *Compiler) Compile(ctx context.Context, fn *ir.Function, argTypes ...ir.Type) (*EntryPoint, error) {
	key := fmt.Sprintf("%p(%s)", fn, ir.TypeKey(argTypes))

	if ep := c.lookup(key); ep != nil {
		return ep, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		if ep := c.lookup(key); ep != nil {
			return ep, nil
		}

		start := time.Now()
		ep, err := c.compile(ctx, fn, argTypes)
		elapsed := time.Since(start)
		c.metrics.observeCompile(err, elapsed)
		if err != nil {
			c.log().Debug("compile failed", zap.String("function", fn.Name), zap.Error(err))
			return nil, err
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.closed {
			_ = ep.pool.close(ctx)
			return nil, errors.InvalidInput(errors.PhaseCompile, "compiler is closed")
		}
		c.entries[key] = ep
		c.log().Debug("compiled",
			zap.String("function", ep.info.Key()),
			zap.Bool("bounds_check", c.cfg.BoundsCheck),
			zap.Duration("elapsed", elapsed),
		)
		return ep, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*EntryPoint), nil
}

func (c *Compiler) lookup(key string) *EntryPoint {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entries[key]
}

func (c *Compiler) compile(ctx context.Context, fn *ir.Function, argTypes []ir.Type) (*EntryPoint, error) {
	info, err := ir.Check(fn, argTypes)
	if err != nil {
		return nil, err
	}

	wasm, err := generate(info, c.cfg)
	if err != nil {
		return nil, err
	}

	compiled, err := c.runtime.CompileModule(ctx, wasm)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseCompile, errors.KindInvalidData, err, "compile module "+info.Key())
	}

	return &EntryPoint{
		compiler: c,
		info:     info,
		pool:     newInstancePool(c.runtime, compiled, c.cfg.MaxIdleInstances),
		size:     len(wasm),
	}, nil
}

// Len returns the number of cached entry points.
func (c *Compiler) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close releases every entry point and the runtime.
func (c *Compiler) Close(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	entries := c.entries
	c.entries = nil
	c.mu.Unlock()

	var err error
	for _, ep := range entries {
		err = multierr.Append(err, ep.pool.close(ctx))
	}
	return multierr.Append(err, c.runtime.Close(ctx))
}
