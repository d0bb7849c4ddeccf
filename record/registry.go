package record

import (
	"sync"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"
)

// Registry interns record types by structure. The first instance seen for a
// structure is returned for every later equal candidate. Entries are never
// removed.
type Registry struct {
	buckets map[uint64][]*Type
	metrics *Metrics
	logger  *zap.Logger
	order   []*Type
	mu      sync.Mutex
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithMetrics attaches Prometheus collectors to the registry.
func WithMetrics(m *Metrics) RegistryOption {
	return func(r *Registry) { r.metrics = m }
}

// WithLogger overrides the package logger for this registry.
func WithLogger(l *zap.Logger) RegistryOption {
	return func(r *Registry) { r.logger = l }
}

// NewRegistry returns an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{buckets: make(map[uint64][]*Type)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// Default returns the process-wide registry.
func Default() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// Intern returns the canonical instance structurally equal to t, registering
// t if none exists.
func (r *Registry) Intern(t *Type) *Type {
	h := xxhash.Sum64String(t.key)

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.buckets[h] {
		if existing.Equal(t) {
			r.metrics.recordIntern(true, len(r.order))
			r.log().Debug("record type hit", zap.String("type", t.key))
			return existing
		}
	}

	r.buckets[h] = append(r.buckets[h], t)
	r.order = append(r.order, t)
	r.metrics.recordIntern(false, len(r.order))
	r.log().Debug("record type registered",
		zap.String("type", t.key),
		zap.Int("registered", len(r.order)),
	)
	return t
}

// Lookup returns the canonical instance for a structural key, if registered.
func (r *Registry) Lookup(key string) (*Type, bool) {
	h := xxhash.Sum64String(key)

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.buckets[h] {
		if existing.key == key {
			return existing, true
		}
	}
	return nil, false
}

// Len returns the number of distinct types registered.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order)
}

// Types returns the registered types in registration order.
func (r *Registry) Types() []*Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Type, len(r.order))
	copy(out, r.order)
	return out
}

func (r *Registry) log() *zap.Logger {
	if r.logger != nil {
		return r.logger
	}
	return Logger()
}
