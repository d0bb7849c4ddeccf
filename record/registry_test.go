package record

import (
	"fmt"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/wippyai/recjit/dtype"
)

func TestRegistry_FirstSeenWins(t *testing.T) {
	reg := NewRegistry()

	a := newType([]Field{{Name: "x", Kind: dtype.Int32, Offset: 0}}, 4, 4, false)
	b := newType([]Field{{Name: "x", Kind: dtype.Int32, Offset: 0}}, 4, 4, false)
	if a == b {
		t.Fatal("test needs two distinct instances")
	}

	if got := reg.Intern(a); got != a {
		t.Error("first intern should return the candidate")
	}
	if got := reg.Intern(b); got != a {
		t.Error("second intern should return the first-seen instance")
	}
	if reg.Len() != 1 {
		t.Errorf("Len() = %d, want 1", reg.Len())
	}

	got, ok := reg.Lookup(a.Key())
	if !ok || got != a {
		t.Errorf("Lookup(%q) = %v, %v", a.Key(), got, ok)
	}
	if _, ok := reg.Lookup("{}"); ok {
		t.Error("Lookup of an unknown key should fail")
	}
}

func TestRegistry_DistinguishesStructure(t *testing.T) {
	reg := NewRegistry()
	types := []*Type{
		newType([]Field{{Name: "x", Kind: dtype.Int32}}, 4, 4, false),
		newType([]Field{{Name: "y", Kind: dtype.Int32}}, 4, 4, false),
		newType([]Field{{Name: "x", Kind: dtype.Uint32}}, 4, 4, false),
		newType([]Field{{Name: "x", Kind: dtype.Int32}}, 4, 1, true),
		newType([]Field{{Name: "x", Kind: dtype.Int32}, {Name: "z", Kind: dtype.Int8, Offset: 4, Index: 1}}, 8, 4, false),
	}
	for _, typ := range types {
		if got := reg.Intern(typ); got != typ {
			t.Errorf("Intern(%s) returned %s", typ, got)
		}
	}
	if reg.Len() != len(types) {
		t.Errorf("Len() = %d, want %d", reg.Len(), len(types))
	}
	for i, typ := range reg.Types() {
		if typ != types[i] {
			t.Errorf("Types()[%d] = %s, want %s", i, typ, types[i])
		}
	}
}

func TestRegistry_ConcurrentIntern(t *testing.T) {
	reg := NewRegistry()
	conv := NewConverter(reg)

	const workers = 32
	results := make([]*Type, workers)
	var g errgroup.Group
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			d := dtype.Aligned(fixtureFields()...)
			if i%2 == 1 {
				d = dtype.Packed(fixtureFields()...)
			}
			typ, err := conv.Convert(d)
			results[i] = typ
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("Convert failed: %v", err)
	}

	for i := 2; i < workers; i++ {
		if results[i] != results[i%2] {
			t.Fatalf("worker %d got a different instance for an equal structure", i)
		}
	}
	if reg.Len() != 2 {
		t.Errorf("Len() = %d, want 2", reg.Len())
	}
}

func TestRegistry_Metrics(t *testing.T) {
	promReg := prometheus.NewRegistry()
	reg := NewRegistry(WithMetrics(NewMetrics(promReg)))
	conv := NewConverter(reg)

	for i := 0; i < 3; i++ {
		conv.MustConvert(dtype.Packed(fixtureFields()...))
	}

	mfs, err := promReg.Gather()
	if err != nil {
		t.Fatalf("unable to gather prom metrics: %v", err)
	}

	values := map[string]float64{}
	for _, mf := range mfs {
		for _, m := range mf.GetMetric() {
			name := mf.GetName()
			for _, l := range m.GetLabel() {
				name += fmt.Sprintf("{%s=%s}", l.GetName(), l.GetValue())
			}
			switch {
			case m.GetCounter() != nil:
				values[name] = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				values[name] = m.GetGauge().GetValue()
			}
		}
	}

	want := map[string]float64{
		"recjit_registry_intern_total{result=hit}":  2,
		"recjit_registry_intern_total{result=miss}": 1,
		"recjit_registry_types":                     1,
	}
	for k, v := range want {
		if values[k] != v {
			t.Errorf("%s = %v, want %v", k, values[k], v)
		}
	}
}

func TestDefault(t *testing.T) {
	var wg sync.WaitGroup
	got := make([]*Registry, 8)
	for i := range got {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got[i] = Default()
		}()
	}
	wg.Wait()
	for i := range got {
		if got[i] != got[0] || got[i] == nil {
			t.Fatal("Default() should return one process-wide registry")
		}
	}
	if NewConverter(nil).Registry() != Default() {
		t.Error("NewConverter(nil) should use the default registry")
	}
}
