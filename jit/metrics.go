package jit

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeOK         = "ok"
	outcomeError      = "error"
	outcomeIndexError = "index_error"
	outcomeTrap       = "trap"
)

type metrics struct {
	compiles       *prometheus.CounterVec
	compileSeconds prometheus.Histogram
	calls          *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	if reg == nil {
		return nil
	}
	factory := promauto.With(reg)
	return &metrics{
		compiles: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recjit_compile_total",
				Help: "Function compilations by result",
			},
			[]string{"result"},
		),
		compileSeconds: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "recjit_compile_duration_seconds",
				Help:    "Time to check, lower and compile one function",
				Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
			},
		),
		calls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recjit_calls_total",
				Help: "Entry point calls by outcome",
			},
			[]string{"outcome"},
		),
	}
}

func (m *metrics) observeCompile(err error, d time.Duration) {
	if m == nil {
		return
	}
	m.compileSeconds.Observe(d.Seconds())
	if err != nil {
		m.compiles.WithLabelValues(outcomeError).Inc()
		return
	}
	m.compiles.WithLabelValues(outcomeOK).Inc()
}

func (m *metrics) observeCall(outcome string) {
	if m == nil {
		return
	}
	m.calls.WithLabelValues(outcome).Inc()
}
