package record

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultHit  = "hit"
	resultMiss = "miss"
)

// Metrics holds the registry's Prometheus collectors.
type Metrics struct {
	internTotal *prometheus.CounterVec
	types       prometheus.Gauge
}

// NewMetrics creates the registry collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		internTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recjit_registry_intern_total",
				Help: "Record type intern calls by result",
			},
			[]string{"result"},
		),
		types: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "recjit_registry_types",
				Help: "Distinct record types held by the registry",
			},
		),
	}
}

func (m *Metrics) recordIntern(hit bool, total int) {
	if m == nil {
		return
	}
	if hit {
		m.internTotal.WithLabelValues(resultHit).Inc()
		return
	}
	m.internTotal.WithLabelValues(resultMiss).Inc()
	m.types.Set(float64(total))
}
