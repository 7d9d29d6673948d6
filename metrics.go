package cachejax

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts cache decisions per logical path. A nil *Metrics records
// nothing.
type Metrics struct {
	cacheHits   *prometheus.CounterVec
	cacheMisses *prometheus.CounterVec
	modelErrors *prometheus.CounterVec
}

func NewMetrics(registry prometheus.Registerer) *Metrics {
	return &Metrics{
		cacheHits: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "cachejax_cache_hits_total",
				Help: "Total number of requests answered from the model",
			},
			[]string{"path"},
		),
		cacheMisses: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "cachejax_cache_misses_total",
				Help: "Total number of requests dispatched to the transport",
			},
			[]string{"path"},
		),
		modelErrors: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "cachejax_model_errors_total",
				Help: "Total number of failed model reads",
			},
			[]string{"path"},
		),
	}
}

func (m *Metrics) RecordCacheHit(path string) {
	if m == nil {
		return
	}
	m.cacheHits.WithLabelValues(path).Inc()
}

func (m *Metrics) RecordCacheMiss(path string) {
	if m == nil {
		return
	}
	m.cacheMisses.WithLabelValues(path).Inc()
}

func (m *Metrics) RecordModelError(path string) {
	if m == nil {
		return
	}
	m.modelErrors.WithLabelValues(path).Inc()
}
