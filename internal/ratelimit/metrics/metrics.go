package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Decisions      *prometheus.CounterVec
	StoreErrors    prometheus.Counter
	FallbackActive prometheus.Gauge
}

func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Decisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "votecheck_ratelimit_decisions_total",
			Help: "Total rate limit decisions by result",
		}, []string{"result"}), // result: "allowed", "denied", "skipped"
		StoreErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "votecheck_ratelimit_store_errors_total",
			Help: "Total errors returned by the primary rate limit store",
		}),
		FallbackActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "votecheck_ratelimit_fallback_active",
			Help: "1 while the in-memory fallback store is serving decisions",
		}),
	}
}

func (m *Metrics) IncrementDecision(result string) {
	if m != nil {
		m.Decisions.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) IncrementStoreErrors() {
	if m != nil {
		m.StoreErrors.Inc()
	}
}

func (m *Metrics) SetFallbackActive(active bool) {
	if m == nil {
		return
	}
	if active {
		m.FallbackActive.Set(1)
		return
	}
	m.FallbackActive.Set(0)
}
