package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Lookup outcomes.
const (
	OutcomeFound       = "found"
	OutcomeNoData      = "no_data"
	OutcomeFailed      = "failed"
	OutcomeUnavailable = "unavailable"
)

// Metrics provides observability for registry lookups and cross-checks.
type Metrics struct {
	// Registry round-trip latency by source
	LookupLatency *prometheus.HistogramVec

	// Lookup outcomes by source and outcome
	LookupOutcome *prometheus.CounterVec

	// Cross-check results by comparison status
	ComparisonOutcome *prometheus.CounterVec

	// Overall check latency, both registries included
	CheckLatency prometheus.Histogram
}

// New creates a Metrics instance registered with the default registerer.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers the election metrics with reg.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		LookupLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "votecheck_registry_lookup_duration_seconds",
			Help:    "Duration of upstream registry lookups by source",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"source"}), // source: "election", "election-pm"

		LookupOutcome: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "votecheck_registry_lookups_total",
			Help: "Total registry lookups by source and outcome",
		}, []string{"source", "outcome"}),

		ComparisonOutcome: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "votecheck_comparisons_total",
			Help: "Total cross-registry comparisons by status",
		}, []string{"status"}),

		CheckLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "votecheck_check_duration_seconds",
			Help:    "Duration of a full two-registry check",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		}),
	}
}

// ObserveLookupLatency records the duration of one registry lookup.
func (m *Metrics) ObserveLookupLatency(source string, d time.Duration) {
	if m != nil {
		m.LookupLatency.WithLabelValues(source).Observe(d.Seconds())
	}
}

// IncrementLookupOutcome records how a lookup ended.
func (m *Metrics) IncrementLookupOutcome(source, outcome string) {
	if m != nil {
		m.LookupOutcome.WithLabelValues(source, outcome).Inc()
	}
}

// IncrementComparison records a comparison status.
func (m *Metrics) IncrementComparison(status string) {
	if m != nil {
		m.ComparisonOutcome.WithLabelValues(status).Inc()
	}
}

// ObserveCheckLatency records the total duration of a check.
func (m *Metrics) ObserveCheckLatency(d time.Duration) {
	if m != nil {
		m.CheckLatency.Observe(d.Seconds())
	}
}
