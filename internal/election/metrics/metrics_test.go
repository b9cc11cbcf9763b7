package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Record(t *testing.T) {
	m := NewWithRegisterer(prometheus.NewRegistry())

	m.IncrementLookupOutcome("election", OutcomeFound)
	m.IncrementLookupOutcome("election", OutcomeFound)
	m.IncrementLookupOutcome("election-pm", OutcomeNoData)
	m.IncrementComparison("match")
	m.ObserveLookupLatency("election", 120*time.Millisecond)
	m.ObserveCheckLatency(300 * time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.LookupOutcome.WithLabelValues("election", OutcomeFound)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LookupOutcome.WithLabelValues("election-pm", OutcomeNoData)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ComparisonOutcome.WithLabelValues("match")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.LookupLatency))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncrementLookupOutcome("election", OutcomeFailed)
		m.IncrementComparison("mismatch")
		m.ObserveLookupLatency("election", time.Second)
		m.ObserveCheckLatency(time.Second)
	})
}
