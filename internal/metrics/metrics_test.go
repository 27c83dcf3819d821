package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.IncrementCheck("available")
	m.IncrementCheck("available")
	m.IncrementCheck("taken")
	m.IncrementCacheLookup("hit")
	m.IncrementSweeps()
	m.IncrementGeneration("generate", "success")
	m.IncrementTrademark("UNKNOWN")
	m.SetActiveSessions(4)
	m.ObserveOracleLatency("doh", 120*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.AvailabilityChecks.WithLabelValues("available")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AvailabilityChecks.WithLabelValues("taken")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SweepsTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Generations.WithLabelValues("generate", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TrademarkChecks.WithLabelValues("UNKNOWN")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.ActiveSessions))

	count, err := testutil.GatherAndCount(reg, "namebender_oracle_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNilMetricsAreNoOps(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncrementCheck("taken")
		m.ObserveOracleLatency("doh", time.Second)
		m.IncrementCacheLookup("miss")
		m.IncrementSweeps()
		m.IncrementGeneration("quote", "failure")
		m.IncrementTrademark("TAKEN")
		m.SetActiveSessions(1)
	})
}
