package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics covers availability checks, sweeps, generation and trademark
// lookups. A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Availability check outcomes by result: "available", "taken", "error"
	AvailabilityChecks *prometheus.CounterVec

	// Oracle latency by oracle kind
	OracleLatency *prometheus.HistogramVec

	// Cache hits/misses of the availability cache
	CacheLookups *prometheus.CounterVec

	SweepsTotal prometheus.Counter

	// Generation calls by operation and result
	Generations *prometheus.CounterVec

	TrademarkChecks *prometheus.CounterVec

	ActiveSessions prometheus.Gauge
}

// New registers every metric with reg. Pass prometheus.NewRegistry() in
// tests to avoid duplicate registration.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		AvailabilityChecks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "namebender_availability_checks_total",
			Help: "Domain availability checks by outcome",
		}, []string{"outcome"}),

		OracleLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "namebender_oracle_duration_seconds",
			Help:    "Duration of availability oracle calls",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"oracle"}),

		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "namebender_availability_cache_lookups_total",
			Help: "Availability cache lookups by result",
		}, []string{"result"}), // result: "hit", "miss", "error"

		SweepsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "namebender_sweeps_total",
			Help: "Completed check-all sweeps",
		}),

		Generations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "namebender_generations_total",
			Help: "Name generation calls by operation and result",
		}, []string{"operation", "result"}),

		TrademarkChecks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "namebender_trademark_checks_total",
			Help: "Trademark checks by status",
		}, []string{"status"}),

		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "namebender_active_sessions",
			Help: "Brainstorm sessions currently held in memory",
		}),
	}
}

func (m *Metrics) IncrementCheck(outcome string) {
	if m != nil {
		m.AvailabilityChecks.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) ObserveOracleLatency(oracle string, d time.Duration) {
	if m != nil {
		m.OracleLatency.WithLabelValues(oracle).Observe(d.Seconds())
	}
}

func (m *Metrics) IncrementCacheLookup(result string) {
	if m != nil {
		m.CacheLookups.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) IncrementSweeps() {
	if m != nil {
		m.SweepsTotal.Inc()
	}
}

func (m *Metrics) IncrementGeneration(operation, result string) {
	if m != nil {
		m.Generations.WithLabelValues(operation, result).Inc()
	}
}

func (m *Metrics) IncrementTrademark(status string) {
	if m != nil {
		m.TrademarkChecks.WithLabelValues(status).Inc()
	}
}

func (m *Metrics) SetActiveSessions(n int) {
	if m != nil {
		m.ActiveSessions.Set(float64(n))
	}
}
