package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for validation-level observability.
// All methods are nil-safe so components can run unmetered in tests.
type Metrics struct {
	// Provider activity
	ValidationAttempts *prometheus.CounterVec
	Failovers          prometheus.Counter
	TokenFetches       *prometheus.CounterVec

	// Persistence and batch processing
	RecordWrites *prometheus.CounterVec
	BatchLines   *prometheus.CounterVec
}

// NewMetrics registers and returns the service metrics on the given
// registerer. Pass prometheus.DefaultRegisterer in production.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ValidationAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "postal_validation_attempts_total",
			Help: "Validation attempts by provider and outcome",
		}, []string{"provider", "outcome"}),
		Failovers: factory.NewCounter(prometheus.CounterOpts{
			Name: "postal_failovers_total",
			Help: "Times the primary provider failed and the secondary was consulted",
		}),
		TokenFetches: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "postal_token_fetches_total",
			Help: "Primary provider token exchanges by status",
		}, []string{"status"}),
		RecordWrites: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "postal_record_writes_total",
			Help: "Result store writes by status",
		}, []string{"status"}),
		BatchLines: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "postal_batch_lines_total",
			Help: "Batch lines processed by status",
		}, []string{"status"}),
	}
}

// Validation records one provider attempt.
func (m *Metrics) Validation(provider, outcome string) {
	if m == nil {
		return
	}
	m.ValidationAttempts.WithLabelValues(provider, outcome).Inc()
}

// Failover records one primary-to-secondary fallback.
func (m *Metrics) Failover() {
	if m == nil {
		return
	}
	m.Failovers.Inc()
}

// TokenFetch records one token exchange attempt.
func (m *Metrics) TokenFetch(status string) {
	if m == nil {
		return
	}
	m.TokenFetches.WithLabelValues(status).Inc()
}

// RecordWrite records one result store write.
func (m *Metrics) RecordWrite(status string) {
	if m == nil {
		return
	}
	m.RecordWrites.WithLabelValues(status).Inc()
}

// BatchLine records one processed batch line.
func (m *Metrics) BatchLine(status string) {
	if m == nil {
		return
	}
	m.BatchLines.WithLabelValues(status).Inc()
}
