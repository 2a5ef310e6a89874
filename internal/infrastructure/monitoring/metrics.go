package monitoring

import (
	"time"

	"github.com/GriffinCanCode/Sentinel/backend/internal/breaker"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Breaker metrics
	BreakerState       *prometheus.GaugeVec
	BreakerTransitions *prometheus.CounterVec
	BreakerRequests    *prometheus.CounterVec

	// Failure metrics
	FailuresRecorded *prometheus.CounterVec

	// Recovery metrics
	RecoveryAttempts *prometheus.CounterVec
	RecoveryDuration *prometheus.HistogramVec

	// System metrics
	Uptime    prometheus.Gauge
	startTime time.Time
}

// NewMetrics creates a new metrics collector
func NewMetrics() *Metrics {
	m := &Metrics{
		startTime: time.Now(),

		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentinel_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sentinel_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),

		BreakerState: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "sentinel_breaker_state",
				Help: "Circuit breaker state (0=closed, 1=half_open, 2=open)",
			},
			[]string{"breaker"},
		),
		BreakerTransitions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentinel_breaker_transitions_total",
				Help: "Total number of circuit breaker state transitions",
			},
			[]string{"breaker", "from", "to"},
		),
		BreakerRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentinel_breaker_requests_total",
				Help: "Guarded requests by outcome",
			},
			[]string{"breaker", "outcome"},
		),

		FailuresRecorded: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentinel_failures_recorded_total",
				Help: "Failures recorded by the dispatcher",
			},
			[]string{"category", "severity"},
		),

		RecoveryAttempts: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentinel_recovery_attempts_total",
				Help: "Recovery attempts by strategy and outcome",
			},
			[]string{"strategy", "success"},
		),
		RecoveryDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sentinel_recovery_duration_seconds",
				Help:    "Recovery attempt duration in seconds",
				Buckets: []float64{.01, .05, .1, .5, 1, 5, 10, 30, 60},
			},
			[]string{"strategy"},
		),

		Uptime: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "sentinel_uptime_seconds",
				Help: "Service uptime in seconds",
			},
		),
	}

	// Start uptime updater
	go m.updateUptime()

	return m
}

// updateUptime continuously updates the uptime metric
func (m *Metrics) updateUptime() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for range ticker.C {
		m.Uptime.Set(time.Since(m.startTime).Seconds())
	}
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordTransition records a breaker state transition and its new state
func (m *Metrics) RecordTransition(name string, from, to breaker.State) {
	m.BreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
	m.BreakerState.WithLabelValues(name).Set(stateValue(to))
}

// RecordBreakerRequest records a guarded request outcome
// (success, failure, rejected)
func (m *Metrics) RecordBreakerRequest(name, outcome string) {
	m.BreakerRequests.WithLabelValues(name, outcome).Inc()
}

// RecordFailure records a dispatched failure
func (m *Metrics) RecordFailure(category, severity string) {
	m.FailuresRecorded.WithLabelValues(category, severity).Inc()
}

// RecordRecovery records a recovery attempt
func (m *Metrics) RecordRecovery(strategy string, success bool, duration time.Duration) {
	outcome := "false"
	if success {
		outcome = "true"
	}
	m.RecoveryAttempts.WithLabelValues(strategy, outcome).Inc()
	m.RecoveryDuration.WithLabelValues(strategy).Observe(duration.Seconds())
}

// BreakerObserver adapts the metrics collector to the breaker's observer
// contract
func (m *Metrics) BreakerObserver() breaker.Observer {
	return breaker.ObserverFunc(func(name string, from, to breaker.State) {
		m.RecordTransition(name, from, to)
	})
}

func stateValue(s breaker.State) float64 {
	switch s {
	case breaker.StateClosed:
		return 0
	case breaker.StateHalfOpen:
		return 1
	default:
		return 2
	}
}
