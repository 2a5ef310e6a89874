package breaker

import "time"

// Metrics holds a breaker's monotonic counters and consecutive run lengths.
// Counters only reset on an explicit breaker Reset.
type Metrics struct {
	TotalRequests        uint64    `json:"total_requests"`
	SuccessfulRequests   uint64    `json:"successful_requests"`
	FailedRequests       uint64    `json:"failed_requests"`
	RejectedRequests     uint64    `json:"rejected_requests"`
	StateTransitions     uint64    `json:"state_transitions"`
	ConsecutiveFailures  int       `json:"current_consecutive_failures"`
	ConsecutiveSuccesses int       `json:"current_consecutive_successes"`
	LastFailureTime      time.Time `json:"last_failure_time,omitzero"`
	LastSuccessTime      time.Time `json:"last_success_time,omitzero"`
}

// FailureRate returns the failed share of all requests as a percentage
func (m Metrics) FailureRate() float64 {
	if m.TotalRequests == 0 {
		return 0
	}
	return float64(m.FailedRequests) / float64(m.TotalRequests) * 100
}

// SuccessRate returns the successful share of all requests as a percentage
func (m Metrics) SuccessRate() float64 {
	if m.TotalRequests == 0 {
		return 0
	}
	return float64(m.SuccessfulRequests) / float64(m.TotalRequests) * 100
}

// HistoryEntry records one guarded call inside the monitoring window
type HistoryEntry struct {
	Timestamp    time.Time     `json:"timestamp"`
	Success      bool          `json:"success"`
	Duration     time.Duration `json:"duration_ms"`
	State        State         `json:"state"`
	ErrorType    string        `json:"error_type,omitempty"`
	ErrorMessage string        `json:"error_message,omitempty"`
}

// Status is a point-in-time snapshot of a breaker for the query surface
type Status struct {
	Name               string     `json:"name"`
	State              State      `json:"state"`
	Metrics            Metrics    `json:"metrics"`
	FailureThreshold   int        `json:"failure_threshold"`
	SuccessThreshold   int        `json:"success_threshold"`
	OpenTimeoutSecs    float64    `json:"timeout_seconds"`
	MonitoringWindow   float64    `json:"monitoring_window_seconds"`
	WindowFailureRate  float64    `json:"window_failure_rate"`
	NextAttemptTime    *time.Time `json:"next_attempt_time,omitempty"`
	TimeUntilRetrySecs float64    `json:"time_until_next_attempt_seconds"`
	Healthy            bool       `json:"healthy"`
}
