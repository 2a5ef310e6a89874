package breaker

import (
	"fmt"
	"sync"
	"time"

	"github.com/GriffinCanCode/Sentinel/backend/internal/infrastructure/logging"
	"go.uber.org/zap"
)

// State represents the circuit breaker state
type State int

const (
	StateClosed State = iota
	StateHalfOpen
	StateOpen
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half_open"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler for the status surface
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Breaker gates calls to one guarded operation. All mutable state is
// serialized under a single mutex; counting an outcome and evaluating the
// resulting transition are atomic as a unit.
type Breaker struct {
	name   string
	config Config
	logger *logging.Logger

	mu             sync.Mutex
	state          State
	metrics        Metrics
	history        []HistoryEntry
	nextAttempt    time.Time // set iff state == StateOpen
	probesInFlight int
	observers      []Observer
}

// New creates a circuit breaker in the CLOSED state
func New(name string, config Config, logger *logging.Logger) *Breaker {
	b := &Breaker{
		name:   name,
		config: config.normalize(),
		logger: logger,
		state:  StateClosed,
	}
	b.logger.Info("circuit breaker initialized",
		zap.String("breaker", name),
		zap.Stringer("state", b.state),
	)
	return b
}

// Name returns the breaker name
func (b *Breaker) Name() string {
	return b.name
}

// AddObserver registers a transition observer. Observers fire synchronously
// in registration order on every transition.
func (b *Breaker) AddObserver(o Observer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.observers = append(b.observers, o)
}

// Execute runs the guarded operation if the breaker admits it.
//
// Rejected calls fail with a *CircuitOpenError without invoking the
// operation. Faults raised by the operation are re-raised unchanged;
// whether they count toward breaker statistics depends on Config.IsExpected.
func (b *Breaker) Execute(op func() (interface{}, error)) (interface{}, error) {
	probe, err := b.admit()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result, opErr := op()
	b.record(probe, opErr, time.Since(start))
	return result, opErr
}

// State returns the current state, applying the OPEN timeout lazily so a
// query after the timeout observes HALF_OPEN just as an admission would.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.maybeProbe(time.Now())
	return b.state
}

// Metrics returns a copy of the current metrics
func (b *Breaker) Metrics() Metrics {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.metrics
}

// admit decides whether a call may proceed. The probe flag reports whether
// the call was admitted while HALF_OPEN and holds a probe slot.
func (b *Breaker) admit() (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	b.maybeProbe(now)

	switch b.state {
	case StateClosed:
		return false, nil
	case StateHalfOpen:
		if b.config.HalfOpenMaxProbes > 0 && b.probesInFlight >= b.config.HalfOpenMaxProbes {
			b.metrics.RejectedRequests++
			return false, &CircuitOpenError{Name: b.name, State: b.state}
		}
		b.probesInFlight++
		return true, nil
	default:
		b.metrics.RejectedRequests++
		return false, &CircuitOpenError{Name: b.name, State: b.state}
	}
}

// maybeProbe applies the OPEN -> HALF_OPEN timeout transition. Caller holds
// the lock.
func (b *Breaker) maybeProbe(now time.Time) {
	if b.state == StateOpen && !b.nextAttempt.IsZero() && !now.Before(b.nextAttempt) {
		b.transition(StateHalfOpen)
	}
}

// record books one completed call and evaluates the transition rule for its
// outcome.
func (b *Breaker) record(probe bool, err error, duration time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if probe && b.probesInFlight > 0 {
		b.probesInFlight--
	}

	if err == nil {
		b.onSuccess(duration)
		return
	}

	if b.config.IsExpected != nil && !b.config.IsExpected(err) {
		b.logger.Debug("ignoring unexpected fault type",
			zap.String("breaker", b.name),
			zap.String("error_type", fmt.Sprintf("%T", err)),
		)
		return
	}

	b.onFailure(err, duration)
}

func (b *Breaker) onSuccess(duration time.Duration) {
	b.metrics.TotalRequests++
	b.metrics.SuccessfulRequests++
	b.metrics.ConsecutiveSuccesses++
	b.metrics.ConsecutiveFailures = 0
	b.metrics.LastSuccessTime = time.Now()

	b.appendHistory(HistoryEntry{
		Timestamp: b.metrics.LastSuccessTime,
		Success:   true,
		Duration:  duration,
		State:     b.state,
	})

	if b.state == StateHalfOpen && b.metrics.ConsecutiveSuccesses >= b.config.SuccessThreshold {
		b.transition(StateClosed)
	}
}

func (b *Breaker) onFailure(err error, duration time.Duration) {
	b.metrics.TotalRequests++
	b.metrics.FailedRequests++
	b.metrics.ConsecutiveFailures++
	b.metrics.ConsecutiveSuccesses = 0
	b.metrics.LastFailureTime = time.Now()

	b.appendHistory(HistoryEntry{
		Timestamp:    b.metrics.LastFailureTime,
		Success:      false,
		Duration:     duration,
		State:        b.state,
		ErrorType:    fmt.Sprintf("%T", err),
		ErrorMessage: err.Error(),
	})

	switch b.state {
	case StateClosed:
		if b.metrics.ConsecutiveFailures >= b.config.FailureThreshold {
			b.transition(StateOpen)
		}
	case StateHalfOpen:
		b.transition(StateOpen)
	}

	b.logger.Warn("failure recorded",
		zap.String("breaker", b.name),
		zap.Stringer("state", b.state),
		zap.Error(err),
	)
}

// appendHistory prunes entries older than the monitoring window, then
// appends. Caller holds the lock.
func (b *Breaker) appendHistory(entry HistoryEntry) {
	cutoff := entry.Timestamp.Add(-b.config.MonitoringWindow)
	kept := b.history[:0]
	for _, e := range b.history {
		if !e.Timestamp.Before(cutoff) {
			kept = append(kept, e)
		}
	}
	b.history = append(kept, entry)
}

// transition applies a state change and notifies observers. Caller holds
// the lock.
func (b *Breaker) transition(to State) {
	if b.state == to {
		return
	}

	from := b.state
	b.state = to
	b.metrics.StateTransitions++
	b.probesInFlight = 0

	switch to {
	case StateOpen:
		b.nextAttempt = time.Now().Add(b.config.OpenTimeout)
	case StateClosed:
		b.metrics.ConsecutiveFailures = 0
		b.metrics.ConsecutiveSuccesses = 0
		b.nextAttempt = time.Time{}
	default:
		b.nextAttempt = time.Time{}
	}

	b.logger.Info("circuit breaker state changed",
		zap.String("breaker", b.name),
		zap.Stringer("from", from),
		zap.Stringer("to", to),
	)

	for _, o := range b.observers {
		b.notify(o, from, to)
	}
}

// notify invokes a single observer inside an isolating boundary
func (b *Breaker) notify(o Observer, from, to State) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("state change observer panicked",
				zap.String("breaker", b.name),
				zap.Any("panic", r),
			)
		}
	}()
	o.OnTransition(b.name, from, to)
}

// ForceOpen forces the breaker OPEN regardless of recorded outcomes
func (b *Breaker) ForceOpen() {
	b.force(StateOpen)
}

// ForceClose forces the breaker CLOSED
func (b *Breaker) ForceClose() {
	b.force(StateClosed)
}

// ForceHalfOpen forces the breaker HALF_OPEN
func (b *Breaker) ForceHalfOpen() {
	b.force(StateHalfOpen)
}

func (b *Breaker) force(to State) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.transition(to)
	b.logger.Warn("circuit breaker state forced",
		zap.String("breaker", b.name),
		zap.Stringer("state", to),
	)
}

// Reset restores the breaker to its initial CLOSED state with zeroed
// metrics and empty history. Idempotent; does not notify observers.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.state = StateClosed
	b.metrics = Metrics{}
	b.history = nil
	b.nextAttempt = time.Time{}
	b.probesInFlight = 0

	b.logger.Info("circuit breaker reset", zap.String("breaker", b.name))
}

// Status returns a point-in-time snapshot for the query surface
func (b *Breaker) Status() Status {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	status := Status{
		Name:              b.name,
		State:             b.state,
		Metrics:           b.metrics,
		FailureThreshold:  b.config.FailureThreshold,
		SuccessThreshold:  b.config.SuccessThreshold,
		OpenTimeoutSecs:   b.config.OpenTimeout.Seconds(),
		MonitoringWindow:  b.config.MonitoringWindow.Seconds(),
		WindowFailureRate: b.windowFailureRate(now),
		Healthy:           b.healthy(),
	}

	if !b.nextAttempt.IsZero() {
		next := b.nextAttempt
		status.NextAttemptTime = &next
		if remaining := next.Sub(now); remaining > 0 {
			status.TimeUntilRetrySecs = remaining.Seconds()
		}
	}

	return status
}

// RecentHistory returns up to limit history entries, newest first
func (b *Breaker) RecentHistory(limit int) []HistoryEntry {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := len(b.history)
	if limit > 0 && limit < n {
		n = limit
	}

	out := make([]HistoryEntry, n)
	for i := 0; i < n; i++ {
		out[i] = b.history[len(b.history)-1-i]
	}
	return out
}

// IsHealthy reports false when the breaker is OPEN or the overall failure
// rate exceeds 50%
func (b *Breaker) IsHealthy() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.healthy()
}

// healthy evaluates the health rule. Caller holds the lock.
func (b *Breaker) healthy() bool {
	if b.state == StateOpen {
		return false
	}
	return b.metrics.FailureRate() <= 50
}

// windowFailureRate computes the failure rate over history entries inside
// the monitoring window. Caller holds the lock.
func (b *Breaker) windowFailureRate(now time.Time) float64 {
	cutoff := now.Add(-b.config.MonitoringWindow)
	var total, failed int
	for _, e := range b.history {
		if e.Timestamp.Before(cutoff) {
			continue
		}
		total++
		if !e.Success {
			failed++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(failed) / float64(total) * 100
}
