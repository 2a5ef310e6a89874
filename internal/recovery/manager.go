package recovery

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/GriffinCanCode/Sentinel/backend/internal/failure"
	"github.com/GriffinCanCode/Sentinel/backend/internal/infrastructure/logging"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// maxHistory bounds the recovery result history
const maxHistory = 1000

// Handler remediates failures of one category
type Handler func(ctx context.Context, f *failure.Failure, cfg Config) (Result, error)

// CustomHandler is a named remediation routine invoked by identifier,
// outside the category dispatch path
type CustomHandler func(ctx context.Context, payload interface{}, cfg Config) (Result, error)

// Listener observes every recorded recovery result
type Listener func(Result)

// Manager selects and runs remediation for classified failures. Build one
// at the composition root; handler registries and history are mutex-
// serialized, handler invocation itself runs without the lock.
type Manager struct {
	config Config
	logger *logging.Logger
	sink   logging.Sink

	// remediation hooks driven by the built-in handlers
	prober       Prober
	configReload func(context.Context) error
	stateReset   func(context.Context) error

	mu        sync.Mutex
	handlers  map[failure.Category]Handler
	custom    map[string]CustomHandler
	history   []Result
	listeners []Listener

	totalAttempts int
	successes     int
	failures      int
	byStrategy    map[Strategy]int
	byCategory    map[failure.Category]int
}

// NewManager creates a recovery manager with the built-in network, sync,
// and config handlers registered
func NewManager(cfg Config, logger *logging.Logger, sink logging.Sink) *Manager {
	if sink == nil {
		sink = logging.NopSink{}
	}
	m := &Manager{
		config:     cfg,
		logger:     logger,
		sink:       sink,
		handlers:   make(map[failure.Category]Handler),
		custom:     make(map[string]CustomHandler),
		byStrategy: make(map[Strategy]int),
		byCategory: make(map[failure.Category]int),
	}
	m.registerDefaults()
	return m
}

// SetProber injects the connectivity probe used by the built-in network
// handler. Without one, network recovery succeeds on its first attempt.
func (m *Manager) SetProber(p Prober) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prober = p
}

// SetConfigReloader injects the reload hook used by the built-in config
// handler
func (m *Manager) SetConfigReloader(reload func(context.Context) error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.configReload = reload
}

// SetStateResetter injects the reset hook used by the built-in sync handler
func (m *Manager) SetStateResetter(reset func(context.Context) error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stateReset = reset
}

// RegisterHandler binds a category to a remediation handler; the last
// registration for a category wins
func (m *Manager) RegisterHandler(category failure.Category, h Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[category] = h
	m.logger.Info("recovery handler registered", zap.String("category", string(category)))
}

// RegisterCustomHandler binds a named handler invokable via
// ExecuteCustomRecovery
func (m *Manager) RegisterCustomHandler(name string, h CustomHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.custom[name] = h
	m.logger.Info("custom recovery handler registered", zap.String("handler", name))
}

// AddListener registers a result listener, invoked (panic-isolated) after
// every recorded attempt
func (m *Manager) AddListener(l Listener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, l)
}

// AttemptRecovery remediates a classified failure. A registered category
// handler runs inside a failure boundary: its error or panic becomes a
// failed Result (manual/custom), never a propagated fault. Without a
// handler, the severity-based default applies.
func (m *Manager) AttemptRecovery(ctx context.Context, f *failure.Failure, override *Config) Result {
	cfg := m.config
	if override != nil {
		cfg = *override
	}
	start := time.Now()

	m.mu.Lock()
	m.totalAttempts++
	m.byCategory[f.Category]++
	handler := m.handlers[f.Category]
	m.mu.Unlock()

	m.logger.Info("attempting recovery",
		zap.String("category", string(f.Category)),
		zap.String("message", f.Message),
	)

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	var result Result
	if handler != nil {
		result = m.safeInvoke(ctx, f, cfg, handler, start)
	} else {
		result = m.defaultRecovery(f, start)
	}

	m.record(result)
	return result
}

// safeInvoke runs a category handler inside the failure boundary
func (m *Manager) safeInvoke(ctx context.Context, f *failure.Failure, cfg Config, handler Handler, start time.Time) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("recovery handler panicked", zap.Any("panic", r))
			result = newResult(false, StrategyManual, ActionCustom, 1, time.Since(start),
				fmt.Sprintf("recovery handler panic: %v", r))
		}
	}()

	result, err := handler(ctx, f, cfg)
	if err != nil {
		m.logger.Error("recovery handler failed", zap.Error(err))
		return newResult(false, StrategyManual, ActionCustom, 1, time.Since(start),
			fmt.Sprintf("recovery handler error: %v", err))
	}
	return result
}

// defaultRecovery picks strategy and action purely from severity:
// critical restarts the service, high resets state, everything else retries.
func (m *Manager) defaultRecovery(f *failure.Failure, start time.Time) Result {
	var strategy Strategy
	var action Action

	switch f.Severity {
	case failure.SeverityCritical:
		strategy, action = StrategyRestart, ActionRestartService
	case failure.SeverityHigh:
		strategy, action = StrategyReset, ActionResetState
	default:
		strategy, action = StrategyRetry, ActionCustom
	}

	m.logger.Info("executing default recovery",
		zap.String("category", string(f.Category)),
		zap.String("strategy", string(strategy)),
	)

	return newResult(true, strategy, action, 1, time.Since(start),
		fmt.Sprintf("default recovery completed for %s", f.Category))
}

// ExecuteCustomRecovery invokes a named handler directly. An unknown name
// is a terminal failed result, not an error, and is not recorded.
func (m *Manager) ExecuteCustomRecovery(ctx context.Context, name string, payload interface{}, override *Config) Result {
	m.mu.Lock()
	handler, ok := m.custom[name]
	m.mu.Unlock()

	if !ok {
		return newResult(false, StrategyManual, ActionCustom, 1, 0,
			fmt.Sprintf("custom handler not found: %s", name))
	}

	cfg := m.config
	if override != nil {
		cfg = *override
	}
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	result := func() (result Result) {
		defer func() {
			if r := recover(); r != nil {
				m.logger.Error("custom recovery handler panicked",
					zap.String("handler", name),
					zap.Any("panic", r),
				)
				result = newResult(false, StrategyManual, ActionCustom, 1, time.Since(start),
					fmt.Sprintf("custom recovery panic: %v", r))
			}
		}()

		result, err := handler(ctx, payload, cfg)
		if err != nil {
			return newResult(false, StrategyManual, ActionCustom, 1, time.Since(start),
				fmt.Sprintf("custom recovery failed: %v", err))
		}
		return result
	}()

	m.record(result)
	return result
}

// record appends a result to the bounded history, rolls statistics, emits
// the recovery event, and notifies listeners
func (m *Manager) record(result Result) {
	m.mu.Lock()
	m.history = append(m.history, result)
	if len(m.history) > maxHistory {
		m.history = m.history[len(m.history)-maxHistory:]
	}
	if result.Success {
		m.successes++
	} else {
		m.failures++
	}
	m.byStrategy[result.Strategy]++
	listeners := make([]Listener, len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.Unlock()

	m.logger.Info("recovery result recorded",
		zap.Bool("success", result.Success),
		zap.String("strategy", string(result.Strategy)),
		zap.String("message", result.Message),
	)

	level := zapcore.InfoLevel
	if !result.Success {
		level = zapcore.WarnLevel
	}
	m.sink.Emit(logging.Event{
		Type:      logging.EventRecoveryAttempted,
		Timestamp: result.Timestamp,
		Component: "recovery",
		Level:     level,
		Message:   result.Message,
		Metadata: map[string]interface{}{
			"strategy": string(result.Strategy),
			"action":   string(result.Action),
			"attempts": result.Attempts,
			"success":  result.Success,
		},
	})

	for _, l := range listeners {
		m.notify(l, result)
	}
}

// notify invokes one listener inside an isolating boundary
func (m *Manager) notify(l Listener, result Result) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("recovery listener panicked", zap.Any("panic", r))
		}
	}()
	l(result)
}

// Statistics aggregates recovery history and per-strategy/category counts,
// with the 10 most recent results
func (m *Manager) Statistics() Statistics {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := Statistics{
		TotalAttempts:        m.totalAttempts,
		SuccessfulRecoveries: m.successes,
		FailedRecoveries:     m.failures,
		ByStrategy:           make(map[Strategy]int, len(m.byStrategy)),
		ByCategory:           make(map[failure.Category]int, len(m.byCategory)),
	}
	for k, v := range m.byStrategy {
		stats.ByStrategy[k] = v
	}
	for k, v := range m.byCategory {
		stats.ByCategory[k] = v
	}
	if m.totalAttempts > 0 {
		stats.SuccessRatePercent = float64(m.successes) / float64(m.totalAttempts) * 100
	}

	n := len(m.history)
	recent := 10
	if n < recent {
		recent = n
	}
	stats.Recent = make([]Result, recent)
	copy(stats.Recent, m.history[n-recent:])

	return stats
}

// RecentFailures returns failed results within the trailing window
func (m *Manager) RecentFailures(window time.Duration) []Result {
	cutoff := time.Now().Add(-window)

	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Result
	for _, r := range m.history {
		if !r.Success && !r.Timestamp.Before(cutoff) {
			out = append(out, r)
		}
	}
	return out
}

// ClearHistory drops history and statistics
func (m *Manager) ClearHistory() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.history = nil
	m.totalAttempts = 0
	m.successes = 0
	m.failures = 0
	m.byStrategy = make(map[Strategy]int)
	m.byCategory = make(map[failure.Category]int)

	m.logger.Info("recovery history and statistics cleared")
}

// IsHealthy reports false when recoveries failed 10 or more times in the
// trailing hour, or the overall success rate dropped below 50%. A manager
// with no attempts yet is healthy.
func (m *Manager) IsHealthy() bool {
	if len(m.RecentFailures(time.Hour)) >= 10 {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.totalAttempts == 0 {
		return true
	}
	return float64(m.successes)/float64(m.totalAttempts)*100 >= 50
}
