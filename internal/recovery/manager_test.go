package recovery

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/Sentinel/backend/internal/failure"
	"github.com/GriffinCanCode/Sentinel/backend/internal/infrastructure/logging"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	cfg := DefaultConfig()
	cfg.RetryDelay = time.Millisecond
	cfg.MaxDelay = 5 * time.Millisecond
	cfg.Timeout = time.Second
	return NewManager(cfg, logging.NewNop(), nil)
}

func TestDefaultRecoveryBySeverity(t *testing.T) {
	tests := []struct {
		name     string
		severity failure.Severity
		strategy Strategy
		action   Action
	}{
		{"critical restarts the service", failure.SeverityCritical, StrategyRestart, ActionRestartService},
		{"high resets state", failure.SeverityHigh, StrategyReset, ActionResetState},
		{"medium retries", failure.SeverityMedium, StrategyRetry, ActionCustom},
		{"low retries", failure.SeverityLow, StrategyRetry, ActionCustom},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestManager(t)

			// Unknown category, so the severity default applies
			f := failure.New("boom", failure.WithSeverity(tt.severity))
			result := m.AttemptRecovery(context.Background(), f, nil)

			assert.True(t, result.Success)
			assert.Equal(t, tt.strategy, result.Strategy)
			assert.Equal(t, tt.action, result.Action)
			assert.NotEmpty(t, result.ID)
		})
	}
}

func TestNetworkRecoverySucceedsWithoutProber(t *testing.T) {
	m := newTestManager(t)

	result := m.AttemptRecovery(context.Background(), failure.NewNetwork("down"), nil)

	assert.True(t, result.Success)
	assert.Equal(t, StrategyRetry, result.Strategy)
	assert.Equal(t, ActionReconnect, result.Action)
	assert.Equal(t, 1, result.Attempts)
}

func TestNetworkRecoveryRetriesUntilProbeSucceeds(t *testing.T) {
	m := newTestManager(t)

	calls := 0
	m.SetProber(ProberFunc(func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("still down")
		}
		return nil
	}))

	result := m.AttemptRecovery(context.Background(), failure.NewNetwork("down"), nil)

	assert.True(t, result.Success)
	assert.Equal(t, 3, result.Attempts)
	assert.Equal(t, 3, calls)
}

func TestNetworkRecoveryExhaustsRetries(t *testing.T) {
	m := newTestManager(t)

	m.SetProber(ProberFunc(func(ctx context.Context) error {
		return errors.New("still down")
	}))

	result := m.AttemptRecovery(context.Background(), failure.NewNetwork("down"), nil)

	assert.False(t, result.Success)
	assert.Equal(t, StrategyRetry, result.Strategy)
	assert.Equal(t, m.config.MaxRetries, result.Attempts)
}

func TestNetworkRecoveryCancellation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RetryDelay = time.Hour // force a long backoff wait
	cfg.Timeout = 0
	m := NewManager(cfg, logging.NewNop(), nil)
	m.SetProber(ProberFunc(func(ctx context.Context) error {
		return errors.New("still down")
	}))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	done := make(chan Result, 1)
	go func() {
		done <- m.AttemptRecovery(ctx, failure.NewNetwork("down"), nil)
	}()

	select {
	case result := <-done:
		assert.False(t, result.Success)
		assert.Contains(t, result.Message, "cancelled")
	case <-time.After(time.Second):
		t.Fatal("recovery did not honor cancellation")
	}
}

func TestSyncRecoveryUsesResetHook(t *testing.T) {
	m := newTestManager(t)

	resetCalled := false
	m.SetStateResetter(func(ctx context.Context) error {
		resetCalled = true
		return nil
	})

	result := m.AttemptRecovery(context.Background(), failure.NewSync("drift"), nil)

	assert.True(t, resetCalled)
	assert.True(t, result.Success)
	assert.Equal(t, StrategyReset, result.Strategy)
	assert.Equal(t, ActionResetState, result.Action)
}

func TestConfigRecoveryReloadFailure(t *testing.T) {
	m := newTestManager(t)

	m.SetConfigReloader(func(ctx context.Context) error {
		return errors.New("parse error")
	})

	result := m.AttemptRecovery(context.Background(), failure.NewConfig("bad yaml"), nil)

	assert.False(t, result.Success)
	assert.Equal(t, StrategyFallback, result.Strategy)
	assert.Equal(t, ActionReloadConfig, result.Action)
}

func TestHandlerFaultBoundary(t *testing.T) {
	t.Run("handler error becomes failed result", func(t *testing.T) {
		m := newTestManager(t)
		m.RegisterHandler(failure.CategoryFile, func(ctx context.Context, f *failure.Failure, cfg Config) (Result, error) {
			return Result{}, errors.New("handler broke")
		})

		result := m.AttemptRecovery(context.Background(), failure.New("x", failure.WithCategory(failure.CategoryFile)), nil)

		assert.False(t, result.Success)
		assert.Equal(t, StrategyManual, result.Strategy)
		assert.Equal(t, ActionCustom, result.Action)
		assert.Contains(t, result.Message, "handler broke")
	})

	t.Run("handler panic becomes failed result", func(t *testing.T) {
		m := newTestManager(t)
		m.RegisterHandler(failure.CategoryFile, func(ctx context.Context, f *failure.Failure, cfg Config) (Result, error) {
			panic("handler boom")
		})

		var result Result
		assert.NotPanics(t, func() {
			result = m.AttemptRecovery(context.Background(), failure.New("x", failure.WithCategory(failure.CategoryFile)), nil)
		})

		assert.False(t, result.Success)
		assert.Equal(t, StrategyManual, result.Strategy)
		assert.Contains(t, result.Message, "panic")
	})
}

func TestRegisterHandlerOverridesBuiltin(t *testing.T) {
	m := newTestManager(t)

	m.RegisterHandler(failure.CategoryNetwork, func(ctx context.Context, f *failure.Failure, cfg Config) (Result, error) {
		return newResult(true, StrategyIgnore, ActionCustom, 1, 0, "overridden"), nil
	})

	result := m.AttemptRecovery(context.Background(), failure.NewNetwork("down"), nil)
	assert.Equal(t, StrategyIgnore, result.Strategy)
}

func TestConfigOverride(t *testing.T) {
	m := newTestManager(t)

	calls := 0
	m.SetProber(ProberFunc(func(ctx context.Context) error {
		calls++
		return errors.New("still down")
	}))

	override := m.config
	override.MaxRetries = 1

	result := m.AttemptRecovery(context.Background(), failure.NewNetwork("down"), &override)

	assert.False(t, result.Success)
	assert.Equal(t, 1, calls)
}

func TestExecuteCustomRecovery(t *testing.T) {
	m := newTestManager(t)

	m.RegisterCustomHandler("flush-cache", func(ctx context.Context, payload interface{}, cfg Config) (Result, error) {
		assert.Equal(t, "everything", payload)
		return newResult(true, StrategyManual, ActionClearCache, 1, 0, "cache flushed"), nil
	})

	result := m.ExecuteCustomRecovery(context.Background(), "flush-cache", "everything", nil)

	assert.True(t, result.Success)
	assert.Equal(t, ActionClearCache, result.Action)
	assert.Equal(t, 1, m.Statistics().SuccessfulRecoveries)
}

func TestExecuteCustomRecoveryUnknownNameNotRecorded(t *testing.T) {
	m := newTestManager(t)

	result := m.ExecuteCustomRecovery(context.Background(), "missing", nil, nil)

	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "not found")
	assert.Zero(t, m.Statistics().SuccessfulRecoveries+m.Statistics().FailedRecoveries)
}

func TestExecuteCustomRecoveryPanicBoundary(t *testing.T) {
	m := newTestManager(t)

	m.RegisterCustomHandler("explode", func(ctx context.Context, payload interface{}, cfg Config) (Result, error) {
		panic("custom boom")
	})

	var result Result
	assert.NotPanics(t, func() {
		result = m.ExecuteCustomRecovery(context.Background(), "explode", nil, nil)
	})
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "panic")
}

func TestStatisticsAggregation(t *testing.T) {
	m := newTestManager(t)

	m.AttemptRecovery(context.Background(), failure.NewNetwork("one"), nil)
	m.AttemptRecovery(context.Background(), failure.NewSync("two"), nil)

	m.SetProber(ProberFunc(func(ctx context.Context) error {
		return errors.New("still down")
	}))
	m.AttemptRecovery(context.Background(), failure.NewNetwork("three"), nil)

	stats := m.Statistics()
	assert.Equal(t, 3, stats.TotalAttempts)
	assert.Equal(t, 2, stats.SuccessfulRecoveries)
	assert.Equal(t, 1, stats.FailedRecoveries)
	assert.InDelta(t, 66.67, stats.SuccessRatePercent, 0.1)
	assert.Equal(t, 2, stats.ByCategory[failure.CategoryNetwork])
	assert.Equal(t, 1, stats.ByCategory[failure.CategorySync])
	assert.Equal(t, 2, stats.ByStrategy[StrategyRetry])
	assert.Len(t, stats.Recent, 3)
}

func TestRecentFailuresWindow(t *testing.T) {
	m := newTestManager(t)

	m.SetProber(ProberFunc(func(ctx context.Context) error {
		return errors.New("still down")
	}))
	m.AttemptRecovery(context.Background(), failure.NewNetwork("down"), nil)

	assert.Len(t, m.RecentFailures(time.Hour), 1)
	assert.Empty(t, m.RecentFailures(time.Nanosecond))
}

func TestClearHistory(t *testing.T) {
	m := newTestManager(t)

	m.AttemptRecovery(context.Background(), failure.NewNetwork("down"), nil)
	require.NotZero(t, m.Statistics().TotalAttempts)

	m.ClearHistory()

	stats := m.Statistics()
	assert.Zero(t, stats.TotalAttempts)
	assert.Empty(t, stats.Recent)
}

func TestIsHealthy(t *testing.T) {
	m := newTestManager(t)

	assert.True(t, m.IsHealthy(), "fresh manager is healthy")

	m.AttemptRecovery(context.Background(), failure.NewNetwork("up"), nil)
	assert.True(t, m.IsHealthy())

	m.SetProber(ProberFunc(func(ctx context.Context) error {
		return errors.New("still down")
	}))
	for i := 0; i < 10; i++ {
		m.AttemptRecovery(context.Background(), failure.NewNetwork("down"), nil)
	}
	assert.False(t, m.IsHealthy(), "10 recent failed recoveries is unhealthy")
}

func TestListeners(t *testing.T) {
	m := newTestManager(t)

	var results []Result
	m.AddListener(func(r Result) {
		results = append(results, r)
	})
	m.AddListener(func(Result) {
		panic("listener boom")
	})

	assert.NotPanics(t, func() {
		m.AttemptRecovery(context.Background(), failure.NewNetwork("down"), nil)
	})
	require.Len(t, results, 1)
	assert.True(t, results[0].Success)
}

func TestDelaySchedule(t *testing.T) {
	cfg := Config{
		RetryDelay:        time.Second,
		BackoffMultiplier: 2.0,
		MaxDelay:          5 * time.Second,
	}

	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{1, 0},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{4, 5 * time.Second}, // capped
		{10, 5 * time.Second},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("attempt %d", tt.attempt), func(t *testing.T) {
			assert.Equal(t, tt.expected, cfg.Delay(tt.attempt))
		})
	}
}

func TestRecoveryEventsEmitted(t *testing.T) {
	events := make(chan string, 4)
	sink := sinkFunc(func(e logging.Event) {
		events <- e.Type
	})

	cfg := DefaultConfig()
	cfg.RetryDelay = time.Millisecond
	m := NewManager(cfg, logging.NewNop(), sink)

	m.AttemptRecovery(context.Background(), failure.NewNetwork("down"), nil)

	select {
	case typ := <-events:
		assert.Equal(t, logging.EventRecoveryAttempted, typ)
	default:
		t.Fatal("no event emitted")
	}
}

type sinkFunc func(logging.Event)

func (f sinkFunc) Emit(e logging.Event) { f(e) }
