package recovery

import (
	"context"
	"fmt"
	"time"

	"github.com/GriffinCanCode/Sentinel/backend/internal/failure"
	"go.uber.org/zap"
)

// registerDefaults installs the built-in category handlers. Applications
// can override any of them with RegisterHandler.
func (m *Manager) registerDefaults() {
	m.handlers[failure.CategoryNetwork] = m.networkRecovery
	m.handlers[failure.CategorySync] = m.syncRecovery
	m.handlers[failure.CategoryConfig] = m.configRecovery
}

// networkRecovery retries a connectivity probe with exponential backoff.
// Backoff waits are the manager's only suspension points and are cancelled
// by the caller's context.
func (m *Manager) networkRecovery(ctx context.Context, f *failure.Failure, cfg Config) (Result, error) {
	start := time.Now()

	for attempt := 1; attempt <= cfg.MaxRetries; attempt++ {
		m.logger.Info("network recovery attempt",
			zap.Int("attempt", attempt),
			zap.Int("max_retries", cfg.MaxRetries),
		)

		if delay := cfg.Delay(attempt); delay > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return newResult(false, StrategyRetry, ActionReconnect, attempt, time.Since(start),
					fmt.Sprintf("network recovery cancelled: %v", ctx.Err())), nil
			case <-timer.C:
			}
		}

		if err := m.probe(ctx); err != nil {
			m.logger.Warn("network recovery attempt failed",
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			continue
		}

		return newResult(true, StrategyRetry, ActionReconnect, attempt, time.Since(start),
			fmt.Sprintf("network recovery successful after %d attempts", attempt)), nil
	}

	return newResult(false, StrategyRetry, ActionReconnect, cfg.MaxRetries, time.Since(start),
		"network recovery failed after all retry attempts"), nil
}

// probe runs the injected connectivity check; without one the probe is a
// no-op success
func (m *Manager) probe(ctx context.Context) error {
	m.mu.Lock()
	prober := m.prober
	m.mu.Unlock()

	if prober == nil {
		return nil
	}
	return prober.Probe(ctx)
}

// syncRecovery resets shared state through the injected hook
func (m *Manager) syncRecovery(ctx context.Context, f *failure.Failure, cfg Config) (Result, error) {
	start := time.Now()

	m.logger.Info("attempting sync state recovery")

	m.mu.Lock()
	reset := m.stateReset
	m.mu.Unlock()

	if reset != nil {
		if err := reset(ctx); err != nil {
			return newResult(false, StrategyReset, ActionResetState, 1, time.Since(start),
				fmt.Sprintf("sync recovery failed: %v", err)), nil
		}
	}

	return newResult(true, StrategyReset, ActionResetState, 1, time.Since(start),
		"sync state reset successful"), nil
}

// configRecovery reloads configuration through the injected hook
func (m *Manager) configRecovery(ctx context.Context, f *failure.Failure, cfg Config) (Result, error) {
	start := time.Now()

	m.logger.Info("attempting config recovery")

	m.mu.Lock()
	reload := m.configReload
	m.mu.Unlock()

	if reload != nil {
		if err := reload(ctx); err != nil {
			return newResult(false, StrategyFallback, ActionReloadConfig, 1, time.Since(start),
				fmt.Sprintf("config recovery failed: %v", err)), nil
		}
	}

	return newResult(true, StrategyFallback, ActionReloadConfig, 1, time.Since(start),
		"configuration reloaded successfully"), nil
}
