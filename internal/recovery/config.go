package recovery

import (
	"math"
	"time"
)

// Config tunes retry and backoff behavior for recovery handlers.
type Config struct {
	MaxRetries        int
	RetryDelay        time.Duration
	BackoffMultiplier float64
	MaxDelay          time.Duration
	// Timeout bounds a whole recovery attempt; zero disables the bound
	Timeout           time.Duration
	EnableFallback    bool
	EnableAutoRestart bool
}

// DefaultConfig returns production-ready recovery configuration.
func DefaultConfig() Config {
	return Config{
		MaxRetries:        3,
		RetryDelay:        time.Second,
		BackoffMultiplier: 2.0,
		MaxDelay:          30 * time.Second,
		Timeout:           60 * time.Second,
		EnableFallback:    true,
	}
}

// Delay returns the wait before the given 1-indexed attempt:
// min(base·mult^(n−1), max). Attempt 1 never waits.
func (c Config) Delay(attempt int) time.Duration {
	if attempt <= 1 {
		return 0
	}
	delay := float64(c.RetryDelay) * math.Pow(c.BackoffMultiplier, float64(attempt-1))
	if max := float64(c.MaxDelay); delay > max {
		delay = max
	}
	return time.Duration(delay)
}
