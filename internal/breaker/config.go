package breaker

import "time"

// Config tunes a single breaker instance.
type Config struct {
	// FailureThreshold is the consecutive counted failures that trip the
	// breaker from CLOSED to OPEN
	FailureThreshold int
	// SuccessThreshold is the consecutive HALF_OPEN successes that close
	// the breaker
	SuccessThreshold int
	// OpenTimeout is how long the breaker stays OPEN before probing resumes
	OpenTimeout time.Duration
	// MonitoringWindow bounds the request history by age; entries older
	// than the window never count toward windowed rates
	MonitoringWindow time.Duration
	// HalfOpenMaxProbes caps concurrent in-flight probes while HALF_OPEN.
	// Zero admits every concurrent caller during probing.
	HalfOpenMaxProbes int
	// IsExpected reports whether a fault counts toward breaker statistics.
	// Unexpected faults are re-raised without influencing the state machine.
	// Nil counts every fault.
	IsExpected func(error) bool
}

// DefaultConfig returns production-ready breaker configuration.
func DefaultConfig() Config {
	return Config{
		FailureThreshold:  5,
		SuccessThreshold:  3,
		OpenTimeout:       60 * time.Second,
		MonitoringWindow:  5 * time.Minute,
		HalfOpenMaxProbes: 3,
	}
}

// normalize fills zero-valued fields with defaults. HalfOpenMaxProbes is
// left untouched: zero is a meaningful value (unbounded probing).
func (c Config) normalize() Config {
	if c.FailureThreshold <= 0 {
		c.FailureThreshold = 5
	}
	if c.SuccessThreshold <= 0 {
		c.SuccessThreshold = 3
	}
	if c.OpenTimeout <= 0 {
		c.OpenTimeout = 60 * time.Second
	}
	if c.MonitoringWindow <= 0 {
		c.MonitoringWindow = 5 * time.Minute
	}
	return c
}
