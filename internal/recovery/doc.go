// Package recovery selects and executes remediation for classified
// failures.
//
// A Manager maps failure categories to handlers; when no handler is
// registered, a severity-based default decides the strategy. Every attempt
// produces a Result value: recovery outcomes are data, not errors, so
// callers inspect success without exception-style control flow.
// Handler faults (errors and panics alike) are converted into failed
// Results rather than propagated.
//
// The manager is independent of the circuit breaker: the same classified
// failure can influence admission control and trigger remediation without
// either side knowing the other exists.
package recovery
