// Package breaker implements the circuit breaker gating calls to guarded
// operations.
//
// A Breaker owns one guarded operation's admission state: CLOSED passes
// requests through, OPEN rejects them, and HALF_OPEN admits a bounded number
// of probes after the open timeout elapses. All counting and transition
// evaluation for a call happens atomically under the breaker's mutex, so
// concurrent callers cannot observe stale consecutive counts or double-trip.
//
// The breaker never retries and never swallows the guarded operation's
// fault; remediation is layered on top by the recovery manager, which has no
// knowledge of the breaker and vice versa.
//
// Observers registered on a breaker fire synchronously on every transition,
// in registration order, while the breaker's lock is held. Observers must
// not call back into the breaker.
package breaker
