// Package monitoring exposes Prometheus metrics for the resilience core.
//
// Metrics cover the protective envelope itself: breaker states and
// transitions, guarded request outcomes, recorded failures, recovery
// attempts, and the HTTP status surface. The guarded operations' own
// business metrics are out of scope.
package monitoring
