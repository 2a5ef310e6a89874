// Package failure defines the failure taxonomy shared by the resilience core.
//
// Every fault handled by the service is classified into a Category and a
// Severity and carried as a single Failure value together with its context,
// underlying cause, and recovery suggestions. Components never subclass
// errors; classification is data, and per-case constructors (NewNetwork,
// NewConfig, ...) keep call sites terse.
package failure
