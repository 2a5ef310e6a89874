// Package server is the composition root: it builds the failure
// dispatcher, recovery manager, breaker registry, event sinks, and the
// HTTP surface from configuration, and owns their lifecycles.
package server
