// Package registry seeds circuit breaker definitions from disk.
//
// Definitions are YAML files, one breaker per file, loaded at startup
// into the breaker registry. Fields omitted in a definition fall back
// to the configured defaults.
package registry
