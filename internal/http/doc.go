// Package http provides HTTP handlers for the resilience status surface.
//
// This package implements all HTTP endpoints using the Gin framework:
// health checks, breaker inspection and control, failure statistics, and
// recovery operations.
//
// Endpoints:
//   - Health: / and /health
//   - Breakers: /breakers, /breakers/:name, /breakers/:name/reset,
//     /breakers/:name/open, /breakers/:name/close,
//     /breakers/:name/half-open, /breakers/reset
//   - Failures: /failures/statistics, /failures/suggestions
//   - Recovery: /recovery/statistics, /recovery/failures,
//     /recovery/execute/:name
//
// Example Usage:
//
//	handlers := http.NewHandlers(registry, dispatcher, recoveryMgr, hub)
//	router.GET("/health", handlers.Health)
//	router.POST("/breakers/:name/reset", handlers.ResetBreaker)
package http
