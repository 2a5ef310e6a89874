// Package logging provides structured logging using uber/zap.
//
// This package offers production-ready logging with two modes:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// It also defines the structured event sink the resilience core emits
// discrete events to (failure recorded, recovery attempted, breaker
// transitioned). The sink's storage and rotation are owned by the embedding
// application; the default sink logs each event at its severity level.
//
// Example Usage:
//
//	logger := logging.NewDefault()
//	logger.Info("Server starting", zap.String("port", "8000"))
//	logger.Error("Failed to connect", zap.Error(err))
package logging
