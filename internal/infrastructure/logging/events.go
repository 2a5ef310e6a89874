package logging

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Event types emitted by the resilience core.
const (
	EventFailureRecorded   = "failure_recorded"
	EventRecoveryAttempted = "recovery_attempted"
	EventBreakerTransition = "breaker_transition"
)

// Event is a discrete structured occurrence emitted by the core. Storage,
// formatting, and rotation belong to whatever sink consumes it.
type Event struct {
	Type      string                 `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Component string                 `json:"component"`
	Level     zapcore.Level          `json:"-"`
	Category  string                 `json:"category,omitempty"`
	Message   string                 `json:"message"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Sink consumes structured events. Implementations must be safe for
// concurrent use; Emit must not block the caller for long.
type Sink interface {
	Emit(Event)
}

// ZapSink logs each event at its level with structured fields.
type ZapSink struct {
	logger *Logger
}

// NewZapSink creates the default event sink over a logger.
func NewZapSink(logger *Logger) *ZapSink {
	return &ZapSink{logger: logger}
}

// Emit implements Sink.
func (s *ZapSink) Emit(e Event) {
	fields := []zap.Field{
		zap.Time("event_time", e.Timestamp),
		zap.String("event_type", e.Type),
		zap.String("component", e.Component),
	}
	if e.Category != "" {
		fields = append(fields, zap.String("category", e.Category))
	}
	if len(e.Metadata) > 0 {
		fields = append(fields, zap.Any("metadata", e.Metadata))
	}

	if ce := s.logger.Check(e.Level, e.Message); ce != nil {
		ce.Write(fields...)
	}
}

// FanoutSink forwards each event to every child sink in order.
type FanoutSink []Sink

// Emit implements Sink.
func (s FanoutSink) Emit(e Event) {
	for _, child := range s {
		child.Emit(e)
	}
}

// NopSink discards all events.
type NopSink struct{}

// Emit implements Sink.
func (NopSink) Emit(Event) {}
