package dispatch

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/GriffinCanCode/Sentinel/backend/internal/failure"
	"github.com/GriffinCanCode/Sentinel/backend/internal/infrastructure/logging"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// maxHistory bounds the rolling failure history
const maxHistory = 1000

// Handler processes one dispatched fault with its effective context
type Handler func(err error, ctx *failure.Context)

// Record is one entry in the dispatcher's rolling history
type Record struct {
	Timestamp   time.Time        `json:"timestamp"`
	ErrorType   string           `json:"error_type"`
	Kind        failure.Kind     `json:"kind"`
	Message     string           `json:"message"`
	Category    failure.Category `json:"category,omitempty"`
	Severity    string           `json:"severity,omitempty"`
	Suggestions []string         `json:"recovery_suggestions,omitempty"`
	Context     *failure.Context `json:"context"`
}

// Statistics aggregates the dispatcher's history
type Statistics struct {
	TotalFailures int            `json:"total_failures"`
	ByType        map[string]int `json:"by_type"`
	ByCategory    map[string]int `json:"by_category"`
	BySeverity    map[string]int `json:"by_severity"`
	Recent        []Record       `json:"recent_failures"`
}

// Dispatcher records failures and fans them out to handlers. Build one at
// the composition root and pass it down; there is no package-level default.
type Dispatcher struct {
	logger *logging.Logger
	sink   logging.Sink

	mu       sync.Mutex
	handlers map[failure.Kind]Handler
	global   []Handler
	history  []Record
}

// New creates a dispatcher emitting events to the given sink
func New(logger *logging.Logger, sink logging.Sink) *Dispatcher {
	if sink == nil {
		sink = logging.NopSink{}
	}
	return &Dispatcher{
		logger:   logger,
		sink:     sink,
		handlers: make(map[failure.Kind]Handler),
	}
}

// RegisterHandler binds a handler to a fault kind; the last registration
// for a kind wins
func (d *Dispatcher) RegisterHandler(kind failure.Kind, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[kind] = h
	d.logger.Info("failure handler registered", zap.String("kind", string(kind)))
}

// RegisterGlobalHandler adds a handler invoked for every dispatched fault
func (d *Dispatcher) RegisterGlobalHandler(h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.global = append(d.global, h)
	d.logger.Info("global failure handler registered")
}

// Handle records a fault and routes it to its kind handler and all global
// handlers, in registration order. A classified failure's own context wins
// over the supplied one.
func (d *Dispatcher) Handle(err error, ctx *failure.Context) {
	if err == nil {
		return
	}

	kind := failure.Classify(err)

	var classified *failure.Failure
	if errors.As(err, &classified) {
		ctx = classified.Context
	}
	if ctx == nil {
		ctx = failure.NewContext("dispatcher")
	}

	record := Record{
		Timestamp: ctx.Timestamp,
		ErrorType: fmt.Sprintf("%T", err),
		Kind:      kind,
		Message:   err.Error(),
		Context:   ctx,
	}
	if classified != nil {
		record.Category = classified.Category
		record.Severity = classified.Severity.String()
		record.Suggestions = classified.Suggestions
	}

	d.mu.Lock()
	d.history = append(d.history, record)
	if len(d.history) > maxHistory {
		d.history = d.history[len(d.history)-maxHistory:]
	}
	kindHandler := d.handlers[kind]
	global := make([]Handler, len(d.global))
	copy(global, d.global)
	d.mu.Unlock()

	if kindHandler != nil {
		d.invoke(kindHandler, err, ctx, string(kind))
	}
	for _, h := range global {
		d.invoke(h, err, ctx, "global")
	}

	d.emit(err, classified, ctx)
}

// invoke runs one handler inside an isolating boundary
func (d *Dispatcher) invoke(h Handler, err error, ctx *failure.Context, label string) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("failure handler panicked",
				zap.String("handler", label),
				zap.Any("panic", r),
			)
		}
	}()
	h(err, ctx)
}

// emit publishes the failure-recorded event at the severity-derived level
func (d *Dispatcher) emit(err error, classified *failure.Failure, ctx *failure.Context) {
	event := logging.Event{
		Type:      logging.EventFailureRecorded,
		Timestamp: ctx.Timestamp,
		Component: ctx.Component,
		Level:     zapcore.ErrorLevel,
		Message:   err.Error(),
		Metadata:  ctx.Metadata,
	}
	if classified != nil {
		event.Level = classified.Severity.Level()
		event.Category = string(classified.Category)
	}
	d.sink.Emit(event)
}

// Suggestions returns recovery suggestions for a fault: the fault's own
// when classified, else the static table for its kind
func (d *Dispatcher) Suggestions(err error) []string {
	return failure.SuggestionsFor(err)
}

// Statistics aggregates history by type, category, and severity, with the
// 10 most recent records
func (d *Dispatcher) Statistics() Statistics {
	d.mu.Lock()
	defer d.mu.Unlock()

	stats := Statistics{
		TotalFailures: len(d.history),
		ByType:        make(map[string]int),
		ByCategory:    make(map[string]int),
		BySeverity:    make(map[string]int),
	}

	for _, rec := range d.history {
		stats.ByType[rec.ErrorType]++
		if rec.Category != "" {
			stats.ByCategory[string(rec.Category)]++
		}
		if rec.Severity != "" {
			stats.BySeverity[rec.Severity]++
		}
	}

	n := len(d.history)
	recent := 10
	if n < recent {
		recent = n
	}
	stats.Recent = make([]Record, recent)
	copy(stats.Recent, d.history[n-recent:])

	return stats
}

// ClearHistory drops all recorded history
func (d *Dispatcher) ClearHistory() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.history = nil
	d.logger.Info("failure history cleared")
}
