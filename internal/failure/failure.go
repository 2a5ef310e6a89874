package failure

import (
	"fmt"
	"runtime/debug"
	"time"

	"github.com/GriffinCanCode/Sentinel/backend/internal/shared/id"
	"github.com/bytedance/sonic"
	"go.uber.org/zap/zapcore"
)

// Category tags a failure with its origin domain
type Category string

const (
	CategoryBridge      Category = "bridge_error"
	CategorySync        Category = "sync_error"
	CategoryNetwork     Category = "network_error"
	CategoryFile        Category = "file_error"
	CategoryConfig      Category = "config_error"
	CategoryValidation  Category = "validation_error"
	CategoryAuth        Category = "authentication_error"
	CategoryPermission  Category = "permission_error"
	CategoryTimeout     Category = "timeout_error"
	CategoryExternalAPI Category = "external_api_error"
	CategoryUnknown     Category = "unknown_error"
)

// Severity orders failures by operational impact
type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

// String returns the string representation of the severity
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Level maps a severity to the zap level failures of that severity log at.
// Critical failures log at error level and carry a severity field; zap has
// no level above error that doesn't panic.
func (s Severity) Level() zapcore.Level {
	switch s {
	case SeverityLow:
		return zapcore.InfoLevel
	case SeverityMedium:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}

// MarshalText implements encoding.TextMarshaler for JSON/YAML surfaces
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Context captures where and when a failure occurred.
// A Context is owned by the failure that carries it and is never mutated
// after construction.
type Context struct {
	Timestamp time.Time              `json:"timestamp"`
	SessionID id.SessionID           `json:"session_id,omitempty"`
	UserID    string                 `json:"user_id,omitempty"`
	RequestID id.RequestID           `json:"request_id,omitempty"`
	Component string                 `json:"component"`
	Operation string                 `json:"operation,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// ContextOption customizes a Context at construction time
type ContextOption func(*Context)

// WithSession attaches a session identifier
func WithSession(sid id.SessionID) ContextOption {
	return func(c *Context) { c.SessionID = sid }
}

// WithUser attaches a user identifier
func WithUser(userID string) ContextOption {
	return func(c *Context) { c.UserID = userID }
}

// WithRequest attaches a request identifier
func WithRequest(rid id.RequestID) ContextOption {
	return func(c *Context) { c.RequestID = rid }
}

// WithOperation names the operation that failed
func WithOperation(op string) ContextOption {
	return func(c *Context) { c.Operation = op }
}

// WithMetadata merges key-value metadata into the context
func WithMetadata(meta map[string]interface{}) ContextOption {
	return func(c *Context) {
		for k, v := range meta {
			c.Metadata[k] = v
		}
	}
}

// NewContext creates a failure context stamped with the current time.
// The metadata map is owned by the context; callers must not retain it.
func NewContext(component string, opts ...ContextOption) *Context {
	ctx := &Context{
		Timestamp: time.Now(),
		Component: component,
		Metadata:  make(map[string]interface{}),
	}
	for _, opt := range opts {
		opt(ctx)
	}
	return ctx
}

// Failure is a fault annotated with classification, context, cause, and
// recovery hints. It is created at the failure site and read-only afterward.
type Failure struct {
	ID          id.FailureID `json:"id"`
	Message     string       `json:"message"`
	Category    Category     `json:"category"`
	Severity    Severity     `json:"severity"`
	Context     *Context     `json:"context"`
	Cause       error        `json:"-"`
	Suggestions []string     `json:"recovery_suggestions,omitempty"`
	Stack       string       `json:"stack_trace,omitempty"`
}

// Option customizes a Failure at construction time
type Option func(*Failure)

// WithCategory overrides the failure category
func WithCategory(c Category) Option {
	return func(f *Failure) { f.Category = c }
}

// WithSeverity overrides the failure severity
func WithSeverity(s Severity) Option {
	return func(f *Failure) { f.Severity = s }
}

// WithContext supplies a caller-built context instead of a fresh one
func WithContext(ctx *Context) Option {
	return func(f *Failure) { f.Context = ctx }
}

// WithCause records the underlying error
func WithCause(err error) Option {
	return func(f *Failure) { f.Cause = err }
}

// WithSuggestions attaches human-readable recovery suggestions
func WithSuggestions(suggestions ...string) Option {
	return func(f *Failure) { f.Suggestions = append(f.Suggestions, suggestions...) }
}

// New creates a classified failure. Defaults: unknown category, medium
// severity, fresh context, call-stack snapshot captured here.
func New(message string, opts ...Option) *Failure {
	f := &Failure{
		ID:       id.NewFailureID(),
		Message:  message,
		Category: CategoryUnknown,
		Severity: SeverityMedium,
		Stack:    string(debug.Stack()),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.Context == nil {
		f.Context = NewContext("sentinel")
	}
	return f
}

// NewSync creates a synchronization failure (high severity)
func NewSync(message string, opts ...Option) *Failure {
	return New(message, prepend(opts, WithCategory(CategorySync), WithSeverity(SeverityHigh))...)
}

// NewNetwork creates a network failure (medium severity)
func NewNetwork(message string, opts ...Option) *Failure {
	return New(message, prepend(opts, WithCategory(CategoryNetwork), WithSeverity(SeverityMedium))...)
}

// NewConfig creates a configuration failure (high severity)
func NewConfig(message string, opts ...Option) *Failure {
	return New(message, prepend(opts, WithCategory(CategoryConfig), WithSeverity(SeverityHigh))...)
}

// NewValidation creates a validation failure (medium severity)
func NewValidation(message string, opts ...Option) *Failure {
	return New(message, prepend(opts, WithCategory(CategoryValidation), WithSeverity(SeverityMedium))...)
}

// NewTimeout creates a timeout failure (medium severity)
func NewTimeout(message string, opts ...Option) *Failure {
	return New(message, prepend(opts, WithCategory(CategoryTimeout), WithSeverity(SeverityMedium))...)
}

// NewAuth creates an authentication failure (high severity)
func NewAuth(message string, opts ...Option) *Failure {
	return New(message, prepend(opts, WithCategory(CategoryAuth), WithSeverity(SeverityHigh))...)
}

// prepend puts baked-in options before caller options so callers can still
// override category or severity explicitly
func prepend(opts []Option, baked ...Option) []Option {
	return append(baked, opts...)
}

// Error implements the error interface
func (f *Failure) Error() string {
	if f.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", f.Category, f.Message, f.Cause)
	}
	return fmt.Sprintf("[%s] %s", f.Category, f.Message)
}

// Unwrap exposes the underlying cause to errors.Is/As
func (f *Failure) Unwrap() error {
	return f.Cause
}

// ToMap flattens the failure for the status surface
func (f *Failure) ToMap() map[string]interface{} {
	result := map[string]interface{}{
		"id":       f.ID.String(),
		"message":  f.Message,
		"category": string(f.Category),
		"severity": f.Severity.String(),
		"context":  f.Context,
	}
	if len(f.Suggestions) > 0 {
		result["recovery_suggestions"] = f.Suggestions
	}
	if f.Cause != nil {
		result["cause"] = map[string]interface{}{
			"type":    fmt.Sprintf("%T", f.Cause),
			"message": f.Cause.Error(),
		}
	}
	return result
}

// ToJSON serializes the failure with sonic
func (f *Failure) ToJSON() ([]byte, error) {
	return sonic.Marshal(f.ToMap())
}
