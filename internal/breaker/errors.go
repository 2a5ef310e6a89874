package breaker

import (
	"errors"
	"fmt"
)

// ErrCircuitOpen is the sentinel all admission rejections match via
// errors.Is, regardless of which breaker rejected the call.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// ErrDuplicateBreaker is returned by the registry when a name is taken.
var ErrDuplicateBreaker = errors.New("circuit breaker already exists")

// CircuitOpenError signals admission rejection. It is distinct from any
// fault the guarded operation raises: the operation was never invoked.
type CircuitOpenError struct {
	Name  string
	State State
}

// Error implements the error interface
func (e *CircuitOpenError) Error() string {
	return fmt.Sprintf("circuit breaker %q is %s", e.Name, e.State)
}

// Is matches the ErrCircuitOpen sentinel
func (e *CircuitOpenError) Is(target error) bool {
	return target == ErrCircuitOpen
}
