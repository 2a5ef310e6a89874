package breaker

import (
	"fmt"
	"sort"
	"sync"

	"github.com/GriffinCanCode/Sentinel/backend/internal/infrastructure/logging"
	"go.uber.org/zap"
)

// Registry manages named breaker instances. It is built once at the
// composition root and passed to whatever needs lifecycle or aggregate
// health queries; there is no package-level default.
type Registry struct {
	logger *logging.Logger

	mu        sync.RWMutex
	breakers  map[string]*Breaker
	observers []Observer
}

// NewRegistry creates an empty breaker registry
func NewRegistry(logger *logging.Logger) *Registry {
	return &Registry{
		logger:   logger,
		breakers: make(map[string]*Breaker),
	}
}

// Create builds and registers a breaker. Duplicate names are an error.
func (r *Registry) Create(name string, config Config) (*Breaker, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.breakers[name]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateBreaker, name)
	}

	b := New(name, config, r.logger)
	for _, o := range r.observers {
		b.AddObserver(o)
	}
	r.breakers[name] = b

	r.logger.Info("circuit breaker registered", zap.String("breaker", name))
	return b, nil
}

// AddObserver attaches an observer to every registered breaker, current
// and future
func (r *Registry) AddObserver(o Observer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.observers = append(r.observers, o)
	for _, b := range r.breakers {
		b.AddObserver(o)
	}
}

// Get retrieves a breaker by name
func (r *Registry) Get(name string) (*Breaker, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.breakers[name]
	return b, ok
}

// Remove deletes a breaker; reports whether it existed
func (r *Registry) Remove(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.breakers[name]; !ok {
		return false
	}
	delete(r.breakers, name)
	r.logger.Info("circuit breaker removed", zap.String("breaker", name))
	return true
}

// Names returns all registered breaker names, sorted
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.breakers))
	for name := range r.breakers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AllStatus snapshots every registered breaker
func (r *Registry) AllStatus() map[string]Status {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]Status, len(r.breakers))
	for name, b := range r.breakers {
		out[name] = b.Status()
	}
	return out
}

// Unhealthy returns the names of breakers currently failing their health
// rule, sorted
func (r *Registry) Unhealthy() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var names []string
	for name, b := range r.breakers {
		if !b.IsHealthy() {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// ResetAll resets every registered breaker
func (r *Registry) ResetAll() {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, b := range r.breakers {
		b.Reset()
	}
	r.logger.Info("all circuit breakers reset")
}
