package breaker

// Observer is notified of every breaker state transition. Notifications are
// synchronous and ordered by registration; a panicking observer is logged
// and does not abort the transition or reach the caller.
type Observer interface {
	OnTransition(name string, from, to State)
}

// ObserverFunc adapts a function to the Observer interface
type ObserverFunc func(name string, from, to State)

// OnTransition implements Observer
func (f ObserverFunc) OnTransition(name string, from, to State) {
	f(name, from, to)
}
