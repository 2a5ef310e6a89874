package dispatch

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/Sentinel/backend/internal/failure"
	"github.com/GriffinCanCode/Sentinel/backend/internal/infrastructure/logging"
)

type captureSink struct {
	mu     sync.Mutex
	events []logging.Event
}

func (s *captureSink) Emit(e logging.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *captureSink) all() []logging.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]logging.Event, len(s.events))
	copy(out, s.events)
	return out
}

func TestHandleNilError(t *testing.T) {
	sink := &captureSink{}
	d := New(logging.NewNop(), sink)

	d.Handle(nil, nil)

	assert.Zero(t, d.Statistics().TotalFailures)
	assert.Empty(t, sink.all())
}

func TestHandleRoutesByKind(t *testing.T) {
	d := New(logging.NewNop(), nil)

	var handled []string
	d.RegisterHandler(failure.Kind(failure.CategoryNetwork), func(err error, ctx *failure.Context) {
		handled = append(handled, "network")
	})
	d.RegisterHandler(failure.Kind(failure.CategorySync), func(err error, ctx *failure.Context) {
		handled = append(handled, "sync")
	})

	d.Handle(failure.NewNetwork("down"), nil)

	assert.Equal(t, []string{"network"}, handled)
}

func TestHandleLastRegistrationWins(t *testing.T) {
	d := New(logging.NewNop(), nil)

	var handled string
	kind := failure.Kind(failure.CategoryConfig)
	d.RegisterHandler(kind, func(error, *failure.Context) { handled = "first" })
	d.RegisterHandler(kind, func(error, *failure.Context) { handled = "second" })

	d.Handle(failure.NewConfig("bad yaml"), nil)

	assert.Equal(t, "second", handled)
}

func TestHandleGlobalHandlers(t *testing.T) {
	d := New(logging.NewNop(), nil)

	var order []string
	d.RegisterHandler(failure.Kind(failure.CategoryNetwork), func(error, *failure.Context) {
		order = append(order, "kind")
	})
	d.RegisterGlobalHandler(func(error, *failure.Context) {
		order = append(order, "global1")
	})
	d.RegisterGlobalHandler(func(error, *failure.Context) {
		order = append(order, "global2")
	})

	d.Handle(failure.NewNetwork("down"), nil)

	assert.Equal(t, []string{"kind", "global1", "global2"}, order)
}

func TestHandlePanicIsolation(t *testing.T) {
	d := New(logging.NewNop(), nil)

	var reached bool
	d.RegisterHandler(failure.Kind(failure.CategoryNetwork), func(error, *failure.Context) {
		panic("handler boom")
	})
	d.RegisterGlobalHandler(func(error, *failure.Context) {
		reached = true
	})

	assert.NotPanics(t, func() {
		d.Handle(failure.NewNetwork("down"), nil)
	})
	assert.True(t, reached, "later handlers still run after a panic")
}

func TestHandleClassifiedContextWins(t *testing.T) {
	d := New(logging.NewNop(), nil)

	var got *failure.Context
	d.RegisterGlobalHandler(func(err error, ctx *failure.Context) {
		got = ctx
	})

	own := failure.NewContext("bridge")
	f := failure.NewSync("drift", failure.WithContext(own))
	supplied := failure.NewContext("caller")

	d.Handle(f, supplied)

	assert.Same(t, own, got)
}

func TestHandleFallbackContext(t *testing.T) {
	d := New(logging.NewNop(), nil)

	var got *failure.Context
	d.RegisterGlobalHandler(func(err error, ctx *failure.Context) {
		got = ctx
	})

	d.Handle(errors.New("plain"), nil)

	require.NotNil(t, got)
	assert.Equal(t, "dispatcher", got.Component)
}

func TestEmitUsesSeverityLevel(t *testing.T) {
	sink := &captureSink{}
	d := New(logging.NewNop(), sink)

	d.Handle(failure.New("low", failure.WithSeverity(failure.SeverityLow)), nil)
	d.Handle(errors.New("unclassified"), nil)

	events := sink.all()
	require.Len(t, events, 2)
	assert.Equal(t, logging.EventFailureRecorded, events[0].Type)
	assert.Equal(t, failure.SeverityLow.Level(), events[0].Level)
	// Unclassified faults default to error level
	assert.Equal(t, failure.SeverityHigh.Level(), events[1].Level)
}

func TestStatistics(t *testing.T) {
	d := New(logging.NewNop(), nil)

	d.Handle(failure.NewNetwork("one"), nil)
	d.Handle(failure.NewNetwork("two"), nil)
	d.Handle(failure.NewSync("three"), nil)
	d.Handle(errors.New("plain"), nil)

	stats := d.Statistics()
	assert.Equal(t, 4, stats.TotalFailures)
	assert.Equal(t, 2, stats.ByCategory[string(failure.CategoryNetwork)])
	assert.Equal(t, 1, stats.ByCategory[string(failure.CategorySync)])
	assert.Equal(t, 3, stats.BySeverity["medium"]+stats.BySeverity["high"])
	assert.Len(t, stats.Recent, 4)

	// Plain errors count by type but not by category
	assert.Equal(t, 1, stats.ByType[fmt.Sprintf("%T", errors.New(""))])
}

func TestStatisticsRecentCapped(t *testing.T) {
	d := New(logging.NewNop(), nil)

	for i := 0; i < 25; i++ {
		d.Handle(failure.NewNetwork(fmt.Sprintf("fault %d", i)), nil)
	}

	stats := d.Statistics()
	assert.Equal(t, 25, stats.TotalFailures)
	require.Len(t, stats.Recent, 10)
	assert.Equal(t, "[network_error] fault 24", stats.Recent[9].Message)
}

func TestHistoryBounded(t *testing.T) {
	d := New(logging.NewNop(), nil)

	for i := 0; i < maxHistory+50; i++ {
		d.Handle(errors.New("x"), nil)
	}

	assert.Equal(t, maxHistory, d.Statistics().TotalFailures)
}

func TestClearHistory(t *testing.T) {
	d := New(logging.NewNop(), nil)

	d.Handle(failure.NewNetwork("down"), nil)
	require.Equal(t, 1, d.Statistics().TotalFailures)

	d.ClearHistory()
	assert.Zero(t, d.Statistics().TotalFailures)
}

func TestSuggestions(t *testing.T) {
	d := New(logging.NewNop(), nil)

	f := failure.New("boom", failure.WithSuggestions("reboot"))
	assert.Equal(t, []string{"reboot"}, d.Suggestions(f))
	assert.Nil(t, d.Suggestions(errors.New("opaque")))
}
