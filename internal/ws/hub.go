package ws

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/Sentinel/backend/internal/infrastructure/logging"
)

// sendBuffer is the per-client outbound queue depth. A client that falls
// this far behind is disconnected.
const sendBuffer = 64

// eventMessage is the wire form of a broadcast event
type eventMessage struct {
	Type      string                 `json:"type"`
	Event     string                 `json:"event"`
	Component string                 `json:"component"`
	Category  string                 `json:"category,omitempty"`
	Message   string                 `json:"message"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp int64                  `json:"timestamp"`
}

type client struct {
	id   string
	send chan eventMessage
}

// Hub fans resilience events out to connected WebSocket clients. It
// implements logging.Sink so it can sit in the event pipeline next to
// the structured log sink.
type Hub struct {
	logger *logging.Logger

	mu      sync.RWMutex
	clients map[string]*client
	closed  bool
}

// NewHub creates an event broadcast hub
func NewHub(logger *logging.Logger) *Hub {
	return &Hub{
		logger:  logger.Named("ws"),
		clients: make(map[string]*client),
	}
}

// Run blocks until ctx is cancelled, then disconnects all clients
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()

	h.mu.Lock()
	h.closed = true
	for id, cl := range h.clients {
		close(cl.send)
		delete(h.clients, id)
	}
	h.mu.Unlock()
}

// Emit implements logging.Sink. Never blocks: clients whose queues are
// full are dropped.
func (h *Hub) Emit(e logging.Event) {
	msg := eventMessage{
		Type:      "event",
		Event:     e.Type,
		Component: e.Component,
		Category:  e.Category,
		Message:   e.Message,
		Metadata:  e.Metadata,
		Timestamp: e.Timestamp.Unix(),
	}

	var stalled []string

	h.mu.RLock()
	for id, cl := range h.clients {
		select {
		case cl.send <- msg:
		default:
			stalled = append(stalled, id)
		}
	}
	h.mu.RUnlock()

	for _, id := range stalled {
		h.logger.Warn("Dropping stalled WebSocket client", zap.String("client_id", id))
		h.unregister(id)
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) register() (*client, bool) {
	cl := &client{
		id:   uuid.NewString(),
		send: make(chan eventMessage, sendBuffer),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, false
	}
	h.clients[cl.id] = cl
	return cl, true
}

func (h *Hub) unregister(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if cl, ok := h.clients[id]; ok {
		close(cl.send)
		delete(h.clients, id)
	}
}

var _ logging.Sink = (*Hub)(nil)
