package ws

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/Sentinel/backend/internal/infrastructure/logging"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in dev
	},
}

const (
	writeWait    = 10 * time.Second
	pingInterval = 30 * time.Second
	pongWait     = 60 * time.Second
)

// Handler manages WebSocket connections
type Handler struct {
	hub    *Hub
	logger *logging.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, logger *logging.Logger) *Handler {
	return &Handler{
		hub:    hub,
		logger: logger.Named("ws"),
	}
}

// HandleConnection handles WebSocket upgrade and streams events
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	cl, ok := h.hub.register()
	if !ok {
		return
	}
	defer h.hub.unregister(cl.id)

	h.logger.Info("WebSocket client connected", zap.String("client_id", cl.id))

	conn.WriteJSON(map[string]interface{}{
		"type":      "system",
		"message":   "Connected to resilience event stream",
		"client_id": cl.id,
		"timestamp": time.Now().Unix(),
	})

	done := make(chan struct{})
	pings := make(chan struct{}, 1)
	go h.readLoop(conn, done, pings)

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, open := <-cl.send:
			if !open {
				// Hub closed or dropped us
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
					time.Now().Add(writeWait))
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(msg); err != nil {
				h.logger.Debug("WebSocket write failed", zap.String("client_id", cl.id), zap.Error(err))
				return
			}
		case <-pings:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(map[string]interface{}{
				"type":      "pong",
				"timestamp": time.Now().Unix(),
			}); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

// readLoop drains client messages. Writes stay on the connection's
// single writer goroutine, so pings are relayed rather than answered
// here.
func (h *Handler) readLoop(conn *websocket.Conn, done chan<- struct{}, pings chan<- struct{}) {
	defer close(done)

	conn.SetReadLimit(1024)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg struct {
			Type string `json:"type"`
		}
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		if msg.Type == "ping" {
			conn.SetReadDeadline(time.Now().Add(pongWait))
			select {
			case pings <- struct{}{}:
			default:
			}
		}
	}
}
