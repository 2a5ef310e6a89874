package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/Sentinel/backend/internal/breaker"
	"github.com/GriffinCanCode/Sentinel/backend/internal/dispatch"
	"github.com/GriffinCanCode/Sentinel/backend/internal/failure"
	"github.com/GriffinCanCode/Sentinel/backend/internal/recovery"
	"github.com/GriffinCanCode/Sentinel/backend/internal/ws"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	registry   *breaker.Registry
	dispatcher *dispatch.Dispatcher
	recovery   *recovery.Manager
	hub        *ws.Hub
}

// NewHandlers creates a new handler set
func NewHandlers(
	registry *breaker.Registry,
	dispatcher *dispatch.Dispatcher,
	recoveryMgr *recovery.Manager,
	hub *ws.Hub,
) *Handlers {
	return &Handlers{
		registry:   registry,
		dispatcher: dispatcher,
		recovery:   recoveryMgr,
		hub:        hub,
	}
}

// Root handles the liveness check
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "Sentinel Resilience Service",
		"version": "0.2.0",
	})
}

// Health handles the detailed health check. Degraded when any breaker is
// open or the recovery manager fails its health rule.
func (h *Handlers) Health(c *gin.Context) {
	unhealthy := h.registry.Unhealthy()
	recoveryHealthy := h.recovery.IsHealthy()

	status := "healthy"
	code := http.StatusOK
	if len(unhealthy) > 0 || !recoveryHealthy {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":             status,
		"unhealthy_breakers": unhealthy,
		"recovery_healthy":   recoveryHealthy,
		"stream_clients":     h.hub.ClientCount(),
	})
}

// ListBreakers returns the status of every registered breaker
func (h *Handlers) ListBreakers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"breakers": h.registry.AllStatus(),
		"names":    h.registry.Names(),
	})
}

// GetBreaker returns one breaker's status plus its recent call history
func (h *Handlers) GetBreaker(c *gin.Context) {
	cb, ok := h.registry.Get(c.Param("name"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "breaker not found"})
		return
	}

	limit := 20
	if raw := c.Query("history"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			limit = n
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  cb.Status(),
		"history": cb.RecentHistory(limit),
	})
}

// ResetBreaker resets a breaker to its initial closed state
func (h *Handlers) ResetBreaker(c *gin.Context) {
	cb, ok := h.registry.Get(c.Param("name"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "breaker not found"})
		return
	}

	cb.Reset()
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"status":  cb.Status(),
	})
}

// ResetAllBreakers resets every registered breaker
func (h *Handlers) ResetAllBreakers(c *gin.Context) {
	h.registry.ResetAll()
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"breakers": h.registry.AllStatus(),
	})
}

// ForceBreakerState forces a breaker into the state named in the route
func (h *Handlers) ForceBreakerState(target breaker.State) gin.HandlerFunc {
	return func(c *gin.Context) {
		cb, ok := h.registry.Get(c.Param("name"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "breaker not found"})
			return
		}

		switch target {
		case breaker.StateOpen:
			cb.ForceOpen()
		case breaker.StateHalfOpen:
			cb.ForceHalfOpen()
		default:
			cb.ForceClose()
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"status":  cb.Status(),
		})
	}
}

// FailureStatistics returns aggregated dispatcher statistics
func (h *Handlers) FailureStatistics(c *gin.Context) {
	c.JSON(http.StatusOK, h.dispatcher.Statistics())
}

// FailureSuggestions returns recovery suggestions for a fault kind
func (h *Handlers) FailureSuggestions(c *gin.Context) {
	kind := c.Query("kind")
	if kind == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "kind query parameter is required"})
		return
	}

	suggestions := failure.SuggestionsForKind(failure.Kind(kind))
	if suggestions == nil {
		suggestions = []string{}
	}

	c.JSON(http.StatusOK, gin.H{
		"kind":        kind,
		"suggestions": suggestions,
	})
}

// RecoveryStatistics returns aggregated recovery statistics
func (h *Handlers) RecoveryStatistics(c *gin.Context) {
	c.JSON(http.StatusOK, h.recovery.Statistics())
}

// RecentRecoveryFailures returns failed recovery results within a trailing
// window (default one hour)
func (h *Handlers) RecentRecoveryFailures(c *gin.Context) {
	window := time.Hour
	if raw := c.Query("window_seconds"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "window_seconds must be a positive integer"})
			return
		}
		window = time.Duration(n) * time.Second
	}

	failures := h.recovery.RecentFailures(window)
	if failures == nil {
		failures = []recovery.Result{}
	}

	c.JSON(http.StatusOK, gin.H{
		"window_seconds": int(window.Seconds()),
		"failures":       failures,
	})
}

// ExecuteRecovery invokes a named custom recovery handler
func (h *Handlers) ExecuteRecovery(c *gin.Context) {
	var req struct {
		Payload interface{} `json:"payload"`
	}
	// An empty body means no payload
	_ = c.ShouldBindJSON(&req)

	result := h.recovery.ExecuteCustomRecovery(c.Request.Context(), c.Param("name"), req.Payload, nil)

	code := http.StatusOK
	if !result.Success {
		code = http.StatusUnprocessableEntity
	}
	c.JSON(code, result)
}
