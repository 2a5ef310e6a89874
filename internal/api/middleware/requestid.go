package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/Sentinel/backend/internal/shared/id"
)

// RequestIDKey is the context key under which the request ID is stored.
const RequestIDKey = "request_id"

// RequestIDHeader is the response header carrying the request ID.
const RequestIDHeader = "X-Request-ID"

// RequestID assigns a sortable unique ID to every request. An incoming
// X-Request-ID header is honored so IDs propagate across hops.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(RequestIDHeader)
		if rid == "" {
			rid = string(id.NewRequestID())
		}
		c.Set(RequestIDKey, rid)
		c.Header(RequestIDHeader, rid)
		c.Next()
	}
}

// GetRequestID returns the request ID assigned by RequestID, or empty.
func GetRequestID(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}
