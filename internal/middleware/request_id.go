package middleware

import (
	"github.com/gin-gonic/gin"

	"atelier/storefront/internal/ids"
)

const (
	// RequestIDHeader carries the correlation id in and out; a caller-supplied
	// value is kept so the storefront SPA can stitch its own traces together.
	RequestIDHeader = "X-Request-Id"

	requestIDKey = "request_id"
)

func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = ids.New()
		}

		c.Set(requestIDKey, id)
		c.Writer.Header().Set(RequestIDHeader, id)

		c.Next()
	}
}

// RequestIDFrom returns the id assigned to the current request, or "" when
// the middleware is not installed.
func RequestIDFrom(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
