package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Recovery converts a handler panic into a 500 that carries the request id,
// so a shopper's bug report can be matched to the stack in the log.
func Recovery(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			v := recover()
			if v == nil {
				return
			}

			log.Error().
				Any("panic", v).
				Str("request_id", RequestIDFrom(c)).
				Str("route", c.FullPath()).
				Bytes("stack", debug.Stack()).
				Msg("handler panicked")

			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":      "internal_error",
				"request_id": RequestIDFrom(c),
			})
		}()

		c.Next()
	}
}
