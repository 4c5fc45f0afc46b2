package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const dependencyCheckTimeout = 2 * time.Second

// Health reports the storefront's own view of its dependencies. The catalog
// mirror is included because a started service with an empty, errored mirror
// serves a uselessly blank shop even when postgres answers pings.
func (h HandlerSet) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), dependencyCheckTimeout)
	defer cancel()

	checks := gin.H{}
	healthy := true

	if err := h.db.Ping(ctx); err != nil {
		h.log.Error().Err(err).Msg("postgres check failed")
		checks["postgres"] = "down"
		healthy = false
	} else {
		checks["postgres"] = "up"
	}

	if err := h.cache.Ping(ctx).Err(); err != nil {
		h.log.Error().Err(err).Msg("redis check failed")
		checks["redis"] = "down"
		healthy = false
	} else {
		checks["redis"] = "up"
	}

	catalog := gin.H{"items": h.products.Count()}
	if msg := h.products.Err(); msg != "" {
		catalog["error"] = msg
		healthy = false
	}
	checks["catalog"] = catalog

	status := "ok"
	code := http.StatusOK
	if !healthy {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":      status,
		"environment": h.cfg.Environment,
		"checks":      checks,
	})
}
