package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"atelier/storefront/internal/middleware"
	"atelier/storefront/internal/ws"
)

type statsResponse struct {
	ConsultationsTotal   int `json:"consultations_total"`
	ConsultationsPending int `json:"consultations_pending"`
	ProductsTotal        int `json:"products_total"`
}

// AdminStats derives dashboard numbers from the live collections.
func (h HandlerSet) AdminStats(c *gin.Context) {
	total, pending := h.consultations.Counts()

	c.JSON(http.StatusOK, statsResponse{
		ConsultationsTotal:   total,
		ConsultationsPending: pending,
		ProductsTotal:        h.products.Count(),
	})
}

// AdminLive upgrades the connection and streams collection change events to
// the admin console.
func (h HandlerSet) AdminLive(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := ws.NewClient(user.ID, conn, h.hub)
	client.Register()

	go client.WritePump()
	client.ReadPump()
}
