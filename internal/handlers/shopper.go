package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"atelier/storefront/internal/security"
)

const (
	guestIDHeader  = "X-Guest-Id"
	contextOwnerID = "owner_id"
	contextIsGuest = "owner_is_guest"
)

// identify resolves who owns the cart/wishlist being touched: a valid bearer
// token wins, otherwise the caller's guest id, otherwise a freshly minted
// guest id echoed back so the client can keep it.
func (h HandlerSet) identify() gin.HandlerFunc {
	return func(c *gin.Context) {
		if authHeader := c.GetHeader("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
			if claims, err := security.ParseAccessToken(tokenStr, h.cfg.Backend.JWTSecret); err == nil {
				c.Set(contextOwnerID, claims.UserID())
				c.Set(contextIsGuest, false)
				c.Next()
				return
			}
		}

		guestID := c.GetHeader(guestIDHeader)
		if guestID == "" {
			guestID = uuid.NewString()
		}
		c.Writer.Header().Set(guestIDHeader, guestID)
		c.Set(contextOwnerID, guestID)
		c.Set(contextIsGuest, true)

		c.Next()
	}
}

func ownerID(c *gin.Context) string {
	return c.GetString(contextOwnerID)
}
