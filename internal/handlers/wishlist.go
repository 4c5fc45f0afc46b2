package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"atelier/storefront/internal/models"
)

func (h HandlerSet) GetWishlist(c *gin.Context) {
	items, err := h.wishlist.Items(c.Request.Context(), ownerID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

type addWishlistItemRequest struct {
	ID       string  `json:"id" binding:"required"`
	Name     string  `json:"name" binding:"required"`
	Price    float64 `json:"price" binding:"min=0"`
	Image    string  `json:"image"`
	Category string  `json:"category"`
}

func (h HandlerSet) AddWishlistItem(c *gin.Context) {
	var req addWishlistItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	notice, err := h.wishlist.Add(c.Request.Context(), ownerID(c), models.WishlistItem{
		ID:       req.ID,
		Name:     req.Name,
		Price:    req.Price,
		Image:    req.Image,
		Category: req.Category,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"notice": notice})
}

func (h HandlerSet) RemoveWishlistItem(c *gin.Context) {
	notice, err := h.wishlist.Remove(c.Request.Context(), ownerID(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	if notice == nil {
		// Absent id: nothing removed, nothing to announce.
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notice": notice})
}

func (h HandlerSet) ClearWishlist(c *gin.Context) {
	notice, err := h.wishlist.Clear(c.Request.Context(), ownerID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notice": notice})
}
