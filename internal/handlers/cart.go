package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"atelier/storefront/internal/models"
)

type cartResponse struct {
	Items     []models.CartItem `json:"items"`
	Total     float64           `json:"total"`
	ItemCount int               `json:"item_count"`
}

func (h HandlerSet) cartState(owner string) cartResponse {
	return cartResponse{
		Items:     h.cart.Items(owner),
		Total:     h.cart.Total(owner),
		ItemCount: h.cart.ItemCount(owner),
	}
}

func (h HandlerSet) GetCart(c *gin.Context) {
	c.JSON(http.StatusOK, h.cartState(ownerID(c)))
}

type addCartItemRequest struct {
	ID       string  `json:"id" binding:"required"`
	Name     string  `json:"name" binding:"required"`
	Price    float64 `json:"price" binding:"min=0"`
	Quantity int     `json:"quantity"`
	Image    string  `json:"image"`
	Size     string  `json:"size"`
	Color    string  `json:"color"`
}

func (h HandlerSet) AddCartItem(c *gin.Context) {
	var req addCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	owner := ownerID(c)
	h.cart.AddItem(owner, models.CartItem{
		ID:       req.ID,
		Name:     req.Name,
		Price:    req.Price,
		Quantity: req.Quantity,
		Image:    req.Image,
		Size:     req.Size,
		Color:    req.Color,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": req.Name + " added to cart.",
		"cart":    h.cartState(owner),
	})
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h HandlerSet) UpdateCartItem(c *gin.Context) {
	var req updateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	owner := ownerID(c)
	h.cart.UpdateQuantity(owner, c.Param("id"), req.Quantity)

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart updated.",
		"cart":    h.cartState(owner),
	})
}

func (h HandlerSet) RemoveCartItem(c *gin.Context) {
	owner := ownerID(c)
	h.cart.RemoveItem(owner, c.Param("id"))

	c.JSON(http.StatusOK, gin.H{
		"message": "Item removed from cart.",
		"cart":    h.cartState(owner),
	})
}

func (h HandlerSet) ClearCart(c *gin.Context) {
	owner := ownerID(c)
	h.cart.Clear(owner)

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart cleared.",
		"cart":    h.cartState(owner),
	})
}
