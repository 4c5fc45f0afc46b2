package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"atelier/storefront/internal/models"
)

func (h HandlerSet) ListProducts(c *gin.Context) {
	resp := gin.H{
		"items":   h.products.Snapshot(),
		"loading": h.products.Loading(),
	}
	if msg := h.products.Err(); msg != "" {
		resp["error"] = msg
	}
	c.JSON(http.StatusOK, resp)
}

func (h HandlerSet) GetProduct(c *gin.Context) {
	product, err := h.products.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

type productRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	Price       float64  `json:"price" binding:"min=0"`
	Category    string   `json:"category"`
	Stock       int      `json:"stock" binding:"min=0"`
	Status      string   `json:"status" binding:"required"`
	Image       string   `json:"image"`
	Tags        []string `json:"tags"`
	SKU         string   `json:"sku"`
}

func (r productRequest) model() (models.Product, bool) {
	status := models.ProductStatus(r.Status)
	switch status {
	case models.ProductStatusInStock, models.ProductStatusLowStock, models.ProductStatusOutOfStock:
	default:
		return models.Product{}, false
	}

	return models.Product{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Category:    r.Category,
		Stock:       r.Stock,
		Status:      status,
		Image:       r.Image,
		Tags:        r.Tags,
		SKU:         r.SKU,
	}, true
}

func (h HandlerSet) AdminCreateProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, ok := req.model()
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_status"})
		return
	}

	created, err := h.products.Create(c.Request.Context(), product)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": created.Name + " created.",
		"product": created,
	})
}

func (h HandlerSet) AdminUpdateProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, ok := req.model()
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_status"})
		return
	}

	updated, err := h.products.Update(c.Request.Context(), c.Param("id"), product)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": updated.Name + " updated.",
		"product": updated,
	})
}

func (h HandlerSet) AdminDeleteProduct(c *gin.Context) {
	if err := h.products.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product deleted."})
}

func (h HandlerSet) AdminUploadProductImage(c *gin.Context) {
	file, header, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image_required"})
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	url, err := h.store.PutProductImage(c.Request.Context(), file, header.Size, contentType)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Image uploaded.",
		"url":     url,
	})
}
