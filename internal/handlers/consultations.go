package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"atelier/storefront/internal/models"
	"atelier/storefront/internal/security"
)

type bookConsultationRequest struct {
	Name    string    `json:"name" binding:"required"`
	Email   string    `json:"email" binding:"required,email"`
	Phone   string    `json:"phone" binding:"required,min=10"`
	Service string    `json:"service" binding:"required"`
	Message string    `json:"message"`
	Date    time.Time `json:"date" binding:"required"`
}

// BookConsultation is the public booking form. Guests may submit; a valid
// bearer token attaches the requester to the booking.
func (h HandlerSet) BookConsultation(c *gin.Context) {
	var req bookConsultationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !req.Date.After(time.Now()) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be in the future"})
		return
	}

	var userID *string
	if authHeader := c.GetHeader("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		if claims, err := security.ParseAccessToken(tokenStr, h.cfg.Backend.JWTSecret); err == nil {
			id := claims.UserID()
			userID = &id
		}
	}

	created, err := h.consultations.Book(c.Request.Context(), models.Consultation{
		UserID:        userID,
		Name:          req.Name,
		Email:         strings.TrimSpace(strings.ToLower(req.Email)),
		Phone:         req.Phone,
		Service:       req.Service,
		Message:       req.Message,
		PreferredDate: req.Date,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":      "Consultation booked successfully!",
		"consultation": created,
	})
}

func (h HandlerSet) AdminListConsultations(c *gin.Context) {
	resp := gin.H{
		"items":   h.consultations.Snapshot(),
		"loading": h.consultations.Loading(),
	}
	if msg := h.consultations.Err(); msg != "" {
		resp["error"] = msg
	}
	c.JSON(http.StatusOK, resp)
}

func (h HandlerSet) AdminGetConsultation(c *gin.Context) {
	consultation, err := h.consultations.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, consultation)
}

type updateStatusRequest struct {
	Status     string  `json:"status" binding:"required"`
	AssignedTo *string `json:"assigned_to"`
}

func (h HandlerSet) AdminUpdateConsultationStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status := models.ConsultationStatus(req.Status)
	switch status {
	case models.ConsultationStatusPending, models.ConsultationStatusInProgress,
		models.ConsultationStatusCompleted, models.ConsultationStatusCancelled:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_status"})
		return
	}

	updated, err := h.consultations.UpdateStatus(c.Request.Context(), c.Param("id"), status, req.AssignedTo)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Status updated.",
		"consultation": updated,
	})
}

type addNotesRequest struct {
	Notes string `json:"notes" binding:"required"`
}

func (h HandlerSet) AdminAddConsultationNotes(c *gin.Context) {
	var req addNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.consultations.AddNotes(c.Request.Context(), c.Param("id"), req.Notes)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Notes saved.",
		"consultation": updated,
	})
}
