package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"atelier/storefront/internal/models"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h HandlerSet) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.sessions.Login(c.Request.Context(), req.Email, req.Password); err != nil {
		h.respondError(c, err)
		return
	}

	// The user resolves asynchronously from the session-change notification;
	// callers read it from /auth/me.
	c.JSON(http.StatusOK, gin.H{"message": "Signed in successfully."})
}

type signUpRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name" binding:"required"`
}

func (h HandlerSet) SignUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.sessions.SignUp(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := gin.H{
		"message":               result.Message,
		"identity_created":      result.IdentityCreated,
		"profile_synced":        result.ProfileSynced,
		"requires_verification": result.RequiresVerification,
	}
	if result.ProfileErr != nil {
		resp["profile_error"] = result.ProfileErr.Error()
	}
	c.JSON(http.StatusCreated, resp)
}

func (h HandlerSet) Logout(c *gin.Context) {
	h.sessions.Logout(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{
		"message":  "Signed out.",
		"redirect": "/login",
	})
}

type emailRequest struct {
	Email string `json:"email" binding:"required"`
}

func (h HandlerSet) ResendVerification(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := h.sessions.ResendVerification(c.Request.Context(), req.Email)
	c.JSON(http.StatusOK, gin.H{
		"success": result.Success,
		"message": result.Message,
	})
}

func (h HandlerSet) ForgotPassword(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.sessions.ResetPassword(c.Request.Context(), req.Email); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password reset email sent."})
}

type recoveryRequest struct {
	Token string `json:"token" binding:"required"`
}

func (h HandlerSet) Recovery(c *gin.Context) {
	var req recoveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.sessions.CompleteRecovery(c.Request.Context(), req.Token); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Recovery verified. You may now set a new password."})
}

type resetPasswordRequest struct {
	Password    string `json:"password" binding:"required"`
	AccessToken string `json:"access_token"`
}

func (h HandlerSet) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token := req.AccessToken
	if token == "" {
		if sess := h.sessions.CurrentSession(); sess != nil {
			token = sess.AccessToken
		}
	}

	if err := h.sessions.UpdatePassword(c.Request.Context(), token, req.Password); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully."})
}

func (h HandlerSet) OAuthStart(c *gin.Context) {
	provider := models.OAuthProvider(c.Param("provider"))

	url, err := h.sessions.SignInWithOAuth(provider)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Redirect(http.StatusTemporaryRedirect, url)
}

type userResponse struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	Name      string  `json:"name"`
	Role      string  `json:"role"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

func (h HandlerSet) Me(c *gin.Context) {
	user := h.sessions.CurrentUser()
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "unauthenticated",
			"state": string(h.sessions.State()),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"state": string(h.sessions.State()),
		"user": userResponse{
			ID:        user.ID,
			Email:     user.Email,
			Name:      user.Name,
			Role:      string(user.Role),
			AvatarURL: user.AvatarURL,
		},
		"is_admin": h.sessions.IsAdmin(),
	})
}
