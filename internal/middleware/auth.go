package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"atelier/storefront/internal/apperr"
	"atelier/storefront/internal/config"
	"atelier/storefront/internal/models"
	"atelier/storefront/internal/security"
)

const (
	ContextUser   = "current_user"
	ContextClaims = "access_claims"
)

// ProfileLoader resolves the profile record behind a verified token.
type ProfileLoader interface {
	GetByID(ctx context.Context, id string) (models.Profile, error)
}

// Auth verifies the platform-issued bearer token and resolves the caller's
// user. A missing profile row is not a rejection: the caller proceeds with
// the default role, mirroring how sign-in resolves users.
func Auth(cfg *config.AppConfig, profiles ProfileLoader, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing_token"})
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := security.ParseAccessToken(tokenStr, cfg.Backend.JWTSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token"})
			return
		}

		user := models.User{
			ID:    claims.UserID(),
			Email: claims.Email,
			Name:  "User",
			Role:  models.UserRoleUser,
		}

		profile, err := profiles.GetByID(c.Request.Context(), claims.UserID())
		switch {
		case err == nil:
			if profile.FullName != "" {
				user.Name = profile.FullName
			}
			if profile.Role != "" {
				user.Role = profile.Role
			}
			user.AvatarURL = profile.AvatarURL
		case apperr.IsNotFound(err):
			// no profile yet, defaults stand
		default:
			log.Error().Err(err).Str("user_id", claims.UserID()).Msg("profile load failed")
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "profile_unavailable"})
			return
		}

		c.Set(ContextClaims, *claims)
		c.Set(ContextUser, user)

		c.Next()
	}
}

// CurrentUser returns the resolved user set by Auth.
func CurrentUser(c *gin.Context) (models.User, bool) {
	val, exists := c.Get(ContextUser)
	if !exists {
		return models.User{}, false
	}
	user, ok := val.(models.User)
	return user, ok
}
