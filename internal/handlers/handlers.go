package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"atelier/storefront/internal/apperr"
	"atelier/storefront/internal/cart"
	"atelier/storefront/internal/config"
	"atelier/storefront/internal/live"
	"atelier/storefront/internal/middleware"
	"atelier/storefront/internal/models"
	"atelier/storefront/internal/repository"
	"atelier/storefront/internal/session"
	"atelier/storefront/internal/storage"
	"atelier/storefront/internal/wishlist"
	"atelier/storefront/internal/ws"
)

type HandlerSet struct {
	log           zerolog.Logger
	cfg           *config.AppConfig
	sessions      *session.Orchestrator
	products      *live.Products
	consultations *live.Consultations
	cart          *cart.Store
	wishlist      *wishlist.Store
	profiles      *repository.ProfileRepository
	store         *storage.ObjectStore
	hub           *ws.Hub
	db            *pgxpool.Pool
	cache         *redis.Client
	upgrader      websocket.Upgrader
}

func NewHandlerSet(
	log zerolog.Logger,
	cfg *config.AppConfig,
	sessions *session.Orchestrator,
	products *live.Products,
	consultations *live.Consultations,
	cartStore *cart.Store,
	wishlistStore *wishlist.Store,
	profiles *repository.ProfileRepository,
	store *storage.ObjectStore,
	hub *ws.Hub,
	db *pgxpool.Pool,
	cache *redis.Client,
) HandlerSet {
	return HandlerSet{
		log:           log,
		cfg:           cfg,
		sessions:      sessions,
		products:      products,
		consultations: consultations,
		cart:          cartStore,
		wishlist:      wishlistStore,
		profiles:      profiles,
		store:         store,
		hub:           hub,
		db:            db,
		cache:         cache,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	v1 := router.Group("/v1")
	{
		auth := v1.Group("/auth")
		auth.POST("/login", h.Login)
		auth.POST("/signup", h.SignUp)
		auth.POST("/logout", h.Logout)
		auth.POST("/resend", h.ResendVerification)
		auth.POST("/forgot-password", h.ForgotPassword)
		auth.POST("/recovery", h.Recovery)
		auth.POST("/reset-password", h.ResetPassword)
		auth.GET("/oauth/:provider", h.OAuthStart)
		auth.GET("/me", h.Me)

		v1.GET("/products", h.ListProducts)
		v1.GET("/products/:id", h.GetProduct)

		v1.POST("/consultations", h.BookConsultation)

		shopper := v1.Group("")
		shopper.Use(h.identify())
		{
			shopper.GET("/cart", h.GetCart)
			shopper.POST("/cart/items", h.AddCartItem)
			shopper.PATCH("/cart/items/:id", h.UpdateCartItem)
			shopper.DELETE("/cart/items/:id", h.RemoveCartItem)
			shopper.DELETE("/cart", h.ClearCart)

			shopper.GET("/wishlist", h.GetWishlist)
			shopper.POST("/wishlist/items", h.AddWishlistItem)
			shopper.DELETE("/wishlist/items/:id", h.RemoveWishlistItem)
			shopper.DELETE("/wishlist", h.ClearWishlist)
		}

		admin := v1.Group("/admin")
		admin.Use(
			middleware.Auth(h.cfg, h.profiles, h.log),
			middleware.RequireRoles(models.UserRoleAdmin),
		)
		{
			admin.GET("/consultations", h.AdminListConsultations)
			admin.GET("/consultations/:id", h.AdminGetConsultation)
			admin.PATCH("/consultations/:id/status", h.AdminUpdateConsultationStatus)
			admin.PATCH("/consultations/:id/notes", h.AdminAddConsultationNotes)

			admin.POST("/products", h.AdminCreateProduct)
			admin.PUT("/products/:id", h.AdminUpdateProduct)
			admin.DELETE("/products/:id", h.AdminDeleteProduct)
			admin.POST("/products/image", h.AdminUploadProductImage)

			admin.GET("/stats", h.AdminStats)
			admin.GET("/live", h.AdminLive)
		}
	}
}

// respondError maps the error taxonomy onto HTTP statuses. Validation and
// auth kinds carry their own user-facing messages; everything else is opaque.
func (h HandlerSet) respondError(c *gin.Context, err error) {
	var ve *apperr.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error()})
		return
	}

	var ae *apperr.AuthError
	if errors.As(err, &ae) {
		status := http.StatusBadRequest
		switch ae.Kind {
		case apperr.AuthEmailAlreadyRegistered:
			status = http.StatusConflict
		case apperr.AuthInvalidCredentials:
			status = http.StatusUnauthorized
		case apperr.AuthServiceUnavailable:
			status = http.StatusServiceUnavailable
		case apperr.AuthUnknown:
			status = http.StatusBadGateway
		}
		c.JSON(status, gin.H{"error": ae.Error(), "kind": string(ae.Kind)})
		return
	}

	if apperr.IsNotFound(err) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
		return
	}

	h.log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
}
