package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atelier/storefront/internal/apperr"
	"atelier/storefront/internal/cart"
	"atelier/storefront/internal/config"
	"atelier/storefront/internal/security"
	"atelier/storefront/internal/wishlist"
)

const testJWTSecret = "test-project-secret"

type memKV struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *memKV) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.data[key]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return raw, nil
}

func (m *memKV) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func newShopperRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := HandlerSet{
		log:      zerolog.Nop(),
		cfg:      &config.AppConfig{Backend: config.BackendConfig{JWTSecret: testJWTSecret}},
		cart:     cart.NewStore(),
		wishlist: wishlist.NewStore(&memKV{data: map[string][]byte{}}, zerolog.Nop()),
	}

	router := gin.New()
	shopper := router.Group("/v1")
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
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestGuestGetsMintedID(t *testing.T) {
	router := newShopperRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/v1/cart", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Guest-Id"))
}

func TestGuestCartFlow(t *testing.T) {
	router := newShopperRouter(t)
	header := map[string]string{"X-Guest-Id": "guest-42"}

	rec := doJSON(t, router, http.MethodPost, "/v1/cart/items",
		`{"id":"p1","name":"Silk Gown","price":120.5,"quantity":2}`, header)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "guest-42", rec.Header().Get("X-Guest-Id"))

	// Same id merges instead of adding a second line.
	rec = doJSON(t, router, http.MethodPost, "/v1/cart/items",
		`{"id":"p1","name":"Silk Gown","price":120.5}`, header)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/v1/cart", "", header)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Len(t, body["items"], 1)
	assert.InDelta(t, 361.5, body["total"].(float64), 0.001)
	assert.EqualValues(t, 3, body["item_count"])

	// Quantity zero removes the line.
	rec = doJSON(t, router, http.MethodPatch, "/v1/cart/items/p1", `{"quantity":0}`, header)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/v1/cart", "", header)
	body = decodeBody(t, rec)
	assert.Empty(t, body["items"])
}

func TestCartsAreIsolatedPerGuest(t *testing.T) {
	router := newShopperRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/v1/cart/items",
		`{"id":"p1","name":"Coat","price":10}`, map[string]string{"X-Guest-Id": "guest-a"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/v1/cart", "", map[string]string{"X-Guest-Id": "guest-b"})
	body := decodeBody(t, rec)
	assert.Empty(t, body["items"])
}

func TestBearerOwnsTheCart(t *testing.T) {
	router := newShopperRouter(t)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, security.AccessClaims{
		Email: "ada@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)

	authed := map[string]string{"Authorization": "Bearer " + token}
	rec := doJSON(t, router, http.MethodPost, "/v1/cart/items",
		`{"id":"p1","name":"Coat","price":10}`, authed)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Guest-Id"), "an authenticated caller gets no guest id")

	rec = doJSON(t, router, http.MethodGet, "/v1/cart", "", authed)
	body := decodeBody(t, rec)
	assert.Len(t, body["items"], 1)

	// An invalid token falls back to the guest path rather than failing.
	rec = doJSON(t, router, http.MethodGet, "/v1/cart", "",
		map[string]string{"Authorization": "Bearer not-a-token"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Guest-Id"))
}

func TestAddCartItemValidation(t *testing.T) {
	router := newShopperRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/v1/cart/items", `{"price":10}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWishlistFlow(t *testing.T) {
	router := newShopperRouter(t)
	header := map[string]string{"X-Guest-Id": "guest-42"}

	rec := doJSON(t, router, http.MethodPost, "/v1/wishlist/items",
		`{"id":"p1","name":"Silk Gown","price":120.5}`, header)
	require.Equal(t, http.StatusOK, rec.Code)
	notice := decodeBody(t, rec)["notice"].(map[string]any)
	assert.Equal(t, "Added to Wishlist", notice["title"])

	rec = doJSON(t, router, http.MethodPost, "/v1/wishlist/items",
		`{"id":"p1","name":"Silk Gown","price":120.5}`, header)
	require.Equal(t, http.StatusOK, rec.Code)
	notice = decodeBody(t, rec)["notice"].(map[string]any)
	assert.Equal(t, "Already in Wishlist", notice["title"])

	// Removing an id that is not there says nothing.
	rec = doJSON(t, router, http.MethodDelete, "/v1/wishlist/items/ghost", "", header)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/v1/wishlist/items/p1", "", header)
	require.Equal(t, http.StatusOK, rec.Code)
	notice = decodeBody(t, rec)["notice"].(map[string]any)
	assert.Equal(t, "Removed from Wishlist", notice["title"])

	rec = doJSON(t, router, http.MethodDelete, "/v1/wishlist", "", header)
	require.Equal(t, http.StatusOK, rec.Code)
	notice = decodeBody(t, rec)["notice"].(map[string]any)
	assert.Equal(t, "Wishlist Cleared", notice["title"])
}
