package wishlist

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atelier/storefront/internal/apperr"
	"atelier/storefront/internal/models"
)

// memKV is an in-memory stand-in for the persisted key-value capability.
type memKV struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemKV() *memKV {
	return &memKV{data: map[string][]byte{}}
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

func TestItemsOnNeverWrittenKey(t *testing.T) {
	s := NewStore(newMemKV(), zerolog.Nop())

	items, err := s.Items(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestAddPersistsAndNotifies(t *testing.T) {
	kv := newMemKV()
	s := NewStore(kv, zerolog.Nop())

	notice, err := s.Add(context.Background(), "u1", models.WishlistItem{ID: "p1", Name: "Silk Gown"})
	require.NoError(t, err)
	assert.Equal(t, "Added to Wishlist", notice.Title)
	assert.Contains(t, notice.Detail, "Silk Gown")

	// A fresh store over the same backing sees the write.
	reloaded := NewStore(kv, zerolog.Nop())
	items, err := reloaded.Items(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "p1", items[0].ID)
}

func TestAddDuplicateLeavesListUntouched(t *testing.T) {
	s := NewStore(newMemKV(), zerolog.Nop())
	ctx := context.Background()

	_, err := s.Add(ctx, "u1", models.WishlistItem{ID: "p1", Name: "Silk Gown"})
	require.NoError(t, err)

	notice, err := s.Add(ctx, "u1", models.WishlistItem{ID: "p1", Name: "Silk Gown"})
	require.NoError(t, err)
	assert.Equal(t, "Already in Wishlist", notice.Title)

	items, err := s.Items(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestRemove(t *testing.T) {
	s := NewStore(newMemKV(), zerolog.Nop())
	ctx := context.Background()

	_, err := s.Add(ctx, "u1", models.WishlistItem{ID: "p1", Name: "Silk Gown"})
	require.NoError(t, err)
	_, err = s.Add(ctx, "u1", models.WishlistItem{ID: "p2", Name: "Wool Coat"})
	require.NoError(t, err)

	notice, err := s.Remove(ctx, "u1", "p1")
	require.NoError(t, err)
	require.NotNil(t, notice)
	assert.Equal(t, "Removed from Wishlist", notice.Title)
	assert.Contains(t, notice.Detail, "Silk Gown")

	items, err := s.Items(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "p2", items[0].ID)
}

func TestRemoveAbsentIsSilent(t *testing.T) {
	s := NewStore(newMemKV(), zerolog.Nop())

	notice, err := s.Remove(context.Background(), "u1", "ghost")
	require.NoError(t, err)
	assert.Nil(t, notice)
}

func TestContains(t *testing.T) {
	s := NewStore(newMemKV(), zerolog.Nop())
	ctx := context.Background()

	_, err := s.Add(ctx, "u1", models.WishlistItem{ID: "p1"})
	require.NoError(t, err)

	ok, err := s.Contains(ctx, "u1", "p1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Contains(ctx, "u1", "p2")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClearAlwaysNotifies(t *testing.T) {
	s := NewStore(newMemKV(), zerolog.Nop())
	ctx := context.Background()

	// Clearing an already-empty list still notifies.
	notice, err := s.Clear(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Wishlist Cleared", notice.Title)

	_, err = s.Add(ctx, "u1", models.WishlistItem{ID: "p1"})
	require.NoError(t, err)
	_, err = s.Clear(ctx, "u1")
	require.NoError(t, err)

	items, err := s.Items(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestUsersAndGuestsAreScoped(t *testing.T) {
	kv := newMemKV()
	s := NewStore(kv, zerolog.Nop())
	ctx := context.Background()

	_, err := s.Add(ctx, "u1", models.WishlistItem{ID: "p1"})
	require.NoError(t, err)
	_, err = s.Add(ctx, "", models.WishlistItem{ID: "p2"})
	require.NoError(t, err)

	userItems, err := s.Items(ctx, "u1")
	require.NoError(t, err)
	guestItems, err := s.Items(ctx, "")
	require.NoError(t, err)

	require.Len(t, userItems, 1)
	require.Len(t, guestItems, 1)
	assert.Equal(t, "p1", userItems[0].ID)
	assert.Equal(t, "p2", guestItems[0].ID)

	kv.mu.Lock()
	_, hasUserKey := kv.data["wishlist_u1"]
	_, hasGuestKey := kv.data["wishlist_guest"]
	kv.mu.Unlock()
	assert.True(t, hasUserKey)
	assert.True(t, hasGuestKey)
}
