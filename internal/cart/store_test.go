package cart

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atelier/storefront/internal/models"
)

func TestAddItemMergesByID(t *testing.T) {
	s := NewStore()

	s.AddItem("u1", models.CartItem{ID: "p1", Name: "Silk Gown", Price: 120, Quantity: 1})
	s.AddItem("u1", models.CartItem{ID: "p1", Name: "Silk Gown", Price: 120, Quantity: 1})

	items := s.Items("u1")
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, 2, s.ItemCount("u1"))
}

func TestAddItemDefaultsQuantityToOne(t *testing.T) {
	s := NewStore()

	s.AddItem("u1", models.CartItem{ID: "p1", Price: 50})
	s.AddItem("u1", models.CartItem{ID: "p2", Price: 10, Quantity: -3})

	items := s.Items("u1")
	require.Len(t, items, 2)
	assert.Equal(t, 1, items[0].Quantity)
	assert.Equal(t, 1, items[1].Quantity)
}

func TestUpdateQuantityZeroRemovesLine(t *testing.T) {
	s := NewStore()
	s.AddItem("u1", models.CartItem{ID: "p1", Quantity: 3})
	s.AddItem("u1", models.CartItem{ID: "p2", Quantity: 1})

	s.UpdateQuantity("u1", "p1", 0)

	items := s.Items("u1")
	require.Len(t, items, 1)
	assert.Equal(t, "p2", items[0].ID)

	s.UpdateQuantity("u1", "p2", 5)
	assert.Equal(t, 5, s.ItemCount("u1"))
}

func TestRemoveItemLeavesOthers(t *testing.T) {
	s := NewStore()
	s.AddItem("u1", models.CartItem{ID: "p1", Quantity: 1})
	s.AddItem("u1", models.CartItem{ID: "p2", Quantity: 2})

	s.RemoveItem("u1", "p1")

	items := s.Items("u1")
	require.Len(t, items, 1)
	assert.Equal(t, "p2", items[0].ID)

	// Removing an absent id is a no-op.
	s.RemoveItem("u1", "p1")
	assert.Len(t, s.Items("u1"), 1)
}

func TestTotalsRecomputed(t *testing.T) {
	s := NewStore()
	s.AddItem("u1", models.CartItem{ID: "p1", Price: 120.50, Quantity: 2})
	s.AddItem("u1", models.CartItem{ID: "p2", Price: 10, Quantity: 1})

	assert.InDelta(t, 251.0, s.Total("u1"), 0.001)
	assert.Equal(t, 3, s.ItemCount("u1"))

	s.UpdateQuantity("u1", "p1", 1)
	assert.InDelta(t, 130.50, s.Total("u1"), 0.001)
}

func TestOwnersAreIsolated(t *testing.T) {
	s := NewStore()
	s.AddItem("u1", models.CartItem{ID: "p1", Quantity: 1})
	s.AddItem("guest-9", models.CartItem{ID: "p1", Quantity: 4})

	assert.Equal(t, 1, s.ItemCount("u1"))
	assert.Equal(t, 4, s.ItemCount("guest-9"))

	s.Clear("u1")
	assert.Empty(t, s.Items("u1"))
	assert.Equal(t, 4, s.ItemCount("guest-9"))
}

func TestPurgeIdleDropsStaleCarts(t *testing.T) {
	s := NewStore()
	current := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return current }

	s.AddItem("stale", models.CartItem{ID: "p1", Quantity: 1})

	current = current.Add(2 * time.Hour)
	s.AddItem("fresh", models.CartItem{ID: "p2", Quantity: 1})

	purged := s.PurgeIdle(time.Hour)
	assert.Equal(t, 1, purged)
	assert.Empty(t, s.Items("stale"))
	require.Len(t, s.Items("fresh"), 1)

	assert.Zero(t, s.PurgeIdle(time.Hour))
}
