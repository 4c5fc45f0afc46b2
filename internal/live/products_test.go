package live

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atelier/storefront/internal/backend"
	"atelier/storefront/internal/models"
)

type fakeProductStore struct {
	mu        sync.Mutex
	items     []models.Product
	listErr   error
	listCalls int
}

func (s *fakeProductStore) List(context.Context) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]models.Product, len(s.items))
	copy(out, s.items)
	return out, nil
}

func (s *fakeProductStore) GetByID(_ context.Context, id string) (models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.items {
		if item.ID == id {
			return item, nil
		}
	}
	return models.Product{}, errors.New("no such product")
}

func (s *fakeProductStore) Create(_ context.Context, p models.Product) (models.Product, error) {
	return p, nil
}

func (s *fakeProductStore) Update(_ context.Context, _ string, p models.Product) (models.Product, error) {
	return p, nil
}

func (s *fakeProductStore) Delete(context.Context, string) error { return nil }

func startProducts(t *testing.T, store *fakeProductStore, sub *fakeSub) *Products {
	t.Helper()
	p := NewProducts(store, &fakeFeed{sub: sub}, nil, zerolog.Nop())
	require.NoError(t, p.Start(context.Background()))
	t.Cleanup(p.Stop)
	return p
}

func productIDs(items []models.Product) []string {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return ids
}

func TestProductsInitialSnapshot(t *testing.T) {
	store := &fakeProductStore{items: []models.Product{
		{ID: "p2", Name: "Silk Gown"},
		{ID: "p1", Name: "Linen Shirt"},
	}}
	p := startProducts(t, store, newFakeSub())

	assert.Equal(t, []string{"p2", "p1"}, productIDs(p.Snapshot()))
	assert.False(t, p.Loading())
	assert.Empty(t, p.Err())
	assert.Equal(t, 2, p.Count())
}

func TestProductsFetchFailureStillSubscribes(t *testing.T) {
	store := &fakeProductStore{listErr: errors.New("relation unavailable")}
	sub := newFakeSub()
	p := startProducts(t, store, sub)

	assert.Empty(t, p.Snapshot())
	assert.Equal(t, "Failed to load products. Please try again later.", p.Err())

	// Events still land after a failed initial fetch.
	sub.events <- backend.Event{
		Type: backend.EventInsert,
		New:  map[string]any{"id": "p9", "name": "Wool Coat", "price": 120.5, "stock": 3},
	}
	require.Eventually(t, func() bool { return p.Count() == 1 }, time.Second, 5*time.Millisecond)

	// A successful refresh clears the displayed error.
	store.mu.Lock()
	store.listErr = nil
	store.items = []models.Product{{ID: "p9", Name: "Wool Coat"}}
	store.mu.Unlock()
	p.Refresh(context.Background())
	assert.Empty(t, p.Err())
}

func TestProductsInsertPrepends(t *testing.T) {
	store := &fakeProductStore{items: []models.Product{
		{ID: "p2", CreatedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "p1", CreatedAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)},
	}}
	sub := newFakeSub()
	p := startProducts(t, store, sub)

	// Prepended even though its creation time predates the head row.
	sub.events <- backend.Event{
		Type: backend.EventInsert,
		New: map[string]any{
			"id":         "p0",
			"name":       "Archive Piece",
			"created_at": "2026-01-01T00:00:00Z",
		},
	}

	require.Eventually(t, func() bool { return p.Count() == 3 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"p0", "p2", "p1"}, productIDs(p.Snapshot()))
}

func TestProductsUpdateInPlace(t *testing.T) {
	store := &fakeProductStore{items: []models.Product{
		{ID: "p3", Name: "Gown", Stock: 5},
		{ID: "p2", Name: "Shirt", Stock: 8},
		{ID: "p1", Name: "Coat", Stock: 2},
	}}
	sub := newFakeSub()
	p := startProducts(t, store, sub)

	sub.events <- backend.Event{
		Type: backend.EventUpdate,
		New:  map[string]any{"id": "p2", "name": "Shirt", "stock": 0, "status": "out-of-stock"},
	}

	require.Eventually(t, func() bool {
		items := p.Snapshot()
		return len(items) == 3 && items[1].Stock == 0
	}, time.Second, 5*time.Millisecond)

	items := p.Snapshot()
	assert.Equal(t, []string{"p3", "p2", "p1"}, productIDs(items), "an update must not reorder the list")
	assert.Equal(t, models.ProductStatusOutOfStock, items[1].Status)
}

func TestProductsDeleteRemovesExactlyOne(t *testing.T) {
	store := &fakeProductStore{items: []models.Product{
		{ID: "p3"}, {ID: "p2"}, {ID: "p1"},
	}}
	sub := newFakeSub()
	p := startProducts(t, store, sub)

	sub.events <- backend.Event{
		Type: backend.EventDelete,
		Old:  map[string]any{"id": "p2"},
	}

	require.Eventually(t, func() bool { return p.Count() == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"p3", "p1"}, productIDs(p.Snapshot()))
}

func TestProductsStopClosesSubscription(t *testing.T) {
	store := &fakeProductStore{}
	sub := newFakeSub()
	p := NewProducts(store, &fakeFeed{sub: sub}, nil, zerolog.Nop())
	require.NoError(t, p.Start(context.Background()))

	p.Stop()
	assert.True(t, sub.isClosed())

	// Stop on a stopped collection is a no-op.
	p.Stop()
}

func TestProductsSubscribeFailure(t *testing.T) {
	store := &fakeProductStore{items: []models.Product{{ID: "p1"}}}
	p := NewProducts(store, &fakeFeed{err: errors.New("feed unavailable")}, nil, zerolog.Nop())

	err := p.Start(context.Background())
	require.Error(t, err)
	// The initial fetch already ran; the snapshot is served even without a
	// live subscription.
	assert.Equal(t, 1, p.Count())
}
