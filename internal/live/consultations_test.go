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

var errNoConsultation = errors.New("no such consultation")

type fakeConsultationStore struct {
	mu        sync.Mutex
	items     []models.ConsultationWithRequester
	listCalls int
}

func (s *fakeConsultationStore) ListWithRequesters(context.Context) ([]models.ConsultationWithRequester, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++
	out := make([]models.ConsultationWithRequester, len(s.items))
	copy(out, s.items)
	return out, nil
}

func (s *fakeConsultationStore) GetByID(_ context.Context, id string) (models.ConsultationWithRequester, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.items {
		if item.ID == id {
			return item, nil
		}
	}
	return models.ConsultationWithRequester{}, errNoConsultation
}

func (s *fakeConsultationStore) Create(_ context.Context, c models.Consultation) (models.Consultation, error) {
	c.Status = models.ConsultationStatusPending
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append([]models.ConsultationWithRequester{{Consultation: c}}, s.items...)
	return c, nil
}

func (s *fakeConsultationStore) UpdateStatus(_ context.Context, id string, status models.ConsultationStatus, _ *string) (models.Consultation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Status = status
			return s.items[i].Consultation, nil
		}
	}
	return models.Consultation{}, errNoConsultation
}

func (s *fakeConsultationStore) UpdateNotes(_ context.Context, id string, notes string) (models.Consultation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Notes = notes
			return s.items[i].Consultation, nil
		}
	}
	return models.Consultation{}, errNoConsultation
}

func (s *fakeConsultationStore) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listCalls
}

func startConsultations(t *testing.T, store *fakeConsultationStore, sub *fakeSub) *Consultations {
	t.Helper()
	c := NewConsultations(store, &fakeFeed{sub: sub}, nil, zerolog.Nop())
	require.NoError(t, c.Start(context.Background()))
	t.Cleanup(c.Stop)
	return c
}

func TestConsultationsInsertTriggersRefetch(t *testing.T) {
	store := &fakeConsultationStore{items: []models.ConsultationWithRequester{
		{Consultation: models.Consultation{ID: "c1", Status: models.ConsultationStatusPending}},
	}}
	sub := newFakeSub()
	c := startConsultations(t, store, sub)
	require.Equal(t, 1, store.calls())

	store.mu.Lock()
	store.items = append([]models.ConsultationWithRequester{{
		Consultation: models.Consultation{ID: "c2", Status: models.ConsultationStatusPending},
		Requester:    &models.Requester{FullName: "Ada Lovelace", Email: "ada@example.com"},
	}}, store.items...)
	store.mu.Unlock()

	// The insert payload has no joined requester, so the collection re-fetches
	// the whole list instead of patching the row in.
	sub.events <- backend.Event{Type: backend.EventInsert, New: map[string]any{"id": "c2"}}

	require.Eventually(t, func() bool { return store.calls() == 2 }, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool {
		items := c.Snapshot()
		return len(items) == 2 && items[0].Requester != nil
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, "Ada Lovelace", c.Snapshot()[0].Requester.FullName)
}

func TestConsultationsUpdateKeepsRequester(t *testing.T) {
	store := &fakeConsultationStore{items: []models.ConsultationWithRequester{
		{
			Consultation: models.Consultation{ID: "c1", Status: models.ConsultationStatusPending},
			Requester:    &models.Requester{FullName: "Ada Lovelace"},
		},
		{Consultation: models.Consultation{ID: "c2", Status: models.ConsultationStatusPending}},
	}}
	sub := newFakeSub()
	c := startConsultations(t, store, sub)

	sub.events <- backend.Event{
		Type: backend.EventUpdate,
		New: map[string]any{
			"id":           "c1",
			"status":       "completed",
			"completed_at": "2026-08-28T10:00:00Z",
		},
	}

	require.Eventually(t, func() bool {
		items := c.Snapshot()
		return len(items) == 2 && items[0].Status == models.ConsultationStatusCompleted
	}, time.Second, 5*time.Millisecond)

	items := c.Snapshot()
	require.NotNil(t, items[0].Requester, "the event carries no requester, the joined one must survive")
	assert.Equal(t, "Ada Lovelace", items[0].Requester.FullName)
	require.NotNil(t, items[0].CompletedAt)
	assert.Equal(t, "c2", items[1].ID, "an update must not reorder the list")
	assert.Equal(t, 1, store.calls(), "updates patch in place, no refetch")
}

func TestConsultationsDelete(t *testing.T) {
	store := &fakeConsultationStore{items: []models.ConsultationWithRequester{
		{Consultation: models.Consultation{ID: "c1"}},
		{Consultation: models.Consultation{ID: "c2"}},
	}}
	sub := newFakeSub()
	c := startConsultations(t, store, sub)

	sub.events <- backend.Event{Type: backend.EventDelete, Old: map[string]any{"id": "c1"}}

	require.Eventually(t, func() bool { return len(c.Snapshot()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "c2", c.Snapshot()[0].ID)
}

func TestConsultationsCounts(t *testing.T) {
	store := &fakeConsultationStore{items: []models.ConsultationWithRequester{
		{Consultation: models.Consultation{ID: "c1", Status: models.ConsultationStatusPending}},
		{Consultation: models.Consultation{ID: "c2", Status: models.ConsultationStatusCompleted}},
		{Consultation: models.Consultation{ID: "c3", Status: models.ConsultationStatusPending}},
	}}
	c := startConsultations(t, store, newFakeSub())

	total, pending := c.Counts()
	assert.Equal(t, 3, total)
	assert.Equal(t, 2, pending)
}

func TestConsultationsBookForcesPending(t *testing.T) {
	store := &fakeConsultationStore{}
	c := startConsultations(t, store, newFakeSub())

	created, err := c.Book(context.Background(), models.Consultation{
		ID:     "c1",
		Name:   "Ada",
		Status: models.ConsultationStatusCompleted,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ConsultationStatusPending, created.Status)
}
