package live

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"atelier/storefront/internal/backend"
	"atelier/storefront/internal/models"
)

const consultationsTable = "consultations"

// ConsultationStore is the remote booking table the collection mirrors.
type ConsultationStore interface {
	ListWithRequesters(ctx context.Context) ([]models.ConsultationWithRequester, error)
	GetByID(ctx context.Context, id string) (models.ConsultationWithRequester, error)
	Create(ctx context.Context, c models.Consultation) (models.Consultation, error)
	UpdateStatus(ctx context.Context, id string, status models.ConsultationStatus, assignedTo *string) (models.Consultation, error)
	UpdateNotes(ctx context.Context, id string, notes string) (models.Consultation, error)
}

// Consultations mirrors the booking table, newest first, with joined
// requester details.
type Consultations struct {
	store ConsultationStore
	feed  backend.Feed
	cast  Broadcaster
	log   zerolog.Logger

	mu      sync.RWMutex
	items   []models.ConsultationWithRequester
	loading bool
	lastErr string

	sub  backend.Subscription
	done chan struct{}
}

func NewConsultations(store ConsultationStore, feed backend.Feed, cast Broadcaster, log zerolog.Logger) *Consultations {
	return &Consultations{
		store: store,
		feed:  feed,
		cast:  cast,
		log:   log.With().Str("collection", consultationsTable).Logger(),
	}
}

func (c *Consultations) Start(ctx context.Context) error {
	c.Refresh(ctx)

	sub, err := c.feed.Subscribe(ctx, consultationsTable)
	if err != nil {
		return err
	}
	c.sub = sub
	c.done = make(chan struct{})

	go func() {
		defer close(c.done)
		for ev := range sub.Events() {
			c.apply(ctx, ev)
			if c.cast != nil {
				c.cast.Announce(consultationsTable, ev)
			}
		}
	}()

	return nil
}

func (c *Consultations) Stop() {
	if c.sub == nil {
		return
	}
	if err := c.sub.Close(); err != nil {
		c.log.Error().Err(err).Msg("close subscription")
	}
	<-c.done
	c.sub = nil
}

func (c *Consultations) Refresh(ctx context.Context) {
	c.mu.Lock()
	c.loading = true
	c.mu.Unlock()

	items, err := c.store.ListWithRequesters(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	if err != nil {
		c.log.Error().Err(err).Msg("consultations fetch failed")
		c.items = nil
		c.lastErr = "Failed to load consultations. Please try again later."
		return
	}
	c.items = items
	c.lastErr = ""
}

func (c *Consultations) apply(ctx context.Context, ev backend.Event) {
	switch ev.Type {
	case backend.EventInsert:
		// The insert payload lacks the joined requester details, so the whole
		// list is re-fetched instead of patching the row in.
		c.Refresh(ctx)

	case backend.EventUpdate:
		var updated models.Consultation
		if err := decodeRow(ev.New, &updated); err != nil {
			c.log.Error().Err(err).Msg("bad update payload")
			return
		}
		c.mu.Lock()
		for i := range c.items {
			if c.items[i].ID == updated.ID {
				// Requester details are not part of the event; keep the ones
				// already joined.
				c.items[i].Consultation = updated
				break
			}
		}
		c.mu.Unlock()

	case backend.EventDelete:
		id := rowID(ev.Old)
		if id == "" {
			return
		}
		c.mu.Lock()
		kept := c.items[:0]
		for _, item := range c.items {
			if item.ID != id {
				kept = append(kept, item)
			}
		}
		c.items = kept
		c.mu.Unlock()
	}
}

func (c *Consultations) Snapshot() []models.ConsultationWithRequester {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.ConsultationWithRequester, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Consultations) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading
}

func (c *Consultations) Err() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastErr
}

// Counts reports totals for the admin dashboard.
func (c *Consultations) Counts() (total int, pending int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, item := range c.items {
		if item.Status == models.ConsultationStatusPending {
			pending++
		}
	}
	return len(c.items), pending
}

func (c *Consultations) GetByID(ctx context.Context, id string) (models.ConsultationWithRequester, error) {
	return c.store.GetByID(ctx, id)
}

// Book persists a new booking request. The mirror reflects it when the insert
// event triggers the re-fetch.
func (c *Consultations) Book(ctx context.Context, booking models.Consultation) (models.Consultation, error) {
	return c.store.Create(ctx, booking)
}

func (c *Consultations) UpdateStatus(ctx context.Context, id string, status models.ConsultationStatus, assignedTo *string) (models.Consultation, error) {
	return c.store.UpdateStatus(ctx, id, status, assignedTo)
}

func (c *Consultations) AddNotes(ctx context.Context, id string, notes string) (models.Consultation, error) {
	return c.store.UpdateNotes(ctx, id, notes)
}
