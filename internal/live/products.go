package live

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"atelier/storefront/internal/backend"
	"atelier/storefront/internal/models"
)

const productsTable = "products"

// ProductStore is the remote catalog the collection mirrors.
type ProductStore interface {
	List(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (models.Product, error)
	Create(ctx context.Context, p models.Product) (models.Product, error)
	Update(ctx context.Context, id string, p models.Product) (models.Product, error)
	Delete(ctx context.Context, id string) error
}

// Products mirrors the catalog, newest first.
type Products struct {
	store ProductStore
	feed  backend.Feed
	cast  Broadcaster
	log   zerolog.Logger

	mu      sync.RWMutex
	items   []models.Product
	loading bool
	lastErr string

	sub  backend.Subscription
	done chan struct{}
}

func NewProducts(store ProductStore, feed backend.Feed, cast Broadcaster, log zerolog.Logger) *Products {
	return &Products{
		store: store,
		feed:  feed,
		cast:  cast,
		log:   log.With().Str("collection", productsTable).Logger(),
	}
}

// Start fetches the initial snapshot and then subscribes to the change
// stream. A fetch failure leaves an empty list with the error exposed for
// display; the subscription is still established so later events land.
func (p *Products) Start(ctx context.Context) error {
	p.Refresh(ctx)

	sub, err := p.feed.Subscribe(ctx, productsTable)
	if err != nil {
		return err
	}
	p.sub = sub
	p.done = make(chan struct{})

	go func() {
		defer close(p.done)
		for ev := range sub.Events() {
			p.apply(ev)
			if p.cast != nil {
				p.cast.Announce(productsTable, ev)
			}
		}
	}()

	return nil
}

// Stop releases the subscription; a later Start never sees duplicate
// delivery.
func (p *Products) Stop() {
	if p.sub == nil {
		return
	}
	if err := p.sub.Close(); err != nil {
		p.log.Error().Err(err).Msg("close subscription")
	}
	<-p.done
	p.sub = nil
}

// Refresh re-runs the bulk fetch and replaces the snapshot.
func (p *Products) Refresh(ctx context.Context) {
	p.mu.Lock()
	p.loading = true
	p.mu.Unlock()

	items, err := p.store.List(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.loading = false
	if err != nil {
		p.log.Error().Err(err).Msg("catalog fetch failed")
		p.items = nil
		p.lastErr = "Failed to load products. Please try again later."
		return
	}
	p.items = items
	p.lastErr = ""
}

func (p *Products) apply(ev backend.Event) {
	switch ev.Type {
	case backend.EventInsert:
		var product models.Product
		if err := decodeRow(ev.New, &product); err != nil {
			p.log.Error().Err(err).Msg("bad insert payload")
			return
		}
		p.mu.Lock()
		// New rows go to the head regardless of their creation time relative
		// to the existing snapshot.
		p.items = append([]models.Product{product}, p.items...)
		p.mu.Unlock()

	case backend.EventUpdate:
		var product models.Product
		if err := decodeRow(ev.New, &product); err != nil {
			p.log.Error().Err(err).Msg("bad update payload")
			return
		}
		p.mu.Lock()
		for i := range p.items {
			if p.items[i].ID == product.ID {
				p.items[i] = product
				break
			}
		}
		p.mu.Unlock()

	case backend.EventDelete:
		id := rowID(ev.Old)
		if id == "" {
			return
		}
		p.mu.Lock()
		kept := p.items[:0]
		for _, item := range p.items {
			if item.ID != id {
				kept = append(kept, item)
			}
		}
		p.items = kept
		p.mu.Unlock()
	}
}

// Snapshot returns a copy of the mirrored list.
func (p *Products) Snapshot() []models.Product {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]models.Product, len(p.items))
	copy(out, p.items)
	return out
}

func (p *Products) Loading() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.loading
}

func (p *Products) Err() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastErr
}

func (p *Products) Count() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.items)
}

func (p *Products) GetByID(ctx context.Context, id string) (models.Product, error) {
	return p.store.GetByID(ctx, id)
}

// Create writes through to the remote store. The mirror picks the row up when
// its insert event arrives, not synchronously with this call.
func (p *Products) Create(ctx context.Context, product models.Product) (models.Product, error) {
	return p.store.Create(ctx, product)
}

func (p *Products) Update(ctx context.Context, id string, product models.Product) (models.Product, error) {
	return p.store.Update(ctx, id, product)
}

func (p *Products) Delete(ctx context.Context, id string) error {
	return p.store.Delete(ctx, id)
}
