package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"atelier/storefront/internal/cart"
	"atelier/storefront/internal/live"
)

// Scheduler runs the background maintenance the storefront needs: purging
// idle guest carts and resyncing the live collections. The resync reconciles
// any change that fell into the gap between a collection's initial fetch and
// its subscription becoming active.
type Scheduler struct {
	cron          *cron.Cron
	carts         *cart.Store
	products      *live.Products
	consultations *live.Consultations
	guestTTL      time.Duration
	log           zerolog.Logger
}

func NewScheduler(
	carts *cart.Store,
	products *live.Products,
	consultations *live.Consultations,
	guestTTL time.Duration,
	log zerolog.Logger,
) *Scheduler {
	return &Scheduler{
		cron:          cron.New(cron.WithSeconds()),
		carts:         carts,
		products:      products,
		consultations: consultations,
		guestTTL:      guestTTL,
		log:           log,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("0 */30 * * * *", s.purgeCarts); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("0 0 */1 * * *", s.resyncCollections); err != nil { // hourly
		return err
	}

	s.cron.Start()
	return nil
}

// Stop halts scheduling and waits, bounded, for running jobs to drain.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		s.log.Warn().Msg("jobs still running at shutdown")
	}
}

func (s *Scheduler) purgeCarts() {
	if purged := s.carts.PurgeIdle(s.guestTTL); purged > 0 {
		s.log.Info().Int("purged", purged).Msg("idle carts purged")
	}
}

func (s *Scheduler) resyncCollections() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s.products.Refresh(ctx)
	s.consultations.Refresh(ctx)
	s.log.Debug().Msg("collections resynced")
}
