package live

import (
	"context"
	"sync"

	"atelier/storefront/internal/backend"
)

// fakeSub hands the test direct control over the event stream a collection
// consumes.
type fakeSub struct {
	events chan backend.Event

	mu     sync.Mutex
	closed bool
}

func newFakeSub() *fakeSub {
	return &fakeSub{events: make(chan backend.Event, 8)}
}

func (s *fakeSub) Events() <-chan backend.Event { return s.events }

func (s *fakeSub) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.events)
	}
	return nil
}

func (s *fakeSub) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

type fakeFeed struct {
	sub *fakeSub
	err error
}

func (f *fakeFeed) Subscribe(context.Context, string) (backend.Subscription, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.sub, nil
}
