// Package cart holds purchase-intent line items in memory, keyed by owner
// (authenticated user id or guest id). Carts are deliberately ephemeral: a
// service restart resets them.
package cart

import (
	"sync"
	"time"

	"atelier/storefront/internal/models"
)

type Store struct {
	mu      sync.RWMutex
	carts   map[string][]models.CartItem
	touched map[string]time.Time
	now     func() time.Time
}

func NewStore() *Store {
	return &Store{
		carts:   make(map[string][]models.CartItem),
		touched: make(map[string]time.Time),
		now:     time.Now,
	}
}

// AddItem merges by item id: an existing line's quantity is incremented by
// the given amount (default 1), a new line is appended.
func (s *Store) AddItem(owner string, item models.CartItem) {
	if item.Quantity <= 0 {
		item.Quantity = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch(owner)

	lines := s.carts[owner]
	for i := range lines {
		if lines[i].ID == item.ID {
			lines[i].Quantity += item.Quantity
			return
		}
	}
	s.carts[owner] = append(lines, item)
}

func (s *Store) RemoveItem(owner, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch(owner)

	lines := s.carts[owner]
	kept := lines[:0]
	for _, line := range lines {
		if line.ID != id {
			kept = append(kept, line)
		}
	}
	s.carts[owner] = kept
}

// UpdateQuantity sets the line's quantity; zero or below removes the line
// entirely rather than erroring.
func (s *Store) UpdateQuantity(owner, id string, quantity int) {
	if quantity <= 0 {
		s.RemoveItem(owner, id)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch(owner)

	lines := s.carts[owner]
	for i := range lines {
		if lines[i].ID == id {
			lines[i].Quantity = quantity
			return
		}
	}
}

func (s *Store) Clear(owner string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, owner)
	delete(s.touched, owner)
}

// Items returns a copy of the owner's lines in insertion order.
func (s *Store) Items(owner string) []models.CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lines := s.carts[owner]
	out := make([]models.CartItem, len(lines))
	copy(out, lines)
	return out
}

// Total is recomputed on every call.
func (s *Store) Total(owner string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var total float64
	for _, line := range s.carts[owner] {
		total += line.Price * float64(line.Quantity)
	}
	return total
}

// ItemCount is the sum of quantities, recomputed on every call.
func (s *Store) ItemCount(owner string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var count int
	for _, line := range s.carts[owner] {
		count += line.Quantity
	}
	return count
}

// PurgeIdle drops carts untouched for longer than maxAge and reports how many
// were removed. The scheduler runs this for guest carts.
func (s *Store) PurgeIdle(maxAge time.Duration) int {
	cutoff := s.now().Add(-maxAge)

	s.mu.Lock()
	defer s.mu.Unlock()

	purged := 0
	for owner, last := range s.touched {
		if last.Before(cutoff) {
			delete(s.carts, owner)
			delete(s.touched, owner)
			purged++
		}
	}
	return purged
}

func (s *Store) touch(owner string) {
	s.touched[owner] = s.now()
}
