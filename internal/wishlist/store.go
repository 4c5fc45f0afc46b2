// Package wishlist persists each user's liked items under a user-scoped key,
// written through on every mutation. Guests share the "guest" key. Concurrent
// tabs are last-write-wins; no cross-client invalidation is attempted.
package wishlist

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"atelier/storefront/internal/apperr"
	"atelier/storefront/internal/backend"
	"atelier/storefront/internal/models"
)

// Notice is the user-visible outcome of a wishlist mutation. Every mutation
// that changes (or refuses to change) the list produces one; a no-op removal
// produces none.
type Notice struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

type Store struct {
	kv  backend.KV
	log zerolog.Logger
}

func NewStore(kv backend.KV, log zerolog.Logger) *Store {
	return &Store{kv: kv, log: log}
}

func storageKey(userID string) string {
	if userID == "" {
		return "wishlist_guest"
	}
	return "wishlist_" + userID
}

// Items loads the user's persisted list; a never-written key is an empty
// list.
func (s *Store) Items(ctx context.Context, userID string) ([]models.WishlistItem, error) {
	raw, err := s.kv.Get(ctx, storageKey(userID))
	if err != nil {
		if apperr.IsNotFound(err) {
			return []models.WishlistItem{}, nil
		}
		return nil, fmt.Errorf("load wishlist: %w", err)
	}

	var items []models.WishlistItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode wishlist: %w", err)
	}
	return items, nil
}

// Add appends the item unless one with the same id is already present, in
// which case the list is untouched and the notice says so.
func (s *Store) Add(ctx context.Context, userID string, item models.WishlistItem) (Notice, error) {
	items, err := s.Items(ctx, userID)
	if err != nil {
		return Notice{}, err
	}

	for _, existing := range items {
		if existing.ID == item.ID {
			return Notice{
				Title:  "Already in Wishlist",
				Detail: fmt.Sprintf("%s is already in your wishlist.", item.Name),
			}, nil
		}
	}

	items = append(items, item)
	if err := s.save(ctx, userID, items); err != nil {
		return Notice{}, err
	}

	return Notice{
		Title:  "Added to Wishlist",
		Detail: fmt.Sprintf("%s has been added to your wishlist.", item.Name),
	}, nil
}

// Remove deletes by id. Removing an absent id is a no-op with no notice.
func (s *Store) Remove(ctx context.Context, userID, id string) (*Notice, error) {
	items, err := s.Items(ctx, userID)
	if err != nil {
		return nil, err
	}

	var removed *models.WishlistItem
	kept := make([]models.WishlistItem, 0, len(items))
	for _, item := range items {
		if item.ID == id {
			item := item
			removed = &item
			continue
		}
		kept = append(kept, item)
	}
	if removed == nil {
		return nil, nil
	}

	if err := s.save(ctx, userID, kept); err != nil {
		return nil, err
	}

	return &Notice{
		Title:  "Removed from Wishlist",
		Detail: fmt.Sprintf("%s has been removed from your wishlist.", removed.Name),
	}, nil
}

func (s *Store) Contains(ctx context.Context, userID, id string) (bool, error) {
	items, err := s.Items(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, item := range items {
		if item.ID == id {
			return true, nil
		}
	}
	return false, nil
}

// Clear always notifies, even when the list was already empty.
func (s *Store) Clear(ctx context.Context, userID string) (Notice, error) {
	if err := s.save(ctx, userID, []models.WishlistItem{}); err != nil {
		return Notice{}, err
	}
	return Notice{
		Title:  "Wishlist Cleared",
		Detail: "All items have been removed from your wishlist.",
	}, nil
}

func (s *Store) save(ctx context.Context, userID string, items []models.WishlistItem) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode wishlist: %w", err)
	}
	if err := s.kv.Set(ctx, storageKey(userID), raw); err != nil {
		return fmt.Errorf("persist wishlist: %w", err)
	}
	return nil
}
