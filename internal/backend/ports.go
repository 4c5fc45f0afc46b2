// Package backend defines the narrow ports through which the service talks to
// the hosted platform. Orchestration logic depends on these interfaces only,
// so it can be exercised against in-memory fakes.
package backend

import (
	"context"

	"atelier/storefront/internal/models"
)

// SessionChange is a notification that the remote auth state moved. A nil
// Session means signed out. Recovery marks a change produced by a
// password-recovery token exchange; consumers must not block such a change on
// profile resolution.
type SessionChange struct {
	Session  *models.Session
	Recovery bool
}

// SignUpOutcome reports what the identity provider did with a signup call.
type SignUpOutcome struct {
	UserID               string
	RequiresVerification bool
}

// AuthAPI is the identity capability of the hosted platform. Successful
// sign-in, recovery verification, and sign-out each emit exactly one
// SessionChange on Changes.
type AuthAPI interface {
	SignUp(ctx context.Context, email, password, name string) (SignUpOutcome, error)
	SignIn(ctx context.Context, email, password string) error
	SignOut(ctx context.Context) error
	Resend(ctx context.Context, email string) error
	SendPasswordReset(ctx context.Context, email string) error
	// UpdatePassword resolves the acting identity from the supplied recovery
	// or session token, not from local state.
	UpdatePassword(ctx context.Context, accessToken, newPassword string) error
	// VerifyRecovery exchanges an emailed recovery token for a session and
	// emits the resulting change flagged as Recovery.
	VerifyRecovery(ctx context.Context, token string) error
	OAuthURL(provider models.OAuthProvider) (string, error)
	Changes() <-chan SessionChange
}

type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
)

// Event is one realtime row change on a watched table. New and Old are raw
// row payloads as delivered by the platform; consumers decode what they need.
type Event struct {
	Type EventType      `json:"type"`
	New  map[string]any `json:"new"`
	Old  map[string]any `json:"old"`
}

// Subscription is a live change stream for one table. Events is closed when
// the subscription ends; Close releases it so a reactivated consumer never
// sees duplicate delivery.
type Subscription interface {
	Events() <-chan Event
	Close() error
}

// Feed is the realtime capability: one subscription per watched table.
type Feed interface {
	Subscribe(ctx context.Context, table string) (Subscription, error)
}

// KV is the small persisted key-value capability backing the wishlist. Get
// returns apperr.ErrNotFound when the key has never been written.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}
