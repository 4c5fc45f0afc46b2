package models

import "time"

type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

// User is the merged view of a remote auth identity and its profile record.
// It is owned by the session orchestrator; everything else reads it.
type User struct {
	ID        string
	Email     string
	Name      string
	Role      UserRole
	AvatarURL *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (u User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

// Profile is the business-owned record attached to an auth identity, stored in
// the platform's profiles table and keyed by the identity id.
type Profile struct {
	ID        string
	Email     string
	FullName  string
	Role      UserRole
	AvatarURL *string
	UpdatedAt time.Time
}

// UserMetadata is the free-form metadata the identity provider stores with an
// auth identity at signup (or fills in from an OAuth provider).
type UserMetadata struct {
	FullName  string
	AvatarURL string
}

// Session is the platform-issued proof of authentication. Refresh and expiry
// are the platform's business; this service only carries the material.
type Session struct {
	AccessToken  string
	RefreshToken string
	UserID       string
	Email        string
	Metadata     UserMetadata
	ExpiresAt    time.Time
}

type OAuthProvider string

const (
	OAuthProviderGoogle OAuthProvider = "google"
	OAuthProviderGitHub OAuthProvider = "github"
)
