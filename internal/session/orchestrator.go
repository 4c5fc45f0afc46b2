// Package session owns "who is logged in". The Orchestrator is the only
// component allowed to talk to the identity API, and the only writer of the
// current user and session. Everything else reads them.
package session

import (
	"context"
	"regexp"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"atelier/storefront/internal/apperr"
	"atelier/storefront/internal/backend"
	"atelier/storefront/internal/models"
)

// MinPasswordLength is enforced locally, before any remote call.
const MinPasswordLength = 8

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type State string

const (
	StateIdle            State = "idle"
	StateLoading         State = "loading"
	StateAuthenticated   State = "authenticated"
	StateUnauthenticated State = "unauthenticated"
)

// ProfileStore is the slice of the profiles table the orchestrator needs.
type ProfileStore interface {
	GetByID(ctx context.Context, id string) (models.Profile, error)
	Upsert(ctx context.Context, p models.Profile) error
}

// SignUpResult distinguishes "fully succeeded", "succeeded with pending
// profile sync", and the verification requirement. A failed profile upsert
// never rolls back the created identity: profile completion is retried after
// verification.
type SignUpResult struct {
	IdentityCreated      bool
	ProfileSynced        bool
	RequiresVerification bool
	Message              string
	ProfileErr           error
}

// ResendResult is a plain outcome: resend failures are expected and
// non-exceptional for the caller's flow.
type ResendResult struct {
	Success bool
	Message string
}

type Orchestrator struct {
	auth     backend.AuthAPI
	profiles ProfileStore
	log      zerolog.Logger

	mu      sync.RWMutex
	state   State
	user    *models.User
	session *models.Session

	stop   context.CancelFunc
	closed chan struct{}
}

func NewOrchestrator(auth backend.AuthAPI, profiles ProfileStore, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		auth:     auth,
		profiles: profiles,
		log:      log,
		state:    StateIdle,
	}
}

// Start begins consuming session-change notifications. It must be called once
// before any auth operation; Stop releases the listener.
func (o *Orchestrator) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	o.stop = cancel
	o.closed = make(chan struct{})

	go func() {
		defer close(o.closed)
		for {
			select {
			case <-ctx.Done():
				return
			case change, ok := <-o.auth.Changes():
				if !ok {
					return
				}
				o.handleChange(ctx, change)
			}
		}
	}()
}

func (o *Orchestrator) Stop() {
	if o.stop != nil {
		o.stop()
		<-o.closed
	}
}

// handleChange reconciles a remote session change with the local user. The
// transition into StateAuthenticated is gated on profile resolution, except
// for recovery-flow changes, which get a placeholder user immediately so a
// password reset never blocks on a profile fetch it does not need.
func (o *Orchestrator) handleChange(ctx context.Context, change backend.SessionChange) {
	if change.Session == nil {
		o.mu.Lock()
		o.session = nil
		o.user = nil
		o.state = StateUnauthenticated
		o.mu.Unlock()
		return
	}

	sess := change.Session

	o.mu.Lock()
	o.session = sess
	o.state = StateLoading
	o.mu.Unlock()

	if change.Recovery {
		o.setUser(&models.User{
			ID:    sess.UserID,
			Email: sess.Email,
			Name:  "User",
			Role:  models.UserRoleUser,
		})
		return
	}

	o.setUser(o.resolveUser(ctx, sess))
}

// resolveUser merges the profile record with the session's identity data.
// A missing profile is not an error: the user gets defaults (role user, name
// from identity metadata) so the sign-in never fails on an absent row.
func (o *Orchestrator) resolveUser(ctx context.Context, sess *models.Session) *models.User {
	user := &models.User{
		ID:    sess.UserID,
		Email: sess.Email,
		Name:  "User",
		Role:  models.UserRoleUser,
	}
	if sess.Metadata.FullName != "" {
		user.Name = sess.Metadata.FullName
	}
	if sess.Metadata.AvatarURL != "" {
		avatar := sess.Metadata.AvatarURL
		user.AvatarURL = &avatar
	}

	profile, err := o.profiles.GetByID(ctx, sess.UserID)
	if err != nil {
		if !apperr.IsNotFound(err) {
			o.log.Error().Err(err).Str("user_id", sess.UserID).Msg("profile fetch failed, using session defaults")
		}
		return user
	}

	if profile.FullName != "" {
		user.Name = profile.FullName
	}
	if profile.Role != "" {
		user.Role = profile.Role
	}
	if profile.AvatarURL != nil {
		user.AvatarURL = profile.AvatarURL
	}
	user.UpdatedAt = profile.UpdatedAt
	return user
}

func (o *Orchestrator) setUser(user *models.User) {
	o.mu.Lock()
	o.user = user
	o.state = StateAuthenticated
	o.mu.Unlock()
}

// Login signs in with email and password. It mutates no user state itself:
// the session-change notification emitted by the identity API populates the
// user, exactly once per successful call.
func (o *Orchestrator) Login(ctx context.Context, email, password string) error {
	if strings.TrimSpace(email) == "" {
		return &apperr.ValidationError{Field: "email", Reason: "required"}
	}
	if password == "" {
		return &apperr.ValidationError{Field: "password", Reason: "required"}
	}

	return o.auth.SignIn(ctx, email, password)
}

// SignUp creates an auth identity and then upserts its profile record. All
// field checks run before any remote call.
func (o *Orchestrator) SignUp(ctx context.Context, email, password, name string) (SignUpResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	name = strings.TrimSpace(name)

	if email == "" {
		return SignUpResult{}, &apperr.ValidationError{Field: "email", Reason: "required"}
	}
	if !emailPattern.MatchString(email) {
		return SignUpResult{}, &apperr.ValidationError{Field: "email", Reason: "invalid format"}
	}
	if password == "" {
		return SignUpResult{}, &apperr.ValidationError{Field: "password", Reason: "required"}
	}
	if len(password) < MinPasswordLength {
		return SignUpResult{}, &apperr.ValidationError{Field: "password", Reason: "too short"}
	}
	if name == "" {
		return SignUpResult{}, &apperr.ValidationError{Field: "name", Reason: "required"}
	}

	outcome, err := o.auth.SignUp(ctx, email, password, name)
	if err != nil {
		return SignUpResult{}, err
	}

	result := SignUpResult{
		IdentityCreated:      true,
		RequiresVerification: outcome.RequiresVerification,
		Message:              "Account created successfully! Please check your email to verify your account.",
	}

	if err := o.profiles.Upsert(ctx, models.Profile{
		ID:       outcome.UserID,
		Email:    email,
		FullName: name,
		Role:     models.UserRoleUser,
	}); err != nil {
		// Reported but not fatal: the identity exists and the profile can be
		// completed after verification.
		syncErr := &apperr.ProfileSyncError{UserID: outcome.UserID, Err: err}
		o.log.Error().Err(syncErr).Msg("profile creation failed after signup")
		result.ProfileErr = syncErr
		return result, nil
	}

	result.ProfileSynced = true
	return result, nil
}

// ResendVerification is best-effort and never returns an error.
func (o *Orchestrator) ResendVerification(ctx context.Context, email string) ResendResult {
	if err := o.auth.Resend(ctx, email); err != nil {
		o.log.Error().Err(err).Msg("resend verification failed")
		return ResendResult{Success: false, Message: "Failed to resend verification email"}
	}
	return ResendResult{Success: true, Message: "Verification email resent successfully!"}
}

// SignInWithOAuth returns the provider's authorize URL; the session change
// arrives only after the browser round-trip completes.
func (o *Orchestrator) SignInWithOAuth(provider models.OAuthProvider) (string, error) {
	return o.auth.OAuthURL(provider)
}

// CompleteRecovery exchanges an emailed recovery token for a recovery-flow
// session.
func (o *Orchestrator) CompleteRecovery(ctx context.Context, token string) error {
	return o.auth.VerifyRecovery(ctx, token)
}

// Logout clears local state eagerly, before the remote call resolves, so the
// client never looks authenticated while it is not. A remote sign-out failure
// is logged and swallowed; calling Logout repeatedly is safe.
func (o *Orchestrator) Logout(ctx context.Context) {
	o.mu.Lock()
	o.user = nil
	o.session = nil
	o.state = StateUnauthenticated
	o.mu.Unlock()

	if err := o.auth.SignOut(ctx); err != nil {
		o.log.Error().Err(err).Msg("remote sign-out failed, local state cleared anyway")
	}
}

func (o *Orchestrator) ResetPassword(ctx context.Context, email string) error {
	if strings.TrimSpace(email) == "" {
		return &apperr.ValidationError{Field: "email", Reason: "required"}
	}
	return o.auth.SendPasswordReset(ctx, email)
}

// UpdatePassword sets a new password using the recovery (or session) token
// the caller carries; the identity API resolves the acting user from it.
func (o *Orchestrator) UpdatePassword(ctx context.Context, accessToken, newPassword string) error {
	if len(newPassword) < MinPasswordLength {
		return &apperr.ValidationError{Field: "password", Reason: "too short"}
	}
	return o.auth.UpdatePassword(ctx, accessToken, newPassword)
}

// CurrentUser returns a copy of the resolved user, or nil when no session is
// active.
func (o *Orchestrator) CurrentUser() *models.User {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.user == nil {
		return nil
	}
	u := *o.user
	return &u
}

func (o *Orchestrator) CurrentSession() *models.Session {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.session == nil {
		return nil
	}
	s := *o.session
	return &s
}

func (o *Orchestrator) State() State {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.state
}

// IsAdmin derives purely from the current user's profile role; it never
// infers beyond what the profile record states.
func (o *Orchestrator) IsAdmin() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.user != nil && o.user.IsAdmin()
}
