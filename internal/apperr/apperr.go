// Package apperr holds the error taxonomy shared across the service. Local
// validation failures, classified auth failures, and data access failures are
// distinct types so callers can branch without string matching.
package apperr

import (
	"errors"
	"fmt"
)

// ErrNotFound is the sentinel used to mean "no row yet". Every other data
// access failure is fatal for that call.
var ErrNotFound = errors.New("not found")

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// ValidationError is a local, pre-network field check failure. It never
// reaches the remote backend: callers must reject the input before any call
// is issued.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Reason)
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

type AuthKind string

const (
	AuthEmailAlreadyRegistered AuthKind = "email_already_registered"
	AuthWeakPassword           AuthKind = "weak_password"
	AuthInvalidEmail           AuthKind = "invalid_email"
	AuthInvalidCredentials     AuthKind = "invalid_credentials"
	AuthServiceUnavailable     AuthKind = "service_unavailable"
	AuthInvalidResetLink       AuthKind = "invalid_or_expired_reset_link"
	AuthUnknown                AuthKind = "unknown"
)

// AuthError is a remote auth failure classified at the auth client boundary.
type AuthError struct {
	Kind    AuthKind
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("auth: %s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("auth: %s", e.Kind)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// AuthKindOf returns the classified kind, or AuthUnknown when err is not an
// AuthError.
func AuthKindOf(err error) AuthKind {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return AuthUnknown
}

// DataAccessError wraps a remote read or write failure with the operation and
// table it hit.
type DataAccessError struct {
	Op    string
	Table string
	Err   error
}

func (e *DataAccessError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Table, e.Err)
}

func (e *DataAccessError) Unwrap() error {
	return e.Err
}

// ProfileSyncError records a profile upsert that failed after the auth
// identity was created. It is non-fatal to signup: the profile can be
// completed after email verification.
type ProfileSyncError struct {
	UserID string
	Err    error
}

func (e *ProfileSyncError) Error() string {
	return fmt.Sprintf("profile sync for %s: %v", e.UserID, e.Err)
}

func (e *ProfileSyncError) Unwrap() error {
	return e.Err
}
