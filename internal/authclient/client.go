// Package authclient implements backend.AuthAPI against the hosted platform's
// identity REST API. All remote auth failures are classified into
// apperr.AuthError kinds here, at the boundary, so callers never match on
// message strings.
package authclient

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/guonaihong/gout"
	"github.com/rs/zerolog"

	"atelier/storefront/internal/apperr"
	"atelier/storefront/internal/backend"
	"atelier/storefront/internal/config"
	"atelier/storefront/internal/models"
)

type Client struct {
	baseURL     string
	apiKey      string
	redirectURL string
	timeout     time.Duration
	log         zerolog.Logger

	mu      sync.Mutex
	current *models.Session
	changes chan backend.SessionChange
}

var _ backend.AuthAPI = (*Client)(nil)

func New(cfg config.BackendConfig, log zerolog.Logger) *Client {
	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		redirectURL: cfg.RedirectURL,
		timeout:     cfg.Timeout,
		log:         log,
		changes:     make(chan backend.SessionChange, 16),
	}
}

func (c *Client) Changes() <-chan backend.SessionChange {
	return c.changes
}

// apiError is the error envelope the identity API uses; fields vary by
// endpoint so all variants are carried.
type apiError struct {
	ErrorCode        string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
}

func (e apiError) text() string {
	for _, s := range []string{e.ErrorDescription, e.Msg, e.Message, e.ErrorCode} {
		if s != "" {
			return s
		}
	}
	return ""
}

// signUpResponse covers both shapes the signup endpoint produces: with email
// confirmation enabled the user object arrives at the top level pending
// verification; with confirmation disabled the platform returns a live
// session (access_token plus nested user) instead.
type signUpResponse struct {
	tokenResponse
	ID                 string           `json:"id"`
	Email              string           `json:"email"`
	ConfirmationSentAt string           `json:"confirmation_sent_at"`
	Identities         []map[string]any `json:"identities"`
}

func (c *Client) SignUp(ctx context.Context, email, password, name string) (backend.SignUpOutcome, error) {
	var (
		resp signUpResponse
		code int
	)
	err := gout.POST(c.baseURL+"/auth/v1/signup").
		WithContext(ctx).
		SetTimeout(c.timeout).
		SetHeader(c.headers()).
		SetQuery(gout.H{"redirect_to": c.redirectURL}).
		SetJSON(gout.H{
			"email":    email,
			"password": password,
			"data":     gout.H{"full_name": name},
		}).
		BindJSON(&resp).
		Code(&code).
		Do()
	if err != nil {
		return backend.SignUpOutcome{}, unreachable("signup", err)
	}
	if code < 200 || code > 299 {
		return backend.SignUpOutcome{}, classify(code, resp.text())
	}

	// Confirmation disabled: the account is live immediately and the
	// response carries its session, which signs the caller in.
	if resp.AccessToken != "" {
		c.emit(resp.session(), false)
		return backend.SignUpOutcome{UserID: resp.User.ID}, nil
	}

	// The identity API masks duplicate signups as a success with no
	// identities attached.
	if len(resp.Identities) == 0 {
		return backend.SignUpOutcome{}, &apperr.AuthError{
			Kind:    apperr.AuthEmailAlreadyRegistered,
			Message: "this email is already registered",
		}
	}

	return backend.SignUpOutcome{
		UserID:               resp.ID,
		RequiresVerification: resp.ConfirmationSentAt != "",
	}, nil
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	User         struct {
		ID           string `json:"id"`
		Email        string `json:"email"`
		UserMetadata struct {
			FullName  string `json:"full_name"`
			AvatarURL string `json:"avatar_url"`
		} `json:"user_metadata"`
	} `json:"user"`
	apiError
}

func (c *Client) SignIn(ctx context.Context, email, password string) error {
	var (
		resp tokenResponse
		code int
	)
	err := gout.POST(c.baseURL+"/auth/v1/token").
		WithContext(ctx).
		SetTimeout(c.timeout).
		SetHeader(c.headers()).
		SetQuery(gout.H{"grant_type": "password"}).
		SetJSON(gout.H{"email": email, "password": password}).
		BindJSON(&resp).
		Code(&code).
		Do()
	if err != nil {
		return unreachable("sign in", err)
	}
	if code < 200 || code > 299 {
		return classify(code, resp.text())
	}

	c.emit(resp.session(), false)
	return nil
}

func (c *Client) VerifyRecovery(ctx context.Context, token string) error {
	var (
		resp tokenResponse
		code int
	)
	err := gout.POST(c.baseURL+"/auth/v1/verify").
		WithContext(ctx).
		SetTimeout(c.timeout).
		SetHeader(c.headers()).
		SetJSON(gout.H{"type": "recovery", "token": token}).
		BindJSON(&resp).
		Code(&code).
		Do()
	if err != nil {
		return unreachable("verify recovery", err)
	}
	if code < 200 || code > 299 {
		return &apperr.AuthError{
			Kind:    apperr.AuthInvalidResetLink,
			Message: "the password reset link is invalid or has expired",
		}
	}

	c.emit(resp.session(), true)
	return nil
}

func (c *Client) SignOut(ctx context.Context) error {
	c.mu.Lock()
	token := ""
	if c.current != nil {
		token = c.current.AccessToken
	}
	c.mu.Unlock()

	// The signed-out change is emitted before the remote call resolves so a
	// remote failure can never leave consumers looking authenticated.
	c.emit(nil, false)

	if token == "" {
		return nil
	}

	var code int
	err := gout.POST(c.baseURL+"/auth/v1/logout").
		WithContext(ctx).
		SetTimeout(c.timeout).
		SetHeader(c.bearerHeaders(token)).
		Code(&code).
		Do()
	if err != nil {
		return unreachable("sign out", err)
	}
	// 401 just means the token was already dead; signed out either way.
	if (code < 200 || code > 299) && code != 401 {
		return classify(code, "")
	}
	return nil
}

func (c *Client) Resend(ctx context.Context, email string) error {
	var (
		resp apiError
		code int
	)
	err := gout.POST(c.baseURL+"/auth/v1/resend").
		WithContext(ctx).
		SetTimeout(c.timeout).
		SetHeader(c.headers()).
		SetQuery(gout.H{"redirect_to": c.redirectURL}).
		SetJSON(gout.H{"type": "signup", "email": email}).
		BindJSON(&resp).
		Code(&code).
		Do()
	if err != nil {
		return unreachable("resend verification", err)
	}
	if code < 200 || code > 299 {
		return classify(code, resp.text())
	}
	return nil
}

func (c *Client) SendPasswordReset(ctx context.Context, email string) error {
	var (
		resp apiError
		code int
	)
	err := gout.POST(c.baseURL+"/auth/v1/recover").
		WithContext(ctx).
		SetTimeout(c.timeout).
		SetHeader(c.headers()).
		SetQuery(gout.H{"redirect_to": c.redirectURL}).
		SetJSON(gout.H{"email": email}).
		BindJSON(&resp).
		Code(&code).
		Do()
	if err != nil {
		return unreachable("send password reset", err)
	}
	if code < 200 || code > 299 {
		return classify(code, resp.text())
	}
	return nil
}

func (c *Client) UpdatePassword(ctx context.Context, accessToken, newPassword string) error {
	var (
		resp apiError
		code int
	)
	err := gout.PUT(c.baseURL+"/auth/v1/user").
		WithContext(ctx).
		SetTimeout(c.timeout).
		SetHeader(c.bearerHeaders(accessToken)).
		SetJSON(gout.H{"password": newPassword}).
		BindJSON(&resp).
		Code(&code).
		Do()
	if err != nil {
		return unreachable("update password", err)
	}
	if code < 200 || code > 299 {
		msg := strings.ToLower(resp.text())
		if code == 401 || code == 403 ||
			strings.Contains(msg, "invalid_grant") ||
			strings.Contains(msg, "session missing") {
			return &apperr.AuthError{
				Kind:    apperr.AuthInvalidResetLink,
				Message: "the password reset link is invalid or has expired",
			}
		}
		return classify(code, resp.text())
	}
	return nil
}

func (c *Client) OAuthURL(provider models.OAuthProvider) (string, error) {
	switch provider {
	case models.OAuthProviderGoogle, models.OAuthProviderGitHub:
	default:
		return "", &apperr.AuthError{
			Kind:    apperr.AuthUnknown,
			Message: fmt.Sprintf("unsupported oauth provider %q", provider),
		}
	}

	q := url.Values{}
	q.Set("provider", string(provider))
	q.Set("redirect_to", c.redirectURL)
	return c.baseURL + "/auth/v1/authorize?" + q.Encode(), nil
}

func (r tokenResponse) session() *models.Session {
	return &models.Session{
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
		UserID:       r.User.ID,
		Email:        r.User.Email,
		Metadata: models.UserMetadata{
			FullName:  r.User.UserMetadata.FullName,
			AvatarURL: r.User.UserMetadata.AvatarURL,
		},
		ExpiresAt: time.Now().Add(time.Duration(r.ExpiresIn) * time.Second),
	}
}

func (c *Client) emit(sess *models.Session, recovery bool) {
	c.mu.Lock()
	c.current = sess
	c.mu.Unlock()

	select {
	case c.changes <- backend.SessionChange{Session: sess, Recovery: recovery}:
	default:
		c.log.Warn().Msg("session change dropped: no listener")
	}
}

func (c *Client) headers() gout.H {
	return gout.H{
		"apikey":       c.apiKey,
		"Content-Type": "application/json",
	}
}

func (c *Client) bearerHeaders(token string) gout.H {
	h := c.headers()
	h["Authorization"] = "Bearer " + token
	return h
}

func unreachable(op string, err error) error {
	return &apperr.AuthError{
		Kind:    apperr.AuthServiceUnavailable,
		Message: op + " did not reach the auth service",
		Err:     err,
	}
}

// classify maps an identity API failure to an AuthError kind.
func classify(code int, message string) error {
	msg := strings.ToLower(message)

	switch {
	case strings.Contains(msg, "already registered"), strings.Contains(msg, "already exists"):
		return &apperr.AuthError{Kind: apperr.AuthEmailAlreadyRegistered, Message: message}
	case strings.Contains(msg, "password") && (strings.Contains(msg, "weak") || strings.Contains(msg, "at least")):
		return &apperr.AuthError{Kind: apperr.AuthWeakPassword, Message: message}
	case strings.Contains(msg, "invalid login credentials"), strings.Contains(msg, "invalid_grant"):
		return &apperr.AuthError{Kind: apperr.AuthInvalidCredentials, Message: message}
	case strings.Contains(msg, "email") && strings.Contains(msg, "invalid"):
		return &apperr.AuthError{Kind: apperr.AuthInvalidEmail, Message: message}
	case code >= 500, code == 429:
		return &apperr.AuthError{Kind: apperr.AuthServiceUnavailable, Message: message}
	default:
		return &apperr.AuthError{Kind: apperr.AuthUnknown, Message: message}
	}
}
