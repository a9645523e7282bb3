package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrInvalidCredentials = errors.New("invalid login credentials")
	ErrSessionRevoked     = errors.New("session has been signed out")
	ErrTokenInvalid       = errors.New("invalid session token")
	// ErrAuthUnavailable means the token could not be checked at all.
	ErrAuthUnavailable = errors.New("authentication service unavailable")
)

// SessionState is tri-state: UNKNOWN must never be read as ABSENT.
type SessionState string

const (
	SessionUnknown SessionState = "unknown"
	SessionAbsent  SessionState = "absent"
	SessionPresent SessionState = "present"
)

// Session is returned to the admin after sign-in. The token is opaque to
// everything but the auth provider.
type Session struct {
	AccessToken string    `json:"accessToken"`
	TokenType   string    `json:"tokenType"`
	ExpiresAt   time.Time `json:"expiresAt"`
	Email       string    `json:"email"`
}

// Principal is the verified identity behind a session token.
type Principal struct {
	Subject   string
	Email     string
	TokenID   string
	ExpiresAt time.Time
}

type AuthProvider interface {
	SignIn(ctx context.Context, email, password string) (*Session, error)
	Verify(ctx context.Context, token string) (*Principal, error)
}

// SessionStore remembers signed-out tokens until they would have expired.
type SessionStore interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type AuthUsecase interface {
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context, principal *Principal) error
	Resolve(ctx context.Context, token string) (SessionState, *Principal, error)
}
