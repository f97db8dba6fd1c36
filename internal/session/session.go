// internal/session/session.go
package session

import (
	"context"
	"errors"
	"time"
)

// ErrSessionNotFound is returned by a Store when the id is unknown or expired.
var ErrSessionNotFound = errors.New("session not found")

// Session is the server-side half of a login: who signed in and the GitHub
// token they granted.
type Session struct {
	ID          string
	UserID      string
	Login       string
	AccessToken string
	ExpiresAt   time.Time
}

// Store persists sessions between requests.
type Store interface {
	Create(ctx context.Context, s Session) error
	Get(ctx context.Context, id string) (Session, error)
	Delete(ctx context.Context, id string) error
}

// Principal is the authenticated caller as carried in the session cookie.
type Principal struct {
	SessionID string
	UserID    string
	Login     string
}

type principalKey struct{}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the caller stored in ctx, if any.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	if !ok || p.UserID == "" {
		return Principal{}, false
	}
	return p, true
}
