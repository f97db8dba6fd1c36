// internal/session/resolver.go
package session

import (
	"context"
	"errors"
	"log/slog"
)

// Resolver answers who the caller is and, on demand, which GitHub token was
// stored for them at login. Absence is reported with ok=false, never an error.
type Resolver struct {
	store  Store
	logger *slog.Logger
}

// NewResolver creates a Resolver backed by store.
func NewResolver(store Store, logger *slog.Logger) *Resolver {
	return &Resolver{store: store, logger: logger}
}

// Identity returns the caller's stable user id.
func (r *Resolver) Identity(ctx context.Context) (string, bool) {
	p, ok := PrincipalFrom(ctx)
	if !ok {
		return "", false
	}
	return p.UserID, true
}

// AccessToken loads the caller's GitHub token from the session store.
func (r *Resolver) AccessToken(ctx context.Context) (string, bool) {
	p, ok := PrincipalFrom(ctx)
	if !ok {
		return "", false
	}

	s, err := r.store.Get(ctx, p.SessionID)
	if err != nil {
		if !errors.Is(err, ErrSessionNotFound) {
			r.logger.Error("Failed to load session", "session_id", p.SessionID, "error", err)
		}
		return "", false
	}
	if s.UserID != p.UserID || s.AccessToken == "" {
		return "", false
	}
	return s.AccessToken, true
}
