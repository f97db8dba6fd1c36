// internal/session/memory.go
package session

import (
	"context"
	"time"

	"github-dashboard/internal/cache"
)

// MemoryStore keeps sessions in process memory. Sessions are lost on restart.
type MemoryStore struct {
	sessions *cache.Cache[string, Session]
	now      func() time.Time
}

// NewMemoryStore wraps c as a session store.
func NewMemoryStore(c *cache.Cache[string, Session]) *MemoryStore {
	return &MemoryStore{sessions: c, now: time.Now}
}

// Create stores sess until its ExpiresAt; already expired sessions are dropped.
func (s *MemoryStore) Create(_ context.Context, sess Session) error {
	s.sessions.Set(sess.ID, sess, sess.ExpiresAt.Sub(s.now()))
	return nil
}

// Get returns the session or ErrSessionNotFound once it has expired.
func (s *MemoryStore) Get(_ context.Context, id string) (Session, error) {
	sess, ok := s.sessions.Get(id)
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	return sess, nil
}

// Delete removes the session if present.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.sessions.Delete(id)
	return nil
}
