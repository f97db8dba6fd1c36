// internal/session/postgres.go
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github-dashboard/internal/database"
)

// PostgresStore keeps sessions in the sessions table. Access tokens are
// stored sealed.
type PostgresStore struct {
	q      database.Querier
	sealer *TokenSealer
	logger *slog.Logger
}

// NewPostgresStore creates a store on top of the generated queries.
func NewPostgresStore(q database.Querier, sealer *TokenSealer, logger *slog.Logger) *PostgresStore {
	return &PostgresStore{q: q, sealer: sealer, logger: logger}
}

// Create inserts sess with its access token sealed.
func (s *PostgresStore) Create(ctx context.Context, sess Session) error {
	sealed, err := s.sealer.Seal(sess.AccessToken)
	if err != nil {
		return fmt.Errorf("seal session token: %w", err)
	}
	_, err = s.q.CreateSession(ctx, database.CreateSessionParams{
		ID:          sess.ID,
		UserID:      sess.UserID,
		Login:       sess.Login,
		AccessToken: sealed,
		ExpiresAt:   sess.ExpiresAt,
	})
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// Get loads an unexpired session and unseals its token.
func (s *PostgresStore) Get(ctx context.Context, id string) (Session, error) {
	row, err := s.q.GetActiveSession(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return Session{}, ErrSessionNotFound
	} else if err != nil {
		return Session{}, fmt.Errorf("get session: %w", err)
	}
	token, err := s.sealer.Open(row.AccessToken)
	if err != nil {
		return Session{}, fmt.Errorf("get session %s: %w", id, err)
	}
	return Session{
		ID:          row.ID,
		UserID:      row.UserID,
		Login:       row.Login,
		AccessToken: token,
		ExpiresAt:   row.ExpiresAt,
	}, nil
}

// Delete removes the session; unknown ids are not an error.
func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	if err := s.q.DeleteSession(ctx, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Purge removes expired rows.
func (s *PostgresStore) Purge(ctx context.Context) (int64, error) {
	n, err := s.q.DeleteExpiredSessions(ctx)
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	return n, nil
}

// RunPurge calls Purge every interval until ctx is done.
func (s *PostgresStore) RunPurge(ctx context.Context, interval time.Duration) {
	s.logger.Info("Starting session purger", "interval", interval.String())
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			n, err := s.Purge(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				s.logger.Error("Failed to purge expired sessions", "error", err)
				continue
			}
			if n > 0 {
				s.logger.Info("Purged expired sessions", "count", n)
			}
		case <-ctx.Done():
			s.logger.Info("Session purger shutting down", "reason", ctx.Err())
			return
		}
	}
}
