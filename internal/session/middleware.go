// internal/session/middleware.go
package session

import (
	"errors"
	"log/slog"
	"net/http"
)

// Authenticate attaches the Principal from a valid session cookie to the
// request context. Requests without a valid cookie pass through anonymously.
func Authenticate(m *Manager, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := m.Principal(r)
			if err != nil {
				if !errors.Is(err, http.ErrNoCookie) {
					logger.Debug("Ignoring invalid session cookie", "error", err)
				}
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}
