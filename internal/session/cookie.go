// internal/session/cookie.go
package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CookieName is the name of the session cookie.
const CookieName = "gd_session"

const issuer = "github-dashboard"

type claims struct {
	Login string `json:"login"`
	jwt.RegisteredClaims
}

// Manager signs and verifies session cookies. The cookie only identifies the
// session; the access token never leaves the server.
type Manager struct {
	secret []byte
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

// NewManager creates a Manager that signs cookies with secret (HS256).
func NewManager(secret string, ttl time.Duration, secure bool) *Manager {
	return &Manager{
		secret: []byte(secret),
		ttl:    ttl,
		secure: secure,
		now:    time.Now,
	}
}

// TTL is how long issued sessions stay valid.
func (m *Manager) TTL() time.Duration { return m.ttl }

// Issue writes a signed cookie for s.
func (m *Manager) Issue(w http.ResponseWriter, s Session) error {
	now := m.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Login: s.Login,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        s.ID,
			Subject:   s.UserID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
		},
	})
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return fmt.Errorf("sign session cookie: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    signed,
		Path:     "/",
		Expires:  s.ExpiresAt,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Clear expires the session cookie in the browser.
func (m *Manager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Principal verifies the request's session cookie.
func (m *Manager) Principal(r *http.Request) (Principal, error) {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return Principal{}, err
	}
	return m.parse(c.Value)
}

func (m *Manager) parse(raw string) (Principal, error) {
	var cl claims
	token, err := jwt.ParseWithClaims(raw, &cl, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return Principal{}, fmt.Errorf("parse session cookie: %w", err)
	}
	if !token.Valid {
		return Principal{}, errors.New("invalid session cookie")
	}
	if cl.ID == "" || cl.Subject == "" {
		return Principal{}, errors.New("session cookie is missing its id or subject")
	}

	return Principal{
		SessionID: cl.ID,
		UserID:    cl.Subject,
		Login:     cl.Login,
	}, nil
}
