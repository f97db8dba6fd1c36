// internal/session/cookie_test.go
package session

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func issueCookie(t *testing.T, m *Manager, s Session) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	require.NoError(t, m.Issue(rec, s))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

func TestManager_RoundTrip(t *testing.T) {
	m := NewManager(testSecret, time.Hour, true)
	s := Session{ID: "sid-1", UserID: "42", Login: "alice", ExpiresAt: time.Now().Add(time.Hour)}

	c := issueCookie(t, m, s)
	assert.Equal(t, CookieName, c.Name)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.NotContains(t, c.Value, "token")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(c)

	p, err := m.Principal(req)
	require.NoError(t, err)
	assert.Equal(t, Principal{SessionID: "sid-1", UserID: "42", Login: "alice"}, p)
}

func TestManager_RejectsBadCookies(t *testing.T) {
	m := NewManager(testSecret, time.Hour, false)
	s := Session{ID: "sid-1", UserID: "42", Login: "alice", ExpiresAt: time.Now().Add(time.Hour)}

	t.Run("missing cookie", func(t *testing.T) {
		_, err := m.Principal(httptest.NewRequest(http.MethodGet, "/", nil))
		assert.ErrorIs(t, err, http.ErrNoCookie)
	})

	t.Run("signed with another secret", func(t *testing.T) {
		other := NewManager("ffffffffffffffffffffffffffffffff", time.Hour, false)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(issueCookie(t, other, s))

		_, err := m.Principal(req)
		assert.Error(t, err)
	})

	t.Run("tampered payload", func(t *testing.T) {
		c := issueCookie(t, m, s)
		c.Value = c.Value[:len(c.Value)-2] + "xx"
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(c)

		_, err := m.Principal(req)
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		c := issueCookie(t, m, s)
		m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		defer func() { m.now = time.Now }()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(c)

		_, err := m.Principal(req)
		assert.Error(t, err)
	})
}

func TestManager_Clear(t *testing.T) {
	m := NewManager(testSecret, time.Hour, false)
	rec := httptest.NewRecorder()

	m.Clear(rec)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestAuthenticate(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	m := NewManager(testSecret, time.Hour, false)

	var got Principal
	var ok bool
	h := Authenticate(m, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = PrincipalFrom(r.Context())
	}))

	t.Run("anonymous without cookie", func(t *testing.T) {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		assert.False(t, ok)
	})

	t.Run("anonymous with garbage cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: "garbage"})
		h.ServeHTTP(httptest.NewRecorder(), req)
		assert.False(t, ok)
	})

	t.Run("principal from a valid cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(issueCookie(t, m, Session{ID: "sid", UserID: "7", Login: "bob", ExpiresAt: time.Now().Add(time.Hour)}))
		h.ServeHTTP(httptest.NewRecorder(), req)
		require.True(t, ok)
		assert.Equal(t, "7", got.UserID)
	})
}
