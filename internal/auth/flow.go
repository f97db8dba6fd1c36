// internal/auth/flow.go
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	githuboauth "golang.org/x/oauth2/github"

	"github-dashboard/internal/model"
	"github-dashboard/internal/session"
)

const (
	stateCookie  = "gd_oauth_state"
	returnCookie = "gd_return_to"
	stateTTL     = 10 * time.Minute
)

// IdentityLookup resolves the GitHub account behind a freshly issued token.
type IdentityLookup func(ctx context.Context, token string) (model.User, error)

// Flow implements GitHub OAuth login and logout on top of a session store.
type Flow struct {
	oauth    *oauth2.Config
	lookup   IdentityLookup
	store    session.Store
	sessions *session.Manager
	secure   bool
	logger   *slog.Logger
	now      func() time.Time
}

// Config holds the OAuth application credentials.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	// Endpoint defaults to github.com.
	Endpoint oauth2.Endpoint
	Secure   bool
}

// NewFlow creates a new Flow instance.
func NewFlow(cfg Config, lookup IdentityLookup, store session.Store, sessions *session.Manager, logger *slog.Logger) *Flow {
	endpoint := cfg.Endpoint
	if endpoint.AuthURL == "" {
		endpoint = githuboauth.Endpoint
	}
	return &Flow{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     endpoint,
			Scopes:       []string{"repo"},
		},
		lookup:   lookup,
		store:    store,
		sessions: sessions,
		secure:   cfg.Secure,
		logger:   logger,
		now:      time.Now,
	}
}

// Login redirects the browser to GitHub's consent page.
// GET /auth/login?returnUrl=/path
func (f *Flow) Login(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()
	f.setShortCookie(w, stateCookie, state)
	f.setShortCookie(w, returnCookie, localPath(r.URL.Query().Get("returnUrl")))

	http.Redirect(w, r, f.oauth.AuthCodeURL(state), http.StatusFound)
}

// Callback completes the OAuth exchange and starts a session.
// GET /auth/callback?code=...&state=...
func (f *Flow) Callback(w http.ResponseWriter, r *http.Request) {
	want, err := r.Cookie(stateCookie)
	if err != nil || want.Value == "" || want.Value != r.URL.Query().Get("state") {
		http.Error(w, "invalid OAuth state", http.StatusBadRequest)
		return
	}
	f.clearCookie(w, stateCookie)

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing authorization code", http.StatusBadRequest)
		return
	}

	sess, err := f.start(r.Context(), code)
	if err != nil {
		f.logger.Error("Failed to complete GitHub login", "error", err)
		http.Error(w, "login failed", http.StatusBadGateway)
		return
	}
	if err := f.sessions.Issue(w, sess); err != nil {
		f.logger.Error("Failed to issue session cookie", "error", err)
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}
	f.logger.Info("User signed in", "user_id", sess.UserID, "login", sess.Login)

	returnTo := "/"
	if c, err := r.Cookie(returnCookie); err == nil {
		returnTo = localPath(c.Value)
	}
	f.clearCookie(w, returnCookie)
	http.Redirect(w, r, returnTo, http.StatusFound)
}

// Logout ends the current session and sends the browser home.
// GET /auth/logout
func (f *Flow) Logout(w http.ResponseWriter, r *http.Request) {
	if p, ok := session.PrincipalFrom(r.Context()); ok {
		if err := f.store.Delete(r.Context(), p.SessionID); err != nil {
			f.logger.Error("Failed to delete session", "session_id", p.SessionID, "error", err)
		}
	}
	f.sessions.Clear(w)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (f *Flow) start(ctx context.Context, code string) (session.Session, error) {
	tok, err := f.oauth.Exchange(ctx, code)
	if err != nil {
		return session.Session{}, fmt.Errorf("exchange code: %w", err)
	}

	user, err := f.lookup(ctx, tok.AccessToken)
	if err != nil {
		return session.Session{}, err
	}

	sess := session.Session{
		ID:          uuid.NewString(),
		UserID:      strconv.FormatInt(user.ID, 10),
		Login:       user.Login,
		AccessToken: tok.AccessToken,
		ExpiresAt:   f.now().Add(f.sessions.TTL()),
	}
	if err := f.store.Create(ctx, sess); err != nil {
		return session.Session{}, err
	}
	return sess, nil
}

func (f *Flow) setShortCookie(w http.ResponseWriter, name, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/auth",
		MaxAge:   int(stateTTL.Seconds()),
		HttpOnly: true,
		Secure:   f.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (f *Flow) clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Path:     "/auth",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   f.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// localPath only allows same-origin paths as post-login targets.
func localPath(raw string) string {
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, "/\\") {
		return "/"
	}
	u, err := url.Parse(raw)
	if err != nil || u.IsAbs() || u.Host != "" {
		return "/"
	}
	return raw
}
