// internal/api/handler_test.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github-dashboard/internal/model"
	"github-dashboard/internal/session"
)

// MockRepositoryService is a mock of the RepositoryService interface.
type MockRepositoryService struct {
	mock.Mock
}

func (m *MockRepositoryService) ListRepositories(ctx context.Context) []model.RepositorySummary {
	return m.Called(ctx).Get(0).([]model.RepositorySummary)
}

func (m *MockRepositoryService) GetRepositoryDetail(ctx context.Context, id int64) (*model.RepositoryDetail, bool, error) {
	args := m.Called(ctx, id)
	detail, _ := args.Get(0).(*model.RepositoryDetail)
	return detail, args.Bool(1), args.Error(2)
}

type stubFlow struct{}

func (stubFlow) Login(w http.ResponseWriter, r *http.Request)    { w.WriteHeader(http.StatusFound) }
func (stubFlow) Callback(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusFound) }
func (stubFlow) Logout(w http.ResponseWriter, r *http.Request)   { w.WriteHeader(http.StatusFound) }

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestRouter(t *testing.T, svc RepositoryService) (http.Handler, *session.Manager) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	sessions := session.NewManager(testSecret, time.Hour, false)
	return NewRouter(Deps{
		Repos:          svc,
		Auth:           stubFlow{},
		Sessions:       sessions,
		AllowedOrigins: []string{"http://localhost:3000"},
		Logger:         logger,
	}), sessions
}

func signedIn(t *testing.T, sessions *session.Manager, req *http.Request) *http.Request {
	t.Helper()
	rec := httptest.NewRecorder()
	require.NoError(t, sessions.Issue(rec, session.Session{ID: "sid", UserID: "42", Login: "alice", ExpiresAt: time.Now().Add(time.Hour)}))
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestHealthCheck(t *testing.T) {
	router, _ := newTestRouter(t, new(MockRepositoryService))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestMe(t *testing.T) {
	router, sessions := newTestRouter(t, new(MockRepositoryService))

	t.Run("anonymous", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/me", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("signed in", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, signedIn(t, sessions, httptest.NewRequest(http.MethodGet, "/api/me", nil)))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"id":"42","login":"alice"}`, rec.Body.String())
	})
}

func TestListRepositories(t *testing.T) {
	t.Run("empty list is an empty JSON array", func(t *testing.T) {
		svc := new(MockRepositoryService)
		svc.On("ListRepositories", mock.Anything).Return([]model.RepositorySummary{}).Once()
		router, _ := newTestRouter(t, svc)
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/repos", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})

	t.Run("passes the caller through the context", func(t *testing.T) {
		svc := new(MockRepositoryService)
		svc.On("ListRepositories", mock.MatchedBy(func(ctx context.Context) bool {
			p, ok := session.PrincipalFrom(ctx)
			return ok && p.UserID == "42"
		})).Return([]model.RepositorySummary{{ID: 1, Name: "foo", Description: model.NoDescription, Stars: 10}}).Once()
		router, sessions := newTestRouter(t, svc)
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, signedIn(t, sessions, httptest.NewRequest(http.MethodGet, "/api/repos", nil)))

		require.Equal(t, http.StatusOK, rec.Code)
		var got []model.RepositorySummary
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		require.Len(t, got, 1)
		assert.Equal(t, "foo", got[0].Name)
		svc.AssertExpectations(t)
	})
}

func TestGetRepository(t *testing.T) {
	t.Run("rejects a non-numeric id", func(t *testing.T) {
		svc := new(MockRepositoryService)
		router, _ := newTestRouter(t, svc)

		for _, id := range []string{"abc", "0", "-3"} {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/repos/"+id, nil))
			assert.Equal(t, http.StatusBadRequest, rec.Code, "id %q", id)
		}
		svc.AssertNotCalled(t, "GetRepositoryDetail", mock.Anything, mock.Anything)
	})

	t.Run("not found", func(t *testing.T) {
		svc := new(MockRepositoryService)
		svc.On("GetRepositoryDetail", mock.Anything, int64(42)).Return(nil, false, nil).Once()
		router, _ := newTestRouter(t, svc)
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/repos/42", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("upstream failure", func(t *testing.T) {
		svc := new(MockRepositoryService)
		svc.On("GetRepositoryDetail", mock.Anything, int64(42)).Return(nil, false, errors.New("rate limited")).Once()
		router, _ := newTestRouter(t, svc)
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/repos/42", nil))

		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.NotContains(t, rec.Body.String(), "rate limited")
	})

	t.Run("found", func(t *testing.T) {
		svc := new(MockRepositoryService)
		detail := &model.RepositoryDetail{
			ID: 42, Owner: "alice", Name: "foo", Description: "foo repo",
			RecentCommits: []model.CommitSummary{{SHA: "abcdef1", Message: "fix"}},
			Contributors:  []model.ContributorSummary{{Login: "alice", Contributions: 3}},
		}
		svc.On("GetRepositoryDetail", mock.Anything, int64(42)).Return(detail, true, nil).Once()
		router, _ := newTestRouter(t, svc)
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/repos/42", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var got model.RepositoryDetail
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, *detail, got)
	})
}

func TestCORSPreflight(t *testing.T) {
	router, _ := newTestRouter(t, new(MockRepositoryService))
	req := httptest.NewRequest(http.MethodOptions, "/api/repos", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestAuthRoutesAreMounted(t *testing.T) {
	router, _ := newTestRouter(t, new(MockRepositoryService))
	for _, path := range []string{"/auth/login", "/auth/callback", "/auth/logout"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusFound, rec.Code, path)
	}
}
