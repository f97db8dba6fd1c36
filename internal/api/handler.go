// internal/api/handler.go
package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	custom_errors "github-dashboard/internal/errors"
	"github-dashboard/internal/model"
	"github-dashboard/internal/session"
)

// RepositoryService is what the handlers need from the dashboard.
type RepositoryService interface {
	ListRepositories(ctx context.Context) []model.RepositorySummary
	GetRepositoryDetail(ctx context.Context, id int64) (*model.RepositoryDetail, bool, error)
}

// AuthFlow serves the OAuth endpoints.
type AuthFlow interface {
	Login(w http.ResponseWriter, r *http.Request)
	Callback(w http.ResponseWriter, r *http.Request)
	Logout(w http.ResponseWriter, r *http.Request)
}

// Deps are the collaborators wired into the router.
type Deps struct {
	Repos          RepositoryService
	Auth           AuthFlow
	Sessions       *session.Manager
	AllowedOrigins []string
	Logger         *slog.Logger
}

// Handler is the container for API dependencies.
type Handler struct {
	repos  RepositoryService
	logger *slog.Logger
}

// NewRouter creates and configures a new chi router with all API routes.
func NewRouter(d Deps) http.Handler {
	h := &Handler{
		repos:  d.Repos,
		logger: d.Logger,
	}

	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger) // Chi's default logger
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	if len(d.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   d.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodOptions},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
	r.Use(session.Authenticate(d.Sessions, d.Logger))

	r.Get("/health", h.healthCheck)
	r.Route("/auth", func(r chi.Router) {
		r.Get("/login", d.Auth.Login)
		r.Get("/callback", d.Auth.Callback)
		r.Get("/logout", d.Auth.Logout)
	})
	r.Route("/api", func(r chi.Router) {
		r.Get("/me", h.me)
		r.Get("/repos", h.listRepositories)
		r.Get("/repos/{id}", h.getRepository)
	})

	return r
}

// healthCheck is a simple health endpoint.
func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// me reports who is signed in.
// GET /api/me
func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	p, ok := session.PrincipalFrom(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Not signed in")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"id": p.UserID, "login": p.Login})
}

// listRepositories returns the caller's repositories; empty when signed out.
// GET /api/repos
func (h *Handler) listRepositories(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.repos.ListRepositories(r.Context()))
}

// getRepository returns one repository with recent commits and contributors.
// GET /api/repos/{id}
func (h *Handler) getRepository(w http.ResponseWriter, r *http.Request) {
	id, err := parseRepoID(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	detail, found, err := h.repos.GetRepositoryDetail(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to get repository detail", "repo_id", id, "request_id", middleware.GetReqID(r.Context()), "error", err)
		respondWithError(w, http.StatusBadGateway, "GitHub request failed, try again later")
		return
	}
	if !found {
		respondWithError(w, http.StatusNotFound, "Repository not found")
		return
	}

	respondWithJSON(w, http.StatusOK, detail)
}

func parseRepoID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, &custom_errors.ErrInvalidRepoID{Raw: raw}
	}
	return id, nil
}
