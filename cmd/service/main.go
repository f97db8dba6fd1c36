// cmd/service/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/oauth2"

	"github-dashboard/internal/api"
	"github-dashboard/internal/auth"
	"github-dashboard/internal/cache"
	"github-dashboard/internal/config"
	"github-dashboard/internal/dashboard"
	"github-dashboard/internal/database"
	"github-dashboard/internal/github"
	"github-dashboard/internal/model"
	"github-dashboard/internal/session"
)

const migrationsSource = "file://migrations"

func main() {
	if err := run(); err != nil {
		slog.Error("Application startup error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Initialize structured logger
	logLevel := new(slog.LevelVar)
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger := slog.New(handler)
	slog.SetDefault(logger)

	// 2. Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	setLogLevel(cfg.LogLevel, logLevel)
	logger.Info("Configuration loaded successfully")

	// 3. Setup context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// 4. Session storage: Postgres when configured, memory otherwise
	store, closeStore, err := openSessionStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	// 5. Initialize application components
	repoCache := cache.New[string, []model.RepositorySummary]()
	go repoCache.Run(ctx, cfg.CacheSweepInterval, logger.With("component", "repo_cache"))

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           newHandler(cfg, store, repoCache, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 6. Start the HTTP server in a separate goroutine
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// 7. Wait for shutdown signal
	logger.Info("Application started. Waiting for shutdown signal...")
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received. Exiting.")
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	return nil
}

// newHandler wires the GitHub client, dashboard service and OAuth flow into the router.
func newHandler(cfg *config.Config, store session.Store, repoCache *dashboard.RepoCache, logger *slog.Logger) http.Handler {
	ghOpts := github.Options{BaseURL: cfg.GithubAPIURL}
	newUpstream := func(token string) dashboard.Upstream {
		return github.NewClient(token, ghOpts, logger.With("component", "github"))
	}
	lookup := func(ctx context.Context, token string) (model.User, error) {
		return github.NewClient(token, ghOpts, logger.With("component", "github")).CurrentUser(ctx)
	}

	svcOpts := []dashboard.Option{dashboard.WithCacheTTL(cfg.CacheTTL)}
	if cfg.CacheSingleFlight {
		svcOpts = append(svcOpts, dashboard.WithSingleFlight())
	}
	resolver := session.NewResolver(store, logger.With("component", "session"))
	svc := dashboard.NewService(resolver, newUpstream, repoCache, logger.With("component", "dashboard"), svcOpts...)

	sessions := session.NewManager(cfg.SessionSecret, cfg.SessionTTL, cfg.CookieSecure)
	flow := auth.NewFlow(auth.Config{
		ClientID:     cfg.GithubClientID,
		ClientSecret: cfg.GithubClientSecret,
		RedirectURL:  cfg.OAuthRedirectURL,
		Endpoint:     enterpriseEndpoint(cfg.GithubOAuthURL),
		Secure:       cfg.CookieSecure,
	}, lookup, store, sessions, logger.With("component", "auth"))

	return api.NewRouter(api.Deps{
		Repos:          svc,
		Auth:           flow,
		Sessions:       sessions,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Logger:         logger.With("component", "api"),
	})
}

// enterpriseEndpoint returns the zero endpoint for github.com.
func enterpriseEndpoint(baseURL string) oauth2.Endpoint {
	if baseURL == "" {
		return oauth2.Endpoint{}
	}
	base := strings.TrimSuffix(baseURL, "/")
	return oauth2.Endpoint{
		AuthURL:  base + "/login/oauth/authorize",
		TokenURL: base + "/login/oauth/access_token",
	}
}

func openSessionStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (session.Store, func(), error) {
	if cfg.DBURL == "" {
		logger.Warn("DB_URL not set, sessions are kept in memory and lost on restart")
		sessions := cache.New[string, session.Session]()
		go sessions.Run(ctx, cfg.SessionPurgeEvery, logger.With("component", "session_cache"))
		return session.NewMemoryStore(sessions), func() {}, nil
	}

	dbpool, err := pgxpool.New(ctx, cfg.DBURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	logger.Info("Database connection established")

	if err := runMigrations(migrationsSource, cfg.DBURL); err != nil {
		dbpool.Close()
		return nil, nil, fmt.Errorf("failed to run database migrations: %w", err)
	}
	logger.Info("Database migrations applied successfully")

	sealer, err := session.NewTokenSealer(cfg.SessionSecret)
	if err != nil {
		dbpool.Close()
		return nil, nil, fmt.Errorf("failed to set up token sealing: %w", err)
	}
	store := session.NewPostgresStore(database.New(dbpool), sealer, logger.With("component", "session"))
	go store.RunPurge(ctx, cfg.SessionPurgeEvery)
	return store, dbpool.Close, nil
}

func runMigrations(source, dbURL string) error {
	m, err := migrate.New(source, dbURL)
	if err != nil {
		return err
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func setLogLevel(level string, v *slog.LevelVar) {
	switch level {
	case "debug":
		v.Set(slog.LevelDebug)
	case "warn":
		v.Set(slog.LevelWarn)
	case "error":
		v.Set(slog.LevelError)
	default:
		v.Set(slog.LevelInfo)
	}
}
