// internal/dashboard/service.go
package dashboard

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github-dashboard/internal/cache"
	"github-dashboard/internal/model"
)

const (
	// DefaultCacheTTL is how long a user's repository list is served from cache.
	DefaultCacheTTL = 5 * time.Minute

	// recentCommitLimit is the number of commits shown on the detail view.
	recentCommitLimit = 10

	cacheKeyPrefix = "repos_"
)

// Upstream is the subset of the GitHub API the dashboard reads from.
type Upstream interface {
	ListRepositories(ctx context.Context) ([]model.RepositorySummary, error)
	GetRepository(ctx context.Context, id int64) (*model.RepositoryDetail, error)
	ListCommits(ctx context.Context, owner, name string, limit int) ([]model.CommitSummary, error)
	ListContributors(ctx context.Context, owner, name string) ([]model.ContributorSummary, error)
}

// UpstreamFactory builds an Upstream bound to one access token.
type UpstreamFactory func(token string) Upstream

// CredentialResolver reports the caller's identity and GitHub token.
type CredentialResolver interface {
	Identity(ctx context.Context) (userID string, ok bool)
	AccessToken(ctx context.Context) (token string, ok bool)
}

// RepoCache stores mapped repository lists per user.
type RepoCache = cache.Cache[string, []model.RepositorySummary]

// Service serves the repository list and detail views for the current caller.
type Service struct {
	credentials CredentialResolver
	newUpstream UpstreamFactory
	repos       *RepoCache
	ttl         time.Duration
	logger      *slog.Logger

	// flights is nil unless single-flight de-duplication is enabled.
	flights *singleflight.Group
}

// Option configures a Service.
type Option func(*Service)

// WithCacheTTL overrides DefaultCacheTTL.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Service) { s.ttl = ttl }
}

// WithSingleFlight makes concurrent cache misses for the same user share a
// single upstream fetch.
func WithSingleFlight() Option {
	return func(s *Service) { s.flights = &singleflight.Group{} }
}

// NewService creates a new Service instance.
func NewService(credentials CredentialResolver, newUpstream UpstreamFactory, repos *RepoCache, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		credentials: credentials,
		newUpstream: newUpstream,
		repos:       repos,
		ttl:         DefaultCacheTTL,
		logger:      logger,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func cacheKey(userID string) string {
	return cacheKeyPrefix + userID
}
