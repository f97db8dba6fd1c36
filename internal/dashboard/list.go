// internal/dashboard/list.go
package dashboard

import (
	"context"
	"errors"
	"slices"
	"time"

	"github-dashboard/internal/model"
)

// sharedFetchTimeout bounds a single-flight fetch, which is detached from the
// cancellation of the request that started it.
const sharedFetchTimeout = 30 * time.Second

// ListRepositories returns the caller's repositories, served from the
// per-user cache when possible. It never fails: an anonymous caller, a
// missing token and any upstream error all yield an empty list. The returned
// slice is the caller's own copy.
func (s *Service) ListRepositories(ctx context.Context) []model.RepositorySummary {
	userID, ok := s.credentials.Identity(ctx)
	if !ok {
		return []model.RepositorySummary{}
	}

	key := cacheKey(userID)
	if repos, ok := s.repos.Get(key); ok {
		return slices.Clone(repos)
	}

	logger := s.logger.With("user_id", userID)

	token, ok := s.credentials.AccessToken(ctx)
	if !ok || token == "" {
		logger.Warn("Authenticated caller has no stored access token")
		return []model.RepositorySummary{}
	}

	var (
		repos []model.RepositorySummary
		err   error
	)
	if s.flights != nil {
		repos, err = s.fetchShared(ctx, key, token)
	} else {
		repos, err = s.fetch(ctx, key, token)
	}
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			logger.Error("Failed to list repositories", "error", err)
		}
		return []model.RepositorySummary{}
	}
	return slices.Clone(repos)
}

// fetch lists repositories upstream and caches the mapped result.
func (s *Service) fetch(ctx context.Context, key, token string) ([]model.RepositorySummary, error) {
	repos, err := s.newUpstream(token).ListRepositories(ctx)
	if err != nil {
		return nil, err
	}
	if repos == nil {
		repos = []model.RepositorySummary{}
	}

	s.repos.Set(key, repos, s.ttl)
	s.logger.Debug("Cached repository list", "key", key, "count", len(repos), "ttl", s.ttl.String())
	return repos, nil
}

// fetchShared joins concurrent misses for key into one upstream fetch. Each
// caller stops waiting when its own ctx is done; the fetch itself carries on
// for the remaining callers.
func (s *Service) fetchShared(ctx context.Context, key, token string) ([]model.RepositorySummary, error) {
	ch := s.flights.DoChan(key, func() (interface{}, error) {
		// A caller that lost the race may find the list already cached.
		if repos, ok := s.repos.Get(key); ok {
			return repos, nil
		}
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedFetchTimeout)
		defer cancel()
		return s.fetch(fetchCtx, key, token)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			s.logger.Debug("Joined in-flight repository fetch", "key", key)
		}
		return res.Val.([]model.RepositorySummary), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
