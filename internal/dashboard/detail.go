// internal/dashboard/detail.go
package dashboard

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	custom_errors "github-dashboard/internal/errors"
	"github-dashboard/internal/model"
)

// GetRepositoryDetail assembles metadata, the most recent commits and the
// contributors of one repository. found is false when the caller is not
// signed in or any of the three calls reports the repository missing for
// their token. Any other
// upstream failure is returned as an error; partial details are never
// returned. The result is not cached.
func (s *Service) GetRepositoryDetail(ctx context.Context, id int64) (detail *model.RepositoryDetail, found bool, err error) {
	token, ok := s.credentials.AccessToken(ctx)
	if !ok || token == "" {
		return nil, false, nil
	}

	logger := s.logger.With("repo_id", id)
	gh := s.newUpstream(token)

	var notFound *custom_errors.ErrNotFound
	detail, err = gh.GetRepository(ctx, id)
	if err != nil {
		if errors.As(err, &notFound) {
			logger.Info("Repository not found")
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("fetch repository %d: %w", id, err)
	}

	var (
		commits      []model.CommitSummary
		contributors []model.ContributorSummary
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		commits, err = gh.ListCommits(gctx, detail.Owner, detail.Name, recentCommitLimit)
		return err
	})
	g.Go(func() error {
		var err error
		contributors, err = gh.ListContributors(gctx, detail.Owner, detail.Name)
		return err
	})
	if err := g.Wait(); err != nil {
		// The repository can disappear between the metadata and activity calls.
		if errors.As(err, &notFound) {
			logger.Info("Repository activity not found", "resource", notFound.Resource)
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("fetch activity for repository %d: %w", id, err)
	}

	if commits != nil {
		detail.RecentCommits = commits
	}
	if contributors != nil {
		detail.Contributors = contributors
	}
	logger.Debug("Assembled repository detail", "commits", len(detail.RecentCommits), "contributors", len(detail.Contributors))
	return detail, true, nil
}
