// internal/github/mapper.go
package github

import (
	"time"

	"github.com/google/go-github/v62/github"

	"github-dashboard/internal/model"
)

const shortSHALength = 7

// toRepositorySummary translates a github.Repository object to a list row.
func toRepositorySummary(r *github.Repository) model.RepositorySummary {
	return model.RepositorySummary{
		ID:          r.GetID(),
		Name:        r.GetName(),
		Description: description(r.Description),
		URL:         r.GetHTMLURL(),
		Stars:       r.GetStargazersCount(),
		Forks:       r.GetForksCount(),
		OpenIssues:  r.GetOpenIssuesCount(),
		LastPush:    lastPush(r),
	}
}

// toRepositoryDetail translates repository metadata; commits and contributors
// are attached by the caller.
func toRepositoryDetail(r *github.Repository) *model.RepositoryDetail {
	return &model.RepositoryDetail{
		ID:            r.GetID(),
		Owner:         r.GetOwner().GetLogin(),
		Name:          r.GetName(),
		Description:   description(r.Description),
		URL:           r.GetHTMLURL(),
		RecentCommits: []model.CommitSummary{},
		Contributors:  []model.ContributorSummary{},
	}
}

func toCommitSummary(c *github.RepositoryCommit) model.CommitSummary {
	return model.CommitSummary{
		SHA:       shortSHA(c.GetSHA()),
		Message:   c.GetCommit().GetMessage(),
		Author:    c.GetCommit().GetAuthor().GetName(),
		Timestamp: c.GetCommit().GetAuthor().GetDate().Time,
	}
}

func toContributorSummary(c *github.Contributor) model.ContributorSummary {
	return model.ContributorSummary{
		Login:         c.GetLogin(),
		AvatarURL:     c.GetAvatarURL(),
		HTMLURL:       c.GetHTMLURL(),
		Contributions: c.GetContributions(),
	}
}

func toUser(u *github.User) model.User {
	return model.User{
		ID:    u.GetID(),
		Login: u.GetLogin(),
	}
}

func description(s *string) string {
	if s == nil || *s == "" {
		return model.NoDescription
	}
	return *s
}

// lastPush prefers pushed_at, then updated_at, then model.MinTimestamp.
func lastPush(r *github.Repository) time.Time {
	if r.PushedAt != nil {
		return r.PushedAt.Time
	}
	if r.UpdatedAt != nil {
		return r.UpdatedAt.Time
	}
	return model.MinTimestamp
}

// shortSHA keeps identifiers shorter than seven characters intact.
func shortSHA(sha string) string {
	if len(sha) < shortSHALength {
		return sha
	}
	return sha[:shortSHALength]
}
