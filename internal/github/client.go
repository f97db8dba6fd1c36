// internal/github/client.go
package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"

	custom_errors "github-dashboard/internal/errors"
	"github-dashboard/internal/model"
)

// UserAgent identifies this application to the GitHub API.
const UserAgent = "github-dashboard"

// Options tunes clients built by NewClient.
type Options struct {
	// BaseURL points the client at GitHub Enterprise or a test server.
	// Empty means https://api.github.com/.
	BaseURL string
}

// Client is a wrapper around the go-github client bound to one user's token.
type Client struct {
	gh     *github.Client
	logger *slog.Logger
}

// NewClient creates and configures a new Client instance.
// The provided token is used to create an authenticated http.Client.
// No request is made until one of the methods is called.
func NewClient(token string, opts Options, logger *slog.Logger) *Client {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(context.Background(), ts)

	gh := github.NewClient(tc)
	gh.UserAgent = UserAgent
	if opts.BaseURL != "" {
		if u, err := parseBaseURL(opts.BaseURL); err == nil {
			gh.BaseURL = u
		} else {
			logger.Warn("Ignoring invalid GitHub base URL", "base_url", opts.BaseURL, "error", err)
		}
	}

	return &Client{
		gh:     gh,
		logger: logger,
	}
}

// ListRepositories fetches every repository visible to the token owner.
// It handles API pagination transparently.
func (c *Client) ListRepositories(ctx context.Context) ([]model.RepositorySummary, error) {
	var all []model.RepositorySummary

	opts := &github.RepositoryListByAuthenticatedUserOptions{
		ListOptions: github.ListOptions{
			PerPage: 100, // Max per page
		},
	}

	for {
		c.logger.Debug("Fetching repositories page", "page", opts.Page)

		repos, resp, err := c.gh.Repositories.ListByAuthenticatedUser(ctx, opts)
		if err != nil {
			return nil, fmt.Errorf("list repositories: %w", err)
		}

		for _, r := range repos {
			all = append(all, toRepositorySummary(r))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return all, nil
}

// GetRepository fetches repository metadata by numeric id.
// A 404 is reported as *errors.ErrNotFound.
func (c *Client) GetRepository(ctx context.Context, id int64) (*model.RepositoryDetail, error) {
	repo, _, err := c.gh.Repositories.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, &custom_errors.ErrNotFound{Resource: "repository", ID: strconv.FormatInt(id, 10)}
		}
		return nil, fmt.Errorf("get repository %d: %w", id, err)
	}
	return toRepositoryDetail(repo), nil
}

// ListCommits returns up to limit of the most recent commits, newest first.
func (c *Client) ListCommits(ctx context.Context, owner, name string, limit int) ([]model.CommitSummary, error) {
	opts := &github.CommitsListOptions{
		ListOptions: github.ListOptions{PerPage: limit},
	}

	c.logger.Debug("Fetching commits", "owner", owner, "repo", name, "limit", limit)
	commits, _, err := c.gh.Repositories.ListCommits(ctx, owner, name, opts)
	if err != nil {
		// GitHub answers 409 for a repository without any commits.
		if hasStatus(err, http.StatusConflict) {
			return []model.CommitSummary{}, nil
		}
		if isNotFound(err) {
			return nil, &custom_errors.ErrNotFound{Resource: "commits", ID: owner + "/" + name}
		}
		return nil, fmt.Errorf("list commits for %s/%s: %w", owner, name, err)
	}

	if len(commits) > limit {
		commits = commits[:limit]
	}
	out := make([]model.CommitSummary, 0, len(commits))
	for _, commit := range commits {
		out = append(out, toCommitSummary(commit))
	}
	return out, nil
}

// ListContributors fetches all contributors of a repository.
func (c *Client) ListContributors(ctx context.Context, owner, name string) ([]model.ContributorSummary, error) {
	out := []model.ContributorSummary{}

	opts := &github.ListContributorsOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}

	for {
		c.logger.Debug("Fetching contributors page", "owner", owner, "repo", name, "page", opts.Page)

		contributors, resp, err := c.gh.Repositories.ListContributors(ctx, owner, name, opts)
		if err != nil {
			if isNotFound(err) {
				return nil, &custom_errors.ErrNotFound{Resource: "contributors", ID: owner + "/" + name}
			}
			return nil, fmt.Errorf("list contributors for %s/%s: %w", owner, name, err)
		}

		for _, contributor := range contributors {
			out = append(out, toContributorSummary(contributor))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return out, nil
}

// CurrentUser returns the account the token belongs to.
func (c *Client) CurrentUser(ctx context.Context) (model.User, error) {
	u, _, err := c.gh.Users.Get(ctx, "")
	if err != nil {
		return model.User{}, fmt.Errorf("get authenticated user: %w", err)
	}
	return toUser(u), nil
}

func isNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

func hasStatus(err error, code int) bool {
	var ghErr *github.ErrorResponse
	return errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == code
}

func parseBaseURL(raw string) (*url.URL, error) {
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base URL %q must be absolute", raw)
	}
	return u, nil
}
