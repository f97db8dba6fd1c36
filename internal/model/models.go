// internal/model/models.go
package model

import "time"

// NoDescription is shown for repositories without a description.
const NoDescription = "No description."

// MinTimestamp is used when GitHub reports neither a push nor an update time.
var MinTimestamp = time.Time{}

// RepositorySummary is one row of the user's repository list.
type RepositorySummary struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	Stars       int       `json:"stars"`
	Forks       int       `json:"forks"`
	OpenIssues  int       `json:"open_issues"`
	LastPush    time.Time `json:"last_push"`
}

type CommitSummary struct {
	SHA       string    `json:"sha"`
	Message   string    `json:"message"`
	Author    string    `json:"author"`
	Timestamp time.Time `json:"timestamp"`
}

type ContributorSummary struct {
	Login         string `json:"login"`
	AvatarURL     string `json:"avatar_url"`
	HTMLURL       string `json:"html_url"`
	Contributions int    `json:"contributions"`
}

// RepositoryDetail aggregates repository metadata with its recent commits
// and contributors.
type RepositoryDetail struct {
	ID            int64                `json:"id"`
	Owner         string               `json:"owner"`
	Name          string               `json:"name"`
	Description   string               `json:"description"`
	URL           string               `json:"url"`
	RecentCommits []CommitSummary      `json:"recent_commits"`
	Contributors  []ContributorSummary `json:"contributors"`
}

// User is the GitHub account behind a session.
type User struct {
	ID    int64
	Login string
}
