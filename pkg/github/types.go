// Package github provides the GitHub side of git-sense.
//
// It covers the OAuth device flow used by `git-sense auth`, retrieval of
// commit and merged pull request history through the REST API, mapping of
// API failures to user-facing errors, and detection of the current
// repository from the local git remote.
package github

import "time"

// Fallbacks for fields GitHub may leave empty.
const (
	UnknownLogin = "unknown"
	UnknownName  = "Unknown"
)

// RepoInfo identifies the repository a command runs against.
type RepoInfo struct {
	Owner string
	Repo  string
	// DefaultBranch holds the currently checked out branch.
	DefaultBranch string
}

// FullName returns "owner/repo".
func (r RepoInfo) FullName() string {
	return r.Owner + "/" + r.Repo
}

// Author identifies the person behind a commit.
type Author struct {
	Login string
	Name  string
}

// Commit is a normalized commit record.
type Commit struct {
	SHA     string
	Message string
	Author  Author
	Date    time.Time
	Files   []string // Only populated by FetchCommitsBetweenRefs
}

// ShortSHA returns the first seven characters of the SHA.
func (c Commit) ShortSHA() string {
	if len(c.SHA) <= 7 {
		return c.SHA
	}
	return c.SHA[:7]
}

// PullRequest is a normalized merged pull request.
type PullRequest struct {
	Number   int
	Title    string
	Body     string
	Author   string
	MergedAt time.Time
	Labels   []string
}

// DateRange bounds retrieval. A nil *DateRange means all time.
type DateRange struct {
	Since time.Time
	Until time.Time
}

// User is the authenticated GitHub identity.
type User struct {
	Login string
	Name  string
}

// RateLimit is the core REST API quota.
type RateLimit struct {
	Remaining int
	Limit     int
	Reset     time.Time
}
