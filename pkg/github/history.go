package github

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v68/github"
	"golang.org/x/oauth2"

	gserrors "github.com/tshields86/git-sense/pkg/errors"
)

const (
	// DefaultMaxCommits caps FetchCommits when the caller passes 0.
	DefaultMaxCommits = 500
	// DefaultMaxPRs caps FetchMergedPRs when the caller passes 0.
	DefaultMaxPRs = 200

	perPage = 100
)

// HistoryClient reads commit and pull request history through the GitHub REST API.
type HistoryClient struct {
	client  *gh.Client
	verbose bool
	logger  *slog.Logger
	now     func() time.Time
}

// HistoryOption is a functional option for configuring HistoryClient.
type HistoryOption func(*HistoryClient)

// WithLogger sets a custom logger and enables debug logging.
func WithLogger(logger *slog.Logger) HistoryOption {
	return func(c *HistoryClient) {
		c.logger = logger
		c.verbose = true
	}
}

// WithBaseURL points the client at a different API root, such as a GitHub
// Enterprise server or a test server.
func WithBaseURL(baseURL string) HistoryOption {
	return func(c *HistoryClient) {
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		if u, err := url.Parse(baseURL); err == nil {
			c.client.BaseURL = u
		}
	}
}

// NewHistoryClient creates a client authenticated with token.
// An empty token fails before any network call.
func NewHistoryClient(token string, opts ...HistoryOption) (*HistoryClient, error) {
	if token == "" {
		return nil, gserrors.NewAuthError(msgNotAuthenticated)
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(context.Background(), ts)

	c := &HistoryClient{
		client: gh.NewClient(tc),
		logger: slog.Default(),
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// FetchCommits lists commits newest first, filtered server side by dr.
// It stops requesting pages as soon as maxCount commits are collected.
func (c *HistoryClient) FetchCommits(ctx context.Context, owner, repo string, dr *DateRange, maxCount int) ([]Commit, error) {
	if maxCount <= 0 {
		maxCount = DefaultMaxCommits
	}

	fetch := func(ctx context.Context, page int) ([]*gh.RepositoryCommit, *gh.Response, error) {
		opts := &gh.CommitsListOptions{
			ListOptions: gh.ListOptions{PerPage: perPage, Page: page},
		}
		if dr != nil {
			opts.Since = dr.Since
			opts.Until = dr.Until
		}
		c.logDebug("listing commits", "owner", owner, "repo", repo, "page", page)
		return c.client.Repositories.ListCommits(ctx, owner, repo, opts)
	}

	commits := make([]Commit, 0)
	for rc, err := range paginate(ctx, fetch) {
		if err != nil {
			return nil, err
		}
		commits = append(commits, c.commitFromGitHub(rc, false))
		if len(commits) >= maxCount {
			break
		}
	}

	c.logDebug("fetched commits", "count", len(commits))
	return commits, nil
}

// FetchMergedPRs lists merged pull requests, most recently updated first.
//
// Unmerged pull requests are discarded. With a date range, the first pull
// request merged before dr.Since ends pagination entirely, and ones merged
// after dr.Until are skipped.
func (c *HistoryClient) FetchMergedPRs(ctx context.Context, owner, repo string, dr *DateRange, maxCount int) ([]PullRequest, error) {
	if maxCount <= 0 {
		maxCount = DefaultMaxPRs
	}

	fetch := func(ctx context.Context, page int) ([]*gh.PullRequest, *gh.Response, error) {
		opts := &gh.PullRequestListOptions{
			State:       "closed",
			Sort:        "updated",
			Direction:   "desc",
			ListOptions: gh.ListOptions{PerPage: perPage, Page: page},
		}
		c.logDebug("listing pull requests", "owner", owner, "repo", repo, "page", page)
		return c.client.PullRequests.List(ctx, owner, repo, opts)
	}

	prs := make([]PullRequest, 0)
	for pr, err := range paginate(ctx, fetch) {
		if err != nil {
			return nil, err
		}
		if pr.MergedAt == nil {
			continue
		}

		mergedAt := pr.GetMergedAt().Time
		if dr != nil {
			if mergedAt.Before(dr.Since) {
				c.logDebug("reached pull requests older than range", "number", pr.GetNumber())
				break
			}
			if mergedAt.After(dr.Until) {
				continue
			}
		}

		prs = append(prs, pullRequestFromGitHub(pr))
		if len(prs) >= maxCount {
			break
		}
	}

	c.logDebug("fetched merged pull requests", "count", len(prs))
	return prs, nil
}

// FetchCommitsBetweenRefs compares base...head in a single request and
// returns its commits with the files each one touched.
func (c *HistoryClient) FetchCommitsBetweenRefs(ctx context.Context, owner, repo, base, head string) ([]Commit, error) {
	c.logDebug("comparing refs", "owner", owner, "repo", repo, "base", base, "head", head)

	cmp, resp, err := c.client.Repositories.CompareCommits(ctx, owner, repo, base, head, nil)
	if err != nil {
		return nil, mapGitHubError(resp, err)
	}

	commits := make([]Commit, 0, len(cmp.Commits))
	for _, rc := range cmp.Commits {
		commits = append(commits, c.commitFromGitHub(rc, true))
	}
	return commits, nil
}

// AuthenticatedUser returns the identity the token belongs to.
func (c *HistoryClient) AuthenticatedUser(ctx context.Context) (*User, error) {
	user, resp, err := c.client.Users.Get(ctx, "")
	if err != nil {
		return nil, mapGitHubError(resp, err)
	}
	return &User{Login: user.GetLogin(), Name: user.GetName()}, nil
}

// CheckRateLimit returns the remaining core API quota.
func (c *HistoryClient) CheckRateLimit(ctx context.Context) (*RateLimit, error) {
	limits, resp, err := c.client.RateLimit.Get(ctx)
	if err != nil {
		return nil, mapGitHubError(resp, err)
	}
	core := limits.GetCore()
	if core == nil {
		return &RateLimit{}, nil
	}
	return &RateLimit{
		Remaining: core.Remaining,
		Limit:     core.Limit,
		Reset:     core.Reset.Time,
	}, nil
}

func (c *HistoryClient) logDebug(msg string, args ...any) {
	if c.verbose {
		c.logger.Debug(msg, args...)
	}
}

// Helper functions

func (c *HistoryClient) commitFromGitHub(rc *gh.RepositoryCommit, withFiles bool) Commit {
	commit := Commit{
		SHA:     rc.GetSHA(),
		Message: rc.GetCommit().GetMessage(),
		Author: Author{
			Login: UnknownLogin,
			Name:  UnknownName,
		},
		Date: c.now(),
	}

	if login := rc.GetAuthor().GetLogin(); login != "" {
		commit.Author.Login = login
	}
	if gitAuthor := rc.GetCommit().GetAuthor(); gitAuthor != nil {
		if gitAuthor.Name != nil {
			commit.Author.Name = gitAuthor.GetName()
		}
		if gitAuthor.Date != nil {
			commit.Date = gitAuthor.GetDate().Time
		}
	}

	if withFiles {
		commit.Files = make([]string, 0, len(rc.Files))
		for _, f := range rc.Files {
			commit.Files = append(commit.Files, f.GetFilename())
		}
	}

	return commit
}

func pullRequestFromGitHub(pr *gh.PullRequest) PullRequest {
	out := PullRequest{
		Number:   pr.GetNumber(),
		Title:    pr.GetTitle(),
		Body:     pr.GetBody(),
		Author:   UnknownLogin,
		MergedAt: pr.GetMergedAt().Time,
		Labels:   make([]string, 0, len(pr.Labels)),
	}
	if login := pr.GetUser().GetLogin(); login != "" {
		out.Author = login
	}
	for _, l := range pr.Labels {
		out.Labels = append(out.Labels, l.GetName())
	}
	return out
}
