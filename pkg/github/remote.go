package github

import (
	"context"
	"net/url"
	"os/exec"
	"slices"
	"strings"

	gserrors "github.com/tshields86/git-sense/pkg/errors"
)

const (
	msgNotGitRepo     = "Not in a git repository. Run this from inside a git project."
	msgNoRemote       = "No remote found. This tool works with GitHub repositories."
	msgNoGitHubRemote = "No GitHub remote found. This tool works with GitHub repositories."
)

// gitRunner runs a git subcommand and returns its trimmed stdout.
type gitRunner func(ctx context.Context, args ...string) (string, error)

func runGit(ctx context.Context, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, "git", args...).Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// DetectRepo identifies the GitHub repository of the working directory from
// its origin remote, or the first remote when there is no origin. Only
// remotes on hostURL (github.com when empty) are accepted.
func DetectRepo(ctx context.Context, hostURL string) (*RepoInfo, error) {
	return detectRepo(ctx, runGit, hostURL)
}

func detectRepo(ctx context.Context, git gitRunner, hostURL string) (*RepoInfo, error) {
	if _, err := git(ctx, "rev-parse", "--git-dir"); err != nil {
		return nil, gserrors.NewConfigErrorWithCause("repository", msgNotGitRepo, err)
	}

	remoteURL, err := remoteURL(ctx, git)
	if err != nil || remoteURL == "" {
		return nil, gserrors.NewConfigErrorWithCause("repository", msgNoRemote, err)
	}

	owner, repo, ok := parseGitHubURL(remoteURL, remoteHost(hostURL))
	if !ok {
		return nil, gserrors.NewConfigError("repository", msgNoGitHubRemote)
	}

	branch, err := git(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return nil, gserrors.NewConfigErrorWithCause("repository", "Failed to get current branch", err)
	}

	return &RepoInfo{Owner: owner, Repo: repo, DefaultBranch: branch}, nil
}

// remoteHost returns the host[:port] remotes are expected on.
func remoteHost(hostURL string) string {
	if hostURL == "" {
		hostURL = DefaultGitHubHost
	}
	if u, err := url.Parse(hostURL); err == nil && u.Host != "" {
		return u.Host
	}
	return strings.TrimSuffix(hostURL, "/")
}

func remoteURL(ctx context.Context, git gitRunner) (string, error) {
	out, err := git(ctx, "remote")
	if err != nil {
		return "", err
	}
	if out == "" {
		return "", nil
	}

	remotes := strings.Split(out, "\n")
	remote := remotes[0]
	if slices.Contains(remotes, "origin") {
		remote = "origin"
	}

	return git(ctx, "remote", "get-url", remote)
}

// parseGitHubURL extracts owner and repo from a remote URL on host.
func parseGitHubURL(remote, host string) (owner, repo string, ok bool) {
	var path string
	switch {
	// SSH format: git@github.com:owner/repo.git
	case strings.HasPrefix(remote, "git@"+host+":"):
		path = strings.TrimPrefix(remote, "git@"+host+":")
	// HTTPS format: https://github.com/owner/repo.git
	case strings.HasPrefix(remote, "https://"+host+"/"):
		path = strings.TrimPrefix(remote, "https://"+host+"/")
	default:
		return "", "", false
	}

	path = strings.TrimSuffix(path, ".git")
	owner, repo, found := strings.Cut(path, "/")
	if !found || owner == "" || repo == "" {
		return "", "", false
	}
	return owner, repo, true
}
