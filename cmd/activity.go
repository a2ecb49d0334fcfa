package cmd

import (
	"context"
	"time"

	"github.com/tshields86/git-sense/pkg/github"
	"github.com/tshields86/git-sense/pkg/ui"
)

// activity is the history a report is built from.
type activity struct {
	commits []github.Commit
	prs     []github.PullRequest
}

func (a *activity) empty() bool {
	return len(a.commits) == 0 && len(a.prs) == 0
}

// fetchActivity lists commits then merged pull requests for dr, with a
// spinner around each request.
func fetchActivity(ctx context.Context, t *ui.Terminal, h historySource, repo *github.RepoInfo, dr *github.DateRange, maxCommits, maxPRs int, commitLabel string) (*activity, error) {
	spinner := t.Spinner(commitLabel)
	commits, err := h.FetchCommits(ctx, repo.Owner, repo.Repo, dr, maxCommits)
	if err != nil {
		spinner.Fail("Failed to fetch commits")
		return nil, err
	}
	spinner.Succeed("Fetched %d commits", len(commits))

	spinner = t.Spinner("Fetching pull requests...")
	prs, err := h.FetchMergedPRs(ctx, repo.Owner, repo.Repo, dr, maxPRs)
	if err != nil {
		spinner.Fail("Failed to fetch pull requests")
		return nil, err
	}
	spinner.Succeed("Fetched %d pull requests", len(prs))

	return &activity{commits: commits, prs: prs}, nil
}

// describeRange renders dr for section headers.
func describeRange(dr *github.DateRange) string {
	if dr == nil {
		return "all time"
	}
	return ui.FormatDateRange(dr.Since, dr.Until)
}

// promptWindow returns the bounds to show in a prompt; all time runs from the
// Unix epoch to now.
func promptWindow(dr *github.DateRange, now time.Time) (time.Time, time.Time) {
	if dr == nil {
		return time.Unix(0, 0), now
	}
	return dr.Since, dr.Until
}
