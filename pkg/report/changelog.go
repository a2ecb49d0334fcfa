package report

import (
	"strings"
	"time"

	gserrors "github.com/tshields86/git-sense/pkg/errors"
	"github.com/tshields86/git-sense/pkg/github"
)

// ChangelogFormat selects how the changelog should be written.
type ChangelogFormat string

const (
	FormatPretty   ChangelogFormat = "pretty"
	FormatMarkdown ChangelogFormat = "markdown"
)

// ParseChangelogFormat validates a --format value.
func ParseChangelogFormat(s string) (ChangelogFormat, error) {
	switch f := ChangelogFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatPretty, FormatMarkdown:
		return f, nil
	case "":
		return FormatPretty, nil
	default:
		return "", gserrors.NewConfigError("format",
			"Invalid --format value '"+s+"'. Must be 'pretty' or 'markdown'.")
	}
}

// RelatedPRs picks the pull requests merged while the commits were made.
//
// The window runs from the date of the last commit in the slice to the date
// of the first one, in slice order. PRs are not matched by SHA.
func RelatedPRs(commits []github.Commit, prs []github.PullRequest) []github.PullRequest {
	if len(commits) == 0 {
		return []github.PullRequest{}
	}
	oldest := commits[len(commits)-1].Date
	newest := commits[0].Date
	return MergedBetween(oldest, newest, prs)
}

// MergedBetween keeps PRs with oldest <= MergedAt <= newest.
func MergedBetween(oldest, newest time.Time, prs []github.PullRequest) []github.PullRequest {
	related := make([]github.PullRequest, 0)
	for _, pr := range prs {
		if pr.MergedAt.Before(oldest) || pr.MergedAt.After(newest) {
			continue
		}
		related = append(related, pr)
	}
	return related
}
