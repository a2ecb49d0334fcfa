package report

import (
	"slices"
	"strings"

	"github.com/tshields86/git-sense/pkg/github"
)

// maxRecentMessages caps ContributorStats.RecentMessages.
const maxRecentMessages = 10

// ContributorStats aggregates one author's activity.
type ContributorStats struct {
	Login          string
	Name           string
	CommitCount    int
	PRCount        int
	Files          []string // deduplicated, first seen order
	RecentMessages []string // first lines, encounter order
}

// Total is CommitCount + PRCount.
func (s *ContributorStats) Total() int {
	return s.CommitCount + s.PRCount
}

// GroupByContributor keys commits and pull requests by author login and
// orders the result by total activity, most active first. Ties keep the
// order in which contributors were first seen.
func GroupByContributor(commits []github.Commit, prs []github.PullRequest) []*ContributorStats {
	var ordered []*ContributorStats
	byLogin := make(map[string]*ContributorStats)
	seenFiles := make(map[string]map[string]struct{})

	lookup := func(login, name string) *ContributorStats {
		if s, ok := byLogin[login]; ok {
			return s
		}
		s := &ContributorStats{Login: login, Name: name}
		byLogin[login] = s
		seenFiles[login] = make(map[string]struct{})
		ordered = append(ordered, s)
		return s
	}

	for _, c := range commits {
		s := lookup(c.Author.Login, c.Author.Name)
		s.CommitCount++

		if len(s.RecentMessages) < maxRecentMessages {
			s.RecentMessages = append(s.RecentMessages, FirstLine(c.Message))
		}

		for _, f := range c.Files {
			if _, ok := seenFiles[s.Login][f]; ok {
				continue
			}
			seenFiles[s.Login][f] = struct{}{}
			s.Files = append(s.Files, f)
		}
	}

	for _, pr := range prs {
		s := lookup(pr.Author, pr.Author)
		s.PRCount++
	}

	slices.SortStableFunc(ordered, func(a, b *ContributorStats) int {
		return b.Total() - a.Total()
	})

	return ordered
}

// FirstLine returns the subject line of a commit message.
func FirstLine(message string) string {
	line, _, _ := strings.Cut(message, "\n")
	return line
}
