package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/tshields86/git-sense/pkg/github"
)

const (
	promptDateLayout = "1/2/2006"

	maxPRBody            = 200
	maxContributorFiles  = 10
	maxContributorCommit = 5
)

// FormatCommits renders commits as one context line each.
func FormatCommits(commits []github.Commit) string {
	if len(commits) == 0 {
		return "No commits in this time period."
	}

	lines := make([]string, 0, len(commits))
	for _, c := range commits {
		line := fmt.Sprintf("- %s (%s): %s", c.ShortSHA(), c.Author.Login, FirstLine(c.Message))
		if len(c.Files) > 0 {
			line += fmt.Sprintf(" [%d files]", len(c.Files))
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// FormatPRs renders pull requests with labels and a truncated body.
func FormatPRs(prs []github.PullRequest) string {
	if len(prs) == 0 {
		return "No pull requests in this time period."
	}

	lines := make([]string, 0, len(prs))
	for _, pr := range prs {
		line := fmt.Sprintf("- PR #%d (%s): %s", pr.Number, pr.Author, pr.Title)
		if len(pr.Labels) > 0 {
			line += " [" + strings.Join(pr.Labels, ", ") + "]"
		}
		if pr.Body != "" {
			line += "\n  " + truncate(pr.Body, maxPRBody)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// BuildSummaryPrompt asks for a narrative summary of activity in a window.
func BuildSummaryPrompt(repo github.RepoInfo, commits []github.Commit, prs []github.PullRequest, start, end time.Time) string {
	var sb strings.Builder

	sb.WriteString("You are analyzing git history for a software repository.\n\n")
	writeRepoHeader(&sb, repo)
	sb.WriteString(fmt.Sprintf("Time period: %s to %s\n\n", promptDate(start), promptDate(end)))

	sb.WriteString(fmt.Sprintf("## Commits (%d)\n%s\n\n", len(commits), FormatCommits(commits)))
	sb.WriteString(fmt.Sprintf("## Pull Requests (%d)\n%s\n\n", len(prs), FormatPRs(prs)))

	sb.WriteString(`Generate a narrative summary of the repository activity. Include:
1. Major themes or efforts (group related work)
2. Key changes and their significance
3. Top contributors and their focus areas

Write in a conversational tone, not a bullet list. Be concise.`)

	return sb.String()
}

// BuildContributorPrompt asks for a per-contributor breakdown.
func BuildContributorPrompt(repo github.RepoInfo, contributors []*ContributorStats, start, end time.Time) string {
	var sb strings.Builder

	sb.WriteString("Analyze the contributors to this repository.\n\n")
	writeRepoHeader(&sb, repo)
	sb.WriteString(fmt.Sprintf("Time period: %s to %s\n\n", promptDate(start), promptDate(end)))
	sb.WriteString("## Contributors\n\n")

	sections := make([]string, 0, len(contributors))
	for _, c := range contributors {
		sections = append(sections, contributorSection(c))
	}
	sb.WriteString(strings.Join(sections, "\n\n"))
	sb.WriteString("\n\n")

	sb.WriteString(`For each contributor, summarize:
1. Their primary focus areas
2. Recent work themes
3. Which parts of the codebase they own

Be concise. Format as readable sections per contributor.`)

	return sb.String()
}

func contributorSection(c *ContributorStats) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("### %s (%d commits, %d PRs)\n", c.Login, c.CommitCount, c.PRCount))

	files := c.Files
	suffix := ""
	if len(files) > maxContributorFiles {
		files = files[:maxContributorFiles]
		suffix = "..."
	}
	sb.WriteString("Files touched: " + strings.Join(files, ", ") + suffix + "\n")

	sb.WriteString("Recent commit messages:")
	for i, m := range c.RecentMessages {
		if i == maxContributorCommit {
			break
		}
		sb.WriteString("\n  - " + m)
	}

	return sb.String()
}

// BuildAskPrompt asks the model to answer question from the history alone.
func BuildAskPrompt(repo github.RepoInfo, commits []github.Commit, prs []github.PullRequest, question string) string {
	var sb strings.Builder

	sb.WriteString("Answer a question about this repository based on its git history.\n\n")
	writeRepoHeader(&sb, repo)
	sb.WriteString("\n## Git History\n\n")

	sb.WriteString(fmt.Sprintf("### Commits (%d)\n%s\n\n", len(commits), FormatCommits(commits)))
	sb.WriteString(fmt.Sprintf("### Pull Requests (%d)\n%s\n\n", len(prs), FormatPRs(prs)))

	sb.WriteString("## Question\n" + question + "\n\n")

	sb.WriteString(`Answer based only on the git history provided. If you cite specific PRs or commits, reference them (e.g., "PR #142" or "commit abc123").
If the answer cannot be determined from the history, say so.
Be concise and direct.`)

	return sb.String()
}

// BuildChangelogPrompt asks for a grouped changelog between two refs.
func BuildChangelogPrompt(repo github.RepoInfo, fromRef, toRef string, commits []github.Commit, prs []github.PullRequest, format ChangelogFormat) string {
	var sb strings.Builder

	sb.WriteString("Generate a changelog for the following changes.\n\n")
	writeRepoHeader(&sb, repo)
	sb.WriteString(fmt.Sprintf("From: %s\nTo: %s\n\n", fromRef, toRef))
	sb.WriteString("## Changes\n\n")

	sb.WriteString(fmt.Sprintf("### Commits (%d)\n%s\n\n", len(commits), FormatCommits(commits)))
	sb.WriteString(fmt.Sprintf("### Pull Requests (%d)\n%s\n\n", len(prs), FormatPRs(prs)))

	sb.WriteString(`Create a changelog grouped by:
- **Breaking Changes** - anything that breaks backward compatibility
- **Features** - new functionality
- **Fixes** - bug fixes
- **Internal** - refactoring, dependencies, CI/CD

Use imperative mood ("Add feature" not "Added feature").
Include PR numbers in parentheses.
Highlight breaking changes prominently.
`)
	sb.WriteString(formatInstruction(format))

	return sb.String()
}

func formatInstruction(format ChangelogFormat) string {
	if format == FormatMarkdown {
		return "Output in clean markdown format suitable for a CHANGELOG.md file."
	}
	return "Output in a clean, readable format for terminal display."
}

func writeRepoHeader(sb *strings.Builder, repo github.RepoInfo) {
	sb.WriteString("Repository: " + repo.FullName() + "\n")
}

func promptDate(t time.Time) string {
	return t.Local().Format(promptDateLayout)
}

// truncate shortens s to n characters, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
