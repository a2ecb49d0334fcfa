package cmd

import (
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tshields86/git-sense/pkg/credentials"
	gserrors "github.com/tshields86/git-sense/pkg/errors"
	"github.com/tshields86/git-sense/pkg/github"
	"github.com/tshields86/git-sense/pkg/report"
)

func sampleCommits() []github.Commit {
	return []github.Commit{
		{SHA: "aaaaaaa1111", Message: "feat: add cache", Author: github.Author{Login: "alice", Name: "Alice"}, Date: testNow.Add(-24 * time.Hour)},
		{SHA: "bbbbbbb2222", Message: "fix: nil map", Author: github.Author{Login: "bob", Name: "Bob"}, Date: testNow.Add(-48 * time.Hour)},
		{SHA: "ccccccc3333", Message: "docs: readme", Author: github.Author{Login: "alice", Name: "Alice"}, Date: testNow.Add(-72 * time.Hour)},
	}
}

func samplePRs() []github.PullRequest {
	return []github.PullRequest{
		{Number: 7, Title: "Add cache", Author: "alice", MergedAt: testNow.Add(-30 * time.Hour)},
	}
}

func TestRunSummary(t *testing.T) {
	s, env := newTestServices(t)
	env.history.commits = sampleCommits()
	env.history.prs = samplePRs()

	err := runSummary(t.Context(), s, report.WindowOptions{Weeks: "2", DefaultWeeks: summaryDefaultWeeks})
	require.NoError(t, err)

	// Two week window ending now, default caps from config.
	require.Len(t, env.history.commitCalls, 1)
	call := env.history.commitCalls[0]
	require.NotNil(t, call.dr)
	assert.Equal(t, testNow, call.dr.Until)
	assert.Equal(t, 14*24*time.Hour, call.dr.Until.Sub(call.dr.Since))
	assert.Equal(t, 500, call.maxCount)
	require.Len(t, env.history.prCalls, 1)
	assert.Equal(t, 200, env.history.prCalls[0].maxCount)

	assert.Equal(t, []string{"gho_test"}, env.historyTokens)
	assert.Equal(t, []string{"sk-ant-test"}, env.streamerKeys)

	require.Len(t, env.streamer.prompts, 1)
	prompt := env.streamer.prompts[0]
	assert.Contains(t, prompt, "Repository: octo/hello")
	assert.Contains(t, prompt, "## Commits (3)")
	assert.Contains(t, prompt, "- PR #7 (alice): Add cache")

	out := env.out.String()
	assert.Contains(t, out, "📊 Summary for octo/hello (")
	assert.Contains(t, out, "Generated report.\n")
	assert.True(t, strings.HasSuffix(out, "Based on 3 commits and 1 pull requests\n"))

	errOut := env.errOut.String()
	assert.Contains(t, errOut, "✓ Fetched 3 commits")
	assert.Contains(t, errOut, "✓ Fetched 1 pull requests")
}

func TestRunSummary_All(t *testing.T) {
	s, env := newTestServices(t)
	env.history.commits = sampleCommits()

	err := runSummary(t.Context(), s, report.WindowOptions{Weeks: "2", All: true, DefaultWeeks: summaryDefaultWeeks})
	require.NoError(t, err)

	require.Len(t, env.history.commitCalls, 1)
	assert.Nil(t, env.history.commitCalls[0].dr, "--all fetches without a date filter")
	assert.Nil(t, env.history.prCalls[0].dr)
	assert.Contains(t, env.out.String(), "Summary for octo/hello (all time)")
}

func TestRunSummary_NoActivity(t *testing.T) {
	s, env := newTestServices(t)

	err := runSummary(t.Context(), s, report.WindowOptions{DefaultWeeks: summaryDefaultWeeks})
	require.NoError(t, err)

	assert.Contains(t, env.out.String(), "⚠ No activity found in this time period.")
	assert.Empty(t, env.streamer.prompts)
	assert.NotContains(t, env.out.String(), "Based on")
}

func TestRunSummary_InvalidWindow(t *testing.T) {
	s, env := newTestServices(t)

	err := runSummary(t.Context(), s, report.WindowOptions{Weeks: "0", DefaultWeeks: summaryDefaultWeeks})
	require.Error(t, err)
	assert.True(t, gserrors.IsConfigError(err))
	assert.Equal(t, "Invalid --weeks value. Must be a positive number.", gserrors.FormatUserError(err))
	assert.Empty(t, env.history.commitCalls)
}

func TestRunSummary_MissingAnthropicKey(t *testing.T) {
	s, env := newTestServices(t)
	delete(env.store.values, credentials.AnthropicKey)

	err := runSummary(t.Context(), s, report.WindowOptions{DefaultWeeks: summaryDefaultWeeks})
	require.Error(t, err)
	assert.True(t, gserrors.IsConfigError(err))
	assert.Equal(t,
		`Anthropic API key not found. Run "git-sense config --anthropic-key <key>" to set it.`,
		gserrors.FormatUserError(err))

	// Nothing else is attempted.
	assert.Equal(t, 0, env.repoCalls)
	assert.Empty(t, env.historyTokens)
	assert.Empty(t, env.history.commitCalls)
}

func TestRunSummary_FetchErrors(t *testing.T) {
	rateLimited := &gserrors.RateLimitError{}

	tests := []struct {
		name    string
		setup   func(h *fakeHistory)
		wantErr error
		wantMsg string
	}{
		{
			name:    "commits",
			setup:   func(h *fakeHistory) { h.commitsErr = rateLimited },
			wantErr: rateLimited,
			wantMsg: "✗ Failed to fetch commits",
		},
		{
			name:    "pull requests",
			setup:   func(h *fakeHistory) { h.prsErr = rateLimited },
			wantErr: rateLimited,
			wantMsg: "✗ Failed to fetch pull requests",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, env := newTestServices(t)
			tt.setup(env.history)

			err := runSummary(t.Context(), s, report.WindowOptions{DefaultWeeks: summaryDefaultWeeks})
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr))
			assert.Contains(t, env.errOut.String(), tt.wantMsg)
			assert.Empty(t, env.streamer.prompts)
		})
	}
}

func TestRunSummary_StreamError(t *testing.T) {
	s, env := newTestServices(t)
	env.history.commits = sampleCommits()
	env.streamer.err = gserrors.NewAIErrorWithStatus("anthropic", "StreamChat", http.StatusTooManyRequests, "rate limited")

	err := runSummary(t.Context(), s, report.WindowOptions{DefaultWeeks: summaryDefaultWeeks})
	require.Error(t, err)
	assert.True(t, gserrors.IsAIError(err))
	assert.NotContains(t, env.out.String(), "Based on")
}

func TestRunContributors(t *testing.T) {
	s, env := newTestServices(t)
	env.history.commits = sampleCommits()
	env.history.prs = append(samplePRs(), github.PullRequest{Number: 8, Title: "Docs", Author: "carol", MergedAt: testNow})

	err := runContributors(t.Context(), s, report.WindowOptions{Weeks: "4", DefaultWeeks: contributorsDefaultWeeks})
	require.NoError(t, err)

	call := env.history.commitCalls[0]
	assert.Equal(t, 28*24*time.Hour, call.dr.Until.Sub(call.dr.Since))

	out := env.out.String()
	assert.Contains(t, out, "👥 Contributors for octo/hello")
	assert.Contains(t, out, "Found 3 contributors")
	assert.Contains(t, out, "Based on 3 commits and 2 pull requests")

	prompt := env.streamer.prompts[0]
	assert.Contains(t, prompt, "### alice (2 commits, 1 PRs)")
	assert.Contains(t, prompt, "### bob (1 commits, 0 PRs)")
	assert.Contains(t, prompt, "### carol (0 commits, 1 PRs)")
	assert.Less(t, strings.Index(prompt, "### alice"), strings.Index(prompt, "### bob"))
}

func TestRunContributors_Months(t *testing.T) {
	s, env := newTestServices(t)
	env.history.commits = sampleCommits()

	err := runContributors(t.Context(), s, report.WindowOptions{Weeks: "4", Months: "3", DefaultWeeks: contributorsDefaultWeeks})
	require.NoError(t, err)

	assert.Equal(t, testNow.AddDate(0, -3, 0), env.history.commitCalls[0].dr.Since)
}

func TestRunContributors_NoActivity(t *testing.T) {
	s, env := newTestServices(t)

	require.NoError(t, runContributors(t.Context(), s, report.WindowOptions{DefaultWeeks: contributorsDefaultWeeks}))
	assert.Contains(t, env.out.String(), "No activity found in this time period.")
	assert.Empty(t, env.streamer.prompts)
}

func TestRunAsk(t *testing.T) {
	s, env := newTestServices(t)
	env.history.commits = sampleCommits()
	env.history.prs = samplePRs()

	err := runAsk(t.Context(), s, "Why was the cache added?")
	require.NoError(t, err)

	call := env.history.commitCalls[0]
	assert.Equal(t, testNow.AddDate(0, -6, 0), call.dr.Since)
	assert.Equal(t, testNow, call.dr.Until)
	assert.Equal(t, askMaxCommits, call.maxCount)
	assert.Equal(t, askMaxPRs, env.history.prCalls[0].maxCount)

	out := env.out.String()
	assert.Contains(t, out, "❓ Question about octo/hello")
	assert.Contains(t, out, `"Why was the cache added?"`)
	assert.Contains(t, env.errOut.String(), "Fetched 3 commits")

	prompt := env.streamer.prompts[0]
	assert.Contains(t, prompt, "## Question\nWhy was the cache added?")
}

func TestRunAsk_NoHistory(t *testing.T) {
	s, env := newTestServices(t)

	require.NoError(t, runAsk(t.Context(), s, "anything?"))
	assert.Contains(t, env.out.String(), "⚠ No history found to search.")
	assert.Empty(t, env.streamer.prompts)
}

func TestRunAsk_NotAuthenticated(t *testing.T) {
	s, env := newTestServices(t)
	delete(env.store.values, credentials.GitHubToken)
	s.newHistory = func(token string) (historySource, error) {
		return github.NewHistoryClient(token)
	}

	err := runAsk(t.Context(), s, "anything?")
	require.Error(t, err)
	assert.True(t, gserrors.IsAuthError(err))
	assert.Empty(t, env.streamer.prompts)
}

func TestRunChangelog(t *testing.T) {
	s, env := newTestServices(t)
	// Newest first, as the compare endpoint is consumed.
	env.history.between = []github.Commit{
		{SHA: "2222222abc", Message: "feat: new", Author: github.Author{Login: "alice"}, Date: testNow.Add(-1 * time.Hour)},
		{SHA: "1111111abc", Message: "fix: old", Author: github.Author{Login: "bob"}, Date: testNow.Add(-10 * time.Hour)},
	}
	env.history.prs = []github.PullRequest{
		{Number: 1, Title: "In range", Author: "alice", MergedAt: testNow.Add(-5 * time.Hour)},
		{Number: 2, Title: "Too old", Author: "bob", MergedAt: testNow.Add(-48 * time.Hour)},
		{Number: 3, Title: "Too new", Author: "bob", MergedAt: testNow},
	}

	err := runChangelog(t.Context(), s, changelogOptions{From: "v1.0.0", To: "HEAD", Format: "markdown"})
	require.NoError(t, err)

	assert.Equal(t, [][2]string{{"v1.0.0", "HEAD"}}, env.history.betweenCalls)
	require.Len(t, env.history.prCalls, 1)
	assert.Nil(t, env.history.prCalls[0].dr)
	assert.Equal(t, changelogPRPool, env.history.prCalls[0].maxCount)

	prompt := env.streamer.prompts[0]
	assert.Contains(t, prompt, "From: v1.0.0\nTo: HEAD")
	assert.Contains(t, prompt, "### Pull Requests (1)\n- PR #1 (alice): In range")
	assert.True(t, strings.HasSuffix(prompt, "suitable for a CHANGELOG.md file."))

	out := env.out.String()
	assert.Contains(t, out, "📝 Changelog for octo/hello")
	assert.Contains(t, out, "From: v1.0.0 → To: HEAD")
	assert.Contains(t, out, "Based on 2 commits and 1 pull requests")
	assert.Contains(t, env.errOut.String(), "✓ Found 1 related pull requests")
}

func TestRunChangelog_DefaultsToHead(t *testing.T) {
	s, env := newTestServices(t)
	env.history.between = sampleCommits()

	require.NoError(t, runChangelog(t.Context(), s, changelogOptions{From: "v1.0.0", Format: "pretty"}))
	assert.Equal(t, [][2]string{{"v1.0.0", "HEAD"}}, env.history.betweenCalls)
}

func TestRunChangelog_RefNotFound(t *testing.T) {
	s, env := newTestServices(t)
	env.history.betweenErr = gserrors.NewNotFoundError("Repository not found or not accessible.", nil)

	err := runChangelog(t.Context(), s, changelogOptions{From: "v9.9.9", To: "main", Format: "pretty"})
	require.Error(t, err)
	assert.Equal(t, "Reference 'v9.9.9' or 'main' not found in repository.", gserrors.FormatUserError(err))
	assert.Contains(t, env.errOut.String(), "✗ Failed to fetch commits")
	assert.Empty(t, env.history.prCalls)
}

func TestRunChangelog_OtherErrorsPassThrough(t *testing.T) {
	s, env := newTestServices(t)
	denied := &gserrors.AccessDeniedError{Message: "Resource not accessible by integration"}
	env.history.betweenErr = denied

	err := runChangelog(t.Context(), s, changelogOptions{From: "a", To: "b", Format: "pretty"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, denied))
}

func TestRunChangelog_NoCommits(t *testing.T) {
	s, env := newTestServices(t)

	require.NoError(t, runChangelog(t.Context(), s, changelogOptions{From: "v1", To: "v1", Format: "pretty"}))
	assert.Contains(t, env.out.String(), "No commits found between these references.")
	assert.Empty(t, env.history.prCalls)
	assert.Empty(t, env.streamer.prompts)
}

func TestRunChangelog_InvalidOptions(t *testing.T) {
	tests := []struct {
		name    string
		opts    changelogOptions
		wantMsg string
	}{
		{name: "missing from", opts: changelogOptions{To: "HEAD", Format: "pretty"}, wantMsg: "The --from reference is required."},
		{name: "bad format", opts: changelogOptions{From: "v1", Format: "html"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, env := newTestServices(t)
			err := runChangelog(t.Context(), s, tt.opts)
			require.Error(t, err)
			assert.True(t, gserrors.IsConfigError(err))
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, gserrors.FormatUserError(err))
			}
			assert.Empty(t, env.history.betweenCalls)
		})
	}
}
