package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tshields86/git-sense/pkg/report"
)

// ask searches a wider window than the reports.
const (
	askMonths     = 6
	askMaxCommits = 500
	askMaxPRs     = 200
)

// askCmd answers a free-form question from the repository's history.
var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question about repository history",
	Long: `Ask Claude a question about the current repository. The answer is based
only on the last 6 months of commits and merged pull requests.

Examples:
  git-sense ask "Why was the caching layer removed?"
  git-sense ask "Who has been working on authentication?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := commandServices(cmd)
		if err != nil {
			return err
		}
		return runAsk(cmd.Context(), s, strings.Join(args, " "))
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(ctx context.Context, s *services, question string) error {
	streamer, err := s.Streamer()
	if err != nil {
		return err
	}

	repo, err := s.detectRepo(ctx)
	if err != nil {
		return err
	}

	history, err := s.History()
	if err != nil {
		return err
	}

	dr := report.MonthsBack(s.now(), askMonths)

	t := s.term
	t.SectionHeader(fmt.Sprintf("Question about %s", repo.FullName()), "❓")
	t.Muted("\"%s\"", question)
	t.Newline()

	act, err := fetchActivity(ctx, t, history, repo, dr, askMaxCommits, askMaxPRs, "Fetching commit history...")
	if err != nil {
		return err
	}
	if act.empty() {
		t.Warning("No history found to search.")
		return nil
	}

	t.Newline()
	prompt := report.BuildAskPrompt(*repo, act.commits, act.prs, question)
	if err := streamer.Stream(ctx, prompt, t.Out()); err != nil {
		return err
	}

	t.Footer(len(act.commits), len(act.prs))
	return nil
}
