package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tshields86/git-sense/pkg/report"
)

const summaryDefaultWeeks = 2

var (
	summaryWeeks  string
	summaryMonths string
	summaryAll    bool
)

// summaryCmd narrates recent repository activity.
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Generate AI summary of repository activity",
	Long: `Summarize what happened in the current repository over a time window.

Commits and merged pull requests are fetched from GitHub and Claude writes a
narrative of the major themes, key changes and who worked on what.

Examples:
  git-sense summary              # Last 2 weeks
  git-sense summary --weeks 6    # Last 6 weeks
  git-sense summary --months 3   # Last 3 months
  git-sense summary --all        # Entire history`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := commandServices(cmd)
		if err != nil {
			return err
		}
		return runSummary(cmd.Context(), s, report.WindowOptions{
			Weeks:        summaryWeeks,
			Months:       summaryMonths,
			All:          summaryAll,
			DefaultWeeks: summaryDefaultWeeks,
		})
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd)

	summaryCmd.Flags().StringVar(&summaryWeeks, "weeks", "2", "Last n weeks")
	summaryCmd.Flags().StringVar(&summaryMonths, "months", "", "Last n months (takes precedence over --weeks)")
	summaryCmd.Flags().BoolVar(&summaryAll, "all", false, "Entire history")
}

func runSummary(ctx context.Context, s *services, window report.WindowOptions) error {
	streamer, err := s.Streamer()
	if err != nil {
		return err
	}

	repo, err := s.detectRepo(ctx)
	if err != nil {
		return err
	}

	now := s.now()
	dr, err := report.ComputeDateRange(now, window)
	if err != nil {
		return err
	}

	history, err := s.History()
	if err != nil {
		return err
	}

	t := s.term
	t.SectionHeader(fmt.Sprintf("Summary for %s (%s)", repo.FullName(), describeRange(dr)), "📊")

	act, err := fetchActivity(ctx, t, history, repo, dr, s.cfg.GitHub.MaxCommits, s.cfg.GitHub.MaxPRs, "Fetching commits...")
	if err != nil {
		return err
	}
	if act.empty() {
		t.Warning("No activity found in this time period.")
		return nil
	}

	t.Newline()
	start, end := promptWindow(dr, now)
	prompt := report.BuildSummaryPrompt(*repo, act.commits, act.prs, start, end)
	if err := streamer.Stream(ctx, prompt, t.Out()); err != nil {
		return err
	}

	t.Footer(len(act.commits), len(act.prs))
	return nil
}
