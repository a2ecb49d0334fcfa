package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tshields86/git-sense/pkg/report"
)

const contributorsDefaultWeeks = 4

var (
	contributorsWeeks  string
	contributorsMonths string
)

// contributorsCmd breaks activity down per contributor.
var contributorsCmd = &cobra.Command{
	Use:   "contributors",
	Short: "Analyze contributor activity and focus areas",
	Long: `Group recent commits and merged pull requests by author and ask Claude
to describe each contributor's focus areas and the parts of the codebase they own.

Examples:
  git-sense contributors             # Last 4 weeks
  git-sense contributors --months 6  # Last 6 months`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := commandServices(cmd)
		if err != nil {
			return err
		}
		return runContributors(cmd.Context(), s, report.WindowOptions{
			Weeks:        contributorsWeeks,
			Months:       contributorsMonths,
			DefaultWeeks: contributorsDefaultWeeks,
		})
	},
}

func init() {
	rootCmd.AddCommand(contributorsCmd)

	contributorsCmd.Flags().StringVar(&contributorsWeeks, "weeks", "4", "Last n weeks")
	contributorsCmd.Flags().StringVar(&contributorsMonths, "months", "", "Last n months (takes precedence over --weeks)")
}

func runContributors(ctx context.Context, s *services, window report.WindowOptions) error {
	streamer, err := s.Streamer()
	if err != nil {
		return err
	}

	repo, err := s.detectRepo(ctx)
	if err != nil {
		return err
	}

	// Contributor analysis always has a window.
	window.All = false
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
	t.SectionHeader(fmt.Sprintf("Contributors for %s (%s)", repo.FullName(), describeRange(dr)), "👥")

	act, err := fetchActivity(ctx, t, history, repo, dr, s.cfg.GitHub.MaxCommits, s.cfg.GitHub.MaxPRs, "Fetching commits...")
	if err != nil {
		return err
	}
	if act.empty() {
		t.Warning("No activity found in this time period.")
		return nil
	}

	contributors := report.GroupByContributor(act.commits, act.prs)
	if len(contributors) == 0 {
		t.Warning("No contributors found in this time period.")
		return nil
	}
	t.Muted("Found %d contributors", len(contributors))

	t.Newline()
	prompt := report.BuildContributorPrompt(*repo, contributors, dr.Since, dr.Until)
	if err := streamer.Stream(ctx, prompt, t.Out()); err != nil {
		return err
	}

	t.Footer(len(act.commits), len(act.prs))
	return nil
}
