package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	gserrors "github.com/tshields86/git-sense/pkg/errors"
	"github.com/tshields86/git-sense/pkg/report"
)

// changelogPRPool is how many recent merged PRs are matched against the commits.
const changelogPRPool = 500

var (
	changelogFrom   string
	changelogTo     string
	changelogFormat string
)

// changelogOptions are the refs and output format for a changelog.
type changelogOptions struct {
	From   string
	To     string
	Format string
}

// changelogCmd writes a changelog between two refs.
var changelogCmd = &cobra.Command{
	Use:   "changelog",
	Short: "Generate changelog between two git references",
	Long: `Generate a changelog for the commits between two refs (tags, branches or
SHAs). Merged pull requests from the same period are included for context.

Examples:
  git-sense changelog --from v1.2.0
  git-sense changelog --from v1.2.0 --to v1.3.0 --format markdown > CHANGES.md`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := commandServices(cmd)
		if err != nil {
			return err
		}
		return runChangelog(cmd.Context(), s, changelogOptions{
			From:   changelogFrom,
			To:     changelogTo,
			Format: changelogFormat,
		})
	},
}

func init() {
	rootCmd.AddCommand(changelogCmd)

	changelogCmd.Flags().StringVar(&changelogFrom, "from", "", "Starting reference")
	changelogCmd.Flags().StringVar(&changelogTo, "to", "HEAD", "Ending reference")
	changelogCmd.Flags().StringVar(&changelogFormat, "format", "pretty", "Output format (pretty, markdown)")
	_ = changelogCmd.MarkFlagRequired("from")
}

func runChangelog(ctx context.Context, s *services, opts changelogOptions) error {
	if opts.From == "" {
		return gserrors.NewConfigError("from", "The --from reference is required.")
	}
	if opts.To == "" {
		opts.To = "HEAD"
	}

	format, err := report.ParseChangelogFormat(opts.Format)
	if err != nil {
		return err
	}

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

	t := s.term
	t.SectionHeader(fmt.Sprintf("Changelog for %s", repo.FullName()), "📝")
	t.Muted("From: %s → To: %s", opts.From, opts.To)
	t.Newline()

	spinner := t.Spinner("Fetching commits...")
	commits, err := history.FetchCommitsBetweenRefs(ctx, repo.Owner, repo.Repo, opts.From, opts.To)
	if err != nil {
		spinner.Fail("Failed to fetch commits")
		if gserrors.IsNotFoundError(err) {
			return gserrors.NewNotFoundError(
				fmt.Sprintf("Reference '%s' or '%s' not found in repository.", opts.From, opts.To), err)
		}
		return err
	}
	spinner.Succeed("Fetched %d commits", len(commits))

	if len(commits) == 0 {
		t.Warning("No commits found between these references.")
		return nil
	}

	spinner = t.Spinner("Fetching related pull requests...")
	pool, err := history.FetchMergedPRs(ctx, repo.Owner, repo.Repo, nil, changelogPRPool)
	if err != nil {
		spinner.Fail("Failed to fetch pull requests")
		return err
	}
	related := report.RelatedPRs(commits, pool)
	spinner.Succeed("Found %d related pull requests", len(related))

	t.Newline()
	prompt := report.BuildChangelogPrompt(*repo, opts.From, opts.To, commits, related, format)
	if err := streamer.Stream(ctx, prompt, t.Out()); err != nil {
		return err
	}

	t.Footer(len(commits), len(related))
	return nil
}
