package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/tshields86/git-sense/pkg/credentials"
	"github.com/tshields86/git-sense/pkg/github"
)

// authCmd connects git-sense to GitHub through the OAuth device flow.
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authenticate with GitHub using OAuth",
	Long: `Authenticate with GitHub using the OAuth device flow.

A one-time code is shown; open the URL in a browser, enter the code, and
approve access. The resulting token is saved to the credential store.

Setting GITHUB_TOKEN overrides the stored token for every command.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := commandServices(cmd)
		if err != nil {
			return err
		}
		return runAuth(cmd.Context(), s)
	},
}

func init() {
	rootCmd.AddCommand(authCmd)
}

func runAuth(ctx context.Context, s *services) error {
	store, err := s.Store()
	if err != nil {
		return err
	}

	t := s.term
	t.Newline()
	spinner := t.Spinner("Starting GitHub authentication...")

	oc := github.OAuthConfig{
		ClientID: s.cfg.GitHub.ClientID,
		Scopes:   s.cfg.GitHub.Scopes,
		HostURL:  s.cfg.GitHub.Host,
	}
	flow, err := s.newDeviceFlow(oc, func(code *github.DeviceCode) error {
		spinner.Stop()
		t.Info("Open this URL in your browser: %s", code.VerificationURI)
		t.Info("Enter code: %s", code.UserCode)
		t.Newline()
		spinner = t.Spinner("Waiting for authorization...")
		return nil
	})
	if err != nil {
		spinner.Stop()
		return err
	}

	token, err := flow.Run(ctx)
	if err != nil {
		spinner.Stop()
		return err
	}

	if err := store.Set(credentials.GitHubToken, token); err != nil {
		spinner.Stop()
		return err
	}
	spinner.Succeed("Authorized")

	// Verify with the new token even if GITHUB_TOKEN is set.
	history, err := s.newHistory(token)
	if err != nil {
		return err
	}
	user, err := history.AuthenticatedUser(ctx)
	if err != nil {
		return err
	}

	t.Success("Authenticated as %s", user.Login)
	t.Muted("Token saved. You're ready to use git-sense!")
	t.Newline()
	return nil
}
