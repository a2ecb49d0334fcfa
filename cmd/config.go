package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tshields86/git-sense/pkg/credentials"
	gserrors "github.com/tshields86/git-sense/pkg/errors"
	"github.com/tshields86/git-sense/pkg/ui"
)

var (
	configAnthropicKey string
	configShow         bool
	configClear        bool
)

// configOptions selects one config action. Clear wins over setting a key,
// and showing is the default.
type configOptions struct {
	AnthropicKey string
	Show         bool
	Clear        bool
}

// configCmd manages stored credentials.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration settings",
	Long: `Manage git-sense credentials.

Examples:
  git-sense config --anthropic-key sk-ant-...   # Store the Anthropic API key
  git-sense config --show                       # Show current configuration
  git-sense config --clear                      # Remove stored credentials

With no flags, the current configuration is shown.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := commandServices(cmd)
		if err != nil {
			return err
		}
		return runConfig(cmd.Context(), s, configOptions{
			AnthropicKey: configAnthropicKey,
			Show:         configShow,
			Clear:        configClear,
		})
	},
}

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.Flags().StringVar(&configAnthropicKey, "anthropic-key", "", "Store Anthropic API key")
	configCmd.Flags().BoolVar(&configShow, "show", false, "Display current configuration")
	configCmd.Flags().BoolVar(&configClear, "clear", false, "Clear all stored configuration")
}

func runConfig(ctx context.Context, s *services, opts configOptions) error {
	store, err := s.Store()
	if err != nil {
		return err
	}

	switch {
	case opts.Clear:
		if err := store.Clear(); err != nil {
			return gserrors.Wrap(err, "failed to clear configuration")
		}
		s.term.Success("Configuration cleared.")
		return nil

	case opts.AnthropicKey != "":
		if err := validateAnthropicKey(opts.AnthropicKey); err != nil {
			return err
		}
		if err := store.Set(credentials.AnthropicKey, opts.AnthropicKey); err != nil {
			return gserrors.Wrap(err, "failed to save Anthropic API key")
		}
		s.term.Success("Anthropic API key saved.")
		return nil

	default:
		return showConfig(ctx, s, store)
	}
}

func showConfig(ctx context.Context, s *services, store secretStore) error {
	t := s.term
	t.Newline()
	t.Println("Configuration:")

	token, err := store.Get(credentials.GitHubToken)
	if err != nil {
		return err
	}
	if token == "" {
		t.Println("  GitHub: not authenticated")
	} else {
		t.Println(githubStatus(ctx, s))
	}

	key, err := store.Get(credentials.AnthropicKey)
	if err != nil {
		return err
	}
	if key == "" {
		t.Println("  Anthropic: not configured")
	} else {
		t.Println("  Anthropic: " + ui.MaskSecret(key, 4) + " (configured)")
	}

	t.Println("  Model: " + s.cfg.AI.Model)
	t.Println("  Credentials: " + store.Path())
	t.Newline()
	return nil
}

// githubStatus verifies the stored token. Any failure is reported as an
// unverified token rather than an error.
func githubStatus(ctx context.Context, s *services) string {
	history, err := s.History()
	if err != nil {
		return "  GitHub: token stored (unable to verify)"
	}
	user, err := history.AuthenticatedUser(ctx)
	if err != nil {
		s.logger.Debug("token verification failed", "error", err)
		return "  GitHub: token stored (unable to verify)"
	}

	status := fmt.Sprintf("  GitHub: authenticated as @%s", user.Login)
	if rl, err := history.CheckRateLimit(ctx); err == nil {
		status += fmt.Sprintf("\n  GitHub API: %d/%d requests remaining", rl.Remaining, rl.Limit)
	}
	return status
}
