package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tshields86/git-sense/pkg/bootstrap"
	"github.com/tshields86/git-sense/pkg/config"
	gserrors "github.com/tshields86/git-sense/pkg/errors"
	"github.com/tshields86/git-sense/pkg/ui"
)

var cfgFile string
var verbose bool
var appConfig *config.Config

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "git-sense",
	Short: "AI-powered CLI tool to make sense of git history",
	Long: `git-sense reads a GitHub repository's commits and pull requests and asks
Claude to explain them: narrative summaries, contributor breakdowns, answers to
questions about the history, and changelogs between two refs.

Run "git-sense auth" once to connect GitHub, and "git-sense config
--anthropic-key <key>" to store your Anthropic API key.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	// Pre-parse global flags so the configuration is loaded before any command runs.
	cfgFile, verbose = bootstrap.PreParseGlobalFlags(os.Args)

	if err := initConfig(); err != nil {
		exitWithError(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		exitWithError(err)
	}
}

func init() {
	cobra.OnInitialize(func() {
		_ = initConfig()
	})

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "C", "", "config file (default is $HOME/.config/git-sense/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() error {
	var err error
	appConfig, verbose, err = bootstrap.InitConfig(cfgFile, verbose)
	return err
}

// loadConfig returns the already loaded configuration or loads it if it hasn't been yet.
func loadConfig() (*config.Config, error) {
	if appConfig != nil {
		return appConfig, nil
	}
	return config.Load()
}

// resetConfig clears the cached configuration.
// This is primarily used in tests to ensure each test starts with a fresh config.
func resetConfig() {
	appConfig = nil
	bootstrap.Reset()
	viper.Reset()
}

// newLogger returns a debug logger on stderr when verbose, otherwise a logger
// that drops everything. Each invocation gets its own run_id.
func newLogger(verbose bool, w io.Writer) *slog.Logger {
	if !verbose {
		return slog.New(slog.DiscardHandler)
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return logger.With("run_id", uuid.NewString())
}

// commandServices builds the services for a command invocation.
func commandServices(cmd *cobra.Command) (*services, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return newServices(cfg, newLogger(verbose, cmd.ErrOrStderr())), nil
}

// exitWithError prints err as a single line on stderr and exits non-zero.
func exitWithError(err error) {
	ui.New(os.Stdout, os.Stderr).Error(gserrors.FormatUserError(err))
	os.Exit(1)
}
