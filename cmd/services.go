package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/tshields86/git-sense/pkg/ai"
	"github.com/tshields86/git-sense/pkg/config"
	"github.com/tshields86/git-sense/pkg/credentials"
	gserrors "github.com/tshields86/git-sense/pkg/errors"
	"github.com/tshields86/git-sense/pkg/github"
	"github.com/tshields86/git-sense/pkg/ui"
)

const (
	anthropicKeyPrefix = "sk-ant-"
	msgInvalidKey      = "Invalid API key format. Key should start with 'sk-ant-'."
)

// secretStore is the subset of credentials.Store the commands use.
type secretStore interface {
	Get(name credentials.Name) (string, error)
	Set(name credentials.Name, value string) error
	Clear() error
	Path() string
}

// historySource is the subset of github.HistoryClient the commands use.
type historySource interface {
	FetchCommits(ctx context.Context, owner, repo string, dr *github.DateRange, maxCount int) ([]github.Commit, error)
	FetchMergedPRs(ctx context.Context, owner, repo string, dr *github.DateRange, maxCount int) ([]github.PullRequest, error)
	FetchCommitsBetweenRefs(ctx context.Context, owner, repo, base, head string) ([]github.Commit, error)
	AuthenticatedUser(ctx context.Context) (*github.User, error)
	CheckRateLimit(ctx context.Context) (*github.RateLimit, error)
}

// completionStreamer writes a model completion for prompt to w.
type completionStreamer interface {
	Stream(ctx context.Context, prompt string, w io.Writer) error
}

// deviceAuthenticator runs the GitHub device flow to completion.
type deviceAuthenticator interface {
	Run(ctx context.Context) (string, error)
}

// services holds everything a command talks to. Clients are built on first
// use and reused for the rest of the invocation; tests replace the factories
// or set the clients directly.
type services struct {
	cfg    *config.Config
	term   *ui.Terminal
	logger *slog.Logger
	now    func() time.Time

	store    secretStore
	history  historySource
	streamer completionStreamer

	newStore      func(cfg *config.CredentialsConfig) (secretStore, error)
	newHistory    func(token string) (historySource, error)
	newStreamer   func(apiKey string) completionStreamer
	newDeviceFlow func(cfg github.OAuthConfig, display func(*github.DeviceCode) error) (deviceAuthenticator, error)
	detectRepo    func(ctx context.Context) (*github.RepoInfo, error)
}

func newServices(cfg *config.Config, logger *slog.Logger) *services {
	s := &services{
		cfg:    cfg,
		term:   ui.New(os.Stdout, os.Stderr),
		logger: logger,
		now:    time.Now,
	}

	s.detectRepo = func(ctx context.Context) (*github.RepoInfo, error) {
		return github.DetectRepo(ctx, cfg.GitHub.Host)
	}

	s.newStore = func(c *config.CredentialsConfig) (secretStore, error) {
		store, err := credentials.NewStoreFromConfig(c)
		if err != nil {
			return nil, err
		}
		return store, nil
	}

	s.newHistory = func(token string) (historySource, error) {
		opts := []github.HistoryOption{github.WithLogger(logger)}
		if base := apiBaseURL(cfg.GitHub.Host); base != "" {
			opts = append(opts, github.WithBaseURL(base))
		}
		client, err := github.NewHistoryClient(token, opts...)
		if err != nil {
			return nil, err
		}
		return client, nil
	}

	s.newStreamer = func(apiKey string) completionStreamer {
		return ai.NewStreamer(ai.NewProvider(&cfg.AI, apiKey, logger))
	}

	s.newDeviceFlow = func(oc github.OAuthConfig, display func(*github.DeviceCode) error) (deviceAuthenticator, error) {
		flow, err := github.NewDeviceFlow(oc,
			github.WithDisplayCode(display),
			github.WithFlowLogger(logger))
		if err != nil {
			return nil, err
		}
		return flow, nil
	}

	return s
}

// apiBaseURL returns the REST root for a GitHub Enterprise host, or "" for
// github.com where go-github's default applies.
func apiBaseURL(host string) string {
	host = strings.TrimSuffix(host, "/")
	if host == "" || host == github.DefaultGitHubHost {
		return ""
	}
	return host + "/api/v3/"
}

// Store returns the credential store.
func (s *services) Store() (secretStore, error) {
	if s.store != nil {
		return s.store, nil
	}
	store, err := s.newStore(&s.cfg.Credentials)
	if err != nil {
		return nil, err
	}
	s.store = store
	return store, nil
}

// History returns a GitHub client authenticated with the stored token.
func (s *services) History() (historySource, error) {
	if s.history != nil {
		return s.history, nil
	}
	store, err := s.Store()
	if err != nil {
		return nil, err
	}
	token, err := store.Get(credentials.GitHubToken)
	if err != nil {
		return nil, err
	}
	history, err := s.newHistory(token)
	if err != nil {
		return nil, err
	}
	s.history = history
	return history, nil
}

// Streamer returns the completion streamer, asking for the Anthropic key
// first if none is stored and stdin is a terminal.
func (s *services) Streamer() (completionStreamer, error) {
	if s.streamer != nil {
		return s.streamer, nil
	}
	key, err := s.ensureAnthropicKey()
	if err != nil {
		return nil, err
	}
	s.streamer = s.newStreamer(key)
	return s.streamer, nil
}

func (s *services) ensureAnthropicKey() (string, error) {
	store, err := s.Store()
	if err != nil {
		return "", err
	}
	key, err := store.Get(credentials.AnthropicKey)
	if err != nil {
		return "", err
	}
	if key != "" {
		return key, nil
	}

	if !s.term.CanPrompt() {
		return "", ai.MissingKeyError()
	}

	s.term.Info("An Anthropic API key is required. Get one at https://console.anthropic.com/")
	key, err = s.term.PromptSecret("Anthropic API key:")
	if err != nil {
		return "", err
	}
	if key == "" {
		return "", ai.MissingKeyError()
	}
	if err := validateAnthropicKey(key); err != nil {
		return "", err
	}
	if err := store.Set(credentials.AnthropicKey, key); err != nil {
		return "", err
	}
	s.term.Success("Anthropic API key saved.")

	return key, nil
}

func validateAnthropicKey(key string) error {
	if !strings.HasPrefix(key, anthropicKeyPrefix) {
		return gserrors.NewConfigError("anthropic_key", msgInvalidKey)
	}
	return nil
}
