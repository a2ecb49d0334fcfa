package config

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"

	gserrors "github.com/tshields86/git-sense/pkg/errors"
)

// Config represents the application configuration.
// Repository information is derived from git, not configuration.
// Secrets live in the credential store, never here.
type Config struct {
	GitHub      GitHubConfig      `mapstructure:"github"`
	AI          AIConfig          `mapstructure:"ai"`
	Credentials CredentialsConfig `mapstructure:"credentials"`
}

// GitHubConfig holds GitHub integration configuration
type GitHubConfig struct {
	ClientID   string   `mapstructure:"client_id"`   // OAuth app client ID for device flow
	Host       string   `mapstructure:"host"`        // e.g., "https://github.com"
	Scopes     []string `mapstructure:"scopes"`      // OAuth scopes requested by `auth`
	MaxCommits int      `mapstructure:"max_commits"` // Cap for commit listing
	MaxPRs     int      `mapstructure:"max_prs"`     // Cap for merged PR listing
}

// AIConfig holds Anthropic configuration
type AIConfig struct {
	Model     string `mapstructure:"model"`      // e.g., "claude-sonnet-4-20250514"
	MaxTokens int    `mapstructure:"max_tokens"` // Completion token budget
	Endpoint  string `mapstructure:"endpoint"`   // Messages API URL
}

// CredentialsConfig selects where secrets are persisted
type CredentialsConfig struct {
	Backend string `mapstructure:"backend"` // "file" or "keyring"
	Path    string `mapstructure:"path"`    // Credentials file for the file backend
}

// Credential backends.
const (
	BackendFile    = "file"
	BackendKeyring = "keyring"
)

// Defaults shared with the packages that consume them.
const (
	DefaultClientID   = "Ov23livD27sKp8K0qGOL"
	DefaultHost       = "https://github.com"
	DefaultMaxCommits = 500
	DefaultMaxPRs     = 200
	DefaultModel      = "claude-sonnet-4-20250514"
	DefaultMaxTokens  = 4096
	DefaultEndpoint   = "https://api.anthropic.com/v1/messages"
)

// Load loads the configuration from file and environment variables
func Load() (*Config, error) {
	config := &Config{}

	// Set defaults
	setDefaults()

	// Unmarshal the config
	if err := viper.Unmarshal(config); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	// Expand paths
	if err := expandPaths(config); err != nil {
		return nil, errors.Wrap(err, "failed to expand paths")
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return config, nil
}

// Validate validates the configuration and returns any validation errors.
func (c *Config) Validate() error {
	switch c.Credentials.Backend {
	case BackendFile, BackendKeyring:
	default:
		return gserrors.NewConfigError("credentials.backend",
			"unsupported credentials backend "+c.Credentials.Backend+" (supported: file, keyring)")
	}
	if c.GitHub.MaxCommits < 1 {
		return gserrors.NewConfigError("github.max_commits", "must be a positive number")
	}
	if c.GitHub.MaxPRs < 1 {
		return gserrors.NewConfigError("github.max_prs", "must be a positive number")
	}
	if c.AI.MaxTokens < 1 {
		return gserrors.NewConfigError("ai.max_tokens", "must be a positive number")
	}
	return nil
}

// Dir returns the directory holding git-sense's config and credentials.
func Dir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fall back to current directory if home dir can't be determined
		homeDir = "."
	}
	return filepath.Join(homeDir, ".config", "git-sense")
}

// setDefaults sets default configuration values
func setDefaults() {
	// GitHub defaults
	viper.SetDefault("github.client_id", DefaultClientID)
	viper.SetDefault("github.host", DefaultHost)
	viper.SetDefault("github.scopes", []string{"repo"})
	viper.SetDefault("github.max_commits", DefaultMaxCommits)
	viper.SetDefault("github.max_prs", DefaultMaxPRs)

	// AI defaults
	viper.SetDefault("ai.model", DefaultModel)
	viper.SetDefault("ai.max_tokens", DefaultMaxTokens)
	viper.SetDefault("ai.endpoint", DefaultEndpoint)

	// Credentials defaults
	viper.SetDefault("credentials.backend", BackendFile)
	viper.SetDefault("credentials.path", filepath.Join(Dir(), "credentials.toml"))
}

// expandPaths expands ~ and environment variables in paths
func expandPaths(config *Config) error {
	var err error

	config.Credentials.Path, err = expandPath(config.Credentials.Path)
	if err != nil {
		return err
	}

	return nil
}

// expandPath expands ~ to home directory
func expandPath(path string) (string, error) {
	if len(path) == 0 || path[0] != '~' {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(homeDir, path[1:]), nil
}
