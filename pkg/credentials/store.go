// Package credentials persists the two secrets git-sense needs: the GitHub
// OAuth token and the Anthropic API key.
//
// Environment variables shadow stored values at read time without ever
// modifying what is stored.
package credentials

import (
	"os"

	"github.com/tshields86/git-sense/pkg/config"
	gserrors "github.com/tshields86/git-sense/pkg/errors"
)

// Name identifies a stored secret.
type Name string

const (
	// GitHubToken is the GitHub OAuth access token.
	GitHubToken Name = "github_token"
	// AnthropicKey is the Anthropic API key.
	AnthropicKey Name = "anthropic_key"
)

// Names lists every secret the store manages.
var Names = []Name{GitHubToken, AnthropicKey}

// envVars maps each secret to the environment variable that overrides it.
var envVars = map[Name]string{
	GitHubToken:  "GITHUB_TOKEN",
	AnthropicKey: "ANTHROPIC_API_KEY",
}

// EnvVar returns the environment variable that shadows name.
func EnvVar(name Name) string {
	return envVars[name]
}

// Backend is the persistence layer behind a Store.
type Backend interface {
	// Get returns the stored value, or "" when nothing is stored.
	Get(name Name) (string, error)
	Set(name Name, value string) error
	Clear() error
	// Location describes where values are kept, for display.
	Location() string
}

// Store resolves secrets from the environment first, then the backend.
type Store struct {
	backend Backend
}

// NewStore creates a Store over the given backend.
func NewStore(backend Backend) *Store {
	return &Store{backend: backend}
}

// NewStoreFromConfig creates a Store using the backend selected in config.
func NewStoreFromConfig(cfg *config.CredentialsConfig) (*Store, error) {
	if cfg == nil {
		return nil, gserrors.NewConfigError("credentials", "config is nil")
	}

	switch cfg.Backend {
	case config.BackendKeyring:
		return NewStore(NewKeyringBackend(KeyringService)), nil
	case config.BackendFile, "":
		return NewStore(NewFileBackend(cfg.Path)), nil
	default:
		return nil, gserrors.NewConfigError("credentials.backend",
			"unsupported credentials backend "+cfg.Backend+" (supported: file, keyring)")
	}
}

// Get returns the secret for name. The environment variable wins when set.
func (s *Store) Get(name Name) (string, error) {
	if v := os.Getenv(EnvVar(name)); v != "" {
		return v, nil
	}
	return s.backend.Get(name)
}

// Set overwrites the persisted value for name.
func (s *Store) Set(name Name, value string) error {
	if _, ok := envVars[name]; !ok {
		return gserrors.NewConfigError("credentials", "unknown credential "+string(name))
	}
	return s.backend.Set(name, value)
}

// Clear removes all persisted values.
func (s *Store) Clear() error {
	return s.backend.Clear()
}

// Path describes where the backend keeps its values.
func (s *Store) Path() string {
	return s.backend.Location()
}

// IsGitHubAuthenticated reports whether a GitHub token is available.
func (s *Store) IsGitHubAuthenticated() bool {
	return s.has(GitHubToken)
}

// IsLLMConfigured reports whether an Anthropic key is available.
func (s *Store) IsLLMConfigured() bool {
	return s.has(AnthropicKey)
}

func (s *Store) has(name Name) bool {
	v, err := s.Get(name)
	return err == nil && v != ""
}
