package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gserrors "github.com/tshields86/git-sense/pkg/errors"
)

func TestLoad_Defaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultClientID, cfg.GitHub.ClientID)
	assert.Equal(t, DefaultHost, cfg.GitHub.Host)
	assert.Equal(t, []string{"repo"}, cfg.GitHub.Scopes)
	assert.Equal(t, DefaultMaxCommits, cfg.GitHub.MaxCommits)
	assert.Equal(t, DefaultMaxPRs, cfg.GitHub.MaxPRs)
	assert.Equal(t, DefaultModel, cfg.AI.Model)
	assert.Equal(t, DefaultMaxTokens, cfg.AI.MaxTokens)
	assert.Equal(t, DefaultEndpoint, cfg.AI.Endpoint)
	assert.Equal(t, BackendFile, cfg.Credentials.Backend)
	assert.Equal(t, "credentials.toml", filepath.Base(cfg.Credentials.Path))
}

func TestLoad_Overrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("ai.model", "claude-opus")
	viper.Set("github.max_prs", 50)
	viper.Set("credentials.backend", BackendKeyring)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "claude-opus", cfg.AI.Model)
	assert.Equal(t, 50, cfg.GitHub.MaxPRs)
	assert.Equal(t, BackendKeyring, cfg.Credentials.Backend)
}

func TestLoad_ExpandsCredentialsPath(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	home, err := os.UserHomeDir()
	require.NoError(t, err)

	viper.Set("credentials.path", "~/secrets/gs.toml")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "secrets", "gs.toml"), cfg.Credentials.Path)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			GitHub:      GitHubConfig{MaxCommits: 1, MaxPRs: 1},
			AI:          AIConfig{MaxTokens: 1},
			Credentials: CredentialsConfig{Backend: BackendFile},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "keyring backend", mutate: func(c *Config) { c.Credentials.Backend = BackendKeyring }},
		{name: "unknown backend", mutate: func(c *Config) { c.Credentials.Backend = "vault" }, wantErr: true},
		{name: "zero commits", mutate: func(c *Config) { c.GitHub.MaxCommits = 0 }, wantErr: true},
		{name: "negative prs", mutate: func(c *Config) { c.GitHub.MaxPRs = -1 }, wantErr: true},
		{name: "zero tokens", mutate: func(c *Config) { c.AI.MaxTokens = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, gserrors.IsConfigError(err))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := expandPath("~/x")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "x"), got)

	got, err = expandPath("/abs/path")
	require.NoError(t, err)
	assert.Equal(t, "/abs/path", got)

	got, err = expandPath("")
	require.NoError(t, err)
	assert.Empty(t, got)
}
