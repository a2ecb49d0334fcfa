package credentials

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/tshields86/git-sense/pkg/config"
)

func newFileStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "git-sense", "credentials.toml")
	return NewStore(NewFileBackend(path)), path
}

func TestFileBackend_GetSet(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("ANTHROPIC_API_KEY", "")

	store, path := newFileStore(t)

	// Nothing stored yet
	v, err := store.Get(GitHubToken)
	require.NoError(t, err)
	assert.Empty(t, v)
	assert.False(t, store.IsGitHubAuthenticated())

	require.NoError(t, store.Set(GitHubToken, "gho_abc"))
	require.NoError(t, store.Set(AnthropicKey, "sk-ant-xyz"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	if info.Mode().Perm() != 0600 {
		t.Errorf("credentials file permissions = %o, want 0600", info.Mode().Perm())
	}
	dirInfo, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	if dirInfo.Mode().Perm() != 0700 {
		t.Errorf("credentials dir permissions = %o, want 0700", dirInfo.Mode().Perm())
	}

	v, err = store.Get(GitHubToken)
	require.NoError(t, err)
	assert.Equal(t, "gho_abc", v)

	v, err = store.Get(AnthropicKey)
	require.NoError(t, err)
	assert.Equal(t, "sk-ant-xyz", v)

	assert.True(t, store.IsGitHubAuthenticated())
	assert.True(t, store.IsLLMConfigured())
	assert.Equal(t, path, store.Path())
}

func TestFileBackend_SetKeepsOtherValues(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("ANTHROPIC_API_KEY", "")

	store, _ := newFileStore(t)

	require.NoError(t, store.Set(GitHubToken, "first"))
	require.NoError(t, store.Set(AnthropicKey, "key"))
	require.NoError(t, store.Set(GitHubToken, "second"))

	v, err := store.Get(GitHubToken)
	require.NoError(t, err)
	assert.Equal(t, "second", v)

	v, err = store.Get(AnthropicKey)
	require.NoError(t, err)
	assert.Equal(t, "key", v)
}

func TestFileBackend_Clear(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("ANTHROPIC_API_KEY", "")

	store, path := newFileStore(t)

	require.NoError(t, store.Set(GitHubToken, "gho_abc"))
	require.NoError(t, store.Clear())

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	assert.False(t, store.IsGitHubAuthenticated())
	assert.False(t, store.IsLLMConfigured())

	// Clearing twice is fine
	require.NoError(t, store.Clear())
}

func TestFileBackend_CorruptFile(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "")

	store, path := newFileStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0700))
	require.NoError(t, os.WriteFile(path, []byte("github_token = [unterminated"), 0600))

	_, err := store.Get(GitHubToken)
	require.Error(t, err)
	assert.False(t, store.IsGitHubAuthenticated())
}

func TestStore_EnvironmentShadowsStoredValue(t *testing.T) {
	store, _ := newFileStore(t)

	t.Setenv("GITHUB_TOKEN", "")
	require.NoError(t, store.Set(GitHubToken, "X"))

	t.Setenv("GITHUB_TOKEN", "Y")
	v, err := store.Get(GitHubToken)
	require.NoError(t, err)
	assert.Equal(t, "Y", v)

	// The stored value is untouched
	t.Setenv("GITHUB_TOKEN", "")
	v, err = store.Get(GitHubToken)
	require.NoError(t, err)
	assert.Equal(t, "X", v)
}

func TestStore_EnvironmentOnly(t *testing.T) {
	store, _ := newFileStore(t)

	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-env")
	assert.True(t, store.IsLLMConfigured())

	v, err := store.Get(AnthropicKey)
	require.NoError(t, err)
	assert.Equal(t, "sk-ant-env", v)
}

func TestStore_SetUnknownName(t *testing.T) {
	store, _ := newFileStore(t)
	err := store.Set(Name("bogus"), "v")
	require.Error(t, err)
}

func TestKeyringBackend(t *testing.T) {
	keyring.MockInit()
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("ANTHROPIC_API_KEY", "")

	store := NewStore(NewKeyringBackend(KeyringService))

	v, err := store.Get(GitHubToken)
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, store.Set(GitHubToken, "gho_keyring"))
	v, err = store.Get(GitHubToken)
	require.NoError(t, err)
	assert.Equal(t, "gho_keyring", v)
	assert.Contains(t, store.Path(), KeyringService)

	require.NoError(t, store.Clear())
	assert.False(t, store.IsGitHubAuthenticated())
}

func TestNewStoreFromConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.toml")

	store, err := NewStoreFromConfig(&config.CredentialsConfig{Backend: config.BackendFile, Path: path})
	require.NoError(t, err)
	assert.Equal(t, path, store.Path())

	store, err = NewStoreFromConfig(&config.CredentialsConfig{Backend: config.BackendKeyring})
	require.NoError(t, err)
	assert.Contains(t, store.Path(), "keyring")

	_, err = NewStoreFromConfig(&config.CredentialsConfig{Backend: "vault"})
	require.Error(t, err)

	_, err = NewStoreFromConfig(nil)
	require.Error(t, err)
}
