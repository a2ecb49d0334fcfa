package credentials

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	gserrors "github.com/tshields86/git-sense/pkg/errors"
)

// storedCredentials is the on-disk layout of the credentials file.
type storedCredentials struct {
	GitHubToken  string `toml:"github_token,omitempty"`
	AnthropicKey string `toml:"anthropic_key,omitempty"`
}

func (c *storedCredentials) get(name Name) string {
	switch name {
	case GitHubToken:
		return c.GitHubToken
	case AnthropicKey:
		return c.AnthropicKey
	}
	return ""
}

func (c *storedCredentials) set(name Name, value string) {
	switch name {
	case GitHubToken:
		c.GitHubToken = value
	case AnthropicKey:
		c.AnthropicKey = value
	}
}

// FileBackend stores secrets in a TOML file readable only by the owner.
type FileBackend struct {
	path string
}

// NewFileBackend creates a file backend at path.
func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

// Location returns the credentials file path.
func (f *FileBackend) Location() string {
	return f.path
}

// Get reads name from the credentials file.
func (f *FileBackend) Get(name Name) (string, error) {
	stored, err := f.load()
	if err != nil {
		return "", err
	}
	return stored.get(name), nil
}

// Set writes name to the credentials file, keeping the other values.
func (f *FileBackend) Set(name Name, value string) error {
	stored, err := f.load()
	if err != nil {
		return err
	}
	stored.set(name, value)
	return f.save(stored)
}

// Clear removes the credentials file.
func (f *FileBackend) Clear() error {
	err := os.Remove(f.path)
	if err != nil && !os.IsNotExist(err) {
		return gserrors.NewConfigErrorWithCause("credentials", "failed to remove credentials file", err)
	}
	return nil
}

func (f *FileBackend) load() (*storedCredentials, error) {
	stored := &storedCredentials{}

	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return stored, nil
		}
		return nil, gserrors.NewConfigErrorWithCause("credentials", "failed to read credentials file", err)
	}

	if err := toml.Unmarshal(data, stored); err != nil {
		return nil, gserrors.NewConfigErrorWithCause("credentials", "failed to parse credentials file "+f.path, err)
	}
	return stored, nil
}

func (f *FileBackend) save(stored *storedCredentials) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return gserrors.NewConfigErrorWithCause("credentials", "failed to create config directory", err)
	}

	data, err := toml.Marshal(stored)
	if err != nil {
		return gserrors.NewConfigErrorWithCause("credentials", "failed to serialize credentials", err)
	}

	// Write with restrictive permissions (owner read/write only)
	if err := os.WriteFile(f.path, data, 0600); err != nil {
		return gserrors.NewConfigErrorWithCause("credentials", "failed to write credentials file", err)
	}
	return nil
}
