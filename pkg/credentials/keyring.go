package credentials

import (
	"github.com/cockroachdb/errors"
	"github.com/zalando/go-keyring"

	gserrors "github.com/tshields86/git-sense/pkg/errors"
)

// KeyringService is the keychain service name for git-sense.
const KeyringService = "git-sense"

// KeyringBackend uses macOS keychain / Linux secret service / Windows credential manager.
// Each secret is stored under its own account name.
type KeyringBackend struct {
	service string
}

// NewKeyringBackend creates a keyring backend for service.
func NewKeyringBackend(service string) *KeyringBackend {
	return &KeyringBackend{service: service}
}

// Location describes the keychain entry.
func (k *KeyringBackend) Location() string {
	return "system keyring (service " + k.service + ")"
}

// Get retrieves name from the keychain.
func (k *KeyringBackend) Get(name Name) (string, error) {
	v, err := keyring.Get(k.service, string(name))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", nil
		}
		return "", gserrors.NewConfigErrorWithCause("credentials", "failed to read from keychain", err)
	}
	return v, nil
}

// Set stores name in the keychain.
func (k *KeyringBackend) Set(name Name, value string) error {
	if err := keyring.Set(k.service, string(name), value); err != nil {
		return gserrors.NewConfigErrorWithCause("credentials", "failed to save to keychain", err)
	}
	return nil
}

// Clear removes every git-sense entry from the keychain.
func (k *KeyringBackend) Clear() error {
	for _, name := range Names {
		err := keyring.Delete(k.service, string(name))
		if err != nil && !errors.Is(err, keyring.ErrNotFound) {
			return gserrors.NewConfigErrorWithCause("credentials", "failed to clear keychain", err)
		}
	}
	return nil
}
