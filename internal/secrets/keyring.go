package secrets

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// DefaultKeyringService is the keychain service credentials are stored under.
const DefaultKeyringService = "inboxreview"

// KeyringStore reads credentials from the OS keychain (macOS Keychain,
// Secret Service on Linux, Windows Credential Manager). The credential name
// is the keychain account.
type KeyringStore struct {
	Service string
}

// NewKeyringStore returns a KeyringStore for service, or for
// DefaultKeyringService when service is empty.
func NewKeyringStore(service string) KeyringStore {
	if service == "" {
		service = DefaultKeyringService
	}
	return KeyringStore{Service: service}
}

// Get returns the secret stored for name. A keychain that cannot be reached
// counts as not found so lookups fall through on headless hosts.
func (s KeyringStore) Get(name string) (string, error) {
	v, err := keyring.Get(s.Service, name)
	switch {
	case errors.Is(err, keyring.ErrNotFound):
		return "", fmt.Errorf("%w: keyring entry %s/%s", ErrNotFound, s.Service, name)
	case err != nil:
		return "", fmt.Errorf("%w: keyring unavailable for %s/%s: %v", ErrNotFound, s.Service, name, err)
	case v == "":
		return "", fmt.Errorf("%w: empty keyring entry %s/%s", ErrNotFound, s.Service, name)
	}
	return v, nil
}

// NewDefaultChain returns the lookup order used by the commands: environment,
// credential files in dir, then the OS keychain under service.
func NewDefaultChain(dir, service string) Chain {
	return Chain{EnvStore{}, NewFileStore(dir), NewKeyringStore(service)}
}
