package review

import (
	"errors"
	"fmt"

	"github.com/teemow/inboxreview/internal/secrets"
)

// LoadCredentials fetches every named credential from store. All absent names
// are reported together in a *MissingCredentialError so the caller can stop
// before any network call is made.
func LoadCredentials(store secrets.Store, names ...string) (map[string]string, error) {
	values := make(map[string]string, len(names))
	var missing []string

	for _, name := range names {
		v, err := store.Get(name)
		if err != nil {
			if errors.Is(err, secrets.ErrNotFound) {
				missing = append(missing, name)
				continue
			}
			return nil, fmt.Errorf("failed to read credential %s: %w", name, err)
		}
		values[name] = v
	}

	if len(missing) > 0 {
		return nil, &MissingCredentialError{Names: missing}
	}
	return values, nil
}
