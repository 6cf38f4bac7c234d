package secrets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// ErrNotFound is returned when a credential is absent from a store.
var ErrNotFound = errors.New("credential not found")

// Store returns credentials by name.
type Store interface {
	Get(name string) (string, error)
}

// EnvStore reads credentials from environment variables.
type EnvStore struct {
	// Prefix is prepended to the credential name, e.g. "INBOXREVIEW_".
	Prefix string
}

// Get returns the trimmed value of the environment variable Prefix+name.
func (s EnvStore) Get(name string) (string, error) {
	v := strings.TrimSpace(os.Getenv(s.Prefix + name))
	if v == "" {
		return "", fmt.Errorf("%w: environment variable %s", ErrNotFound, s.Prefix+name)
	}
	return v, nil
}

// FileStore reads credentials from files in a directory. The credential
// TODOIST_API_KEY is looked up as <Dir>/TODOIST_API_KEY and then
// <Dir>/TODOIST_API_KEY.token.
type FileStore struct {
	Dir string
}

// NewFileStore returns a FileStore rooted at dir, or at ~/keys when dir is empty.
func NewFileStore(dir string) FileStore {
	if dir == "" {
		dir = filepath.Join(HomeDir(), "keys")
	}
	return FileStore{Dir: dir}
}

// Get returns the trimmed contents of the credential file.
func (s FileStore) Get(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid credential name %q", name)
	}
	for _, file := range []string{name, name + ".token"} {
		path := filepath.Join(s.Dir, file)
		slurp, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return "", fmt.Errorf("failed to read credential file %s: %w", path, err)
		}
		if v := strings.TrimSpace(string(slurp)); v != "" {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: no file for %s in %s", ErrNotFound, name, s.Dir)
}

// Chain consults stores in order and returns the first credential found.
type Chain []Store

// Get returns the first value found. Errors other than ErrNotFound stop the lookup.
func (c Chain) Get(name string) (string, error) {
	for _, s := range c {
		v, err := s.Get(name)
		if err == nil {
			return v, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return "", err
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, name)
}

// Map is a fixed in-memory store. Tests use it in place of the environment.
type Map map[string]string

// Get returns the value stored under name.
func (m Map) Get(name string) (string, error) {
	if v, ok := m[name]; ok && v != "" {
		return v, nil
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, name)
}

// HomeDir returns the current user's home directory.
func HomeDir() string {
	if runtime.GOOS == "windows" {
		return os.Getenv("HOMEDRIVE") + os.Getenv("HOMEPATH")
	}
	return os.Getenv("HOME")
}
