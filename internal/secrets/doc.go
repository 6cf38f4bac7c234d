// Package secrets resolves API credentials by name.
//
// A Store answers "get credential by name". The implementations are:
//   - EnvStore reads environment variables
//   - FileStore reads one file per credential from a directory (default ~/keys)
//   - KeyringStore reads the OS keychain through go-keyring
//   - Chain consults several stores in order and returns the first hit
//
// Missing credentials are reported as ErrNotFound so callers can abort before
// any network call is made.
package secrets
