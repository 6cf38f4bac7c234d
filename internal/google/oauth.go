package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	tasks "google.golang.org/api/tasks/v1"
)

// ErrNoToken is returned when no token file exists for an account.
var ErrNoToken = errors.New("no Google OAuth token found")

// Scopes are the OAuth scopes needed to read, edit and move tasks.
var Scopes = []string{tasks.TasksScope}

const oob = "urn:ietf:wg:oauth:2.0:oob"

var accountPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

func validateAccountName(account string) error {
	if account == "" {
		return errors.New("account name cannot be empty")
	}
	if !accountPattern.MatchString(account) {
		return fmt.Errorf("invalid account name %q: only letters, digits, '-' and '_' are allowed", account)
	}
	return nil
}

// NewOAuthConfig returns the OAuth2 configuration for the Tasks API.
func NewOAuthConfig(clientID, clientSecret string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  oob,
		Scopes:       Scopes,
	}
}

// TokenStore keeps one token file per account in Dir.
type TokenStore struct {
	Dir string
}

// NewTokenStore returns a TokenStore in the user cache directory, or in dir
// when it is not empty.
func NewTokenStore(dir string) *TokenStore {
	if dir == "" {
		dir = filepath.Join(userCacheDir(), "inboxreview")
	}
	return &TokenStore{Dir: dir}
}

// Path returns the token file for account.
func (s *TokenStore) Path(account string) string {
	return filepath.Join(s.Dir, "google-"+account+".token")
}

// Has reports whether a token file exists for account.
func (s *TokenStore) Has(account string) bool {
	if validateAccountName(account) != nil {
		return false
	}
	_, err := os.Stat(s.Path(account))
	return err == nil
}

// Load reads the stored token for account. The access token is marked
// expired so the first request refreshes it.
func (s *TokenStore) Load(account string) (*oauth2.Token, error) {
	if err := validateAccountName(account); err != nil {
		return nil, err
	}

	slurp, err := os.ReadFile(s.Path(account))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w for account %s", ErrNoToken, account)
		}
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	f := strings.Fields(strings.TrimSpace(string(slurp)))
	if len(f) != 2 {
		return nil, fmt.Errorf("invalid token format in %s", s.Path(account))
	}

	return &oauth2.Token{
		AccessToken:  f[0],
		TokenType:    "Bearer",
		RefreshToken: f[1],
		Expiry:       time.Unix(1, 0),
	}, nil
}

// Save writes token for account.
func (s *TokenStore) Save(account string, token *oauth2.Token) error {
	if err := validateAccountName(account); err != nil {
		return err
	}
	if token == nil || token.RefreshToken == "" {
		return errors.New("token has no refresh token")
	}

	if err := os.MkdirAll(s.Dir, 0700); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	data := token.AccessToken + " " + token.RefreshToken
	if err := os.WriteFile(s.Path(account), []byte(data), 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// Exchange trades an authorization code for a token and stores it.
func Exchange(ctx context.Context, conf *oauth2.Config, store *TokenStore, account, code string) error {
	t, err := conf.Exchange(ctx, strings.TrimSpace(code))
	if err != nil {
		return fmt.Errorf("failed to exchange auth code: %w", err)
	}
	return store.Save(account, t)
}

// HTTPClient returns an HTTP client authorized with the stored token for
// account. The client is configured to use HTTP/1.1 to avoid HTTP/2 protocol
// errors seen with the Google APIs.
func HTTPClient(ctx context.Context, conf *oauth2.Config, store *TokenStore, account string) (*http.Client, error) {
	token, err := store.Load(account)
	if err != nil {
		return nil, err
	}

	client := oauth2.NewClient(ctx, conf.TokenSource(ctx, token))
	if transport, ok := client.Transport.(*oauth2.Transport); ok {
		transport.Base = &http.Transport{ForceAttemptHTTP2: false}
	}
	return client, nil
}

func userCacheDir() string {
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir(), "Library", "Caches")
	case "windows":
		for _, ev := range []string{"TEMP", "TMP"} {
			if v := os.Getenv(ev); v != "" {
				return v
			}
		}
		return os.TempDir()
	}
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return xdg
	}
	return filepath.Join(homeDir(), ".cache")
}

func homeDir() string {
	if runtime.GOOS == "windows" {
		return os.Getenv("HOMEDRIVE") + os.Getenv("HOMEPATH")
	}
	return os.Getenv("HOME")
}
