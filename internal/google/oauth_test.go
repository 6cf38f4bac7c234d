package google

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/oauth2"
)

func TestValidateAccountName(t *testing.T) {
	tests := []struct {
		name    string
		account string
		wantErr bool
	}{
		{"valid default", "default", false},
		{"valid with hyphen", "work-email", false},
		{"valid with underscore", "personal_email", false},
		{"empty", "", true},
		{"with spaces", "my account", true},
		{"with slash", "work/personal", true},
		{"with dot", "work.email", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateAccountName(tt.account)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateAccountName() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTokenStore_RoundTrip(t *testing.T) {
	store := NewTokenStore(filepath.Join(t.TempDir(), "tokens"))

	if store.Has("default") {
		t.Fatal("Has() should be false before saving")
	}

	err := store.Save("default", &oauth2.Token{AccessToken: "access", RefreshToken: "refresh"})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if !store.Has("default") {
		t.Fatal("Has() should be true after saving")
	}
	if filepath.Base(store.Path("default")) != "google-default.token" {
		t.Errorf("unexpected token file name %s", store.Path("default"))
	}

	info, err := os.Stat(store.Path("default"))
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("token file mode = %v, want 0600", info.Mode().Perm())
	}

	token, err := store.Load("default")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if token.AccessToken != "access" || token.RefreshToken != "refresh" {
		t.Errorf("Load() = %+v", token)
	}
	if token.Valid() {
		t.Error("loaded token should be expired so it gets refreshed")
	}
}

func TestTokenStore_Errors(t *testing.T) {
	store := NewTokenStore(t.TempDir())

	if _, err := store.Load("missing"); !errors.Is(err, ErrNoToken) {
		t.Errorf("Load() error = %v, want ErrNoToken", err)
	}
	if store.Has("../etc") {
		t.Error("Has() should reject invalid account names")
	}
	if err := store.Save("default", &oauth2.Token{AccessToken: "a"}); err == nil {
		t.Error("Save() should reject a token without refresh token")
	}

	if err := os.WriteFile(store.Path("broken"), []byte("only-one-field"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Load("broken"); err == nil {
		t.Error("Load() should reject a malformed token file")
	}
}

func TestNewTokenStore_DefaultDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")
	t.Setenv("HOME", "/tmp/home")

	store := NewTokenStore("")
	if store.Dir == "" {
		t.Fatal("expected a default directory")
	}
}

func TestHTTPClient_NoToken(t *testing.T) {
	store := NewTokenStore(t.TempDir())
	conf := NewOAuthConfig("id", "secret")

	if _, err := HTTPClient(context.Background(), conf, store, "default"); !errors.Is(err, ErrNoToken) {
		t.Errorf("HTTPClient() error = %v, want ErrNoToken", err)
	}
}

func TestNewOAuthConfig(t *testing.T) {
	conf := NewOAuthConfig("id", "secret")
	if len(conf.Scopes) != 1 || conf.Scopes[0] != "https://www.googleapis.com/auth/tasks" {
		t.Errorf("unexpected scopes %v", conf.Scopes)
	}
	if conf.AuthCodeURL("state") == "" {
		t.Error("expected an auth URL")
	}
}
