package secrets

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestKeyringStore(t *testing.T) {
	keyring.MockInit()
	require.NoError(t, keyring.Set("ir-test", "TODOIST_API_KEY", "td-from-keychain"))

	s := NewKeyringStore("ir-test")
	v, err := s.Get("TODOIST_API_KEY")
	require.NoError(t, err)
	assert.Equal(t, "td-from-keychain", v)

	_, err = s.Get("OPENAI_API_KEY")
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = NewKeyringStore("other-service").Get("TODOIST_API_KEY")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestKeyringStore_UnavailableFallsThrough(t *testing.T) {
	keyring.MockInitWithError(errors.New("no secret service"))
	t.Cleanup(keyring.MockInit)

	_, err := NewKeyringStore("").Get("TODOIST_API_KEY")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestNewKeyringStore_DefaultService(t *testing.T) {
	assert.Equal(t, DefaultKeyringService, NewKeyringStore("").Service)
	assert.Equal(t, "custom", NewKeyringStore("custom").Service)
}

func TestDefaultChain_KeyringLast(t *testing.T) {
	keyring.MockInit()
	require.NoError(t, keyring.Set("ir-chain", "OPENAI_API_KEY", "sk-keychain"))
	require.NoError(t, keyring.Set("ir-chain", "TODOIST_API_KEY", "td-keychain"))
	t.Setenv("TODOIST_API_KEY", "td-env")

	chain := NewDefaultChain(t.TempDir(), "ir-chain")

	v, err := chain.Get("TODOIST_API_KEY")
	require.NoError(t, err)
	assert.Equal(t, "td-env", v)

	t.Setenv("OPENAI_API_KEY", "")
	v, err = chain.Get("OPENAI_API_KEY")
	require.NoError(t, err)
	assert.Equal(t, "sk-keychain", v)

	_, err = chain.Get("GOOGLE_CLIENT_ID")
	assert.True(t, errors.Is(err, ErrNotFound))
}
