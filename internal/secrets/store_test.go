package secrets

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvStore(t *testing.T) {
	t.Setenv("IR_TEST_TODOIST_API_KEY", "  secret  ")

	s := EnvStore{Prefix: "IR_TEST_"}
	v, err := s.Get("TODOIST_API_KEY")
	require.NoError(t, err)
	assert.Equal(t, "secret", v)

	_, err = s.Get("OPENAI_API_KEY")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestFileStore(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "OPENAI_API_KEY"), []byte("sk-123\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "TODOIST_API_KEY.token"), []byte("td-456"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "EMPTY"), []byte("  \n"), 0o600))

	s := NewFileStore(dir)

	tests := []struct {
		name    string
		key     string
		want    string
		wantErr error
	}{
		{"plain file", "OPENAI_API_KEY", "sk-123", nil},
		{"token suffix", "TODOIST_API_KEY", "td-456", nil},
		{"empty file", "EMPTY", "", ErrNotFound},
		{"missing", "NOPE", "", ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := s.Get(tt.key)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, v)
		})
	}
}

func TestFileStore_InvalidName(t *testing.T) {
	s := NewFileStore(t.TempDir())
	for _, name := range []string{"", "../etc/passwd", "a/b", ".."} {
		_, err := s.Get(name)
		assert.Error(t, err, name)
		assert.False(t, errors.Is(err, ErrNotFound), name)
	}
}

func TestNewFileStore_DefaultDir(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	s := NewFileStore("")
	assert.Equal(t, filepath.Join("/home/tester", "keys"), s.Dir)
}

func TestChain(t *testing.T) {
	c := Chain{
		Map{"A": "from-first"},
		Map{"A": "shadowed", "B": "from-second"},
	}

	v, err := c.Get("A")
	require.NoError(t, err)
	assert.Equal(t, "from-first", v)

	v, err = c.Get("B")
	require.NoError(t, err)
	assert.Equal(t, "from-second", v)

	_, err = c.Get("C")
	assert.True(t, errors.Is(err, ErrNotFound))
}

type brokenStore struct{}

func (brokenStore) Get(string) (string, error) { return "", errors.New("permission denied") }

func TestChain_StopsOnHardError(t *testing.T) {
	c := Chain{brokenStore{}, Map{"A": "never reached"}}
	_, err := c.Get("A")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
}
