package google

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestFileTokenStore_RoundTrip(t *testing.T) {
	store := NewFileTokenStore(filepath.Join(t.TempDir(), "token.json"))
	assert.False(t, store.Exists())

	expiry := time.Date(2021, 1, 31, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.SaveToken(&oauth2.Token{
		AccessToken:  "access",
		TokenType:    "Bearer",
		RefreshToken: "refresh",
		Expiry:       expiry,
	}))
	assert.True(t, store.Exists())

	tok, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "access", tok.AccessToken)
	assert.Equal(t, "refresh", tok.RefreshToken)
	assert.True(t, expiry.Equal(tok.Expiry))
}

func TestFileTokenStore_LegacyExpiresAt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
  "access_token": "ya29.legacy",
  "token_type": "Bearer",
  "refresh_token": "1//refresh",
  "expires_in": 3599,
  "expires_at": 1612094400.5,
  "scope": ["https://www.googleapis.com/auth/calendar.readonly"]
}`), 0600))

	tok, err := NewFileTokenStore(path).Load()
	require.NoError(t, err)
	assert.Equal(t, "ya29.legacy", tok.AccessToken)
	assert.Equal(t, int64(1612094400), tok.Expiry.Unix())
}

func TestFileTokenStore_DefaultsTokenType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"refresh_token": "r"}`), 0600))

	tok, err := NewFileTokenStore(path).Load()
	require.NoError(t, err)
	assert.Equal(t, "Bearer", tok.TokenType)
}

func TestFileTokenStore_LoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := NewFileTokenStore(filepath.Join(dir, "missing.json")).Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte(`{}`), 0600))
	_, err = NewFileTokenStore(empty).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed")
}

func TestFileTokenStore_TightensPermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0644))

	require.NoError(t, NewFileTokenStore(path).SaveToken(&oauth2.Token{AccessToken: "a"}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}
