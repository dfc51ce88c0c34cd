package google

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"golang.org/x/oauth2"
)

// FileTokenStore reads and writes an OAuth token as JSON on disk.
type FileTokenStore struct {
	Path string
}

// NewFileTokenStore returns a store backed by path.
func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{Path: path}
}

// storedToken accepts both the oauth2.Token layout and tokens written by
// older tooling, which carried an absolute expires_at in epoch seconds.
type storedToken struct {
	oauth2.Token
	ExpiresAt float64 `json:"expires_at,omitempty"`
}

// Exists reports whether the token file is present.
func (s *FileTokenStore) Exists() bool {
	_, err := os.Stat(s.Path)
	return err == nil
}

// Load reads the token file. A missing file returns an error wrapping
// fs.ErrNotExist; a malformed one is reported as such.
func (s *FileTokenStore) Load() (*oauth2.Token, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read token file %s: %w", s.Path, err)
	}

	var st storedToken
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("malformed token file %s: %w", s.Path, err)
	}

	tok := st.Token
	if tok.AccessToken == "" && tok.RefreshToken == "" {
		return nil, fmt.Errorf("malformed token file %s: no access or refresh token", s.Path)
	}
	if tok.Expiry.IsZero() && st.ExpiresAt > 0 {
		sec := int64(st.ExpiresAt)
		nsec := int64((st.ExpiresAt - float64(sec)) * float64(time.Second))
		tok.Expiry = time.Unix(sec, nsec).UTC()
	}
	if tok.TokenType == "" {
		tok.TokenType = "Bearer"
	}

	return &tok, nil
}

// SaveToken writes tok to the token file with owner-only permissions,
// replacing any previous content.
func (s *FileTokenStore) SaveToken(tok *oauth2.Token) error {
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}

	if err := os.WriteFile(s.Path, data, 0600); err != nil {
		return fmt.Errorf("failed to write token file %s: %w", s.Path, err)
	}
	// WriteFile keeps the mode of an existing file.
	if err := os.Chmod(s.Path, 0600); err != nil {
		return fmt.Errorf("failed to set permissions on token file %s: %w", s.Path, err)
	}

	return nil
}
