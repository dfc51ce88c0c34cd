package google

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

// fakeTokenServer emulates Google's token endpoint. The authorization code
// "good-code" is accepted; any refresh succeeds with access token "refreshed".
type fakeTokenServer struct {
	*httptest.Server
	exchanges atomic.Int32
	refreshes atomic.Int32
}

func newFakeTokenServer(t *testing.T) *fakeTokenServer {
	t.Helper()
	f := &fakeTokenServer{}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/token" {
			http.NotFound(w, r)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		switch r.PostForm.Get("grant_type") {
		case "authorization_code":
			f.exchanges.Add(1)
			if r.PostForm.Get("code") != "good-code" {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
				return
			}
			_, _ = w.Write([]byte(`{"access_token":"issued","token_type":"Bearer","refresh_token":"refresh-1","expires_in":3600}`))
		case "refresh_token":
			f.refreshes.Add(1)
			_, _ = w.Write([]byte(`{"access_token":"refreshed","token_type":"Bearer","expires_in":3600}`))
		default:
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"unsupported_grant_type"}`))
		}
	}))
	t.Cleanup(f.Close)
	return f
}

func writeClientSecret(t *testing.T, dir, baseURL string) string {
	t.Helper()
	path := filepath.Join(dir, "client_secret.json")
	content := fmt.Sprintf(`{"installed":{
  "client_id": "client-id.apps.googleusercontent.com",
  "client_secret": "client-secret",
  "auth_uri": "%s/auth",
  "token_uri": "%s/token",
  "redirect_uris": ["urn:ietf:wg:oauth:2.0:oob", "http://localhost"]
}}`, baseURL, baseURL)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func writeToken(t *testing.T, path string, tok *oauth2.Token) {
	t.Helper()
	data, err := json.Marshal(tok)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0600))
}

func readToken(t *testing.T, path string) *oauth2.Token {
	t.Helper()
	tok, err := NewFileTokenStore(path).Load()
	require.NoError(t, err)
	return tok
}

func testConfig(t *testing.T, srv *fakeTokenServer) Config {
	t.Helper()
	dir := t.TempDir()
	return Config{
		ClientSecretFile:       writeClientSecret(t, dir, srv.URL),
		TokenFile:              filepath.Join(dir, "google_oauth_token.json"),
		Scopes:                 ReportScopes,
		AllowInsecureTransport: true,
		Prompt:                 strings.NewReader(""),
		Out:                    &bytes.Buffer{},
	}
}

func TestLoadOAuthConfig(t *testing.T) {
	srv := newFakeTokenServer(t)
	cfg := testConfig(t, srv)

	conf, err := LoadOAuthConfig(cfg)
	require.NoError(t, err)

	assert.Equal(t, "client-id.apps.googleusercontent.com", conf.ClientID)
	assert.Equal(t, OOBRedirectURL, conf.RedirectURL)
	assert.Equal(t, srv.URL+"/token", conf.Endpoint.TokenURL)
	assert.Equal(t, ReportScopes, conf.Scopes)
}

func TestLoadOAuthConfig_RedirectOverride(t *testing.T) {
	cfg := testConfig(t, newFakeTokenServer(t))
	cfg.RedirectURL = "http://localhost:8085"

	conf, err := LoadOAuthConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8085", conf.RedirectURL)
}

func TestLoadOAuthConfig_RejectsInsecureEndpoint(t *testing.T) {
	cfg := testConfig(t, newFakeTokenServer(t))
	cfg.AllowInsecureTransport = false

	_, err := LoadOAuthConfig(cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsecureEndpoint)
}

func TestLoadOAuthConfig_HTTPSAllowed(t *testing.T) {
	cfg := testConfig(t, newFakeTokenServer(t))
	cfg.AllowInsecureTransport = false
	cfg.ClientSecretFile = writeClientSecret(t, t.TempDir(), "https://oauth2.example.com")

	_, err := LoadOAuthConfig(cfg)
	require.NoError(t, err)
}

func TestLoadOAuthConfig_ClientSecretErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "missing file"},
		{name: "malformed json", content: `{"installed": `},
		{name: "unknown format", content: `{"service_account": {}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "client_secret.json")
			if tt.content != "" {
				require.NoError(t, os.WriteFile(path, []byte(tt.content), 0600))
			}

			_, err := LoadOAuthConfig(Config{ClientSecretFile: path})
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrClientSecret)
		})
	}
}

func TestNewSession_CachedToken(t *testing.T) {
	srv := newFakeTokenServer(t)
	cfg := testConfig(t, srv)
	out := &bytes.Buffer{}
	cfg.Out = out

	writeToken(t, cfg.TokenFile, &oauth2.Token{
		AccessToken:  "cached",
		TokenType:    "Bearer",
		RefreshToken: "refresh-old",
		Expiry:       time.Now().Add(time.Hour),
	})

	session, err := NewSession(context.Background(), cfg)
	require.NoError(t, err)

	tok, err := session.TokenSource().Token()
	require.NoError(t, err)
	assert.Equal(t, "cached", tok.AccessToken)

	assert.Empty(t, out.String(), "a cached token must not prompt")
	assert.Zero(t, srv.exchanges.Load())
	assert.Zero(t, srv.refreshes.Load())
}

func TestNewSession_Interactive(t *testing.T) {
	srv := newFakeTokenServer(t)
	cfg := testConfig(t, srv)
	out := &bytes.Buffer{}
	cfg.Out = out
	cfg.Prompt = strings.NewReader("good-code\n")

	session, err := NewSession(context.Background(), cfg)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Please go to "+srv.URL+"/auth?")
	assert.Contains(t, out.String(), "access_type=offline")
	assert.Contains(t, out.String(), "Enter the code you receive")
	assert.Equal(t, int32(1), srv.exchanges.Load())

	info, err := os.Stat(cfg.TokenFile)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	saved := readToken(t, cfg.TokenFile)
	assert.Equal(t, "issued", saved.AccessToken)
	assert.Equal(t, "refresh-1", saved.RefreshToken)

	tok, err := session.TokenSource().Token()
	require.NoError(t, err)
	assert.Equal(t, "issued", tok.AccessToken)
}

func TestNewSession_InvalidCode(t *testing.T) {
	srv := newFakeTokenServer(t)
	cfg := testConfig(t, srv)
	cfg.Prompt = strings.NewReader("bad-code\n")

	_, err := NewSession(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exchange")

	_, statErr := os.Stat(cfg.TokenFile)
	assert.True(t, os.IsNotExist(statErr), "no token file may be written on a failed exchange")
}

func TestNewSession_EmptyCode(t *testing.T) {
	srv := newFakeTokenServer(t)
	cfg := testConfig(t, srv)
	cfg.Prompt = strings.NewReader("\n")

	_, err := NewSession(context.Background(), cfg)
	require.Error(t, err)
	assert.Zero(t, srv.exchanges.Load())
}

func TestNewSession_RefreshesAndPersists(t *testing.T) {
	srv := newFakeTokenServer(t)
	cfg := testConfig(t, srv)

	writeToken(t, cfg.TokenFile, &oauth2.Token{
		AccessToken:  "stale",
		TokenType:    "Bearer",
		RefreshToken: "refresh-old",
		Expiry:       time.Now().Add(-time.Hour),
	})

	session, err := NewSession(context.Background(), cfg)
	require.NoError(t, err)

	tok, err := session.TokenSource().Token()
	require.NoError(t, err)
	assert.Equal(t, "refreshed", tok.AccessToken)
	assert.Equal(t, int32(1), srv.refreshes.Load())

	saved := readToken(t, cfg.TokenFile)
	assert.Equal(t, "refreshed", saved.AccessToken)
	assert.Equal(t, "refresh-old", saved.RefreshToken, "refresh token must survive a refresh that omits it")

	// A second call reuses the fresh token without refreshing or rewriting.
	_, err = session.TokenSource().Token()
	require.NoError(t, err)
	assert.Equal(t, int32(1), srv.refreshes.Load())
}

// expiredSessionWithUnwritableToken opens a session on an expired token and
// then replaces the token file with a directory so the refreshed token
// cannot be written.
func expiredSessionWithUnwritableToken(t *testing.T, cfg Config) *Session {
	t.Helper()
	writeToken(t, cfg.TokenFile, &oauth2.Token{
		AccessToken:  "stale",
		TokenType:    "Bearer",
		RefreshToken: "refresh-old",
		Expiry:       time.Now().Add(-time.Hour),
	})

	session, err := NewSession(context.Background(), cfg)
	require.NoError(t, err)

	require.NoError(t, os.Remove(cfg.TokenFile))
	require.NoError(t, os.Mkdir(cfg.TokenFile, 0700))
	return session
}

func TestNewSession_UnwritableTokenFile(t *testing.T) {
	srv := newFakeTokenServer(t)
	cfg := testConfig(t, srv)
	cfg.DisableInteractive = true

	session := expiredSessionWithUnwritableToken(t, cfg)

	_, err := session.TokenSource().Token()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to persist refreshed token")
	assert.Equal(t, int32(1), srv.refreshes.Load())
}

func TestNewSession_TolerateTokenSaveErrors(t *testing.T) {
	var gotAuth string
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer api.Close()

	srv := newFakeTokenServer(t)
	cfg := testConfig(t, srv)
	cfg.DisableInteractive = true
	cfg.TolerateTokenSaveErrors = true

	session := expiredSessionWithUnwritableToken(t, cfg)

	resp, err := session.HTTPClient().Get(api.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "Bearer refreshed", gotAuth)
	assert.Equal(t, int32(1), srv.refreshes.Load())
}

func TestNewSession_MalformedTokenFile(t *testing.T) {
	srv := newFakeTokenServer(t)
	cfg := testConfig(t, srv)
	out := &bytes.Buffer{}
	cfg.Out = out
	require.NoError(t, os.WriteFile(cfg.TokenFile, []byte("not json"), 0600))

	_, err := NewSession(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed token file")
	assert.Empty(t, out.String(), "a malformed token must not trigger re-authorization")
}

func TestNewSession_DisableInteractive(t *testing.T) {
	cfg := testConfig(t, newFakeTokenServer(t))
	cfg.DisableInteractive = true

	_, err := NewSession(context.Background(), cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestNewSession_ForceAuthorization(t *testing.T) {
	srv := newFakeTokenServer(t)
	cfg := testConfig(t, srv)
	cfg.ForceAuthorization = true
	cfg.Prompt = strings.NewReader("good-code\n")

	writeToken(t, cfg.TokenFile, &oauth2.Token{
		AccessToken: "cached",
		Expiry:      time.Now().Add(time.Hour),
	})

	_, err := NewSession(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, int32(1), srv.exchanges.Load())
	assert.Equal(t, "issued", readToken(t, cfg.TokenFile).AccessToken)
}

func TestSession_HTTPClient(t *testing.T) {
	var gotAuth string
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer api.Close()

	cfg := testConfig(t, newFakeTokenServer(t))
	writeToken(t, cfg.TokenFile, &oauth2.Token{
		AccessToken: "cached",
		TokenType:   "Bearer",
		Expiry:      time.Now().Add(time.Hour),
	})

	session, err := NewSession(context.Background(), cfg)
	require.NoError(t, err)

	resp, err := session.HTTPClient().Get(api.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "Bearer cached", gotAuth)
}
