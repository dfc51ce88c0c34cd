package google

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/teemow/roomutil/internal/instrumentation"
	"github.com/teemow/roomutil/internal/logging"
)

// OOBRedirectURL is the installed-app out-of-band redirect: Google shows the
// authorization code to the user instead of redirecting.
const OOBRedirectURL = "urn:ietf:wg:oauth:2.0:oob"

var (
	// ErrClientSecret is returned when the client secret file is missing or malformed.
	ErrClientSecret = errors.New("invalid OAuth client secret")

	// ErrInsecureEndpoint is returned when an OAuth endpoint is not https and
	// insecure transport was not allowed.
	ErrInsecureEndpoint = errors.New("insecure OAuth endpoint")

	// ErrNoToken is returned when no token file exists and interactive
	// authorization is disabled.
	ErrNoToken = errors.New("no OAuth token available")
)

// Config configures a Session.
type Config struct {
	// ClientSecretFile is the installed-app client secret JSON downloaded
	// from the Google Cloud console.
	ClientSecretFile string

	// TokenFile caches the OAuth token between runs.
	TokenFile string

	// Scopes requested during interactive authorization.
	Scopes []string

	// RedirectURL overrides the redirect URL (default: OOBRedirectURL).
	RedirectURL string

	// AllowInsecureTransport permits plain http auth and token endpoints.
	// Only for local emulators and tests.
	AllowInsecureTransport bool

	// DisableInteractive makes a missing token file an error instead of
	// starting the authorization flow.
	DisableInteractive bool

	// TolerateTokenSaveErrors keeps the session working when a refreshed
	// token cannot be written back, e.g. on a read-only file system.
	TolerateTokenSaveErrors bool

	// ForceAuthorization runs the authorization flow even if a token file exists.
	ForceAuthorization bool

	// Prompt and Out are used by the interactive flow (default: stdin/stdout).
	Prompt io.Reader
	Out    io.Writer

	Metrics *instrumentation.Metrics
	Logger  *slog.Logger
}

// LoadOAuthConfig parses the client secret file into an oauth2.Config.
func LoadOAuthConfig(cfg Config) (*oauth2.Config, error) {
	data, err := os.ReadFile(cfg.ClientSecretFile)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s: %w", ErrClientSecret, cfg.ClientSecretFile, err)
	}

	conf, err := google.ConfigFromJSON(data, cfg.Scopes...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %w", ErrClientSecret, cfg.ClientSecretFile, err)
	}

	conf.RedirectURL = OOBRedirectURL
	if cfg.RedirectURL != "" {
		conf.RedirectURL = cfg.RedirectURL
	}

	for _, endpoint := range []string{conf.Endpoint.AuthURL, conf.Endpoint.TokenURL} {
		if err := checkEndpoint(endpoint, cfg.AllowInsecureTransport); err != nil {
			return nil, err
		}
	}

	return conf, nil
}

func checkEndpoint(endpoint string, allowInsecure bool) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("%w: invalid endpoint %q: %w", ErrClientSecret, endpoint, err)
	}

	switch u.Scheme {
	case "https":
		return nil
	case "http":
		if allowInsecure {
			return nil
		}
		return fmt.Errorf("%w: %s (allow insecure transport to use it)", ErrInsecureEndpoint, endpoint)
	default:
		return fmt.Errorf("%w: unsupported scheme in %q", ErrClientSecret, endpoint)
	}
}

// Authorize runs the out-of-band authorization flow: it prints the
// authorization URL to out, reads the code the user pastes into in and
// exchanges it for a token.
func Authorize(ctx context.Context, conf *oauth2.Config, in io.Reader, out io.Writer) (*oauth2.Token, error) {
	authURL := conf.AuthCodeURL("roomutil", oauth2.AccessTypeOffline)

	fmt.Fprintf(out, "Please go to %s and authorize access.\n", authURL)
	fmt.Fprint(out, "Enter the code you receive: ")

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read authorization code: %w", err)
	}

	code := strings.TrimSpace(line)
	if code == "" {
		return nil, fmt.Errorf("no authorization code entered")
	}

	tok, err := conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	return tok, nil
}

// Session is an authenticated Google OAuth2 session.
type Session struct {
	source *PersistingTokenSource
}

// NewSession loads the cached token, or authorizes interactively if there is
// none, and returns a session whose tokens refresh and persist automatically.
// ctx is used for token refreshes for the lifetime of the session.
func NewSession(ctx context.Context, cfg Config) (*Session, error) {
	logger := logging.WithService(logging.OrDefault(cfg.Logger), "oauth")

	conf, err := LoadOAuthConfig(cfg)
	if err != nil {
		return nil, err
	}

	store := NewFileTokenStore(cfg.TokenFile)

	var tok *oauth2.Token
	if !cfg.ForceAuthorization && store.Exists() {
		tok, err = store.Load()
		if err != nil {
			return nil, err
		}
		logger.Debug("loaded cached token", "path", cfg.TokenFile,
			"token", logging.SanitizeToken(tok.AccessToken))
	} else {
		if cfg.DisableInteractive {
			return nil, fmt.Errorf("%w: %s does not exist; run the auth command first", ErrNoToken, cfg.TokenFile)
		}

		in, out := cfg.Prompt, cfg.Out
		if in == nil {
			in = os.Stdin
		}
		if out == nil {
			out = os.Stdout
		}

		tok, err = Authorize(ctx, conf, in, out)
		if err != nil {
			cfg.Metrics.RecordOAuthAuth(ctx, instrumentation.OAuthResultFailure)
			return nil, err
		}
		cfg.Metrics.RecordOAuthAuth(ctx, instrumentation.OAuthResultSuccess)

		if err := store.SaveToken(tok); err != nil {
			return nil, err
		}
		logger.Info("authorization complete", "path", cfg.TokenFile)
	}

	source := NewPersistingTokenSource(conf.TokenSource(ctx, tok), tok, store, cfg.Metrics)
	if cfg.TolerateTokenSaveErrors {
		source.TolerateSaveErrors(logger)
	}

	return &Session{source: source}, nil
}

// TokenSource returns the session's persisting token source.
func (s *Session) TokenSource() oauth2.TokenSource {
	return s.source
}

// HTTPClient returns an HTTP client that signs requests with the session's
// token. The client uses HTTP/1.1 to avoid HTTP/2 stream errors seen with
// some Google endpoints.
func (s *Session) HTTPClient() *http.Client {
	base := http.DefaultTransport.(*http.Transport).Clone()
	base.ForceAttemptHTTP2 = false

	return &http.Client{
		Transport: &oauth2.Transport{
			Source: s.source,
			Base:   base,
		},
	}
}
