package google

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/oauth2"

	"github.com/teemow/roomutil/internal/instrumentation"
	"github.com/teemow/roomutil/internal/logging"
)

// TokenSaver persists a token.
type TokenSaver interface {
	SaveToken(tok *oauth2.Token) error
}

// PersistingTokenSource hands out tokens from an underlying source and saves
// each new access token through a TokenSaver before returning it.
type PersistingTokenSource struct {
	mu      sync.Mutex
	src     oauth2.TokenSource
	saver   TokenSaver
	last    string
	metrics *instrumentation.Metrics

	tolerateSaveErrors bool
	logger             *slog.Logger
}

// NewPersistingTokenSource wraps src. current is the token src was seeded
// with; it is not saved again.
func NewPersistingTokenSource(src oauth2.TokenSource, current *oauth2.Token, saver TokenSaver, metrics *instrumentation.Metrics) *PersistingTokenSource {
	p := &PersistingTokenSource{
		src:     src,
		saver:   saver,
		metrics: metrics,
	}
	if current != nil {
		p.last = current.AccessToken
	}
	return p
}

// TolerateSaveErrors makes a failed save a logged warning instead of an
// error. The refreshed token is still returned and reused for the lifetime
// of the source.
func (p *PersistingTokenSource) TolerateSaveErrors(logger *slog.Logger) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tolerateSaveErrors = true
	p.logger = logging.OrDefault(logger)
}

// Token returns a valid token, saving it first if it was refreshed.
func (p *PersistingTokenSource) Token() (*oauth2.Token, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	tok, err := p.src.Token()
	if err != nil {
		p.metrics.RecordOAuthTokenRefresh(context.Background(), instrumentation.OAuthResultFailure)
		return nil, fmt.Errorf("failed to refresh OAuth token: %w", err)
	}

	if tok.AccessToken == p.last {
		return tok, nil
	}

	if err := p.saver.SaveToken(tok); err != nil {
		if !p.tolerateSaveErrors {
			return nil, fmt.Errorf("failed to persist refreshed token: %w", err)
		}
		p.logger.Warn("refreshed token was not saved", logging.Err(err))
	}
	p.last = tok.AccessToken
	p.metrics.RecordOAuthTokenRefresh(context.Background(), instrumentation.OAuthResultSuccess)

	return tok, nil
}
