package server

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/teemow/roomutil/internal/instrumentation"
	"github.com/teemow/roomutil/internal/logging"
	"github.com/teemow/roomutil/internal/report"
)

// ErrShutdown is returned for work requested after Shutdown.
var ErrShutdown = errors.New("server is shutting down")

// ReportRunner produces a utilization report for [start, end]. When publish
// is false the report is returned without being posted.
type ReportRunner func(ctx context.Context, start, end time.Time, publish bool) (*report.Result, error)

// ServerContext holds the context for the MCP server
type ServerContext struct {
	ctx      context.Context
	cancel   context.CancelFunc
	runner   ReportRunner
	metrics  *instrumentation.Metrics
	logger   *slog.Logger
	mu       sync.RWMutex
	shutdown bool

	now func() time.Time

	lastRun      time.Time
	lastRunErr   error
	lastResult   *report.Result
	lastResultAt time.Time
}

// NewServerContext creates a new server context. metrics and logger may be nil.
func NewServerContext(ctx context.Context, runner ReportRunner, metrics *instrumentation.Metrics, logger *slog.Logger) *ServerContext {
	shutdownCtx, cancel := context.WithCancel(ctx)

	return &ServerContext{
		ctx:     shutdownCtx,
		cancel:  cancel,
		runner:  runner,
		metrics: metrics,
		logger:  logging.OrDefault(logger),
		now:     time.Now,
	}
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Metrics returns the metrics recorder (possibly nil).
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	return sc.metrics
}

// Logger returns the server logger.
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.logger
}

// RunReport runs the report. The run is canceled when either ctx or the
// server context is done.
func (sc *ServerContext) RunReport(ctx context.Context, start, end time.Time, publish bool) (*report.Result, error) {
	if sc.IsShutdown() {
		return nil, ErrShutdown
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(sc.ctx, cancel)
	defer stop()

	result, err := sc.runner(ctx, start, end, publish)

	sc.mu.Lock()
	sc.lastRun = sc.now()
	sc.lastRunErr = err
	if err == nil {
		sc.lastResult = result
		sc.lastResultAt = sc.lastRun
	}
	sc.mu.Unlock()

	return result, err
}

// LastRun returns when the last report finished and its error, if any.
// The time is zero if no report has run yet.
func (sc *ServerContext) LastRun() (time.Time, error) {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.lastRun, sc.lastRunErr
}

// LastResult returns the most recent successful report and when it
// finished. The result is nil if no report has succeeded yet.
func (sc *ServerContext) LastResult() (*report.Result, time.Time) {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.lastResult, sc.lastResultAt
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
