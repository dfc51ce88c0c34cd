package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/api/option"

	"github.com/teemow/roomutil/internal/asana"
	"github.com/teemow/roomutil/internal/calendar"
	"github.com/teemow/roomutil/internal/config"
	"github.com/teemow/roomutil/internal/google"
	"github.com/teemow/roomutil/internal/instrumentation"
	"github.com/teemow/roomutil/internal/logging"
	"github.com/teemow/roomutil/internal/report"
	"github.com/teemow/roomutil/internal/tasks"
	"github.com/teemow/roomutil/internal/utilization"
)

// reportOptions selects where a report goes and how the Google session is set up.
type reportOptions struct {
	publisher          string
	taskList           string
	allowInsecureOAuth bool
	interactive        bool

	tolerateTokenSaveErrors bool
}

func (o reportOptions) validate() error {
	switch o.publisher {
	case asana.PublisherName, tasks.PublisherName:
		return nil
	default:
		return fmt.Errorf("unknown publisher %q: must be %s or %s", o.publisher, asana.PublisherName, tasks.PublisherName)
	}
}

// scopes returns the OAuth scopes the chosen publisher needs.
func (o reportOptions) scopes() []string {
	if o.publisher == tasks.PublisherName {
		return google.TasksPublishScopes
	}
	return google.ReportScopes
}

// newProvider creates the instrumentation provider from the environment.
func newProvider(ctx context.Context) (*instrumentation.Provider, error) {
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(ctx, instrConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	return provider, nil
}

// finishProvider pushes collected metrics, if a Pushgateway is configured,
// and flushes the provider. Failures are logged, never returned: the report
// has already been produced.
func finishProvider(provider *instrumentation.Provider, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := provider.Push(ctx); err != nil {
		logger.Warn("failed to push metrics", logging.Err(err))
	}
	if err := provider.Shutdown(ctx); err != nil {
		logger.Warn("error during instrumentation shutdown", logging.Err(err))
	}
}

// newSession opens the Google OAuth session for the configured files.
func newSession(ctx context.Context, opts reportOptions, force bool, metrics *instrumentation.Metrics, logger *slog.Logger) (*google.Session, error) {
	return google.NewSession(ctx, google.Config{
		ClientSecretFile:        global.paths.ClientSecret,
		TokenFile:               global.paths.Token,
		Scopes:                  opts.scopes(),
		AllowInsecureTransport:  opts.allowInsecureOAuth,
		DisableInteractive:      !opts.interactive,
		TolerateTokenSaveErrors: opts.tolerateTokenSaveErrors,
		ForceAuthorization:      force,
		Metrics:                 metrics,
		Logger:                  logger,
	})
}

// newPublisher builds the publisher selected in opts.
func newPublisher(ctx context.Context, opts reportOptions, session *google.Session, metrics *instrumentation.Metrics) (report.Publisher, error) {
	switch opts.publisher {
	case tasks.PublisherName:
		client, err := tasks.NewClient(ctx, metrics, option.WithHTTPClient(session.HTTPClient()))
		if err != nil {
			return nil, err
		}
		return tasks.NewPublisher(client, opts.taskList), nil
	default:
		asanaConfig, err := config.LoadAsana(global.paths.AsanaConfig)
		if err != nil {
			return nil, err
		}
		return asana.NewPublisher(asanaConfig, asana.WithMetrics(metrics)), nil
	}
}

// newPipeline loads the rooms, authenticates and assembles a report
// pipeline. With publish false the pipeline has no publisher and the
// publisher's configuration is not read.
func newPipeline(ctx context.Context, opts reportOptions, publish bool, metrics *instrumentation.Metrics, logger *slog.Logger) (*report.Pipeline, error) {
	rooms, err := config.LoadRooms(global.paths.Rooms)
	if err != nil {
		return nil, err
	}

	session, err := newSession(ctx, opts, false, metrics, logger)
	if err != nil {
		return nil, err
	}

	calendarClient, err := calendar.NewClient(ctx, metrics, option.WithHTTPClient(session.HTTPClient()))
	if err != nil {
		return nil, err
	}

	pipeline := &report.Pipeline{
		Rooms: rooms,
		Aggregator: &utilization.Aggregator{
			Events:  calendarClient,
			Metrics: metrics,
			Logger:  logger,
		},
		Metrics: metrics,
		Logger:  logger,
	}

	if publish {
		pipeline.Publisher, err = newPublisher(ctx, opts, session, metrics)
		if err != nil {
			return nil, err
		}
	}

	return pipeline, nil
}

// taskLink prefers the task URL and falls back to its ID.
func taskLink(task *report.Published) string {
	if task.URL != "" {
		return task.URL
	}
	return task.ID
}
