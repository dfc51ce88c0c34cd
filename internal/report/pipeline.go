package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/teemow/roomutil/internal/config"
	"github.com/teemow/roomutil/internal/daterange"
	"github.com/teemow/roomutil/internal/instrumentation"
	"github.com/teemow/roomutil/internal/logging"
	"github.com/teemow/roomutil/internal/utilization"
)

// ErrInvalidRange is returned when the reporting window ends before it starts.
var ErrInvalidRange = daterange.ErrInvalidRange

// Aggregator computes per-room metrics over a window.
type Aggregator interface {
	Aggregate(ctx context.Context, rooms []config.Room, start, end time.Time) ([]utilization.RoomMetrics, error)
}

// Pipeline produces one utilization report and optionally publishes it.
type Pipeline struct {
	Rooms      []config.Room
	Aggregator Aggregator

	// Publisher receives the finished report. Nil produces the report
	// without posting it.
	Publisher Publisher

	// Now stamps the task title (default: time.Now).
	Now func() time.Time

	Metrics *instrumentation.Metrics
	Logger  *slog.Logger
}

// Result is the outcome of a pipeline run.
type Result struct {
	Metrics []utilization.RoomMetrics
	Report  string
	Title   string

	// Task is nil when nothing was published.
	Task *Published
}

// Run aggregates the rooms over [start, end], formats the report and
// publishes it.
func (p *Pipeline) Run(ctx context.Context, start, end time.Time) (*Result, error) {
	if err := daterange.Validate(start, end); err != nil {
		return nil, err
	}

	attrs := instrumentation.NewSpanAttributeBuilder().
		WithRange(start.Format(time.RFC3339), end.Format(time.RFC3339))
	if p.Publisher != nil {
		attrs = attrs.WithPublisher(p.Publisher.Name())
	}
	ctx, span := instrumentation.StartSpan(ctx, "report.run", attrs.Build()...)
	defer span.End()

	logger := logging.WithOperation(logging.OrDefault(p.Logger), "report")
	logger.Info("generating room utilization report",
		"rooms", len(p.Rooms),
		"start", start.Format(time.RFC3339),
		"end", end.Format(time.RFC3339),
	)

	metrics, err := p.Aggregator.Aggregate(ctx, p.Rooms, start, end)
	if err != nil {
		instrumentation.SetSpanError(span, err)
		return nil, fmt.Errorf("failed to aggregate room utilization: %w", err)
	}

	now := time.Now
	if p.Now != nil {
		now = p.Now
	}

	result := &Result{
		Metrics: metrics,
		Report:  Format(metrics, start, end),
		Title:   Title(now()),
	}

	if p.Publisher == nil {
		logger.Info("dry run, report not published", "reported_rooms", len(metrics))
		instrumentation.SetSpanSuccess(span)
		return result, nil
	}

	name := p.Publisher.Name()
	task, err := p.Publisher.Publish(ctx, result.Title, result.Report)
	if err != nil {
		p.Metrics.RecordReportPublish(ctx, name, instrumentation.StatusError)
		instrumentation.SetSpanError(span, err)
		return nil, fmt.Errorf("failed to publish report to %s: %w", name, err)
	}
	p.Metrics.RecordReportPublish(ctx, name, instrumentation.StatusSuccess)

	result.Task = task
	logger.Info("utilization task created", logging.Publisher(name), "task", task.ID, "url", task.URL)
	instrumentation.SetSpanSuccess(span)

	return result, nil
}
