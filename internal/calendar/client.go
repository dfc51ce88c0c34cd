package calendar

import (
	"context"
	"fmt"
	"time"

	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/teemow/roomutil/internal/instrumentation"
)

// Client wraps the Google Calendar service
type Client struct {
	svc     *calendar.Service
	metrics *instrumentation.Metrics
}

// NewClient creates a Calendar client. Authentication is supplied through
// opts, typically option.WithHTTPClient with an OAuth-signed client.
func NewClient(ctx context.Context, metrics *instrumentation.Metrics, opts ...option.ClientOption) (*Client, error) {
	svc, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}

	return &Client{
		svc:     svc,
		metrics: metrics,
	}, nil
}

// ListRoomEvents lists all events on a calendar between timeMin and timeMax,
// with recurring events expanded into single instances ordered by start
// time. All result pages are fetched.
func (c *Client) ListRoomEvents(ctx context.Context, calendarID string, timeMin, timeMax time.Time) ([]EventSummary, error) {
	ctx, span := instrumentation.StartAPISpan(ctx, instrumentation.ServiceCalendar, instrumentation.OperationList,
		instrumentation.NewSpanAttributeBuilder().WithRoom("", calendarID).Build()...)
	defer span.End()

	start := time.Now()

	call := c.svc.Events.List(calendarID).
		TimeMin(timeMin.Format(time.RFC3339)).
		TimeMax(timeMax.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime")

	var summaries []EventSummary
	err := call.Pages(ctx, func(page *calendar.Events) error {
		for _, event := range page.Items {
			if event == nil {
				continue
			}
			summaries = append(summaries, toEventSummary(event))
		}
		return nil
	})
	if err != nil {
		c.metrics.RecordAPIOperation(ctx, instrumentation.ServiceCalendar, instrumentation.OperationList, instrumentation.StatusError, time.Since(start))
		instrumentation.SetSpanError(span, err)
		return nil, fmt.Errorf("failed to list events for calendar %s: %w", calendarID, err)
	}

	c.metrics.RecordAPIOperation(ctx, instrumentation.ServiceCalendar, instrumentation.OperationList, instrumentation.StatusSuccess, time.Since(start))
	instrumentation.SetSpanSuccess(span)

	return summaries, nil
}
