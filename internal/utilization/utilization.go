package utilization

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/teemow/roomutil/internal/calendar"
	"github.com/teemow/roomutil/internal/config"
	"github.com/teemow/roomutil/internal/instrumentation"
	"github.com/teemow/roomutil/internal/logging"
)

// ErrNoCapacity is returned for a room whose meetings give it no seats to fill.
var ErrNoCapacity = errors.New("room has no capacity")

// EventLister lists the events on a room calendar.
type EventLister interface {
	ListRoomEvents(ctx context.Context, calendarID string, timeMin, timeMax time.Time) ([]calendar.EventSummary, error)
}

// RoomMetrics holds the attendance figures for one room.
type RoomMetrics struct {
	Room        string
	Seats       int
	Meetings    int
	Attendees   int
	MaxCapacity int
	Utilization float64
}

// CountAttendees returns the number of people counted for an event. An event
// without an attendee list counts its organizer only; otherwise every
// attendee who has not declined counts.
func CountAttendees(event calendar.EventSummary) int {
	if !event.HasAttendeeList {
		return 1
	}

	n := 0
	for _, a := range event.Attendees {
		if a.ResponseStatus != calendar.ResponseDeclined {
			n++
		}
	}
	return n
}

// Compute derives the metrics for room from its events. It returns false if
// there are no events.
func Compute(room config.Room, events []calendar.EventSummary) (RoomMetrics, bool, error) {
	if len(events) == 0 {
		return RoomMetrics{}, false, nil
	}

	m := RoomMetrics{
		Room:     room.Name,
		Seats:    room.Seats,
		Meetings: len(events),
	}
	for _, e := range events {
		m.Attendees += CountAttendees(e)
	}

	m.MaxCapacity = m.Meetings * m.Seats
	if m.MaxCapacity <= 0 {
		return RoomMetrics{}, false, fmt.Errorf("%w: %s has %d seats", ErrNoCapacity, room.Name, room.Seats)
	}
	m.Utilization = 100 * float64(m.Attendees) / float64(m.MaxCapacity)

	return m, true, nil
}

// Aggregator computes utilization for a list of rooms.
type Aggregator struct {
	Events  EventLister
	Metrics *instrumentation.Metrics
	Logger  *slog.Logger
}

// Aggregate queries each room's events between start and end, in order, and
// returns metrics for the rooms that had events. Rooms without events are
// skipped. The first calendar error aborts the run.
func (a *Aggregator) Aggregate(ctx context.Context, rooms []config.Room, start, end time.Time) ([]RoomMetrics, error) {
	logger := logging.OrDefault(a.Logger)

	results := make([]RoomMetrics, 0, len(rooms))
	for _, room := range rooms {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		roomLogger := logger.With(logging.Room(room.Name))
		roomLogger.Info("grabbing data for room", "url", room.URL)

		events, err := a.Events.ListRoomEvents(ctx, room.URL, start, end)
		if err != nil {
			return nil, fmt.Errorf("room %s: %w", room.Name, err)
		}

		m, ok, err := Compute(room, events)
		if err != nil {
			return nil, err
		}
		if !ok {
			roomLogger.Info("no events found for room", logging.Status(logging.StatusSkipped))
			a.Metrics.RecordRoomProcessed(ctx, instrumentation.RoomResultSkipped)
			continue
		}

		roomLogger.Debug("computed utilization",
			"meetings", m.Meetings,
			"attendees", m.Attendees,
			"max_capacity", m.MaxCapacity,
			"utilization", m.Utilization,
		)
		a.Metrics.RecordRoomProcessed(ctx, instrumentation.RoomResultReported)
		a.Metrics.RecordRoomUtilization(ctx, m.Room, m.Utilization)

		results = append(results, m)
	}

	return results, nil
}
