package calendar

import (
	"time"

	calendar "google.golang.org/api/calendar/v3"
)

// ResponseDeclined is the attendee response status of a declined invitation.
const ResponseDeclined = "declined"

// EventSummary represents a simplified calendar event
type EventSummary struct {
	ID        string
	Summary   string
	Start     time.Time
	End       time.Time
	Organizer string
	Status    string
	Attendees []AttendeeInfo

	// HasAttendeeList reports whether the event carried an attendee list at
	// all. Events created directly on a room calendar often have none.
	HasAttendeeList bool
}

// AttendeeInfo represents information about an event attendee
type AttendeeInfo struct {
	Email          string
	ResponseStatus string // "needsAction", "declined", "tentative", "accepted"
	Resource       bool
}

// toEventSummary converts a Google Calendar event to an EventSummary
func toEventSummary(event *calendar.Event) EventSummary {
	summary := EventSummary{
		ID:              event.Id,
		Summary:         event.Summary,
		Status:          event.Status,
		HasAttendeeList: event.Attendees != nil,
	}

	summary.Start = parseEventTime(event.Start)
	summary.End = parseEventTime(event.End)

	if event.Organizer != nil {
		summary.Organizer = event.Organizer.Email
	}

	for _, att := range event.Attendees {
		if att == nil {
			continue
		}
		summary.Attendees = append(summary.Attendees, AttendeeInfo{
			Email:          att.Email,
			ResponseStatus: att.ResponseStatus,
			Resource:       att.Resource,
		})
	}

	return summary
}

// parseEventTime handles both timed and all-day events.
func parseEventTime(dt *calendar.EventDateTime) time.Time {
	if dt == nil {
		return time.Time{}
	}
	if dt.DateTime != "" {
		if t, err := time.Parse(time.RFC3339, dt.DateTime); err == nil {
			return t
		}
	} else if dt.Date != "" {
		if t, err := time.Parse("2006-01-02", dt.Date); err == nil {
			return t
		}
	}
	return time.Time{}
}
