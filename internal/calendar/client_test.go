package calendar

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

const roomCalendar = "c_188abc@resource.calendar.google.com"

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(context.Background(), nil,
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return client
}

func TestListRoomEvents_Query(t *testing.T) {
	start := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2021, 1, 31, 0, 0, 0, 0, time.UTC)

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/calendars/"+roomCalendar+"/events", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "2021-01-01T00:00:00Z", q.Get("timeMin"))
		assert.Equal(t, "2021-01-31T00:00:00Z", q.Get("timeMax"))
		assert.Equal(t, "true", q.Get("singleEvents"))
		assert.Equal(t, "startTime", q.Get("orderBy"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items": [
  {"id": "e1", "summary": "Standup", "start": {"dateTime": "2021-01-04T09:00:00Z"}, "end": {"dateTime": "2021-01-04T09:15:00Z"},
   "organizer": {"email": "a@example.com"},
   "attendees": [
     {"email": "a@example.com", "responseStatus": "accepted"},
     {"email": "b@example.com", "responseStatus": "declined"},
     {"email": "` + roomCalendar + `", "responseStatus": "accepted", "resource": true}
   ]},
  {"id": "e2", "summary": "Blocked", "start": {"date": "2021-01-05"}, "end": {"date": "2021-01-06"}},
  {"id": "e3", "summary": "Cancelled invite list", "start": {"dateTime": "2021-01-06T10:00:00Z"}, "attendees": []}
]}`))
	})

	events, err := client.ListRoomEvents(context.Background(), roomCalendar, start, end)
	require.NoError(t, err)
	require.Len(t, events, 3)

	assert.Equal(t, "e1", events[0].ID)
	assert.Equal(t, "a@example.com", events[0].Organizer)
	assert.True(t, events[0].HasAttendeeList)
	require.Len(t, events[0].Attendees, 3)
	assert.Equal(t, ResponseDeclined, events[0].Attendees[1].ResponseStatus)
	assert.True(t, events[0].Attendees[2].Resource)
	assert.Equal(t, time.Date(2021, 1, 4, 9, 0, 0, 0, time.UTC), events[0].Start)

	assert.False(t, events[1].HasAttendeeList)
	assert.Equal(t, time.Date(2021, 1, 5, 0, 0, 0, 0, time.UTC), events[1].Start)

	assert.True(t, events[2].HasAttendeeList, "an empty attendee list is still a list")
	assert.Empty(t, events[2].Attendees)
}

func TestListRoomEvents_Pagination(t *testing.T) {
	var calls int
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("pageToken") {
		case "":
			_, _ = w.Write([]byte(`{"items": [{"id": "e1"}, {"id": "e2"}], "nextPageToken": "page-2"}`))
		case "page-2":
			_, _ = w.Write([]byte(`{"items": [{"id": "e3"}]}`))
		default:
			t.Errorf("unexpected page token %q", r.URL.Query().Get("pageToken"))
			w.WriteHeader(http.StatusBadRequest)
		}
	})

	events, err := client.ListRoomEvents(context.Background(), roomCalendar, time.Now().AddDate(0, 0, -30), time.Now())
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
	require.Len(t, events, 3)
	assert.Equal(t, "e3", events[2].ID)
}

func TestListRoomEvents_Empty(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"kind": "calendar#events"}`))
	})

	events, err := client.ListRoomEvents(context.Background(), roomCalendar, time.Now().AddDate(0, 0, -30), time.Now())
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestListRoomEvents_Error(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error": {"code": 404, "message": "Not Found"}}`))
	})

	_, err := client.ListRoomEvents(context.Background(), roomCalendar, time.Now().AddDate(0, 0, -30), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), roomCalendar)
}

func TestListRoomEvents_ContextCanceled(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.ListRoomEvents(ctx, roomCalendar, time.Now().AddDate(0, 0, -30), time.Now())
	require.Error(t, err)
}

func TestToEventSummary(t *testing.T) {
	summary := toEventSummary(&calendar.Event{Id: "x"})
	assert.Equal(t, "x", summary.ID)
	assert.False(t, summary.HasAttendeeList)
	assert.True(t, summary.Start.IsZero())

	summary = toEventSummary(&calendar.Event{
		Id:        "y",
		Attendees: []*calendar.EventAttendee{nil, {Email: "a@example.com"}},
	})
	assert.True(t, summary.HasAttendeeList)
	assert.Len(t, summary.Attendees, 1)
}

func TestParseEventTime(t *testing.T) {
	tests := []struct {
		name string
		in   *calendar.EventDateTime
		want time.Time
	}{
		{"nil", nil, time.Time{}},
		{"date time", &calendar.EventDateTime{DateTime: "2021-01-04T09:00:00-05:00"}, time.Date(2021, 1, 4, 14, 0, 0, 0, time.UTC)},
		{"all day", &calendar.EventDateTime{Date: "2021-01-04"}, time.Date(2021, 1, 4, 0, 0, 0, 0, time.UTC)},
		{"garbage", &calendar.EventDateTime{DateTime: "soon"}, time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.want.Equal(parseEventTime(tt.in)), "got %v", parseEventTime(tt.in))
		})
	}
}
