package resources

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/roomutil/internal/config"
	"github.com/teemow/roomutil/internal/report"
	"github.com/teemow/roomutil/internal/server"
	"github.com/teemow/roomutil/internal/utilization"
)

func readRequest(uri string) mcp.ReadResourceRequest {
	return mcp.ReadResourceRequest{Params: mcp.ReadResourceParams{URI: uri}}
}

func contentsText(t *testing.T, contents []mcp.ResourceContents) string {
	t.Helper()
	require.Len(t, contents, 1)
	text, ok := contents[0].(*mcp.TextResourceContents)
	require.True(t, ok, "expected text contents, got %T", contents[0])
	assert.Equal(t, "application/json", text.MIMEType)
	return text.Text
}

func TestRegisterRoomResources(t *testing.T) {
	sc := server.NewServerContext(context.Background(), nil, nil, nil)
	defer func() { _ = sc.Shutdown() }()

	mcpSrv := mcpserver.NewMCPServer("test-server", "1.0.0",
		mcpserver.WithResourceCapabilities(false, false),
	)

	assert.NoError(t, RegisterRoomResources(mcpSrv, sc, nil))
	assert.Error(t, RegisterRoomResources(mcpSrv, nil, nil))
}

func TestHandleRooms(t *testing.T) {
	rooms := []config.Room{
		{Name: "Kilimanjaro", URL: "c_188abc@resource.calendar.google.com", Seats: 8},
	}

	contents, err := handleRooms(readRequest(RoomsURI), rooms)
	require.NoError(t, err)

	var got []roomData
	require.NoError(t, json.Unmarshal([]byte(contentsText(t, contents)), &got))
	assert.Equal(t, []roomData{{Name: "Kilimanjaro", CalendarID: "c_188abc@resource.calendar.google.com", Seats: 8}}, got)
}

func TestHandleLatestReport(t *testing.T) {
	result := &report.Result{
		Title:  "Google Calendar Room Utilization Results 03/08/2024",
		Report: "Everest Utilization %: 50.00",
		Metrics: []utilization.RoomMetrics{
			{Room: "Everest", Seats: 4, Meetings: 1, Attendees: 2, MaxCapacity: 4, Utilization: 50},
		},
		Task: &report.Published{Publisher: "asana", ID: "1", URL: "https://app.asana.com/0/2/1"},
	}
	runner := func(context.Context, time.Time, time.Time, bool) (*report.Result, error) {
		return result, nil
	}
	sc := server.NewServerContext(context.Background(), runner, nil, nil)
	defer func() { _ = sc.Shutdown() }()

	_, err := handleLatestReport(readRequest(LatestReportURI), sc)
	assert.True(t, errors.Is(err, ErrNoReport))

	_, err = sc.RunReport(context.Background(), time.Now(), time.Now(), true)
	require.NoError(t, err)

	contents, err := handleLatestReport(readRequest(LatestReportURI), sc)
	require.NoError(t, err)

	var got latestReportData
	require.NoError(t, json.Unmarshal([]byte(contentsText(t, contents)), &got))
	assert.Equal(t, result.Title, got.Title)
	assert.Equal(t, result.Report, got.Report)
	assert.Equal(t, "https://app.asana.com/0/2/1", got.TaskURL)
	_, at := sc.LastResult()
	assert.Equal(t, at.UTC().Format(time.RFC3339), got.GeneratedAt)
	require.Len(t, got.Rooms, 1)
	assert.Equal(t, roomMetric{Room: "Everest", Meetings: 1, Attendees: 2, MaxCapacity: 4, Utilization: 50}, got.Rooms[0])
}

func TestHandleLatestReport_FailedRunKeepsGeneratedAt(t *testing.T) {
	fail := false
	runner := func(context.Context, time.Time, time.Time, bool) (*report.Result, error) {
		if fail {
			return nil, errors.New("calendar unavailable")
		}
		return &report.Result{Title: "ok"}, nil
	}
	sc := server.NewServerContext(context.Background(), runner, nil, nil)
	defer func() { _ = sc.Shutdown() }()

	_, err := sc.RunReport(context.Background(), time.Now(), time.Now(), false)
	require.NoError(t, err)
	_, successAt := sc.LastResult()

	fail = true
	_, err = sc.RunReport(context.Background(), time.Now(), time.Now(), false)
	require.Error(t, err)

	contents, err := handleLatestReport(readRequest(LatestReportURI), sc)
	require.NoError(t, err)

	var got latestReportData
	require.NoError(t, json.Unmarshal([]byte(contentsText(t, contents)), &got))
	assert.Equal(t, "ok", got.Title)
	assert.Equal(t, successAt.UTC().Format(time.RFC3339), got.GeneratedAt)
}
