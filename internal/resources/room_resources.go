package resources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/roomutil/internal/config"
	"github.com/teemow/roomutil/internal/server"
)

// Resource URIs.
const (
	RoomsURI        = "roomutil://rooms"
	LatestReportURI = "roomutil://report/latest"
)

// ErrNoReport is returned when the latest report is read before any report
// has been generated.
var ErrNoReport = errors.New("no report has been generated yet; call the room_utilization_report tool first")

type roomData struct {
	Name       string `json:"name"`
	CalendarID string `json:"calendar_id"`
	Seats      int    `json:"seats"`
}

type latestReportData struct {
	Title       string       `json:"title"`
	GeneratedAt string       `json:"generated_at"`
	Report      string       `json:"report"`
	Rooms       []roomMetric `json:"rooms"`
	TaskURL     string       `json:"task_url,omitempty"`
}

type roomMetric struct {
	Room        string  `json:"room"`
	Meetings    int     `json:"meetings"`
	Attendees   int     `json:"attendees"`
	MaxCapacity int     `json:"max_capacity"`
	Utilization float64 `json:"utilization_percent"`
}

// RegisterRoomResources registers the rooms and latest-report resources.
func RegisterRoomResources(s *mcpserver.MCPServer, sc *server.ServerContext, rooms []config.Room) error {
	if sc == nil {
		return fmt.Errorf("server context is required")
	}

	roomsResource := mcp.NewResource(
		RoomsURI,
		"Configured Rooms",
		mcp.WithResourceDescription("Conference rooms included in utilization reports, with their calendar IDs and seat counts"),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(roomsResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleRooms(request, rooms)
	})

	latestResource := mcp.NewResource(
		LatestReportURI,
		"Latest Utilization Report",
		mcp.WithResourceDescription("The most recent room utilization report generated by this server"),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(latestResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleLatestReport(request, sc)
	})

	return nil
}

func handleRooms(request mcp.ReadResourceRequest, rooms []config.Room) ([]mcp.ResourceContents, error) {
	data := make([]roomData, 0, len(rooms))
	for _, r := range rooms {
		data = append(data, roomData{Name: r.Name, CalendarID: r.URL, Seats: r.Seats})
	}
	return jsonContents(request.Params.URI, data)
}

func handleLatestReport(request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	result, at := sc.LastResult()
	if result == nil {
		return nil, ErrNoReport
	}

	data := latestReportData{
		Title:       result.Title,
		GeneratedAt: at.UTC().Format(time.RFC3339),
		Report:      result.Report,
		Rooms:       make([]roomMetric, 0, len(result.Metrics)),
	}
	for _, m := range result.Metrics {
		data.Rooms = append(data.Rooms, roomMetric{
			Room:        m.Room,
			Meetings:    m.Meetings,
			Attendees:   m.Attendees,
			MaxCapacity: m.MaxCapacity,
			Utilization: m.Utilization,
		})
	}
	if result.Task != nil {
		data.TaskURL = result.Task.URL
	}

	return jsonContents(request.Params.URI, data)
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource %s: %w", uri, err)
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(jsonData),
		},
	}, nil
}
