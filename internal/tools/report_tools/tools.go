package report_tools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/roomutil/internal/daterange"
	"github.com/teemow/roomutil/internal/server"
	"github.com/teemow/roomutil/internal/tools/common"
)

// ToolName is the name the report tool is registered under.
const ToolName = "room_utilization_report"

// RegisterReportTools registers the report tool with the MCP server.
func RegisterReportTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	if sc == nil {
		return errors.New("server context is required")
	}

	reportTool := mcp.NewTool(ToolName,
		mcp.WithDescription("Compute conference room utilization from Google Calendar over a date range. "+
			"Returns the report text with one utilization percentage line per room. "+
			"Meeting, attendee and capacity counts per room are in the roomutil://report/latest resource."),
		mcp.WithString("startDate",
			mcp.Description("Start of the range (ISO-8601 date or date-time, e.g. '2025-01-01'). Default: 30 days ago."),
		),
		mcp.WithString("endDate",
			mcp.Description("End of the range (ISO-8601 date or date-time, e.g. '2025-01-31T23:59:59Z'). Default: now."),
		),
		mcp.WithBoolean("publish",
			mcp.Description("Publish the report as a task (default: false)"),
		),
	)

	s.AddTool(reportTool, common.InstrumentedToolHandler(ToolName, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleReport(ctx, request, sc, time.Now)
		}))

	return nil
}

func handleReport(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext, now func() time.Time) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	start, end, err := daterange.Resolve(common.StringArg(args, "startDate"), common.StringArg(args, "endDate"), now())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid date range: %v", err)), nil
	}

	publish, err := common.BoolArg(args, "publish", false)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := sc.RunReport(ctx, start, end, publish)
	if err != nil {
		if errors.Is(err, server.ErrShutdown) {
			return mcp.NewToolResultError("Server is shutting down"), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("Failed to generate report: %v", err)), nil
	}

	var out strings.Builder
	out.WriteString(result.Title)
	out.WriteString("\n\n")
	out.WriteString(result.Report)
	if result.Task != nil {
		fmt.Fprintf(&out, "\nPublished to %s: %s\n", result.Task.Publisher, taskLink(result.Task.URL, result.Task.ID))
	} else if publish {
		out.WriteString("\nNo publisher configured; report was not published.\n")
	}

	return mcp.NewToolResultText(out.String()), nil
}

func taskLink(url, id string) string {
	if url != "" {
		return url
	}
	return id
}
