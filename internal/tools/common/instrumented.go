package common

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/roomutil/internal/instrumentation"
	"github.com/teemow/roomutil/internal/logging"
	"github.com/teemow/roomutil/internal/server"
)

// InstrumentedToolHandler wraps a tool handler with a server span, invocation
// metrics and a log line. A result with IsError set counts as a failure.
//
// Usage:
//
//	s.AddTool(myTool, common.InstrumentedToolHandler("my_tool", sc, handler))
func InstrumentedToolHandler(
	toolName string,
	sc *server.ServerContext,
	handler func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error),
) func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ctx, span := instrumentation.StartToolSpan(ctx, toolName)
		defer span.End()

		start := time.Now()
		result, err := handler(ctx, request)
		duration := time.Since(start)

		status := instrumentation.StatusSuccess
		switch {
		case err != nil:
			status = instrumentation.StatusError
			instrumentation.SetSpanError(span, err)
		case result != nil && result.IsError:
			status = instrumentation.StatusError
		default:
			instrumentation.SetSpanSuccess(span)
		}

		sc.Metrics().RecordToolInvocation(ctx, toolName, status, duration)

		logger := logging.WithOperation(sc.Logger(), "tool")
		attrs := []any{
			"tool", toolName,
			logging.Status(status),
			logging.KeyDuration, duration,
		}
		if err != nil {
			attrs = append(attrs, logging.Err(err))
		}
		if traceID := instrumentation.GetTraceID(ctx); traceID != "" {
			attrs = append(attrs, "trace_id", traceID)
		}
		logger.Info("tool invoked", attrs...)

		return result, err
	}
}
