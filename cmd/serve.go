package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/teemow/roomutil/internal/asana"
	"github.com/teemow/roomutil/internal/instrumentation"
	"github.com/teemow/roomutil/internal/logging"
	"github.com/teemow/roomutil/internal/report"
	"github.com/teemow/roomutil/internal/resources"
	"github.com/teemow/roomutil/internal/server"
	"github.com/teemow/roomutil/internal/tasks"
	"github.com/teemow/roomutil/internal/tools/report_tools"
)

func newServeCmd() *cobra.Command {
	var (
		metricsAddr string
		noPublish   bool
		opts        = reportOptions{interactive: false}
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start a Model Context Protocol (MCP) server on standard input/output that
exposes the room_utilization_report tool to AI assistants.

The server never prompts for authorization: run the auth command first so a
token exists in --token-file.

With --metrics-addr the server also exposes Prometheus metrics and health
checks over HTTP. This requires INSTRUMENTATION_ENABLED=true and the
prometheus metrics exporter.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.validate(); err != nil {
				return err
			}
			if !cmd.Flags().Changed("metrics-addr") {
				if addr := os.Getenv("METRICS_ADDR"); addr != "" {
					metricsAddr = addr
				}
			}
			return runServe(cmd.Context(), opts, !noPublish, metricsAddr)
		},
	}

	cmd.Flags().StringVar(&opts.publisher, "publisher", asana.PublisherName, fmt.Sprintf("Where the tool publishes reports: %s or %s", asana.PublisherName, tasks.PublisherName))
	cmd.Flags().StringVar(&opts.taskList, "tasklist", tasks.DefaultTaskList, "Google Tasks list to publish into")
	cmd.Flags().BoolVar(&noPublish, "no-publish", false, "Never publish, even when the tool is asked to")
	cmd.Flags().BoolVar(&opts.allowInsecureOAuth, "allow-insecure-oauth", false, "Allow plain http OAuth endpoints (local emulators only)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve metrics and health checks on this address (e.g. :9090). Can also use METRICS_ADDR env var.")

	return cmd
}

func runServe(parent context.Context, opts reportOptions, allowPublish bool, metricsAddr string) error {
	shutdownCtx, cancel := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// stdout carries the MCP protocol.
	logger, err := newLogger(os.Stderr)
	if err != nil {
		return err
	}

	provider, err := newProvider(shutdownCtx)
	if err != nil {
		return err
	}
	defer finishProvider(provider, logger)

	metrics := provider.Metrics()
	pipeline, err := newPipeline(shutdownCtx, opts, allowPublish, metrics, logger)
	if err != nil {
		return err
	}

	serverContext := server.NewServerContext(shutdownCtx, pipelineRunner(pipeline), metrics, logger)
	defer func() {
		_ = serverContext.Shutdown()
	}()

	if metricsAddr != "" {
		stop, err := startMetricsServer(metricsAddr, provider, serverContext, logger)
		if err != nil {
			return err
		}
		defer stop()
	}

	mcpSrv := mcpserver.NewMCPServer("roomutil", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false),
	)
	if err := report_tools.RegisterReportTools(mcpSrv, serverContext); err != nil {
		return fmt.Errorf("failed to register report tools: %w", err)
	}
	if err := resources.RegisterRoomResources(mcpSrv, serverContext, pipeline.Rooms); err != nil {
		return fmt.Errorf("failed to register resources: %w", err)
	}

	logger.Info("serving MCP on stdio", "publisher", opts.publisher, "publish", allowPublish)
	return runStdioServer(shutdownCtx, mcpSrv)
}

// pipelineRunner adapts a pipeline to the server's report runner. Runs that
// should not publish use a copy of the pipeline without a publisher.
func pipelineRunner(pipeline *report.Pipeline) server.ReportRunner {
	return func(ctx context.Context, start, end time.Time, publish bool) (*report.Result, error) {
		p := *pipeline
		if !publish {
			p.Publisher = nil
		}
		return p.Run(ctx, start, end)
	}
}

func startMetricsServer(addr string, provider *instrumentation.Provider, sc *server.ServerContext, logger *slog.Logger) (func(), error) {
	metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
		Addr:                    addr,
		InstrumentationProvider: provider,
		ServerContext:           sc,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics server: %w", err)
	}

	go func() {
		if err := metricsServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", logging.Err(err))
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		metricsServer.Health().SetReady(false)
		if err := metricsServer.Shutdown(ctx); err != nil {
			logger.Warn("error shutting down metrics server", logging.Err(err))
		}
	}, nil
}

func runStdioServer(ctx context.Context, mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	select {
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("server stopped with error: %w", err)
		}
		return nil
	case <-ctx.Done():
		return nil
	}
}
