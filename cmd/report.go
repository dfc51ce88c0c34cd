package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/roomutil/internal/asana"
	"github.com/teemow/roomutil/internal/daterange"
	"github.com/teemow/roomutil/internal/tasks"
)

func newReportCmd() *cobra.Command {
	var (
		startDate string
		endDate   string
		dryRun    bool
		opts      = reportOptions{interactive: true}
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Compute room utilization and publish it as a task",
		Long: `Read every configured room's calendar between --start-date and --end-date,
compute its utilization and create a task with the report.

Dates are ISO-8601 dates or date-times. Values without an offset are read as
UTC. The range defaults to the last 30 days.

The first run opens the Google authorization flow and caches the token in
--token-file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := daterange.Resolve(startDate, endDate, time.Now())
			if err != nil {
				return err
			}
			if err := opts.validate(); err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			return runReport(ctx, cmd.OutOrStdout(), opts, start, end, !dryRun)
		},
	}

	cmd.Flags().StringVar(&startDate, "start-date", "", "Start of the reporting range (default: 30 days ago)")
	cmd.Flags().StringVar(&endDate, "end-date", "", "End of the reporting range (default: now)")
	cmd.Flags().StringVar(&opts.publisher, "publisher", asana.PublisherName, fmt.Sprintf("Where to publish the report: %s or %s", asana.PublisherName, tasks.PublisherName))
	cmd.Flags().StringVar(&opts.taskList, "tasklist", tasks.DefaultTaskList, "Google Tasks list to publish into")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the report instead of publishing it")
	cmd.Flags().BoolVar(&opts.allowInsecureOAuth, "allow-insecure-oauth", false, "Allow plain http OAuth endpoints (local emulators only)")

	return cmd
}

func runReport(ctx context.Context, out io.Writer, opts reportOptions, start, end time.Time, publish bool) error {
	logger, err := newLogger(out)
	if err != nil {
		return err
	}

	provider, err := newProvider(ctx)
	if err != nil {
		return err
	}
	defer finishProvider(provider, logger)

	pipeline, err := newPipeline(ctx, opts, publish, provider.Metrics(), logger)
	if err != nil {
		return err
	}

	result, err := pipeline.Run(ctx, start, end)
	if err != nil {
		return err
	}

	if result.Task == nil {
		fmt.Fprintf(out, "%s\n\n%s\n", result.Title, result.Report)
		return nil
	}

	fmt.Fprintf(out, "Utilization task created: %s\n", taskLink(result.Task))
	return nil
}
