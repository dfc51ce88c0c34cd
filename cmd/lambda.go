package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/spf13/cobra"

	"github.com/teemow/roomutil/internal/asana"
	"github.com/teemow/roomutil/internal/daterange"
	"github.com/teemow/roomutil/internal/tasks"
)

// scheduleDetail is the optional detail of the scheduled event. Empty fields
// fall back to the default 30-day window.
type scheduleDetail struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	DryRun    bool   `json:"dryRun"`
}

// newLambdaOptions returns the report options for the Lambda runtime. The
// deployment package is read-only, so a refreshed token that cannot be
// written back is only logged.
func newLambdaOptions() reportOptions {
	return reportOptions{
		interactive:             false,
		tolerateTokenSaveErrors: true,
	}
}

func newLambdaCmd() *cobra.Command {
	opts := newLambdaOptions()

	cmd := &cobra.Command{
		Use:   "lambda",
		Short: "Run as an AWS Lambda function",
		Long: `Start the AWS Lambda handler. Each scheduled (EventBridge/CloudWatch) event
runs one report. The event detail may set startDate, endDate and dryRun.

Flags can also be set with ROOMUTIL_* environment variables, e.g.
ROOMUTIL_TOKEN_FILE. The token file must already exist; the function never
prompts for authorization.

The token file is read from the working directory unless --token-file or
ROOMUTIL_TOKEN_FILE points elsewhere. The deployment package is read-only,
so a refreshed access token is kept in memory and a failed write is logged
as a warning. Point ROOMUTIL_TOKEN_FILE at a copy under /tmp to reuse
refreshed tokens across warm invocations.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.validate(); err != nil {
				return err
			}
			if os.Getenv("AWS_LAMBDA_RUNTIME_API") == "" {
				return fmt.Errorf("not running under the AWS Lambda runtime (AWS_LAMBDA_RUNTIME_API is not set)")
			}
			lambda.Start(newLambdaHandler(opts, time.Now))
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.publisher, "publisher", asana.PublisherName, fmt.Sprintf("Where to publish the report: %s or %s", asana.PublisherName, tasks.PublisherName))
	cmd.Flags().StringVar(&opts.taskList, "tasklist", tasks.DefaultTaskList, "Google Tasks list to publish into")

	return cmd
}

// parseScheduleDetail reads the event detail. A missing or empty detail is
// not an error.
func parseScheduleDetail(event events.CloudWatchEvent) (scheduleDetail, error) {
	var detail scheduleDetail
	if len(event.Detail) == 0 || string(event.Detail) == "null" {
		return detail, nil
	}
	if err := json.Unmarshal(event.Detail, &detail); err != nil {
		return detail, fmt.Errorf("invalid event detail: %w", err)
	}
	return detail, nil
}

func newLambdaHandler(opts reportOptions, now func() time.Time) func(context.Context, events.CloudWatchEvent) error {
	return func(ctx context.Context, event events.CloudWatchEvent) error {
		detail, err := parseScheduleDetail(event)
		if err != nil {
			return err
		}

		start, end, err := daterange.Resolve(detail.StartDate, detail.EndDate, now())
		if err != nil {
			return err
		}

		return runReport(ctx, os.Stdout, opts, start, end, !detail.DryRun)
	}
}
