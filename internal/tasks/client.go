package tasks

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"github.com/teemow/roomutil/internal/instrumentation"
	"github.com/teemow/roomutil/internal/report"
)

// PublisherName identifies Google Tasks in logs and metrics.
const PublisherName = "google-tasks"

// Client wraps the Google Tasks service
type Client struct {
	svc     *tasks.Service
	metrics *instrumentation.Metrics
}

// NewClient creates a Tasks client. Authentication is supplied through opts.
func NewClient(ctx context.Context, metrics *instrumentation.Metrics, opts ...option.ClientOption) (*Client, error) {
	svc, err := tasks.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Tasks service: %w", err)
	}

	return &Client{
		svc:     svc,
		metrics: metrics,
	}, nil
}

// CreateTask creates a new task in the given task list
func (c *Client) CreateTask(ctx context.Context, taskListID string, input TaskInput) (*Task, error) {
	ctx, span := instrumentation.StartAPISpan(ctx, instrumentation.ServiceTasks, instrumentation.OperationCreate)
	defer span.End()

	start := time.Now()

	t := &tasks.Task{
		Title: input.Title,
		Notes: input.Notes,
	}

	created, err := c.svc.Tasks.Insert(taskListID, t).Context(ctx).Do()
	if err != nil {
		c.metrics.RecordAPIOperation(ctx, instrumentation.ServiceTasks, instrumentation.OperationCreate, instrumentation.StatusError, time.Since(start))
		instrumentation.SetSpanError(span, err)
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	c.metrics.RecordAPIOperation(ctx, instrumentation.ServiceTasks, instrumentation.OperationCreate, instrumentation.StatusSuccess, time.Since(start))
	instrumentation.SetSpanSuccess(span)

	result := toTask(created)
	return &result, nil
}

var _ report.Publisher = (*Publisher)(nil)

// Publisher posts reports into a Google Tasks list.
type Publisher struct {
	client   *Client
	taskList string
}

// NewPublisher returns a publisher for taskList (DefaultTaskList if empty).
func NewPublisher(client *Client, taskList string) *Publisher {
	if taskList == "" {
		taskList = DefaultTaskList
	}
	return &Publisher{client: client, taskList: taskList}
}

// Name implements report.Publisher.
func (p *Publisher) Name() string {
	return PublisherName
}

// Publish implements report.Publisher.
func (p *Publisher) Publish(ctx context.Context, title, notes string) (*report.Published, error) {
	task, err := p.client.CreateTask(ctx, p.taskList, TaskInput{Title: title, Notes: notes})
	if err != nil {
		return nil, err
	}

	return &report.Published{
		Publisher: PublisherName,
		ID:        task.ID,
		URL:       task.WebLink,
	}, nil
}
