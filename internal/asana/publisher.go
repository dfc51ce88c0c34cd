package asana

import (
	"context"

	"github.com/teemow/roomutil/internal/config"
	"github.com/teemow/roomutil/internal/report"
)

// PublisherName identifies Asana in logs and metrics.
const PublisherName = "asana"

var _ report.Publisher = (*Publisher)(nil)

// Publisher posts reports as tasks in an Asana project.
type Publisher struct {
	client    *Client
	workspace string
	project   string
}

// NewPublisher returns a publisher for the workspace and project in cfg.
func NewPublisher(cfg config.AsanaConfig, opts ...Option) *Publisher {
	return &Publisher{
		client:    NewClient(cfg.PersonalAccessToken, opts...),
		workspace: cfg.WorkspaceID,
		project:   cfg.ProjectID,
	}
}

// Name implements report.Publisher.
func (p *Publisher) Name() string {
	return PublisherName
}

// Publish implements report.Publisher.
func (p *Publisher) Publish(ctx context.Context, title, notes string) (*report.Published, error) {
	task, err := p.client.CreateTask(ctx, TaskInput{
		Workspace: p.workspace,
		Projects:  []string{p.project},
		Name:      title,
		Notes:     notes,
	})
	if err != nil {
		return nil, err
	}

	return &report.Published{
		Publisher: PublisherName,
		ID:        task.GID,
		URL:       task.PermalinkURL,
	}, nil
}
