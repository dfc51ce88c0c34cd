package report

import "context"

// Published describes a task created for a report.
type Published struct {
	// Publisher names the tracker the task was created in.
	Publisher string
	// ID is the tracker's identifier for the task.
	ID string
	// URL links to the task, if the tracker returns one.
	URL string
}

// Publisher posts a finished report as a new task.
type Publisher interface {
	Name() string
	Publish(ctx context.Context, title, notes string) (*Published, error)
}
