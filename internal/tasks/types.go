package tasks

import (
	tasks "google.golang.org/api/tasks/v1"
)

// DefaultTaskList addresses the user's default task list.
const DefaultTaskList = "@default"

// Task represents a Google Tasks task
type Task struct {
	ID      string
	Title   string
	Notes   string
	Status  string // "needsAction" or "completed"
	WebLink string
}

// TaskInput represents the input for creating a task
type TaskInput struct {
	Title string
	Notes string
}

// toTask converts a Google Tasks Task to our Task type
func toTask(t *tasks.Task) Task {
	if t == nil {
		return Task{}
	}

	return Task{
		ID:      t.Id,
		Title:   t.Title,
		Notes:   t.Notes,
		Status:  t.Status,
		WebLink: t.WebViewLink,
	}
}
