package google

import (
	calendar "google.golang.org/api/calendar/v3"
	tasks "google.golang.org/api/tasks/v1"
)

// ReportScopes are the scopes needed to read room calendars.
var ReportScopes = []string{
	calendar.CalendarReadonlyScope,
}

// TasksPublishScopes are the scopes needed when the report is published as a
// Google Task in addition to reading room calendars.
var TasksPublishScopes = []string{
	calendar.CalendarReadonlyScope,
	tasks.TasksScope,
}
