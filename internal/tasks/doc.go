// Package tasks publishes utilization reports as Google Tasks.
//
// The client wraps the Google Tasks API (tasks/v1) and shares the Google
// OAuth session used for reading room calendars, so the session must have
// been authorized with the tasks scope.
//
// # Example Usage
//
//	client, err := tasks.NewClient(ctx, metrics, option.WithHTTPClient(session.HTTPClient()))
//	if err != nil {
//	    return err
//	}
//
//	publisher := tasks.NewPublisher(client, tasks.DefaultTaskList)
//	published, err := publisher.Publish(ctx, title, report)
package tasks
