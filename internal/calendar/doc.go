// Package calendar provides a read-only client for room calendars in the
// Google Calendar API.
//
// Example usage:
//
//	client, err := calendar.NewClient(ctx, metrics, option.WithHTTPClient(session.HTTPClient()))
//	if err != nil {
//	    return err
//	}
//
//	events, err := client.ListRoomEvents(ctx, room.URL, start, end)
package calendar
