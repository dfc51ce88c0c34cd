// Package daterange parses the reporting window given on the command line
// or to the MCP tool.
package daterange

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultLookback is the window length used when no start date is given.
const DefaultLookback = 30 * 24 * time.Hour

// ErrInvalidRange is returned when the window ends before it starts.
var ErrInvalidRange = errors.New("start date is after end date")

// layouts are tried in order. The last two carry no offset and are read as UTC.
var layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Parse reads an ISO-8601 date or date-time. Values without an offset are
// taken as UTC; values with one are converted to UTC.
func Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD or an ISO-8601 date-time", s)
}

// Resolve turns optional start and end strings into a window. An empty end
// means now, an empty start means DefaultLookback before now.
func Resolve(start, end string, now time.Time) (time.Time, time.Time, error) {
	now = now.UTC()

	endTime := now
	if end != "" {
		t, err := Parse(end)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("end date: %w", err)
		}
		endTime = t
	}

	startTime := now.Add(-DefaultLookback)
	if start != "" {
		t, err := Parse(start)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("start date: %w", err)
		}
		startTime = t
	}

	if err := Validate(startTime, endTime); err != nil {
		return time.Time{}, time.Time{}, err
	}
	return startTime, endTime, nil
}

// Validate reports ErrInvalidRange if start is after end.
func Validate(start, end time.Time) error {
	if start.After(end) {
		return fmt.Errorf("%w: %s > %s", ErrInvalidRange, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return nil
}
