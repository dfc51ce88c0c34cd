package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/teemow/roomutil/internal/utilization"
)

// DateLayout is the MM/DD/YYYY layout used in report text and titles.
const DateLayout = "01/02/2006"

// TitlePrefix starts every report task title.
const TitlePrefix = "Google Calendar Room Utilization Results"

const preamble = "The room data below is pulled from calendar events between %s " +
	"and %s. \n\nConference room utilization = (number of attendees for " +
	"meetings in last 30 days) / (number of meetings * max occupancy of " +
	"room). The count of seats includes non-Asana folks " +
	"and office hours. If a room has > 100%% that means generally it's " +
	"over occupied. This seems to be the case for most of the phone rooms " +
	"likely due to customers being invited on the calendar invite. The " +
	"seat count includes accepted and non-responded calendar " +
	"invites.\n\n%s"

// Line renders a single room's utilization.
func Line(m utilization.RoomMetrics) string {
	return fmt.Sprintf("%s Utilization %%: %.2f", m.Room, m.Utilization)
}

// Format renders the report for the given window. Rooms appear in the order
// given, one line each.
func Format(metrics []utilization.RoomMetrics, start, end time.Time) string {
	lines := make([]string, 0, len(metrics))
	for _, m := range metrics {
		lines = append(lines, Line(m))
	}

	return fmt.Sprintf(preamble,
		start.UTC().Format(DateLayout),
		end.UTC().Format(DateLayout),
		strings.Join(lines, "\n"),
	)
}

// Title returns the task title for a report produced at now.
func Title(now time.Time) string {
	return TitlePrefix + " " + now.UTC().Format(DateLayout)
}
