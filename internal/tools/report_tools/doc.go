// Package report_tools exposes the room utilization report as an MCP tool.
//
// # Available Tools
//
//   - room_utilization_report: compute utilization for every configured room
//     over a date range and optionally publish the report as a task
//
// Dates are ISO-8601 dates or date-times. Values without an offset are read as
// UTC. The range defaults to the last 30 days.
package report_tools
