// Package resources provides MCP resources for the report server.
// Resources are read-only data sources that MCP clients can fetch: the
// configured rooms and the most recent report.
package resources
