// Package cmd implements the command-line interface for roomutil.
//
// This package provides the following commands:
//   - report: Compute room utilization over a date range and publish it as a task
//   - rooms: Validate and print the configured rooms
//   - auth: Run the Google authorization flow and cache the token
//   - serve: Start the MCP server to provide the report tool for AI assistants
//   - lambda: Run the report from scheduled AWS Lambda invocations
//   - generate-docs: Generate markdown documentation for the MCP tools
//   - version: Display version information
//
// The report command is the default command when no subcommand is specified,
// and lambda is the default under the AWS Lambda runtime.
package cmd
