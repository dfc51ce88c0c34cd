// Package server provides the context shared by MCP tools and the HTTP
// endpoints that run alongside the stdio MCP server.
//
// # Key Components
//
// ServerContext carries the report runner and observability handles that
// tool handlers need, and tracks shutdown.
//
// MetricsServer exposes Prometheus metrics and health endpoints on a
// dedicated address:
//   - /metrics: metrics gathered by the instrumentation provider
//   - /healthz, /readyz, /healthz/detailed: liveness and readiness
package server
