// Package instrumentation provides OpenTelemetry instrumentation for roomutil.
//
// A report run is a short-lived batch job, so metrics are collected into a
// private Prometheus registry and, when PUSHGATEWAY_URL is set, pushed to a
// Prometheus Pushgateway once the run finishes. OTLP and stdout exporters are
// available for environments that collect telemetry differently.
//
// # Metrics
//
//   - api_operations_total / api_operation_duration_seconds: calls to Google
//     Calendar, Google Tasks and Asana by service, operation and status
//   - oauth_auth_total: interactive authorizations by result
//   - oauth_token_refresh_total: token refreshes by result
//   - rooms_processed_total: rooms by result (reported, skipped)
//   - room_utilization_percent: last computed utilization per room
//   - report_publish_total: published reports by publisher and status
//
// # Tracing
//
// A report run is one span (report.run); each remote call is a client span
// named <service>.<operation>.
//
// # Configuration
//
// Instrumentation is configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: false)
//   - METRICS_EXPORTER: prometheus, otlp, stdout (default: prometheus)
//   - TRACING_EXPORTER: otlp, stdout, none (default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 1.0)
//   - OTEL_SERVICE_NAME: Service name (default: roomutil)
//   - PUSHGATEWAY_URL: Pushgateway base URL (prometheus exporter only)
//   - PUSHGATEWAY_JOB: Pushgateway job name (default: roomutil)
package instrumentation
