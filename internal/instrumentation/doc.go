// Package instrumentation provides OpenTelemetry instrumentation for calbot.
//
// This package enables observability through:
//   - OpenTelemetry metrics for assistant requests, calendar calls, HTTP
//     requests and MCP tool invocations
//   - Distributed tracing for pipeline runs and calendar calls
//   - Prometheus metrics export via /metrics endpoint on dedicated port
//   - OTLP export support for modern observability platforms
//   - Audit logging of calendar bookings
//
// # Metrics
//
// Assistant Metrics:
//   - assistant_requests_total: Counter of pipeline runs by intent and outcome
//   - assistant_request_duration_seconds: Histogram of pipeline run durations
//
// Calendar Metrics:
//   - calendar_operations_total: Counter of calendar calls by backend, operation, status
//   - calendar_operation_duration_seconds: Histogram of calendar call durations
//
// Server/HTTP Metrics:
//   - http_requests_total: Counter of HTTP requests by method, path, and status
//   - http_request_duration_seconds: Histogram of HTTP request durations
//
// MCP Tool Metrics:
//   - mcp_tool_invocations_total: Counter of MCP tool invocations by tool name and status
//   - mcp_tool_duration_seconds: Histogram of MCP tool execution durations
//
// # Configuration
//
// Instrumentation can be configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: Metrics exporter type (prometheus, otlp, stdout, default: prometheus)
//   - TRACING_EXPORTER: Tracing exporter type (otlp, stdout, none, default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 0.1)
//   - OTEL_SERVICE_NAME: Service name (default: calbot)
//   - AUDIT_LOGGING_ENABLED: Log every booking attempt (default: true)
//
// # Example Usage
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	m := provider.Metrics()
//	m.RecordAssistantRequest(ctx, "book", "booked", time.Since(start))
//	m.RecordCalendarOperation(ctx, "google", "check", "success", time.Since(start))
package instrumentation
