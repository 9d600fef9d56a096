// Package instrumentation provides OpenTelemetry instrumentation for the
// larkdocs MCP server.
//
// # Metrics
//
// Server/HTTP Metrics:
//   - http_requests_total: Counter of HTTP requests by method, path, and status
//   - http_request_duration_seconds: Histogram of HTTP request durations
//
// Lark Open Platform Metrics:
//   - lark_api_operations_total: Counter of platform calls by service, operation, auth mode, status
//   - lark_api_operation_duration_seconds: Histogram of platform call durations
//
// MCP Tool Metrics:
//   - mcp_tool_invocations_total: Counter of MCP tool invocations by tool name and status
//   - mcp_tool_duration_seconds: Histogram of MCP tool execution durations
//
// Import Metrics:
//   - docx_import_poll_attempts_total: Counter of import status polls by job status
//   - docx_import_outcomes_total: Counter of finished imports by outcome
//
// # Tracing
//
// Spans are created for MCP tool invocations (tool.<name>) and platform calls
// (lark.<service>.<operation>). Import polls are recorded as span events.
//
// # Configuration
//
// Instrumentation is configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: prometheus, otlp or stdout (default: prometheus)
//   - TRACING_EXPORTER: otlp, stdout or none (default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 0.1)
//   - OTEL_SERVICE_NAME: Service name (default: larkdocs)
//
// # Example Usage
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig(), logger)
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	recorder := provider.Metrics()
//	recorder.RecordToolInvocation(ctx, "docx_builtin_import", "success", time.Since(start))
package instrumentation
