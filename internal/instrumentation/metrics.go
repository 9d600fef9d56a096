package instrumentation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys
const (
	attrMethod    = "method"
	attrPath      = "path"
	attrStatus    = "status"
	attrOperation = "operation"
	attrService   = "service"
	attrAuthMode  = "auth_mode"
	attrTool      = "tool"
	attrJobStatus = "job_status"
	attrOutcome   = "outcome"
)

// Metrics provides methods for recording observability metrics.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// HTTP metrics
	httpRequestsTotal   metric.Int64Counter
	httpRequestDuration metric.Float64Histogram

	// Lark open platform metrics
	platformOperationsTotal   metric.Int64Counter
	platformOperationDuration metric.Float64Histogram

	// MCP Tool metrics
	toolInvocationsTotal metric.Int64Counter
	toolDuration         metric.Float64Histogram

	// Import job metrics
	importPollAttemptsTotal metric.Int64Counter
	importOutcomesTotal     metric.Int64Counter

	// detailedLabels controls whether high-cardinality labels are included
	detailedLabels bool
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
// The detailedLabels parameter controls whether high-cardinality labels are included.
func NewMetrics(meter metric.Meter, detailedLabels bool) (*Metrics, error) {
	m := &Metrics{
		detailedLabels: detailedLabels,
	}

	var err error

	m.httpRequestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_requests_total counter: %w", err)
	}

	m.httpRequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.01, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_request_duration_seconds histogram: %w", err)
	}

	m.platformOperationsTotal, err = meter.Int64Counter(
		"lark_api_operations_total",
		metric.WithDescription("Total number of Lark open platform operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create lark_api_operations_total counter: %w", err)
	}

	m.platformOperationDuration, err = meter.Float64Histogram(
		"lark_api_operation_duration_seconds",
		metric.WithDescription("Lark open platform operation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create lark_api_operation_duration_seconds histogram: %w", err)
	}

	m.toolInvocationsTotal, err = meter.Int64Counter(
		"mcp_tool_invocations_total",
		metric.WithDescription("Total number of MCP tool invocations"),
		metric.WithUnit("{invocation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_invocations_total counter: %w", err)
	}

	m.toolDuration, err = meter.Float64Histogram(
		"mcp_tool_duration_seconds",
		metric.WithDescription("MCP tool execution duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_duration_seconds histogram: %w", err)
	}

	m.importPollAttemptsTotal, err = meter.Int64Counter(
		"docx_import_poll_attempts_total",
		metric.WithDescription("Total number of import task status polls"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create docx_import_poll_attempts_total counter: %w", err)
	}

	m.importOutcomesTotal, err = meter.Int64Counter(
		"docx_import_outcomes_total",
		metric.WithDescription("Total number of finished markdown imports by outcome"),
		metric.WithUnit("{import}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create docx_import_outcomes_total counter: %w", err)
	}

	return m, nil
}

// RecordHTTPRequest records an HTTP request with method, path, status code, and duration.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, duration time.Duration) {
	if m == nil || m.httpRequestsTotal == nil || m.httpRequestDuration == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrMethod, method),
		attribute.String(attrPath, path),
		attribute.String(attrStatus, strconv.Itoa(statusCode)),
	}

	m.httpRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.httpRequestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordPlatformOperation records a Lark open platform call.
//
// Parameters:
//   - service: platform service name (docx, drive)
//   - operation: operation name (search, upload_media, create_import_task, get_import_task)
//   - authMode: identity the call was made with (tenant, user)
//   - status: Result status ("success" or "error")
//   - duration: Time taken for the operation
func (m *Metrics) RecordPlatformOperation(ctx context.Context, service, operation, authMode, status string, duration time.Duration) {
	if m == nil || m.platformOperationsTotal == nil || m.platformOperationDuration == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrService, service),
		attribute.String(attrOperation, operation),
		attribute.String(attrAuthMode, authMode),
		attribute.String(attrStatus, status),
	}

	m.platformOperationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.platformOperationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordToolInvocation records an MCP tool invocation with tool name, status, and duration.
func (m *Metrics) RecordToolInvocation(ctx context.Context, toolName, status string, duration time.Duration) {
	if m == nil || m.toolInvocationsTotal == nil || m.toolDuration == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrTool, toolName),
		attribute.String(attrStatus, status),
	}

	m.toolInvocationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.toolDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordImportPoll records one import task status poll and the status it saw.
func (m *Metrics) RecordImportPoll(ctx context.Context, jobStatus *int) {
	if m == nil || m.importPollAttemptsTotal == nil {
		return
	}

	m.importPollAttemptsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrJobStatus, JobStatusLabel(jobStatus, m.detailedLabels)),
	))
}

// RecordImportOutcome records how a markdown import finished.
// Outcome should be one of the ImportOutcome* constants.
func (m *Metrics) RecordImportOutcome(ctx context.Context, outcome string) {
	if m == nil || m.importOutcomesTotal == nil {
		return
	}

	m.importOutcomesTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrOutcome, outcome),
	))
}
