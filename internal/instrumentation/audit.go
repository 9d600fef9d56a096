package instrumentation

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// ToolInvocation captures the audit trail of a single MCP tool call.
//
// Argument content (markdown bodies, search keys) is user data and is never
// recorded; only its size is, and only when enabled.
type ToolInvocation struct {
	// InvocationID correlates the audit entry with other log lines
	InvocationID string

	Tool string

	// UserTokenPresent records whether a user access token was available,
	// never the token itself
	UserTokenPresent bool

	// Target information on the Lark platform
	ServiceName string
	Operation   string

	// ArgumentBytes is the size of the raw tool arguments
	ArgumentBytes int

	// Execution details
	StartTime time.Time
	Duration  time.Duration
	Success   bool
	Error     string

	// Tracing context
	TraceID string
	SpanID  string
}

// NewToolInvocation creates a new ToolInvocation with timing started and a
// fresh invocation id. Call Complete() when the tool operation finishes.
func NewToolInvocation(tool string) *ToolInvocation {
	return &ToolInvocation{
		InvocationID: uuid.NewString(),
		Tool:         tool,
		StartTime:    time.Now(),
	}
}

// Status returns "success" or "error" based on the Success field.
func (ti *ToolInvocation) Status() string {
	if ti.Success {
		return StatusSuccess
	}
	return StatusError
}

// WithUserToken records whether a user access token was available.
func (ti *ToolInvocation) WithUserToken(present bool) *ToolInvocation {
	ti.UserTokenPresent = present
	return ti
}

// WithService sets the platform service and operation.
func (ti *ToolInvocation) WithService(serviceName, operation string) *ToolInvocation {
	ti.ServiceName = serviceName
	ti.Operation = operation
	return ti
}

// WithArgumentBytes sets the size of the tool arguments.
func (ti *ToolInvocation) WithArgumentBytes(n int) *ToolInvocation {
	ti.ArgumentBytes = n
	return ti
}

// WithSpanContext extracts trace context from the current span.
func (ti *ToolInvocation) WithSpanContext(ctx context.Context) *ToolInvocation {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		ti.TraceID = span.SpanContext().TraceID().String()
		ti.SpanID = span.SpanContext().SpanID().String()
	}
	return ti
}

// Complete marks the invocation as completed and calculates duration.
func (ti *ToolInvocation) Complete(success bool, err error) *ToolInvocation {
	ti.Duration = time.Since(ti.StartTime)
	ti.Success = success
	if err != nil {
		ti.Error = err.Error()
	}
	return ti
}

// LogAttrs returns slog attributes for structured logging. Argument sizes
// are only included when includeArguments is set.
func (ti *ToolInvocation) LogAttrs(includeArguments bool) []slog.Attr {
	attrs := []slog.Attr{
		slog.String("invocation_id", ti.InvocationID),
		slog.String("tool", ti.Tool),
		slog.Bool("user_token", ti.UserTokenPresent),
		slog.Duration("duration", ti.Duration),
		slog.Bool("success", ti.Success),
	}

	if ti.ServiceName != "" {
		attrs = append(attrs, slog.String("service", ti.ServiceName))
	}
	if ti.Operation != "" {
		attrs = append(attrs, slog.String("operation", ti.Operation))
	}
	if includeArguments {
		attrs = append(attrs, slog.Int("argument_bytes", ti.ArgumentBytes))
	}
	if ti.TraceID != "" {
		attrs = append(attrs, slog.String("trace_id", ti.TraceID))
	}
	if ti.SpanID != "" {
		attrs = append(attrs, slog.String("span_id", ti.SpanID))
	}
	if ti.Error != "" {
		attrs = append(attrs, slog.String("error", ti.Error))
	}

	return attrs
}

// AuditLogger provides structured audit logging for tool invocations.
type AuditLogger struct {
	logger           *slog.Logger
	includeArguments bool
	enabled          bool
}

// NewAuditLogger creates an enabled AuditLogger that omits argument sizes.
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return NewAuditLoggerWithConfig(logger, AuditLoggingConfig{Enabled: true})
}

// NewAuditLoggerWithConfig creates a new AuditLogger with the given configuration.
func NewAuditLoggerWithConfig(logger *slog.Logger, config AuditLoggingConfig) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{
		logger:           logger.With(slog.String("component", "audit")),
		includeArguments: config.IncludeArguments,
		enabled:          config.Enabled,
	}
}

// LogToolInvocation writes one audit entry. Failed invocations are logged
// at warn level. A nil or disabled AuditLogger logs nothing.
func (al *AuditLogger) LogToolInvocation(ctx context.Context, ti *ToolInvocation) {
	if al == nil || !al.enabled {
		return
	}

	attrs := ti.LogAttrs(al.includeArguments)
	if ti.Success {
		al.logger.LogAttrs(ctx, slog.LevelInfo, "tool_executed", attrs...)
	} else {
		al.logger.LogAttrs(ctx, slog.LevelWarn, "tool_failed", attrs...)
	}
}
