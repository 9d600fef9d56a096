package common

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/larkdocs/internal/instrumentation"
	"github.com/teemow/larkdocs/internal/server"
)

// errToolResult marks an invocation whose envelope had isError set.
var errToolResult = errors.New("tool returned an error result")

// InstrumentedToolHandler wraps a tool handler with a tool span, metrics and
// audit logging. serviceName is the platform service the tool talks to and
// is recorded on the audit entry.
//
// Usage:
//
//	s.AddTool(tool, common.InstrumentedToolHandler("docx_builtin_search", instrumentation.ServiceDocx, sc, handler))
func InstrumentedToolHandler(
	toolName string,
	serviceName string,
	sc *server.ServerContext,
	handler mcpserver.ToolHandlerFunc,
) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		metrics := sc.Metrics()
		auditLogger := sc.AuditLogger()

		if metrics == nil && auditLogger == nil {
			return handler(ctx, request)
		}

		ctx, span := instrumentation.StartToolSpan(ctx, toolName,
			instrumentation.NewSpanAttributeBuilder().WithService(serviceName).Build()...)
		defer span.End()

		start := time.Now()
		invocation := instrumentation.NewToolInvocation(toolName).
			WithSpanContext(ctx).
			WithService(serviceName, toolName).
			WithUserToken(UserAccessToken(ctx, sc) != "").
			WithArgumentBytes(argumentBytes(request))

		result, err := handler(ctx, request)
		duration := time.Since(start)

		status := instrumentation.StatusSuccess
		switch {
		case err != nil:
			status = instrumentation.StatusError
			invocation.Complete(false, err)
			instrumentation.SetSpanError(span, err)
		case result != nil && result.IsError:
			status = instrumentation.StatusError
			invocation.Complete(false, nil)
			instrumentation.SetSpanError(span, errToolResult)
		default:
			invocation.Complete(true, nil)
			instrumentation.SetSpanSuccess(span)
		}

		metrics.RecordToolInvocation(ctx, toolName, status, duration)
		auditLogger.LogToolInvocation(ctx, invocation)

		return result, err
	}
}

// argumentBytes is the encoded size of the call's arguments.
func argumentBytes(request mcp.CallToolRequest) int {
	args := request.GetRawArguments()
	if args == nil {
		return 0
	}
	b, err := json.Marshal(args)
	if err != nil {
		return 0
	}
	return len(b)
}
