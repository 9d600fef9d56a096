package logging

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	larkcore "github.com/larksuite/oapi-sdk-go/v3/core"
)

// LarkLogger adapts an slog.Logger to the Lark SDK's larkcore.Logger
// interface so that SDK diagnostics share the application's log stream.
type LarkLogger struct {
	logger *slog.Logger
}

var _ larkcore.Logger = (*LarkLogger)(nil)

// NewLarkLogger creates a LarkLogger wrapping the given slog.Logger.
// If logger is nil, slog.Default() is used.
func NewLarkLogger(logger *slog.Logger) *LarkLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &LarkLogger{logger: logger.With(slog.String(KeyService, "lark-sdk"))}
}

// Debug logs SDK debug output.
func (l *LarkLogger) Debug(ctx context.Context, args ...interface{}) {
	l.logger.DebugContext(ctx, joinArgs(args))
}

// Info logs SDK informational output.
func (l *LarkLogger) Info(ctx context.Context, args ...interface{}) {
	l.logger.InfoContext(ctx, joinArgs(args))
}

// Warn logs SDK warnings.
func (l *LarkLogger) Warn(ctx context.Context, args ...interface{}) {
	l.logger.WarnContext(ctx, joinArgs(args))
}

// Error logs SDK errors.
func (l *LarkLogger) Error(ctx context.Context, args ...interface{}) {
	l.logger.ErrorContext(ctx, joinArgs(args))
}

// Logger returns the underlying slog.Logger.
func (l *LarkLogger) Logger() *slog.Logger {
	return l.logger
}

// joinArgs renders the SDK's variadic arguments the way fmt.Println would,
// minus the trailing newline.
func joinArgs(args []interface{}) string {
	parts := make([]string, 0, len(args))
	for _, a := range args {
		parts = append(parts, fmt.Sprint(a))
	}
	return strings.Join(parts, " ")
}
