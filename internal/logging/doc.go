// Package logging provides structured logging utilities for larkdocs.
//
// Everything logs through the standard library's slog package. This package
// keeps attribute names consistent across the tool handlers, the platform
// client and the server, and bridges the Lark SDK's logger interface onto
// slog so SDK output ends up in the same stream.
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithTool(slog.Default(), "docx.builtin.import")
//	logger.Info("import task created",
//	    logging.Ticket(ticket),
//	    logging.AuthMode("tenant"))
//
// Hand the SDK a logger:
//
//	client := lark.NewClient(appID, appSecret,
//	    lark.WithLogger(logging.NewLarkLogger(logger)))
//
// # Security Considerations
//
// Access tokens are never logged directly; use SanitizeToken. Markdown
// content and search keys are user data and are only ever logged as sizes.
package logging
