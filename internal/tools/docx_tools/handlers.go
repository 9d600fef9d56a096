package docx_tools

import (
	"context"
	"log/slog"

	"github.com/teemow/larkdocs/internal/instrumentation"
	"github.com/teemow/larkdocs/internal/server"
)

// Handlers implements the docx tool handlers on top of a server context.
// Handlers share no mutable state and are safe for concurrent use.
type Handlers struct {
	sc   *server.ServerContext
	Poll PollPolicy
}

// NewHandlers returns handlers using DefaultPollPolicy.
func NewHandlers(sc *server.ServerContext) *Handlers {
	return &Handlers{sc: sc, Poll: DefaultPollPolicy}
}

// logger returns the server logger, tagged with the trace id when ctx
// carries a sampled span.
func (h *Handlers) logger(ctx context.Context) *slog.Logger {
	logger := h.sc.Logger()
	if traceID := instrumentation.GetTraceID(ctx); traceID != "" {
		logger = logger.With(slog.String("trace_id", traceID))
	}
	return logger
}
