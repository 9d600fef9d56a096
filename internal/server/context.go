package server

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/teemow/larkdocs/internal/instrumentation"
	"github.com/teemow/larkdocs/internal/lark"
)

// ServerContext holds the shared dependencies of the MCP server
type ServerContext struct {
	ctx             context.Context
	cancel          context.CancelFunc
	platform        lark.DocPlatform
	userAccessToken string
	logger          *slog.Logger
	metrics         *instrumentation.Metrics
	auditLogger     *instrumentation.AuditLogger
	mu              sync.RWMutex
	shutdown        bool
}

// NewServerContext creates a new server context around platform.
// userAccessToken is the statically configured user token, if any; the HTTP
// transport can override it per request.
func NewServerContext(ctx context.Context, platform lark.DocPlatform, userAccessToken string, logger *slog.Logger) (*ServerContext, error) {
	if platform == nil {
		return nil, errors.New("platform client is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	shutdownCtx, cancel := context.WithCancel(ctx)

	return &ServerContext{
		ctx:             shutdownCtx,
		cancel:          cancel,
		platform:        platform,
		userAccessToken: userAccessToken,
		logger:          logger,
	}, nil
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Platform returns the Lark platform client
func (sc *ServerContext) Platform() lark.DocPlatform {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.platform
}

// UserAccessToken returns the configured user access token
func (sc *ServerContext) UserAccessToken() string {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.userAccessToken
}

// Logger returns the server logger
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.logger
}

// SetMetrics sets the metrics recorder
func (sc *ServerContext) SetMetrics(m *instrumentation.Metrics) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.metrics = m
}

// Metrics returns the metrics recorder; nil when instrumentation is off
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.metrics
}

// SetAuditLogger sets the audit logger
func (sc *ServerContext) SetAuditLogger(al *instrumentation.AuditLogger) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.auditLogger = al
}

// AuditLogger returns the audit logger; nil when audit logging is off
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.auditLogger
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
