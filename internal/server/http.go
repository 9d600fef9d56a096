package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/teemow/larkdocs/internal/instrumentation"
)

const (
	// DefaultHTTPAddr is the default address for the streamable HTTP transport.
	DefaultHTTPAddr = ":8080"

	// MCPEndpointPath is where the streamable HTTP transport is mounted.
	MCPEndpointPath = "/mcp"

	// An import polls for several seconds on top of three platform calls, so
	// the write timeout is well above the request timeout.
	defaultHTTPWriteTimeout = 2 * time.Minute
	defaultHTTPIdleTimeout  = 120 * time.Second
	defaultHTTPReadTimeout  = 10 * time.Second
)

// HTTPServerConfig holds configuration for the streamable HTTP transport.
type HTTPServerConfig struct {
	Addr string

	// Health registers /healthz, /readyz and /healthz/detailed when set
	Health *HealthChecker

	// Metrics records per-request HTTP metrics; may be nil
	Metrics *instrumentation.Metrics

	Logger *slog.Logger
}

// HTTPServer serves an MCP server over streamable HTTP. Each request's user
// access token is taken from its headers and handed to tool handlers through
// the request context.
type HTTPServer struct {
	httpServer *http.Server
	handler    http.Handler
	addr       string
	logger     *slog.Logger
}

// NewHTTPServer creates the HTTP transport for mcpSrv.
func NewHTTPServer(mcpSrv *mcpserver.MCPServer, config HTTPServerConfig) *HTTPServer {
	if config.Addr == "" {
		config.Addr = DefaultHTTPAddr
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	streamable := mcpserver.NewStreamableHTTPServer(mcpSrv,
		mcpserver.WithEndpointPath(MCPEndpointPath),
		mcpserver.WithHTTPContextFunc(HTTPContextFunc),
	)

	mux := http.NewServeMux()
	mux.Handle(MCPEndpointPath, otelhttp.NewHandler(
		metricsMiddleware(config.Metrics, streamable),
		"mcp",
	))
	if config.Health != nil {
		config.Health.RegisterHealthEndpoints(mux)
	}

	return &HTTPServer{
		handler: mux,
		addr:    config.Addr,
		logger:  logger,
	}
}

// Handler returns the server's routes.
func (s *HTTPServer) Handler() http.Handler {
	return s.handler
}

// Addr returns the configured listen address.
func (s *HTTPServer) Addr() string {
	return s.addr
}

// Start serves until Shutdown is called. It returns http.ErrServerClosed
// after a graceful shutdown.
func (s *HTTPServer) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.handler,
		ReadHeaderTimeout: defaultHTTPReadTimeout,
		WriteTimeout:      defaultHTTPWriteTimeout,
		IdleTimeout:       defaultHTTPIdleTimeout,
	}

	s.logger.Info("starting streamable HTTP server", "addr", s.addr, "endpoint", MCPEndpointPath)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// metricsMiddleware records request counts and durations.
func metricsMiddleware(m *instrumentation.Metrics, next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		m.RecordHTTPRequest(r.Context(), r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}

// statusRecorder captures the response status while keeping streaming
// responses flushable.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
