package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/larkdocs/internal/instrumentation"
	"github.com/teemow/larkdocs/internal/lark"
	"github.com/teemow/larkdocs/internal/logging"
	"github.com/teemow/larkdocs/internal/server"
	"github.com/teemow/larkdocs/internal/tools/common"
	"github.com/teemow/larkdocs/internal/tools/docx_tools"
)

// metricsStartupTimeout bounds how long serve waits for the metrics listener.
const metricsStartupTimeout = 5 * time.Second

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server exposing Lark/Feishu
cloud document tools to AI assistants.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - streamable-http: Streamable HTTP transport on /mcp

Authentication:
  The app credentials (--app-id, --app-secret) are always required; the
  tenant access token is obtained and cached by the Lark SDK.

  A user access token is needed for document search and optional for import.
    stdio:           --user-access-token, LARKDOCS_USER_ACCESS_TOKEN or USER_ACCESS_TOKEN
    streamable-http: per request, "Authorization: Bearer <token>" or
                     "X-Lark-User-Access-Token: <token>"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := newViper(configFile)
			if err != nil {
				return err
			}
			if err := v.BindPFlags(cmd.Flags()); err != nil {
				return fmt.Errorf("failed to bind flags: %w", err)
			}

			cfg, err := loadConfig(v)
			if err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			// Setup graceful shutdown
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			return runServe(ctx, cfg, logging.NewLogger(os.Stderr, cfg.Debug))
		},
	}

	addServeFlags(cmd.Flags())

	return cmd
}

func runServe(ctx context.Context, cfg Config, logger *slog.Logger) error {
	slog.SetDefault(logger)

	// Initialize instrumentation provider
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(ctx, instrConfig, logger)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Warn("error during instrumentation shutdown", logging.Err(err))
		}
	}()

	serverContext, specs, mcpSrv, err := newMCPServer(ctx, cfg, logger, provider, instrConfig.AuditLogging)
	if err != nil {
		return err
	}
	defer func() {
		if err := serverContext.Shutdown(); err != nil {
			logger.Warn("error during server context shutdown", logging.Err(err))
		}
	}()

	logger.Info("registered tools", "count", len(specs), "language", string(cfg.Language))

	// Start the appropriate server based on transport type
	switch cfg.Transport {
	case TransportStdio:
		return runStdioServer(mcpSrv, logger)
	case TransportStreamableHTTP:
		return runStreamableHTTPServer(ctx, mcpSrv, serverContext, cfg, len(specs), provider, logger)
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http)", cfg.Transport)
	}
}

// newMCPServer builds the platform client, the server context and the MCP
// server with the docx tools registered.
func newMCPServer(ctx context.Context, cfg Config, logger *slog.Logger, provider *instrumentation.Provider, audit instrumentation.AuditLoggingConfig) (*server.ServerContext, []docx_tools.ToolSpec, *mcpserver.MCPServer, error) {
	client, err := lark.NewClient(lark.Config{
		AppID:     cfg.AppID,
		AppSecret: cfg.AppSecret,
		Domain:    cfg.Domain,
		Timeout:   cfg.Timeout,
		HTTPClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		Logger: logger,
		Debug:  cfg.Debug,
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create lark client: %w", err)
	}

	var platform lark.DocPlatform = client
	if provider.Enabled() {
		platform = common.NewInstrumentedPlatform(client, provider.Metrics())
	}

	serverContext, err := server.NewServerContext(ctx, platform, cfg.UserAccessToken, logger)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create server context: %w", err)
	}

	// Set metrics and audit logger on server context for tool instrumentation
	if provider.Enabled() {
		serverContext.SetMetrics(provider.Metrics())
		serverContext.SetAuditLogger(instrumentation.NewAuditLoggerWithConfig(logger, audit))
	}

	mcpSrv := mcpserver.NewMCPServer("larkdocs", version,
		mcpserver.WithToolCapabilities(true),
	)

	specs, err := docx_tools.RegisterDocxTools(mcpSrv, serverContext, docx_tools.Options{
		Language: cfg.Language,
		Allow:    cfg.Tools,
	})
	if err != nil {
		_ = serverContext.Shutdown()
		return nil, nil, nil, fmt.Errorf("failed to register docx tools: %w", err)
	}

	logger.Debug("lark client ready", "base_url", client.BaseURL(), "user_token", logging.SanitizeToken(cfg.UserAccessToken))
	return serverContext, specs, mcpSrv, nil
}

func runStdioServer(mcpSrv *mcpserver.MCPServer, logger *slog.Logger) error {
	errorLogger := slog.NewLogLogger(logger.Handler(), slog.LevelError)

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv, mcpserver.WithErrorLogger(errorLogger)); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

func runStreamableHTTPServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, serverContext *server.ServerContext, cfg Config, tools int, provider *instrumentation.Provider, logger *slog.Logger) error {
	// Start metrics server if enabled and the prometheus exporter is in use
	if cfg.MetricsEnabled && provider.Enabled() && provider.PrometheusHandler() != nil {
		metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    cfg.MetricsAddr,
			Enabled:                 true,
			InstrumentationProvider: provider,
			Logger:                  logger,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}
		if err := startMetricsServer(metricsServer, logger); err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				logger.Warn("error during metrics server shutdown", logging.Err(err))
			}
		}()
	}

	healthChecker := server.NewHealthChecker(serverContext, version, tools)
	httpServer := server.NewHTTPServer(mcpSrv, server.HTTPServerConfig{
		Addr:    cfg.HTTPAddr,
		Health:  healthChecker,
		Metrics: serverContext.Metrics(),
		Logger:  logger,
	})

	logger.Info("streamable HTTP server starting",
		"addr", cfg.HTTPAddr,
		"endpoint", server.MCPEndpointPath,
		"health", "/healthz, /readyz, /healthz/detailed",
		"user_token_header", "Authorization: Bearer or "+server.UserAccessTokenHeader,
	)

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received, stopping HTTP server")
		healthChecker.SetReady(false)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
		logger.Info("HTTP server stopped normally")
	}

	logger.Info("HTTP server gracefully stopped")
	return nil
}

// startMetricsServer starts ms in the background and waits until it
// listens.
func startMetricsServer(ms *server.MetricsServer, logger *slog.Logger) error {
	ready := make(chan struct{})
	metricsErr := make(chan error, 1)
	go func() {
		if err := ms.StartWithReadySignal(ready); err != nil && !errors.Is(err, http.ErrServerClosed) {
			metricsErr <- err
		}
		close(metricsErr)
	}()

	select {
	case <-ready:
		logger.Info("metrics server started", "addr", ms.Addr())
		return nil
	case err := <-metricsErr:
		return fmt.Errorf("metrics server failed to start: %w", err)
	case <-time.After(metricsStartupTimeout):
		return errors.New("metrics server startup timed out")
	}
}
