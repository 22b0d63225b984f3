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

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/calbot/internal/config"
	"github.com/teemow/calbot/internal/resources"
	"github.com/teemow/calbot/internal/server"
	"github.com/teemow/calbot/internal/tools/assistant_tools"
	"github.com/teemow/calbot/internal/tools/calendar_tools"
)

// startupTimeout bounds how long a listener may take to bind.
const startupTimeout = 5 * time.Second

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the MCP server to provide scheduling tools for AI assistants.

Supports two transport types:
  - stdio: Standard input/output (default)
  - streamable-http: HTTP server with the MCP endpoint at /mcp, the calendar
    API (GET /check, POST /book, POST /ask) and health checks

The calendar API is the one the remote backend talks to, so one calbot can
serve the calendar for others started with --calendar-backend=remote.

Metrics are served on a dedicated port (--metrics-addr) when
--metrics-enabled is set and instrumentation exports to Prometheus.

Environment Variables:
  CALBOT_SERVE_TRANSPORT, CALBOT_SERVE_ADDR
  CALBOT_METRICS_ENABLED, CALBOT_METRICS_ADDR
  CALBOT_RATELIMIT_RPS, CALBOT_RATELIMIT_BURST
  CALBOT_LOCK_REDIS_URL, CALBOT_LOCK_TTL
  INSTRUMENTATION_ENABLED, METRICS_EXPORTER, TRACING_EXPORTER`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), cfg)
		},
	}

	f := cmd.Flags()
	f.String("transport", config.TransportStdio, "Transport type: stdio or streamable-http")
	f.String("http-addr", config.DefaultServeAddr, "HTTP server address (for streamable-http transport)")
	f.Bool("metrics-enabled", false, "Enable the metrics server on a dedicated port")
	f.String("metrics-addr", config.DefaultMetricsAddr, "Metrics server address")
	f.Float64("rate-limit-rps", 0, "Requests per second allowed per client IP on the HTTP API (0 disables)")
	f.Int("rate-limit-burst", 10, "Burst size of the per client rate limit")
	f.String("lock-redis-url", "", "Redis URL for the distributed slot lock (e.g. redis://localhost:6379/0)")
	f.Duration("lock-ttl", config.DefaultLockTTL, "Maximum time a slot stays locked")

	bindFlags(v, f, map[string]string{
		config.KeyServeTransport: "transport",
		config.KeyServeAddr:      "http-addr",
		config.KeyMetricsEnabled: "metrics-enabled",
		config.KeyMetricsAddr:    "metrics-addr",
		config.KeyRateLimitRPS:   "rate-limit-rps",
		config.KeyRateLimitBurst: "rate-limit-burst",
		config.KeyLockRedisURL:   "lock-redis-url",
		config.KeyLockTTL:        "lock-ttl",
	})

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config) error {
	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := newApp(shutdownCtx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := a.Close(closeCtx); err != nil {
			slog.Error("error during shutdown", "error", err)
		}
	}()

	mcpSrv, err := newMCPServer(a.sc)
	if err != nil {
		return err
	}

	switch cfg.Serve.Transport {
	case config.TransportStdio:
		return runStdioServer(mcpSrv)
	case config.TransportStreamableHTTP:
		return runStreamableHTTPServer(shutdownCtx, a, mcpSrv)
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http)", cfg.Serve.Transport)
	}
}

// newMCPServer creates the MCP server with every tool registered.
func newMCPServer(sc *server.ServerContext) (*mcpserver.MCPServer, error) {
	mcpSrv := mcpserver.NewMCPServer("calbot", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false), // Subscribe and listChanged
	)
	if err := registerAllTools(mcpSrv, sc); err != nil {
		return nil, err
	}
	return mcpSrv, nil
}

// registerAllTools registers all MCP tools and resources
func registerAllTools(mcpSrv *mcpserver.MCPServer, sc *server.ServerContext) error {
	type toolRegistration struct {
		name     string
		register func() error
	}

	registrations := []toolRegistration{
		{
			name: "Assistant tools",
			register: func() error {
				return assistant_tools.RegisterAssistantTools(mcpSrv, sc)
			},
		},
		{
			name: "Calendar tools",
			register: func() error {
				return calendar_tools.RegisterCalendarTools(mcpSrv, sc)
			},
		},
		{
			name: "Settings Resources",
			register: func() error {
				return resources.RegisterSettingsResources(mcpSrv, sc)
			},
		},
	}

	for _, reg := range registrations {
		if err := reg.register(); err != nil {
			return fmt.Errorf("failed to register %s: %w", reg.name, err)
		}
	}

	return nil
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

func runStreamableHTTPServer(ctx context.Context, a *app, mcpSrv *mcpserver.MCPServer) error {
	metricsServer, err := startMetricsServer(a)
	if err != nil {
		return err
	}
	if metricsServer != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				slog.Error("error during metrics server shutdown", "error", err)
			}
		}()
	}

	httpServer := server.NewHTTPServer(a.sc, server.HTTPServerConfig{
		Addr:           a.cfg.Serve.Addr,
		MCPServer:      mcpSrv,
		RateLimitRPS:   a.cfg.RateLimit.RPS,
		RateLimitBurst: a.cfg.RateLimit.Burst,
	})

	ready := make(chan struct{})
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.Start(ready); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverDone <- err
		}
	}()

	select {
	case <-ready:
		slog.Info("calbot HTTP server started",
			"addr", httpServer.Addr(),
			"backend", a.backend.Name(),
			"timezone", a.cfg.Timezone)
	case err := <-serverDone:
		return fmt.Errorf("HTTP server failed to start: %w", err)
	case <-time.After(startupTimeout):
		return fmt.Errorf("HTTP server startup timed out")
	}

	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received, stopping HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
		return nil
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
		return nil
	}
}

// startMetricsServer starts the metrics server when enabled. A nil server
// and no error means metrics are not served.
func startMetricsServer(a *app) (*server.MetricsServer, error) {
	if !a.cfg.Metrics.Enabled {
		return nil, nil
	}
	if !a.provider.ServesPrometheus() {
		slog.Warn("metrics server not started: instrumentation is disabled or does not export to prometheus")
		return nil, nil
	}

	metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
		Addr:                    a.cfg.Metrics.Addr,
		InstrumentationProvider: a.provider,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics server: %w", err)
	}

	// Use ready channel to confirm metrics server started successfully
	metricsReady := make(chan struct{})
	metricsErr := make(chan error, 1)
	go func() {
		if err := metricsServer.StartWithReadySignal(metricsReady); err != nil && !errors.Is(err, http.ErrServerClosed) {
			metricsErr <- err
		}
		close(metricsErr)
	}()

	select {
	case <-metricsReady:
		slog.Info("metrics server started", "addr", metricsServer.Addr())
		return metricsServer, nil
	case err := <-metricsErr:
		return nil, fmt.Errorf("metrics server failed to start: %w", err)
	case <-time.After(startupTimeout):
		return nil, fmt.Errorf("metrics server startup timed out")
	}
}
