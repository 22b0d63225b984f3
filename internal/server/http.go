package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
)

// HTTPServerConfig configures HTTPServer.
type HTTPServerConfig struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string

	// MCPServer is served at /mcp with the streamable HTTP transport when set.
	MCPServer *mcpserver.MCPServer

	// RateLimitRPS limits requests per client IP. Zero disables limiting.
	RateLimitRPS   float64
	RateLimitBurst int
}

// HTTPServer serves the calendar API, the assistant, MCP and health
// endpoints on one port.
type HTTPServer struct {
	sc         *ServerContext
	health     *HealthChecker
	limiter    *RateLimiter
	httpServer *http.Server
	addr       string
}

// NewHTTPServer builds the server for sc.
func NewHTTPServer(sc *ServerContext, config HTTPServerConfig) *HTTPServer {
	s := &HTTPServer{
		sc:     sc,
		health: NewHealthChecker(sc),
		addr:   config.Addr,
	}

	mux := http.NewServeMux()
	NewAPI(sc).Register(mux)
	s.health.RegisterHealthEndpoints(mux)

	if config.MCPServer != nil {
		mux.Handle("/mcp", mcpserver.NewStreamableHTTPServer(config.MCPServer,
			mcpserver.WithEndpointPath("/mcp"),
		))
	}

	var handler http.Handler = mux
	handler = MetricsMiddleware(sc.Metrics(), handler)
	if config.RateLimitRPS > 0 {
		s.limiter = NewRateLimiter(config.RateLimitRPS, config.RateLimitBurst, sc.Logger())
		handler = s.limiter.Middleware(handler)
	}

	s.httpServer = &http.Server{
		Addr:              config.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Handler returns the root handler, mostly for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.httpServer.Handler
}

// Health returns the health checker.
func (s *HTTPServer) Health() *HealthChecker {
	return s.health
}

// Addr returns the address, the bound one once started.
func (s *HTTPServer) Addr() string {
	return s.addr
}

// Start binds the listener and serves until Shutdown. ready, when not nil,
// is closed once the listener is bound.
func (s *HTTPServer) Start(ready chan<- struct{}) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	s.addr = ln.Addr().String()

	if s.limiter != nil {
		go s.cleanupLimiter()
	}

	s.sc.Logger().Info("starting HTTP server", slog.String("addr", s.addr))
	if ready != nil {
		close(ready)
	}
	return s.httpServer.Serve(ln)
}

func (s *HTTPServer) cleanupLimiter() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-s.sc.Context().Done():
			return
		case <-ticker.C:
			s.limiter.Cleanup()
		}
	}
}

// Shutdown marks the server not ready and drains connections.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.health.SetReady(false)
	return s.httpServer.Shutdown(ctx)
}
