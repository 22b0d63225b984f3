// Package server provides the shared server context and the HTTP side of
// calbot.
//
// # Key Components
//
// ServerContext owns the assistant pipeline, the calendar backend and the
// slot lock for the lifetime of a `calbot serve` process. MCP tools and HTTP
// handlers both read their dependencies from it.
//
// HTTPServer exposes:
//   - GET / for a status message
//   - GET /check and POST /book, the calendar API RemoteClient talks to
//   - POST /ask, one assistant run returning the final state
//   - /mcp, the MCP streamable HTTP endpoint when an MCP server is attached
//   - /healthz, /readyz and /healthz/detailed from HealthChecker
//
// Requests pass through a metrics middleware and an optional per-client rate
// limiter. MetricsServer serves Prometheus metrics on a separate port.
package server
