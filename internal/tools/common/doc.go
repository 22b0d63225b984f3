// Package common provides shared utilities for MCP tool implementations:
// argument parsing and the instrumentation wrapper every tool handler is
// registered through.
package common
