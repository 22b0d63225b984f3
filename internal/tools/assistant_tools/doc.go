// Package assistant_tools exposes the scheduling assistant as an MCP tool.
// A client passes a free-form English request and receives the assistant's
// reply, optionally with the full pipeline state as JSON.
package assistant_tools
