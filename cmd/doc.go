// Package cmd implements the command-line interface for calbot.
//
// This package provides the following commands:
//   - chat: Interactive scheduling assistant with a conversation transcript
//   - ask: Run a single request through the assistant
//   - serve: Start the MCP server and HTTP API
//   - auth: Authorize Google Calendar access
//   - generate-docs: Generate markdown documentation for all MCP tools
//   - version: Display version information
//
// The chat command is the default command when no subcommand is specified.
package cmd
