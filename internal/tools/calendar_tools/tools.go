package calendar_tools

import (
	"fmt"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/calbot/internal/calendar"
	"github.com/teemow/calbot/internal/server"
)

// RegisterCalendarTools registers all calendar tools with the MCP server.
func RegisterCalendarTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	if sc == nil {
		return fmt.Errorf("server context is required")
	}

	RegisterSlotTools(s, sc)

	// Listing events needs the Google API; the remote backend only answers
	// check and book.
	if _, ok := calendar.AsGoogle(sc.Backend()); ok {
		RegisterEventTools(s, sc)
	}

	return nil
}
