package calendar_tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/calbot/internal/calendar"
	"github.com/teemow/calbot/internal/server"
	"github.com/teemow/calbot/internal/tools/common"
)

// RegisterEventTools registers the read-only event listing tool.
func RegisterEventTools(s *mcpserver.MCPServer, sc *server.ServerContext) {
	listEventsTool := mcp.NewTool(ToolListEvents,
		mcp.WithDescription("List the calendar events of a day"),
		mcp.WithString("date",
			mcp.Required(),
			mcp.Description("Date in YYYY-MM-DD format"),
		),
		mcp.WithString("query",
			mcp.Description("Free text search terms to filter events"),
		),
	)

	s.AddTool(listEventsTool, common.InstrumentedToolHandler(ToolListEvents, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListEvents(ctx, request, sc)
		}))
}

func handleListEvents(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	date, err := common.DateArg(args, "date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, ok := calendar.AsGoogle(sc.Backend())
	if !ok {
		return mcp.NewToolResultError("Listing events requires the Google Calendar backend"), nil
	}

	timeMin, timeMax, err := calendar.SlotBounds(date, 0, 24, sc.Location())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	events, err := client.ListEvents(ctx, timeMin, timeMax, common.StringArg(args, "query"))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list events: %v", err)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d events on %s:\n\n", len(events), date)
	for i, event := range events {
		fmt.Fprintf(&b, "%d. %s\n", i+1, event.Summary)
		fmt.Fprintf(&b, "   ID: %s\n", event.ID)
		if event.AllDay {
			b.WriteString("   All day\n")
		} else {
			fmt.Fprintf(&b, "   Start: %s\n", event.Start.In(sc.Location()).Format(time.RFC3339))
			fmt.Fprintf(&b, "   End: %s\n", event.End.In(sc.Location()).Format(time.RFC3339))
		}
		if event.Location != "" {
			fmt.Fprintf(&b, "   Location: %s\n", event.Location)
		}
		if event.HTMLLink != "" {
			fmt.Fprintf(&b, "   Link: %s\n", event.HTMLLink)
		}
		b.WriteString("\n")
	}

	return mcp.NewToolResultText(b.String()), nil
}
