package calendar_tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/calbot/internal/assistant"
	"github.com/teemow/calbot/internal/server"
	"github.com/teemow/calbot/internal/slotlock"
	"github.com/teemow/calbot/internal/tools/common"
)

// Tool names.
const (
	ToolCheckSlot  = "calendar_check_slot"
	ToolBookSlot   = "calendar_book_slot"
	ToolListEvents = "calendar_list_events"
)

// RegisterSlotTools registers the check and book tools.
func RegisterSlotTools(s *mcpserver.MCPServer, sc *server.ServerContext) {
	checkTool := mcp.NewTool(ToolCheckSlot,
		mcp.WithDescription("Check whether an hour range on a date is free in the calendar"),
		mcp.WithString("date",
			mcp.Required(),
			mcp.Description("Date in YYYY-MM-DD format"),
		),
		mcp.WithNumber("start_hour",
			mcp.Required(),
			mcp.Description("Start hour (0-23) in the configured time zone"),
		),
		mcp.WithNumber("end_hour",
			mcp.Required(),
			mcp.Description("End hour (1-24), exclusive"),
		),
	)

	s.AddTool(checkTool, common.InstrumentedToolHandler(ToolCheckSlot, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCheckSlot(ctx, request, sc)
		}))

	bookTool := mcp.NewTool(ToolBookSlot,
		mcp.WithDescription("Book an hour range on a date if it is free"),
		mcp.WithString("date",
			mcp.Required(),
			mcp.Description("Date in YYYY-MM-DD format"),
		),
		mcp.WithNumber("start_hour",
			mcp.Required(),
			mcp.Description("Start hour (0-23) in the configured time zone"),
		),
		mcp.WithNumber("end_hour",
			mcp.Required(),
			mcp.Description("End hour (1-24), exclusive"),
		),
		mcp.WithString("title",
			mcp.Description(fmt.Sprintf("Event title (default: %q)", sc.Title())),
		),
	)

	s.AddTool(bookTool, common.InstrumentedToolHandler(ToolBookSlot, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleBookSlot(ctx, request, sc)
		}))
}

func handleCheckSlot(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	date, start, end, err := common.SlotArgs(request.GetArguments())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	free, err := sc.Backend().CheckFree(ctx, date, start, end)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to check availability: %v", err)), nil
	}

	hours := assistant.HourRange{Start: start, End: end}
	if free {
		return mcp.NewToolResultText(fmt.Sprintf("%s %s is free.", date, hours)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s %s is busy.", date, hours)), nil
}

func handleBookSlot(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	date, start, end, err := common.SlotArgs(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	title := common.StringArg(args, "title")

	booked, err := sc.BookSlot(ctx, date, start, end, title)
	if err != nil {
		if errors.Is(err, slotlock.ErrLocked) {
			return mcp.NewToolResultError("Another booking for this slot is in progress, try again shortly."), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("Failed to book slot: %v", err)), nil
	}

	hours := assistant.HourRange{Start: start, End: end}
	if !booked {
		return mcp.NewToolResultText(fmt.Sprintf("%s %s is busy, nothing was booked.", date, hours)), nil
	}
	if title == "" {
		title = sc.Title()
	}
	return mcp.NewToolResultText(fmt.Sprintf("Booked %q on %s %s.", title, date, hours)), nil
}
