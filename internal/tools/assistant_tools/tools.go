package assistant_tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/calbot/internal/server"
	"github.com/teemow/calbot/internal/tools/common"
)

// ToolRequest is the name of the assistant tool.
const ToolRequest = "assistant_request"

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// RegisterAssistantTools registers the assistant tool with the MCP server.
func RegisterAssistantTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	if sc == nil {
		return fmt.Errorf("server context is required")
	}

	requestTool := mcp.NewTool(ToolRequest,
		mcp.WithDescription("Ask the scheduling assistant to check or book a time slot, e.g. 'Book a meeting tomorrow afternoon'"),
		mcp.WithString("input",
			mcp.Required(),
			mcp.Description("The request in plain English"),
		),
		mcp.WithString("format",
			mcp.Description("Output format: 'text' (reply only, default) or 'json' (full request state)"),
			mcp.Enum(FormatText, FormatJSON),
		),
	)

	s.AddTool(requestTool, common.InstrumentedToolHandler(ToolRequest, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleRequest(ctx, request, sc)
		}))

	return nil
}

func handleRequest(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	input := common.StringArg(args, "input")
	if strings.TrimSpace(input) == "" {
		return mcp.NewToolResultError("input is required"), nil
	}

	format := common.StringArg(args, "format")
	if format == "" {
		format = FormatText
	}
	if format != FormatText && format != FormatJSON {
		return mcp.NewToolResultError(fmt.Sprintf("unsupported format %q", format)), nil
	}

	state := sc.Pipeline().Run(ctx, input)

	if format == FormatText {
		return mcp.NewToolResultText(state.Response), nil
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to encode state: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
