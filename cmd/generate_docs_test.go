package cmd

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToolsDocumentation(t *testing.T) {
	markdown, err := toolsDocumentation(context.Background())
	require.NoError(t, err)

	assert.Contains(t, markdown, "# MCP Tools Reference")
	assert.Contains(t, markdown, "- [Assistant Tools](#assistant-tools)")
	assert.Contains(t, markdown, "- [Calendar Tools](#calendar-tools)")
	for _, name := range []string{"assistant_request", "calendar_check_slot", "calendar_book_slot", "calendar_list_events"} {
		assert.Contains(t, markdown, "### "+name)
	}
	assert.Contains(t, markdown, "- `date` (required): Date in YYYY-MM-DD format")
	assert.Contains(t, markdown, "- `title` (optional):")
}

func TestGetCategoryFromToolName(t *testing.T) {
	assert.Equal(t, "Assistant Tools", getCategoryFromToolName("assistant_request"))
	assert.Equal(t, "Calendar Tools", getCategoryFromToolName("calendar_book_slot"))
	assert.Equal(t, "Other", getCategoryFromToolName("misc"))
}

func TestGenerateToolMarkdown(t *testing.T) {
	tool := mcp.NewTool("calendar_check_slot",
		mcp.WithDescription("Check a slot"),
		mcp.WithNumber("start_hour", mcp.Required()),
		mcp.WithString("note", mcp.Description("A note")),
	)

	md := generateToolMarkdown(tool)
	assert.Contains(t, md, "### calendar_check_slot\n\nCheck a slot\n\n")
	assert.Contains(t, md, "- `note` (optional): A note\n")
	assert.Contains(t, md, "- `start_hour` (required): number parameter\n")
}
