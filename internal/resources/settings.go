package resources

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/calbot/internal/calendar"
	"github.com/teemow/calbot/internal/server"
)

// SettingsURI is the URI of the settings resource.
const SettingsURI = "calbot://settings"

// Settings is the content of the settings resource.
type Settings struct {
	Backend      string `json:"backend"`
	CalendarID   string `json:"calendar_id,omitempty"`
	Timezone     string `json:"timezone"`
	Today        string `json:"today"`
	Now          string `json:"now"`
	DefaultTitle string `json:"default_title"`
}

// RegisterSettingsResources registers the settings resource.
func RegisterSettingsResources(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	if sc == nil {
		return fmt.Errorf("server context is required")
	}

	settingsResource := mcp.NewResource(
		SettingsURI,
		"Scheduling Settings",
		mcp.WithResourceDescription("Calendar backend, time zone, today's date and the default event title"),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(settingsResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleSettings(request, sc, time.Now)
	})

	return nil
}

// CurrentSettings describes sc as of now.
func CurrentSettings(sc *server.ServerContext, now time.Time) Settings {
	loc := sc.Location()
	local := now.In(loc)

	settings := Settings{
		Backend:      sc.Backend().Name(),
		Timezone:     loc.String(),
		Today:        civil.DateOf(local).String(),
		Now:          local.Format(time.RFC3339),
		DefaultTitle: sc.Title(),
	}
	if client, ok := calendar.AsGoogle(sc.Backend()); ok {
		settings.CalendarID = client.CalendarID()
	}
	return settings
}

func handleSettings(request mcp.ReadResourceRequest, sc *server.ServerContext, now func() time.Time) ([]mcp.ResourceContents, error) {
	jsonData, err := json.MarshalIndent(CurrentSettings(sc, now()), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal settings: %w", err)
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(jsonData),
		},
	}, nil
}
