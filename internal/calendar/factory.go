package calendar

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/oauth2"

	"github.com/teemow/calbot/internal/google"
	"github.com/teemow/calbot/internal/instrumentation"
)

// Config selects and configures a backend.
type Config struct {
	// Backend is BackendGoogle or BackendRemote. Empty means google.
	Backend string

	// CalendarID and Availability apply to the Google backend.
	CalendarID   string
	Availability string
	OAuth        *oauth2.Config
	Tokens       google.TokenProvider

	// RemoteURL is the base URL of the remote calbot API.
	RemoteURL string

	// Location is the zone hour ranges are read in.
	Location *time.Location

	// Timeout bounds remote HTTP calls.
	Timeout time.Duration

	Metrics *instrumentation.Metrics
	Logger  *slog.Logger
}

// NewFromConfig builds the configured backend wrapped in Instrumented.
func NewFromConfig(ctx context.Context, cfg Config) (Backend, error) {
	var backend Backend

	switch cfg.Backend {
	case BackendGoogle, "":
		if cfg.OAuth == nil {
			return nil, fmt.Errorf("google backend requires an OAuth configuration")
		}
		client, err := NewClient(ctx, cfg.OAuth, cfg.Tokens,
			WithCalendarID(cfg.CalendarID),
			WithLocation(cfg.Location),
			WithAvailability(cfg.Availability),
			WithLogger(cfg.Logger))
		if err != nil {
			return nil, err
		}
		backend = client

	case BackendRemote:
		if cfg.RemoteURL == "" {
			return nil, fmt.Errorf("remote backend requires a URL")
		}
		client, err := NewRemoteClient(cfg.RemoteURL, nil, cfg.Timeout)
		if err != nil {
			return nil, err
		}
		backend = client

	default:
		return nil, fmt.Errorf("unknown calendar backend %q, must be one of: google, remote", cfg.Backend)
	}

	return NewInstrumented(backend, cfg.Metrics), nil
}
