package calendar

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"cloud.google.com/go/civil"
	"golang.org/x/oauth2"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/teemow/calbot/internal/google"
	"github.com/teemow/calbot/internal/logging"
)

// DefaultCalendarID is the calendar used when none is configured.
const DefaultCalendarID = "primary"

// Client wraps the Google Calendar service
type Client struct {
	svc          *calendar.Service
	calendarID   string
	location     *time.Location
	availability string
	logger       *slog.Logger
	serviceOpts  []option.ClientOption
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithCalendarID selects the calendar to check and book. Defaults to "primary".
func WithCalendarID(id string) ClientOption {
	return func(c *Client) {
		if id != "" {
			c.calendarID = id
		}
	}
}

// WithLocation sets the zone hour ranges are interpreted in. Defaults to UTC.
func WithLocation(loc *time.Location) ClientOption {
	return func(c *Client) {
		if loc != nil {
			c.location = loc
		}
	}
}

// WithAvailability selects how CheckFree decides, AvailabilityEvents or
// AvailabilityFreeBusy.
func WithAvailability(mode string) ClientOption {
	return func(c *Client) {
		if mode != "" {
			c.availability = mode
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithServiceOptions passes extra options to the Calendar service, such as
// option.WithEndpoint.
func WithServiceOptions(opts ...option.ClientOption) ClientOption {
	return func(c *Client) {
		c.serviceOpts = append(c.serviceOpts, opts...)
	}
}

// NewClient creates a Calendar client authorized with the token from
// tokenProvider.
func NewClient(ctx context.Context, conf *oauth2.Config, tokenProvider google.TokenProvider, opts ...ClientOption) (*Client, error) {
	httpClient, err := google.HTTPClient(ctx, conf, tokenProvider)
	if err != nil {
		return nil, err
	}
	return NewClientWithHTTP(ctx, httpClient, opts...)
}

// NewClientWithHTTP creates a Calendar client on a caller supplied HTTP
// client.
func NewClientWithHTTP(ctx context.Context, httpClient *http.Client, opts ...ClientOption) (*Client, error) {
	c := &Client{
		calendarID:   DefaultCalendarID,
		location:     time.UTC,
		availability: AvailabilityEvents,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	switch c.availability {
	case AvailabilityEvents, AvailabilityFreeBusy:
	default:
		return nil, fmt.Errorf("unknown availability mode %q", c.availability)
	}

	svcOpts := append([]option.ClientOption{option.WithHTTPClient(httpClient)}, c.serviceOpts...)
	svc, err := calendar.NewService(ctx, svcOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}
	c.svc = svc
	c.logger = logging.WithBackend(c.logger, BackendGoogle)

	return c, nil
}

// Name implements Backend.
func (c *Client) Name() string {
	return BackendGoogle
}

// CalendarID returns the calendar this client checks and books.
func (c *Client) CalendarID() string {
	return c.calendarID
}

// CheckFree reports whether the slot is free. In events mode the slot is
// free when no event returned for the window overlaps it.
func (c *Client) CheckFree(ctx context.Context, date civil.Date, startHour, endHour int) (bool, error) {
	start, end, err := SlotBounds(date, startHour, endHour, c.location)
	if err != nil {
		return false, err
	}

	if c.availability == AvailabilityFreeBusy {
		infos, err := c.QueryFreeBusy(ctx, start, end, []string{c.calendarID})
		if err != nil {
			return false, err
		}
		for _, info := range infos {
			if len(info.Errors) > 0 {
				return false, fmt.Errorf("freebusy query for %s failed: %v", info.Calendar, info.Errors)
			}
			for _, busy := range info.Busy {
				if busy.Start.Before(end) && busy.End.After(start) {
					return false, nil
				}
			}
		}
		return true, nil
	}

	events, err := c.ListEvents(ctx, start, end, "")
	if err != nil {
		return false, err
	}
	c.logger.Debug("events in slot",
		logging.Date(&date),
		slog.Int("start_hour", startHour),
		slog.Int("end_hour", endHour),
		slog.Int("events", len(events)))

	for _, e := range events {
		if e.Status == "cancelled" {
			continue
		}
		if e.Overlaps(start, end) {
			return false, nil
		}
	}
	return true, nil
}

// Reserve inserts an event for the slot. A created event always reports
// true; API failures are returned as errors.
func (c *Client) Reserve(ctx context.Context, date civil.Date, startHour, endHour int, title string) (bool, error) {
	start, end, err := SlotBounds(date, startHour, endHour, c.location)
	if err != nil {
		return false, err
	}

	created, err := c.CreateEvent(ctx, EventInput{
		Summary:  title,
		Start:    start,
		End:      end,
		TimeZone: c.location.String(),
	})
	if err != nil {
		return false, err
	}
	c.logger.Info("event created",
		slog.String("event_id", created.ID),
		logging.Date(&date),
		slog.Int("start_hour", startHour),
		slog.Int("end_hour", endHour))
	return true, nil
}

// ListEvents lists events in the calendar within a time range
func (c *Client) ListEvents(ctx context.Context, timeMin, timeMax time.Time, query string) ([]EventSummary, error) {
	call := c.svc.Events.List(c.calendarID).
		TimeMin(timeMin.Format(time.RFC3339)).
		TimeMax(timeMax.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx)

	if query != "" {
		call = call.Q(query)
	}

	events, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	var summaries []EventSummary
	for _, event := range events.Items {
		summaries = append(summaries, toEventSummary(event))
	}

	return summaries, nil
}

// CreateEvent creates a new calendar event
func (c *Client) CreateEvent(ctx context.Context, input EventInput) (*EventSummary, error) {
	if input.TimeZone == "" {
		input.TimeZone = "UTC"
	}
	event := &calendar.Event{
		Summary:     input.Summary,
		Description: input.Description,
		Location:    input.Location,
		Start: &calendar.EventDateTime{
			DateTime: input.Start.Format(time.RFC3339),
			TimeZone: input.TimeZone,
		},
		End: &calendar.EventDateTime{
			DateTime: input.End.Format(time.RFC3339),
			TimeZone: input.TimeZone,
		},
	}

	for _, email := range input.Attendees {
		event.Attendees = append(event.Attendees, &calendar.EventAttendee{Email: email})
	}

	created, err := c.svc.Events.Insert(c.calendarID, event).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	summary := toEventSummary(created)
	return &summary, nil
}

// QueryFreeBusy checks availability for calendars in a time range
func (c *Client) QueryFreeBusy(ctx context.Context, timeMin, timeMax time.Time, calendarIDs []string) ([]FreeBusyInfo, error) {
	items := make([]*calendar.FreeBusyRequestItem, len(calendarIDs))
	for i, id := range calendarIDs {
		items[i] = &calendar.FreeBusyRequestItem{Id: id}
	}

	query := &calendar.FreeBusyRequest{
		TimeMin:  timeMin.Format(time.RFC3339),
		TimeMax:  timeMax.Format(time.RFC3339),
		TimeZone: c.location.String(),
		Items:    items,
	}

	result, err := c.svc.Freebusy.Query(query).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to query freebusy: %w", err)
	}

	var infos []FreeBusyInfo
	for calID, cal := range result.Calendars {
		info := FreeBusyInfo{
			Calendar: calID,
		}

		for _, busy := range cal.Busy {
			start, err := time.Parse(time.RFC3339, busy.Start)
			if err != nil {
				return nil, fmt.Errorf("invalid busy period %q: %w", busy.Start, err)
			}
			end, err := time.Parse(time.RFC3339, busy.End)
			if err != nil {
				return nil, fmt.Errorf("invalid busy period %q: %w", busy.End, err)
			}
			info.Busy = append(info.Busy, TimeRange{Start: start, End: end})
		}

		for _, err := range cal.Errors {
			info.Errors = append(info.Errors, err.Reason)
		}

		infos = append(infos, info)
	}

	return infos, nil
}
