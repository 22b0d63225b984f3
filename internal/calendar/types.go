package calendar

import (
	"context"
	"errors"
	"time"

	"cloud.google.com/go/civil"
	calendar "google.golang.org/api/calendar/v3"
)

// Backend names.
const (
	BackendGoogle = "google"
	BackendRemote = "remote"
)

// Availability modes of the Google backend.
const (
	// AvailabilityEvents treats the slot as busy when any event overlaps it.
	AvailabilityEvents = "events"
	// AvailabilityFreeBusy asks the free/busy endpoint, which ignores
	// events marked as transparent.
	AvailabilityFreeBusy = "freebusy"
)

var (
	// ErrInvalidRange is returned for hour ranges that are not ordered or
	// not within a single day.
	ErrInvalidRange = errors.New("invalid hour range")

	// ErrRemoteStatus is returned when a remote calbot answers with a
	// non-success status.
	ErrRemoteStatus = errors.New("unexpected status from remote calendar")

	// ErrInvalidResponse is returned when a remote calbot answers with a
	// body that cannot be decoded or lacks the expected field.
	ErrInvalidResponse = errors.New("invalid response body")
)

// Backend is a calendar the assistant can check and book against.
type Backend interface {
	// CheckFree reports whether nothing overlaps [startHour, endHour) on date.
	CheckFree(ctx context.Context, date civil.Date, startHour, endHour int) (bool, error)
	// Reserve creates an event for the slot and reports whether it was created.
	Reserve(ctx context.Context, date civil.Date, startHour, endHour int, title string) (bool, error)
	// Name identifies the backend in logs and metrics.
	Name() string
}

// EventInput represents the input for creating a calendar event
type EventInput struct {
	Summary     string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
	TimeZone    string
	Attendees   []string
}

// EventSummary represents a simplified calendar event for listing
type EventSummary struct {
	ID          string
	Summary     string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
	AllDay      bool
	Creator     string
	Organizer   string
	Status      string
	HTMLLink    string
}

// Overlaps reports whether the event intersects [start, end).
func (e EventSummary) Overlaps(start, end time.Time) bool {
	if e.Start.IsZero() || e.End.IsZero() {
		return false
	}
	return e.Start.Before(end) && e.End.After(start)
}

// FreeBusyInfo represents availability information for a calendar
type FreeBusyInfo struct {
	Calendar string
	Busy     []TimeRange
	Errors   []string
}

// TimeRange represents a time range
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// SlotBounds converts an hour range on date into absolute times in loc.
// endHour 24 means midnight at the end of the day.
func SlotBounds(date civil.Date, startHour, endHour int, loc *time.Location) (time.Time, time.Time, error) {
	if !date.IsValid() {
		return time.Time{}, time.Time{}, ErrInvalidRange
	}
	if startHour < 0 || endHour > 24 || startHour >= endHour {
		return time.Time{}, time.Time{}, ErrInvalidRange
	}
	if loc == nil {
		loc = time.UTC
	}
	start := time.Date(date.Year, date.Month, date.Day, startHour, 0, 0, 0, loc)
	end := time.Date(date.Year, date.Month, date.Day, endHour, 0, 0, 0, loc)
	return start, end, nil
}

// toEventSummary converts a Google Calendar event to an EventSummary
func toEventSummary(event *calendar.Event) EventSummary {
	if event == nil {
		return EventSummary{}
	}

	summary := EventSummary{
		ID:          event.Id,
		Summary:     event.Summary,
		Description: event.Description,
		Location:    event.Location,
		Status:      event.Status,
		HTMLLink:    event.HtmlLink,
	}

	summary.Start, summary.AllDay = parseEventTime(event.Start)
	summary.End, _ = parseEventTime(event.End)

	// Creator and organizer
	if event.Creator != nil {
		summary.Creator = event.Creator.Email
	}
	if event.Organizer != nil {
		summary.Organizer = event.Organizer.Email
	}

	return summary
}

// parseEventTime reads a DateTime, falling back to an all-day Date.
func parseEventTime(edt *calendar.EventDateTime) (time.Time, bool) {
	if edt == nil {
		return time.Time{}, false
	}
	if edt.DateTime != "" {
		if t, err := time.Parse(time.RFC3339, edt.DateTime); err == nil {
			return t, false
		}
	}
	if edt.Date != "" {
		loc := time.UTC
		if edt.TimeZone != "" {
			if l, err := time.LoadLocation(edt.TimeZone); err == nil {
				loc = l
			}
		}
		if t, err := time.ParseInLocation("2006-01-02", edt.Date, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
