// Package calendar provides the calendar backends the assistant checks and
// books against.
//
// Client talks to the Google Calendar API. RemoteClient talks to another
// calbot instance over its HTTP API (GET /check, POST /book). Both implement
// Backend, and Instrumented wraps either one with metrics and tracing.
//
// Slots are whole hours [startHour, endHour) on a date in the backend's
// time zone. Ranges that are not ordered or leave the day are rejected with
// ErrInvalidRange before anything is sent.
//
// Example usage:
//
//	backend, err := calendar.NewFromConfig(ctx, calendar.Config{
//	    Backend:  calendar.BackendGoogle,
//	    Location: loc,
//	    OAuth:    oauthConf,
//	    Tokens:   tokens,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	free, err := backend.CheckFree(ctx, civil.Date{Year: 2024, Month: 6, Day: 11}, 13, 17)
package calendar
