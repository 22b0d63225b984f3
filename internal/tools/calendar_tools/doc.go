// Package calendar_tools provides MCP tools for checking and booking
// calendar slots.
//
// Slots are whole hours on a single date in the configured time zone.
// Booking goes through the same lock, check and reserve sequence as the
// HTTP API, so a busy slot is never double booked. When the backend is
// Google Calendar an additional read-only tool lists the events of a day.
package calendar_tools
