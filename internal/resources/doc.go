// Package resources provides MCP resources describing how calbot is set up.
//
// Clients read calbot://settings to learn the time zone and today's date
// before turning relative dates into the YYYY-MM-DD arguments the calendar
// tools expect.
package resources
