// Package google provides OAuth2 configuration and token sources for the
// Google Calendar API.
//
// Tokens are loaded through the TokenProvider interface so the calendar
// client never needs to know where credentials come from. Three sources are
// supported: a JSON token file on disk (written by `calbot auth`), a JSON
// token in an environment variable, and a base64-encoded token blob for
// container deployments.
package google
