package logging

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"

	"cloud.google.com/go/civil"
)

// Common log attribute keys for consistent naming across the codebase.
const (
	KeyOperation = "operation"
	KeyBackend   = "backend"
	KeyRequestID = "request_id"
	KeyInputHash = "input_hash"
	KeyIntent    = "intent"
	KeyOutcome   = "outcome"
	KeyDate      = "date"
	KeyHours     = "hours"
	KeyDuration  = "duration"
	KeyStatus    = "status"
	KeyError     = "error"
	KeyTool      = "tool"
)

// Status values for consistent logging.
// Note: These are intentionally duplicated from instrumentation package
// to avoid circular dependencies (instrumentation imports logging).
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// WithOperation returns a logger with the operation attribute set.
func WithOperation(logger *slog.Logger, operation string) *slog.Logger {
	return logger.With(slog.String(KeyOperation, operation))
}

// WithBackend returns a logger with the calendar backend attribute set.
func WithBackend(logger *slog.Logger, backend string) *slog.Logger {
	return logger.With(slog.String(KeyBackend, backend))
}

// Operation returns a slog attribute for the operation name.
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

// RequestID returns a slog attribute for the pipeline request ID.
func RequestID(id string) slog.Attr {
	return slog.String(KeyRequestID, id)
}

// Intent returns a slog attribute for the classified intent.
func Intent(intent string) slog.Attr {
	return slog.String(KeyIntent, intent)
}

// Outcome returns a slog attribute for the request outcome.
func Outcome(outcome string) slog.Attr {
	return slog.String(KeyOutcome, outcome)
}

// Tool returns a slog attribute for the tool name.
func Tool(tool string) slog.Attr {
	return slog.String(KeyTool, tool)
}

// Status returns a slog attribute for the status.
func Status(status string) slog.Attr {
	return slog.String(KeyStatus, status)
}

// Date returns a slog attribute for an optional calendar date.
// A nil date is logged as an empty string.
func Date(d *civil.Date) slog.Attr {
	if d == nil {
		return slog.String(KeyDate, "")
	}
	return slog.String(KeyDate, d.String())
}

// Hours returns a slog attribute for an optional hour range. Any value with
// a String method works; nil pointers are logged as an empty string.
func Hours(h fmt.Stringer) slog.Attr {
	if isNil(h) {
		return slog.String(KeyHours, "")
	}
	return slog.String(KeyHours, h.String())
}

// Err returns a slog attribute for an error.
// If err is nil, returns an empty Group attribute that will be omitted from output.
// This allows safely passing Err(maybeNilErr) without adding empty attributes.
//
// Usage:
//
//	logger.Info("operation", logging.Err(err))  // Safe even if err is nil
func Err(err error) slog.Attr {
	if err == nil {
		// Return an empty Group that slog will omit from output
		return slog.Group("")
	}
	return slog.String(KeyError, err.Error())
}

// HashInput returns a short hash of a user utterance for logging purposes.
// This allows correlation of log entries without storing what the user typed.
func HashInput(input string) string {
	if input == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(input))
	return "input:" + hex.EncodeToString(hash[:8])
}

// InputHash returns a slog attribute with the hashed utterance.
func InputHash(input string) slog.Attr {
	return slog.String(KeyInputHash, HashInput(input))
}
