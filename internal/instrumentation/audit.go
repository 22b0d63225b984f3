package instrumentation

import (
	"context"
	"log/slog"
	"time"

	"github.com/teemow/calbot/internal/logging"
)

// BookingAttempt captures one booking request for the audit trail.
type BookingAttempt struct {
	RequestID string
	Input     string
	Date      string
	Hours     string
	Title     string

	// Available and Booked are "yes", "no" or "unknown".
	Available string
	Booked    string

	Duration time.Duration
	TraceID  string
}

// WithSpanContext copies the trace ID from ctx.
func (b *BookingAttempt) WithSpanContext(ctx context.Context) *BookingAttempt {
	b.TraceID = GetTraceID(ctx)
	return b
}

// attrs returns the slog attributes for the attempt. The utterance is
// hashed unless includeInput is set.
func (b *BookingAttempt) attrs(includeInput bool) []any {
	attrs := []any{
		logging.RequestID(b.RequestID),
		slog.String("date", b.Date),
		slog.String("hours", b.Hours),
		slog.String("title", b.Title),
		slog.String("available", b.Available),
		slog.String("booked", b.Booked),
		slog.Duration("duration", b.Duration),
	}
	if includeInput {
		attrs = append(attrs, slog.String("input", b.Input))
	} else {
		attrs = append(attrs, logging.InputHash(b.Input))
	}
	if b.TraceID != "" {
		attrs = append(attrs, slog.String("trace_id", b.TraceID))
	}
	return attrs
}

// AuditLogger writes booking attempts to a dedicated slog logger.
type AuditLogger struct {
	logger       *slog.Logger
	includeInput bool
	enabled      bool
}

// NewAuditLogger creates an enabled AuditLogger that hashes utterances.
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return NewAuditLoggerWithConfig(logger, AuditLoggingConfig{Enabled: true})
}

// NewAuditLoggerWithConfig creates a new AuditLogger with the given configuration.
// A nil logger means slog.Default().
func NewAuditLoggerWithConfig(logger *slog.Logger, config AuditLoggingConfig) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{
		logger:       logger.With(slog.String("log_type", "audit")),
		includeInput: config.IncludeInput,
		enabled:      config.Enabled,
	}
}

// LogBooking records a booking attempt. Successful bookings are logged at
// info level, everything else at warn.
func (al *AuditLogger) LogBooking(b *BookingAttempt) {
	if al == nil || !al.enabled {
		return
	}
	if b.Booked == "yes" {
		al.logger.Info("booking_created", b.attrs(al.includeInput)...)
	} else {
		al.logger.Warn("booking_not_created", b.attrs(al.includeInput)...)
	}
}
