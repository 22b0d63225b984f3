package calendar

import (
	"context"
	"time"

	"cloud.google.com/go/civil"
	"go.opentelemetry.io/otel/attribute"

	"github.com/teemow/calbot/internal/instrumentation"
)

// Instrumented records metrics and a span for every call to the wrapped
// Backend.
type Instrumented struct {
	next    Backend
	metrics *instrumentation.Metrics
}

// NewInstrumented wraps next. A nil metrics only traces.
func NewInstrumented(next Backend, metrics *instrumentation.Metrics) *Instrumented {
	return &Instrumented{next: next, metrics: metrics}
}

// Name returns the wrapped backend's name.
func (i *Instrumented) Name() string {
	return i.next.Name()
}

// Unwrap returns the wrapped backend.
func (i *Instrumented) Unwrap() Backend {
	return i.next
}

// AsGoogle returns the Google client behind b, following Unwrap chains.
func AsGoogle(b Backend) (*Client, bool) {
	for b != nil {
		switch v := b.(type) {
		case *Client:
			return v, true
		case interface{ Unwrap() Backend }:
			b = v.Unwrap()
		default:
			return nil, false
		}
	}
	return nil, false
}

// CheckFree implements Backend.
func (i *Instrumented) CheckFree(ctx context.Context, date civil.Date, startHour, endHour int) (bool, error) {
	var free bool
	err := i.observe(ctx, instrumentation.OperationCheck, date, startHour, endHour, func(ctx context.Context) error {
		var err error
		free, err = i.next.CheckFree(ctx, date, startHour, endHour)
		return err
	})
	return free, err
}

// Reserve implements Backend.
func (i *Instrumented) Reserve(ctx context.Context, date civil.Date, startHour, endHour int, title string) (bool, error) {
	var booked bool
	err := i.observe(ctx, instrumentation.OperationBook, date, startHour, endHour, func(ctx context.Context) error {
		var err error
		booked, err = i.next.Reserve(ctx, date, startHour, endHour, title)
		return err
	})
	return booked, err
}

func (i *Instrumented) observe(ctx context.Context, operation string, date civil.Date, startHour, endHour int, fn func(context.Context) error) error {
	start := time.Now()
	ctx, span := instrumentation.StartCalendarSpan(ctx, i.next.Name(), operation,
		attribute.String(instrumentation.SpanAttrDate, date.String()),
		attribute.Int("calendar.start_hour", startHour),
		attribute.Int("calendar.end_hour", endHour))
	defer span.End()

	err := fn(ctx)

	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
		instrumentation.SetSpanError(span, err)
	} else {
		instrumentation.SetSpanSuccess(span)
	}
	i.metrics.RecordCalendarOperation(ctx, i.next.Name(), operation, status, time.Since(start))
	return err
}
