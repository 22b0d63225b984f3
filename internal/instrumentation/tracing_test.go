package instrumentation

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
)

func TestStartSpan(t *testing.T) {
	ctx, span := StartSpan(context.Background(), "test.span", attribute.String(SpanAttrIntent, "book"))
	defer span.End()

	if ctx == nil {
		t.Fatal("expected non-nil context")
	}
	if span == nil {
		t.Fatal("expected non-nil span")
	}
}

func TestStartCalendarSpan(t *testing.T) {
	_, span := StartCalendarSpan(context.Background(), "google", OperationCheck,
		attribute.String(SpanAttrDate, "2024-06-11"))
	defer span.End()

	SetSpanSuccess(span)
}

func TestStartToolSpan(t *testing.T) {
	_, span := StartToolSpan(context.Background(), "assistant_request")
	defer span.End()

	SetSpanError(span, errors.New("boom"))
	// nil errors are ignored
	SetSpanError(span, nil)
}

func TestGetTraceID_NoSpan(t *testing.T) {
	if id := GetTraceID(context.Background()); id != "" {
		t.Errorf("expected empty trace id, got %q", id)
	}
}
