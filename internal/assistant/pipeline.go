package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/teemow/calbot/internal/instrumentation"
	"github.com/teemow/calbot/internal/logging"
	"github.com/teemow/calbot/internal/slotlock"
)

const (
	// DefaultTitle is the summary given to events created by the pipeline.
	DefaultTitle = "Meeting via AI Bot"

	// DefaultCallTimeout bounds each calendar call.
	DefaultCallTimeout = 10 * time.Second

	// DefaultLockTTL is how long a slot stays locked while it is checked and booked.
	DefaultLockTTL = 30 * time.Second
)

// Outcome labels used for request metrics.
const (
	OutcomeNotUnderstood = "not_understood"
	OutcomeIncomplete    = "incomplete"
	OutcomeFree          = "free"
	OutcomeBusy          = "busy"
	OutcomeBooked        = "booked"
	OutcomeRejected      = "rejected"
	OutcomeUndetermined  = "undetermined"
)

// Pipeline runs utterances through the five stages. It holds no per-request
// state and is safe for concurrent use once constructed.
type Pipeline struct {
	calendar Calendar
	location *time.Location
	now      func() time.Time
	timeout  time.Duration
	title    string
	logger   *slog.Logger
	metrics  *instrumentation.Metrics
	audit    *instrumentation.AuditLogger
	locker   slotlock.Locker
	lockTTL  time.Duration
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLocation sets the reference time zone. Defaults to time.Local.
func WithLocation(loc *time.Location) Option {
	return func(p *Pipeline) {
		if loc != nil {
			p.location = loc
		}
	}
}

// WithClock replaces the system clock, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

// WithCallTimeout bounds every calendar call. Non-positive values keep the default.
func WithCallTimeout(d time.Duration) Option {
	return func(p *Pipeline) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithTitle sets the summary of booked events.
func WithTitle(title string) Option {
	return func(p *Pipeline) {
		if title != "" {
			p.title = title
		}
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithMetrics records request metrics on m.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

// WithAudit writes every booking attempt to the audit log.
func WithAudit(a *instrumentation.AuditLogger) Option {
	return func(p *Pipeline) {
		p.audit = a
	}
}

// WithSlotLock holds a lock on the slot while a booking request checks and
// reserves it.
func WithSlotLock(l slotlock.Locker, ttl time.Duration) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.locker = l
		}
		if ttl > 0 {
			p.lockTTL = ttl
		}
	}
}

// NewPipeline creates a pipeline backed by cal.
func NewPipeline(cal Calendar, opts ...Option) *Pipeline {
	p := &Pipeline{
		calendar: cal,
		location: time.Local,
		now:      time.Now,
		timeout:  DefaultCallTimeout,
		title:    DefaultTitle,
		logger:   slog.Default(),
		locker:   slotlock.Noop{},
		lockTTL:  DefaultLockTTL,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = logging.WithOperation(p.logger, "assistant.run")
	return p
}

// Location returns the reference time zone.
func (p *Pipeline) Location() *time.Location {
	return p.location
}

// Run processes one utterance and returns its final state. It always
// produces a response; calendar failures surface as Unknown results.
func (p *Pipeline) Run(ctx context.Context, input string) *State {
	start := time.Now()
	s := &State{
		RequestID: uuid.NewString(),
		Input:     input,
	}
	ctx, span := instrumentation.StartSpan(ctx, "assistant.run",
		attribute.String(instrumentation.SpanAttrRequestID, s.RequestID))
	defer span.End()

	logger := p.logger.With(logging.RequestID(s.RequestID))

	s.Intent = ClassifyIntent(input)
	s.Date = ExtractDate(input, p.now().In(p.location))
	s.Hours = ExtractHours(input)

	logger.Debug("request interpreted",
		logging.InputHash(input),
		logging.Intent(string(s.Intent)),
		logging.Date(s.Date),
		logging.Hours(s.Hours))

	if s.Intent == IntentBook && s.Date != nil && s.Hours != nil {
		p.checkAndBook(ctx, logger, s)
		p.audit.LogBooking((&instrumentation.BookingAttempt{
			RequestID: s.RequestID,
			Input:     input,
			Date:      s.Date.String(),
			Hours:     s.Hours.String(),
			Title:     p.title,
			Available: s.Available.String(),
			Booked:    s.Booked.String(),
			Duration:  time.Since(start),
		}).WithSpanContext(ctx))
	} else if s.Intent == IntentCheck {
		s.Available = p.checkAvailability(ctx, logger, s)
	}

	s.Response = Compose(s)

	outcome := Outcome(s)
	span.SetAttributes(
		attribute.String(instrumentation.SpanAttrIntent, string(s.Intent)),
		attribute.String(instrumentation.SpanAttrOutcome, outcome),
	)
	if p.metrics != nil {
		p.metrics.RecordAssistantRequest(ctx, string(s.Intent), outcome, time.Since(start))
	}
	logger.Info("request completed",
		logging.Intent(string(s.Intent)),
		logging.Outcome(outcome),
		slog.Duration(logging.KeyDuration, time.Since(start)))

	return s
}

// checkAndBook runs stages 3 and 4 for a booking request, holding the slot
// lock in between when one is configured.
func (p *Pipeline) checkAndBook(ctx context.Context, logger *slog.Logger, s *State) {
	key := slotlock.Key(s.Date.String(), s.Hours.Start, s.Hours.End)
	unlock, err := p.locker.Lock(ctx, key, p.lockTTL)
	if err != nil {
		logger.Warn("slot lock unavailable", logging.Err(err))
		return
	}
	defer func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("failed to release slot lock", logging.Err(err))
		}
	}()

	s.Available = p.checkAvailability(ctx, logger, s)
	if s.Available == Yes {
		s.Booked = p.book(ctx, logger, s)
	}
}

// checkAvailability is stage 3.
func (p *Pipeline) checkAvailability(ctx context.Context, logger *slog.Logger, s *State) Tristate {
	if s.Date == nil || s.Hours == nil {
		return Unknown
	}
	free, err := p.call(ctx, func(ctx context.Context) (bool, error) {
		return p.calendar.CheckFree(ctx, *s.Date, s.Hours.Start, s.Hours.End)
	})
	if err != nil {
		logger.Warn("availability check failed",
			logging.Date(s.Date), logging.Hours(s.Hours), logging.Err(err))
		return Unknown
	}
	return FromBool(free)
}

// book is stage 4.
func (p *Pipeline) book(ctx context.Context, logger *slog.Logger, s *State) Tristate {
	if s.Date == nil || s.Hours == nil {
		return Unknown
	}
	booked, err := p.call(ctx, func(ctx context.Context) (bool, error) {
		return p.calendar.Reserve(ctx, *s.Date, s.Hours.Start, s.Hours.End, p.title)
	})
	if err != nil {
		logger.Warn("booking failed",
			logging.Date(s.Date), logging.Hours(s.Hours), logging.Err(err))
		return Unknown
	}
	return FromBool(booked)
}

// call runs fn with the call timeout and turns panics into errors.
func (p *Pipeline) call(ctx context.Context, fn func(context.Context) (bool, error)) (bool, error) {
	if p.calendar == nil {
		return false, fmt.Errorf("no calendar configured")
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	type result struct {
		ok  bool
		err error
	}
	done := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("calendar call panicked: %v", r)}
			}
		}()
		ok, err := fn(ctx)
		done <- result{ok: ok, err: err}
	}()

	select {
	case r := <-done:
		return r.ok, r.err
	case <-ctx.Done():
		return false, fmt.Errorf("calendar call aborted: %w", ctx.Err())
	}
}

// Outcome summarises a finished state as a low-cardinality label.
func Outcome(s *State) string {
	switch {
	case s.Intent == IntentUnknown:
		return OutcomeNotUnderstood
	case s.Date == nil || s.Hours == nil:
		return OutcomeIncomplete
	case s.Intent == IntentBook && s.Booked == Yes:
		return OutcomeBooked
	case s.Intent == IntentBook && (s.Booked == No || s.Available == No):
		return OutcomeRejected
	case s.Intent == IntentCheck && s.Available == Yes:
		return OutcomeFree
	case s.Intent == IntentCheck && s.Available == No:
		return OutcomeBusy
	default:
		return OutcomeUndetermined
	}
}
