package assistant

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/calbot/internal/instrumentation"
	"github.com/teemow/calbot/internal/slotlock"
)

// fakeCalendar records calls and answers from its fields.
type fakeCalendar struct {
	mu sync.Mutex

	free     bool
	freeErr  error
	reserved bool
	bookErr  error
	block    bool
	panics   bool

	checks   []call
	reserves []call
}

type call struct {
	date       civil.Date
	start, end int
	title      string
}

func (f *fakeCalendar) CheckFree(ctx context.Context, date civil.Date, startHour, endHour int) (bool, error) {
	f.mu.Lock()
	f.checks = append(f.checks, call{date: date, start: startHour, end: endHour})
	f.mu.Unlock()

	if f.panics {
		panic("backend exploded")
	}
	if f.block {
		<-ctx.Done()
		return false, ctx.Err()
	}
	return f.free, f.freeErr
}

func (f *fakeCalendar) Reserve(_ context.Context, date civil.Date, startHour, endHour int, title string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reserves = append(f.reserves, call{date: date, start: startHour, end: endHour, title: title})
	return f.reserved, f.bookErr
}

func (f *fakeCalendar) calls() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.checks), len(f.reserves)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

// Monday 2024-06-10.
var monday = time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC)

// Wednesday 2024-06-12.
var wednesday = time.Date(2024, 6, 12, 10, 0, 0, 0, time.UTC)

func newTestPipeline(cal Calendar, now time.Time, opts ...Option) *Pipeline {
	base := []Option{
		WithLocation(time.UTC),
		WithClock(fixedClock(now)),
		WithLogger(quietLogger()),
	}
	return NewPipeline(cal, append(base, opts...)...)
}

func TestPipeline_BookTomorrowAfternoon(t *testing.T) {
	cal := &fakeCalendar{free: true, reserved: true}
	p := newTestPipeline(cal, monday)

	s := p.Run(context.Background(), "Can I book tomorrow afternoon?")

	assert.Equal(t, IntentBook, s.Intent)
	require.NotNil(t, s.Date)
	assert.Equal(t, civil.Date{Year: 2024, Month: 6, Day: 11}, *s.Date)
	require.NotNil(t, s.Hours)
	assert.Equal(t, HourRange{13, 17}, *s.Hours)
	assert.Equal(t, Yes, s.Available)
	assert.Equal(t, Yes, s.Booked)
	assert.Equal(t, "Your meeting has been booked on 2024-06-11 at 13-17.", s.Response)
	assert.NotEmpty(t, s.RequestID)

	require.Len(t, cal.reserves, 1)
	assert.Equal(t, DefaultTitle, cal.reserves[0].title)
	assert.Equal(t, 13, cal.reserves[0].start)
	assert.Equal(t, 17, cal.reserves[0].end)
	assert.Equal(t, OutcomeBooked, Outcome(s))
}

func TestPipeline_CheckFridayBusy(t *testing.T) {
	cal := &fakeCalendar{free: false}
	p := newTestPipeline(cal, wednesday)

	s := p.Run(context.Background(), "Am I free Friday 3 to 5")

	assert.Equal(t, IntentCheck, s.Intent)
	require.NotNil(t, s.Date)
	assert.Equal(t, civil.Date{Year: 2024, Month: 6, Day: 14}, *s.Date)
	assert.Equal(t, &HourRange{3, 5}, s.Hours)
	assert.Equal(t, No, s.Available)
	assert.Equal(t, Unknown, s.Booked)
	assert.Equal(t, "You're not free on 2024-06-14 from 3-5.", s.Response)

	checks, reserves := cal.calls()
	assert.Equal(t, 1, checks)
	assert.Equal(t, 0, reserves, "a check never books")
	assert.Equal(t, OutcomeBusy, Outcome(s))
}

func TestPipeline_NotUnderstood(t *testing.T) {
	cal := &fakeCalendar{free: true, reserved: true}
	p := newTestPipeline(cal, monday)

	s := p.Run(context.Background(), "hello there")

	assert.Equal(t, IntentUnknown, s.Intent)
	assert.Nil(t, s.Date)
	assert.Nil(t, s.Hours)
	assert.Equal(t, ReplyNotUnderstood, s.Response)

	checks, reserves := cal.calls()
	assert.Zero(t, checks)
	assert.Zero(t, reserves)
}

func TestPipeline_MissingSlotMakesNoCalls(t *testing.T) {
	tests := []string{
		"book a meeting tomorrow",
		"book something 3-5",
		"am I free?",
	}
	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			cal := &fakeCalendar{free: true, reserved: true}
			p := newTestPipeline(cal, monday)

			s := p.Run(context.Background(), input)

			assert.Equal(t, ReplyNeedDateTime, s.Response)
			assert.Equal(t, Unknown, s.Available)
			assert.Equal(t, Unknown, s.Booked)
			checks, reserves := cal.calls()
			assert.Zero(t, checks)
			assert.Zero(t, reserves)
		})
	}
}

func TestPipeline_BookBusyDoesNotReserve(t *testing.T) {
	cal := &fakeCalendar{free: false, reserved: true}
	p := newTestPipeline(cal, monday)

	s := p.Run(context.Background(), "book today 3-5")

	assert.Equal(t, No, s.Available)
	assert.Equal(t, Unknown, s.Booked)
	assert.Equal(t, "You're not free on 2024-06-10 from 3-5.", s.Response)
	_, reserves := cal.calls()
	assert.Zero(t, reserves)
}

func TestPipeline_CalendarFailuresAreUnknown(t *testing.T) {
	tests := []struct {
		name string
		cal  *fakeCalendar
	}{
		{"check error", &fakeCalendar{freeErr: errors.New("boom")}},
		{"check panic", &fakeCalendar{panics: true}},
		{"check timeout", &fakeCalendar{block: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPipeline(tt.cal, monday, WithCallTimeout(20*time.Millisecond))

			s := p.Run(context.Background(), "book tomorrow morning")

			assert.Equal(t, Unknown, s.Available)
			assert.Equal(t, Unknown, s.Booked)
			assert.Equal(t,
				"I couldn't book your meeting on 2024-06-11 from 9-12 because your availability could not be confirmed.",
				s.Response)
			_, reserves := tt.cal.calls()
			assert.Zero(t, reserves)
			assert.Equal(t, OutcomeUndetermined, Outcome(s))
		})
	}
}

func TestPipeline_ReserveErrorIsUnknown(t *testing.T) {
	cal := &fakeCalendar{free: true, bookErr: errors.New("quota exceeded")}
	p := newTestPipeline(cal, monday)

	s := p.Run(context.Background(), "book tomorrow morning")

	assert.Equal(t, Yes, s.Available)
	assert.Equal(t, Unknown, s.Booked)
	assert.Contains(t, s.Response, "could not be confirmed")
}

func TestPipeline_CheckErrorIsUnknown(t *testing.T) {
	cal := &fakeCalendar{freeErr: errors.New("boom")}
	p := newTestPipeline(cal, monday)

	s := p.Run(context.Background(), "am I free tomorrow evening")

	assert.Equal(t, Unknown, s.Available)
	assert.Equal(t, "I couldn't check your availability on 2024-06-11 from 17-20.", s.Response)
}

func TestPipeline_NilCalendar(t *testing.T) {
	p := newTestPipeline(nil, monday)

	s := p.Run(context.Background(), "am I free tomorrow evening")

	assert.Equal(t, Unknown, s.Available)
	assert.Equal(t, OutcomeUndetermined, Outcome(s))
}

func TestPipeline_LocationShiftsDate(t *testing.T) {
	kolkata, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	cal := &fakeCalendar{free: true}
	// 20:00 UTC Monday is 01:30 Tuesday in Kolkata.
	p := NewPipeline(cal,
		WithLocation(kolkata),
		WithClock(fixedClock(time.Date(2024, 6, 10, 20, 0, 0, 0, time.UTC))),
		WithLogger(quietLogger()))

	s := p.Run(context.Background(), "free today 3-5?")

	require.NotNil(t, s.Date)
	assert.Equal(t, civil.Date{Year: 2024, Month: 6, Day: 11}, *s.Date)
	assert.Equal(t, kolkata, p.Location())
}

func TestPipeline_SlotLockHeld(t *testing.T) {
	locker := slotlock.NewMemory()
	unlock, err := locker.Lock(context.Background(), slotlock.Key("2024-06-11", 13, 17), time.Minute)
	require.NoError(t, err)
	defer func() { _ = unlock(context.Background()) }()

	cal := &fakeCalendar{free: true, reserved: true}
	p := newTestPipeline(cal, monday, WithSlotLock(locker, time.Minute))

	s := p.Run(context.Background(), "book tomorrow afternoon")

	assert.Equal(t, Unknown, s.Available)
	assert.Equal(t, Unknown, s.Booked)
	checks, reserves := cal.calls()
	assert.Zero(t, checks)
	assert.Zero(t, reserves)
}

func TestPipeline_SlotLockReleased(t *testing.T) {
	locker := slotlock.NewMemory()
	cal := &fakeCalendar{free: true, reserved: true}
	p := newTestPipeline(cal, monday, WithSlotLock(locker, time.Minute))

	first := p.Run(context.Background(), "book tomorrow afternoon")
	second := p.Run(context.Background(), "book tomorrow afternoon")

	assert.Equal(t, Yes, first.Booked)
	assert.Equal(t, Yes, second.Booked)
	_, reserves := cal.calls()
	assert.Equal(t, 2, reserves)
}

func TestPipeline_CustomTitle(t *testing.T) {
	cal := &fakeCalendar{free: true, reserved: true}
	p := newTestPipeline(cal, monday, WithTitle("Standup"))

	p.Run(context.Background(), "schedule tomorrow 9-10")

	require.Len(t, cal.reserves, 1)
	assert.Equal(t, "Standup", cal.reserves[0].title)
}

func TestPipeline_AuditsBookings(t *testing.T) {
	var buf bytes.Buffer
	audit := instrumentation.NewAuditLogger(slog.New(slog.NewJSONHandler(&buf, nil)))
	cal := &fakeCalendar{free: true, reserved: true}
	p := newTestPipeline(cal, monday, WithAudit(audit))

	p.Run(context.Background(), "book tomorrow afternoon")
	assert.Contains(t, buf.String(), `"msg":"booking_created"`)
	assert.Contains(t, buf.String(), `"hours":"13-17"`)

	buf.Reset()
	p.Run(context.Background(), "am I free tomorrow afternoon")
	assert.Empty(t, buf.String(), "checks are not audited")
}

func TestPipeline_ConcurrentRuns(t *testing.T) {
	cal := &fakeCalendar{free: true, reserved: true}
	p := newTestPipeline(cal, monday)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s := p.Run(context.Background(), "am I free tomorrow morning")
			assert.Equal(t, Yes, s.Available)
		}()
	}
	wg.Wait()

	checks, _ := cal.calls()
	assert.Equal(t, 20, checks)
}

func TestOutcome(t *testing.T) {
	d := civil.Date{Year: 2024, Month: 6, Day: 11}
	h := &HourRange{13, 17}

	assert.Equal(t, OutcomeNotUnderstood, Outcome(&State{Intent: IntentUnknown}))
	assert.Equal(t, OutcomeIncomplete, Outcome(&State{Intent: IntentBook}))
	assert.Equal(t, OutcomeRejected, Outcome(&State{Intent: IntentBook, Date: &d, Hours: h, Available: No}))
	assert.Equal(t, OutcomeFree, Outcome(&State{Intent: IntentCheck, Date: &d, Hours: h, Available: Yes}))
}
