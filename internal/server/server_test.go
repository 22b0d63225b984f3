package server

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/require"

	"github.com/teemow/calbot/internal/assistant"
	"github.com/teemow/calbot/internal/slotlock"
)

// fakeBackend is an in-memory calendar.Backend.
type fakeBackend struct {
	mu       sync.Mutex
	free     bool
	err      error
	reserved []string
}

func (f *fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) CheckFree(context.Context, civil.Date, int, int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.free, f.err
}

func (f *fakeBackend) Reserve(_ context.Context, date civil.Date, start, end int, title string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	f.reserved = append(f.reserved, date.String()+" "+assistant.HourRange{Start: start, End: end}.String()+" "+title)
	return true, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func newTestContext(t *testing.T, backend *fakeBackend, locker slotlock.Locker) *ServerContext {
	t.Helper()
	now := time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC)
	sc, err := NewServerContext(context.Background(), Options{
		Backend:  backend,
		Locker:   locker,
		Location: time.UTC,
		Logger:   quietLogger(),
		Pipeline: assistant.NewPipeline(backend,
			assistant.WithLocation(time.UTC),
			assistant.WithClock(func() time.Time { return now }),
			assistant.WithLogger(quietLogger())),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}
