package server

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/teemow/calbot/internal/assistant"
	"github.com/teemow/calbot/internal/calendar"
	"github.com/teemow/calbot/internal/instrumentation"
	"github.com/teemow/calbot/internal/slotlock"
)

// Options configures a ServerContext.
type Options struct {
	Backend  calendar.Backend
	Pipeline *assistant.Pipeline
	Locker   slotlock.Locker
	LockTTL  time.Duration
	Title    string
	Location *time.Location
	Metrics  *instrumentation.Metrics
	Audit    *instrumentation.AuditLogger
	Logger   *slog.Logger

	// CallTimeout bounds each calendar call made by the built pipeline.
	CallTimeout time.Duration
}

// ServerContext holds the context for the MCP and HTTP servers
type ServerContext struct {
	ctx      context.Context
	cancel   context.CancelFunc
	backend  calendar.Backend
	pipeline *assistant.Pipeline
	locker   slotlock.Locker
	lockTTL  time.Duration
	title    string
	location *time.Location
	metrics  *instrumentation.Metrics
	audit    *instrumentation.AuditLogger
	logger   *slog.Logger
	mu       sync.RWMutex
	shutdown bool
}

// NewServerContext creates a new server context. A pipeline is built on the
// backend when none is given.
func NewServerContext(ctx context.Context, opts Options) (*ServerContext, error) {
	if opts.Backend == nil {
		return nil, fmt.Errorf("calendar backend is required")
	}
	if opts.Locker == nil {
		opts.Locker = slotlock.Noop{}
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = assistant.DefaultLockTTL
	}
	if opts.Title == "" {
		opts.Title = assistant.DefaultTitle
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Pipeline == nil {
		opts.Pipeline = assistant.NewPipeline(opts.Backend,
			assistant.WithLocation(opts.Location),
			assistant.WithTitle(opts.Title),
			assistant.WithLogger(opts.Logger),
			assistant.WithMetrics(opts.Metrics),
			assistant.WithAudit(opts.Audit),
			assistant.WithSlotLock(opts.Locker, opts.LockTTL),
			assistant.WithCallTimeout(opts.CallTimeout))
	}

	shutdownCtx, cancel := context.WithCancel(ctx)

	return &ServerContext{
		ctx:      shutdownCtx,
		cancel:   cancel,
		backend:  opts.Backend,
		pipeline: opts.Pipeline,
		locker:   opts.Locker,
		lockTTL:  opts.LockTTL,
		title:    opts.Title,
		location: opts.Location,
		metrics:  opts.Metrics,
		audit:    opts.Audit,
		logger:   opts.Logger,
	}, nil
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Backend returns the calendar backend.
func (sc *ServerContext) Backend() calendar.Backend {
	return sc.backend
}

// Pipeline returns the assistant pipeline.
func (sc *ServerContext) Pipeline() *assistant.Pipeline {
	return sc.pipeline
}

// Locker returns the slot locker and its TTL.
func (sc *ServerContext) Locker() (slotlock.Locker, time.Duration) {
	return sc.locker, sc.lockTTL
}

// Title returns the default event title.
func (sc *ServerContext) Title() string {
	return sc.title
}

// Location returns the reference time zone.
func (sc *ServerContext) Location() *time.Location {
	return sc.location
}

// Metrics returns the metrics recorder, nil when instrumentation is off.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	return sc.metrics
}

// AuditLogger returns the booking audit logger.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	return sc.audit
}

// Logger returns the server logger.
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.logger
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
