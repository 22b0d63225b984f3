package server

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/teemow/calbot/internal/slotlock"
)

const (
	healthOK           = "ok"
	healthNotReady     = "not ready"
	healthShuttingDown = "shutting down"
)

// pingTimeout bounds the slot lock check on /readyz.
const pingTimeout = 2 * time.Second

// HealthChecker serves /healthz, /readyz and /healthz/detailed. Readiness
// covers the calendar backend, the slot lock store and shutdown.
type HealthChecker struct {
	sc      *ServerContext
	ready   atomic.Bool
	started time.Time
}

// NewHealthChecker creates a checker for sc. A nil sc only reports liveness
// and the ready flag.
func NewHealthChecker(sc *ServerContext) *HealthChecker {
	h := &HealthChecker{sc: sc, started: time.Now()}
	h.ready.Store(true)
	return h
}

// SetReady flips the ready flag, e.g. while draining on shutdown.
func (h *HealthChecker) SetReady(ready bool) {
	h.ready.Store(ready)
}

// IsReady returns the ready flag.
func (h *HealthChecker) IsReady() bool {
	return h.ready.Load()
}

// HealthResponse is the body of /healthz and /readyz.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// DetailedHealthResponse is the body of /healthz/detailed.
type DetailedHealthResponse struct {
	HealthResponse
	Uptime   string `json:"uptime"`
	Calendar string `json:"calendar,omitempty"`
	Timezone string `json:"timezone,omitempty"`
}

// checks runs every readiness check. The result maps check name to
// healthOK or a failure description.
func (h *HealthChecker) checks(ctx context.Context) (map[string]string, bool) {
	checks := map[string]string{"ready": healthOK}
	ok := true
	fail := func(name, msg string) {
		checks[name] = msg
		ok = false
	}

	if !h.ready.Load() {
		fail("ready", healthNotReady)
	}
	if h.sc == nil {
		return checks, ok
	}

	checks["shutdown"] = healthOK
	if h.sc.IsShutdown() {
		fail("shutdown", healthShuttingDown)
	}

	checks["calendar"] = healthOK
	if h.sc.Backend() == nil {
		fail("calendar", healthNotReady)
	}

	if locker, _ := h.sc.Locker(); locker != nil {
		if p, isPinger := locker.(slotlock.Pinger); isPinger {
			ctx, cancel := context.WithTimeout(ctx, pingTimeout)
			defer cancel()
			checks["slot_lock"] = healthOK
			if err := p.Ping(ctx); err != nil {
				fail("slot_lock", err.Error())
			}
		}
	}
	return checks, ok
}

// LivenessHandler answers 200 while the process runs.
func (h *HealthChecker) LivenessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, HealthResponse{Status: healthOK})
	})
}

// ReadinessHandler answers 503 when any check fails.
func (h *HealthChecker) ReadinessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		checks, ok := h.checks(r.Context())
		status, code := healthOK, http.StatusOK
		if !ok {
			status, code = healthNotReady, http.StatusServiceUnavailable
		}
		writeJSON(w, code, HealthResponse{Status: status, Checks: checks})
	})
}

// DetailedHealthHandler adds uptime and the calendar configuration to the
// readiness checks.
func (h *HealthChecker) DetailedHealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		checks, ok := h.checks(r.Context())
		resp := DetailedHealthResponse{
			HealthResponse: HealthResponse{Status: healthOK, Checks: checks},
			Uptime:         time.Since(h.started).Truncate(time.Second).String(),
		}
		if h.sc != nil {
			if b := h.sc.Backend(); b != nil {
				resp.Calendar = b.Name()
			}
			resp.Timezone = h.sc.Location().String()
		}

		code := http.StatusOK
		switch {
		case h.sc != nil && h.sc.IsShutdown():
			resp.Status, code = healthShuttingDown, http.StatusServiceUnavailable
		case !ok:
			resp.Status, code = healthNotReady, http.StatusServiceUnavailable
		}
		writeJSON(w, code, resp)
	})
}

// RegisterHealthEndpoints mounts the health handlers on mux.
func (h *HealthChecker) RegisterHealthEndpoints(mux *http.ServeMux) {
	mux.Handle("GET /healthz", h.LivenessHandler())
	mux.Handle("GET /readyz", h.ReadinessHandler())
	mux.Handle("GET /healthz/detailed", h.DetailedHealthHandler())
}
