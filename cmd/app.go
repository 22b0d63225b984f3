package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/oauth2"

	"github.com/teemow/calbot/internal/calendar"
	"github.com/teemow/calbot/internal/config"
	"github.com/teemow/calbot/internal/google"
	"github.com/teemow/calbot/internal/instrumentation"
	"github.com/teemow/calbot/internal/server"
	"github.com/teemow/calbot/internal/slotlock"
)

// app wires the configured calendar backend, slot lock and instrumentation
// into a server context shared by every command.
type app struct {
	cfg      *config.Config
	provider *instrumentation.Provider
	backend  calendar.Backend
	sc       *server.ServerContext
	closers  []func() error
}

type appOptions struct {
	backend calendar.Backend
}

type appOption func(*appOptions)

// withBackend skips backend construction, mostly for tests.
func withBackend(b calendar.Backend) appOption {
	return func(o *appOptions) {
		o.backend = b
	}
}

func newApp(ctx context.Context, cfg *config.Config, opts ...appOption) (_ *app, err error) {
	var o appOptions
	for _, opt := range opts {
		opt(&o)
	}

	a := &app{cfg: cfg}
	defer func() {
		if err != nil {
			_ = a.Close(context.Background())
		}
	}()

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version
	a.provider, err = instrumentation.NewProvider(ctx, instrConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create instrumentation provider: %w", err)
	}

	a.backend = o.backend
	if a.backend == nil {
		a.backend, err = newBackend(ctx, cfg, a.provider.Metrics())
		if err != nil {
			return nil, err
		}
	}

	locker, err := newLocker(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if closer, ok := locker.(interface{ Close() error }); ok {
		a.closers = append(a.closers, closer.Close)
	}

	a.sc, err = server.NewServerContext(ctx, server.Options{
		Backend:     a.backend,
		Locker:      locker,
		LockTTL:     cfg.Lock.TTL,
		Title:       cfg.Booking.Title,
		Location:    cfg.Location,
		Metrics:     a.provider.Metrics(),
		Audit:       a.provider.AuditLogger(),
		Logger:      slog.Default(),
		CallTimeout: cfg.Calendar.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create server context: %w", err)
	}

	return a, nil
}

// newBackend builds the configured calendar backend. Google credentials are
// only resolved for the google backend.
func newBackend(ctx context.Context, cfg *config.Config, metrics *instrumentation.Metrics) (calendar.Backend, error) {
	backendCfg := calendar.Config{
		Backend:      cfg.Calendar.Backend,
		CalendarID:   cfg.Calendar.ID,
		Availability: cfg.Calendar.Availability,
		RemoteURL:    cfg.Calendar.RemoteURL,
		Location:     cfg.Location,
		Timeout:      cfg.Calendar.Timeout,
		Metrics:      metrics,
		Logger:       slog.Default(),
	}

	if cfg.Calendar.Backend == calendar.BackendGoogle {
		tokens, err := newTokenProvider(cfg)
		if err != nil {
			return nil, err
		}
		if !tokens.HasToken() {
			return nil, fmt.Errorf("no Google token from the %s credential source, run 'calbot auth' first", tokens.Source())
		}
		backendCfg.Tokens = tokens
		backendCfg.OAuth = oauthConfig(cfg)
	}

	backend, err := calendar.NewFromConfig(ctx, backendCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar backend: %w", err)
	}
	return backend, nil
}

func newTokenProvider(cfg *config.Config) (google.TokenProvider, error) {
	return google.NewTokenProvider(google.ProviderConfig{
		Source: cfg.Credentials.Source,
		File:   cfg.Credentials.File,
		EnvVar: cfg.Credentials.Env,
		Base64: cfg.Credentials.Base64,
	})
}

func oauthConfig(cfg *config.Config) *oauth2.Config {
	return google.OAuthConfig(cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Google.RedirectURL)
}

// newLocker returns a Redis lock when lock.redis_url is set, otherwise an
// in-process lock.
func newLocker(ctx context.Context, cfg *config.Config) (slotlock.Locker, error) {
	if cfg.Lock.RedisURL == "" {
		return slotlock.NewMemory(), nil
	}
	locker, err := slotlock.NewRedis(ctx, cfg.Lock.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create slot lock: %w", err)
	}
	return locker, nil
}

// Close releases everything newApp acquired.
func (a *app) Close(ctx context.Context) error {
	var errs []error
	if a.sc != nil {
		errs = append(errs, a.sc.Shutdown())
	}
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	if a.provider != nil {
		if err := a.provider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shutdown instrumentation: %w", err))
		}
	}
	return errors.Join(errs...)
}
