package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of all environment variables, e.g. CALBOT_TIMEZONE.
const EnvPrefix = "CALBOT"

// Keys.
const (
	KeyTimezone = "timezone"

	KeyCalendarBackend      = "calendar.backend"
	KeyCalendarID           = "calendar.id"
	KeyCalendarRemoteURL    = "calendar.remote_url"
	KeyCalendarTimeout      = "calendar.timeout"
	KeyCalendarAvailability = "calendar.availability"

	KeyBookingTitle = "booking.title"

	KeyCredentialsSource = "credentials.source"
	KeyCredentialsFile   = "credentials.file"
	KeyCredentialsEnv    = "credentials.env"
	KeyCredentialsBase64 = "credentials.base64"

	KeyGoogleClientID     = "google.client_id"
	KeyGoogleClientSecret = "google.client_secret"
	KeyGoogleRedirectURL  = "google.redirect_url"

	KeyLogLevel  = "log.level"
	KeyLogFormat = "log.format"

	KeyServeAddr      = "serve.addr"
	KeyServeTransport = "serve.transport"

	KeyMetricsEnabled = "metrics.enabled"
	KeyMetricsAddr    = "metrics.addr"

	KeyRateLimitRPS   = "ratelimit.rps"
	KeyRateLimitBurst = "ratelimit.burst"

	KeyLockRedisURL = "lock.redis_url"
	KeyLockTTL      = "lock.ttl"
)

// Transports for `calbot serve`.
const (
	TransportStdio          = "stdio"
	TransportStreamableHTTP = "streamable-http"
)

// Defaults.
const (
	DefaultTimezone        = "Asia/Kolkata"
	DefaultBookingTitle    = "Meeting via AI Bot"
	DefaultCalendarTimeout = 10 * time.Second
	DefaultLockTTL         = 30 * time.Second
	DefaultServeAddr       = ":8080"
	DefaultMetricsAddr     = ":9090"
)

// Config is the resolved configuration.
type Config struct {
	Timezone string
	Location *time.Location

	Calendar    CalendarConfig
	Booking     BookingConfig
	Credentials CredentialsConfig
	Google      GoogleConfig
	Log         LogConfig
	Serve       ServeConfig
	Metrics     MetricsConfig
	RateLimit   RateLimitConfig
	Lock        LockConfig
}

// CalendarConfig selects the calendar backend.
type CalendarConfig struct {
	Backend      string
	ID           string
	RemoteURL    string
	Timeout      time.Duration
	Availability string
}

// BookingConfig controls created events.
type BookingConfig struct {
	Title string
}

// CredentialsConfig selects where the Google token is read from.
type CredentialsConfig struct {
	Source string
	File   string
	Env    string
	Base64 string
}

// GoogleConfig holds the OAuth client.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// LogConfig controls the default logger.
type LogConfig struct {
	Level  string
	Format string
}

// ServeConfig controls `calbot serve`.
type ServeConfig struct {
	Addr      string
	Transport string
}

// MetricsConfig controls the metrics server.
type MetricsConfig struct {
	Enabled bool
	Addr    string
}

// RateLimitConfig limits HTTP API requests per client. RPS 0 disables it.
type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// LockConfig enables the distributed slot lock when RedisURL is set.
type LockConfig struct {
	RedisURL string
	TTL      time.Duration
}

// New returns a viper instance with defaults and CALBOT_* environment
// binding. CALBOT_CALENDAR_REMOTE_URL maps to calendar.remote_url.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// SetDefaults registers the default of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyTimezone, DefaultTimezone)

	v.SetDefault(KeyCalendarBackend, "google")
	v.SetDefault(KeyCalendarID, "primary")
	v.SetDefault(KeyCalendarRemoteURL, "")
	v.SetDefault(KeyCalendarTimeout, DefaultCalendarTimeout)
	v.SetDefault(KeyCalendarAvailability, "events")

	v.SetDefault(KeyBookingTitle, DefaultBookingTitle)

	v.SetDefault(KeyCredentialsSource, "file")
	v.SetDefault(KeyCredentialsFile, "")
	v.SetDefault(KeyCredentialsEnv, "")
	v.SetDefault(KeyCredentialsBase64, "")

	v.SetDefault(KeyGoogleClientID, "")
	v.SetDefault(KeyGoogleClientSecret, "")
	v.SetDefault(KeyGoogleRedirectURL, "")

	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")

	v.SetDefault(KeyServeAddr, DefaultServeAddr)
	v.SetDefault(KeyServeTransport, TransportStdio)

	v.SetDefault(KeyMetricsEnabled, false)
	v.SetDefault(KeyMetricsAddr, DefaultMetricsAddr)

	v.SetDefault(KeyRateLimitRPS, 0.0)
	v.SetDefault(KeyRateLimitBurst, 10)

	v.SetDefault(KeyLockRedisURL, "")
	v.SetDefault(KeyLockTTL, DefaultLockTTL)
}

// LoadDotEnv loads .env files into the process environment without
// overriding variables that are already set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads configFile when given and resolves the configuration.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	cfg := &Config{
		Timezone: v.GetString(KeyTimezone),
		Calendar: CalendarConfig{
			Backend:      v.GetString(KeyCalendarBackend),
			ID:           v.GetString(KeyCalendarID),
			RemoteURL:    v.GetString(KeyCalendarRemoteURL),
			Timeout:      v.GetDuration(KeyCalendarTimeout),
			Availability: v.GetString(KeyCalendarAvailability),
		},
		Booking: BookingConfig{
			Title: v.GetString(KeyBookingTitle),
		},
		Credentials: CredentialsConfig{
			Source: v.GetString(KeyCredentialsSource),
			File:   v.GetString(KeyCredentialsFile),
			Env:    v.GetString(KeyCredentialsEnv),
			Base64: v.GetString(KeyCredentialsBase64),
		},
		Google: GoogleConfig{
			ClientID:     v.GetString(KeyGoogleClientID),
			ClientSecret: v.GetString(KeyGoogleClientSecret),
			RedirectURL:  v.GetString(KeyGoogleRedirectURL),
		},
		Log: LogConfig{
			Level:  v.GetString(KeyLogLevel),
			Format: v.GetString(KeyLogFormat),
		},
		Serve: ServeConfig{
			Addr:      v.GetString(KeyServeAddr),
			Transport: v.GetString(KeyServeTransport),
		},
		Metrics: MetricsConfig{
			Enabled: v.GetBool(KeyMetricsEnabled),
			Addr:    v.GetString(KeyMetricsAddr),
		},
		RateLimit: RateLimitConfig{
			RPS:   v.GetFloat64(KeyRateLimitRPS),
			Burst: v.GetInt(KeyRateLimitBurst),
		},
		Lock: LockConfig{
			RedisURL: v.GetString(KeyLockRedisURL),
			TTL:      v.GetDuration(KeyLockTTL),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks enums, durations and the time zone, and resolves Location.
func (c *Config) Validate() error {
	var errs []error

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		errs = append(errs, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err))
	} else {
		c.Location = loc
	}

	switch c.Calendar.Backend {
	case "google":
	case "remote":
		if c.Calendar.RemoteURL == "" {
			errs = append(errs, fmt.Errorf("%s is required for the remote backend", KeyCalendarRemoteURL))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid %s %q, must be one of: google, remote", KeyCalendarBackend, c.Calendar.Backend))
	}

	switch c.Calendar.Availability {
	case "events", "freebusy":
	default:
		errs = append(errs, fmt.Errorf("invalid %s %q, must be one of: events, freebusy", KeyCalendarAvailability, c.Calendar.Availability))
	}

	if c.Calendar.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive", KeyCalendarTimeout))
	}

	switch c.Credentials.Source {
	case "file", "env", "base64":
	default:
		errs = append(errs, fmt.Errorf("invalid %s %q, must be one of: file, env, base64", KeyCredentialsSource, c.Credentials.Source))
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("invalid %s %q, must be one of: text, json", KeyLogFormat, c.Log.Format))
	}

	switch c.Serve.Transport {
	case TransportStdio, TransportStreamableHTTP:
	default:
		errs = append(errs, fmt.Errorf("invalid %s %q, must be one of: stdio, streamable-http", KeyServeTransport, c.Serve.Transport))
	}

	if c.RateLimit.RPS < 0 {
		errs = append(errs, fmt.Errorf("%s must not be negative", KeyRateLimitRPS))
	}
	if c.RateLimit.RPS > 0 && c.RateLimit.Burst < 1 {
		errs = append(errs, fmt.Errorf("%s must be at least 1 when rate limiting", KeyRateLimitBurst))
	}

	if c.Lock.RedisURL != "" && c.Lock.TTL <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive", KeyLockTTL))
	}

	return errors.Join(errs...)
}
