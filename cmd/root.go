package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/teemow/calbot/internal/config"
	"github.com/teemow/calbot/internal/logging"
)

// rootCmd represents the base command for the calbot application
var rootCmd = &cobra.Command{
	Use:   "calbot",
	Short: "Checks and books calendar slots from plain English requests",
	Long: `calbot is a scheduling assistant. It reads requests such as
"Book a meeting tomorrow afternoon", checks the calendar and books
the slot when it is free.

It can run as:
  - An interactive chat (default)
  - A one-shot command (calbot ask)
  - An MCP (Model Context Protocol) server and HTTP API for AI assistants

Configuration is read from flags, CALBOT_* environment variables, a .env
file and an optional config file, in that order of precedence.`,
	SilenceUsage:      true,
	PersistentPreRunE: initConfig,
}

var (
	// version will be set by main
	version = "dev"

	configFile string

	// v holds flag, environment and file configuration.
	v = config.New()

	// cfg is resolved by initConfig before any command runs.
	cfg *config.Config
)

// SetVersion sets the version for the root command
func SetVersion(ver string) {
	version = ver
	rootCmd.Version = ver
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "calbot version %s\n" .Version}}`)

	// If no subcommand is provided, run the chat command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "chat")
	}

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// initConfig loads .env, resolves the configuration and installs the
// default logger. Logs go to stderr so stdout stays usable for replies and
// the stdio MCP transport.
func initConfig(cmd *cobra.Command, _ []string) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}

	loaded, err := config.Load(v, configFile)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if _, err := logging.Setup(cmd.ErrOrStderr(), loaded.Log.Level, loaded.Log.Format); err != nil {
		return err
	}

	cfg = loaded
	return nil
}

// bindFlags binds each viper key to the named flag.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet, keys map[string]string) {
	for key, flag := range keys {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", flag, err))
		}
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "Config file (yaml, json or toml)")
	pf.String("timezone", config.DefaultTimezone, "Time zone requests are interpreted in. Can also use CALBOT_TIMEZONE env var.")
	pf.String("log-level", "info", "Log level: debug, info, warn or error")
	pf.String("log-format", "text", "Log format: text or json")
	pf.String("calendar-backend", "google", "Calendar backend: google or remote")
	pf.String("calendar-id", "primary", "Google Calendar ID")
	pf.String("calendar-remote-url", "", "Base URL of a calbot HTTP API (remote backend)")
	pf.String("calendar-availability", "events", "How availability is read from Google: events or freebusy")
	pf.Duration("calendar-timeout", config.DefaultCalendarTimeout, "Timeout of each calendar call")
	pf.String("booking-title", config.DefaultBookingTitle, "Title of booked events")
	pf.String("credentials-source", "file", "Where the Google token is read from: file, env or base64")
	pf.String("credentials-file", "", "Token file for the file source (default: user cache dir)")

	bindFlags(v, pf, map[string]string{
		config.KeyTimezone:             "timezone",
		config.KeyLogLevel:             "log-level",
		config.KeyLogFormat:            "log-format",
		config.KeyCalendarBackend:      "calendar-backend",
		config.KeyCalendarID:           "calendar-id",
		config.KeyCalendarRemoteURL:    "calendar-remote-url",
		config.KeyCalendarAvailability: "calendar-availability",
		config.KeyCalendarTimeout:      "calendar-timeout",
		config.KeyBookingTitle:         "booking-title",
		config.KeyCredentialsSource:    "credentials-source",
		config.KeyCredentialsFile:      "credentials-file",
	})

	rootCmd.AddCommand(newChatCmd())
	rootCmd.AddCommand(newAskCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
	rootCmd.AddCommand(newVersionCmd())
}
