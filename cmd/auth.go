package cmd

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/teemow/calbot/internal/config"
	"github.com/teemow/calbot/internal/google"
)

func newAuthCmd() *cobra.Command {
	var printBase64 bool

	cmd := &cobra.Command{
		Use:   "auth [code]",
		Short: "Authorize access to Google Calendar",
		Long: `Authorize calbot to read and create events in Google Calendar.

Without arguments the authorization URL is printed. Visit it, grant access
and run the command again with the code Google shows:

  calbot auth
  calbot auth 4/0Ab...

The token is written to --credentials-file (default: user cache dir).
With --print-base64 the token is also printed base64 encoded, ready for
CALBOT_CREDENTIALS_BASE64 with --credentials-source=base64.

Requires CALBOT_GOOGLE_CLIENT_ID and CALBOT_GOOGLE_CLIENT_SECRET.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := ""
			if len(args) == 1 {
				code = args[0]
			}
			return runAuth(cmd.Context(), cmd.OutOrStdout(), cfg, code, printBase64)
		},
	}

	cmd.Flags().BoolVar(&printBase64, "print-base64", false, "Also print the saved token base64 encoded")

	return cmd
}

func runAuth(ctx context.Context, w io.Writer, cfg *config.Config, code string, printBase64 bool) error {
	if cfg.Google.ClientID == "" || cfg.Google.ClientSecret == "" {
		return fmt.Errorf("%s and %s are required to authorize", config.KeyGoogleClientID, config.KeyGoogleClientSecret)
	}
	conf := oauthConfig(cfg)

	if code == "" {
		fmt.Fprintf(w, `To authorize calbot:

1. Visit this URL in your browser:
   %s

2. Sign in with your Google account and grant calendar access
3. Run: calbot auth <code>
`, google.GetAuthURL(conf))
		return nil
	}

	path := cfg.Credentials.File
	if path == "" {
		path = google.DefaultTokenPath()
	}
	token, err := google.SaveToken(ctx, conf, code, path)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Token saved to %s\n", path)

	if printBase64 {
		data, err := json.Marshal(token)
		if err != nil {
			return fmt.Errorf("failed to encode token: %w", err)
		}
		fmt.Fprintln(w, base64.StdEncoding.EncodeToString(data))
	}
	return nil
}
