package google

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	calendar "google.golang.org/api/calendar/v3"
)

// OOBRedirectURL makes Google show the authorization code to the user
// instead of redirecting to a local server.
const OOBRedirectURL = "urn:ietf:wg:oauth:2.0:oob"

// Scopes are the OAuth scopes calbot requests. Reading events and inserting
// new ones is all the assistant does.
var Scopes = []string{
	calendar.CalendarEventsScope,
}

// OAuthConfig returns the OAuth2 configuration for the given client
// credentials. An empty redirectURL selects the out-of-band flow.
func OAuthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	if redirectURL == "" {
		redirectURL = OOBRedirectURL
	}
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  redirectURL,
		Scopes:       Scopes,
	}
}

// GetAuthURL returns the URL the user has to visit to authorize calbot.
// Offline access is requested so the saved token carries a refresh token.
func GetAuthURL(conf *oauth2.Config) string {
	return conf.AuthCodeURL("state", oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// SaveToken exchanges an authorization code for a token and writes it to
// path as JSON. The parent directory is created if needed.
func SaveToken(ctx context.Context, conf *oauth2.Config, authCode, path string) (*oauth2.Token, error) {
	t, err := conf.Exchange(ctx, authCode)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange auth code: %w", err)
	}
	if err := WriteTokenFile(path, t); err != nil {
		return nil, err
	}
	return t, nil
}

// WriteTokenFile stores t as JSON with owner-only permissions.
func WriteTokenFile(path string, t *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// DefaultTokenPath returns where `calbot auth` stores the token when no
// path is configured.
func DefaultTokenPath() string {
	return filepath.Join(userCacheDir(), "calbot", "google-calendar.token")
}

// HTTPClient returns an HTTP client that authorizes requests with the token
// from provider and refreshes it through conf.
// The client is configured to use HTTP/1.1 to avoid HTTP/2 protocol errors.
func HTTPClient(ctx context.Context, conf *oauth2.Config, provider TokenProvider) (*http.Client, error) {
	if provider == nil {
		return nil, fmt.Errorf("token provider cannot be nil")
	}
	token, err := provider.GetToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get Google OAuth token from %s: %w", provider.Source(), err)
	}

	client := oauth2.NewClient(ctx, conf.TokenSource(ctx, token))

	// Force HTTP/1.1 by disabling HTTP/2
	if transport, ok := client.Transport.(*oauth2.Transport); ok {
		transport.Base = &http.Transport{
			Proxy:             http.ProxyFromEnvironment,
			ForceAttemptHTTP2: false,
		}
	}

	return client, nil
}

func userCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return dir
	}
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return xdg
	}
	return filepath.Join(os.Getenv("HOME"), ".cache")
}
