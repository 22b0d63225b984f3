package google

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	calendar "google.golang.org/api/calendar/v3"
)

func TestOAuthConfig(t *testing.T) {
	conf := OAuthConfig("id", "secret", "")
	assert.Equal(t, "id", conf.ClientID)
	assert.Equal(t, "secret", conf.ClientSecret)
	assert.Equal(t, OOBRedirectURL, conf.RedirectURL)
	assert.Equal(t, []string{calendar.CalendarEventsScope}, conf.Scopes)

	conf = OAuthConfig("id", "secret", "http://localhost:8080/callback")
	assert.Equal(t, "http://localhost:8080/callback", conf.RedirectURL)
}

func TestGetAuthURL(t *testing.T) {
	u, err := url.Parse(GetAuthURL(OAuthConfig("my-client", "secret", "")))
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, "my-client", q.Get("client_id"))
	assert.Equal(t, "offline", q.Get("access_type"))
	assert.Equal(t, calendar.CalendarEventsScope, q.Get("scope"))
}

type staticProvider struct {
	token *oauth2.Token
	err   error
}

func (s staticProvider) GetToken(context.Context) (*oauth2.Token, error) { return s.token, s.err }
func (s staticProvider) HasToken() bool                                  { return s.token != nil }
func (s staticProvider) Source() string                                  { return "static" }

func TestHTTPClient(t *testing.T) {
	conf := OAuthConfig("id", "secret", "")

	_, err := HTTPClient(context.Background(), conf, nil)
	assert.Error(t, err)

	_, err = HTTPClient(context.Background(), conf, staticProvider{err: ErrNoToken})
	assert.ErrorIs(t, err, ErrNoToken)

	client, err := HTTPClient(context.Background(), conf, staticProvider{token: &oauth2.Token{AccessToken: "a"}})
	require.NoError(t, err)
	assert.NotNil(t, client)
}
