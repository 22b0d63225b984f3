package google

import (
	"context"
	"encoding/base64"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

const tokenJSON = `{"access_token":"ya29.abc","token_type":"Bearer","refresh_token":"1//refresh","expiry":"2030-01-01T00:00:00Z"}`

func TestParseToken(t *testing.T) {
	tests := []struct {
		name        string
		data        string
		wantAccess  string
		wantRefresh string
		wantErr     bool
	}{
		{"json", tokenJSON, "ya29.abc", "1//refresh", false},
		{"json with whitespace", "\n  " + tokenJSON + "\n", "ya29.abc", "1//refresh", false},
		{"legacy two fields", "ya29.abc 1//refresh\n", "ya29.abc", "1//refresh", false},
		{"empty", "  ", "", "", true},
		{"broken json", `{"access_token":`, "", "", true},
		{"json without tokens", `{"token_type":"Bearer"}`, "", "", true},
		{"one field", "onlyaccess", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok, err := ParseToken([]byte(tt.data))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantAccess, tok.AccessToken)
			assert.Equal(t, tt.wantRefresh, tok.RefreshToken)
		})
	}
}

func TestParseToken_LegacyIsExpired(t *testing.T) {
	tok, err := ParseToken([]byte("a r"))
	require.NoError(t, err)
	assert.True(t, tok.Expiry.Before(time.Now()))
}

func TestFileTokenProvider(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token.json")
	p := NewFileTokenProvider(path)

	assert.False(t, p.HasToken())
	_, err := p.GetToken(context.Background())
	assert.ErrorIs(t, err, ErrNoToken)

	require.NoError(t, WriteTokenFile(path, &oauth2.Token{AccessToken: "access", RefreshToken: "refresh"}))
	assert.True(t, p.HasToken())

	tok, err := p.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "access", tok.AccessToken)
	assert.Equal(t, "refresh", tok.RefreshToken)
	assert.Contains(t, p.Source(), path)
}

func TestFileTokenProvider_DefaultPath(t *testing.T) {
	p := NewFileTokenProvider("")
	assert.Equal(t, DefaultTokenPath(), p.Path())
	assert.Equal(t, "google-calendar.token", filepath.Base(p.Path()))
}

func TestEnvTokenProvider(t *testing.T) {
	t.Setenv("CALBOT_TEST_TOKEN", "")
	p := NewEnvTokenProvider("CALBOT_TEST_TOKEN")

	assert.False(t, p.HasToken())
	_, err := p.GetToken(context.Background())
	assert.ErrorIs(t, err, ErrNoToken)

	t.Setenv("CALBOT_TEST_TOKEN", tokenJSON)
	assert.True(t, p.HasToken())
	tok, err := p.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ya29.abc", tok.AccessToken)
	assert.Equal(t, "env $CALBOT_TEST_TOKEN", p.Source())

	assert.Equal(t, "env $"+DefaultTokenEnv, NewEnvTokenProvider("").Source())
}

func TestBase64TokenProvider(t *testing.T) {
	for name, enc := range map[string]*base64.Encoding{
		"std": base64.StdEncoding,
		"url": base64.URLEncoding,
	} {
		t.Run(name, func(t *testing.T) {
			p := NewBase64TokenProvider(enc.EncodeToString([]byte(tokenJSON)))
			require.True(t, p.HasToken())
			tok, err := p.GetToken(context.Background())
			require.NoError(t, err)
			assert.Equal(t, "1//refresh", tok.RefreshToken)
		})
	}

	_, err := NewBase64TokenProvider("!!not base64!!").GetToken(context.Background())
	assert.Error(t, err)

	_, err = NewBase64TokenProvider("").GetToken(context.Background())
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestNewTokenProvider(t *testing.T) {
	p, err := NewTokenProvider(ProviderConfig{})
	require.NoError(t, err)
	assert.IsType(t, &FileTokenProvider{}, p)

	p, err = NewTokenProvider(ProviderConfig{Source: SourceEnv, EnvVar: "X"})
	require.NoError(t, err)
	assert.IsType(t, &EnvTokenProvider{}, p)

	p, err = NewTokenProvider(ProviderConfig{Source: SourceBase64, Base64: "e30="})
	require.NoError(t, err)
	assert.IsType(t, &Base64TokenProvider{}, p)

	_, err = NewTokenProvider(ProviderConfig{Source: SourceBase64})
	assert.Error(t, err)

	_, err = NewTokenProvider(ProviderConfig{Source: "vault"})
	assert.Error(t, err)
}
