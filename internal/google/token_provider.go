package google

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// Credential sources accepted by NewTokenProvider.
const (
	SourceFile   = "file"
	SourceEnv    = "env"
	SourceBase64 = "base64"
)

// DefaultTokenEnv is the variable EnvTokenProvider reads when none is set.
const DefaultTokenEnv = "CALBOT_GOOGLE_TOKEN"

// ErrNoToken is returned when a source holds no token.
var ErrNoToken = errors.New("no Google OAuth token found")

// TokenProvider is an interface for providing OAuth tokens for Google APIs
// This abstraction allows different token sources (file, environment, inline blob)
type TokenProvider interface {
	// GetToken retrieves the OAuth token
	GetToken(ctx context.Context) (*oauth2.Token, error)

	// HasToken checks if a token is present without validating it
	HasToken() bool

	// Source describes where the token comes from, for logs and errors
	Source() string
}

// ProviderConfig selects and configures a TokenProvider.
type ProviderConfig struct {
	// Source is one of SourceFile, SourceEnv or SourceBase64. Empty means file.
	Source string
	// File is the token path for SourceFile. Empty means DefaultTokenPath().
	File string
	// EnvVar is the variable name for SourceEnv. Empty means DefaultTokenEnv.
	EnvVar string
	// Base64 is the encoded token for SourceBase64.
	Base64 string
}

// NewTokenProvider builds the provider named by cfg.Source.
func NewTokenProvider(cfg ProviderConfig) (TokenProvider, error) {
	switch cfg.Source {
	case SourceFile, "":
		return NewFileTokenProvider(cfg.File), nil
	case SourceEnv:
		return NewEnvTokenProvider(cfg.EnvVar), nil
	case SourceBase64:
		if cfg.Base64 == "" {
			return nil, fmt.Errorf("base64 credential source requires a token")
		}
		return NewBase64TokenProvider(cfg.Base64), nil
	default:
		return nil, fmt.Errorf("unknown credential source %q, must be one of: file, env, base64", cfg.Source)
	}
}

// FileTokenProvider provides tokens from a file on disk
type FileTokenProvider struct {
	path string
}

// NewFileTokenProvider creates a file-based token provider. An empty path
// means DefaultTokenPath().
func NewFileTokenProvider(path string) *FileTokenProvider {
	if path == "" {
		path = DefaultTokenPath()
	}
	return &FileTokenProvider{path: path}
}

// Path returns the token file location.
func (p *FileTokenProvider) Path() string {
	return p.path
}

// GetToken reads and parses the token file.
func (p *FileTokenProvider) GetToken(_ context.Context) (*oauth2.Token, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w at %s, run `calbot auth`", ErrNoToken, p.path)
		}
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}
	return ParseToken(data)
}

// HasToken checks if the token file exists
func (p *FileTokenProvider) HasToken() bool {
	_, err := os.Stat(p.path)
	return err == nil
}

// Source implements TokenProvider.
func (p *FileTokenProvider) Source() string {
	return "file " + p.path
}

// EnvTokenProvider reads a JSON token from an environment variable.
type EnvTokenProvider struct {
	key string
}

// NewEnvTokenProvider creates a provider reading key. An empty key means
// DefaultTokenEnv.
func NewEnvTokenProvider(key string) *EnvTokenProvider {
	if key == "" {
		key = DefaultTokenEnv
	}
	return &EnvTokenProvider{key: key}
}

// GetToken parses the variable's value.
func (p *EnvTokenProvider) GetToken(_ context.Context) (*oauth2.Token, error) {
	v := os.Getenv(p.key)
	if v == "" {
		return nil, fmt.Errorf("%w in $%s", ErrNoToken, p.key)
	}
	return ParseToken([]byte(v))
}

// HasToken reports whether the variable is set.
func (p *EnvTokenProvider) HasToken() bool {
	return os.Getenv(p.key) != ""
}

// Source implements TokenProvider.
func (p *EnvTokenProvider) Source() string {
	return "env $" + p.key
}

// Base64TokenProvider decodes a token passed inline, typically from a
// secret mounted as a single config value.
type Base64TokenProvider struct {
	encoded string
}

// NewBase64TokenProvider creates a provider for the encoded token.
func NewBase64TokenProvider(encoded string) *Base64TokenProvider {
	return &Base64TokenProvider{encoded: strings.TrimSpace(encoded)}
}

// GetToken decodes and parses the blob. Standard and URL alphabets are
// both accepted.
func (p *Base64TokenProvider) GetToken(_ context.Context) (*oauth2.Token, error) {
	if p.encoded == "" {
		return nil, ErrNoToken
	}
	data, err := base64.StdEncoding.DecodeString(p.encoded)
	if err != nil {
		data, err = base64.URLEncoding.DecodeString(p.encoded)
		if err != nil {
			return nil, fmt.Errorf("failed to decode base64 token: %w", err)
		}
	}
	return ParseToken(data)
}

// HasToken reports whether a blob was configured.
func (p *Base64TokenProvider) HasToken() bool {
	return p.encoded != ""
}

// Source implements TokenProvider.
func (p *Base64TokenProvider) Source() string {
	return "base64"
}

// ParseToken decodes an oauth2.Token from JSON. The older
// "<access> <refresh>" file format is accepted too; such tokens are marked
// expired so the first request refreshes them.
func ParseToken(data []byte) (*oauth2.Token, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil, ErrNoToken
	}

	if strings.HasPrefix(trimmed, "{") {
		var t oauth2.Token
		if err := json.Unmarshal([]byte(trimmed), &t); err != nil {
			return nil, fmt.Errorf("invalid token JSON: %w", err)
		}
		if t.AccessToken == "" && t.RefreshToken == "" {
			return nil, fmt.Errorf("token has neither access nor refresh token")
		}
		return &t, nil
	}

	f := strings.Fields(trimmed)
	if len(f) != 2 {
		return nil, fmt.Errorf("invalid token format")
	}
	return &oauth2.Token{
		AccessToken:  f[0],
		TokenType:    "Bearer",
		RefreshToken: f[1],
		Expiry:       time.Unix(1, 0),
	}, nil
}
