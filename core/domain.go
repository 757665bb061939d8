package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-spapi/schema"
)

const (
	GrantAuthorizationCode = "authorization_code"
	GrantRefreshToken      = "refresh_token"
	GrantClientCredentials = "client_credentials"
)

// Grantless scopes accepted by the client_credentials grant.
const (
	ScopeNotifications            = "sellingpartnerapi::notifications"
	ScopeMigration                = "sellingpartnerapi::migration"
	ScopeClientCredentialRotation = "sellingpartnerapi::client_credential:rotation"
)

var knownGrants = []string{GrantAuthorizationCode, GrantRefreshToken, GrantClientCredentials}

type ApplicationKeys struct {
	ApplicationID   string `koanf:"application_id" mapstructure:"application_id"`
	LWAClientID     string `koanf:"lwa_client_id" mapstructure:"lwa_client_id"`
	LWAClientSecret string `koanf:"lwa_client_secret" mapstructure:"lwa_client_secret"`
	AWSAccessKey    string `koanf:"aws_access_key" mapstructure:"aws_access_key"`
	AWSSecretKey    string `koanf:"aws_secret_key" mapstructure:"aws_secret_key"`
}

// AuthTokens is the token pair held for one selling partner. It may be
// partially populated: a value carrying only RefreshToken is valid input to
// ExchangeRefreshToken.
//
// ExpiresAt carries the token endpoint's expires_in value unchanged, a
// lifetime in seconds rather than an instant. Persisted rows written by
// earlier clients depend on that encoding. Use Expiry for the absolute
// deadline.
type AuthTokens struct {
	AccessToken  string    `schema:"access_token"`
	RefreshToken string    `schema:"refresh_token"`
	ExpiresAt    int64     `schema:"expires_at"`
	IssuedAt     time.Time `schema:"-"`
}

// Expiry returns IssuedAt plus the ExpiresAt lifetime. It is zero when either
// part is unknown.
func (t AuthTokens) Expiry() time.Time {
	if t.IssuedAt.IsZero() || t.ExpiresAt <= 0 {
		return time.Time{}
	}
	return t.IssuedAt.Add(time.Duration(t.ExpiresAt) * time.Second)
}

// Expired reports whether the access token is missing or past its expiry at
// now. Tokens with an unknown expiry are treated as live.
func (t AuthTokens) Expired(now time.Time) bool {
	if strings.TrimSpace(t.AccessToken) == "" {
		return true
	}
	expiry := t.Expiry()
	if expiry.IsZero() {
		return false
	}
	return !now.Before(expiry)
}

func (t AuthTokens) HasRefreshToken() bool {
	return strings.TrimSpace(t.RefreshToken) != ""
}

// GrantlessToken is an access token issued by the client_credentials grant.
// ExpiresAt follows the same lifetime encoding as AuthTokens.
type GrantlessToken struct {
	AccessToken string    `schema:"access_token"`
	ExpiresAt   int64     `schema:"expires_at"`
	IssuedAt    time.Time `schema:"-"`
	Scope       string    `schema:"scope"`
}

func (t GrantlessToken) Expiry() time.Time {
	return AuthTokens{AccessToken: t.AccessToken, ExpiresAt: t.ExpiresAt, IssuedAt: t.IssuedAt}.Expiry()
}

// TokenResponse is the raw token endpoint response handed to observers and
// carried by AuthenticationError and HTTPError.
type TokenResponse struct {
	Grant      string
	StatusCode int
	Header     http.Header
	Body       []byte
}

func (r *TokenResponse) Successful() bool {
	return r != nil && r.StatusCode >= http.StatusOK && r.StatusCode < http.StatusMultipleChoices
}

// JSON decodes the response body into a map with snake_case keys.
func (r *TokenResponse) JSON() (map[string]any, error) {
	if r == nil || len(bytes.TrimSpace(r.Body)) == 0 {
		return map[string]any{}, nil
	}
	decoder := json.NewDecoder(bytes.NewReader(r.Body))
	decoder.UseNumber()
	var raw map[string]any
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("core: decode token response: %w", err)
	}
	return schema.KeysToInternal(raw), nil
}

// tokenEndpointBody is the union of the success and error bodies returned by
// the LWA token endpoint. Keys are snake_case on the wire.
type tokenEndpointBody struct {
	AccessToken      string `schema:"access_token"`
	RefreshToken     string `schema:"refresh_token"`
	TokenType        string `schema:"token_type"`
	ExpiresIn        int64  `schema:"expires_in"`
	Scope            string `schema:"scope"`
	ErrorCode        string `schema:"error"`
	ErrorDescription string `schema:"error_description"`
}

var tokenEndpointBodyShape = schema.Define[tokenEndpointBody]("TokenEndpointBody",
	schema.WireName("access_token", "access_token"),
	schema.WireName("refresh_token", "refresh_token"),
	schema.WireName("token_type", "token_type"),
	schema.WireName("expires_in", "expires_in"),
	schema.WireName("error_description", "error_description"),
)

func (b tokenEndpointBody) describeError() string {
	if description := strings.TrimSpace(b.ErrorDescription); description != "" {
		return description
	}
	if code := strings.TrimSpace(b.ErrorCode); code != "" {
		return code
	}
	return "unknown error"
}
