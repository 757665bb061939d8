package core

import (
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-spapi/marketplace"
)

const (
	DefaultTokenURL            = "https://api.amazon.com/auth/o2/token"
	DefaultTokenRequestTimeout = 30 * time.Second
	DefaultUserAgent           = "go-spapi"

	consentPath = "/apps/authorize/consent"
)

// Config is an immutable configuration value. The With* methods return
// modified copies; a TokenManager never observes later changes to the value
// it was built from.
type Config struct {
	MarketplaceID       string          `koanf:"marketplace_id" mapstructure:"marketplace_id"`
	Sandbox             bool            `koanf:"sandbox" mapstructure:"sandbox"`
	RedirectURL         string          `koanf:"redirect_url" mapstructure:"redirect_url"`
	Keys                ApplicationKeys `koanf:"application_keys" mapstructure:"application_keys"`
	RefreshToken        string          `koanf:"lwa_refresh_token" mapstructure:"lwa_refresh_token"`
	AccessToken         string          `koanf:"lwa_access_token" mapstructure:"lwa_access_token"`
	AccessTokenExpires  int64           `koanf:"lwa_access_token_expires_at" mapstructure:"lwa_access_token_expires_at"`
	TokenURL            string          `koanf:"token_url" mapstructure:"token_url"`
	TokenRequestTimeout time.Duration   `koanf:"token_request_timeout" mapstructure:"token_request_timeout"`
	InspectGrants       []string        `koanf:"inspect_grants" mapstructure:"inspect_grants"`
	UserAgent           string          `koanf:"user_agent" mapstructure:"user_agent"`
}

func DefaultConfig() Config {
	return Config{
		TokenURL:            DefaultTokenURL,
		TokenRequestTimeout: DefaultTokenRequestTimeout,
		InspectGrants:       []string{GrantRefreshToken},
		UserAgent:           DefaultUserAgent,
	}
}

func (c Config) Validate() error {
	fieldErrors := []goerrors.FieldError{}
	marketplaceID := strings.TrimSpace(c.MarketplaceID)
	if marketplaceID == "" {
		fieldErrors = append(fieldErrors, goerrors.FieldError{Field: "marketplace_id", Message: "is required"})
	} else if _, err := marketplace.Lookup(marketplaceID); err != nil {
		fieldErrors = append(fieldErrors, goerrors.FieldError{Field: "marketplace_id", Message: "is not a known marketplace"})
	}
	if strings.TrimSpace(c.Keys.ApplicationID) == "" {
		fieldErrors = append(fieldErrors, goerrors.FieldError{Field: "application_keys.application_id", Message: "is required"})
	}
	if tokenURL := strings.TrimSpace(c.TokenURL); tokenURL != "" {
		if parsed, err := url.Parse(tokenURL); err != nil || parsed.Scheme == "" || parsed.Host == "" {
			fieldErrors = append(fieldErrors, goerrors.FieldError{Field: "token_url", Message: "must be an absolute URL"})
		}
	}
	if c.TokenRequestTimeout < 0 {
		fieldErrors = append(fieldErrors, goerrors.FieldError{Field: "token_request_timeout", Message: "must not be negative"})
	}
	for _, grant := range c.InspectGrants {
		if !slices.Contains(knownGrants, strings.TrimSpace(grant)) {
			fieldErrors = append(fieldErrors, goerrors.FieldError{Field: "inspect_grants", Message: "unknown grant " + grant})
		}
	}
	if len(fieldErrors) == 0 {
		return nil
	}
	return goerrors.NewValidation("core: invalid configuration", fieldErrors...).
		WithCode(http.StatusBadRequest).
		WithTextCode(ErrorValidationFailed)
}

// IsSet reports whether an optional configuration property carries a value.
// Property names follow the koanf keys.
func (c Config) IsSet(property string) bool {
	switch strings.TrimSpace(property) {
	case "marketplace_id":
		return strings.TrimSpace(c.MarketplaceID) != ""
	case "redirect_url":
		return strings.TrimSpace(c.RedirectURL) != ""
	case "lwa_refresh_token":
		return strings.TrimSpace(c.RefreshToken) != ""
	case "lwa_access_token":
		return strings.TrimSpace(c.AccessToken) != ""
	case "lwa_client_id":
		return strings.TrimSpace(c.Keys.LWAClientID) != ""
	case "lwa_client_secret":
		return strings.TrimSpace(c.Keys.LWAClientSecret) != ""
	case "aws_access_key":
		return strings.TrimSpace(c.Keys.AWSAccessKey) != ""
	case "aws_secret_key":
		return strings.TrimSpace(c.Keys.AWSSecretKey) != ""
	default:
		return false
	}
}

// Tokens returns the configured token pair.
func (c Config) Tokens() AuthTokens {
	return AuthTokens{
		AccessToken:  c.AccessToken,
		RefreshToken: c.RefreshToken,
		ExpiresAt:    c.AccessTokenExpires,
	}
}

// Marketplace resolves MarketplaceID against the reference table.
func (c Config) Marketplace() (marketplace.Marketplace, error) {
	return marketplace.Lookup(c.MarketplaceID)
}

// Endpoint returns the SP-API origin for the configured marketplace.
func (c Config) Endpoint() (string, error) {
	resolved, err := c.Marketplace()
	if err != nil {
		return "", err
	}
	return resolved.Endpoint(c.Sandbox), nil
}

// WithMarketplaceID returns a copy bound to another marketplace.
func (c Config) WithMarketplaceID(id string) (Config, error) {
	if _, err := marketplace.Lookup(id); err != nil {
		return c, err
	}
	next := c.clone()
	next.MarketplaceID = strings.TrimSpace(id)
	return next, nil
}

// WithTokens returns a copy carrying tokens. Empty fields of tokens clear the
// corresponding configured value.
func (c Config) WithTokens(tokens AuthTokens) Config {
	next := c.clone()
	next.AccessToken = tokens.AccessToken
	next.RefreshToken = tokens.RefreshToken
	next.AccessTokenExpires = tokens.ExpiresAt
	return next
}

func (c Config) WithRedirectURL(redirectURL string) Config {
	next := c.clone()
	next.RedirectURL = strings.TrimSpace(redirectURL)
	return next
}

func (c Config) clone() Config {
	next := c
	next.InspectGrants = append([]string(nil), c.InspectGrants...)
	return next
}

func (c Config) inspects(grant string) bool {
	for _, candidate := range c.InspectGrants {
		if strings.TrimSpace(candidate) == grant {
			return true
		}
	}
	return false
}
