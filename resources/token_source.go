package resources

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-spapi/core"
)

const defaultExpirySkew = time.Minute

// StaticToken hands out a fixed access token.
type StaticToken string

func (t StaticToken) AccessToken(context.Context) (string, error) {
	return string(t), nil
}

// RefreshExchanger is the refresh grant of core.TokenManager.
type RefreshExchanger interface {
	ExchangeRefreshToken(ctx context.Context, refreshToken string) (core.AuthTokens, error)
}

// ClientCredentialsExchanger is the grantless flow of core.TokenManager.
type ClientCredentialsExchanger interface {
	ExchangeClientCredentials(ctx context.Context, scope string) (core.GrantlessToken, error)
}

// RefreshingTokenSource serves the current access token and runs the refresh
// grant once it is missing or within Skew of its expiry. A token with a
// lifetime but no issue time, as seeded from configuration, counts as
// expired. Refreshes are serialized per source.
type RefreshingTokenSource struct {
	mu        sync.Mutex
	exchanger RefreshExchanger
	tokens    core.AuthTokens
	now       func() time.Time
	skew      time.Duration
}

func NewRefreshingTokenSource(exchanger RefreshExchanger, tokens core.AuthTokens) *RefreshingTokenSource {
	return &RefreshingTokenSource{
		exchanger: exchanger,
		tokens:    tokens,
		now:       time.Now,
		skew:      defaultExpirySkew,
	}
}

func (s *RefreshingTokenSource) AccessToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stale() {
		return s.tokens.AccessToken, nil
	}
	if !s.tokens.HasRefreshToken() {
		return "", core.MapError(&core.ConfigurationError{Field: "lwa_refresh_token"})
	}
	refreshed, err := s.exchanger.ExchangeRefreshToken(ctx, s.tokens.RefreshToken)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(refreshed.RefreshToken) == "" {
		refreshed.RefreshToken = s.tokens.RefreshToken
	}
	s.tokens = refreshed
	return refreshed.AccessToken, nil
}

func (s *RefreshingTokenSource) stale() bool {
	if s.tokens.ExpiresAt > 0 && s.tokens.IssuedAt.IsZero() {
		return true
	}
	return s.tokens.Expired(s.now().Add(s.skew))
}

// Tokens returns the token pair the source currently holds.
func (s *RefreshingTokenSource) Tokens() core.AuthTokens {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens
}

// GrantlessTokenSource serves client_credentials tokens for one scope.
type GrantlessTokenSource struct {
	mu        sync.Mutex
	exchanger ClientCredentialsExchanger
	scope     string
	token     core.GrantlessToken
	now       func() time.Time
	skew      time.Duration
}

func NewGrantlessTokenSource(exchanger ClientCredentialsExchanger, scope string) *GrantlessTokenSource {
	return &GrantlessTokenSource{
		exchanger: exchanger,
		scope:     scope,
		now:       time.Now,
		skew:      defaultExpirySkew,
	}
}

func (s *GrantlessTokenSource) AccessToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token.AccessToken != "" {
		expiry := s.token.Expiry()
		if expiry.IsZero() || s.now().Add(s.skew).Before(expiry) {
			return s.token.AccessToken, nil
		}
	}
	token, err := s.exchanger.ExchangeClientCredentials(ctx, s.scope)
	if err != nil {
		return "", err
	}
	s.token = token
	return token.AccessToken, nil
}

var (
	_ core.AccessTokenSource     = StaticToken("")
	_ core.AccessTokenSource     = (*RefreshingTokenSource)(nil)
	_ core.AccessTokenSource     = (*GrantlessTokenSource)(nil)
	_ RefreshExchanger           = (*core.TokenManager)(nil)
	_ ClientCredentialsExchanger = (*core.TokenManager)(nil)
)
