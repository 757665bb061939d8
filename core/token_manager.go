package core

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	glog "github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-spapi/schema"
)

// Redirect callback parameters delivered by the consent flow.
const (
	ParamState          = "state"
	ParamSPAPIOAuthCode = "spapi_oauth_code"
)

// TokenManager drives the Login with Amazon grants for one application and
// marketplace. It holds no token state: every exchange returns a new value
// and hands it to the configured observers. Concurrent refreshes of the same
// credential are not coordinated.
type TokenManager struct {
	config              Config
	keys                ApplicationKeys
	marketplace         Marketplace
	marketplaceOverride bool
	httpClient          HTTPDoer
	observer            TokenObserver
	now                 func() time.Time
	logger              Logger
	loggerProvider      LoggerProvider
	metricsRecorder     MetricsRecorder
	ops                 operationObserver
}

func NewTokenManager(cfg Config, opts ...Option) (*TokenManager, error) {
	builder := defaultManagerBuilder()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	provider, logger := glog.Resolve(loggerName, builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if builder.loggerProvider != nil {
		if named := provider.GetLogger(loggerName); named != nil {
			logger = glog.Ensure(named)
		}
	}
	if builder.metricsRecorder == nil {
		builder.metricsRecorder = NopMetricsRecorder{}
	}
	if builder.configProvider == nil {
		builder.configProvider = NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = GoOptionsResolver{}
	}
	if builder.now == nil {
		builder.now = time.Now
	}

	defaults := DefaultConfig()
	loaded, err := builder.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, MapError(err)
	}
	finalConfig, err := builder.optionsResolver.Resolve(defaults, loaded, cfg)
	if err != nil {
		return nil, MapError(err)
	}

	manager := &TokenManager{
		config:              finalConfig,
		keys:                finalConfig.Keys,
		marketplace:         builder.marketplace,
		marketplaceOverride: builder.marketplace != nil,
		httpClient:          builder.httpClient,
		observer:            chainObservers(builder.observers),
		now:                 builder.now,
		logger:              logger,
		loggerProvider:      provider,
		metricsRecorder:     builder.metricsRecorder,
		ops: operationObserver{
			logger:          logger,
			metricsRecorder: builder.metricsRecorder,
		},
	}
	if manager.marketplace == nil {
		resolved, err := finalConfig.Marketplace()
		if err != nil {
			return nil, MapError(err)
		}
		manager.marketplace = resolved
	}
	if manager.httpClient == nil {
		manager.httpClient = &http.Client{Timeout: finalConfig.TokenRequestTimeout}
	}
	return manager, nil
}

// WithConfig returns a manager bound to cfg that shares this manager's
// transport, observers, logger and metrics. The receiver is unchanged.
func (m *TokenManager) WithConfig(cfg Config) (*TokenManager, error) {
	if m == nil {
		return nil, fmt.Errorf("core: token manager is nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	next := *m
	next.config = cfg.clone()
	next.keys = cfg.Keys
	if !m.marketplaceOverride {
		resolved, err := cfg.Marketplace()
		if err != nil {
			return nil, MapError(err)
		}
		next.marketplace = resolved
	}
	return &next, nil
}

func (m *TokenManager) Config() Config {
	if m == nil {
		return Config{}
	}
	return m.config.clone()
}

func (m *TokenManager) Marketplace() Marketplace {
	if m == nil {
		return nil
	}
	return m.marketplace
}

func (m *TokenManager) Logger() Logger {
	if m == nil {
		return glog.Nop()
	}
	return m.logger
}

func (m *TokenManager) LoggerProvider() LoggerProvider {
	if m == nil {
		return nil
	}
	return m.loggerProvider
}

func (m *TokenManager) MetricsRecorder() MetricsRecorder {
	if m == nil || m.metricsRecorder == nil {
		return NopMetricsRecorder{}
	}
	return m.metricsRecorder
}

// AuthorizationURL builds the Seller Central consent URL carrying the
// configured redirect_url and state when they are set.
func (m *TokenManager) AuthorizationURL(state string) string {
	if m == nil || m.marketplace == nil {
		return ""
	}
	values := url.Values{}
	if redirectURL := strings.TrimSpace(m.config.RedirectURL); redirectURL != "" {
		values.Set("redirect_url", redirectURL)
	}
	if state != "" {
		values.Set(ParamState, state)
	}
	authURL := strings.TrimRight(m.marketplace.BaseURL(), "/") + consentPath
	if encoded := values.Encode(); encoded != "" {
		authURL += "?" + encoded
	}
	return authURL
}

// ExchangeRedirectForTokens completes the consent redirect: it checks the
// callback parameters, requires the returned state to equal originalState
// exactly and then exchanges spapi_oauth_code for tokens.
func (m *TokenManager) ExchangeRedirectForTokens(
	ctx context.Context,
	originalState string,
	params map[string]any,
) (tokens AuthTokens, err error) {
	if m == nil {
		return AuthTokens{}, fmt.Errorf("core: token manager is nil")
	}
	startedAt := time.Now()
	defer func() {
		m.ops.observeOperation(ctx, startedAt, "exchange_redirect", err, m.operationFields(GrantAuthorizationCode))
	}()

	if err := m.requireRedirectURL(); err != nil {
		return AuthTokens{}, err
	}
	if err := schema.ValidateArrayParameters(params, ParamState, ParamSPAPIOAuthCode); err != nil {
		return AuthTokens{}, err
	}
	returnedState, ok := params[ParamState].(string)
	if !ok || returnedState != originalState {
		return AuthTokens{}, newStateMismatchError()
	}
	code, ok := params[ParamSPAPIOAuthCode].(string)
	if !ok {
		return AuthTokens{}, schema.ValidateArrayOfType[string](ParamSPAPIOAuthCode, []any{params[ParamSPAPIOAuthCode]})
	}
	return m.authorizationCodeGrant(ctx, code)
}

// ExchangeAuthorizationCode runs the authorization-code grant without a
// state check, for flows not started by a consent redirect.
func (m *TokenManager) ExchangeAuthorizationCode(ctx context.Context, code string) (tokens AuthTokens, err error) {
	if m == nil {
		return AuthTokens{}, fmt.Errorf("core: token manager is nil")
	}
	startedAt := time.Now()
	defer func() {
		m.ops.observeOperation(ctx, startedAt, "exchange_authorization_code", err, m.operationFields(GrantAuthorizationCode))
	}()

	if err := m.requireRedirectURL(); err != nil {
		return AuthTokens{}, err
	}
	return m.authorizationCodeGrant(ctx, code)
}

// ExchangeRefreshToken trades a refresh token for a new token pair. When the
// response omits refresh_token, the pair handed to observers and returned
// keeps refreshToken.
func (m *TokenManager) ExchangeRefreshToken(ctx context.Context, refreshToken string) (tokens AuthTokens, err error) {
	if m == nil {
		return AuthTokens{}, fmt.Errorf("core: token manager is nil")
	}
	startedAt := time.Now()
	defer func() {
		m.ops.observeOperation(ctx, startedAt, "exchange_refresh_token", err, m.operationFields(GrantRefreshToken))
	}()

	if err := schema.ValidateArrayParameters(map[string]any{"refresh_token": refreshToken}, "refresh_token"); err != nil {
		return AuthTokens{}, err
	}
	form := url.Values{}
	form.Set("grant_type", GrantRefreshToken)
	form.Set("refresh_token", refreshToken)
	body, err := m.requestToken(ctx, GrantRefreshToken, form)
	if err != nil {
		return AuthTokens{}, err
	}
	if strings.TrimSpace(body.RefreshToken) == "" {
		body.RefreshToken = refreshToken
	}
	return m.issueTokens(ctx, body)
}

// ExchangeClientCredentials obtains a grantless token for scope. Observers
// are not told about grantless tokens.
func (m *TokenManager) ExchangeClientCredentials(ctx context.Context, scope string) (token GrantlessToken, err error) {
	if m == nil {
		return GrantlessToken{}, fmt.Errorf("core: token manager is nil")
	}
	startedAt := time.Now()
	defer func() {
		fields := m.operationFields(GrantClientCredentials)
		fields["scope"] = scope
		m.ops.observeOperation(ctx, startedAt, "exchange_client_credentials", err, fields)
	}()

	if err := schema.ValidateArrayParameters(map[string]any{"scope": scope}, "scope"); err != nil {
		return GrantlessToken{}, err
	}
	form := url.Values{}
	form.Set("grant_type", GrantClientCredentials)
	form.Set("scope", scope)
	body, err := m.requestToken(ctx, GrantClientCredentials, form)
	if err != nil {
		return GrantlessToken{}, err
	}
	issued := GrantlessToken{
		AccessToken: body.AccessToken,
		ExpiresAt:   body.ExpiresIn,
		IssuedAt:    m.now().UTC(),
		Scope:       scope,
	}
	if strings.TrimSpace(body.Scope) != "" {
		issued.Scope = body.Scope
	}
	return issued, nil
}

func (m *TokenManager) authorizationCodeGrant(ctx context.Context, code string) (AuthTokens, error) {
	form := url.Values{}
	form.Set("grant_type", GrantAuthorizationCode)
	form.Set("code", code)
	form.Set("redirect_uri", strings.TrimSpace(m.config.RedirectURL))
	body, err := m.requestToken(ctx, GrantAuthorizationCode, form)
	if err != nil {
		return AuthTokens{}, err
	}
	return m.issueTokens(ctx, body)
}

// issueTokens maps a successful grant body to AuthTokens and notifies the
// observers before returning. Observer errors are returned unchanged.
func (m *TokenManager) issueTokens(ctx context.Context, body tokenEndpointBody) (AuthTokens, error) {
	tokens := AuthTokens{
		AccessToken:  body.AccessToken,
		RefreshToken: body.RefreshToken,
		ExpiresAt:    body.ExpiresIn,
		IssuedAt:     m.now().UTC(),
	}
	if err := m.observer.OnTokensObtained(ctx, tokens); err != nil {
		return AuthTokens{}, err
	}
	return tokens, nil
}

func (m *TokenManager) requireRedirectURL() error {
	if !m.config.IsSet("redirect_url") {
		return newConfigurationError("redirect_url")
	}
	return nil
}

func (m *TokenManager) operationFields(grant string) map[string]any {
	fields := map[string]any{
		"grant_type": grant,
	}
	if m.marketplace != nil {
		fields["marketplace_id"] = m.marketplace.Identifier()
	}
	return fields
}
