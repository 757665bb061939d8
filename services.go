package spapi

import (
	"context"

	"github.com/goliatone/go-spapi/core"
)

type Config = core.Config

type ApplicationKeys = core.ApplicationKeys

type AuthTokens = core.AuthTokens
type GrantlessToken = core.GrantlessToken
type TokenResponse = core.TokenResponse

type TokenManager = core.TokenManager
type TokenObserver = core.TokenObserver
type TokenObserverFuncs = core.TokenObserverFuncs
type NopTokenObserver = core.NopTokenObserver

type Option = core.Option

const (
	GrantAuthorizationCode = core.GrantAuthorizationCode
	GrantRefreshToken      = core.GrantRefreshToken
	GrantClientCredentials = core.GrantClientCredentials

	ScopeNotifications            = core.ScopeNotifications
	ScopeMigration                = core.ScopeMigration
	ScopeClientCredentialRotation = core.ScopeClientCredentialRotation
)

var (
	WithLogger          = core.WithLogger
	WithLoggerProvider  = core.WithLoggerProvider
	WithMetricsRecorder = core.WithMetricsRecorder
	WithHTTPClient      = core.WithHTTPClient
	WithObserver        = core.WithObserver
	WithMarketplace     = core.WithMarketplace
	WithConfigProvider  = core.WithConfigProvider
	WithOptionsResolver = core.WithOptionsResolver
	WithClock           = core.WithClock
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

// LoadConfig resolves a Config from raw values, such as a decoded config
// file, with runtime taking precedence.
func LoadConfig(ctx context.Context, raw map[string]any, runtime Config) (Config, error) {
	return core.LoadConfig(ctx, core.StaticConfig(raw), runtime)
}

func NewTokenManager(cfg Config, opts ...Option) (*TokenManager, error) {
	return core.NewTokenManager(cfg, opts...)
}
