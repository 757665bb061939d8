package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-config/cfgx"
	opts "github.com/goliatone/go-options"
)

type managerBuilder struct {
	logger          Logger
	loggerProvider  LoggerProvider
	metricsRecorder MetricsRecorder
	httpClient      HTTPDoer
	observers       []TokenObserver
	marketplace     Marketplace
	configProvider  ConfigProvider
	optionsResolver OptionsResolver
	now             func() time.Time
}

type Option func(*managerBuilder)

func WithLogger(logger Logger) Option {
	return func(b *managerBuilder) {
		b.logger = logger
	}
}

func WithLoggerProvider(provider LoggerProvider) Option {
	return func(b *managerBuilder) {
		b.loggerProvider = provider
	}
}

func WithMetricsRecorder(recorder MetricsRecorder) Option {
	return func(b *managerBuilder) {
		b.metricsRecorder = recorder
	}
}

// WithHTTPClient replaces the default http.Client. Request timeouts are the
// client's responsibility once it is replaced.
func WithHTTPClient(client HTTPDoer) Option {
	return func(b *managerBuilder) {
		b.httpClient = client
	}
}

// WithObserver adds a TokenObserver. Observers are notified in the order
// they were added.
func WithObserver(observer TokenObserver) Option {
	return func(b *managerBuilder) {
		if observer != nil {
			b.observers = append(b.observers, observer)
		}
	}
}

// WithMarketplace overrides the marketplace resolved from Config.MarketplaceID.
func WithMarketplace(marketplace Marketplace) Option {
	return func(b *managerBuilder) {
		b.marketplace = marketplace
	}
}

func WithConfigProvider(provider ConfigProvider) Option {
	return func(b *managerBuilder) {
		b.configProvider = provider
	}
}

func WithOptionsResolver(resolver OptionsResolver) Option {
	return func(b *managerBuilder) {
		b.optionsResolver = resolver
	}
}

func WithClock(now func() time.Time) Option {
	return func(b *managerBuilder) {
		b.now = now
	}
}

func defaultManagerBuilder() managerBuilder {
	return managerBuilder{
		metricsRecorder: NopMetricsRecorder{},
		configProvider:  NewCfgxConfigProvider(nil),
		optionsResolver: GoOptionsResolver{},
		now:             time.Now,
	}
}

type staticRawConfigLoader struct {
	Values map[string]any
}

func (l staticRawConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	if len(l.Values) == 0 {
		return map[string]any{}, nil
	}
	out := make(map[string]any, len(l.Values))
	for key, value := range l.Values {
		out[key] = value
	}
	return out, nil
}

// StaticConfig wraps an in-memory raw map, such as one decoded from a config
// file, as a RawConfigLoader.
func StaticConfig(values map[string]any) RawConfigLoader {
	return staticRawConfigLoader{Values: values}
}

type CfgxConfigProvider struct {
	Loader RawConfigLoader
}

func NewCfgxConfigProvider(loader RawConfigLoader) *CfgxConfigProvider {
	return &CfgxConfigProvider{Loader: loader}
}

// Load decodes the raw map over defaults. The result is validated later,
// after runtime overrides are merged in.
func (p *CfgxConfigProvider) Load(ctx context.Context, defaults Config) (Config, error) {
	if p == nil {
		return defaults, nil
	}
	loader := p.Loader
	if loader == nil {
		loader = staticRawConfigLoader{}
	}
	raw, err := loader.LoadRaw(ctx)
	if err != nil {
		return Config{}, err
	}
	cfg, err := cfgx.Build[Config](raw,
		cfgx.WithDefaults(defaults),
	)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// GoOptionsResolver merges defaults < loaded < runtime with go-options and
// validates the result.
type GoOptionsResolver struct{}

func (GoOptionsResolver) Resolve(defaults Config, loaded Config, runtime Config) (Config, error) {
	stack, err := opts.NewStack(
		opts.NewLayer(opts.NewScope("defaults", 0), configToLayerMap(defaults, true), opts.WithSnapshotID[map[string]any]("defaults")),
		opts.NewLayer(opts.NewScope("config", 10), configToLayerMap(loaded, false), opts.WithSnapshotID[map[string]any]("config")),
		opts.NewLayer(opts.NewScope("runtime", 20), configToLayerMap(runtime, false), opts.WithSnapshotID[map[string]any]("runtime")),
	)
	if err != nil {
		return Config{}, fmt.Errorf("core: build config layers: %w", err)
	}
	merged, err := stack.Merge()
	if err != nil {
		return Config{}, fmt.Errorf("core: merge config layers: %w", err)
	}
	resolved, err := cfgx.Build[Config](merged.Value,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	if err := resolved.Validate(); err != nil {
		return Config{}, err
	}
	return resolved, nil
}

// LoadConfig resolves a Config from raw values (for example a decoded config
// file) layered under runtime overrides.
func LoadConfig(ctx context.Context, loader RawConfigLoader, runtime Config) (Config, error) {
	defaults := DefaultConfig()
	loaded, err := NewCfgxConfigProvider(loader).Load(ctx, defaults)
	if err != nil {
		return Config{}, err
	}
	return GoOptionsResolver{}.Resolve(defaults, loaded, runtime)
}

func configToLayerMap(cfg Config, includeZero bool) map[string]any {
	layer := map[string]any{}
	setString := func(key, value string) {
		if includeZero || strings.TrimSpace(value) != "" {
			layer[key] = value
		}
	}
	setString("marketplace_id", cfg.MarketplaceID)
	setString("redirect_url", cfg.RedirectURL)
	setString("lwa_refresh_token", cfg.RefreshToken)
	setString("lwa_access_token", cfg.AccessToken)
	setString("token_url", cfg.TokenURL)
	setString("user_agent", cfg.UserAgent)
	if includeZero || cfg.Sandbox {
		layer["sandbox"] = cfg.Sandbox
	}
	if includeZero || cfg.AccessTokenExpires != 0 {
		layer["lwa_access_token_expires_at"] = cfg.AccessTokenExpires
	}
	if includeZero || cfg.TokenRequestTimeout != 0 {
		layer["token_request_timeout"] = cfg.TokenRequestTimeout
	}
	if includeZero || len(cfg.InspectGrants) > 0 {
		layer["inspect_grants"] = append([]string(nil), cfg.InspectGrants...)
	}

	keys := map[string]any{}
	setKey := func(key, value string) {
		if includeZero || strings.TrimSpace(value) != "" {
			keys[key] = value
		}
	}
	setKey("application_id", cfg.Keys.ApplicationID)
	setKey("lwa_client_id", cfg.Keys.LWAClientID)
	setKey("lwa_client_secret", cfg.Keys.LWAClientSecret)
	setKey("aws_access_key", cfg.Keys.AWSAccessKey)
	setKey("aws_secret_key", cfg.Keys.AWSSecretKey)
	if len(keys) > 0 {
		layer["application_keys"] = keys
	}
	return layer
}
