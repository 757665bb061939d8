package core

import (
	"context"
	"net/http"

	glog "github.com/goliatone/go-logger/glog"
)

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

// Marketplace is the slice of marketplace reference data the token lifecycle
// needs: its identifier and the Seller Central origin for consent URLs.
type Marketplace interface {
	Identifier() string
	BaseURL() string
}

// AccessTokenSource hands out the access token used on SP-API requests.
type AccessTokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

// ConfigProvider loads a Config layered over defaults.
type ConfigProvider interface {
	Load(ctx context.Context, defaults Config) (Config, error)
}

type RawConfigLoader interface {
	LoadRaw(ctx context.Context) (map[string]any, error)
}

type OptionsResolver interface {
	Resolve(defaults Config, loaded Config, runtime Config) (Config, error)
}
