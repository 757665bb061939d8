package core

import (
	"net/http"

	glog "github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-spapi/marketplace"
)

var (
	_ TokenObserver   = NopTokenObserver{}
	_ TokenObserver   = TokenObserverFuncs{}
	_ TokenObserver   = ObserverChain(nil)
	_ MetricsRecorder = NopMetricsRecorder{}
	_ HTTPDoer        = (*http.Client)(nil)
	_ Marketplace     = marketplace.Marketplace{}
	_ ConfigProvider  = (*CfgxConfigProvider)(nil)
	_ OptionsResolver = GoOptionsResolver{}

	_ Logger         = glog.Nop()
	_ LoggerProvider = glog.ProviderFromLogger(glog.Nop())
)
