package prometheus

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/goliatone/go-spapi/core"
	prom "github.com/prometheus/client_golang/prometheus"
)

// LabelNames are the tag keys exported as labels. Tags outside this set are
// dropped and missing ones are exported as empty strings.
var LabelNames = []string{"operation", "status", "grant_type", "marketplace_id", "status_code"}

// Recorder implements core.MetricsRecorder with lazily registered counter
// and histogram vectors. Metric names are sanitized, so
// spapi.exchange_refresh_token.total becomes spapi_exchange_refresh_token_total.
type Recorder struct {
	registerer prom.Registerer
	buckets    []float64

	mu         sync.Mutex
	counters   map[string]*prom.CounterVec
	histograms map[string]*prom.HistogramVec
}

type Option func(*Recorder)

// WithBuckets sets the histogram buckets. Durations are recorded in
// milliseconds.
func WithBuckets(buckets ...float64) Option {
	return func(r *Recorder) {
		if len(buckets) > 0 {
			r.buckets = append([]float64(nil), buckets...)
		}
	}
}

// NewRecorder registers collectors on registerer, or on the default
// registerer when it is nil.
func NewRecorder(registerer prom.Registerer, opts ...Option) *Recorder {
	if registerer == nil {
		registerer = prom.DefaultRegisterer
	}
	recorder := &Recorder{
		registerer: registerer,
		buckets:    []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		counters:   map[string]*prom.CounterVec{},
		histograms: map[string]*prom.HistogramVec{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(recorder)
		}
	}
	return recorder
}

func (r *Recorder) IncCounter(_ context.Context, name string, value int64, tags map[string]string) {
	if r == nil || value < 0 {
		return
	}
	counter := r.counter(SanitizeName(name))
	if counter == nil {
		return
	}
	counter.WithLabelValues(labelValues(tags)...).Add(float64(value))
}

func (r *Recorder) ObserveHistogram(_ context.Context, name string, value float64, tags map[string]string) {
	if r == nil {
		return
	}
	histogram := r.histogram(SanitizeName(name))
	if histogram == nil {
		return
	}
	histogram.WithLabelValues(labelValues(tags)...).Observe(value)
}

func (r *Recorder) counter(name string) *prom.CounterVec {
	if name == "" {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.counters[name]; ok {
		return existing
	}
	counter := prom.NewCounterVec(prom.CounterOpts{
		Name: name,
		Help: "Selling Partner API client counter " + name + ".",
	}, LabelNames)
	if err := r.registerer.Register(counter); err != nil {
		var already prom.AlreadyRegisteredError
		if !errors.As(err, &already) {
			return nil
		}
		registered, ok := already.ExistingCollector.(*prom.CounterVec)
		if !ok {
			return nil
		}
		counter = registered
	}
	r.counters[name] = counter
	return counter
}

func (r *Recorder) histogram(name string) *prom.HistogramVec {
	if name == "" {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.histograms[name]; ok {
		return existing
	}
	histogram := prom.NewHistogramVec(prom.HistogramOpts{
		Name:    name,
		Help:    "Selling Partner API client histogram " + name + ".",
		Buckets: r.buckets,
	}, LabelNames)
	if err := r.registerer.Register(histogram); err != nil {
		var already prom.AlreadyRegisteredError
		if !errors.As(err, &already) {
			return nil
		}
		registered, ok := already.ExistingCollector.(*prom.HistogramVec)
		if !ok {
			return nil
		}
		histogram = registered
	}
	r.histograms[name] = histogram
	return histogram
}

// SanitizeName maps a dotted metric name to a valid Prometheus name.
func SanitizeName(name string) string {
	name = strings.TrimSpace(strings.ToLower(name))
	if name == "" {
		return ""
	}
	var b strings.Builder
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r == '_', r == ':':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				b.WriteRune('_')
			}
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

func labelValues(tags map[string]string) []string {
	values := make([]string, len(LabelNames))
	for i, label := range LabelNames {
		values[i] = tags[label]
	}
	return values
}

var _ core.MetricsRecorder = (*Recorder)(nil)
