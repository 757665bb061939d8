package resources

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	headerRateLimit  = "x-amzn-RateLimit-Limit"
	headerRetryAfter = "Retry-After"

	defaultRetryAfterThrottle = 2 * time.Second
)

// Limit is the token bucket applied to one operation: Rate requests per
// second with bursts of up to Burst requests.
type Limit struct {
	Rate  float64
	Burst int
}

// DefaultLimits are the published usage plans of the operations this package
// implements. Operations without an entry start unthrottled until a response
// advertises their rate.
var DefaultLimits = map[string]Limit{
	OperationGetOrders:         {Rate: 0.0167, Burst: 20},
	OperationGetOrder:          {Rate: 0.5, Burst: 30},
	OperationGetOrderItems:     {Rate: 0.5, Burst: 30},
	OperationGetDestination:    {Rate: 1, Burst: 5},
	OperationCreateDestination: {Rate: 1, Burst: 5},
}

// limiterSet keeps one limiter per operation. The rate of a limiter follows
// the x-amzn-RateLimit-Limit header of the latest response for that
// operation.
type limiterSet struct {
	mu       sync.Mutex
	limits   map[string]Limit
	limiters map[string]*rate.Limiter
}

func newLimiterSet(overrides map[string]Limit) *limiterSet {
	limits := make(map[string]Limit, len(DefaultLimits)+len(overrides))
	for operation, limit := range DefaultLimits {
		limits[operation] = limit
	}
	for operation, limit := range overrides {
		limits[operation] = limit
	}
	return &limiterSet{limits: limits, limiters: map[string]*rate.Limiter{}}
}

func (s *limiterSet) limiter(operation string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limiter, ok := s.limiters[operation]; ok {
		return limiter
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if limit, ok := s.limits[operation]; ok && limit.Rate > 0 {
		burst := limit.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(limit.Rate), burst)
	}
	s.limiters[operation] = limiter
	return limiter
}

func (s *limiterSet) wait(ctx context.Context, operation string) error {
	return s.limiter(operation).Wait(ctx)
}

// observe applies the rate advertised by a response to the operation's
// limiter and reports the advertised value. Operations configured with a
// zero Rate stay unthrottled.
func (s *limiterSet) observe(operation string, header http.Header) (float64, bool) {
	limit, ok := parseRateLimit(header)
	if !ok {
		return 0, false
	}
	if s.disabled(operation) {
		return limit, true
	}
	limiter := s.limiter(operation)
	if limiter.Limit() != rate.Limit(limit) {
		limiter.SetLimit(rate.Limit(limit))
	}
	return limit, true
}

func (s *limiterSet) disabled(operation string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	limit, ok := s.limits[operation]
	return ok && limit.Rate <= 0
}

func (s *limiterSet) current(operation string) rate.Limit {
	return s.limiter(operation).Limit()
}

func parseRateLimit(header http.Header) (float64, bool) {
	raw := strings.TrimSpace(header.Get(headerRateLimit))
	if raw == "" {
		return 0, false
	}
	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil || parsed <= 0 {
		return 0, false
	}
	return parsed, true
}

// retryAfter reads Retry-After in seconds. Throttled responses without the
// header fall back to a short default.
func retryAfter(statusCode int, header http.Header) time.Duration {
	if raw := strings.TrimSpace(header.Get(headerRetryAfter)); raw != "" {
		if seconds, err := strconv.Atoi(raw); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}
	if statusCode == http.StatusTooManyRequests || statusCode == http.StatusServiceUnavailable {
		return defaultRetryAfterThrottle
	}
	return 0
}

func requestID(header http.Header) string {
	for _, key := range []string{"x-amzn-RequestId", "x-amz-request-id"} {
		if value := strings.TrimSpace(header.Get(key)); value != "" {
			return value
		}
	}
	return ""
}
