package core

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"
)

const (
	testMarketplaceID = "ATVPDKIKX0DER"
	testRedirectURL   = "https://example.com/callback"
)

var testIssuedAt = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

type capturedTokenRequest struct {
	Method      string
	ContentType string
	Form        url.Values
}

// tokenEndpointStub stands in for the LWA token endpoint and records every
// request it receives.
type tokenEndpointStub struct {
	mu          sync.Mutex
	requests    []capturedTokenRequest
	status      int
	contentType string
	body        string
	server      *httptest.Server
}

func newTokenEndpointStub(t *testing.T, status int, body string) *tokenEndpointStub {
	t.Helper()
	stub := &tokenEndpointStub{status: status, body: body, contentType: "application/json"}
	stub.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		form, _ := url.ParseQuery(string(raw))
		stub.mu.Lock()
		stub.requests = append(stub.requests, capturedTokenRequest{
			Method:      r.Method,
			ContentType: r.Header.Get("Content-Type"),
			Form:        form,
		})
		status, contentType, responseBody := stub.status, stub.contentType, stub.body
		stub.mu.Unlock()
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(status)
		_, _ = io.WriteString(w, responseBody)
	}))
	t.Cleanup(stub.server.Close)
	return stub
}

func (s *tokenEndpointStub) Requests() []capturedTokenRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]capturedTokenRequest(nil), s.requests...)
}

func testConfig(tokenURL string) Config {
	return Config{
		MarketplaceID: testMarketplaceID,
		RedirectURL:   testRedirectURL,
		TokenURL:      tokenURL,
		Keys: ApplicationKeys{
			ApplicationID:   "amzn1.sp.solution.test",
			LWAClientID:     "amzn1.application-oa2-client.test",
			LWAClientSecret: "client-secret",
		},
	}
}

func newTestManager(t *testing.T, cfg Config, opts ...Option) *TokenManager {
	t.Helper()
	opts = append([]Option{WithClock(func() time.Time { return testIssuedAt })}, opts...)
	manager, err := NewTokenManager(cfg, opts...)
	if err != nil {
		t.Fatalf("new token manager: %v", err)
	}
	return manager
}

// recordingObserver counts every callback and returns persistErr from
// OnTokensObtained.
type recordingObserver struct {
	mu           sync.Mutex
	obtained     []AuthTokens
	authFailures []*TokenResponse
	responses    []*TokenResponse
	persistErr   error
}

func (o *recordingObserver) OnTokensObtained(_ context.Context, tokens AuthTokens) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.obtained = append(o.obtained, tokens)
	return o.persistErr
}

func (o *recordingObserver) OnAuthenticationFailure(_ context.Context, response *TokenResponse) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.authFailures = append(o.authFailures, response)
}

func (o *recordingObserver) OnResponseReceived(_ context.Context, response *TokenResponse) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.responses = append(o.responses, response)
}

type recordingMetrics struct {
	mu       sync.Mutex
	counters map[string]int64
	tags     map[string]map[string]string
}

func (r *recordingMetrics) IncCounter(_ context.Context, name string, value int64, tags map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.counters == nil {
		r.counters = map[string]int64{}
		r.tags = map[string]map[string]string{}
	}
	r.counters[name] += value
	r.tags[name] = tags
}

func (r *recordingMetrics) ObserveHistogram(context.Context, string, float64, map[string]string) {}

type failingDoer struct {
	err error
}

func (d failingDoer) Do(*http.Request) (*http.Response, error) {
	return nil, d.err
}
