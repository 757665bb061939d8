package resources

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

type capturedRequest struct {
	Method string
	Path   string
	Query  map[string][]string
	Header http.Header
	Body   string
}

// apiStub stands in for a Selling Partner API endpoint, answering every
// request with the same status, headers and body.
type apiStub struct {
	mu       sync.Mutex
	requests []capturedRequest
	status   int
	header   http.Header
	body     string
	server   *httptest.Server
}

func newAPIStub(t *testing.T, status int, body string) *apiStub {
	t.Helper()
	stub := &apiStub{status: status, body: body, header: http.Header{}}
	stub.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		stub.mu.Lock()
		stub.requests = append(stub.requests, capturedRequest{
			Method: r.Method,
			Path:   r.URL.EscapedPath(),
			Query:  r.URL.Query(),
			Header: r.Header.Clone(),
			Body:   string(raw),
		})
		for key, values := range stub.header {
			for _, value := range values {
				w.Header().Add(key, value)
			}
		}
		status, responseBody := stub.status, stub.body
		stub.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, responseBody)
	}))
	t.Cleanup(stub.server.Close)
	return stub
}

func (s *apiStub) Requests() []capturedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]capturedRequest(nil), s.requests...)
}

func newTestClient(t *testing.T, stub *apiStub, opts ...ClientOption) *Client {
	t.Helper()
	client, err := NewClient(stub.server.URL, StaticToken("Atza|access"), opts...)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

type failingDoer struct {
	err error
}

func (d failingDoer) Do(*http.Request) (*http.Response, error) {
	return nil, d.err
}

type failingTokenSource struct {
	err error
}

func (s failingTokenSource) AccessToken(context.Context) (string, error) {
	return "", s.err
}
