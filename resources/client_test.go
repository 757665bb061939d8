package resources

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-spapi/core"
)

func TestNewClientRejectsInvalidInput(t *testing.T) {
	if _, err := NewClient("sellingpartnerapi-na.amazon.com", StaticToken("a")); err == nil {
		t.Fatalf("expected relative endpoint to fail")
	}
	if _, err := NewClient("https://sellingpartnerapi-na.amazon.com", nil); err == nil {
		t.Fatalf("expected missing token source to fail")
	}
	client, err := NewClient("https://sellingpartnerapi-na.amazon.com/", StaticToken("a"))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if client.Endpoint() != "https://sellingpartnerapi-na.amazon.com" {
		t.Fatalf("expected trailing slash to be trimmed, got %q", client.Endpoint())
	}
}

func TestNewClientFromConfig(t *testing.T) {
	cfg := core.Config{
		MarketplaceID: "A1PA6795UKMFR9",
		Sandbox:       true,
		UserAgent:     "seller-tools/2.0",
		Keys: core.ApplicationKeys{
			ApplicationID: "amzn1.sp.solution.test",
			AWSAccessKey:  "AKID",
			AWSSecretKey:  "secret",
		},
	}
	client, err := NewClientFromConfig(cfg, StaticToken("a"))
	if err != nil {
		t.Fatalf("new client from config: %v", err)
	}
	if client.Endpoint() != "https://sandbox.sellingpartnerapi-eu.amazon.com" {
		t.Fatalf("unexpected endpoint %q", client.Endpoint())
	}
	signer, ok := client.signer.(*SigV4Signer)
	if !ok || signer.Region != "eu-west-1" {
		t.Fatalf("expected eu-west-1 signer, got %#v", client.signer)
	}
	if client.userAgent != "seller-tools/2.0" {
		t.Fatalf("unexpected user agent %q", client.userAgent)
	}

	cfg.Keys.AWSSecretKey = ""
	client, err = NewClientFromConfig(cfg, StaticToken("a"))
	if err != nil || client.signer != nil {
		t.Fatalf("expected unsigned client without aws keys, got %#v (%v)", client, err)
	}

	cfg.MarketplaceID = "UNKNOWN"
	if _, err := NewClientFromConfig(cfg, StaticToken("a")); err == nil {
		t.Fatalf("expected unknown marketplace to fail")
	}
}

func TestTokenSourceErrorStopsRequest(t *testing.T) {
	stub := newAPIStub(t, http.StatusOK, `{}`)
	sentinel := errors.New("no token")
	client, err := NewClient(stub.server.URL, failingTokenSource{err: sentinel})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.Orders().GetOrder(context.Background(), "902-1"); !errors.Is(err, sentinel) {
		t.Fatalf("expected token source error, got %v", err)
	}
	if len(stub.Requests()) != 0 {
		t.Fatalf("expected no request without a token")
	}
}

func TestTransportErrorIsWrapped(t *testing.T) {
	sentinel := errors.New("connection reset")
	client, err := NewClient("https://sellingpartnerapi-na.amazon.com", StaticToken("a"), WithHTTPClient(failingDoer{err: sentinel}))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	_, err = client.Orders().GetOrder(context.Background(), "902-1")
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected transport error, got %v", err)
	}
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) || rich.TextCode != ErrorRequestFailed {
		t.Fatalf("expected request failed envelope, got %#v", rich)
	}
}

func TestServerErrorWithoutErrorList(t *testing.T) {
	stub := newAPIStub(t, http.StatusInternalServerError, `upstream exploded`)
	client := newTestClient(t, stub)

	_, err := client.Orders().GetOrder(context.Background(), "902-1")
	var responseErr *ResponseError
	if !errors.As(err, &responseErr) {
		t.Fatalf("expected response error, got %v", err)
	}
	if len(responseErr.Errors) != 0 || string(responseErr.Body) != "upstream exploded" {
		t.Fatalf("expected raw body without decoded errors, got %#v", responseErr)
	}
	if responseErr.Error() != "resources: getOrder failed (500)" {
		t.Fatalf("unexpected message %q", responseErr.Error())
	}
}

type recordedMetric struct {
	name string
	tags map[string]string
}

type recordingMetrics struct {
	mu         sync.Mutex
	counters   []recordedMetric
	histograms []recordedMetric
}

func (r *recordingMetrics) IncCounter(_ context.Context, name string, _ int64, tags map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counters = append(r.counters, recordedMetric{name: name, tags: tags})
}

func (r *recordingMetrics) ObserveHistogram(_ context.Context, name string, _ float64, tags map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.histograms = append(r.histograms, recordedMetric{name: name, tags: tags})
}

func TestRequestMetricsAreRecorded(t *testing.T) {
	stub := newAPIStub(t, http.StatusNotFound, `{"errors":[{"code":"NotFound","message":"missing"}]}`)
	metrics := &recordingMetrics{}
	client := newTestClient(t, stub, WithMetricsRecorder(metrics))

	if _, err := client.Orders().GetOrder(context.Background(), "902-1"); err == nil {
		t.Fatalf("expected not found error")
	}

	if len(metrics.counters) != 1 || len(metrics.histograms) != 1 {
		t.Fatalf("expected one counter and one histogram, got %d/%d", len(metrics.counters), len(metrics.histograms))
	}
	counter := metrics.counters[0]
	if counter.name != "spapi.api_request.total" {
		t.Fatalf("unexpected counter name %q", counter.name)
	}
	if counter.tags["operation"] != OperationGetOrder || counter.tags["status"] != "failure" || counter.tags["status_code"] != "404" {
		t.Fatalf("unexpected counter tags %#v", counter.tags)
	}
	if metrics.histograms[0].name != "spapi.api_request.duration_ms" {
		t.Fatalf("unexpected histogram name %q", metrics.histograms[0].name)
	}
}
