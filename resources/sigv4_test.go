package resources

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-spapi/core"
)

var sigV4TestTime = time.Date(2015, 8, 30, 12, 36, 0, 0, time.UTC)

func TestSigV4SignerMatchesReferenceSignature(t *testing.T) {
	signer := SigV4Signer{
		AccessKeyID:     "AKIDEXAMPLE",
		SecretAccessKey: "wJalrXUtnFEMI/K7MDENG+bPxRfiCYEXAMPLEKEY",
		Region:          "us-east-1",
		Service:         "service",
		Now:             func() time.Time { return sigV4TestTime },
	}
	req, err := http.NewRequest(http.MethodGet, "https://example.amazonaws.com/", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if err := signer.Sign(req); err != nil {
		t.Fatalf("sign: %v", err)
	}

	expected := "AWS4-HMAC-SHA256 Credential=AKIDEXAMPLE/20150830/us-east-1/service/aws4_request, " +
		"SignedHeaders=host;x-amz-date, " +
		"Signature=5fa00fa31553b73ebf1942676e86291e8372ff2a2260956d9b8aae1d763fbf31"
	if got := req.Header.Get("Authorization"); got != expected {
		t.Fatalf("expected %q, got %q", expected, got)
	}
	if req.Header.Get("X-Amz-Date") != "20150830T123600Z" {
		t.Fatalf("unexpected x-amz-date %q", req.Header.Get("X-Amz-Date"))
	}
}

func TestSigV4SignerKeepsBodyReadable(t *testing.T) {
	signer := SigV4Signer{AccessKeyID: "AKID", SecretAccessKey: "secret", Region: "eu-west-1", Now: func() time.Time { return sigV4TestTime }}
	payload := []byte(`{"name":"events"}`)
	req, err := http.NewRequest(http.MethodPost, "https://sellingpartnerapi-eu.amazon.com/notifications/v1/destinations", io.NopCloser(bytes.NewReader(payload)))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("x-amz-access-token", "Atza|access")
	if err := signer.Sign(req); err != nil {
		t.Fatalf("sign: %v", err)
	}
	authorization := req.Header.Get("Authorization")
	if !strings.Contains(authorization, "/eu-west-1/execute-api/aws4_request") {
		t.Fatalf("expected execute-api scope, got %q", authorization)
	}
	if !strings.Contains(authorization, "SignedHeaders=host;x-amz-access-token;x-amz-date") {
		t.Fatalf("expected access token header to be signed, got %q", authorization)
	}
	body, _ := io.ReadAll(req.Body)
	if !bytes.Equal(body, payload) {
		t.Fatalf("expected body to survive signing, got %q", body)
	}
}

func TestCanonicalQueryStringSortsByKeyThenValue(t *testing.T) {
	query := map[string][]string{
		"a1":       {"x"},
		"a":        {"z", "y"},
		"Marker ~": {"1*2"},
	}
	expected := "Marker%20~=1%2A2&a=y&a=z&a1=x"
	if got := canonicalQueryString(query); got != expected {
		t.Fatalf("expected %q, got %q", expected, got)
	}
}

func TestNewSigV4SignerRequiresKeys(t *testing.T) {
	if _, err := NewSigV4Signer(core.ApplicationKeys{AWSAccessKey: "AKID"}, "us-east-1"); err == nil {
		t.Fatalf("expected missing secret to fail")
	}
	if _, err := NewSigV4Signer(core.ApplicationKeys{AWSAccessKey: "AKID", AWSSecretKey: "secret"}, ""); err == nil {
		t.Fatalf("expected missing region to fail")
	}
	signer, err := NewSigV4Signer(core.ApplicationKeys{AWSAccessKey: "AKID", AWSSecretKey: "secret"}, "us-west-2")
	if err != nil || signer.Service != "execute-api" {
		t.Fatalf("unexpected signer %#v (%v)", signer, err)
	}
}

func TestClientSignsRequests(t *testing.T) {
	stub := newAPIStub(t, http.StatusOK, `{"payload":{"AmazonOrderId":"902-1","OrderStatus":"Shipped"}}`)
	signer := &SigV4Signer{AccessKeyID: "AKID", SecretAccessKey: "secret", Region: "us-east-1", Now: func() time.Time { return sigV4TestTime }}
	client := newTestClient(t, stub, WithSigner(signer))

	if _, err := client.Orders().GetOrder(context.Background(), "902-1"); err != nil {
		t.Fatalf("get order: %v", err)
	}
	header := stub.Requests()[0].Header
	if !strings.HasPrefix(header.Get("Authorization"), "AWS4-HMAC-SHA256 Credential=AKID/20150830/us-east-1/execute-api/aws4_request") {
		t.Fatalf("expected signed request, got %q", header.Get("Authorization"))
	}
}
