package fulfillmentinbound

import (
	"testing"

	"github.com/goliatone/go-spapi/schema"
)

func TestInvalidASINErrorReasonEnum(t *testing.T) {
	parsed, err := InvalidASINShape.Parse(map[string]any{"ASIN": "B00TEST", "ErrorReason": "InvalidASIN"})
	if err != nil {
		t.Fatalf("expected InvalidASIN to pass, got %v", err)
	}
	if parsed.ASIN == nil || *parsed.ASIN != "B00TEST" {
		t.Fatalf("unexpected asin: %#v", parsed.ASIN)
	}

	_, err = InvalidASINShape.Parse(map[string]any{"errorReason": "Other"})
	if !schema.IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	fields := schema.InvalidFields(err)
	if len(fields) != 1 || fields[0] != "error_reason" {
		t.Fatalf("expected error_reason, got %v", fields)
	}
}

func TestDecodeVoidTransportResponse(t *testing.T) {
	response, err := schema.Decode[VoidTransportResponse]([]byte(`{
		"payload": {"TransportResult": {"TransportStatus": "VOIDING"}}
	}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if response.Payload == nil || response.Payload.TransportResult == nil {
		t.Fatalf("expected transport result, got %#v", response.Payload)
	}
	if response.Payload.TransportResult.TransportStatus != "VOIDING" {
		t.Fatalf("unexpected status %q", response.Payload.TransportResult.TransportStatus)
	}

	_, err = schema.Decode[VoidTransportResponse]([]byte(`{"payload": {"transportResult": {"transportStatus": "LOST"}}}`))
	fields := schema.InvalidFields(err)
	if len(fields) != 1 || fields[0] != "payload.transport_result.transport_status" {
		t.Fatalf("expected transport_status enum failure, got %v", fields)
	}
}
