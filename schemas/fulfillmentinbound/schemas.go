// Package fulfillmentinbound declares the Fulfillment Inbound schemas used by
// transport and item-eligibility responses.
package fulfillmentinbound

import (
	"github.com/goliatone/go-spapi/schema"
	"github.com/goliatone/go-spapi/schemas/common"
)

const (
	ErrorReasonDoesNotExist = "DoesNotExist"
	ErrorReasonInvalidASIN  = "InvalidASIN"
)

var ErrorReasons = []string{ErrorReasonDoesNotExist, ErrorReasonInvalidASIN}

var TransportStatuses = []string{
	"WORKING",
	"ESTIMATING",
	"ESTIMATED",
	"ERROR_ON_ESTIMATING",
	"CONFIRMING",
	"CONFIRMED",
	"ERROR_ON_CONFIRMING",
	"VOIDING",
	"VOIDED",
	"ERROR_IN_VOIDING",
	"ERROR",
}

type InvalidASIN struct {
	ASIN        *string `schema:"asin"`
	ErrorReason string  `schema:"error_reason"`
}

type TransportResult struct {
	TransportStatus  string  `schema:"transport_status"`
	ErrorCode        *string `schema:"error_code"`
	ErrorDescription *string `schema:"error_description"`
}

type CommonTransportResult struct {
	TransportResult *TransportResult `schema:"transport_result"`
}

type VoidTransportResponse struct {
	Payload *CommonTransportResult `schema:"payload"`
	Errors  []common.Error         `schema:"errors"`
}

var (
	InvalidASINShape = schema.Define[InvalidASIN]("InvalidASIN",
		schema.Required("error_reason"),
		schema.Enum("error_reason", ErrorReasons...),
	)
	TransportResultShape = schema.Define[TransportResult]("TransportResult",
		schema.Required("transport_status"),
		schema.Enum("transport_status", TransportStatuses...),
	)
	CommonTransportResultShape = schema.Define[CommonTransportResult]("CommonTransportResult")
	VoidTransportResponseShape = schema.Define[VoidTransportResponse]("VoidTransportResponse")
)
