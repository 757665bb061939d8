// Package notifications declares the Notifications API destination schemas.
package notifications

import (
	"time"

	"github.com/goliatone/go-spapi/schema"
	"github.com/goliatone/go-spapi/schemas/common"
)

type SqsResource struct {
	Arn string `schema:"arn"`
}

// EventBridgeResourceSpecification is the request-side description of an
// EventBridge destination.
type EventBridgeResourceSpecification struct {
	Region    string `schema:"region"`
	AccountID string `schema:"account_id"`
}

type DestinationResourceSpecification struct {
	SQS         *SqsResource                      `schema:"sqs"`
	EventBridge *EventBridgeResourceSpecification `schema:"event_bridge"`
}

type EventBridgeResource struct {
	Name      string `schema:"name"`
	Region    string `schema:"region"`
	AccountID string `schema:"account_id"`
}

type DestinationResource struct {
	SQS         *SqsResource         `schema:"sqs"`
	EventBridge *EventBridgeResource `schema:"event_bridge"`
}

type Destination struct {
	Name          string               `schema:"name"`
	DestinationID string               `schema:"destination_id"`
	Resource      *DestinationResource `schema:"resource"`
}

type CreateDestinationRequest struct {
	ResourceSpecification *DestinationResourceSpecification `schema:"resource_specification"`
	Name                  string                            `schema:"name"`
}

type NotificationMetadata struct {
	ApplicationID  string    `schema:"application_id"`
	SubscriptionID string    `schema:"subscription_id"`
	PublishTime    time.Time `schema:"publish_time"`
	NotificationID string    `schema:"notification_id"`
}

// Notification is one event delivered to a destination. Payload keeps the
// wire keys of the notification type's payload.
type Notification struct {
	NotificationVersion  string               `schema:"notification_version"`
	NotificationType     string               `schema:"notification_type"`
	PayloadVersion       string               `schema:"payload_version"`
	EventTime            time.Time            `schema:"event_time"`
	Payload              map[string]any       `schema:"payload"`
	NotificationMetadata NotificationMetadata `schema:"notification_metadata"`
}

type GetDestinationResponse struct {
	Payload *Destination   `schema:"payload"`
	Errors  []common.Error `schema:"errors"`
}

type CreateDestinationResponse struct {
	Payload *Destination   `schema:"payload"`
	Errors  []common.Error `schema:"errors"`
}

var (
	SqsResourceShape = schema.Define[SqsResource]("SqsResource",
		schema.Required("arn"),
	)
	EventBridgeResourceSpecificationShape = schema.Define[EventBridgeResourceSpecification]("EventBridgeResourceSpecification",
		schema.Required("region", "account_id"),
	)
	DestinationResourceSpecificationShape = schema.Define[DestinationResourceSpecification]("DestinationResourceSpecification")
	EventBridgeResourceShape              = schema.Define[EventBridgeResource]("EventBridgeResource",
		schema.Required("region", "account_id"),
	)
	DestinationShape = schema.Define[Destination]("Destination",
		schema.Required("name", "destination_id", "resource"),
	)
	CreateDestinationRequestShape = schema.Define[CreateDestinationRequest]("CreateDestinationRequest",
		schema.Required("resource_specification", "name"),
	)
	NotificationShape = schema.Define[Notification]("Notification",
		schema.Required("notification_type", "payload"),
	)
	GetDestinationResponseShape    = schema.Define[GetDestinationResponse]("GetDestinationResponse")
	CreateDestinationResponseShape = schema.Define[CreateDestinationResponse]("CreateDestinationResponse")
)
