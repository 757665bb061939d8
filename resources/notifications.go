package resources

import (
	"context"
	"net/http"
	"net/url"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-spapi/schemas/notifications"
)

const (
	OperationGetDestination    = "getDestination"
	OperationCreateDestination = "createDestination"

	destinationsPath = "/notifications/v1/destinations"
)

// Notifications builds Notifications API v1 destination requests. These
// operations are grantless: the client's token source should hand out
// client_credentials tokens for the notifications scope.
type Notifications struct {
	client *Client
}

func (n *Notifications) GetDestination(ctx context.Context, destinationID string) (notifications.GetDestinationResponse, error) {
	if err := requirePathParameter("destination_id", destinationID); err != nil {
		return notifications.GetDestinationResponse{}, err
	}
	return call[notifications.GetDestinationResponse](ctx, n.client, apiRequest{
		operation: OperationGetDestination,
		method:    http.MethodGet,
		path:      destinationsPath + "/" + url.PathEscape(destinationID),
	})
}

// CreateDestination registers an SQS or EventBridge destination. spec must
// name exactly one of the two.
func (n *Notifications) CreateDestination(
	ctx context.Context,
	name string,
	spec notifications.DestinationResourceSpecification,
) (notifications.CreateDestinationResponse, error) {
	request := notifications.CreateDestinationRequest{
		ResourceSpecification: &spec,
		Name:                  name,
	}
	if err := validateDestinationRequest(request); err != nil {
		return notifications.CreateDestinationResponse{}, err
	}
	body, err := notifications.CreateDestinationRequestShape.ToWire(request)
	if err != nil {
		return notifications.CreateDestinationResponse{}, err
	}
	return call[notifications.CreateDestinationResponse](ctx, n.client, apiRequest{
		operation: OperationCreateDestination,
		method:    http.MethodPost,
		path:      destinationsPath,
		body:      body,
	})
}

func validateDestinationRequest(request notifications.CreateDestinationRequest) error {
	checks := []error{notifications.CreateDestinationRequestShape.Validate(request)}
	spec := request.ResourceSpecification
	if spec != nil && (spec.SQS == nil) == (spec.EventBridge == nil) {
		checks = append(checks, goerrors.NewValidation("resources: invalid destination", goerrors.FieldError{
			Field:   "resource_specification",
			Message: "must describe exactly one of sqs or event_bridge",
		}))
	}
	return mergeValidation(checks...)
}
