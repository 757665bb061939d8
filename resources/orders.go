package resources

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-spapi/marketplace"
	"github.com/goliatone/go-spapi/schema"
	"github.com/goliatone/go-spapi/schemas/orders"
)

const (
	OperationGetOrders     = "getOrders"
	OperationGetOrder      = "getOrder"
	OperationGetOrderItems = "getOrderItems"

	ordersBasePath = "/orders/v0/"

	maxResultsPerPage = 100
)

// GetOrdersParams are the getOrders query parameters. Zero values are left
// out of the query.
type GetOrdersParams struct {
	MarketplaceIDs                  []string
	CreatedAfter                    time.Time
	CreatedBefore                   time.Time
	LastUpdatedAfter                time.Time
	LastUpdatedBefore               time.Time
	OrderStatuses                   []string
	FulfillmentChannels             []string
	PaymentMethods                  []string
	BuyerEmail                      string
	SellerOrderID                   string
	MaxResultsPerPage               int
	EasyShipShipmentStatuses        []string
	NextToken                       string
	AmazonOrderIDs                  []string
	ActualFulfillmentSupplySourceID string
	IsISPU                          *bool
	StoreChainStoreID               string
}

// Validate checks marketplace ids against the marketplace table and the
// status and channel lists against their enums. Every violation is reported.
func (p GetOrdersParams) Validate() error {
	checks := []error{}
	if len(p.MarketplaceIDs) == 0 {
		checks = append(checks, schema.ValidateArrayParameters(map[string]any{}, "marketplace_ids"))
	} else {
		checks = append(checks, schema.ValidateStrings("marketplace_ids", p.MarketplaceIDs, marketplace.Identifiers()...))
	}
	checks = append(checks,
		schema.ValidateStrings("order_statuses", p.OrderStatuses, orders.OrderStatuses...),
		schema.ValidateStrings("fulfillment_channels", p.FulfillmentChannels, orders.FulfillmentChannels...),
	)
	if p.MaxResultsPerPage < 0 || p.MaxResultsPerPage > maxResultsPerPage {
		checks = append(checks, goerrors.NewValidation("resources: invalid max_results_per_page", goerrors.FieldError{
			Field:   "max_results_per_page",
			Message: "must be between 1 and " + strconv.Itoa(maxResultsPerPage),
		}))
	}
	return mergeValidation(checks...)
}

// Query renders the parameters with their wire names. Lists are comma joined
// and timestamps are ISO 8601 in UTC.
func (p GetOrdersParams) Query() url.Values {
	query := url.Values{}
	setList := func(key string, values []string) {
		if len(values) > 0 {
			query.Set(key, strings.Join(values, ","))
		}
	}
	setString := func(key, value string) {
		if value = strings.TrimSpace(value); value != "" {
			query.Set(key, value)
		}
	}
	setTime := func(key string, value time.Time) {
		if !value.IsZero() {
			query.Set(key, value.UTC().Format(time.RFC3339))
		}
	}

	setList("MarketplaceIds", p.MarketplaceIDs)
	setTime("CreatedAfter", p.CreatedAfter)
	setTime("CreatedBefore", p.CreatedBefore)
	setTime("LastUpdatedAfter", p.LastUpdatedAfter)
	setTime("LastUpdatedBefore", p.LastUpdatedBefore)
	setList("OrderStatuses", p.OrderStatuses)
	setList("FulfillmentChannels", p.FulfillmentChannels)
	setList("PaymentMethods", p.PaymentMethods)
	setString("BuyerEmail", p.BuyerEmail)
	setString("SellerOrderId", p.SellerOrderID)
	if p.MaxResultsPerPage > 0 {
		query.Set("MaxResultsPerPage", strconv.Itoa(p.MaxResultsPerPage))
	}
	setList("EasyShipShipmentStatuses", p.EasyShipShipmentStatuses)
	setString("NextToken", p.NextToken)
	setList("AmazonOrderIds", p.AmazonOrderIDs)
	setString("ActualFulfillmentSupplySourceId", p.ActualFulfillmentSupplySourceID)
	if p.IsISPU != nil {
		query.Set("IsISPU", strconv.FormatBool(*p.IsISPU))
	}
	setString("StoreChainStoreId", p.StoreChainStoreID)
	return query
}

// Orders builds Orders API v0 requests.
type Orders struct {
	client *Client
}

func (o *Orders) GetOrders(ctx context.Context, params GetOrdersParams) (orders.GetOrdersResponse, error) {
	if err := params.Validate(); err != nil {
		return orders.GetOrdersResponse{}, err
	}
	return call[orders.GetOrdersResponse](ctx, o.client, apiRequest{
		operation: OperationGetOrders,
		method:    http.MethodGet,
		path:      ordersBasePath + "orders",
		query:     params.Query(),
	})
}

func (o *Orders) GetOrder(ctx context.Context, orderID string) (orders.GetOrderResponse, error) {
	if err := requirePathParameter("order_id", orderID); err != nil {
		return orders.GetOrderResponse{}, err
	}
	return call[orders.GetOrderResponse](ctx, o.client, apiRequest{
		operation: OperationGetOrder,
		method:    http.MethodGet,
		path:      ordersBasePath + "orders/" + url.PathEscape(orderID),
	})
}

// GetOrderItems lists the items of an order. nextToken continues a previous
// page and may be empty.
func (o *Orders) GetOrderItems(ctx context.Context, orderID string, nextToken string) (orders.GetOrderItemsResponse, error) {
	if err := requirePathParameter("order_id", orderID); err != nil {
		return orders.GetOrderItemsResponse{}, err
	}
	query := url.Values{}
	if token := strings.TrimSpace(nextToken); token != "" {
		query.Set("NextToken", token)
	}
	return call[orders.GetOrderItemsResponse](ctx, o.client, apiRequest{
		operation: OperationGetOrderItems,
		method:    http.MethodGet,
		path:      ordersBasePath + "orders/" + url.PathEscape(orderID) + "/orderItems",
		query:     query,
	})
}

func requirePathParameter(name string, value string) error {
	return schema.ValidateArrayParameters(map[string]any{name: strings.TrimSpace(value)}, name)
}

// mergeValidation folds the field errors of several validation errors into
// one. Errors that are not validation errors are returned as they are.
func mergeValidation(errs ...error) error {
	fieldErrors := []goerrors.FieldError{}
	for _, err := range errs {
		if err == nil {
			continue
		}
		var rich *goerrors.Error
		if !goerrors.As(err, &rich) || rich.Category != goerrors.CategoryValidation {
			return err
		}
		fieldErrors = append(fieldErrors, rich.AllValidationErrors()...)
	}
	if len(fieldErrors) == 0 {
		return nil
	}
	return goerrors.NewValidation("resources: invalid request parameters", fieldErrors...).
		WithCode(http.StatusBadRequest).
		WithTextCode(schema.ErrorValidationFailed)
}
