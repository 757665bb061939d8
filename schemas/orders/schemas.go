// Package orders declares the Orders API v0 response schemas.
//
// The Orders API speaks PascalCase on the wire (AmazonOrderId); decoding
// accepts it through the snake_case normalization in package schema.
package orders

import (
	"time"

	"github.com/goliatone/go-spapi/schema"
	"github.com/goliatone/go-spapi/schemas/common"
)

const (
	StatusPendingAvailability = "PendingAvailability"
	StatusPending             = "Pending"
	StatusUnshipped           = "Unshipped"
	StatusPartiallyShipped    = "PartiallyShipped"
	StatusShipped             = "Shipped"
	StatusInvoiceUnconfirmed  = "InvoiceUnconfirmed"
	StatusCanceled            = "Canceled"
	StatusUnfulfillable       = "Unfulfillable"
)

var OrderStatuses = []string{
	StatusPendingAvailability,
	StatusPending,
	StatusUnshipped,
	StatusPartiallyShipped,
	StatusShipped,
	StatusInvoiceUnconfirmed,
	StatusCanceled,
	StatusUnfulfillable,
}

var FulfillmentChannels = []string{"AFN", "MFN"}

type Money struct {
	CurrencyCode string `schema:"currency_code"`
	Amount       string `schema:"amount"`
}

type Address struct {
	Name          string  `schema:"name"`
	AddressLine1  *string `schema:"address_line1"`
	City          *string `schema:"city"`
	StateOrRegion *string `schema:"state_or_region"`
	PostalCode    *string `schema:"postal_code"`
	CountryCode   *string `schema:"country_code"`
}

type Order struct {
	AmazonOrderID          string     `schema:"amazon_order_id"`
	SellerOrderID          *string    `schema:"seller_order_id"`
	PurchaseDate           *time.Time `schema:"purchase_date"`
	LastUpdateDate         *time.Time `schema:"last_update_date"`
	OrderStatus            string     `schema:"order_status"`
	FulfillmentChannel     *string    `schema:"fulfillment_channel"`
	SalesChannel           *string    `schema:"sales_channel"`
	OrderTotal             *Money     `schema:"order_total"`
	NumberOfItemsShipped   *int       `schema:"number_of_items_shipped"`
	NumberOfItemsUnshipped *int       `schema:"number_of_items_unshipped"`
	PaymentMethodDetails   []string   `schema:"payment_method_details"`
	MarketplaceID          *string    `schema:"marketplace_id"`
	ShippingAddress        *Address   `schema:"shipping_address"`
	IsPrime                *bool      `schema:"is_prime"`
	IsBusinessOrder        *bool      `schema:"is_business_order"`
}

type OrdersList struct {
	Orders            []Order `schema:"orders"`
	NextToken         *string `schema:"next_token"`
	LastUpdatedBefore *string `schema:"last_updated_before"`
	CreatedBefore     *string `schema:"created_before"`
}

type OrderItem struct {
	ASIN            string  `schema:"asin"`
	SellerSKU       *string `schema:"seller_sku"`
	OrderItemID     string  `schema:"order_item_id"`
	Title           *string `schema:"title"`
	QuantityOrdered int     `schema:"quantity_ordered"`
	QuantityShipped *int    `schema:"quantity_shipped"`
	ItemPrice       *Money  `schema:"item_price"`
	ItemTax         *Money  `schema:"item_tax"`
}

type OrderItemsList struct {
	OrderItems    []OrderItem `schema:"order_items"`
	NextToken     *string     `schema:"next_token"`
	AmazonOrderID string      `schema:"amazon_order_id"`
}

type GetOrdersResponse struct {
	Payload *OrdersList    `schema:"payload"`
	Errors  []common.Error `schema:"errors"`
}

type GetOrderResponse struct {
	Payload *Order         `schema:"payload"`
	Errors  []common.Error `schema:"errors"`
}

type GetOrderItemsResponse struct {
	Payload *OrderItemsList `schema:"payload"`
	Errors  []common.Error  `schema:"errors"`
}

var (
	MoneyShape = schema.Define[Money]("Money")
	OrderShape = schema.Define[Order]("Order",
		schema.Required("amazon_order_id", "order_status"),
		schema.Enum("order_status", OrderStatuses...),
		schema.Enum("fulfillment_channel", FulfillmentChannels...),
		schema.WireName("amazon_order_id", "AmazonOrderId"),
	)
	OrdersListShape = schema.Define[OrdersList]("OrdersList",
		schema.Required("orders"),
	)
	OrderItemShape = schema.Define[OrderItem]("OrderItem",
		schema.Required("asin", "order_item_id"),
		schema.WireName("asin", "ASIN"),
		schema.WireName("seller_sku", "SellerSKU"),
	)
	OrderItemsListShape = schema.Define[OrderItemsList]("OrderItemsList",
		schema.Required("order_items", "amazon_order_id"),
	)
	GetOrdersResponseShape     = schema.Define[GetOrdersResponse]("GetOrdersResponse")
	GetOrderResponseShape      = schema.Define[GetOrderResponse]("GetOrderResponse")
	GetOrderItemsResponseShape = schema.Define[GetOrderItemsResponse]("GetOrderItemsResponse")
)
