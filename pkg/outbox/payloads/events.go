package payloads

import (
	"github.com/autohaus-digital/backend/pkg/enums"
	"github.com/google/uuid"
)

// OrderCreatedItem is the per-line snapshot carried by OrderCreatedEvent so
// the notification consumer never needs a follow-up read.
type OrderCreatedItem struct {
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	TotalPrice  string `json:"total_price"`
}

// OrderCreatedEvent signals a newly submitted quote request. Amounts are
// serialized as fixed-point strings to keep decimal precision on the wire.
type OrderCreatedEvent struct {
	OrderID        uuid.UUID          `json:"order_id"`
	OrderNumber    string             `json:"order_number"`
	Recipient      uuid.UUID          `json:"recipient"`
	Items          []OrderCreatedItem `json:"items"`
	NetTotal       string             `json:"net_total"`
	TaxTotal       string             `json:"tax_total"`
	GrossTotal     string             `json:"gross_total"`
	CodeDiscount   string             `json:"code_discount"`
	DiscountCodeID *uuid.UUID         `json:"discount_code_id,omitempty"`
}

// OrderStatusChangedEvent is emitted when the back office moves an order
// through its lifecycle.
type OrderStatusChangedEvent struct {
	OrderID     uuid.UUID         `json:"order_id"`
	OrderNumber string            `json:"order_number"`
	Recipient   uuid.UUID         `json:"recipient"`
	OldStatus   enums.OrderStatus `json:"old_status"`
	NewStatus   enums.OrderStatus `json:"new_status"`
}
