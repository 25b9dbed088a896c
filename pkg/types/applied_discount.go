package types

import (
	"github.com/autohaus-digital/backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AppliedDiscount is the cart-session snapshot of an eligible discount code,
// captured at apply time. It is never mutated, only replaced or cleared; the
// authoritative row stays server-side and is re-checked at submission.
type AppliedDiscount struct {
	ID            uuid.UUID          `json:"id"`
	Code          string             `json:"code"`
	Type          enums.DiscountType `json:"type"`
	Value         decimal.Decimal    `json:"value"`
	MinOrderValue decimal.Decimal    `json:"min_order_value"`
}
