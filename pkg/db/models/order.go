package models

import (
	"time"

	"github.com/autohaus-digital/backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is the persisted quote request produced by a checkout submission.
// TotalAmount is the net total after all discounts; items are immutable once
// created and only the status ever transitions afterwards.
type Order struct {
	ID             uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID         uuid.UUID         `gorm:"column:user_id;type:uuid;not null"`
	OrderNumber    string            `gorm:"column:order_number;not null;uniqueIndex:ux_orders_order_number"`
	Status         enums.OrderStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	TotalAmount    decimal.Decimal   `gorm:"column:total_amount;type:numeric(12,2);not null"`
	DiscountCodeID *uuid.UUID        `gorm:"column:discount_code_id;type:uuid"`
	DiscountAmount decimal.Decimal   `gorm:"column:discount_amount;type:numeric(12,2);not null;default:0"`

	BillingName    string `gorm:"column:billing_name;not null"`
	BillingEmail   string `gorm:"column:billing_email;not null"`
	BillingPhone   string `gorm:"column:billing_phone"`
	BillingStreet  string `gorm:"column:billing_street;not null"`
	BillingZip     string `gorm:"column:billing_zip;not null"`
	BillingCity    string `gorm:"column:billing_city;not null"`
	BillingCountry string `gorm:"column:billing_country;not null"`

	UseDifferentShipping bool   `gorm:"column:use_different_shipping;not null;default:false"`
	ShippingName         string `gorm:"column:shipping_name"`
	ShippingStreet       string `gorm:"column:shipping_street"`
	ShippingZip          string `gorm:"column:shipping_zip"`
	ShippingCity         string `gorm:"column:shipping_city"`
	ShippingCountry      string `gorm:"column:shipping_country"`

	Notes     *string     `gorm:"column:notes"`
	Items     []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time   `gorm:"column:updated_at;autoUpdateTime"`
}
