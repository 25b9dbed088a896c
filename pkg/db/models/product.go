package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is the sellable catalog row the cart references by id. Catalog
// management itself lives outside this service; the model backs the read-only
// catalog snapshots consumed during cart reconciliation and checkout.
type Product struct {
	ID                 uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name               string          `gorm:"column:name;not null"`
	UnitNetPrice       decimal.Decimal `gorm:"column:unit_net_price;type:numeric(12,2);not null"`
	TaxRate            decimal.Decimal `gorm:"column:tax_rate;type:numeric(5,2);not null;default:19"`
	DiscountPercentage decimal.Decimal `gorm:"column:discount_percentage;type:numeric(5,2);not null;default:0"`
	// Stock <= 0 means unbounded availability ("available on request").
	Stock     int       `gorm:"column:stock;not null;default:0"`
	IsActive  bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
