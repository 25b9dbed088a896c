package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Vehicle is a single sellable unit. VatMarginScheme marks used vehicles sold
// under the margin scheme: the displayed price already accounts for VAT, so no
// additional tax line is owed on the vehicle alone.
type Vehicle struct {
	ID                 uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Brand              string          `gorm:"column:brand;not null"`
	Model              string          `gorm:"column:model;not null"`
	UnitNetPrice       decimal.Decimal `gorm:"column:unit_net_price;type:numeric(12,2);not null"`
	DiscountPercentage decimal.Decimal `gorm:"column:discount_percentage;type:numeric(5,2);not null;default:0"`
	VatMarginScheme    bool            `gorm:"column:vat_margin_scheme;not null;default:false"`
	IsSold             bool            `gorm:"column:is_sold;not null;default:false"`
	IsReserved         bool            `gorm:"column:is_reserved;not null;default:false"`
	IsActive           bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt          time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
