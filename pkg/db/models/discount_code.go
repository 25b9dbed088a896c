package models

import (
	"time"

	"github.com/autohaus-digital/backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DiscountCode is the server-authoritative redemption token. Code is stored in
// its uppercase canonical form; CurrentUses only ever increases and is bumped
// through a conditional UPDATE so it can never pass MaxUses.
type DiscountCode struct {
	ID            uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code          string             `gorm:"column:code;not null;uniqueIndex:ux_discount_codes_code"`
	Type          enums.DiscountType `gorm:"column:type;type:text;not null"`
	Value         decimal.Decimal    `gorm:"column:value;type:numeric(12,2);not null"`
	MinOrderValue decimal.Decimal    `gorm:"column:min_order_value;type:numeric(12,2);not null;default:0"`
	MaxUses       *int               `gorm:"column:max_uses"`
	CurrentUses   int                `gorm:"column:current_uses;not null;default:0"`
	ValidFrom     time.Time          `gorm:"column:valid_from;not null"`
	ValidUntil    *time.Time         `gorm:"column:valid_until"`
	IsActive      bool               `gorm:"column:is_active;not null;default:true"`
	CreatedAt     time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

// EligibleAt reports whether the code can be applied at the given instant,
// ignoring per-user usage (that check needs the ledger).
func (d DiscountCode) EligibleAt(now time.Time) bool {
	if !d.IsActive {
		return false
	}
	if now.Before(d.ValidFrom) {
		return false
	}
	if d.ValidUntil != nil && now.After(*d.ValidUntil) {
		return false
	}
	if d.MaxUses != nil && d.CurrentUses >= *d.MaxUses {
		return false
	}
	return true
}
