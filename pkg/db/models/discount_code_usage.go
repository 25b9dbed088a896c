package models

import (
	"time"

	"github.com/google/uuid"
)

// DiscountCodeUsage is the redemption ledger entry linking a user, a code and
// the order that consumed it. The (user, code) pair is unique: one redemption
// per user per code lifetime. A usage row is only ever written after its order
// has been committed.
type DiscountCodeUsage struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID         uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:ux_discount_code_usages_user_code"`
	DiscountCodeID uuid.UUID `gorm:"column:discount_code_id;type:uuid;not null;uniqueIndex:ux_discount_code_usages_user_code"`
	OrderID        uuid.UUID `gorm:"column:order_id;type:uuid;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
}
