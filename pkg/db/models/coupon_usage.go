package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CouponUsage is the immutable audit row written when a coupon is
// consumed at checkout. Never updated or deleted. User, cart, and
// session references are nullable so the row outlives its subjects.
type CouponUsage struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CouponID        uuid.UUID       `gorm:"column:coupon_id;type:uuid;not null;index"`
	UserID          *uuid.UUID      `gorm:"column:user_id;type:uuid;index"`
	CartID          *uuid.UUID      `gorm:"column:cart_id;type:uuid"`
	SessionID       *string         `gorm:"column:session_id;type:text"`
	OrderAmount     decimal.Decimal `gorm:"column:order_amount;type:numeric(10,2);not null"`
	DiscountApplied decimal.Decimal `gorm:"column:discount_applied;type:numeric(10,2);not null"`
	UsedAt          time.Time       `gorm:"column:used_at;autoCreateTime"`
}
