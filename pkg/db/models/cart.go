package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/skillwave/skillwave-backend/pkg/enums"
)

// Cart is the pricing aggregate. Exactly one of UserID/SessionID is set;
// the partial unique indexes in the schema enforce one active cart per
// owner. All monetary mutation goes through the aggregate methods so the
// totals invariant (final = total - discount, clamped at zero) holds
// after every write.
type Cart struct {
	ID             uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID         *uuid.UUID       `gorm:"column:user_id;type:uuid"`
	SessionID      *string          `gorm:"column:session_id;type:text"`
	Status         enums.CartStatus `gorm:"column:status;type:text;not null;default:'active'"`
	TotalAmount    decimal.Decimal  `gorm:"column:total_amount;type:numeric(10,2);not null;default:0"`
	DiscountAmount decimal.Decimal  `gorm:"column:discount_amount;type:numeric(10,2);not null;default:0"`
	FinalAmount    decimal.Decimal  `gorm:"column:final_amount;type:numeric(10,2);not null;default:0"`
	ItemCount      int              `gorm:"column:item_count;not null;default:0"`
	CouponCode     *string          `gorm:"column:coupon_code;type:text"`
	Items          []CartItem       `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	ExpiresAt      time.Time        `gorm:"column:expires_at;not null"`
	CreatedAt      time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// RecomputeTotals rederives total, item count, and final amount from the
// loaded Items slice. The applied discount is kept as-is; FinalAmount is
// clamped at zero when the discount exceeds the new total.
func (c *Cart) RecomputeTotals() {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Price)
	}
	c.TotalAmount = total.Round(2)
	c.ItemCount = len(c.Items)

	final := c.TotalAmount.Sub(c.DiscountAmount)
	if final.IsNegative() {
		final = decimal.Zero
	}
	c.FinalAmount = final.Round(2)
}

// ApplyCoupon records the coupon and its discount on the aggregate.
// Applying a second coupon replaces the first.
func (c *Cart) ApplyCoupon(code string, discount decimal.Decimal) {
	c.CouponCode = &code
	c.DiscountAmount = discount.Round(2)
	c.RecomputeTotals()
}

// RemoveCoupon clears any applied coupon. Safe to call when none is set.
func (c *Cart) RemoveCoupon() {
	c.CouponCode = nil
	c.DiscountAmount = decimal.Zero
	c.RecomputeTotals()
}

// ExtendExpiration slides the expiry window forward from now.
func (c *Cart) ExtendExpiration(now time.Time, days int) {
	c.ExpiresAt = now.AddDate(0, 0, days)
}

// IsGuestCart reports whether the cart belongs to an anonymous session.
func (c *Cart) IsGuestCart() bool {
	return c.UserID == nil && c.SessionID != nil
}

// IsExpired reports whether the cart is past its expiry timestamp.
func (c *Cart) IsExpired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}
