package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/skillwave/skillwave-backend/pkg/enums"
	pkgerrors "github.com/skillwave/skillwave-backend/pkg/errors"
)

var percentCap = decimal.NewFromInt(100)

// Coupon is the discount policy object. Validity and discount math live
// here; persistence-level concerns (the atomic usage counter) live in the
// coupon repository.
type Coupon struct {
	ID                    uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code                  string             `gorm:"column:code;type:text;not null;uniqueIndex"`
	Description           string             `gorm:"column:description"`
	DiscountType          enums.DiscountType `gorm:"column:discount_type;type:text;not null"`
	DiscountValue         decimal.Decimal    `gorm:"column:discount_value;type:numeric(10,2);not null"`
	MinimumOrderAmount    decimal.Decimal    `gorm:"column:minimum_order_amount;type:numeric(10,2);not null;default:0"`
	MaximumDiscountAmount *decimal.Decimal   `gorm:"column:maximum_discount_amount;type:numeric(10,2)"`
	UsageLimit            *int               `gorm:"column:usage_limit"`
	TotalUsed             int                `gorm:"column:total_used;not null;default:0"`
	TotalDiscountGiven    decimal.Decimal    `gorm:"column:total_discount_given;type:numeric(10,2);not null;default:0"`
	PerUserLimit          *int               `gorm:"column:per_user_limit"`
	Status                enums.CouponStatus `gorm:"column:status;type:text;not null;default:'active'"`
	IsPublic              bool               `gorm:"column:is_public;not null"`
	ValidFrom             time.Time          `gorm:"column:valid_from;not null"`
	ValidUntil            time.Time          `gorm:"column:valid_until;not null"`
	CreatedAt             time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

// NewCoupon normalizes the code and validates the discount value.
// Percentage coupons above 100% are rejected outright.
func NewCoupon(code string, discountType enums.DiscountType, value decimal.Decimal, validFrom, validUntil time.Time) (*Coupon, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon code is required")
	}
	if !discountType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown discount type")
	}
	if !value.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount value must be positive")
	}
	if discountType == enums.DiscountTypePercentage && value.GreaterThan(percentCap) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "percentage discount cannot exceed 100")
	}
	defaultPerUser := 1
	return &Coupon{
		Code:          normalized,
		DiscountType:  discountType,
		DiscountValue: value,
		PerUserLimit:  &defaultPerUser,
		Status:        enums.CouponStatusActive,
		IsPublic:      true,
		ValidFrom:     validFrom,
		ValidUntil:    validUntil,
	}, nil
}

// IsValidAt reports whether the coupon can be applied at the given
// instant: active, inside its validity window, and not globally
// exhausted.
func (c *Coupon) IsValidAt(now time.Time) bool {
	if c.Status != enums.CouponStatusActive {
		return false
	}
	if now.Before(c.ValidFrom) || now.After(c.ValidUntil) {
		return false
	}
	if c.UsageLimit != nil && c.TotalUsed >= *c.UsageLimit {
		return false
	}
	return true
}

// CalculateDiscount returns the discount for the given order amount,
// rounded to two decimal places. Invalid coupons and orders below the
// minimum yield zero. Percentage discounts honor the optional cap; fixed
// discounts never exceed the order amount.
func (c *Coupon) CalculateDiscount(now time.Time, orderAmount decimal.Decimal) decimal.Decimal {
	if !c.IsValidAt(now) {
		return decimal.Zero
	}
	if orderAmount.LessThan(c.MinimumOrderAmount) {
		return decimal.Zero
	}

	var discount decimal.Decimal
	switch c.DiscountType {
	case enums.DiscountTypePercentage:
		discount = orderAmount.Mul(c.DiscountValue).Div(percentCap)
		if c.MaximumDiscountAmount != nil && discount.GreaterThan(*c.MaximumDiscountAmount) {
			discount = *c.MaximumDiscountAmount
		}
	case enums.DiscountTypeFixedAmount:
		discount = c.DiscountValue
		if discount.GreaterThan(orderAmount) {
			discount = orderAmount
		}
	default:
		return decimal.Zero
	}

	if discount.IsNegative() {
		return decimal.Zero
	}
	return discount.Round(2)
}

// CanBeUsedBy reports whether a user with priorUsage redemptions of this
// coupon may use it again. A nil per-user limit means unlimited.
func (c *Coupon) CanBeUsedBy(priorUsage int) bool {
	if c.PerUserLimit == nil {
		return true
	}
	return priorUsage < *c.PerUserLimit
}

// NormalizeCode uppercases and trims a user-supplied coupon code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
