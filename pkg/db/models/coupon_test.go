package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillwave/skillwave-backend/pkg/enums"
)

func validWindow(now time.Time) (time.Time, time.Time) {
	return now.Add(-time.Hour), now.Add(24 * time.Hour)
}

func TestNewCouponValidation(t *testing.T) {
	now := time.Now().UTC()
	from, until := validWindow(now)

	c, err := NewCoupon("  save20 ", enums.DiscountTypePercentage, decimal.NewFromInt(20), from, until)
	require.NoError(t, err)
	assert.Equal(t, "SAVE20", c.Code)
	assert.Equal(t, enums.CouponStatusActive, c.Status)
	assert.True(t, c.IsPublic)
	require.NotNil(t, c.PerUserLimit)
	assert.Equal(t, 1, *c.PerUserLimit)

	_, err = NewCoupon("OVER", enums.DiscountTypePercentage, decimal.NewFromInt(150), from, until)
	require.Error(t, err)

	_, err = NewCoupon("NEG", enums.DiscountTypeFixedAmount, decimal.NewFromInt(-5), from, until)
	require.Error(t, err)

	_, err = NewCoupon("", enums.DiscountTypeFixedAmount, decimal.NewFromInt(5), from, until)
	require.Error(t, err)
}

func TestCouponIsValidAt(t *testing.T) {
	now := time.Now().UTC()
	from, until := validWindow(now)
	limit := 2

	tests := []struct {
		name   string
		mutate func(*Coupon)
		want   bool
	}{
		{name: "valid", mutate: func(*Coupon) {}, want: true},
		{name: "inactive", mutate: func(c *Coupon) { c.Status = enums.CouponStatusInactive }, want: false},
		{name: "expired status", mutate: func(c *Coupon) { c.Status = enums.CouponStatusExpired }, want: false},
		{name: "before window", mutate: func(c *Coupon) { c.ValidFrom = now.Add(time.Hour) }, want: false},
		{name: "after window", mutate: func(c *Coupon) { c.ValidUntil = now.Add(-time.Minute) }, want: false},
		{name: "exhausted", mutate: func(c *Coupon) { c.UsageLimit = &limit; c.TotalUsed = 2 }, want: false},
		{name: "under limit", mutate: func(c *Coupon) { c.UsageLimit = &limit; c.TotalUsed = 1 }, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewCoupon("WINDOW", enums.DiscountTypePercentage, decimal.NewFromInt(10), from, until)
			require.NoError(t, err)
			tt.mutate(c)
			assert.Equal(t, tt.want, c.IsValidAt(now))
		})
	}
}

func TestCouponCalculateDiscount(t *testing.T) {
	now := time.Now().UTC()
	from, until := validWindow(now)
	maxCap := decimal.NewFromInt(100)

	tests := []struct {
		name     string
		dtype    enums.DiscountType
		value    decimal.Decimal
		minimum  decimal.Decimal
		maxCap   *decimal.Decimal
		order    decimal.Decimal
		expected string
	}{
		{
			name:     "percentage rounds to cents",
			dtype:    enums.DiscountTypePercentage,
			value:    decimal.NewFromInt(20),
			order:    decimal.RequireFromString("249.98"),
			expected: "50",
		},
		{
			name:     "percentage capped by maximum",
			dtype:    enums.DiscountTypePercentage,
			value:    decimal.NewFromInt(50),
			maxCap:   &maxCap,
			order:    decimal.NewFromInt(400),
			expected: "100",
		},
		{
			name:     "fixed amount",
			dtype:    enums.DiscountTypeFixedAmount,
			value:    decimal.NewFromInt(30),
			order:    decimal.NewFromInt(120),
			expected: "30",
		},
		{
			name:     "fixed never exceeds order",
			dtype:    enums.DiscountTypeFixedAmount,
			value:    decimal.NewFromInt(75),
			order:    decimal.RequireFromString("49.99"),
			expected: "49.99",
		},
		{
			name:     "below minimum yields zero",
			dtype:    enums.DiscountTypePercentage,
			value:    decimal.NewFromInt(20),
			minimum:  decimal.NewFromInt(100),
			order:    decimal.NewFromInt(80),
			expected: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewCoupon("CALC", tt.dtype, tt.value, from, until)
			require.NoError(t, err)
			c.MinimumOrderAmount = tt.minimum
			c.MaximumDiscountAmount = tt.maxCap

			got := c.CalculateDiscount(now, tt.order)
			assert.Equal(t, tt.expected, got.String())
		})
	}
}

func TestCouponCalculateDiscountExpiredYieldsZero(t *testing.T) {
	now := time.Now().UTC()
	c, err := NewCoupon("OLD", enums.DiscountTypePercentage, decimal.NewFromInt(20),
		now.Add(-48*time.Hour), now.Add(-24*time.Hour))
	require.NoError(t, err)

	got := c.CalculateDiscount(now, decimal.NewFromInt(200))
	assert.True(t, got.IsZero())
}

func TestCouponCanBeUsedBy(t *testing.T) {
	now := time.Now().UTC()
	from, until := validWindow(now)
	c, err := NewCoupon("PERUSER", enums.DiscountTypePercentage, decimal.NewFromInt(10), from, until)
	require.NoError(t, err)

	assert.True(t, c.CanBeUsedBy(0), "fresh coupons default to one use per user")
	assert.False(t, c.CanBeUsedBy(1))

	five := 5
	c.PerUserLimit = &five
	assert.True(t, c.CanBeUsedBy(4))
	assert.False(t, c.CanBeUsedBy(5))

	c.PerUserLimit = nil
	assert.True(t, c.CanBeUsedBy(99), "nil per-user limit means unlimited")
}
