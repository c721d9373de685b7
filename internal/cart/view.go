package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/skillwave/skillwave-backend/pkg/db/models"
)

// CartView is the fully-materialized cart returned by every service
// operation. Money renders as fixed two-decimal strings.
type CartView struct {
	ID             uuid.UUID      `json:"id"`
	UserID         *uuid.UUID     `json:"user_id,omitempty"`
	SessionID      *string        `json:"session_id,omitempty"`
	Status         string         `json:"status"`
	Items          []CartItemView `json:"items"`
	ItemCount      int            `json:"item_count"`
	TotalAmount    string         `json:"total_amount"`
	DiscountAmount string         `json:"discount_amount"`
	FinalAmount    string         `json:"final_amount"`
	CouponCode     *string        `json:"coupon_code,omitempty"`
	ExpiresAt      time.Time      `json:"expires_at"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// CartItemView is a single line in the cart view.
type CartItemView struct {
	ID               uuid.UUID `json:"id"`
	CourseID         uuid.UUID `json:"course_id"`
	CourseTitle      string    `json:"course_title"`
	CourseInstructor string    `json:"course_instructor"`
	Price            string    `json:"price"`
	OriginalPrice    *string   `json:"original_price,omitempty"`
	AddedAt          time.Time `json:"added_at"`
}

// Breakdown is the presentation-only checkout estimate returned with
// coupon application. Nothing in it is persisted.
type Breakdown struct {
	Subtotal       string `json:"subtotal"`
	Discount       string `json:"discount"`
	EstimatedTax   string `json:"estimated_tax"`
	ProcessingFee  string `json:"processing_fee"`
	EstimatedTotal string `json:"estimated_total"`
}

// CouponView is the public shape for listing available coupons.
type CouponView struct {
	Code               string    `json:"code"`
	Description        string    `json:"description,omitempty"`
	DiscountType       string    `json:"discount_type"`
	DiscountValue      string    `json:"discount_value"`
	MinimumOrderAmount string    `json:"minimum_order_amount"`
	ValidUntil         time.Time `json:"valid_until"`
}

func newCartView(cart *models.Cart) *CartView {
	items := make([]CartItemView, 0, len(cart.Items))
	for _, item := range cart.Items {
		view := CartItemView{
			ID:               item.ID,
			CourseID:         item.CourseID,
			CourseTitle:      item.CourseTitle,
			CourseInstructor: item.CourseInstructor,
			Price:            item.Price.StringFixed(2),
			AddedAt:          item.AddedAt,
		}
		if item.OriginalPrice != nil {
			original := item.OriginalPrice.StringFixed(2)
			view.OriginalPrice = &original
		}
		items = append(items, view)
	}

	return &CartView{
		ID:             cart.ID,
		UserID:         cart.UserID,
		SessionID:      cart.SessionID,
		Status:         cart.Status.String(),
		Items:          items,
		ItemCount:      cart.ItemCount,
		TotalAmount:    cart.TotalAmount.StringFixed(2),
		DiscountAmount: cart.DiscountAmount.StringFixed(2),
		FinalAmount:    cart.FinalAmount.StringFixed(2),
		CouponCode:     cart.CouponCode,
		ExpiresAt:      cart.ExpiresAt,
		CreatedAt:      cart.CreatedAt,
		UpdatedAt:      cart.UpdatedAt,
	}
}

func newBreakdown(cart *models.Cart, taxRate, processingFee decimal.Decimal) *Breakdown {
	tax := cart.FinalAmount.Mul(taxRate).Round(2)
	total := cart.FinalAmount.Add(tax).Add(processingFee).Round(2)
	return &Breakdown{
		Subtotal:       cart.TotalAmount.StringFixed(2),
		Discount:       cart.DiscountAmount.StringFixed(2),
		EstimatedTax:   tax.StringFixed(2),
		ProcessingFee:  processingFee.StringFixed(2),
		EstimatedTotal: total.StringFixed(2),
	}
}

func newCouponView(coupon models.Coupon) CouponView {
	return CouponView{
		Code:               coupon.Code,
		Description:        coupon.Description,
		DiscountType:       coupon.DiscountType.String(),
		DiscountValue:      coupon.DiscountValue.StringFixed(2),
		MinimumOrderAmount: coupon.MinimumOrderAmount.StringFixed(2),
		ValidUntil:         coupon.ValidUntil,
	}
}
