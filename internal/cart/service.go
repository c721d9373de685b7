package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/skillwave/skillwave-backend/internal/coupons"
	"github.com/skillwave/skillwave-backend/pkg/config"
	"github.com/skillwave/skillwave-backend/pkg/db"
	"github.com/skillwave/skillwave-backend/pkg/db/models"
	"github.com/skillwave/skillwave-backend/pkg/enums"
	pkgerrors "github.com/skillwave/skillwave-backend/pkg/errors"
)

const cartItemsUniqueConstraint = "uq_cart_items_cart_course"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type courseLoader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Course, error)
}

// Service exposes cart pricing and coupon operations.
type Service interface {
	GetCart(ctx context.Context, owner Owner) (*CartView, error)
	AddItem(ctx context.Context, owner Owner, courseID uuid.UUID) (*CartView, error)
	RemoveItem(ctx context.Context, owner Owner, itemID uuid.UUID) (*CartView, error)
	ClearCart(ctx context.Context, owner Owner) (*CartView, error)
	ApplyCoupon(ctx context.Context, owner Owner, code string) (*ApplyCouponResult, error)
	RemoveCoupon(ctx context.Context, owner Owner) (*CartView, error)
	MergeGuestCart(ctx context.Context, userID uuid.UUID, sessionID string) (*CartView, error)
	RedeemCoupon(ctx context.Context, userID uuid.UUID) (*models.CouponUsage, error)
	GetAvailableCoupons(ctx context.Context) ([]CouponView, error)
}

// ApplyCouponResult pairs the updated cart with a checkout estimate.
type ApplyCouponResult struct {
	Cart      *CartView  `json:"cart"`
	Breakdown *Breakdown `json:"breakdown"`
}

type service struct {
	repo    CartRepository
	coupons coupons.CouponRepository
	courses courseLoader
	tx      txRunner
	cfg     config.CartConfig
	now     func() time.Time
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo CartRepository, couponRepo coupons.CouponRepository, courses courseLoader, tx txRunner, cfg config.CartConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if couponRepo == nil {
		return nil, fmt.Errorf("coupon repository required")
	}
	if courses == nil {
		return nil, fmt.Errorf("course loader required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:    repo,
		coupons: couponRepo,
		courses: courses,
		tx:      tx,
		cfg:     cfg,
		now:     time.Now,
	}, nil
}

// GetCart returns the owner's active cart, creating an empty one when
// none exists.
func (s *service) GetCart(ctx context.Context, owner Owner) (*CartView, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}

	cart, err := s.getOrCreate(ctx, s.repo, owner)
	if err != nil {
		return nil, err
	}
	return newCartView(cart), nil
}

// AddItem puts a course into the owner's cart, snapshotting its current
// price. Adding a course already in the cart is a no-op that returns the
// current cart state.
func (s *service) AddItem(ctx context.Context, owner Owner, courseID uuid.UUID) (*CartView, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	if courseID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "course id is required")
	}

	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "course not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load course")
	}
	if !course.IsPublished {
		return nil, pkgerrors.New(pkgerrors.CodeBusinessRule, "course is not available for purchase")
	}

	var saved *models.Cart
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		cart, err := s.getOrCreate(ctx, txRepo, owner)
		if err != nil {
			return err
		}

		item := models.NewCartItem(cart.ID, course)
		if err := txRepo.AddItem(ctx, item); err != nil {
			// Concurrent or repeated add of the same course: the row is
			// already there, treat it as success.
			if !db.IsUniqueViolation(err, cartItemsUniqueConstraint) {
				return err
			}
		}

		cart, err = txRepo.FindByID(ctx, cart.ID)
		if err != nil {
			return err
		}
		cart.RecomputeTotals()
		cart.ExtendExpiration(s.now(), s.cfg.ExpiryDays)
		saved, err = txRepo.Update(ctx, cart)
		return err
	})
	if err != nil {
		return nil, s.persistErr(err, "add cart item")
	}
	return newCartView(saved), nil
}

// RemoveItem deletes a line from the owner's cart and reprices it. A
// coupon left on the cart keeps its discount, with the final amount
// clamped at zero.
func (s *service) RemoveItem(ctx context.Context, owner Owner, itemID uuid.UUID) (*CartView, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	if itemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
	}

	var saved *models.Cart
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		cart, err := s.findActive(ctx, txRepo, owner)
		if err != nil {
			return err
		}

		if _, err := txRepo.FindItem(ctx, cart.ID, itemID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
			}
			return err
		}
		if err := txRepo.DeleteItem(ctx, cart.ID, itemID); err != nil {
			return err
		}

		cart, err = txRepo.FindByID(ctx, cart.ID)
		if err != nil {
			return err
		}
		cart.RecomputeTotals()
		saved, err = txRepo.Update(ctx, cart)
		return err
	})
	if err != nil {
		return nil, s.persistErr(err, "remove cart item")
	}
	return newCartView(saved), nil
}

// ClearCart empties the owner's cart and drops any applied coupon.
func (s *service) ClearCart(ctx context.Context, owner Owner) (*CartView, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}

	var saved *models.Cart
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		cart, err := s.findActive(ctx, txRepo, owner)
		if err != nil {
			return err
		}

		if err := txRepo.ClearItems(ctx, cart.ID); err != nil {
			return err
		}

		cart, err = txRepo.FindByID(ctx, cart.ID)
		if err != nil {
			return err
		}
		cart.RemoveCoupon()
		saved, err = txRepo.Update(ctx, cart)
		return err
	})
	if err != nil {
		return nil, s.persistErr(err, "clear cart")
	}
	return newCartView(saved), nil
}

// ApplyCoupon validates the coupon against the owner's cart and records
// the resulting discount. Applying a second coupon replaces the first.
// The returned breakdown is a checkout estimate only; tax and fee never
// touch the stored totals.
func (s *service) ApplyCoupon(ctx context.Context, owner Owner, code string) (*ApplyCouponResult, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	normalized := models.NormalizeCode(code)
	if normalized == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon code is required")
	}

	now := s.now()
	var saved *models.Cart
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		txCoupons := s.coupons.WithTx(tx)

		cart, err := s.findActive(ctx, txRepo, owner)
		if err != nil {
			return err
		}
		if cart.ItemCount == 0 {
			return pkgerrors.New(pkgerrors.CodeBusinessRule, "cannot apply a coupon to an empty cart")
		}

		coupon, err := txCoupons.FindByCode(ctx, normalized)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
			}
			return err
		}
		if !coupon.IsValidAt(now) {
			return pkgerrors.New(pkgerrors.CodeBusinessRule, "coupon is not currently valid")
		}
		if cart.TotalAmount.LessThan(coupon.MinimumOrderAmount) {
			return pkgerrors.New(pkgerrors.CodeBusinessRule, "cart total is below the coupon minimum").
				WithDetails(map[string]string{
					"minimum_order_amount": coupon.MinimumOrderAmount.StringFixed(2),
				})
		}
		if userID, ok := owner.UserID(); ok {
			used, err := txCoupons.CountUsageByUser(ctx, coupon.ID, userID)
			if err != nil {
				return err
			}
			if !coupon.CanBeUsedBy(used) {
				return pkgerrors.New(pkgerrors.CodeBusinessRule, "coupon usage limit reached for this user")
			}
		}

		discount := coupon.CalculateDiscount(now, cart.TotalAmount)
		cart.ApplyCoupon(coupon.Code, discount)
		saved, err = txRepo.Update(ctx, cart)
		return err
	})
	if err != nil {
		return nil, s.persistErr(err, "apply coupon")
	}

	taxRate := decimal.NewFromFloat(s.cfg.TaxRate)
	processingFee := decimal.NewFromFloat(s.cfg.ProcessingFee)
	return &ApplyCouponResult{
		Cart:      newCartView(saved),
		Breakdown: newBreakdown(saved, taxRate, processingFee),
	}, nil
}

// RemoveCoupon clears the applied coupon from the owner's cart.
// Removing when no coupon is applied succeeds and returns the cart
// unchanged.
func (s *service) RemoveCoupon(ctx context.Context, owner Owner) (*CartView, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}

	var saved *models.Cart
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		cart, err := s.findActive(ctx, txRepo, owner)
		if err != nil {
			return err
		}
		cart.RemoveCoupon()
		saved, err = txRepo.Update(ctx, cart)
		return err
	})
	if err != nil {
		return nil, s.persistErr(err, "remove coupon")
	}
	return newCartView(saved), nil
}

// MergeGuestCart folds a guest session's cart into the user's cart at
// login. The user's existing lines win on duplicate courses. When the
// user has no cart the guest cart is reassigned wholesale; when the
// guest cart is missing or empty the user's cart is untouched.
func (s *service) MergeGuestCart(ctx context.Context, userID uuid.UUID, sessionID string) (*CartView, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	guestOwner := GuestOwner(sessionID)
	if _, ok := guestOwner.SessionID(); !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}

	var saved *models.Cart
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		guestCart, err := txRepo.FindActiveByOwner(ctx, guestOwner)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			guestCart = nil
		}

		userCart, err := txRepo.FindActiveByOwner(ctx, UserOwner(userID))
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			userCart = nil
		}

		switch {
		case guestCart == nil && userCart == nil:
			created, err := s.getOrCreate(ctx, txRepo, UserOwner(userID))
			if err != nil {
				return err
			}
			saved = created
			return nil
		case guestCart == nil:
			saved = userCart
			return nil
		case userCart == nil:
			// No user cart: the guest cart simply changes hands.
			if err := txRepo.AssignUser(ctx, guestCart.ID, userID); err != nil {
				return err
			}
			guestCart, err = txRepo.FindByID(ctx, guestCart.ID)
			if err != nil {
				return err
			}
			guestCart.ExtendExpiration(s.now(), s.cfg.ExpiryDays)
			saved, err = txRepo.Update(ctx, guestCart)
			return err
		}

		if len(guestCart.Items) > 0 {
			if err := txRepo.MoveItems(ctx, guestCart.ID, userCart.ID); err != nil {
				return err
			}
		}
		if err := txRepo.UpdateStatus(ctx, guestCart.ID, enums.CartStatusConverted); err != nil {
			return err
		}

		userCart, err = txRepo.FindByID(ctx, userCart.ID)
		if err != nil {
			return err
		}
		userCart.RecomputeTotals()
		userCart.ExtendExpiration(s.now(), s.cfg.ExpiryDays)
		saved, err = txRepo.Update(ctx, userCart)
		return err
	})
	if err != nil {
		return nil, s.persistErr(err, "merge guest cart")
	}
	return newCartView(saved), nil
}

// RedeemCoupon consumes the coupon applied to the user's cart at
// checkout: the coupon's usage counter is incremented atomically, the
// audit row is written, and the cart is marked converted. Losing the
// race for the last redemption slot fails the whole transaction.
func (s *service) RedeemCoupon(ctx context.Context, userID uuid.UUID) (*models.CouponUsage, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	now := s.now()
	var usage *models.CouponUsage
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		txCoupons := s.coupons.WithTx(tx)

		cart, err := s.findActive(ctx, txRepo, UserOwner(userID))
		if err != nil {
			return err
		}
		if cart.ItemCount == 0 {
			return pkgerrors.New(pkgerrors.CodeBusinessRule, "cannot redeem a coupon on an empty cart")
		}
		if cart.CouponCode == nil {
			return pkgerrors.New(pkgerrors.CodeBusinessRule, "no coupon applied to cart")
		}

		coupon, err := txCoupons.FindByCode(ctx, *cart.CouponCode)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
			}
			return err
		}
		if !coupon.IsValidAt(now) {
			return pkgerrors.New(pkgerrors.CodeBusinessRule, "coupon is no longer valid")
		}
		used, err := txCoupons.CountUsageByUser(ctx, coupon.ID, userID)
		if err != nil {
			return err
		}
		if !coupon.CanBeUsedBy(used) {
			return pkgerrors.New(pkgerrors.CodeBusinessRule, "coupon usage limit reached for this user")
		}

		redeemer := userID
		usage = &models.CouponUsage{
			CouponID:        coupon.ID,
			UserID:          &redeemer,
			CartID:          &cart.ID,
			SessionID:       cart.SessionID,
			OrderAmount:     cart.TotalAmount,
			DiscountApplied: cart.DiscountAmount,
		}
		if err := txCoupons.RecordUsage(ctx, usage); err != nil {
			if errors.Is(err, coupons.ErrUsageLimitReached) {
				return pkgerrors.New(pkgerrors.CodeBusinessRule, "coupon usage limit reached")
			}
			return err
		}

		return txRepo.UpdateStatus(ctx, cart.ID, enums.CartStatusConverted)
	})
	if err != nil {
		return nil, s.persistErr(err, "redeem coupon")
	}
	return usage, nil
}

// GetAvailableCoupons lists public coupons currently open for use.
func (s *service) GetAvailableCoupons(ctx context.Context) ([]CouponView, error) {
	found, err := s.coupons.ListPublicValid(ctx, s.now(), s.cfg.AvailableCouponsLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list coupons")
	}
	views := make([]CouponView, 0, len(found))
	for _, coupon := range found {
		views = append(views, newCouponView(coupon))
	}
	return views, nil
}

// getOrCreate returns the owner's active cart, creating one when
// missing. A unique violation on create means another request created
// the cart first; the re-read resolves the race.
func (s *service) getOrCreate(ctx context.Context, repo CartRepository, owner Owner) (*models.Cart, error) {
	cart, err := repo.FindActiveByOwner(ctx, owner)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	fresh := &models.Cart{
		Status:    enums.CartStatusActive,
		ExpiresAt: s.now().AddDate(0, 0, s.cfg.ExpiryDays),
	}
	if userID, ok := owner.UserID(); ok {
		id := userID
		fresh.UserID = &id
	} else if sessionID, ok := owner.SessionID(); ok {
		sid := sessionID
		fresh.SessionID = &sid
	}

	created, err := repo.Create(ctx, fresh)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return repo.FindActiveByOwner(ctx, owner)
		}
		return nil, err
	}
	if created.Items == nil {
		created.Items = []models.CartItem{}
	}
	return created, nil
}

// findActive loads the owner's active cart or reports not-found.
func (s *service) findActive(ctx context.Context, repo CartRepository, owner Owner) (*models.Cart, error) {
	cart, err := repo.FindActiveByOwner(ctx, owner)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no active cart")
		}
		return nil, err
	}
	return cart, nil
}

// persistErr passes coded errors through untouched and wraps raw
// persistence failures as dependency errors.
func (s *service) persistErr(err error, op string) error {
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
}
