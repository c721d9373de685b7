package coupons

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skillwave/skillwave-backend/pkg/db/models"
	"github.com/skillwave/skillwave-backend/pkg/enums"
)

// ErrUsageLimitReached is returned by RecordUsage when the coupon's
// global usage limit was exhausted before the redemption could be
// counted.
var ErrUsageLimitReached = errors.New("coupon usage limit reached")

// CouponRepository defines the persistence surface for coupons and
// their redemption audit trail.
type CouponRepository interface {
	WithTx(tx *gorm.DB) CouponRepository
	FindByCode(ctx context.Context, code string) (*models.Coupon, error)
	CountUsageByUser(ctx context.Context, couponID, userID uuid.UUID) (int, error)
	ListPublicValid(ctx context.Context, now time.Time, limit int) ([]models.Coupon, error)
	Create(ctx context.Context, coupon *models.Coupon) (*models.Coupon, error)
	RecordUsage(ctx context.Context, usage *models.CouponUsage) error
}

// Repository is the GORM implementation of CouponRepository.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a coupon repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) CouponRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindByCode loads a coupon by its normalized code.
func (r *Repository) FindByCode(ctx context.Context, code string) (*models.Coupon, error) {
	var coupon models.Coupon
	err := r.db.WithContext(ctx).
		Where("code = ?", models.NormalizeCode(code)).
		First(&coupon).Error
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}

// CountUsageByUser returns how many times a user has redeemed a coupon.
func (r *Repository) CountUsageByUser(ctx context.Context, couponID, userID uuid.UUID) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.CouponUsage{}).
		Where("coupon_id = ? AND user_id = ?", couponID, userID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

// ListPublicValid returns publicly listed active coupons inside their
// validity window with remaining global capacity, newest first.
// Private coupons stay off the listing and apply by code only.
func (r *Repository) ListPublicValid(ctx context.Context, now time.Time, limit int) ([]models.Coupon, error) {
	var coupons []models.Coupon
	query := r.db.WithContext(ctx).
		Where("status = ?", enums.CouponStatusActive).
		Where("is_public = ?", true).
		Where("valid_from <= ? AND valid_until >= ?", now, now).
		Where("usage_limit IS NULL OR total_used < usage_limit").
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&coupons).Error; err != nil {
		return nil, err
	}
	return coupons, nil
}

// Create inserts a new coupon.
func (r *Repository) Create(ctx context.Context, coupon *models.Coupon) (*models.Coupon, error) {
	if coupon.ID == uuid.Nil {
		coupon.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(coupon).Error; err != nil {
		return nil, err
	}
	return coupon, nil
}

// RecordUsage increments the coupon's usage and discount-given counters
// and writes the audit row. The increment is a conditional UPDATE
// guarded by the usage limit, so two concurrent redemptions of the last
// slot cannot both succeed: the loser matches zero rows and gets
// ErrUsageLimitReached.
func (r *Repository) RecordUsage(ctx context.Context, usage *models.CouponUsage) error {
	res := r.db.WithContext(ctx).
		Model(&models.Coupon{}).
		Where("id = ? AND (usage_limit IS NULL OR total_used < usage_limit)", usage.CouponID).
		UpdateColumns(map[string]any{
			"total_used":           gorm.Expr("total_used + 1"),
			"total_discount_given": gorm.Expr("total_discount_given + ?", usage.DiscountApplied),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUsageLimitReached
	}
	if usage.ID == uuid.Nil {
		usage.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(usage).Error
}
