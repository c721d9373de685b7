package cart

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skillwave/skillwave-backend/pkg/db/models"
	"github.com/skillwave/skillwave-backend/pkg/enums"
)

// Repository exposes persistence operations for the cart aggregate.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) CartRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindActiveByOwner loads the active cart for the given owner, items included.
func (r *Repository) FindActiveByOwner(ctx context.Context, owner Owner) (*models.Cart, error) {
	query := r.db.WithContext(ctx).
		Preload("Items").
		Where("status = ?", enums.CartStatusActive)

	if userID, ok := owner.UserID(); ok {
		query = query.Where("user_id = ?", userID)
	} else if sessionID, ok := owner.SessionID(); ok {
		query = query.Where("session_id = ?", sessionID)
	} else {
		return nil, gorm.ErrRecordNotFound
	}

	var cart models.Cart
	if err := query.Order("created_at DESC").First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// FindByID loads a cart with its items.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", id).
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// Create inserts a new cart.
func (r *Repository) Create(ctx context.Context, cart *models.Cart) (*models.Cart, error) {
	if cart.ID == uuid.Nil {
		cart.ID = uuid.New()
	}
	if cart.Status == "" {
		cart.Status = enums.CartStatusActive
	}
	if err := r.db.WithContext(ctx).Create(cart).Error; err != nil {
		return nil, err
	}
	return cart, nil
}

// Update saves the provided cart.
func (r *Repository) Update(ctx context.Context, cart *models.Cart) (*models.Cart, error) {
	if err := r.db.WithContext(ctx).Save(cart).Error; err != nil {
		return nil, err
	}
	return cart, nil
}

// AddItem inserts a cart line. A unique violation on
// uq_cart_items_cart_course surfaces to the caller, which treats it as
// an idempotent duplicate add.
func (r *Repository) AddItem(ctx context.Context, item *models.CartItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(item).Error
}

// FindItem loads a cart line scoped to the owning cart.
func (r *Repository) FindItem(ctx context.Context, cartID, itemID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).
		Where("id = ? AND cart_id = ?", itemID, cartID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// FindItemByCourse loads the line for a course within a cart.
func (r *Repository) FindItemByCourse(ctx context.Context, cartID, courseID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).
		Where("cart_id = ? AND course_id = ?", cartID, courseID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// DeleteItem removes a cart line scoped to the owning cart.
func (r *Repository) DeleteItem(ctx context.Context, cartID, itemID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND cart_id = ?", itemID, cartID).
		Delete(&models.CartItem{}).Error
}

// ClearItems removes every line from a cart.
func (r *Repository) ClearItems(ctx context.Context, cartID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Delete(&models.CartItem{}).Error
}

// MoveItems re-points lines from one cart to another, skipping courses
// the destination already holds (destination wins on duplicates).
func (r *Repository) MoveItems(ctx context.Context, fromCartID, toCartID uuid.UUID) error {
	return r.db.WithContext(ctx).Exec(
		`UPDATE cart_items SET cart_id = ?
		 WHERE cart_id = ?
		   AND course_id NOT IN (SELECT course_id FROM cart_items WHERE cart_id = ?)`,
		toCartID, fromCartID, toCartID,
	).Error
}

// AssignUser converts a guest cart into a user cart in place.
func (r *Repository) AssignUser(ctx context.Context, cartID, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Cart{}).
		Where("id = ?", cartID).
		Updates(map[string]any{"user_id": userID, "session_id": nil}).Error
}

// UpdateStatus transitions a cart's lifecycle status.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.CartStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Cart{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// MarkAbandoned flips active carts past their expiry to abandoned and
// returns the number of carts affected.
func (r *Repository) MarkAbandoned(ctx context.Context, expiredBefore time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Cart{}).
		Where("status = ? AND expires_at < ?", enums.CartStatusActive, expiredBefore).
		Update("status", enums.CartStatusAbandoned)
	return res.RowsAffected, res.Error
}

// DeleteExpired removes carts past expiry, plus abandoned carts
// untouched since staleBefore. Items go with them via cascade.
func (r *Repository) DeleteExpired(ctx context.Context, now time.Time, staleBefore time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at < ? OR (status = ? AND updated_at < ?)", now, enums.CartStatusAbandoned, staleBefore).
		Delete(&models.Cart{})
	return res.RowsAffected, res.Error
}
