package cart

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skillwave/skillwave-backend/pkg/db/models"
	"github.com/skillwave/skillwave-backend/pkg/enums"
)

// CartRepository defines the persistence surface required by the cart service.
type CartRepository interface {
	WithTx(tx *gorm.DB) CartRepository
	FindActiveByOwner(ctx context.Context, owner Owner) (*models.Cart, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Cart, error)
	Create(ctx context.Context, cart *models.Cart) (*models.Cart, error)
	Update(ctx context.Context, cart *models.Cart) (*models.Cart, error)
	AddItem(ctx context.Context, item *models.CartItem) error
	FindItem(ctx context.Context, cartID, itemID uuid.UUID) (*models.CartItem, error)
	FindItemByCourse(ctx context.Context, cartID, courseID uuid.UUID) (*models.CartItem, error)
	DeleteItem(ctx context.Context, cartID, itemID uuid.UUID) error
	ClearItems(ctx context.Context, cartID uuid.UUID) error
	MoveItems(ctx context.Context, fromCartID, toCartID uuid.UUID) error
	AssignUser(ctx context.Context, cartID, userID uuid.UUID) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.CartStatus) error
	MarkAbandoned(ctx context.Context, expiredBefore time.Time) (int64, error)
	DeleteExpired(ctx context.Context, now time.Time, staleBefore time.Time) (int64, error)
}
