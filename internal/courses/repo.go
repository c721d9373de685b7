package courses

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skillwave/skillwave-backend/pkg/db/models"
	"github.com/skillwave/skillwave-backend/pkg/pagination"
)

// CourseRepository defines the catalog lookups the cart and API layers
// need.
type CourseRepository interface {
	WithTx(tx *gorm.DB) CourseRepository
	GetByID(ctx context.Context, id uuid.UUID) (*models.Course, error)
	ListPublished(ctx context.Context, limit int, cursor *pagination.Cursor) ([]models.Course, error)
	Create(ctx context.Context, course *models.Course) (*models.Course, error)
}

// Repository is the GORM implementation of CourseRepository.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a course repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) CourseRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// GetByID loads a course.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	var course models.Course
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// ListPublished returns published courses, newest first, using keyset
// pagination on (created_at, id).
func (r *Repository) ListPublished(ctx context.Context, limit int, cursor *pagination.Cursor) ([]models.Course, error) {
	var courses []models.Course
	query := r.db.WithContext(ctx).
		Where("is_published = ?", true).
		Order("created_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if cursor != nil {
		query = query.Where(
			"created_at < ? OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}
	if err := query.Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

// Create inserts a new course.
func (r *Repository) Create(ctx context.Context, course *models.Course) (*models.Course, error) {
	if course.ID == uuid.Nil {
		course.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(course).Error; err != nil {
		return nil, err
	}
	return course, nil
}
