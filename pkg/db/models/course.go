package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Course is the catalog entity carts purchase. The cart engine only reads
// it; catalog management lives elsewhere.
type Course struct {
	ID             uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title          string           `gorm:"column:title;not null"`
	InstructorName string           `gorm:"column:instructor_name;not null"`
	Price          decimal.Decimal  `gorm:"column:price;type:numeric(10,2);not null"`
	OriginalPrice  *decimal.Decimal `gorm:"column:original_price;type:numeric(10,2)"`
	IsPublished    bool             `gorm:"column:is_published;not null;default:false"`
	CreatedAt      time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
