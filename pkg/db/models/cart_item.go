package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItem snapshots course title, instructor, and price at add time so a
// later catalog edit cannot change what the cart displays or charges.
// (cart_id, course_id) is unique: a course appears in a cart at most once.
type CartItem struct {
	ID               uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CartID           uuid.UUID        `gorm:"column:cart_id;type:uuid;not null;uniqueIndex:uq_cart_items_cart_course"`
	CourseID         uuid.UUID        `gorm:"column:course_id;type:uuid;not null;uniqueIndex:uq_cart_items_cart_course"`
	CourseTitle      string           `gorm:"column:course_title;not null"`
	CourseInstructor string           `gorm:"column:course_instructor;not null"`
	Price            decimal.Decimal  `gorm:"column:price;type:numeric(10,2);not null"`
	OriginalPrice    *decimal.Decimal `gorm:"column:original_price;type:numeric(10,2)"`
	AddedAt          time.Time        `gorm:"column:added_at;autoCreateTime"`
}

// NewCartItem snapshots the course into a line for the given cart.
func NewCartItem(cartID uuid.UUID, course *Course) *CartItem {
	return &CartItem{
		CartID:           cartID,
		CourseID:         course.ID,
		CourseTitle:      course.Title,
		CourseInstructor: course.InstructorName,
		Price:            course.Price,
		OriginalPrice:    course.OriginalPrice,
	}
}
