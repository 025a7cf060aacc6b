package models

import (
	"time"

	"github.com/google/uuid"
)

// Meal type values as the NEIS API reports them (breakfast, lunch, dinner).
const (
	MealTypeBreakfast = "조식"
	MealTypeLunch     = "중식"
	MealTypeDinner    = "석식"
)

// ValidMealType reports whether t is one of the provider's meal type names.
func ValidMealType(t string) bool {
	return t == MealTypeBreakfast || t == MealTypeLunch || t == MealTypeDinner
}

// Review is a user's rating of one meal. The composite unique index keeps at
// most one review per (user, meal_date, meal_type); concurrent first
// submissions collapse into a single row via ON CONFLICT upsert.
type Review struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_reviews_user_meal" json:"user_id"`
	OfficeCode string    `gorm:"size:10;not null;index:idx_reviews_school" json:"office_code"`
	SchoolCode string    `gorm:"size:20;not null;index:idx_reviews_school" json:"school_code"`
	MealDate   string    `gorm:"size:8;not null;uniqueIndex:idx_reviews_user_meal" json:"meal_date"`
	MealType   string    `gorm:"size:10;not null;uniqueIndex:idx_reviews_user_meal" json:"meal_type"`
	Rating     int       `gorm:"not null" json:"rating"`
	Content    string    `gorm:"type:text" json:"content"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
