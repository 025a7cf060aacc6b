package services

import (
	"errors"
	"fmt"
	"math"
	"regexp"

	"github.com/google/uuid"
	"github.com/newmedev/mealreview-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrInvalidRating   = errors.New("rating must be between 1 and 5")
	ErrInvalidMealType = errors.New("meal_type must be one of 조식, 중식, 석식")
	ErrInvalidMealDate = errors.New("meal_date must be YYYYMMDD")
	ErrNoSchool        = errors.New("no school set for user")
	ErrWrongSchool     = errors.New("review school does not match your school")
	ErrReviewNotFound  = errors.New("review not found")
	ErrNotOwner        = errors.New("review belongs to another user")
)

var mealDateRE = regexp.MustCompile(`^\d{8}$`)

// ReviewService handles review CRUD and the authorization rules on the
// write path.
type ReviewService struct {
	db *gorm.DB
}

func NewReviewService(db *gorm.DB) *ReviewService {
	return &ReviewService{db: db}
}

// Upsert creates the acting user's review for a meal, or updates it if one
// already exists for (user, meal_date, meal_type). The conflict target is
// the unique index on those columns, so two concurrent first submissions
// still end up as a single row. The user must have a school set and the
// review must target that school.
func (s *ReviewService) Upsert(user *models.User, officeCode, schoolCode, mealDate, mealType string, rating int, content string) (*models.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}
	if !models.ValidMealType(mealType) {
		return nil, ErrInvalidMealType
	}
	if !mealDateRE.MatchString(mealDate) {
		return nil, ErrInvalidMealDate
	}
	if !user.HasSchool() {
		return nil, ErrNoSchool
	}
	if officeCode != user.OfficeCode || schoolCode != user.SchoolCode {
		return nil, ErrWrongSchool
	}

	review := models.Review{
		ID:         uuid.New(),
		UserID:     user.ID,
		OfficeCode: officeCode,
		SchoolCode: schoolCode,
		MealDate:   mealDate,
		MealType:   mealType,
		Rating:     rating,
		Content:    content,
	}

	err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "user_id"}, {Name: "meal_date"}, {Name: "meal_type"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"rating", "content", "office_code", "school_code", "updated_at",
		}),
	}).Create(&review).Error
	if err != nil {
		return nil, fmt.Errorf("failed to save review: %w", err)
	}

	// Re-read so the update path returns the surviving row, not the
	// discarded insert candidate.
	var stored models.Review
	err = s.db.First(&stored, "user_id = ? AND meal_date = ? AND meal_type = ?",
		user.ID, mealDate, mealType).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load saved review: %w", err)
	}
	return &stored, nil
}

// Delete removes a review. Only the owner may delete it.
func (s *ReviewService) Delete(userID, reviewID uuid.UUID) error {
	var review models.Review
	if err := s.db.First(&review, "id = ?", reviewID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReviewNotFound
		}
		return fmt.Errorf("failed to load review: %w", err)
	}
	if review.UserID != userID {
		return ErrNotOwner
	}

	if err := s.db.Delete(&models.Review{}, "id = ?", reviewID).Error; err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	return nil
}

// List returns a school's reviews, newest first, optionally narrowed to one
// meal.
func (s *ReviewService) List(officeCode, schoolCode, mealDate, mealType string) ([]models.Review, error) {
	query := s.db.Where("office_code = ? AND school_code = ?", officeCode, schoolCode)
	if mealDate != "" {
		query = query.Where("meal_date = ?", mealDate)
	}
	if mealType != "" {
		query = query.Where("meal_type = ?", mealType)
	}

	var reviews []models.Review
	if err := query.Order("created_at DESC").Find(&reviews).Error; err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}

// ListByUser returns every review the user has written, newest first.
func (s *ReviewService) ListByUser(userID uuid.UUID) ([]models.Review, error) {
	var reviews []models.Review
	err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list user reviews: %w", err)
	}
	return reviews, nil
}

// SchoolStats is the rating aggregate for one school.
type SchoolStats struct {
	AverageRating float64 `json:"average_rating"`
	ReviewCount   int64   `json:"review_count"`
}

// Stats averages all ratings for a school, rounded to 2 decimals. A school
// with no reviews yields zero/zero rather than a division by zero.
func (s *ReviewService) Stats(officeCode, schoolCode string) (*SchoolStats, error) {
	var row struct {
		Avg   float64
		Count int64
	}
	err := s.db.Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS count").
		Where("office_code = ? AND school_code = ?", officeCode, schoolCode).
		Scan(&row).Error
	if err != nil {
		return nil, fmt.Errorf("failed to compute stats: %w", err)
	}

	return &SchoolStats{
		AverageRating: math.Round(row.Avg*100) / 100,
		ReviewCount:   row.Count,
	}, nil
}
