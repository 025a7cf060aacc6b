package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/newmedev/mealreview-backend/internal/models"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrIncompleteSchool = errors.New("school_code, office_code and school_name are required")
)

// UserService manages the mutable parts of a user record.
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// UpdateSchool sets or replaces the user's chosen school and returns the
// updated record.
func (s *UserService) UpdateSchool(userID uuid.UUID, officeCode, schoolCode, schoolName string) (*models.User, error) {
	if officeCode == "" || schoolCode == "" || schoolName == "" {
		return nil, ErrIncompleteSchool
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	err := s.db.Model(&user).Updates(map[string]interface{}{
		"office_code": officeCode,
		"school_code": schoolCode,
		"school_name": schoolName,
	}).Error
	if err != nil {
		return nil, fmt.Errorf("failed to update school: %w", err)
	}

	user.OfficeCode = officeCode
	user.SchoolCode = schoolCode
	user.SchoolName = schoolName
	return &user, nil
}
