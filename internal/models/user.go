package models

import (
	"time"

	"github.com/google/uuid"
)

// User mirrors a Supabase auth identity. The ID is the subject id issued by
// Supabase, so rows are created lazily on first authenticated request rather
// than through a local registration flow. Users are never deleted here.
type User struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email       string    `gorm:"size:255;not null;index" json:"email"`
	DisplayName string    `gorm:"size:100" json:"display_name"`
	SchoolCode  string    `gorm:"size:20" json:"school_code"`
	OfficeCode  string    `gorm:"size:10" json:"office_code"`
	SchoolName  string    `gorm:"size:100" json:"school_name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// HasSchool reports whether the user has chosen a school. Writing a review
// requires it.
func (u *User) HasSchool() bool {
	return u.SchoolCode != "" && u.OfficeCode != ""
}
