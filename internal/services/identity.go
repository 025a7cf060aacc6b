package services

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/newmedev/mealreview-backend/internal/models"
	"gorm.io/gorm"
)

// ErrUnauthorized covers every authentication failure: missing or malformed
// credential, failed verification, and unexpected errors during user sync.
// Callers get a uniform 401 with no finer detail.
var ErrUnauthorized = errors.New("invalid or missing credential")

// IdentityService resolves bearer tokens into local user records, creating
// the record lazily on first authenticated access.
type IdentityService struct {
	db       *gorm.DB
	verifier TokenVerifier
}

func NewIdentityService(db *gorm.DB, verifier TokenVerifier) *IdentityService {
	return &IdentityService{db: db, verifier: verifier}
}

// Authenticate validates an Authorization header value and returns the
// synchronized local user. The credential is checked before any store
// access.
func (s *IdentityService) Authenticate(authorization string) (*models.User, error) {
	token, ok := strings.CutPrefix(authorization, "Bearer ")
	if !ok || token == "" {
		return nil, ErrUnauthorized
	}

	ident, err := s.verifier.Verify(token)
	if err != nil {
		slog.Error("token verification failed", "action", "authenticate", "error", err.Error())
		return nil, ErrUnauthorized
	}

	user, err := s.EnsureUser(ident)
	if err != nil {
		slog.Error("user sync failed", "action", "authenticate", "user_id", ident.Subject, "error", err.Error())
		return nil, ErrUnauthorized
	}
	return user, nil
}

// EnsureUser looks up the local user by the provider-issued subject id,
// synthesizing the record from profile claims when absent. Idempotent.
func (s *IdentityService) EnsureUser(ident *Identity) (*models.User, error) {
	id, err := uuid.Parse(ident.Subject)
	if err != nil {
		return nil, fmt.Errorf("invalid subject id %q: %w", ident.Subject, err)
	}

	var user models.User
	err = s.db.First(&user, "id = ?", id).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("user lookup failed: %w", err)
	}

	user = models.User{
		ID:          id,
		Email:       ident.Email,
		DisplayName: displayName(ident),
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &user, nil
}

// displayName falls back through the provider's profile fields, ending at
// the local part of the email.
func displayName(ident *Identity) string {
	if ident.FullName != "" {
		return ident.FullName
	}
	if ident.Name != "" {
		return ident.Name
	}
	if ident.Email != "" {
		return strings.Split(ident.Email, "@")[0]
	}
	return ""
}
