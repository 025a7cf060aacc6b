package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/newmedev/mealreview-backend/internal/dto"
	"github.com/newmedev/mealreview-backend/internal/middleware"
	"github.com/newmedev/mealreview-backend/internal/models"
)

// UserStore is the user service surface the handler depends on.
type UserStore interface {
	UpdateSchool(userID uuid.UUID, officeCode, schoolCode, schoolName string) (*models.User, error)
}

type UserHandler struct {
	users UserStore
}

func NewUserHandler(users UserStore) *UserHandler {
	return &UserHandler{users: users}
}

// Me returns the caller's user record, already synchronized by the auth
// middleware.
func (h *UserHandler) Me(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthorized(c)
	}
	return c.JSON(user)
}

// UpdateSchool sets the caller's chosen school.
func (h *UserHandler) UpdateSchool(c *fiber.Ctx) error {
	if h.users == nil {
		return storeUnavailable(c)
	}

	user, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthorized(c)
	}

	var req dto.UpdateSchoolRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   true,
			Message: "Invalid request body",
		})
	}

	updated, err := h.users.UpdateSchool(user.ID, req.OfficeCode, req.SchoolCode, req.SchoolName)
	if err != nil {
		return reviewError(c, err)
	}
	return c.JSON(updated)
}
