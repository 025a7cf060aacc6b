package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/newmedev/mealreview-backend/internal/dto"
	"github.com/newmedev/mealreview-backend/internal/middleware"
	"github.com/newmedev/mealreview-backend/internal/models"
	"github.com/newmedev/mealreview-backend/internal/services"
)

// ReviewStore is the review service surface the handler depends on.
type ReviewStore interface {
	Upsert(user *models.User, officeCode, schoolCode, mealDate, mealType string, rating int, content string) (*models.Review, error)
	Delete(userID, reviewID uuid.UUID) error
	List(officeCode, schoolCode, mealDate, mealType string) ([]models.Review, error)
	ListByUser(userID uuid.UUID) ([]models.Review, error)
	Stats(officeCode, schoolCode string) (*services.SchoolStats, error)
}

type ReviewHandler struct {
	reviews ReviewStore
}

func NewReviewHandler(reviews ReviewStore) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

// List returns a school's reviews, newest first. Public.
func (h *ReviewHandler) List(c *fiber.Ctx) error {
	if h.reviews == nil {
		return storeUnavailable(c)
	}

	schoolCode := c.Query("school_code")
	officeCode := c.Query("office_code")
	if schoolCode == "" || officeCode == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   true,
			Message: "school_code and office_code are required",
		})
	}

	reviews, err := h.reviews.List(officeCode, schoolCode, c.Query("meal_date"), c.Query("meal_type"))
	if err != nil {
		return reviewError(c, err)
	}
	return c.JSON(fiber.Map{"reviews": reviews})
}

// Create inserts the caller's review for a meal, or updates the existing one
// for the same (user, meal_date, meal_type).
func (h *ReviewHandler) Create(c *fiber.Ctx) error {
	if h.reviews == nil {
		return storeUnavailable(c)
	}

	user, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthorized(c)
	}

	var req dto.CreateReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   true,
			Message: "Invalid request body",
		})
	}

	review, err := h.reviews.Upsert(user, req.OfficeCode, req.SchoolCode, req.MealDate, req.MealType, req.Rating, req.Content)
	if err != nil {
		return reviewError(c, err)
	}
	return c.JSON(review)
}

// Delete removes one of the caller's reviews.
func (h *ReviewHandler) Delete(c *fiber.Ctx) error {
	if h.reviews == nil {
		return storeUnavailable(c)
	}

	user, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthorized(c)
	}

	reviewID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   true,
			Message: "Invalid review ID",
		})
	}

	if err := h.reviews.Delete(user.ID, reviewID); err != nil {
		return reviewError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Review deleted"})
}

// MyReviews returns every review the caller has written, newest first.
func (h *ReviewHandler) MyReviews(c *fiber.Ctx) error {
	if h.reviews == nil {
		return storeUnavailable(c)
	}

	user, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthorized(c)
	}

	reviews, err := h.reviews.ListByUser(user.ID)
	if err != nil {
		return reviewError(c, err)
	}
	return c.JSON(fiber.Map{"reviews": reviews})
}

// Stats returns the rating average and count for a school. Public.
func (h *ReviewHandler) Stats(c *fiber.Ctx) error {
	if h.reviews == nil {
		return storeUnavailable(c)
	}

	schoolCode := c.Query("school_code")
	officeCode := c.Query("office_code")
	if schoolCode == "" || officeCode == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   true,
			Message: "school_code and office_code are required",
		})
	}

	stats, err := h.reviews.Stats(officeCode, schoolCode)
	if err != nil {
		return reviewError(c, err)
	}
	return c.JSON(stats)
}

// reviewError maps service errors onto the status taxonomy: bad input and
// missing preconditions are 400, authorization failures 403, absent rows
// 404, anything else a masked 500.
func reviewError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	message := err.Error()

	switch {
	case errors.Is(err, services.ErrInvalidRating),
		errors.Is(err, services.ErrInvalidMealType),
		errors.Is(err, services.ErrInvalidMealDate),
		errors.Is(err, services.ErrNoSchool),
		errors.Is(err, services.ErrIncompleteSchool):
		status = fiber.StatusBadRequest
	case errors.Is(err, services.ErrWrongSchool),
		errors.Is(err, services.ErrNotOwner):
		status = fiber.StatusForbidden
	case errors.Is(err, services.ErrReviewNotFound),
		errors.Is(err, services.ErrUserNotFound):
		status = fiber.StatusNotFound
	default:
		message = "Internal server error"
	}

	return c.Status(status).JSON(dto.ErrorResponse{Error: true, Message: message})
}

func storeUnavailable(c *fiber.Ctx) error {
	return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
		Error:   true,
		Message: "Database service unavailable",
	})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error:   true,
		Message: "Unauthorized",
	})
}
