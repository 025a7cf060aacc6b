package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/newmedev/mealreview-backend/internal/dto"
	"github.com/newmedev/mealreview-backend/internal/models"
)

// Authenticator resolves an Authorization header value into a local user.
type Authenticator interface {
	Authenticate(authorization string) (*models.User, error)
}

const userKey = "current_user"

// Protected gates a route on a valid bearer credential and stores the
// resolved user in context locals. A nil authenticator means the identity
// provider or the store is not configured, and the route answers 503.
func Protected(auth Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if auth == nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Error:   true,
				Message: "Database service unavailable",
			})
		}

		user, err := auth.Authenticate(c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error:   true,
				Message: "Unauthorized: invalid or missing token",
			})
		}

		c.Locals(userKey, user)
		return c.Next()
	}
}

// CurrentUser extracts the user stored by Protected.
func CurrentUser(c *fiber.Ctx) (*models.User, bool) {
	user, ok := c.Locals(userKey).(*models.User)
	return user, ok
}
