package handlers

import (
	"log/slog"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2"
	"github.com/newmedev/mealreview-backend/internal/dto"
	"github.com/newmedev/mealreview-backend/internal/neis"
)

// MealProvider is the slice of the NEIS client the read-only handlers need.
type MealProvider interface {
	SearchSchools(name string) ([]neis.Row, error)
	FetchMeals(officeCode, schoolCode, date, startDate, endDate string) ([]neis.Row, error)
}

type SchoolHandler struct {
	provider MealProvider
}

func NewSchoolHandler(provider MealProvider) *SchoolHandler {
	return &SchoolHandler{provider: provider}
}

// Search looks up schools by name. Upstream failures degrade to an empty
// list so browsing stays usable when the provider is flaky.
func (h *SchoolHandler) Search(c *fiber.Ctx) error {
	name := c.Query("name")
	if utf8.RuneCountInString(name) < 2 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   true,
			Message: "name must be at least 2 characters",
		})
	}

	schools, err := h.provider.SearchSchools(name)
	if err != nil {
		slog.Error("school search failed", "action", "search_schools", "error", err.Error())
		schools = []neis.Row{}
	}

	return c.JSON(fiber.Map{"schools": schools})
}
