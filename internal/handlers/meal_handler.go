package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/newmedev/mealreview-backend/internal/dto"
	"github.com/newmedev/mealreview-backend/internal/neis"
)

type MealHandler struct {
	provider MealProvider
}

func NewMealHandler(provider MealProvider) *MealHandler {
	return &MealHandler{provider: provider}
}

// GetMeals fetches a school's meals for a single date or a date range and
// attaches the parsed dish list, nutrition map and calorie value to each
// provider row.
func (h *MealHandler) GetMeals(c *fiber.Ctx) error {
	schoolCode := c.Query("school_code")
	officeCode := c.Query("office_code")
	date := c.Query("date")
	startDate := c.Query("start_date")
	endDate := c.Query("end_date")

	if schoolCode == "" || officeCode == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   true,
			Message: "school_code and office_code are required",
		})
	}
	single := date != ""
	ranged := startDate != "" && endDate != ""
	if single == ranged {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   true,
			Message: "provide either date or start_date and end_date",
		})
	}

	meals, err := h.provider.FetchMeals(officeCode, schoolCode, date, startDate, endDate)
	if err != nil {
		slog.Error("meal fetch failed", "action", "get_meals", "error", err.Error())
		meals = []neis.Row{}
	}

	for _, meal := range meals {
		meal["parsed_dishes"] = neis.ParseDishes(stringField(meal, "DDISH_NM"))
		meal["parsed_nutrition"] = neis.ParseNutrition(stringField(meal, "NTR_INFO"))
		meal["calories"] = neis.ParseCalories(stringField(meal, "CAL_INFO"))
	}

	return c.JSON(fiber.Map{"meals": meals})
}

func stringField(row neis.Row, key string) string {
	s, _ := row[key].(string)
	return s
}
