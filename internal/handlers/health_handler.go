package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/newmedev/mealreview-backend/internal/database"
	"github.com/newmedev/mealreview-backend/internal/dto"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db *gorm.DB
}

func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// Root is the plain status message at /.
func (h *HealthHandler) Root(c *fiber.Ctx) error {
	return c.JSON(dto.MessageResponse{Message: "School Meal Review Platform API is running"})
}

// Check reports process liveness and store reachability. The server stays
// healthy with an unconfigured store; only the store-backed endpoints
// degrade.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	dbStatus := "ok"
	if h.db == nil {
		dbStatus = "unconfigured"
	} else if err := database.Ping(h.db); err != nil {
		dbStatus = "unhealthy: " + err.Error()
	}

	return c.JSON(dto.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DB:        dbStatus,
	})
}
