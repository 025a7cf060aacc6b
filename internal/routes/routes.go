package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/newmedev/mealreview-backend/internal/handlers"
	"github.com/newmedev/mealreview-backend/internal/middleware"
)

func Setup(
	app *fiber.App,
	authenticator middleware.Authenticator,
	healthHandler *handlers.HealthHandler,
	schoolHandler *handlers.SchoolHandler,
	mealHandler *handlers.MealHandler,
	reviewHandler *handlers.ReviewHandler,
	userHandler *handlers.UserHandler,
) {
	app.Get("/", healthHandler.Root)

	api := app.Group("/api")
	api.Get("/health", healthHandler.Check)

	// Public browse paths
	api.Get("/schools", schoolHandler.Search)
	api.Get("/meals", mealHandler.GetMeals)
	api.Get("/reviews", reviewHandler.List)
	api.Get("/stats", reviewHandler.Stats)

	// Write paths and per-user reads require a Supabase bearer token
	protected := middleware.Protected(authenticator)
	api.Post("/reviews", protected, reviewHandler.Create)
	api.Delete("/reviews/:id", protected, reviewHandler.Delete)
	api.Get("/auth/me", protected, userHandler.Me)
	api.Put("/user/school", protected, userHandler.UpdateSchool)
	api.Get("/user/reviews", protected, reviewHandler.MyReviews)
}
