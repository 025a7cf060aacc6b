package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/newmedev/mealreview-backend/internal/config"
	"github.com/newmedev/mealreview-backend/internal/database"
	"github.com/newmedev/mealreview-backend/internal/dto"
	"github.com/newmedev/mealreview-backend/internal/handlers"
	"github.com/newmedev/mealreview-backend/internal/logging"
	"github.com/newmedev/mealreview-backend/internal/middleware"
	"github.com/newmedev/mealreview-backend/internal/neis"
	"github.com/newmedev/mealreview-backend/internal/routes"
	"github.com/newmedev/mealreview-backend/internal/services"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	// Structured logging (JSON to stdout)
	logging.Setup()

	cfg := config.Load()

	// Database. A missing or failing store degrades the store-backed
	// endpoints to 503 instead of refusing to start; school and meal
	// browsing keeps working either way.
	var db *gorm.DB
	var storeLog *logging.StoreHandler
	cleanupDone := make(chan struct{})

	if cfg.StoreConfigured() {
		var err error
		db, err = database.Connect(cfg)
		if err != nil {
			slog.Error("database connection failed, store-backed endpoints disabled", "error", err)
			db = nil
		} else if err := database.Migrate(db); err != nil {
			slog.Error("migration failed", "error", err)
			os.Exit(1)
		} else {
			// Mirror ERROR+ logs into system_logs (30-day retention)
			storeLog = logging.EnableStoreMirror(db)
			logging.StartCleanup(db, cleanupDone)
		}
	} else {
		slog.Warn("SUPABASE_DB_URL/DB_HOST not set, store-backed endpoints will answer 503")
	}

	// Sentry error tracking
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              dsn,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      os.Getenv("APP_ENV"),
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// NEIS upstream client
	neisClient := neis.NewClient(cfg.NEISBaseURL, cfg.NEISAPIKey, cfg.NEISTimeout)
	if cfg.NEISAPIKey == "" || cfg.NEISAPIKey == "sample" {
		slog.Warn("NEIS_API_KEY not set, using unauthenticated sample access")
	}

	// Services and handlers. Store-backed pieces stay nil without a DB and
	// their endpoints answer 503.
	var authenticator middleware.Authenticator
	var reviewStore handlers.ReviewStore
	var userStore handlers.UserStore

	if db != nil {
		if verifier := services.NewTokenVerifier(cfg); verifier != nil {
			authenticator = services.NewIdentityService(db, verifier)
		} else {
			slog.Warn("SUPABASE_JWT_SECRET/SUPABASE_KEY not set, authenticated endpoints will answer 503")
		}
		reviewStore = services.NewReviewService(db)
		userStore = services.NewUserService(db)
	}

	healthHandler := handlers.NewHealthHandler(db)
	schoolHandler := handlers.NewSchoolHandler(neisClient)
	mealHandler := handlers.NewMealHandler(neisClient)
	reviewHandler := handlers.NewReviewHandler(reviewStore)
	userHandler := handlers.NewUserHandler(userStore)

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))

	routes.Setup(app, authenticator, healthHandler, schoolHandler, mealHandler, reviewHandler, userHandler)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	close(cleanupDone)
	if storeLog != nil {
		storeLog.Stop()
	}
	sentry.Flush(2 * time.Second)

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	if db != nil {
		if sqlDB, err := db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				slog.Error("database close error", "error", err)
			}
		}
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(dto.ErrorResponse{
		Error:   true,
		Message: message,
	})
}
