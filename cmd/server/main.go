package main

import (
	"log"

	"github.com/labstack/echo/v4"
	"github.com/ripplr-app/backend/internal/router"
	"github.com/ripplr-app/backend/internal/validators"
	"github.com/ripplr-app/backend/pkg/config"
	"github.com/ripplr-app/backend/pkg/logger"
	"github.com/ripplr-app/backend/pkg/storage"
)

func main() {
	// Load configuration
	cfg := config.Load()

	appLogger, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()

	// Initialize database connection
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.CloseDB()

	// File storage for uploaded media
	files, err := storage.NewLocalStore(cfg.UploadDir)
	if err != nil {
		log.Fatalf("Failed to initialize file storage: %v", err)
	}

	// Create Echo instance
	e := echo.New()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Validator
	e.Validator = validators.NewValidator()

	// Static serving of stored uploads
	e.Static("/uploads", cfg.UploadDir)

	// Setup routes and dependencies
	if err := router.SetupRoutes(e, db.Database, files, appLogger, cfg.JWTSecret); err != nil {
		log.Fatalf("Failed to setup routes: %v", err)
	}

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
