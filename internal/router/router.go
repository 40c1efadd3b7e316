package router

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/ripplr-app/backend/internal/handlers"
	"github.com/ripplr-app/backend/internal/middleware"
	"github.com/ripplr-app/backend/internal/repositories"
	"github.com/ripplr-app/backend/pkg/storage"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Logger())
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, db *mongo.Database, files storage.FileStore, logger *zap.Logger, jwtSecret string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := repositories.EnsureIndexes(ctx, db); err != nil {
		return err
	}
	logger.Info("database indexes ensured")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	userRepo := repositories.NewMongoUserRepository(db)
	postRepo := repositories.NewMongoPostRepository(db)
	notificationRepo := repositories.NewMongoNotificationRepository(db)

	authMiddleware := middleware.JWTAuth(jwtSecret)

	// --- Auth routes (signup/login open, me behind auth) ---
	authGroup := e.Group("/api/auth")
	authHandler := handlers.NewAuthHandler(userRepo, jwtSecret)
	authHandler.RegisterAuthRoutes(authGroup, authMiddleware)

	// --- Public post reads ---
	postHandler := handlers.NewPostHandler(postRepo, userRepo, files)
	postHandler.RegisterPublicPostRoutes(e)

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api")
	api.Use(authMiddleware)

	userHandler := handlers.NewUserHandler(userRepo, files)
	userHandler.RegisterUserRoutes(api)

	followHandler := handlers.NewFollowHandler(userRepo, notificationRepo, logger)
	followHandler.RegisterFollowRoutes(api)

	postHandler.RegisterPostRoutes(api)

	engagementHandler := handlers.NewEngagementHandler(postRepo, userRepo, notificationRepo, logger)
	engagementHandler.RegisterEngagementRoutes(api)

	notificationHandler := handlers.NewNotificationHandler(notificationRepo, userRepo, postRepo)
	notificationHandler.RegisterNotificationRoutes(api)

	logger.Info("all routes configured")
	return nil
}
