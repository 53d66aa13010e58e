package router

import (
	"log"

	"github.com/anonto42/go-blog/backend/internal/handlers"
	appMiddleware "github.com/anonto42/go-blog/backend/internal/middleware"
	"github.com/anonto42/go-blog/backend/internal/models"
	"github.com/anonto42/go-blog/backend/internal/repositories"
	"github.com/anonto42/go-blog/backend/pkg/storage"
	"github.com/anonto42/go-blog/backend/pkg/token"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Logger())
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	e.Use(eMiddleware.BodyLimit("16M"))
	log.Println("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, db *gorm.DB, tokenService *token.Service, uploadStore storage.Store, uploadDir string) {
	err := db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Like{},
	)
	if err != nil {
		log.Fatalf("Failed to auto migrate models: %v", err)
	}
	log.Println("Auto-migrations completed for all models.")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// Uploaded files are served directly from the upload directory.
	e.Static("/uploads", uploadDir)

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(db)
	postRepo := repositories.NewPostgresPostRepository(db)
	likeRepo := repositories.NewPostgresLikeRepository(db)

	// --- Route groups ---
	// api carries the public endpoints; everything under protected
	// requires a valid bearer token. Post listing sits on its own group so
	// anonymous callers still get the list, just without is_liked.
	api := e.Group("/api")
	optional := e.Group("/api", appMiddleware.OptionalAuth(tokenService))
	protected := e.Group("/api", appMiddleware.RequireAuth(tokenService))

	authHandler := handlers.NewAuthHandler(userRepo, tokenService)
	authHandler.RegisterAuthRoutes(api)
	log.Println("Auth routes configured.")

	userHandler := handlers.NewUserHandler(userRepo, uploadStore)
	userHandler.RegisterProfileRoutes(protected)
	log.Println("User profile routes configured.")

	postHandler := handlers.NewPostHandler(postRepo, userRepo, likeRepo)
	postHandler.RegisterPostRoutes(optional, protected)
	log.Println("Post routes configured.")

	likeHandler := handlers.NewLikeHandler(likeRepo, postRepo)
	likeHandler.RegisterLikeRoutes(api, protected)
	log.Println("Like routes configured.")

	log.Println("All routes configured.")
}
