package main

import (
	"log"
	"time"

	"github.com/anonto42/go-blog/backend/internal/router"
	"github.com/anonto42/go-blog/backend/pkg/config"
	"github.com/anonto42/go-blog/backend/pkg/storage"
	"github.com/anonto42/go-blog/backend/pkg/token"
	"github.com/anonto42/go-blog/backend/validators"
	"github.com/labstack/echo/v4"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database connection
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.CloseDB() // Ensure database connection is closed when main exits

	// Initialize upload storage
	uploadStore, err := storage.NewFilesystemStore(cfg.UploadDir)
	if err != nil {
		log.Fatalf("Failed to initialize upload storage: %v", err)
	}

	// Tokens expire 24 hours after issuance.
	tokenService := token.NewService(cfg.JWTSecret, 24*time.Hour)

	// Create Echo instance
	e := echo.New()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Setup routes and dependencies
	router.SetupRoutes(e, db.Postgres, tokenService, uploadStore, cfg.UploadDir)

	// Validator
	e.Validator = validators.NewValidator()

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
