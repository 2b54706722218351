package main

import (
	"log"
	"time"

	"learnspace/backend/cache"
	"learnspace/backend/config"
	"learnspace/backend/hub"
	"learnspace/backend/middleware"
	"learnspace/backend/routes"
	"learnspace/backend/security"
	"learnspace/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Initialize database
	db, err := utils.InitDB(cfg)
	if err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}

	// Initialize logger
	logger := utils.InitLogger()

	// Shared in-memory cache
	store := cache.NewMemoryStore()

	// Brute-force protection with periodic cleanup
	protector := security.NewLoginProtector(cfg, logger)
	stop := make(chan struct{})
	defer close(stop)
	protector.StartSweeper(time.Hour, stop)

	// Realtime hub
	h := hub.New(logger)

	// Create Fiber app
	app := fiber.New()

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(middleware.LoggingMiddleware(logger))
	app.Use(middleware.GlobalRateLimiter())

	// Setup routes
	routes.SetupRoutes(app, db, cfg, logger, store, protector, h)

	// Start server
	log.Fatal(app.Listen(":" + cfg.ServerPort))
}
