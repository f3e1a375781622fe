package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/robfig/cron/v3"

	"learnloom/backend/chat"
	"learnloom/backend/config"
	"learnloom/backend/generation"
	"learnloom/backend/learn"
	"learnloom/backend/middleware"
	"learnloom/backend/routes"
	"learnloom/backend/store"
	"learnloom/backend/utils"
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

	// Build the entity store and load the mirror
	entityStore := store.New(db, logger)
	if err := entityStore.Load(); err != nil {
		log.Fatalf("Error loading entity store: %v", err)
	}
	defer entityStore.Close()

	// The generation backend is plugged in by the host application;
	// until then calls fail and get recorded per course.
	chats := chat.NewStore(db)
	engine := learn.NewEngine(entityStore, generation.Unavailable{}, chats, logger, cfg.GenerationModel)

	// Periodic retention sweep for the suggestion feed
	sweeper := cron.New()
	if _, err := sweeper.AddFunc(cfg.CleanupSchedule, func() {
		if removed := engine.CleanupSuggested(); removed > 0 {
			logger.Printf("retention sweep removed %d suggested outlines", removed)
		}
	}); err != nil {
		log.Fatalf("Error scheduling retention sweep: %v", err)
	}
	sweeper.Start()
	defer sweeper.Stop()

	// Create Fiber app
	app := fiber.New()

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(middleware.LoggingMiddleware(logger))

	// Setup routes
	routes.SetupRoutes(app, engine, chats, logger)

	// Start server
	log.Fatal(app.Listen(":" + cfg.ServerPort))
}
