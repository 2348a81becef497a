package main

import (
	"context"
	"io"
	"log"
	"prismora-backend/internal/api"
	"prismora-backend/internal/api/routes"
	"prismora-backend/internal/config"
	"prismora-backend/internal/libraries"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}
	cfg := config.Load()

	// Connect to database
	if err := config.ConnectDB(); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer config.CloseDB()

	// Run migrations
	if err := config.MigrateAllModels(cfg.Migrate); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	store, err := libraries.NewFileStore(context.Background(), cfg.Storage)
	if err != nil {
		log.Fatal("Failed to init file storage:", err)
	}
	if c, ok := store.(io.Closer); ok {
		defer c.Close()
	}

	// Create and configure Fiber app
	app := api.NewServer(cfg)

	// Register routes
	routes.Register(app, cfg, store)

	// Start server
	if err := api.StartServer(app, cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
