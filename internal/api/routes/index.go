package routes

import (
	"prismora-backend/internal/api/routes/v1"
	"prismora-backend/internal/config"
	"prismora-backend/internal/libraries"

	"github.com/gofiber/fiber/v2"
)

func Register(app *fiber.App, cfg config.AppConfig, store libraries.FileStore) {
	// realtime lives outside /api so the /ws upgrade middleware applies
	v1.RegisterRealtime(app)

	// API v1 group
	api := app.Group("/api")
	v1Group := api.Group("/v1")

	// Register v1 routes
	v1.RegisterRoutes(v1Group, cfg, store)
}
