package v1

import (
	"prismora-backend/internal/config"
	"prismora-backend/internal/libraries"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, cfg config.AppConfig, store libraries.FileStore) {
	registerHealth(r)

	registerBoard(r)
	registerUploads(r, store, cfg.Limits)
}
