package v1

import (
	"prismora-backend/internal/config"

	"github.com/gofiber/fiber/v2"
)

func registerHealth(r fiber.Router) {
	r.Get("/health", func(c *fiber.Ctx) error {
		status := "ok"
		if config.DB != nil {
			if sqlDB, err := config.DB.DB(); err != nil || sqlDB.PingContext(c.UserContext()) != nil {
				status = "degraded"
			}
		}
		return c.JSON(fiber.Map{
			"status": status,
		})
	})
}
