package v1

import (
	"prismora-backend/internal/config"
	"prismora-backend/internal/handlers"
	"prismora-backend/internal/libraries"

	"github.com/gofiber/fiber/v2"
)

func registerUploads(r fiber.Router, store libraries.FileStore, limits config.UploadLimits) {
	uploadHandler := handlers.NewUploadHandler(store, limits)

	r.Post("/uploads", uploadHandler.Upload)
	r.Post("/uploads/image", uploadHandler.UploadImage)
	r.Post("/uploads/video", uploadHandler.UploadVideo)
}
