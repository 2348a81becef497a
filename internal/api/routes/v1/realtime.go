package v1

import (
	"prismora-backend/internal/libraries"

	"github.com/gofiber/fiber/v2"
)

var hub *libraries.Hub

func init() {
	// Initialize the Hub once
	hub = libraries.NewHub()
	// Start the Hub in a goroutine
	go hub.Run()
}

// RegisterRealtime mounts the board websocket.
func RegisterRealtime(app fiber.Router) {
	app.Get("/ws/boards/:boardId", libraries.WebSocketHandler(hub))
}
