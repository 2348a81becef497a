package v1

import (
	"prismora-backend/internal/config"
	"prismora-backend/internal/handlers"
	"prismora-backend/internal/repo"

	"github.com/gofiber/fiber/v2"
)

func registerBoard(r fiber.Router) {
	// Initialize repositories and handlers
	boardRepo := repo.NewBoardRepository(config.DB)
	prismionRepo := repo.NewPrismionRepository(config.DB)
	connectionRepo := repo.NewConnectionRepository(config.DB)
	participantRepo := repo.NewParticipantRepository(config.DB)

	boardHandler := handlers.NewBoardHandler(boardRepo, prismionRepo, connectionRepo, participantRepo, hub)
	prismionHandler := handlers.NewPrismionHandler(boardRepo, prismionRepo)
	connectionHandler := handlers.NewConnectionHandler(prismionRepo, connectionRepo)

	// Boards
	r.Post("/boards", boardHandler.CreateBoard)
	r.Get("/boards/share/:shareId", boardHandler.GetBoardByShareID)
	r.Patch("/boards/:boardId", boardHandler.UpdateBoard)
	r.Delete("/boards/:boardId", boardHandler.DeleteBoard)

	// Participants
	r.Post("/boards/:boardId/join", boardHandler.JoinBoard)
	r.Put("/boards/:boardId/participants/:participantId/presence", boardHandler.UpdatePresence)

	// Prismions
	r.Post("/boards/:boardId/prismions", prismionHandler.CreatePrismion)
	r.Post("/boards/:boardId/prismions/resolve", prismionHandler.ResolveOverlaps)
	r.Patch("/prismions/:prismionId", prismionHandler.UpdatePrismion)
	r.Delete("/prismions/:prismionId", prismionHandler.DeletePrismion)

	// Connections
	r.Post("/boards/:boardId/connections", connectionHandler.CreateConnection)
	r.Get("/boards/:boardId/connections/geometry", connectionHandler.GetConnectorGeometry)
	r.Delete("/connections/:connectionId", connectionHandler.DeleteConnection)
}
