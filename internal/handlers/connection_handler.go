package handlers

import (
	"errors"
	"log"
	"prismora-backend/internal/canvas"
	"prismora-backend/internal/models"
	"prismora-backend/internal/repo"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ConnectionHandler struct {
	prismionRepo   repo.PrismionRepoInterface
	connectionRepo repo.ConnectionRepoInterface
}

func NewConnectionHandler(prismionRepo repo.PrismionRepoInterface, connectionRepo repo.ConnectionRepoInterface) *ConnectionHandler {
	return &ConnectionHandler{prismionRepo: prismionRepo, connectionRepo: connectionRepo}
}

// CreateConnection links two cards of a board. Missing ports are chosen
// from the cards' relative placement.
func (h *ConnectionHandler) CreateConnection(c *fiber.Ctx) error {
	boardID, ok := parseUUIDParam(c, "boardId")
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid board ID")
	}

	var dto struct {
		FromPrismionID string      `json:"fromPrismionId"`
		ToPrismionID   string      `json:"toPrismionId"`
		FromPort       models.Port `json:"fromPort"`
		ToPort         models.Port `json:"toPort"`
		Label          string      `json:"label"`
	}
	if err := c.BodyParser(&dto); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}

	fromID, err := uuid.Parse(dto.FromPrismionID)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid fromPrismionId")
	}
	toID, err := uuid.Parse(dto.ToPrismionID)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid toPrismionId")
	}
	if fromID == toID {
		return errorJSON(c, fiber.StatusBadRequest, "Cannot connect a prismion to itself")
	}
	if (dto.FromPort != "" && !dto.FromPort.Valid()) || (dto.ToPort != "" && !dto.ToPort.Valid()) {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid port")
	}

	from, err := h.boardPrismion(boardID, fromID)
	if err != nil {
		return prismionLookupError(c, err)
	}
	to, err := h.boardPrismion(boardID, toID)
	if err != nil {
		return prismionLookupError(c, err)
	}

	existing, err := h.connectionRepo.ListConnections(boardID)
	if err != nil {
		log.Println(err, "Error listing connections")
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to create connection")
	}
	if canvas.ConnectionExists(existing, fromID.String(), toID.String()) {
		return errorJSON(c, fiber.StatusConflict, "Prismions are already connected")
	}

	ports := canvas.FindOptimalPorts(*from, *to)
	conn := &models.Connection{
		BoardID:        boardID,
		FromPrismionID: fromID,
		FromPort:       dto.FromPort,
		ToPrismionID:   toID,
		ToPort:         dto.ToPort,
		Label:          dto.Label,
	}
	if conn.FromPort == "" {
		conn.FromPort = ports.FromPort
	}
	if conn.ToPort == "" {
		conn.ToPort = ports.ToPort
	}

	if err := h.connectionRepo.CreateConnection(conn); err != nil {
		log.Println(err, "Error creating connection")
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to create connection")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"connection": conn,
	})
}

// boardPrismion loads a card and checks it belongs to the board
func (h *ConnectionHandler) boardPrismion(boardID, id uuid.UUID) (*models.Prismion, error) {
	p, err := h.prismionRepo.GetPrismion(id)
	if err != nil {
		return nil, err
	}
	if p.BoardID != boardID {
		return nil, repo.ErrNotFound
	}
	return p, nil
}

func prismionLookupError(c *fiber.Ctx, err error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return errorJSON(c, fiber.StatusNotFound, "Prismion not found")
	}
	log.Println(err, "Error getting prismion")
	return errorJSON(c, fiber.StatusInternalServerError, "Failed to get prismion")
}

// GetConnectorGeometry returns anchors, Bezier paths and bounds for every
// connection on the board
func (h *ConnectionHandler) GetConnectorGeometry(c *fiber.Ctx) error {
	boardID, ok := parseUUIDParam(c, "boardId")
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid board ID")
	}

	prismions, err := h.prismionRepo.ListPrismions(boardID)
	if err != nil {
		log.Println(err, "Error listing prismions")
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to get connectors")
	}
	connections, err := h.connectionRepo.ListConnections(boardID)
	if err != nil {
		log.Println(err, "Error listing connections")
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to get connectors")
	}

	byID := make(map[uuid.UUID]models.Prismion, len(prismions))
	for _, p := range prismions {
		byID[p.UUID] = p
	}

	connectors := make([]canvas.ConnectorGeometry, 0, len(connections))
	for _, conn := range connections {
		from, okFrom := byID[conn.FromPrismionID]
		to, okTo := byID[conn.ToPrismionID]
		if !okFrom || !okTo {
			continue
		}
		connectors = append(connectors, canvas.BuildConnectorGeometry(conn, from, to))
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"connectors": connectors,
	})
}

func (h *ConnectionHandler) DeleteConnection(c *fiber.Ctx) error {
	id, ok := parseUUIDParam(c, "connectionId")
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid connection ID")
	}

	err := h.connectionRepo.DeleteConnection(id)
	if errors.Is(err, repo.ErrNotFound) {
		return errorJSON(c, fiber.StatusNotFound, "Connection not found")
	}
	if err != nil {
		log.Println(err, "Error deleting connection")
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to delete connection")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
