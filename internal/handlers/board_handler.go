package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"prismora-backend/internal/models"
	"prismora-backend/internal/repo"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const defaultBoardTitle = "Untitled board"

// PresenceNotifier is told about presence updates that arrive over REST so
// realtime clients see them too.
type PresenceNotifier interface {
	NotifyPresence(p models.Participant)
}

// for simple crud operations service layer is not required
type BoardHandler struct {
	repo            repo.BoardRepoInterface
	prismionRepo    repo.PrismionRepoInterface
	connectionRepo  repo.ConnectionRepoInterface
	participantRepo repo.ParticipantRepoInterface
	notifier        PresenceNotifier
}

func NewBoardHandler(
	boardRepo repo.BoardRepoInterface,
	prismionRepo repo.PrismionRepoInterface,
	connectionRepo repo.ConnectionRepoInterface,
	participantRepo repo.ParticipantRepoInterface,
	notifier PresenceNotifier,
) *BoardHandler {
	return &BoardHandler{
		repo:            boardRepo,
		prismionRepo:    prismionRepo,
		connectionRepo:  connectionRepo,
		participantRepo: participantRepo,
		notifier:        notifier,
	}
}

type boardDTO struct {
	Title          *string         `json:"title"`
	Description    *string         `json:"description"`
	IsPublic       *bool           `json:"isPublic"`
	CanvasSettings json.RawMessage `json:"canvasSettings"`
}

func errorJSON(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": msg,
	})
}

// boardLookupError answers a failed board lookup: 404 when missing, 500 otherwise
func boardLookupError(c *fiber.Ctx, err error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return errorJSON(c, fiber.StatusNotFound, "Board not found")
	}
	log.Println(err, "Error getting board")
	return errorJSON(c, fiber.StatusInternalServerError, "Failed to get board")
}

func parseUUIDParam(c *fiber.Ctx, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(name))
	return id, err == nil
}

// CreateBoard creates a board
func (h *BoardHandler) CreateBoard(c *fiber.Ctx) error {
	var dto boardDTO
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&dto); err != nil {
			return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
		}
	}

	board := &models.Board{Title: defaultBoardTitle}
	if dto.Title != nil && strings.TrimSpace(*dto.Title) != "" {
		board.Title = strings.TrimSpace(*dto.Title)
	}
	if dto.Description != nil {
		board.Description = *dto.Description
	}
	if dto.IsPublic != nil {
		board.IsPublic = *dto.IsPublic
	}
	if len(dto.CanvasSettings) > 0 {
		board.CanvasSettings = datatypes.JSON(dto.CanvasSettings)
	}

	if _, err := h.repo.CreateBoard(board); err != nil {
		log.Println(err, "Error creating board")
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to create board")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"board": board,
	})
}

// GetBoardByShareID returns the board and everything on it
func (h *BoardHandler) GetBoardByShareID(c *fiber.Ctx) error {
	shareID, ok := parseUUIDParam(c, "shareId")
	if !ok {
		return errorJSON(c, fiber.StatusNotFound, "Board not found")
	}

	board, err := h.repo.GetBoardByShareID(shareID)
	if errors.Is(err, repo.ErrNotFound) {
		return errorJSON(c, fiber.StatusNotFound, "Board not found")
	}
	if err != nil {
		log.Println(err, "Error getting board")
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to get board")
	}

	prismions, err := h.prismionRepo.ListPrismions(board.UUID)
	if err != nil {
		log.Println(err, "Error listing prismions")
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to get board")
	}
	connections, err := h.connectionRepo.ListConnections(board.UUID)
	if err != nil {
		log.Println(err, "Error listing connections")
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to get board")
	}
	participants, err := h.participantRepo.ListParticipants(board.UUID)
	if err != nil {
		log.Println(err, "Error listing participants")
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to get board")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"board":        board,
		"prismions":    nonNil(prismions),
		"connections":  nonNil(connections),
		"participants": nonNil(participants),
	})
}

func nonNil[T any](list []T) []T {
	if list == nil {
		return []T{}
	}
	return list
}

// UpdateBoard applies a partial update
func (h *BoardHandler) UpdateBoard(c *fiber.Ctx) error {
	boardID, ok := parseUUIDParam(c, "boardId")
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid board ID")
	}

	var dto boardDTO
	if err := c.BodyParser(&dto); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}

	updates := map[string]interface{}{}
	if dto.Title != nil {
		updates["title"] = *dto.Title
	}
	if dto.Description != nil {
		updates["description"] = *dto.Description
	}
	if dto.IsPublic != nil {
		updates["is_public"] = *dto.IsPublic
	}
	if len(dto.CanvasSettings) > 0 {
		updates["canvas_settings"] = datatypes.JSON(dto.CanvasSettings)
	}

	board, err := h.repo.UpdateBoard(boardID, updates)
	if errors.Is(err, repo.ErrNotFound) {
		return errorJSON(c, fiber.StatusNotFound, "Board not found")
	}
	if err != nil {
		log.Println(err, "Error updating board")
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to update board")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"board": board,
	})
}

// DeleteBoard removes the board and everything on it
func (h *BoardHandler) DeleteBoard(c *fiber.Ctx) error {
	boardID, ok := parseUUIDParam(c, "boardId")
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid board ID")
	}

	err := h.repo.DeleteBoard(boardID)
	if errors.Is(err, repo.ErrNotFound) {
		return errorJSON(c, fiber.StatusNotFound, "Board not found")
	}
	if err != nil {
		log.Println(err, "Error deleting board")
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to delete board")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// JoinBoard registers the caller as a participant
func (h *BoardHandler) JoinBoard(c *fiber.Ctx) error {
	boardID, ok := parseUUIDParam(c, "boardId")
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid board ID")
	}

	var dto struct {
		UserName string `json:"userName"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&dto); err != nil {
			return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
		}
	}

	if _, err := h.repo.GetBoardByID(boardID); err != nil {
		return boardLookupError(c, err)
	}

	name := strings.TrimSpace(dto.UserName)
	if name == "" {
		name = "Guest"
	}
	id := uuid.New()
	participant := &models.Participant{
		UUID:       id,
		BoardID:    boardID,
		UserName:   name,
		ColorToken: models.ColorTokenFor(id),
		IsActive:   true,
	}
	if err := h.participantRepo.CreateParticipant(participant); err != nil {
		log.Println(err, "Error creating participant")
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to join board")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"participant": participant,
	})
}

// UpdatePresence stores a cursor/activity update
func (h *BoardHandler) UpdatePresence(c *fiber.Ctx) error {
	boardID, ok := parseUUIDParam(c, "boardId")
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid board ID")
	}
	participantID, ok := parseUUIDParam(c, "participantId")
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid participant ID")
	}

	var dto struct {
		CursorX  *float64 `json:"cursorX"`
		CursorY  *float64 `json:"cursorY"`
		IsActive *bool    `json:"isActive"`
	}
	if err := c.BodyParser(&dto); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}

	updates := map[string]interface{}{}
	if dto.CursorX != nil {
		updates["cursor_x"] = *dto.CursorX
	}
	if dto.CursorY != nil {
		updates["cursor_y"] = *dto.CursorY
	}
	if dto.IsActive != nil {
		updates["is_active"] = *dto.IsActive
	}

	participant, err := h.participantRepo.UpdatePresence(boardID, participantID, updates)
	if errors.Is(err, repo.ErrNotFound) {
		return errorJSON(c, fiber.StatusNotFound, "Participant not found")
	}
	if err != nil {
		log.Println(err, "Error updating presence")
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to update presence")
	}

	if h.notifier != nil {
		h.notifier.NotifyPresence(*participant)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
