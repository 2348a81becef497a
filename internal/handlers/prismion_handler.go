package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"prismora-backend/internal/canvas"
	"prismora-backend/internal/models"
	"prismora-backend/internal/repo"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type PrismionHandler struct {
	boardRepo    repo.BoardRepoInterface
	prismionRepo repo.PrismionRepoInterface
}

func NewPrismionHandler(boardRepo repo.BoardRepoInterface, prismionRepo repo.PrismionRepoInterface) *PrismionHandler {
	return &PrismionHandler{boardRepo: boardRepo, prismionRepo: prismionRepo}
}

type prismionDTO struct {
	X       *float64        `json:"x"`
	Y       *float64        `json:"y"`
	ZIndex  *int            `json:"zIndex"`
	W       *float64        `json:"w"`
	H       *float64        `json:"h"`
	MinW    *float64        `json:"minW"`
	MinH    *float64        `json:"minH"`
	Content json.RawMessage `json:"content"`
	State   *string         `json:"state"`
}

func (d prismionDTO) apply(p *models.Prismion) {
	if d.X != nil {
		p.Position.X = *d.X
	}
	if d.Y != nil {
		p.Position.Y = *d.Y
	}
	if d.ZIndex != nil {
		p.Position.ZIndex = *d.ZIndex
	}
	if d.MinW != nil {
		p.Size.MinW = *d.MinW
	}
	if d.MinH != nil {
		p.Size.MinH = *d.MinH
	}
	if d.W != nil {
		p.Size.W = *d.W
	}
	if d.H != nil {
		p.Size.H = *d.H
	}
	p.Size = p.Size.Clamp()
	if len(d.Content) > 0 {
		p.Content = datatypes.JSON(d.Content)
	}
	if d.State != nil {
		p.State = models.PrismionState(*d.State)
	}
}

// CreatePrismion adds a card, nudged away from existing cards
func (h *PrismionHandler) CreatePrismion(c *fiber.Ctx) error {
	boardID, ok := parseUUIDParam(c, "boardId")
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid board ID")
	}

	var dto prismionDTO
	if err := c.BodyParser(&dto); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if _, err := h.boardRepo.GetBoardByID(boardID); err != nil {
		return boardLookupError(c, err)
	}

	existing, err := h.prismionRepo.ListPrismions(boardID)
	if err != nil {
		log.Println(err, "Error listing prismions")
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to create prismion")
	}

	top := 0
	for _, p := range existing {
		if p.Position.ZIndex > top {
			top = p.Position.ZIndex
		}
	}
	card := models.Prismion{
		UUID:     uuid.New(),
		BoardID:  boardID,
		Position: models.Position{ZIndex: top + 1},
		Size: models.Size{
			W:    models.DefaultPrismionW,
			H:    models.DefaultPrismionH,
			MinW: models.DefaultPrismionMinW,
			MinH: models.DefaultPrismionMinH,
		},
		State: models.PrismionActive,
	}
	dto.apply(&card)

	opts := canvas.DefaultResolveOptions()
	opts.TargetID = card.ID()
	resolved := canvas.ResolveOverlapsList(append(existing, card), &opts)
	card = resolved[len(resolved)-1]

	if err := h.prismionRepo.CreatePrismion(&card); err != nil {
		log.Println(err, "Error creating prismion")
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to create prismion")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"prismion": card,
	})
}

// UpdatePrismion moves, resizes or edits a card
func (h *PrismionHandler) UpdatePrismion(c *fiber.Ctx) error {
	id, ok := parseUUIDParam(c, "prismionId")
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid prismion ID")
	}

	var dto prismionDTO
	if err := c.BodyParser(&dto); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}

	card, err := h.prismionRepo.GetPrismion(id)
	if errors.Is(err, repo.ErrNotFound) {
		return errorJSON(c, fiber.StatusNotFound, "Prismion not found")
	}
	if err != nil {
		log.Println(err, "Error getting prismion")
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to update prismion")
	}

	dto.apply(card)
	if err := h.prismionRepo.UpdatePrismion(card); err != nil {
		log.Println(err, "Error updating prismion")
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to update prismion")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"prismion": card,
	})
}

func (h *PrismionHandler) DeletePrismion(c *fiber.Ctx) error {
	id, ok := parseUUIDParam(c, "prismionId")
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid prismion ID")
	}

	err := h.prismionRepo.DeletePrismion(id)
	if errors.Is(err, repo.ErrNotFound) {
		return errorJSON(c, fiber.StatusNotFound, "Prismion not found")
	}
	if err != nil {
		log.Println(err, "Error deleting prismion")
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to delete prismion")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ResolveOverlaps spreads the board's cards apart and saves the result
func (h *PrismionHandler) ResolveOverlaps(c *fiber.Ctx) error {
	boardID, ok := parseUUIDParam(c, "boardId")
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid board ID")
	}

	var dto struct {
		SnapToGrid    float64  `json:"snapToGrid"`
		Padding       *float64 `json:"padding"`
		MaxIterations int      `json:"maxIterations"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&dto); err != nil {
			return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
		}
	}
	if dto.SnapToGrid < 0 || dto.MaxIterations < 0 || (dto.Padding != nil && *dto.Padding < 0) {
		return errorJSON(c, fiber.StatusBadRequest, "Options must not be negative")
	}

	opts := canvas.DefaultResolveOptions()
	opts.SnapToGrid = dto.SnapToGrid
	if dto.MaxIterations > 0 {
		opts.MaxIterations = dto.MaxIterations
	}
	if dto.Padding != nil {
		opts.Padding = *dto.Padding
	}

	if _, err := h.boardRepo.GetBoardByID(boardID); err != nil {
		return boardLookupError(c, err)
	}

	list, err := h.prismionRepo.ListPrismions(boardID)
	if err != nil {
		log.Println(err, "Error listing prismions")
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to resolve overlaps")
	}

	// creation order decides which card yields
	byID := make(map[string]models.Prismion, len(list))
	order := make([]string, 0, len(list))
	for _, p := range list {
		byID[p.ID()] = p
		order = append(order, p.ID())
	}
	resolved := canvas.ResolveOverlapsByID(byID, order, &opts)

	out := make([]models.Prismion, 0, len(list))
	var moved []models.Prismion
	for _, p := range list {
		r := resolved[p.ID()]
		if r.Position != p.Position {
			moved = append(moved, r)
		}
		out = append(out, r)
	}

	if len(moved) > 0 {
		if err := h.prismionRepo.SavePositions(moved); err != nil {
			log.Println(err, "Error saving positions")
			return errorJSON(c, fiber.StatusInternalServerError, "Failed to resolve overlaps")
		}
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"prismions": out,
	})
}
