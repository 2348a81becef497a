package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type PrismionState string

const (
	PrismionActive   PrismionState = "active"
	PrismionArchived PrismionState = "archived"
)

const (
	DefaultPrismionW    = 320
	DefaultPrismionH    = 200
	DefaultPrismionMinW = 200
	DefaultPrismionMinH = 120
)

// Position is the top-left anchor of a card plus its stacking order.
type Position struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	ZIndex int     `json:"zIndex"`
}

// Size holds current and minimum card dimensions.
type Size struct {
	W    float64 `json:"w"`
	H    float64 `json:"h"`
	MinW float64 `json:"minW"`
	MinH float64 `json:"minH"`
}

// Clamp returns s with W and H raised to at least their minimums.
func (s Size) Clamp() Size {
	if s.W < s.MinW {
		s.W = s.MinW
	}
	if s.H < s.MinH {
		s.H = s.MinH
	}
	return s
}

// Prismion is a movable, resizable card on a board.
type Prismion struct {
	UUID      uuid.UUID      `gorm:"type:uuid;primarykey" json:"id"`
	BoardID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"boardId"`
	Position  Position       `gorm:"embedded;embeddedPrefix:pos_" json:"position"`
	Size      Size           `gorm:"embedded;embeddedPrefix:size_" json:"size"`
	Content   datatypes.JSON `json:"content,omitempty"`
	State     PrismionState  `gorm:"default:'active'" json:"state"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// ID returns the card id as a string, the key used by the canvas core.
func (p Prismion) ID() string {
	return p.UUID.String()
}
