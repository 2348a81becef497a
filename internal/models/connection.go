package models

import (
	"time"

	"github.com/google/uuid"
)

// Port is one of the four fixed connection sides of a card.
type Port string

const (
	PortTop    Port = "top"
	PortRight  Port = "right"
	PortBottom Port = "bottom"
	PortLeft   Port = "left"
)

// Valid reports whether p names one of the four sides.
func (p Port) Valid() bool {
	switch p {
	case PortTop, PortRight, PortBottom, PortLeft:
		return true
	}
	return false
}

type Connection struct {
	UUID           uuid.UUID `gorm:"type:uuid;primarykey" json:"id"`
	BoardID        uuid.UUID `gorm:"type:uuid;not null;index" json:"boardId"`
	FromPrismionID uuid.UUID `gorm:"type:uuid;not null;index" json:"fromPrismionId"`
	FromPort       Port      `gorm:"not null" json:"fromPort"`
	ToPrismionID   uuid.UUID `gorm:"type:uuid;not null;index" json:"toPrismionId"`
	ToPort         Port      `gorm:"not null" json:"toPort"`
	Label          string    `json:"label,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (c Connection) ID() string {
	return c.UUID.String()
}
