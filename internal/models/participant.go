package models

import (
	"time"

	"github.com/google/uuid"
)

// Participant is a user's presence record on a board.
type Participant struct {
	UUID         uuid.UUID `gorm:"type:uuid;primarykey" json:"userId"`
	BoardID      uuid.UUID `gorm:"type:uuid;not null;index" json:"boardId"`
	UserName     string    `gorm:"not null" json:"userName"`
	CursorX      float64   `json:"cursorX"`
	CursorY      float64   `json:"cursorY"`
	ColorToken   string    `json:"colorToken"`
	IsActive     bool      `gorm:"default:true" json:"isActive"`
	LastActiveAt time.Time `json:"lastActiveAt"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (p Participant) ID() string {
	return p.UUID.String()
}

// ColorTokens is the palette presence colors are drawn from.
var ColorTokens = []string{
	"presence-red",
	"presence-orange",
	"presence-amber",
	"presence-green",
	"presence-teal",
	"presence-blue",
	"presence-indigo",
	"presence-pink",
}

// ColorTokenFor picks a stable palette entry for a user id.
func ColorTokenFor(id uuid.UUID) string {
	sum := 0
	for _, b := range id {
		sum += int(b)
	}
	return ColorTokens[sum%len(ColorTokens)]
}
