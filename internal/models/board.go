package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Board represents the database model
type Board struct {
	UUID           uuid.UUID      `gorm:"type:uuid;primarykey" json:"id"`
	ShareID        uuid.UUID      `gorm:"type:uuid;uniqueIndex;not null" json:"shareId"`
	Title          string         `gorm:"not null" json:"title"`
	Description    string         `json:"description"`
	IsPublic       bool           `gorm:"default:false" json:"isPublic"`
	CanvasSettings datatypes.JSON `json:"canvasSettings,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}
