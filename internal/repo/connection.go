package repo

import (
	"prismora-backend/internal/models"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ConnectionRepo struct {
	db *gorm.DB
}

type ConnectionRepoInterface interface {
	CreateConnection(c *models.Connection) error
	ListConnections(boardID uuid.UUID) ([]models.Connection, error)
	DeleteConnection(id uuid.UUID) error
}

func NewConnectionRepository(db *gorm.DB) ConnectionRepoInterface {
	return &ConnectionRepo{db: db}
}

func (r *ConnectionRepo) CreateConnection(c *models.Connection) error {
	if c.UUID == uuid.Nil {
		c.UUID = uuid.New()
	}
	c.CreatedAt = time.Now()
	c.UpdatedAt = time.Now()
	return r.db.Create(c).Error
}

func (r *ConnectionRepo) ListConnections(boardID uuid.UUID) ([]models.Connection, error) {
	var list []models.Connection
	err := r.db.Where("board_id = ?", boardID).Order("created_at ASC").Find(&list).Error
	return list, err
}

func (r *ConnectionRepo) DeleteConnection(id uuid.UUID) error {
	res := r.db.Where("uuid = ?", id).Delete(&models.Connection{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
