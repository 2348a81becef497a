package repo

import (
	"prismora-backend/internal/models"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ParticipantRepo struct {
	db *gorm.DB
}

type ParticipantRepoInterface interface {
	CreateParticipant(p *models.Participant) error
	ListParticipants(boardID uuid.UUID) ([]models.Participant, error)
	UpdatePresence(boardID, id uuid.UUID, updates map[string]interface{}) (*models.Participant, error)
}

func NewParticipantRepository(db *gorm.DB) ParticipantRepoInterface {
	return &ParticipantRepo{db: db}
}

func (r *ParticipantRepo) CreateParticipant(p *models.Participant) error {
	if p.UUID == uuid.Nil {
		p.UUID = uuid.New()
	}
	p.CreatedAt = time.Now()
	p.LastActiveAt = p.CreatedAt
	return r.db.Create(p).Error
}

func (r *ParticipantRepo) ListParticipants(boardID uuid.UUID) ([]models.Participant, error) {
	var list []models.Participant
	err := r.db.Where("board_id = ?", boardID).Find(&list).Error
	return list, err
}

// UpdatePresence applies cursor/activity updates and bumps last_active_at
func (r *ParticipantRepo) UpdatePresence(boardID, id uuid.UUID, updates map[string]interface{}) (*models.Participant, error) {
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["last_active_at"] = time.Now()
	res := r.db.Model(&models.Participant{}).Where("uuid = ? AND board_id = ?", id, boardID).Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	var p models.Participant
	if err := r.db.Where("uuid = ?", id).First(&p).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}
