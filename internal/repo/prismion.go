package repo

import (
	"prismora-backend/internal/models"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PrismionRepo struct {
	db *gorm.DB
}

type PrismionRepoInterface interface {
	CreatePrismion(p *models.Prismion) error
	GetPrismion(id uuid.UUID) (*models.Prismion, error)
	ListPrismions(boardID uuid.UUID) ([]models.Prismion, error)
	UpdatePrismion(p *models.Prismion) error
	SavePositions(list []models.Prismion) error
	DeletePrismion(id uuid.UUID) error
}

func NewPrismionRepository(db *gorm.DB) PrismionRepoInterface {
	return &PrismionRepo{db: db}
}

func (r *PrismionRepo) CreatePrismion(p *models.Prismion) error {
	if p.UUID == uuid.Nil {
		p.UUID = uuid.New()
	}
	p.CreatedAt = time.Now()
	p.UpdatedAt = time.Now()
	return r.db.Create(p).Error
}

func (r *PrismionRepo) GetPrismion(id uuid.UUID) (*models.Prismion, error) {
	var p models.Prismion
	if err := r.db.Where("uuid = ?", id).First(&p).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// ListPrismions returns a board's cards in creation order
func (r *PrismionRepo) ListPrismions(boardID uuid.UUID) ([]models.Prismion, error) {
	var list []models.Prismion
	err := r.db.Where("board_id = ?", boardID).Order("created_at ASC").Find(&list).Error
	return list, err
}

func (r *PrismionRepo) UpdatePrismion(p *models.Prismion) error {
	p.UpdatedAt = time.Now()
	return r.db.Save(p).Error
}

// SavePositions writes only the position columns of each card
func (r *PrismionRepo) SavePositions(list []models.Prismion) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for _, p := range list {
			err := tx.Model(&models.Prismion{}).Where("uuid = ?", p.UUID).Updates(map[string]interface{}{
				"pos_x":       p.Position.X,
				"pos_y":       p.Position.Y,
				"pos_z_index": p.Position.ZIndex,
				"updated_at":  time.Now(),
			}).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// DeletePrismion removes the card and every connection attached to it
func (r *PrismionRepo) DeletePrismion(id uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("uuid = ?", id).Delete(&models.Prismion{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Where("from_prismion_id = ? OR to_prismion_id = ?", id, id).Delete(&models.Connection{}).Error
	})
}
