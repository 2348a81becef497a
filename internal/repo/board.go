package repo

import (
	"prismora-backend/internal/models"
	"time"

	"gorm.io/gorm"

	"github.com/google/uuid"
)

// BoardRepo represents the repository for the board model
type BoardRepo struct {
	db *gorm.DB
}

type BoardRepoInterface interface {
	CreateBoard(board *models.Board) (uuid.UUID, error)
	GetBoardByID(id uuid.UUID) (*models.Board, error)
	GetBoardByShareID(shareID uuid.UUID) (*models.Board, error)
	UpdateBoard(id uuid.UUID, updates map[string]interface{}) (*models.Board, error)
	DeleteBoard(id uuid.UUID) error
}

func NewBoardRepository(db *gorm.DB) BoardRepoInterface {
	return &BoardRepo{db: db}
}

// CreateBoard creates a new board in the database
func (r *BoardRepo) CreateBoard(board *models.Board) (uuid.UUID, error) {
	id := uuid.New()
	board.UUID = id
	if board.ShareID == uuid.Nil {
		board.ShareID = uuid.New()
	}
	board.CreatedAt = time.Now()
	board.UpdatedAt = time.Now()
	err := r.db.Create(board).Error
	return id, err
}

func (r *BoardRepo) GetBoardByID(id uuid.UUID) (*models.Board, error) {
	var board models.Board
	if err := r.db.Where("uuid = ?", id).First(&board).Error; err != nil {
		return nil, translate(err)
	}
	return &board, nil
}

func (r *BoardRepo) GetBoardByShareID(shareID uuid.UUID) (*models.Board, error) {
	var board models.Board
	if err := r.db.Where("share_id = ?", shareID).First(&board).Error; err != nil {
		return nil, translate(err)
	}
	return &board, nil
}

// UpdateBoard applies a partial update and returns the stored board
func (r *BoardRepo) UpdateBoard(id uuid.UUID, updates map[string]interface{}) (*models.Board, error) {
	board, err := r.GetBoardByID(id)
	if err != nil {
		return nil, err
	}
	if len(updates) > 0 {
		updates["updated_at"] = time.Now()
		if err := r.db.Model(board).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return r.GetBoardByID(id)
}

// DeleteBoard removes the board together with its cards, connections and
// participants
func (r *BoardRepo) DeleteBoard(id uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("uuid = ?", id).Delete(&models.Board{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		if err := tx.Where("board_id = ?", id).Delete(&models.Connection{}).Error; err != nil {
			return err
		}
		if err := tx.Where("board_id = ?", id).Delete(&models.Prismion{}).Error; err != nil {
			return err
		}
		return tx.Where("board_id = ?", id).Delete(&models.Participant{}).Error
	})
}
