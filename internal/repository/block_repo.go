package repository

import (
	"context"
	"errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-progress-api/internal/models"
	"github.com/noah-isme/gema-progress-api/internal/progress"
)

// BlockRepository persists progress block instances.
type BlockRepository interface {
	GetByID(ctx context.Context, id uint) (models.BlockInstance, error)
	ListByCourse(ctx context.Context, courseID uint) ([]models.BlockInstance, error)
	UpdateConfig(ctx context.Context, id uint, config map[string]interface{}) error
}

type blockRepository struct {
	db *gorm.DB
}

// NewBlockRepository constructs a repository.
func NewBlockRepository(db *gorm.DB) BlockRepository {
	return &blockRepository{db: db}
}

func (r *blockRepository) GetByID(ctx context.Context, id uint) (models.BlockInstance, error) {
	var block models.BlockInstance
	err := r.db.WithContext(ctx).
		Where("blockname = ?", models.ProgressBlockName).
		First(&block, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.BlockInstance{}, progress.NewNotFound("block", id)
		}
		return models.BlockInstance{}, err
	}
	return block, nil
}

// ListByCourse returns progress blocks in page order.
func (r *blockRepository) ListByCourse(ctx context.Context, courseID uint) ([]models.BlockInstance, error) {
	var blocks []models.BlockInstance
	err := r.db.WithContext(ctx).
		Where("blockname = ? AND courseid = ?", models.ProgressBlockName, courseID).
		Order("region ASC").
		Order("weight ASC").
		Order("id ASC").
		Find(&blocks).Error
	if err != nil {
		return nil, err
	}
	return blocks, nil
}

func (r *blockRepository) UpdateConfig(ctx context.Context, id uint, config map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&models.BlockInstance{}).
		Where("id = ? AND blockname = ?", id, models.ProgressBlockName).
		Update("configdata", datatypes.JSONMap(config))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return progress.NewNotFound("block", id)
	}
	return nil
}
