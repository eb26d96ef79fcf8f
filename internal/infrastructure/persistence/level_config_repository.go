package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/vestfolio/backend/internal/domain/referral"
	"github.com/vestfolio/backend/internal/domain/shared"
	"github.com/vestfolio/backend/internal/infrastructure/persistence/models"
)

// GormLevelConfigRepository implements referral.LevelConfigRepository using GORM
type GormLevelConfigRepository struct {
	db *gorm.DB
}

// NewGormLevelConfigRepository creates a new GormLevelConfigRepository
func NewGormLevelConfigRepository(db *gorm.DB) *GormLevelConfigRepository {
	return &GormLevelConfigRepository{db: db}
}

// Find returns the stored schedule; shared.ErrNotFound when the operator
// never configured one.
func (r *GormLevelConfigRepository) Find(ctx context.Context) (referral.LevelConfig, error) {
	var levelModels []models.ReferralLevelModel
	if err := dbFrom(ctx, r.db).
		Order("level ASC").
		Find(&levelModels).Error; err != nil {
		return nil, err
	}
	if len(levelModels) == 0 {
		return nil, shared.ErrNotFound
	}

	config := make(referral.LevelConfig, len(levelModels))
	for i, model := range levelModels {
		config[i] = referral.Level{Level: model.Level, Percent: model.Percent}
	}
	return config, nil
}

// Save replaces the stored schedule with the given one
func (r *GormLevelConfigRepository) Save(ctx context.Context, config referral.LevelConfig) error {
	levelModels := make([]models.ReferralLevelModel, len(config))
	for i, level := range config {
		levelModels[i] = models.ReferralLevelModel{Level: level.Level, Percent: level.Percent}
	}

	db := dbFrom(ctx, r.db)
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.ReferralLevelModel{}).Error; err != nil {
			return err
		}
		return tx.Create(&levelModels).Error
	})
}

// Ensure GormLevelConfigRepository implements LevelConfigRepository
var _ referral.LevelConfigRepository = (*GormLevelConfigRepository)(nil)
