package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vestfolio/backend/internal/domain/referral"
	"github.com/vestfolio/backend/internal/domain/shared"
	"github.com/vestfolio/backend/internal/infrastructure/persistence/models"
)

// GormCommissionEventRepository implements referral.CommissionEventRepository using GORM
type GormCommissionEventRepository struct {
	db *gorm.DB
}

// NewGormCommissionEventRepository creates a new GormCommissionEventRepository
func NewGormCommissionEventRepository(db *gorm.DB) *GormCommissionEventRepository {
	return &GormCommissionEventRepository{db: db}
}

// CreateIfAbsent inserts the event unless one with the same
// (source_type, source_id) exists. Returns the persisted event and whether
// this call created it.
func (r *GormCommissionEventRepository) CreateIfAbsent(ctx context.Context, event *referral.CommissionEvent) (*referral.CommissionEvent, bool, error) {
	db := dbFrom(ctx, r.db)
	model := models.CommissionEventModelFromDomain(event)

	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "source_type"}, {Name: "source_id"}},
		DoNothing: true,
	}).Create(model)
	if result.Error != nil {
		return nil, false, result.Error
	}
	if result.RowsAffected > 0 {
		return model.ToDomain(), true, nil
	}

	existing, err := r.FindBySource(ctx, event.SourceType, event.SourceID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

// FindBySource finds an event by its (source_type, source_id) anchor
func (r *GormCommissionEventRepository) FindBySource(ctx context.Context, sourceType referral.CommissionSourceType, sourceID uuid.UUID) (*referral.CommissionEvent, error) {
	var model models.CommissionEventModel
	if err := dbFrom(ctx, r.db).
		Where("source_type = ? AND source_id = ?", sourceType, sourceID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Ensure GormCommissionEventRepository implements CommissionEventRepository
var _ referral.CommissionEventRepository = (*GormCommissionEventRepository)(nil)
