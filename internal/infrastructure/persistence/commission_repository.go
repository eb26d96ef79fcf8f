package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vestfolio/backend/internal/domain/referral"
	"github.com/vestfolio/backend/internal/infrastructure/persistence/models"
)

// GormCommissionRepository implements referral.CommissionRepository using GORM
type GormCommissionRepository struct {
	db *gorm.DB
}

// NewGormCommissionRepository creates a new GormCommissionRepository
func NewGormCommissionRepository(db *gorm.DB) *GormCommissionRepository {
	return &GormCommissionRepository{db: db}
}

// UpsertGuard inserts the commission unless a row with the same
// (event, upline, downline, level) key exists. Reports whether this call
// created it.
func (r *GormCommissionRepository) UpsertGuard(ctx context.Context, commission *referral.Commission) (bool, error) {
	model := models.CommissionModelFromDomain(commission)
	result := dbFrom(ctx, r.db).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "event_id"}, {Name: "upline_user_id"},
			{Name: "downline_user_id"}, {Name: "level"},
		},
		DoNothing: true,
	}).Create(model)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// FindByEventID lists the commissions settled for one cascade event
func (r *GormCommissionRepository) FindByEventID(ctx context.Context, eventID uuid.UUID) ([]referral.Commission, error) {
	var commissionModels []models.CommissionModel
	if err := dbFrom(ctx, r.db).
		Where("event_id = ?", eventID).
		Order("level ASC").
		Find(&commissionModels).Error; err != nil {
		return nil, err
	}
	return commissionsToDomain(commissionModels), nil
}

// FindByUplineUserID lists the commissions earned by a user, newest first
func (r *GormCommissionRepository) FindByUplineUserID(ctx context.Context, uplineUserID uuid.UUID) ([]referral.Commission, error) {
	var commissionModels []models.CommissionModel
	if err := dbFrom(ctx, r.db).
		Where("upline_user_id = ?", uplineUserID).
		Order("created_at DESC").
		Find(&commissionModels).Error; err != nil {
		return nil, err
	}
	return commissionsToDomain(commissionModels), nil
}

func commissionsToDomain(commissionModels []models.CommissionModel) []referral.Commission {
	commissions := make([]referral.Commission, len(commissionModels))
	for i, model := range commissionModels {
		commissions[i] = *model.ToDomain()
	}
	return commissions
}

// Ensure GormCommissionRepository implements CommissionRepository
var _ referral.CommissionRepository = (*GormCommissionRepository)(nil)
