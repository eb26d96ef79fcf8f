package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vestfolio/backend/internal/domain/referral"
	"github.com/vestfolio/backend/internal/infrastructure/persistence/models"
)

// GormReferralRepository implements referral.ReferralRepository using GORM
type GormReferralRepository struct {
	db *gorm.DB
}

// NewGormReferralRepository creates a new GormReferralRepository
func NewGormReferralRepository(db *gorm.DB) *GormReferralRepository {
	return &GormReferralRepository{db: db}
}

// FindUplineChain returns the user's ancestors ordered ascending by level
// (closest first).
func (r *GormReferralRepository) FindUplineChain(ctx context.Context, userID uuid.UUID) ([]referral.Referral, error) {
	var referralModels []models.ReferralModel
	if err := dbFrom(ctx, r.db).
		Where("user_id = ?", userID).
		Order("level ASC").
		Find(&referralModels).Error; err != nil {
		return nil, err
	}

	referrals := make([]referral.Referral, len(referralModels))
	for i, model := range referralModels {
		referrals[i] = *model.ToDomain()
	}
	return referrals, nil
}

// CreateEdges inserts the full upline chain of one user in a single batch
func (r *GormReferralRepository) CreateEdges(ctx context.Context, edges []referral.Referral) error {
	if len(edges) == 0 {
		return nil
	}
	referralModels := make([]*models.ReferralModel, len(edges))
	for i := range edges {
		referralModels[i] = models.ReferralModelFromDomain(&edges[i])
	}
	return dbFrom(ctx, r.db).Create(&referralModels).Error
}

// Ensure GormReferralRepository implements ReferralRepository
var _ referral.ReferralRepository = (*GormReferralRepository)(nil)
