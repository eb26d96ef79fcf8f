package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vestfolio/backend/internal/domain/investment"
	"github.com/vestfolio/backend/internal/domain/shared"
	"github.com/vestfolio/backend/internal/infrastructure/persistence/models"
)

// GormPlanRepository implements investment.PlanRepository using GORM
type GormPlanRepository struct {
	db *gorm.DB
}

// NewGormPlanRepository creates a new GormPlanRepository
func NewGormPlanRepository(db *gorm.DB) *GormPlanRepository {
	return &GormPlanRepository{db: db}
}

// FindByID finds a plan by ID
func (r *GormPlanRepository) FindByID(ctx context.Context, id uuid.UUID) (*investment.Plan, error) {
	var model models.PlanModel
	if err := dbFrom(ctx, r.db).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActive lists plans open for new investment
func (r *GormPlanRepository) FindActive(ctx context.Context) ([]investment.Plan, error) {
	var planModels []models.PlanModel
	if err := dbFrom(ctx, r.db).
		Where("active = ?", true).
		Order("created_at ASC").
		Find(&planModels).Error; err != nil {
		return nil, err
	}

	plans := make([]investment.Plan, len(planModels))
	for i, model := range planModels {
		plans[i] = *model.ToDomain()
	}
	return plans, nil
}

// Create creates a new plan
func (r *GormPlanRepository) Create(ctx context.Context, plan *investment.Plan) error {
	model := models.PlanModelFromDomain(plan)
	return dbFrom(ctx, r.db).Create(model).Error
}

// Save persists plan changes
func (r *GormPlanRepository) Save(ctx context.Context, plan *investment.Plan) error {
	model := models.PlanModelFromDomain(plan)
	return dbFrom(ctx, r.db).Save(model).Error
}

// Ensure GormPlanRepository implements PlanRepository
var _ investment.PlanRepository = (*GormPlanRepository)(nil)
