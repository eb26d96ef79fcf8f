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

// GormPositionRepository implements investment.PositionRepository using GORM
type GormPositionRepository struct {
	db *gorm.DB
}

// NewGormPositionRepository creates a new GormPositionRepository
func NewGormPositionRepository(db *gorm.DB) *GormPositionRepository {
	return &GormPositionRepository{db: db}
}

// FindByID finds a position by ID
func (r *GormPositionRepository) FindByID(ctx context.Context, id uuid.UUID) (*investment.Position, error) {
	var model models.PositionModel
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

// FindByUserID lists a user's positions, newest first
func (r *GormPositionRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]investment.Position, error) {
	var positionModels []models.PositionModel
	if err := dbFrom(ctx, r.db).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&positionModels).Error; err != nil {
		return nil, err
	}
	return positionsToDomain(positionModels), nil
}

// FindActive returns every ACTIVE position across all users
func (r *GormPositionRepository) FindActive(ctx context.Context) ([]investment.Position, error) {
	var positionModels []models.PositionModel
	if err := dbFrom(ctx, r.db).
		Where("status = ?", investment.PositionActive).
		Order("created_at ASC").
		Find(&positionModels).Error; err != nil {
		return nil, err
	}
	return positionsToDomain(positionModels), nil
}

// Create creates a new position
func (r *GormPositionRepository) Create(ctx context.Context, position *investment.Position) error {
	model := models.PositionModelFromDomain(position)
	return dbFrom(ctx, r.db).Create(model).Error
}

// Save persists position changes
func (r *GormPositionRepository) Save(ctx context.Context, position *investment.Position) error {
	model := models.PositionModelFromDomain(position)
	return dbFrom(ctx, r.db).Save(model).Error
}

func positionsToDomain(positionModels []models.PositionModel) []investment.Position {
	positions := make([]investment.Position, len(positionModels))
	for i, model := range positionModels {
		positions[i] = *model.ToDomain()
	}
	return positions
}

// Ensure GormPositionRepository implements PositionRepository
var _ investment.PositionRepository = (*GormPositionRepository)(nil)
