package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vestfolio/backend/internal/domain/profit"
	"github.com/vestfolio/backend/internal/domain/shared"
	"github.com/vestfolio/backend/internal/infrastructure/persistence/models"
)

// GormBatchRepository implements profit.BatchRepository using GORM
type GormBatchRepository struct {
	db *gorm.DB
}

// NewGormBatchRepository creates a new GormBatchRepository
func NewGormBatchRepository(db *gorm.DB) *GormBatchRepository {
	return &GormBatchRepository{db: db}
}

// FindByID finds a batch by ID
func (r *GormBatchRepository) FindByID(ctx context.Context, id uuid.UUID) (*profit.Batch, error) {
	var model models.BatchModel
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

// FindByIDForUpdate loads the batch under a row lock so concurrent
// finalizations are mutually exclusive.
func (r *GormBatchRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*profit.Batch, error) {
	var model models.BatchModel
	if err := forUpdate(dbFrom(ctx, r.db)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// List lists batches with filtering and pagination
func (r *GormBatchRepository) List(ctx context.Context, filter profit.BatchFilter) ([]profit.Batch, int64, error) {
	var batchModels []models.BatchModel
	var total int64

	query := dbFrom(ctx, r.db).Model(&models.BatchModel{})
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderBy := ValidateSortField(filter.OrderBy, BatchSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(orderBy + " " + orderDir)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if err := query.Find(&batchModels).Error; err != nil {
		return nil, 0, err
	}

	batches := make([]profit.Batch, len(batchModels))
	for i, model := range batchModels {
		batches[i] = *model.ToDomain()
	}
	return batches, total, nil
}

// Create creates a new batch
func (r *GormBatchRepository) Create(ctx context.Context, batch *profit.Batch) error {
	model := models.BatchModelFromDomain(batch)
	return dbFrom(ctx, r.db).Create(model).Error
}

// Save persists batch changes
func (r *GormBatchRepository) Save(ctx context.Context, batch *profit.Batch) error {
	model := models.BatchModelFromDomain(batch)
	return dbFrom(ctx, r.db).Save(model).Error
}

// Ensure GormBatchRepository implements BatchRepository
var _ profit.BatchRepository = (*GormBatchRepository)(nil)
