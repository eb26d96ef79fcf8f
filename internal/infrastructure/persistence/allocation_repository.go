package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vestfolio/backend/internal/domain/profit"
	"github.com/vestfolio/backend/internal/infrastructure/persistence/models"
)

// GormAllocationRepository implements profit.AllocationRepository using GORM
type GormAllocationRepository struct {
	db *gorm.DB
}

// NewGormAllocationRepository creates a new GormAllocationRepository
func NewGormAllocationRepository(db *gorm.DB) *GormAllocationRepository {
	return &GormAllocationRepository{db: db}
}

// Upsert inserts the allocation or, when a (batch, user) row already exists
// and is still pending, refreshes its computed snapshot. Credited rows are
// never touched so a revised batch cannot overwrite settled money.
func (r *GormAllocationRepository) Upsert(ctx context.Context, allocation *profit.Allocation) error {
	model := models.AllocationModelFromDomain(allocation)
	return dbFrom(ctx, r.db).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "batch_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"investment_snapshot", "share_percent", "profit_amount", "updated_at",
		}),
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Eq{Column: clause.Column{Table: "profit_allocations", Name: "status"}, Value: string(profit.AllocationPending)},
		}},
	}).Create(model).Error
}

// FindByBatchID lists every allocation of a batch
func (r *GormAllocationRepository) FindByBatchID(ctx context.Context, batchID uuid.UUID) ([]profit.Allocation, error) {
	var allocationModels []models.AllocationModel
	if err := dbFrom(ctx, r.db).
		Where("batch_id = ?", batchID).
		Order("created_at ASC").
		Find(&allocationModels).Error; err != nil {
		return nil, err
	}
	return allocationsToDomain(allocationModels), nil
}

// FindPendingByBatchID lists the allocations of a batch still awaiting credit
func (r *GormAllocationRepository) FindPendingByBatchID(ctx context.Context, batchID uuid.UUID) ([]profit.Allocation, error) {
	var allocationModels []models.AllocationModel
	if err := dbFrom(ctx, r.db).
		Where("batch_id = ? AND status = ?", batchID, profit.AllocationPending).
		Order("created_at ASC").
		Find(&allocationModels).Error; err != nil {
		return nil, err
	}
	return allocationsToDomain(allocationModels), nil
}

// Save persists allocation changes
func (r *GormAllocationRepository) Save(ctx context.Context, allocation *profit.Allocation) error {
	model := models.AllocationModelFromDomain(allocation)
	return dbFrom(ctx, r.db).Save(model).Error
}

func allocationsToDomain(allocationModels []models.AllocationModel) []profit.Allocation {
	allocations := make([]profit.Allocation, len(allocationModels))
	for i, model := range allocationModels {
		allocations[i] = *model.ToDomain()
	}
	return allocations
}

// Ensure GormAllocationRepository implements AllocationRepository
var _ profit.AllocationRepository = (*GormAllocationRepository)(nil)
