package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vestfolio/backend/internal/domain/ledger"
	"github.com/vestfolio/backend/internal/domain/shared"
	"github.com/vestfolio/backend/internal/infrastructure/persistence/models"
)

// GormTransactionRepository implements ledger.TransactionRepository using GORM
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository creates a new GormTransactionRepository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// Create creates a new transaction
func (r *GormTransactionRepository) Create(ctx context.Context, tx *ledger.Transaction) error {
	model := models.TransactionModelFromDomain(tx)
	return dbFrom(ctx, r.db).Create(model).Error
}

// CreateIfAbsent inserts the transaction unless one with the same reference
// exists. Returns the persisted transaction and whether this call created it.
func (r *GormTransactionRepository) CreateIfAbsent(ctx context.Context, tx *ledger.Transaction) (*ledger.Transaction, bool, error) {
	if tx.Reference == nil {
		return nil, false, shared.NewDomainError("INVALID_REFERENCE", "CreateIfAbsent requires an idempotency reference")
	}

	db := dbFrom(ctx, r.db)
	model := models.TransactionModelFromDomain(tx)

	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "reference"}},
		DoNothing: true,
	}).Create(model)
	if result.Error != nil {
		return nil, false, result.Error
	}
	if result.RowsAffected > 0 {
		return model.ToDomain(), true, nil
	}

	existing, err := r.FindByReference(ctx, *tx.Reference)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

// FindByID finds a transaction by ID
func (r *GormTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Transaction, error) {
	var model models.TransactionModel
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

// FindByReference finds a transaction by its idempotency reference
func (r *GormTransactionRepository) FindByReference(ctx context.Context, reference string) (*ledger.Transaction, error) {
	var model models.TransactionModel
	if err := dbFrom(ctx, r.db).
		Where("reference = ?", reference).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save persists transaction changes
func (r *GormTransactionRepository) Save(ctx context.Context, tx *ledger.Transaction) error {
	model := models.TransactionModelFromDomain(tx)
	return dbFrom(ctx, r.db).Save(model).Error
}

// Ensure GormTransactionRepository implements TransactionRepository
var _ ledger.TransactionRepository = (*GormTransactionRepository)(nil)
