package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/vestfolio/backend/internal/domain/ledger"
	"github.com/vestfolio/backend/internal/infrastructure/persistence/models"
)

// GormEntryRepository implements ledger.EntryRepository using GORM
type GormEntryRepository struct {
	db *gorm.DB
}

// NewGormEntryRepository creates a new GormEntryRepository
func NewGormEntryRepository(db *gorm.DB) *GormEntryRepository {
	return &GormEntryRepository{db: db}
}

// CreatePair atomically inserts the debit and credit legs of one
// transaction. Must be called inside an enclosing transaction.
func (r *GormEntryRepository) CreatePair(ctx context.Context, debit, credit *ledger.Entry) error {
	pair := []*models.EntryModel{
		models.EntryModelFromDomain(debit),
		models.EntryModelFromDomain(credit),
	}
	return dbFrom(ctx, r.db).Create(&pair).Error
}

// BalanceOf computes sum(DEBIT) - sum(CREDIT) for the account
func (r *GormEntryRepository) BalanceOf(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Balance decimal.Decimal
	}
	if err := dbFrom(ctx, r.db).
		Model(&models.EntryModel{}).
		Select("COALESCE(SUM(CASE WHEN direction = 'DEBIT' THEN amount ELSE -amount END), 0) as balance").
		Where("account_id = ?", accountID).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Balance, nil
}

// CountByTransactionID counts the entry legs recorded for a transaction
func (r *GormEntryRepository) CountByTransactionID(ctx context.Context, transactionID uuid.UUID) (int64, error) {
	var count int64
	if err := dbFrom(ctx, r.db).
		Model(&models.EntryModel{}).
		Where("transaction_id = ?", transactionID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindByAccountID lists the entries of an account with filtering
func (r *GormEntryRepository) FindByAccountID(ctx context.Context, accountID uuid.UUID, filter ledger.EntryFilter) ([]ledger.Entry, int64, error) {
	var entryModels []models.EntryModel
	var total int64

	db := dbFrom(ctx, r.db)
	query := db.Model(&models.EntryModel{}).Where("account_id = ?", accountID)
	if filter.Direction != nil {
		query = query.Where("direction = ?", *filter.Direction)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderBy := ValidateSortField(filter.OrderBy, EntrySortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(orderBy + " " + orderDir)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if err := query.Find(&entryModels).Error; err != nil {
		return nil, 0, err
	}

	entries := make([]ledger.Entry, len(entryModels))
	for i, model := range entryModels {
		entries[i] = *model.ToDomain()
	}
	return entries, total, nil
}

// Totals returns the ledger-wide debit and credit sums
func (r *GormEntryRepository) Totals(ctx context.Context) (decimal.Decimal, decimal.Decimal, error) {
	var result struct {
		Debits  decimal.Decimal
		Credits decimal.Decimal
	}
	if err := dbFrom(ctx, r.db).
		Model(&models.EntryModel{}).
		Select(
			"COALESCE(SUM(CASE WHEN direction = 'DEBIT' THEN amount ELSE 0 END), 0) as debits, " +
				"COALESCE(SUM(CASE WHEN direction = 'CREDIT' THEN amount ELSE 0 END), 0) as credits").
		Scan(&result).Error; err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return result.Debits, result.Credits, nil
}

// Ensure GormEntryRepository implements EntryRepository
var _ ledger.EntryRepository = (*GormEntryRepository)(nil)
