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

// GormAccountRepository implements ledger.AccountRepository using GORM
type GormAccountRepository struct {
	db *gorm.DB
}

// NewGormAccountRepository creates a new GormAccountRepository
func NewGormAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

// FindByID finds an account by ID
func (r *GormAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Account, error) {
	var model models.AccountModel
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

// FindByIDForUpdate loads the account under a row lock so a balance
// check-then-post sequence serializes with concurrent postings.
func (r *GormAccountRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*ledger.Account, error) {
	var model models.AccountModel
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

// FindSystemByCode finds the system account carrying a reserved code
func (r *GormAccountRepository) FindSystemByCode(ctx context.Context, code string) (*ledger.Account, error) {
	var model models.AccountModel
	if err := dbFrom(ctx, r.db).
		Where("code = ? AND purpose = ?", code, ledger.PurposeSystem).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindUserMain finds a user's primary ledger account
func (r *GormAccountRepository) FindUserMain(ctx context.Context, userID uuid.UUID) (*ledger.Account, error) {
	var model models.AccountModel
	if err := dbFrom(ctx, r.db).
		Where("user_id = ? AND purpose = ?", userID, ledger.PurposeMain).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// UpsertUserMain inserts the account unless one already exists for the same
// (user, purpose); returns the persisted account either way.
func (r *GormAccountRepository) UpsertUserMain(ctx context.Context, account *ledger.Account) (*ledger.Account, error) {
	db := dbFrom(ctx, r.db)
	model := models.AccountModelFromDomain(account)

	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "purpose"}},
		DoNothing: true,
	}).Create(model)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected > 0 {
		return model.ToDomain(), nil
	}

	if account.UserID == nil {
		return nil, shared.ErrAlreadyExists
	}
	return r.FindUserMain(ctx, *account.UserID)
}

// Create creates a new account
func (r *GormAccountRepository) Create(ctx context.Context, account *ledger.Account) error {
	model := models.AccountModelFromDomain(account)
	return dbFrom(ctx, r.db).Create(model).Error
}

// Save persists account changes
func (r *GormAccountRepository) Save(ctx context.Context, account *ledger.Account) error {
	model := models.AccountModelFromDomain(account)
	return dbFrom(ctx, r.db).Save(model).Error
}

// Ensure GormAccountRepository implements AccountRepository
var _ ledger.AccountRepository = (*GormAccountRepository)(nil)
