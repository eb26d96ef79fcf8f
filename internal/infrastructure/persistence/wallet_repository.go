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

// GormWalletRepository implements ledger.WalletRepository using GORM
type GormWalletRepository struct {
	db *gorm.DB
}

// NewGormWalletRepository creates a new GormWalletRepository
func NewGormWalletRepository(db *gorm.DB) *GormWalletRepository {
	return &GormWalletRepository{db: db}
}

// Create creates a new wallet
func (r *GormWalletRepository) Create(ctx context.Context, wallet *ledger.Wallet) error {
	model := models.WalletModelFromDomain(wallet)
	return dbFrom(ctx, r.db).Create(model).Error
}

// CreateIfAbsent inserts the wallet unless one already exists for the same
// user; returns the persisted wallet either way.
func (r *GormWalletRepository) CreateIfAbsent(ctx context.Context, wallet *ledger.Wallet) (*ledger.Wallet, error) {
	db := dbFrom(ctx, r.db)
	model := models.WalletModelFromDomain(wallet)

	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(model)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected > 0 {
		return model.ToDomain(), nil
	}

	// Conflict: another call won the insert, load the existing row
	if wallet.UserID == nil {
		return nil, shared.ErrAlreadyExists
	}
	return r.FindByUserID(ctx, *wallet.UserID)
}

// FindByUserID finds the wallet owned by a user
func (r *GormWalletRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*ledger.Wallet, error) {
	var model models.WalletModel
	if err := dbFrom(ctx, r.db).
		Where("user_id = ?", userID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Ensure GormWalletRepository implements WalletRepository
var _ ledger.WalletRepository = (*GormWalletRepository)(nil)
