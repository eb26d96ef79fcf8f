package persistence

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/vestfolio/backend/internal/infrastructure/persistence/models"
)

// setupTestDB creates an in-memory SQLite database with the full schema
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.WalletModel{},
		&models.AccountModel{},
		&models.EntryModel{},
		&models.TransactionModel{},
		&models.PlanModel{},
		&models.PositionModel{},
		&models.BatchModel{},
		&models.AllocationModel{},
		&models.CommentModel{},
		&models.ReferralModel{},
		&models.CommissionEventModel{},
		&models.CommissionModel{},
		&models.ReferralLevelModel{},
		&models.FundingRequestModel{},
	)
	require.NoError(t, err)

	return db
}
