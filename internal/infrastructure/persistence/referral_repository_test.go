package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vestfolio/backend/internal/domain/referral"
	"github.com/vestfolio/backend/internal/domain/shared"
)

func TestGormReferralRepository_FindUplineChain_Ordered(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormReferralRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	level1 := uuid.New()
	level2 := uuid.New()

	// Insert out of order; the chain must come back closest ancestor first
	edge2, err := referral.NewReferral(userID, level2, 2, "")
	require.NoError(t, err)
	edge1, err := referral.NewReferral(userID, level1, 1, "")
	require.NoError(t, err)
	require.NoError(t, repo.CreateEdges(ctx, []referral.Referral{*edge2, *edge1}))

	chain, err := repo.FindUplineChain(ctx, userID)
	require.NoError(t, err)
	require.Len(t, chain, 2)
	assert.Equal(t, 1, chain[0].Level)
	assert.Equal(t, level1, chain[0].ParentUserID)
	assert.Equal(t, 2, chain[1].Level)
	assert.Equal(t, level2, chain[1].ParentUserID)
}

func TestGormReferralRepository_CreateEdges_Empty(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormReferralRepository(db)

	// A root user has no ancestors; nothing to insert
	require.NoError(t, repo.CreateEdges(context.Background(), nil))
}

func TestGormCommissionEventRepository_CreateIfAbsent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormCommissionEventRepository(db)
	ctx := context.Background()

	sourceID := uuid.New()
	downline := uuid.New()

	event, err := referral.NewCommissionEvent(referral.SourceProfitDistribution, sourceID, downline, decimal.NewFromInt(100))
	require.NoError(t, err)

	first, created, err := repo.CreateIfAbsent(ctx, event)
	require.NoError(t, err)
	assert.True(t, created)

	// Same (source_type, source_id) anchors to the existing event
	replay, err := referral.NewCommissionEvent(referral.SourceProfitDistribution, sourceID, downline, decimal.NewFromInt(100))
	require.NoError(t, err)
	second, created, err := repo.CreateIfAbsent(ctx, replay)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	found, err := repo.FindBySource(ctx, referral.SourceProfitDistribution, sourceID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)
}

func TestGormCommissionRepository_UpsertGuard(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormCommissionRepository(db)
	ctx := context.Background()

	eventID := uuid.New()
	upline := uuid.New()
	downline := uuid.New()

	commission, err := referral.NewCommission(eventID, upline, downline, 1,
		decimal.NewFromInt(5), decimal.NewFromInt(5), uuid.New())
	require.NoError(t, err)

	created, err := repo.UpsertGuard(ctx, commission)
	require.NoError(t, err)
	assert.True(t, created)

	// Replay with the same (event, upline, downline, level) key is refused
	replay, err := referral.NewCommission(eventID, upline, downline, 1,
		decimal.NewFromInt(5), decimal.NewFromInt(5), uuid.New())
	require.NoError(t, err)
	created, err = repo.UpsertGuard(ctx, replay)
	require.NoError(t, err)
	assert.False(t, created)

	// A different level for the same event is a distinct commission
	other, err := referral.NewCommission(eventID, uuid.New(), downline, 2,
		decimal.NewFromInt(3), decimal.NewFromInt(3), uuid.New())
	require.NoError(t, err)
	created, err = repo.UpsertGuard(ctx, other)
	require.NoError(t, err)
	assert.True(t, created)

	commissions, err := repo.FindByEventID(ctx, eventID)
	require.NoError(t, err)
	assert.Len(t, commissions, 2)

	earned, err := repo.FindByUplineUserID(ctx, upline)
	require.NoError(t, err)
	require.Len(t, earned, 1)
	assert.Equal(t, commission.ID, earned[0].ID)
}

func TestGormLevelConfigRepository_FindAndSave(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormLevelConfigRepository(db)
	ctx := context.Background()

	// No operator configuration yet
	_, err := repo.Find(ctx)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	require.NoError(t, repo.Save(ctx, referral.DefaultLevels()))

	config, err := repo.Find(ctx)
	require.NoError(t, err)
	assert.Len(t, config, len(referral.DefaultLevels()))
	assert.Equal(t, 1, config[0].Level)

	// Save replaces the whole schedule
	replacement := referral.LevelConfig{
		{Level: 1, Percent: decimal.NewFromInt(10)},
		{Level: 2, Percent: decimal.NewFromInt(5)},
	}
	require.NoError(t, repo.Save(ctx, replacement))

	config, err = repo.Find(ctx)
	require.NoError(t, err)
	require.Len(t, config, 2)
	assert.True(t, config[0].Percent.Equal(decimal.NewFromInt(10)))
}
