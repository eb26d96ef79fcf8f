package referral

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vestfolio/backend/internal/domain/ledger"
	"github.com/vestfolio/backend/internal/domain/referral"
)

type cascadeFixture struct {
	service     *CascadeService
	referrals   *memReferrals
	events      *memEvents
	commissions *memCommissions
	levels      *memLevelConfigs
	poster      *fakePoster
	notifier    *nopNotifier
}

func newCascadeFixture(t *testing.T) *cascadeFixture {
	t.Helper()
	f := &cascadeFixture{
		referrals:   &memReferrals{},
		events:      newMemEvents(),
		commissions: newMemCommissions(),
		levels:      &memLevelConfigs{},
		poster:      newFakePoster(),
		notifier:    &nopNotifier{},
	}
	f.service = NewCascadeService(
		f.referrals, f.events, f.commissions, f.levels,
		newFakeAccounts(), f.poster, noopTxManager{}, f.notifier,
		zap.NewNop(),
	)
	return f
}

func (f *cascadeFixture) enroll(t *testing.T, userID, parentID uuid.UUID) {
	t.Helper()
	require.NoError(t, f.service.Enroll(context.Background(), userID, parentID))
}

func TestCascadeService_Distribute(t *testing.T) {
	f := newCascadeFixture(t)
	grandparent := uuid.New()
	parent := uuid.New()
	user := uuid.New()
	f.enroll(t, parent, grandparent)
	f.enroll(t, user, parent)

	// a 177.00 profit pays 5% to level 1 and 3% to level 2
	allocationID := uuid.New()
	err := f.service.Distribute(context.Background(), allocationID, user, decimal.RequireFromString("177.00"))
	require.NoError(t, err)

	require.Len(t, f.poster.postings, 2)
	for _, p := range f.poster.postings {
		assert.Equal(t, ledger.TypeCommission, p.Type)
	}

	event, err := f.events.FindBySource(context.Background(), referral.SourceProfitDistribution, allocationID)
	require.NoError(t, err)

	commissions, err := f.commissions.FindByEventID(context.Background(), event.ID)
	require.NoError(t, err)
	require.Len(t, commissions, 2)

	byLevel := make(map[int]referral.Commission)
	for _, c := range commissions {
		byLevel[c.Level] = c
	}
	assert.Equal(t, parent, byLevel[1].UplineUserID)
	assert.True(t, byLevel[1].Amount.Equal(decimal.RequireFromString("8.85")),
		"level 1 = %s", byLevel[1].Amount)
	assert.Equal(t, grandparent, byLevel[2].UplineUserID)
	assert.True(t, byLevel[2].Amount.Equal(decimal.RequireFromString("5.31")),
		"level 2 = %s", byLevel[2].Amount)

	assert.Len(t, f.notifier.events, 2)
}

func TestCascadeService_Distribute_Rerun(t *testing.T) {
	f := newCascadeFixture(t)
	parent := uuid.New()
	user := uuid.New()
	f.enroll(t, user, parent)

	allocationID := uuid.New()
	base := decimal.RequireFromString("177.00")

	require.NoError(t, f.service.Distribute(context.Background(), allocationID, user, base))
	require.NoError(t, f.service.Distribute(context.Background(), allocationID, user, base))

	// the rerun reused the event and settled nothing twice
	assert.Len(t, f.poster.postings, 1)
	event, err := f.events.FindBySource(context.Background(), referral.SourceProfitDistribution, allocationID)
	require.NoError(t, err)
	commissions, err := f.commissions.FindByEventID(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Len(t, commissions, 1)
}

func TestCascadeService_Distribute_NoUpline(t *testing.T) {
	f := newCascadeFixture(t)

	err := f.service.Distribute(context.Background(), uuid.New(), uuid.New(), decimal.NewFromInt(100))
	require.NoError(t, err)
	assert.Empty(t, f.poster.postings)
}

func TestCascadeService_Distribute_TinyAmountsSkipped(t *testing.T) {
	f := newCascadeFixture(t)
	parent := uuid.New()
	user := uuid.New()
	f.enroll(t, user, parent)

	// 5% of 0.10 truncates to zero cents, nothing to pay
	err := f.service.Distribute(context.Background(), uuid.New(), user, decimal.RequireFromString("0.10"))
	require.NoError(t, err)
	assert.Empty(t, f.poster.postings)
}

func TestCascadeService_Distribute_CustomLevels(t *testing.T) {
	f := newCascadeFixture(t)
	parent := uuid.New()
	user := uuid.New()
	f.enroll(t, user, parent)

	custom := referral.LevelConfig{{Level: 1, Percent: decimal.NewFromInt(10)}}
	require.NoError(t, f.service.UpdateLevels(context.Background(), custom))

	err := f.service.Distribute(context.Background(), uuid.New(), user, decimal.NewFromInt(200))
	require.NoError(t, err)

	require.Len(t, f.poster.postings, 1)
	assert.True(t, f.poster.postings[0].Amount.Equal(decimal.NewFromInt(20)))
}

func TestCascadeService_Enroll(t *testing.T) {
	f := newCascadeFixture(t)
	grandparent := uuid.New()
	parent := uuid.New()
	user := uuid.New()

	f.enroll(t, parent, grandparent)
	f.enroll(t, user, parent)

	chain, err := f.service.GetUplineChain(context.Background(), user)
	require.NoError(t, err)
	require.Len(t, chain, 2)
	assert.Equal(t, parent, chain[0].ParentUserID)
	assert.Equal(t, grandparent, chain[1].ParentUserID)

	// a second referrer is rejected
	assert.Error(t, f.service.Enroll(context.Background(), user, uuid.New()))

	// and so is closing a cycle
	assert.Error(t, f.service.Enroll(context.Background(), grandparent, user))
}

func TestCascadeService_UpdateLevels_Validation(t *testing.T) {
	f := newCascadeFixture(t)

	assert.Error(t, f.service.UpdateLevels(context.Background(), referral.LevelConfig{}))
	assert.Error(t, f.service.UpdateLevels(context.Background(), referral.LevelConfig{
		{Level: 1, Percent: decimal.Zero},
	}))

	// defaults remain in effect
	levels := f.service.GetLevels(context.Background())
	assert.Equal(t, referral.DefaultLevels(), levels)
}
