package profit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vestfolio/backend/internal/domain/investment"
	"github.com/vestfolio/backend/internal/domain/ledger"
	"github.com/vestfolio/backend/internal/domain/profit"
	"github.com/vestfolio/backend/internal/domain/shared"
)

type allocationFixture struct {
	service     *AllocationService
	batches     *memBatches
	allocations *memAllocations
	positions   *memPositions
	poster      *fakePoster
	cascade     *fakeCascade
	notifier    *nopNotifier
}

func newAllocationFixture(t *testing.T) *allocationFixture {
	t.Helper()
	f := &allocationFixture{
		batches:     newMemBatches(),
		allocations: newMemAllocations(),
		positions:   newMemPositions(),
		poster:      newFakePoster(),
		cascade:     &fakeCascade{},
		notifier:    &nopNotifier{},
	}
	f.service = NewAllocationService(
		f.batches, f.allocations, &memComments{}, f.positions,
		newFakeAccounts(), f.poster, noopTxManager{}, f.cascade, f.notifier,
		zap.NewNop(),
	)
	return f
}

func (f *allocationFixture) addPosition(t *testing.T, userID uuid.UUID, amount int64) *investment.Position {
	t.Helper()
	plan, err := investment.NewPlan("Growth", decimal.NewFromInt(1), decimal.NewFromInt(1_000_000), 90)
	require.NoError(t, err)
	position, err := investment.NewPosition(userID, plan, decimal.NewFromInt(amount), time.Now())
	require.NoError(t, err)
	f.positions.add(position)
	return position
}

func (f *allocationFixture) addBatch(t *testing.T, total string) *profit.Batch {
	t.Helper()
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	batch, err := profit.NewBatch(profit.PeriodWeekly, start, start.AddDate(0, 0, 7),
		decimal.RequireFromString(total), uuid.New())
	require.NoError(t, err)
	require.NoError(t, f.batches.Create(context.Background(), batch))
	return batch
}

func TestAllocationService_FinalApprove(t *testing.T) {
	f := newAllocationFixture(t)
	alice := uuid.New()
	bob := uuid.New()
	f.addPosition(t, alice, 300)
	f.addPosition(t, bob, 700)

	// investor pool of a 1000 batch is 590
	batch := f.addBatch(t, "1000")
	admin := uuid.New()

	approved, err := f.service.FinalApprove(context.Background(), batch.ID, admin, "looks good")
	require.NoError(t, err)

	assert.Equal(t, profit.BatchApproved, approved.Status)
	assert.Equal(t, 2, *approved.RecipientCount)
	assert.True(t, approved.TotalInvestmentAmount.Equal(decimal.NewFromInt(1000)))

	allocations, err := f.allocations.FindByBatchID(context.Background(), batch.ID)
	require.NoError(t, err)
	require.Len(t, allocations, 2)

	byUser := make(map[uuid.UUID]profit.Allocation)
	for _, a := range allocations {
		byUser[a.UserID] = a
	}
	assert.True(t, byUser[alice].ProfitAmount.Equal(decimal.NewFromInt(177)),
		"alice = %s", byUser[alice].ProfitAmount)
	assert.True(t, byUser[bob].ProfitAmount.Equal(decimal.NewFromInt(413)),
		"bob = %s", byUser[bob].ProfitAmount)
	for _, a := range allocations {
		assert.Equal(t, profit.AllocationCredited, a.Status)
		assert.NotNil(t, a.TransactionID)
	}

	// one dividend posting per recipient, debiting the user and crediting
	// the reward pool
	require.Len(t, f.poster.postings, 2)
	for _, p := range f.poster.postings {
		assert.Equal(t, ledger.TypeDividend, p.Type)
		assert.Contains(t, p.Reference, "profit_batch:"+batch.ID.String())
	}

	// cascade ran once per credited allocation
	assert.Len(t, f.cascade.calls, 2)
	assert.Len(t, f.notifier.events, 2)
}

func TestAllocationService_FinalApprove_AccumulatesPositionProfit(t *testing.T) {
	f := newAllocationFixture(t)
	alice := uuid.New()
	position := f.addPosition(t, alice, 500)

	batch := f.addBatch(t, "1000")
	_, err := f.service.FinalApprove(context.Background(), batch.ID, uuid.New(), "")
	require.NoError(t, err)

	stored, err := f.positions.FindByID(context.Background(), position.ID)
	require.NoError(t, err)
	assert.True(t, stored.TotalProfitPaid.Equal(decimal.NewFromInt(590)),
		"profit paid = %s", stored.TotalProfitPaid)
}

func TestAllocationService_FinalApprove_NoEligibleInvestments(t *testing.T) {
	f := newAllocationFixture(t)
	batch := f.addBatch(t, "1000")

	_, err := f.service.FinalApprove(context.Background(), batch.ID, uuid.New(), "")
	assert.ErrorIs(t, err, shared.ErrNoEligibleInvestments)

	// batch remains pending and nothing was posted
	stored, serr := f.batches.FindByID(context.Background(), batch.ID)
	require.NoError(t, serr)
	assert.Equal(t, profit.BatchPendingAdminFinal, stored.Status)
	assert.Empty(t, f.poster.postings)
}

func TestAllocationService_FinalApprove_Twice(t *testing.T) {
	f := newAllocationFixture(t)
	f.addPosition(t, uuid.New(), 1000)
	batch := f.addBatch(t, "1000")

	_, err := f.service.FinalApprove(context.Background(), batch.ID, uuid.New(), "")
	require.NoError(t, err)

	_, err = f.service.FinalApprove(context.Background(), batch.ID, uuid.New(), "")
	require.Error(t, err)

	// the replay changed nothing
	require.Len(t, f.poster.postings, 1)
}

func TestAllocationService_FinalApprove_CascadeFailureAbortsApproval(t *testing.T) {
	f := newAllocationFixture(t)
	f.addPosition(t, uuid.New(), 1000)
	batch := f.addBatch(t, "1000")
	f.cascade.failWith = errors.New("referral pool unavailable")

	_, err := f.service.FinalApprove(context.Background(), batch.ID, uuid.New(), "")
	require.Error(t, err)

	// the batch stays pending, so the approval can be driven again once
	// the cascade recovers
	stored, serr := f.batches.FindByID(context.Background(), batch.ID)
	require.NoError(t, serr)
	assert.Equal(t, profit.BatchPendingAdminFinal, stored.Status)

	f.cascade.failWith = nil
	approved, err := f.service.FinalApprove(context.Background(), batch.ID, uuid.New(), "")
	require.NoError(t, err)
	assert.Equal(t, profit.BatchApproved, approved.Status)
}

func TestBatchService_Lifecycle(t *testing.T) {
	batches := newMemBatches()
	comments := &memComments{}
	notifier := &nopNotifier{}
	service := NewBatchService(batches, comments, noopTxManager{}, notifier, zap.NewNop())

	accountant := uuid.New()
	admin := uuid.New()
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	batch, err := service.Create(context.Background(), CreateBatchParams{
		PeriodType:  profit.PeriodWeekly,
		PeriodStart: start,
		PeriodEnd:   start.AddDate(0, 0, 7),
		TotalProfit: decimal.NewFromInt(1000),
		SubmittedBy: accountant,
		Note:        "week 31 figures",
	})
	require.NoError(t, err)

	timeline, err := service.GetTimeline(context.Background(), batch.ID)
	require.NoError(t, err)
	require.Len(t, timeline, 1)
	assert.Equal(t, profit.CommentSubmission, timeline[0].Kind)

	adjusted := decimal.NewFromInt(900)
	rejected, err := service.FinalReject(context.Background(), RejectBatchParams{
		BatchID:             batch.ID,
		FinalizedBy:         admin,
		Mode:                profit.RejectRequestChanges,
		AdjustedTotalProfit: &adjusted,
		Note:                "fx rate looks off",
	})
	require.NoError(t, err)
	assert.Equal(t, profit.BatchRejected, rejected.Status)
	assert.True(t, rejected.TotalProfit.Equal(adjusted))

	// the submitter was told
	require.Len(t, notifier.events, 1)
	assert.Equal(t, accountant, notifier.events[0].UserID)

	resubmitted, err := service.Resubmit(context.Background(), ResubmitBatchParams{
		BatchID: batch.ID,
		By:      accountant,
		Note:    "rates corrected",
	})
	require.NoError(t, err)
	assert.Equal(t, profit.BatchPendingAdminFinal, resubmitted.Status)
	assert.Equal(t, 1, resubmitted.RevisionCount)

	timeline, err = service.GetTimeline(context.Background(), batch.ID)
	require.NoError(t, err)
	assert.Len(t, timeline, 3)
}
