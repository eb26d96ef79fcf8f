package profit

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	appledger "github.com/vestfolio/backend/internal/application/ledger"
	"github.com/vestfolio/backend/internal/application/notification"
	"github.com/vestfolio/backend/internal/domain/investment"
	"github.com/vestfolio/backend/internal/domain/ledger"
	"github.com/vestfolio/backend/internal/domain/profit"
	"github.com/vestfolio/backend/internal/domain/shared"
)

// Cascader pays referral commissions for a credited allocation
type Cascader interface {
	Distribute(ctx context.Context, sourceID, downlineUserID uuid.UUID, baseAmount decimal.Decimal) error
}

// AllocationService runs the profit distribution that final approval
// triggers: compute proportional shares of the investor pool, credit each
// investor's main account from the reward pool, pay the referral cascade,
// and mark the batch approved. The whole distribution, cascade included,
// is one database transaction; only user notifications run after commit.
type AllocationService struct {
	batches     profit.BatchRepository
	allocations profit.AllocationRepository
	comments    profit.CommentRepository
	positions   investment.PositionRepository
	accounts    appledger.Accounts
	poster      appledger.Poster
	txManager   shared.TxManager
	cascade     Cascader
	notifier    notification.Notifier
	logger      *zap.Logger
}

// NewAllocationService creates an allocation service
func NewAllocationService(
	batches profit.BatchRepository,
	allocations profit.AllocationRepository,
	comments profit.CommentRepository,
	positions investment.PositionRepository,
	accounts appledger.Accounts,
	poster appledger.Poster,
	txManager shared.TxManager,
	cascade Cascader,
	notifier notification.Notifier,
	logger *zap.Logger,
) *AllocationService {
	return &AllocationService{
		batches:     batches,
		allocations: allocations,
		comments:    comments,
		positions:   positions,
		accounts:    accounts,
		poster:      poster,
		txManager:   txManager,
		cascade:     cascade,
		notifier:    notifier,
		logger:      logger,
	}
}

// creditedAllocation is carried out of the distribution transaction so
// notifications run only after the commit.
type creditedAllocation struct {
	allocationID uuid.UUID
	userID       uuid.UUID
	amount       decimal.Decimal
}

// FinalApprove distributes the batch's investor pool and transitions the
// batch to APPROVED. Idempotent per allocation: re-running after a partial
// failure credits only the allocations still pending, each through a
// referenced ledger posting.
func (s *AllocationService) FinalApprove(ctx context.Context, batchID, adminID uuid.UUID, note string) (*profit.Batch, error) {
	var batch *profit.Batch
	var credited []creditedAllocation

	err := s.txManager.WithinTx(ctx, func(txCtx context.Context) error {
		var err error
		batch, err = s.batches.FindByIDForUpdate(txCtx, batchID)
		if err != nil {
			return err
		}
		if !batch.Status.CanFinalize() {
			return shared.NewDomainError("INVALID_STATE",
				fmt.Sprintf("Cannot approve batch in %s status", batch.Status))
		}

		active, err := s.positions.FindActive(txCtx)
		if err != nil {
			return err
		}
		byUser := groupInvestmentsByUser(active)

		shares, totalInvestment, err := profit.ComputeShares(byUser, batch.InvestorPool())
		if err != nil {
			return err
		}

		rewardPool, err := s.accounts.GetSystemAccountByCode(txCtx, ledger.CodeRewardPool)
		if err != nil {
			return err
		}

		for _, share := range shares {
			if err := s.allocations.Upsert(txCtx, profit.NewAllocation(batch.ID, share)); err != nil {
				return err
			}
		}

		pending, err := s.allocations.FindPendingByBatchID(txCtx, batch.ID)
		if err != nil {
			return err
		}
		for i := range pending {
			alloc := &pending[i]
			if err := s.creditAllocation(txCtx, batch, alloc, rewardPool); err != nil {
				return err
			}
			credited = append(credited, creditedAllocation{
				allocationID: alloc.ID,
				userID:       alloc.UserID,
				amount:       alloc.ProfitAmount,
			})
		}

		// The cascade joins this transaction: an aborted approval rolls
		// commissions back with it, and a failed approval stays retryable
		// with every posting anchored on an idempotency reference.
		for _, c := range credited {
			if err := s.cascade.Distribute(txCtx, c.allocationID, c.userID, c.amount); err != nil {
				return err
			}
		}

		if err := s.accumulatePositionProfit(txCtx, active, credited); err != nil {
			return err
		}

		allocated, err := s.allocations.FindByBatchID(txCtx, batch.ID)
		if err != nil {
			return err
		}
		if err := batch.FinalApprove(adminID, totalInvestment, len(allocated)); err != nil {
			return err
		}
		if err := s.batches.Save(txCtx, batch); err != nil {
			return err
		}
		comment, err := profit.NewComment(batch.ID, adminID, profit.CommentApproval, note, "")
		if err != nil {
			return err
		}
		return s.comments.Create(txCtx, comment)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("profit batch approved",
		zap.String("batch_id", batch.ID.String()),
		zap.Int("recipients", len(credited)),
		zap.String("investor_pool", batch.InvestorPool().String()))

	s.notifyCredited(ctx, credited)
	return batch, nil
}

// creditAllocation posts one investor's dividend and freezes the row. The
// reference ties the posting to the allocation so a retry after a partial
// failure reuses the original transaction instead of paying twice.
func (s *AllocationService) creditAllocation(ctx context.Context, batch *profit.Batch, alloc *profit.Allocation, rewardPool *ledger.Account) error {
	userAccount, err := s.accounts.GetOrCreateUserMainAccount(ctx, alloc.UserID)
	if err != nil {
		return err
	}

	reference := fmt.Sprintf("profit_batch:%s:allocation:%s", batch.ID, alloc.ID)
	tx, err := s.poster.Post(ctx, appledger.PostParams{
		Type:            ledger.TypeDividend,
		Amount:          alloc.ProfitAmount,
		DebitAccountID:  userAccount.ID,
		CreditAccountID: rewardPool.ID,
		Reference:       reference,
		UserID:          &alloc.UserID,
	})
	if err != nil {
		return err
	}

	if err := alloc.MarkCredited(tx.ID); err != nil {
		return err
	}
	return s.allocations.Save(ctx, alloc)
}

// accumulatePositionProfit books each user's credited profit onto their
// active positions, apportioned by invested amount. Informational only;
// balances live in the ledger.
func (s *AllocationService) accumulatePositionProfit(ctx context.Context, active []investment.Position, credited []creditedAllocation) error {
	byUser := make(map[uuid.UUID][]*investment.Position)
	for i := range active {
		p := &active[i]
		byUser[p.UserID] = append(byUser[p.UserID], p)
	}

	for _, c := range credited {
		positions := byUser[c.userID]
		if len(positions) == 0 {
			continue
		}
		sort.Slice(positions, func(i, j int) bool {
			return positions[i].InvestedAmount.GreaterThan(positions[j].InvestedAmount)
		})

		total := decimal.Zero
		for _, p := range positions {
			total = total.Add(p.InvestedAmount)
		}
		remaining := c.amount
		for i, p := range positions {
			var slice decimal.Decimal
			if i == len(positions)-1 {
				slice = remaining
			} else {
				slice = c.amount.Mul(p.InvestedAmount).Div(total).RoundDown(2)
				remaining = remaining.Sub(slice)
			}
			if err := p.AccumulateProfit(slice); err != nil {
				return err
			}
			if err := s.positions.Save(ctx, p); err != nil {
				return err
			}
		}
	}
	return nil
}

// notifyCredited tells each recipient after the distribution committed so
// a notification cannot roll the postings back.
func (s *AllocationService) notifyCredited(ctx context.Context, credited []creditedAllocation) {
	for _, c := range credited {
		s.notifier.Notify(ctx, notification.Event{
			Type:    "PROFIT_CREDITED",
			UserID:  c.userID,
			Title:   "Profit credited",
			Message: fmt.Sprintf("A profit share of %s was credited to your account.", c.amount.StringFixed(2)),
		})
	}
}

// ListAllocations returns a batch's allocations for review and export
func (s *AllocationService) ListAllocations(ctx context.Context, batchID uuid.UUID) ([]profit.Allocation, error) {
	if _, err := s.batches.FindByID(ctx, batchID); err != nil {
		return nil, err
	}
	return s.allocations.FindByBatchID(ctx, batchID)
}

// groupInvestmentsByUser sums ACTIVE positions per user
func groupInvestmentsByUser(positions []investment.Position) []profit.UserInvestment {
	sums := make(map[uuid.UUID]decimal.Decimal)
	order := make([]uuid.UUID, 0)
	for _, p := range positions {
		if !p.IsActive() {
			continue
		}
		if _, seen := sums[p.UserID]; !seen {
			order = append(order, p.UserID)
		}
		sums[p.UserID] = sums[p.UserID].Add(p.InvestedAmount)
	}

	out := make([]profit.UserInvestment, 0, len(order))
	for _, userID := range order {
		out = append(out, profit.UserInvestment{UserID: userID, Amount: sums[userID]})
	}
	return out
}
