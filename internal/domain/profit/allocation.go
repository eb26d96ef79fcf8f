package profit

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vestfolio/backend/internal/domain/shared"
)

// AllocationStatus is the payout state of one user's batch share
type AllocationStatus string

const (
	AllocationPending  AllocationStatus = "PENDING"
	AllocationCredited AllocationStatus = "CREDITED"
)

// Allocation is one (batch, user) proportional share of the investor pool.
// Keyed uniquely by (batch_id, user_id); immutable once credited.
type Allocation struct {
	shared.BaseAggregateRoot
	BatchID            uuid.UUID
	UserID             uuid.UUID
	InvestmentSnapshot decimal.Decimal
	SharePercent       decimal.Decimal
	ProfitAmount       decimal.Decimal
	Status             AllocationStatus
	TransactionID      *uuid.UUID
	CreditedAt         *time.Time
}

// NewAllocation creates a pending allocation from a computed share
func NewAllocation(batchID uuid.UUID, share Share) *Allocation {
	return &Allocation{
		BaseAggregateRoot:  shared.NewBaseAggregateRoot(),
		BatchID:            batchID,
		UserID:             share.UserID,
		InvestmentSnapshot: share.Investment,
		SharePercent:       share.SharePercent,
		ProfitAmount:       share.ProfitAmount,
		Status:             AllocationPending,
	}
}

// MarkCredited records the posted transaction and freezes the allocation
func (a *Allocation) MarkCredited(transactionID uuid.UUID) error {
	if a.Status == AllocationCredited {
		return shared.NewDomainError("INVALID_STATE", "Allocation is already credited")
	}
	now := time.Now()
	a.Status = AllocationCredited
	a.TransactionID = &transactionID
	a.CreditedAt = &now
	a.UpdatedAt = now
	a.IncrementVersion()
	return nil
}

// UserInvestment is one user's summed ACTIVE investment base
type UserInvestment struct {
	UserID uuid.UUID
	Amount decimal.Decimal
}

// Share is one user's computed slice of the investor pool
type Share struct {
	UserID       uuid.UUID
	Investment   decimal.Decimal
	SharePercent decimal.Decimal
	ProfitAmount decimal.Decimal
}

// ComputeShares splits the investor pool proportionally across the given
// investment sums. Users with non-positive sums are excluded; shares are
// truncated to cents and the rounding remainder is assigned to the largest
// investor, so the returned shares sum to the pool exactly.
func ComputeShares(investments []UserInvestment, investorPool decimal.Decimal) ([]Share, decimal.Decimal, error) {
	eligible := make([]UserInvestment, 0, len(investments))
	totalInvestment := decimal.Zero
	for _, inv := range investments {
		if inv.Amount.LessThanOrEqual(decimal.Zero) {
			continue
		}
		eligible = append(eligible, inv)
		totalInvestment = totalInvestment.Add(inv.Amount)
	}
	if totalInvestment.LessThanOrEqual(decimal.Zero) {
		return nil, decimal.Zero, shared.ErrNoEligibleInvestments
	}

	// Stable order so the remainder assignment is deterministic
	sort.Slice(eligible, func(i, j int) bool {
		if !eligible[i].Amount.Equal(eligible[j].Amount) {
			return eligible[i].Amount.GreaterThan(eligible[j].Amount)
		}
		return eligible[i].UserID.String() < eligible[j].UserID.String()
	})

	shares := make([]Share, 0, len(eligible))
	distributed := decimal.Zero
	for _, inv := range eligible {
		ratio := inv.Amount.Div(totalInvestment)
		profit := investorPool.Mul(ratio).RoundDown(2)
		if profit.LessThanOrEqual(decimal.Zero) {
			continue
		}
		shares = append(shares, Share{
			UserID:       inv.UserID,
			Investment:   inv.Amount,
			SharePercent: ratio.Mul(hundred).Round(4),
			ProfitAmount: profit,
		})
		distributed = distributed.Add(profit)
	}
	if len(shares) == 0 {
		return nil, decimal.Zero, shared.ErrNoEligibleInvestments
	}

	// Truncation remainder goes to the largest investor (first after sort)
	remainder := investorPool.Sub(distributed)
	if remainder.IsPositive() {
		shares[0].ProfitAmount = shares[0].ProfitAmount.Add(remainder)
	}

	return shares, totalInvestment, nil
}
