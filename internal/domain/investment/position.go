package investment

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vestfolio/backend/internal/domain/shared"
)

// PositionStatus is the lifecycle state of an investment position
type PositionStatus string

const (
	PositionActive    PositionStatus = "ACTIVE"
	PositionCompleted PositionStatus = "COMPLETED"
	PositionCancelled PositionStatus = "CANCELLED"
)

// IsValid checks if the status is a valid PositionStatus
func (s PositionStatus) IsValid() bool {
	switch s {
	case PositionActive, PositionCompleted, PositionCancelled:
		return true
	}
	return false
}

// Position is a user's stake in a plan. The allocation algorithm reads
// positions and only ever mutates them to accumulate paid profit.
type Position struct {
	shared.BaseAggregateRoot
	UserID          uuid.UUID
	PlanID          uuid.UUID
	InvestedAmount  decimal.Decimal
	StartDate       time.Time
	EndDate         time.Time
	Status          PositionStatus
	TotalProfitPaid decimal.Decimal
}

// NewPosition creates an active position from a plan subscription
func NewPosition(userID uuid.UUID, plan *Plan, amount decimal.Decimal, startDate time.Time) (*Position, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if plan == nil {
		return nil, shared.NewDomainError("INVALID_PLAN", "Plan cannot be nil")
	}
	if !plan.Accepts(amount) {
		return nil, shared.NewDomainError("INVALID_AMOUNT",
			fmt.Sprintf("Amount %s is outside plan bounds [%s, %s]",
				amount.StringFixed(2), plan.MinAmount.StringFixed(2), plan.MaxAmount.StringFixed(2)))
	}
	return &Position{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
		PlanID:            plan.ID,
		InvestedAmount:    amount,
		StartDate:         startDate,
		EndDate:           startDate.AddDate(0, 0, plan.DurationDays),
		Status:            PositionActive,
		TotalProfitPaid:   decimal.Zero,
	}, nil
}

// AccumulateProfit adds a credited profit amount to the running total
func (p *Position) AccumulateProfit(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Profit amount cannot be negative")
	}
	p.TotalProfitPaid = p.TotalProfitPaid.Add(amount)
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// Complete transitions an active position to COMPLETED
func (p *Position) Complete() error {
	if p.Status != PositionActive {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot complete position in %s status", p.Status))
	}
	p.Status = PositionCompleted
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// Cancel transitions an active position to CANCELLED
func (p *Position) Cancel() error {
	if p.Status != PositionActive {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel position in %s status", p.Status))
	}
	p.Status = PositionCancelled
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// IsActive reports whether the position participates in allocations
func (p *Position) IsActive() bool {
	return p.Status == PositionActive
}
