package investment

import (
	"github.com/shopspring/decimal"

	"github.com/vestfolio/backend/internal/domain/shared"
)

// Plan is an investment product users can subscribe to
type Plan struct {
	shared.BaseAggregateRoot
	Name         string
	MinAmount    decimal.Decimal
	MaxAmount    decimal.Decimal
	DurationDays int
	Active       bool
}

// NewPlan creates an investment plan
func NewPlan(name string, minAmount, maxAmount decimal.Decimal, durationDays int) (*Plan, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Plan name cannot be empty")
	}
	if minAmount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Minimum amount must be positive")
	}
	if maxAmount.LessThan(minAmount) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Maximum amount cannot be below minimum amount")
	}
	if durationDays <= 0 {
		return nil, shared.NewDomainError("INVALID_DURATION", "Plan duration must be positive")
	}
	return &Plan{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		MinAmount:         minAmount,
		MaxAmount:         maxAmount,
		DurationDays:      durationDays,
		Active:            true,
	}, nil
}

// Accepts reports whether amount fits the plan's subscription bounds
func (p *Plan) Accepts(amount decimal.Decimal) bool {
	return p.Active &&
		amount.GreaterThanOrEqual(p.MinAmount) &&
		amount.LessThanOrEqual(p.MaxAmount)
}
