package referral

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vestfolio/backend/internal/domain/shared"
)

// CommissionSourceType classifies what triggered a commission cascade
type CommissionSourceType string

const (
	SourceProfitDistribution CommissionSourceType = "PROFIT_DISTRIBUTION"
)

// CommissionEvent is the idempotency anchor for one cascade execution,
// uniquely keyed by (source_type, source_id). A duplicate key means the
// cascade already ran for that source and must be a no-op.
type CommissionEvent struct {
	shared.BaseEntity
	SourceType     CommissionSourceType
	SourceID       uuid.UUID
	DownlineUserID uuid.UUID
	Amount         decimal.Decimal
}

// NewCommissionEvent creates a cascade anchor for a credited allocation
func NewCommissionEvent(sourceType CommissionSourceType, sourceID, downlineUserID uuid.UUID, amount decimal.Decimal) (*CommissionEvent, error) {
	if sourceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Commission source ID is required")
	}
	if downlineUserID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "Downline user ID is required")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Commission base amount must be positive")
	}
	return &CommissionEvent{
		BaseEntity:     shared.NewBaseEntity(),
		SourceType:     sourceType,
		SourceID:       sourceID,
		DownlineUserID: downlineUserID,
		Amount:         amount,
	}, nil
}

// Commission records one level's payout within a cascade. Uniquely keyed
// by (event_id, upline_user_id, downline_user_id, level).
type Commission struct {
	shared.BaseEntity
	EventID        uuid.UUID
	UplineUserID   uuid.UUID
	DownlineUserID uuid.UUID
	Level          int
	Percent        decimal.Decimal
	Amount         decimal.Decimal
	TransactionID  uuid.UUID
}

// NewCommission creates one level's commission record
func NewCommission(eventID, uplineUserID, downlineUserID uuid.UUID, level int, percent, amount decimal.Decimal, transactionID uuid.UUID) (*Commission, error) {
	if eventID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Commission event ID is required")
	}
	if uplineUserID == uuid.Nil || downlineUserID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "Upline and downline user IDs are required")
	}
	if level < 1 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Commission level must be at least 1")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Commission amount must be positive")
	}
	return &Commission{
		BaseEntity:     shared.NewBaseEntity(),
		EventID:        eventID,
		UplineUserID:   uplineUserID,
		DownlineUserID: downlineUserID,
		Level:          level,
		Percent:        percent,
		Amount:         amount,
		TransactionID:  transactionID,
	}, nil
}
