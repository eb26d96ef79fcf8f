package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vestfolio/backend/internal/domain/shared"
	"github.com/vestfolio/backend/internal/domain/shared/valueobject"
)

// TransactionType is the business-level classification of a transaction
type TransactionType string

const (
	TypeDeposit    TransactionType = "DEPOSIT"
	TypeWithdrawal TransactionType = "WITHDRAWAL"
	TypeInvestment TransactionType = "INVESTMENT"
	TypeDividend   TransactionType = "DIVIDEND"
	TypeTransfer   TransactionType = "TRANSFER"
	TypeCommission TransactionType = "COMMISSION"
)

// IsValid checks if the type is a valid TransactionType
func (t TransactionType) IsValid() bool {
	switch t {
	case TypeDeposit, TypeWithdrawal, TypeInvestment, TypeDividend, TypeTransfer, TypeCommission:
		return true
	}
	return false
}

// TransactionStatus is the lifecycle state of a transaction
type TransactionStatus string

const (
	TxStatusPending   TransactionStatus = "PENDING"
	TxStatusCompleted TransactionStatus = "COMPLETED"
	TxStatusFailed    TransactionStatus = "FAILED"
)

// Transaction is a business-level event owning exactly one balanced pair of
// ledger entries. Reference carries an optional idempotency key preventing
// duplicate postings for the same logical event.
type Transaction struct {
	shared.BaseAggregateRoot
	Type        TransactionType
	Amount      decimal.Decimal
	Currency    valueobject.Currency
	Status      TransactionStatus
	Reference   *string
	UserID      *uuid.UUID
	CompletedAt *time.Time
}

// NewTransaction creates a pending transaction
func NewTransaction(txType TransactionType, amount decimal.Decimal, userID *uuid.UUID) (*Transaction, error) {
	if !txType.IsValid() {
		return nil, shared.NewDomainError("INVALID_TYPE", "Transaction type is not valid")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Transaction amount must be positive")
	}
	return &Transaction{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Type:              txType,
		Amount:            amount,
		Currency:          valueobject.DefaultCurrency,
		Status:            TxStatusPending,
		UserID:            userID,
	}, nil
}

// NewReferencedTransaction creates a pending transaction carrying an
// idempotency reference
func NewReferencedTransaction(txType TransactionType, amount decimal.Decimal, reference string, userID *uuid.UUID) (*Transaction, error) {
	if reference == "" {
		return nil, shared.NewDomainError("INVALID_REFERENCE", "Idempotency reference cannot be empty")
	}
	tx, err := NewTransaction(txType, amount, userID)
	if err != nil {
		return nil, err
	}
	tx.Reference = &reference
	return tx, nil
}

// Complete marks the transaction completed once both legs are posted
func (t *Transaction) Complete() {
	now := time.Now()
	t.Status = TxStatusCompleted
	t.CompletedAt = &now
	t.UpdatedAt = now
	t.IncrementVersion()
}

// IsCompleted reports whether the transaction has both legs posted
func (t *Transaction) IsCompleted() bool {
	return t.Status == TxStatusCompleted
}
