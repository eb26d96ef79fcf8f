package ledger

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vestfolio/backend/internal/domain/shared"
)

// Direction is the side of a ledger entry
type Direction string

const (
	Debit  Direction = "DEBIT"
	Credit Direction = "CREDIT"
)

// IsValid checks if the direction is a valid Direction
func (d Direction) IsValid() bool {
	return d == Debit || d == Credit
}

// String returns the string representation of Direction
func (d Direction) String() string {
	return string(d)
}

// Entry is one leg of a balanced transaction. Entries are immutable once
// created; an account's balance is sum(DEBIT) - sum(CREDIT) over its
// non-deleted entries.
type Entry struct {
	shared.BaseEntity
	AccountID     uuid.UUID
	Direction     Direction
	Amount        decimal.Decimal
	TransactionID uuid.UUID
	UserID        *uuid.UUID
}

// NewEntry creates a ledger entry leg
func NewEntry(accountID uuid.UUID, direction Direction, amount decimal.Decimal, transactionID uuid.UUID, userID *uuid.UUID) (*Entry, error) {
	if accountID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACCOUNT", "Account ID cannot be empty")
	}
	if !direction.IsValid() {
		return nil, shared.NewDomainError("INVALID_DIRECTION", "Entry direction must be DEBIT or CREDIT")
	}
	if amount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Entry amount cannot be negative")
	}
	if transactionID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TRANSACTION", "Transaction ID cannot be empty")
	}
	return &Entry{
		BaseEntity:    shared.NewBaseEntity(),
		AccountID:     accountID,
		Direction:     direction,
		Amount:        amount,
		TransactionID: transactionID,
		UserID:        userID,
	}, nil
}

// Signed returns the entry amount signed by direction (DEBIT positive)
func (e *Entry) Signed() decimal.Decimal {
	if e.Direction == Debit {
		return e.Amount
	}
	return e.Amount.Neg()
}
