package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vestfolio/backend/internal/domain/shared"
)

// WalletRepository persists wallets
type WalletRepository interface {
	// CreateIfAbsent inserts the wallet unless one already exists for the
	// same user; returns the persisted wallet either way.
	CreateIfAbsent(ctx context.Context, wallet *Wallet) (*Wallet, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*Wallet, error)
	Create(ctx context.Context, wallet *Wallet) error
}

// AccountRepository persists ledger accounts
type AccountRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)
	// FindByIDForUpdate loads the account under a row lock so a balance
	// check-then-post sequence serializes with concurrent postings.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Account, error)
	FindSystemByCode(ctx context.Context, code string) (*Account, error)
	FindUserMain(ctx context.Context, userID uuid.UUID) (*Account, error)
	// UpsertUserMain inserts the account unless one already exists for the
	// same (user, purpose); returns the persisted account either way.
	UpsertUserMain(ctx context.Context, account *Account) (*Account, error)
	Create(ctx context.Context, account *Account) error
	Save(ctx context.Context, account *Account) error
}

// EntryFilter narrows entry listings
type EntryFilter struct {
	shared.Filter
	Direction *Direction
}

// EntryRepository persists ledger entries
type EntryRepository interface {
	// CreatePair atomically inserts the debit and credit legs of one
	// transaction. Must be called inside an enclosing transaction.
	CreatePair(ctx context.Context, debit, credit *Entry) error
	// BalanceOf computes sum(DEBIT) - sum(CREDIT) for the account
	BalanceOf(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error)
	CountByTransactionID(ctx context.Context, transactionID uuid.UUID) (int64, error)
	FindByAccountID(ctx context.Context, accountID uuid.UUID, filter EntryFilter) ([]Entry, int64, error)
	// Totals returns the ledger-wide debit and credit sums; the two are
	// equal for a well-formed ledger.
	Totals(ctx context.Context) (debits, credits decimal.Decimal, err error)
}

// TransactionRepository persists transactions
type TransactionRepository interface {
	Create(ctx context.Context, tx *Transaction) error
	// CreateIfAbsent inserts the transaction unless one with the same
	// reference exists. Returns the persisted transaction and whether this
	// call created it.
	CreateIfAbsent(ctx context.Context, tx *Transaction) (*Transaction, bool, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Transaction, error)
	FindByReference(ctx context.Context, reference string) (*Transaction, error)
	Save(ctx context.Context, tx *Transaction) error
}
