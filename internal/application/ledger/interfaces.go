package ledger

import (
	"context"

	"github.com/google/uuid"

	"github.com/vestfolio/backend/internal/domain/ledger"
)

// Poster is the posting surface other services depend on
type Poster interface {
	Post(ctx context.Context, params PostParams) (*ledger.Transaction, error)
}

// Accounts is the account resolution surface other services depend on
type Accounts interface {
	GetOrCreateUserMainAccount(ctx context.Context, userID uuid.UUID) (*ledger.Account, error)
	GetSystemAccountByCode(ctx context.Context, code string) (*ledger.Account, error)
}

var (
	_ Poster   = (*PostingService)(nil)
	_ Accounts = (*AccountService)(nil)
)
