package ledger

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vestfolio/backend/internal/domain/ledger"
	"github.com/vestfolio/backend/internal/domain/shared"
)

// AccountService manages wallets, user main accounts and the fixed system
// accounts.
type AccountService struct {
	wallets  ledger.WalletRepository
	accounts ledger.AccountRepository
	entries  ledger.EntryRepository
	logger   *zap.Logger
}

// NewAccountService creates an account service
func NewAccountService(
	wallets ledger.WalletRepository,
	accounts ledger.AccountRepository,
	entries ledger.EntryRepository,
	logger *zap.Logger,
) *AccountService {
	return &AccountService{
		wallets:  wallets,
		accounts: accounts,
		entries:  entries,
		logger:   logger,
	}
}

// GetOrCreateUserMainAccount returns the user's main ledger account,
// creating the wallet and account on first use. Safe under concurrency:
// both inserts are keyed upserts, so racing callers converge on one row.
func (s *AccountService) GetOrCreateUserMainAccount(ctx context.Context, userID uuid.UUID) (*ledger.Account, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID is required")
	}

	wallet, err := s.wallets.CreateIfAbsent(ctx, ledger.NewUserWallet(userID))
	if err != nil {
		return nil, err
	}

	account, err := ledger.NewUserMainAccount(userID, wallet.ID)
	if err != nil {
		return nil, err
	}
	persisted, err := s.accounts.UpsertUserMain(ctx, account)
	if err != nil {
		return nil, err
	}
	if persisted.ID == account.ID {
		s.logger.Info("user main account created",
			zap.String("user_id", userID.String()),
			zap.String("account_id", persisted.ID.String()))
	}
	return persisted, nil
}

// GetSystemAccountByCode resolves one of the reserved system accounts. A
// missing system account is an operator setup fault, reported as
// LEDGER_MISCONFIGURED rather than a plain not-found.
func (s *AccountService) GetSystemAccountByCode(ctx context.Context, code string) (*ledger.Account, error) {
	if !ledger.IsSystemCode(code) {
		return nil, shared.NewDomainError("INVALID_CODE", "Code is not a reserved system account code")
	}
	account, err := s.accounts.FindSystemByCode(ctx, code)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Error("system ledger account missing", zap.String("code", code))
			return nil, shared.ErrLedgerMisconfigured
		}
		return nil, err
	}
	return account, nil
}

// GetAccount loads one account by id
func (s *AccountService) GetAccount(ctx context.Context, accountID uuid.UUID) (*ledger.Account, error) {
	return s.accounts.FindByID(ctx, accountID)
}

// GetBalance computes the account's balance from its entries
func (s *AccountService) GetBalance(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error) {
	if _, err := s.accounts.FindByID(ctx, accountID); err != nil {
		return decimal.Zero, err
	}
	return s.entries.BalanceOf(ctx, accountID)
}

// GetUserBalance computes the balance of the user's main account. A user
// with no account yet has a zero balance.
func (s *AccountService) GetUserBalance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	account, err := s.accounts.FindUserMain(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	return s.entries.BalanceOf(ctx, account.ID)
}

// ListEntries returns the account's entry history with pagination
func (s *AccountService) ListEntries(ctx context.Context, accountID uuid.UUID, filter ledger.EntryFilter) (shared.Paginated[ledger.Entry], error) {
	entries, total, err := s.entries.FindByAccountID(ctx, accountID, filter)
	if err != nil {
		return shared.Paginated[ledger.Entry]{}, err
	}
	return shared.NewPaginated(entries, total, filter.Page, filter.PageSize), nil
}

// VerifyLedgerIntegrity checks the ledger-wide invariant that total debits
// equal total credits. Exposed on the ops surface for monitoring.
func (s *AccountService) VerifyLedgerIntegrity(ctx context.Context) (bool, decimal.Decimal, error) {
	debits, credits, err := s.entries.Totals(ctx)
	if err != nil {
		return false, decimal.Zero, err
	}
	diff := debits.Sub(credits)
	if !diff.IsZero() {
		s.logger.Error("ledger out of balance",
			zap.String("debits", debits.String()),
			zap.String("credits", credits.String()))
	}
	return diff.IsZero(), diff, nil
}
