package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vestfolio/backend/internal/domain/ledger"
	"github.com/vestfolio/backend/internal/domain/shared"
)

// PostParams describes one balanced posting: debit one account, credit
// another, for the same amount. Reference, when set, is an idempotency
// key; posting the same reference twice is a no-op returning the first
// transaction.
type PostParams struct {
	Type            ledger.TransactionType
	Amount          decimal.Decimal
	DebitAccountID  uuid.UUID
	CreditAccountID uuid.UUID
	Reference       string
	UserID          *uuid.UUID
}

// PostingService is the single write path into the ledger. Every balance
// movement in the system goes through Post; nothing else inserts entries.
type PostingService struct {
	accounts     ledger.AccountRepository
	entries      ledger.EntryRepository
	transactions ledger.TransactionRepository
	metrics      PostingMetrics
	logger       *zap.Logger
}

// PostingMetrics records completed postings
type PostingMetrics interface {
	RecordPosting(ctx context.Context, txType string, amount float64)
}

// NewPostingService creates a posting service
func NewPostingService(
	accounts ledger.AccountRepository,
	entries ledger.EntryRepository,
	transactions ledger.TransactionRepository,
	logger *zap.Logger,
) *PostingService {
	return &PostingService{
		accounts:     accounts,
		entries:      entries,
		transactions: transactions,
		logger:       logger,
	}
}

// SetMetrics attaches posting instruments. Optional; a nil receiver field
// disables recording.
func (s *PostingService) SetMetrics(m PostingMetrics) {
	s.metrics = m
}

// Post writes one balanced debit/credit pair and completes its transaction.
// Must be called inside an enclosing database transaction; callers wrap it
// with TxManager.WithinTx together with their own state changes.
//
// The credit account must hold at least the posted amount unless it carries
// a reserved system code, which may go arbitrarily negative.
func (s *PostingService) Post(ctx context.Context, params PostParams) (*ledger.Transaction, error) {
	if params.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Posting amount must be positive")
	}
	if params.DebitAccountID == params.CreditAccountID {
		return nil, shared.NewDomainError("INVALID_INPUT", "Debit and credit accounts must differ")
	}

	tx, created, err := s.createTransaction(ctx, params)
	if err != nil {
		return nil, err
	}
	if !created {
		// Reference seen before. If both legs exist the posting already
		// happened and this call is a replay.
		count, err := s.entries.CountByTransactionID(ctx, tx.ID)
		if err != nil {
			return nil, err
		}
		if count >= 2 {
			s.logger.Debug("posting replayed, reference already settled",
				zap.String("reference", params.Reference),
				zap.String("transaction_id", tx.ID.String()))
			return tx, nil
		}
	}

	debitAccount, creditAccount, err := s.lockAccounts(ctx, params.DebitAccountID, params.CreditAccountID)
	if err != nil {
		return nil, err
	}

	if !ledger.IsSystemCode(creditAccount.Code) {
		balance, err := s.entries.BalanceOf(ctx, creditAccount.ID)
		if err != nil {
			return nil, err
		}
		if balance.LessThan(params.Amount) {
			return nil, shared.ErrInsufficientBalance
		}
	}

	debit, err := ledger.NewEntry(debitAccount.ID, ledger.Debit, params.Amount, tx.ID, params.UserID)
	if err != nil {
		return nil, err
	}
	credit, err := ledger.NewEntry(creditAccount.ID, ledger.Credit, params.Amount, tx.ID, params.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.entries.CreatePair(ctx, debit, credit); err != nil {
		return nil, err
	}

	tx.Complete()
	if err := s.transactions.Save(ctx, tx); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		amount, _ := params.Amount.Float64()
		s.metrics.RecordPosting(ctx, string(params.Type), amount)
	}

	s.logger.Info("ledger posting completed",
		zap.String("transaction_id", tx.ID.String()),
		zap.String("type", string(params.Type)),
		zap.String("amount", params.Amount.String()),
		zap.String("debit_account", debitAccount.Code),
		zap.String("credit_account", creditAccount.Code))

	return tx, nil
}

func (s *PostingService) createTransaction(ctx context.Context, params PostParams) (*ledger.Transaction, bool, error) {
	if params.Reference == "" {
		tx, err := ledger.NewTransaction(params.Type, params.Amount, params.UserID)
		if err != nil {
			return nil, false, err
		}
		if err := s.transactions.Create(ctx, tx); err != nil {
			return nil, false, err
		}
		return tx, true, nil
	}

	tx, err := ledger.NewReferencedTransaction(params.Type, params.Amount, params.Reference, params.UserID)
	if err != nil {
		return nil, false, err
	}
	return s.transactions.CreateIfAbsent(ctx, tx)
}

// lockAccounts acquires row locks in a stable order so two concurrent
// postings touching the same pair cannot deadlock.
func (s *PostingService) lockAccounts(ctx context.Context, debitID, creditID uuid.UUID) (*ledger.Account, *ledger.Account, error) {
	first, second := debitID, creditID
	if second.String() < first.String() {
		first, second = second, first
	}

	firstAcc, err := s.accounts.FindByIDForUpdate(ctx, first)
	if err != nil {
		return nil, nil, err
	}
	secondAcc, err := s.accounts.FindByIDForUpdate(ctx, second)
	if err != nil {
		return nil, nil, err
	}

	if firstAcc.ID == debitID {
		return firstAcc, secondAcc, nil
	}
	return secondAcc, firstAcc, nil
}
