package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vestfolio/backend/internal/application/audit"
	"github.com/vestfolio/backend/internal/domain/ledger"
	"github.com/vestfolio/backend/internal/domain/shared"
)

// ManualPostParams describes an operator-initiated posting between two
// explicit accounts. TargetUserID, when set, requires one of the two
// accounts to belong to that user.
type ManualPostParams struct {
	Action          string
	DebitAccountID  uuid.UUID
	CreditAccountID uuid.UUID
	Amount          decimal.Decimal
	Reference       string
	Note            string
	ActorID         uuid.UUID
	TargetUserID    *uuid.UUID
}

// ManualPostingService lets operators move value between arbitrary ledger
// accounts. The posting runs through the same engine as every other
// movement, so all balance invariants hold; every call leaves an audit
// record naming the operator.
type ManualPostingService struct {
	accounts  ledger.AccountRepository
	poster    Poster
	txManager shared.TxManager
	audit     audit.Logger
	logger    *zap.Logger
}

// NewManualPostingService creates a manual posting service
func NewManualPostingService(
	accounts ledger.AccountRepository,
	poster Poster,
	txManager shared.TxManager,
	auditLogger audit.Logger,
	logger *zap.Logger,
) *ManualPostingService {
	return &ManualPostingService{
		accounts:  accounts,
		poster:    poster,
		txManager: txManager,
		audit:     auditLogger,
		logger:    logger,
	}
}

// Post executes one manual balanced posting
func (s *ManualPostingService) Post(ctx context.Context, params ManualPostParams) (*ledger.Transaction, error) {
	var tx *ledger.Transaction
	err := s.txManager.WithinTx(ctx, func(txCtx context.Context) error {
		if params.TargetUserID != nil {
			if err := s.checkOwnership(txCtx, params); err != nil {
				return err
			}
		}

		var err error
		tx, err = s.poster.Post(txCtx, PostParams{
			Type:            ledger.TypeTransfer,
			Amount:          params.Amount,
			DebitAccountID:  params.DebitAccountID,
			CreditAccountID: params.CreditAccountID,
			Reference:       params.Reference,
			UserID:          params.TargetUserID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	metadata := map[string]string{
		"debit_account_id":  params.DebitAccountID.String(),
		"credit_account_id": params.CreditAccountID.String(),
		"amount":            params.Amount.String(),
	}
	if params.Note != "" {
		metadata["note"] = params.Note
	}
	if params.TargetUserID != nil {
		metadata["target_user_id"] = params.TargetUserID.String()
	}
	s.audit.Log(ctx, audit.Record{
		Action:     params.Action,
		Resource:   "transaction",
		ResourceID: tx.ID.String(),
		ActorID:    params.ActorID,
		Metadata:   metadata,
	})
	return tx, nil
}

// checkOwnership requires one side of the posting to be the target user's
// account, so a user-funds adjustment cannot silently move value between
// unrelated accounts.
func (s *ManualPostingService) checkOwnership(ctx context.Context, params ManualPostParams) error {
	for _, id := range []uuid.UUID{params.DebitAccountID, params.CreditAccountID} {
		account, err := s.accounts.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if account.UserID != nil && *account.UserID == *params.TargetUserID {
			return nil
		}
	}
	return shared.NewDomainError("INVALID_INPUT", "Neither account belongs to the target user")
}
