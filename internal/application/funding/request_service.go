package funding

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	appledger "github.com/vestfolio/backend/internal/application/ledger"
	"github.com/vestfolio/backend/internal/application/notification"
	"github.com/vestfolio/backend/internal/domain/funding"
	"github.com/vestfolio/backend/internal/domain/ledger"
	"github.com/vestfolio/backend/internal/domain/shared"
)

// SubmitParams carries a user's funding request
type SubmitParams struct {
	UserID          uuid.UUID
	Kind            funding.RequestKind
	Amount          decimal.Decimal
	Currency        string
	Note            string
	PaymentProofURL string
}

// RequestService runs the two-stage funding workflow. Ledger entries are
// posted exactly once, inside the admin approval transaction; accountant
// decisions and rejections never touch balances.
type RequestService struct {
	requests  funding.RequestRepository
	accounts  appledger.Accounts
	poster    appledger.Poster
	txManager shared.TxManager
	notifier  notification.Notifier
	metrics   DecisionMetrics
	logger    *zap.Logger
}

// DecisionMetrics counts final funding decisions
type DecisionMetrics interface {
	RecordFundingDecision(ctx context.Context, kind, decision string)
}

// NewRequestService creates a funding request service
func NewRequestService(
	requests funding.RequestRepository,
	accounts appledger.Accounts,
	poster appledger.Poster,
	txManager shared.TxManager,
	notifier notification.Notifier,
	logger *zap.Logger,
) *RequestService {
	return &RequestService{
		requests:  requests,
		accounts:  accounts,
		poster:    poster,
		txManager: txManager,
		notifier:  notifier,
		logger:    logger,
	}
}

// SetMetrics attaches funding instruments. Optional; a nil receiver field
// disables recording.
func (s *RequestService) SetMetrics(m DecisionMetrics) {
	s.metrics = m
}

// Submit records a new funding request in the accountant queue
func (s *RequestService) Submit(ctx context.Context, params SubmitParams) (*funding.Request, error) {
	request, err := funding.NewRequest(params.UserID, params.Kind, params.Amount, params.Currency, params.Note, params.PaymentProofURL)
	if err != nil {
		return nil, err
	}
	if err := s.requests.Create(ctx, request); err != nil {
		return nil, err
	}

	s.logger.Info("funding request submitted",
		zap.String("request_id", request.ID.String()),
		zap.String("kind", string(request.Kind)),
		zap.String("amount", request.Amount.String()))
	return request, nil
}

// Get loads one request
func (s *RequestService) Get(ctx context.Context, id uuid.UUID) (*funding.Request, error) {
	return s.requests.FindByID(ctx, id)
}

// List returns requests matching the filter with pagination
func (s *RequestService) List(ctx context.Context, filter funding.RequestFilter) (shared.Paginated[funding.Request], error) {
	requests, total, err := s.requests.List(ctx, filter)
	if err != nil {
		return shared.Paginated[funding.Request]{}, err
	}
	return shared.NewPaginated(requests, total, filter.Page, filter.PageSize), nil
}

// AccountantReview applies the first-stage decision
func (s *RequestService) AccountantReview(ctx context.Context, requestID, accountantID uuid.UUID, approve bool, note string) (*funding.Request, error) {
	var request *funding.Request
	err := s.txManager.WithinTx(ctx, func(txCtx context.Context) error {
		var err error
		request, err = s.requests.FindByIDForUpdate(txCtx, requestID)
		if err != nil {
			return err
		}
		if approve {
			err = request.AccountantApprove(accountantID, note)
		} else {
			err = request.AccountantReject(accountantID, note)
		}
		if err != nil {
			return err
		}
		return s.requests.Save(txCtx, request)
	})
	if err != nil {
		return nil, err
	}

	if !approve {
		s.notifyDecision(ctx, request, "rejected")
	}
	return request, nil
}

// AdminFinalize applies the second-stage decision. Approval posts the
// ledger movement and the state change in one transaction: a failed
// posting, including an insufficient withdrawal balance, leaves the
// request in PENDING_ADMIN_FINAL untouched.
func (s *RequestService) AdminFinalize(ctx context.Context, requestID, adminID uuid.UUID, approve bool, note string) (*funding.Request, error) {
	var request *funding.Request
	err := s.txManager.WithinTx(ctx, func(txCtx context.Context) error {
		var err error
		request, err = s.requests.FindByIDForUpdate(txCtx, requestID)
		if err != nil {
			return err
		}

		if !approve {
			if err := request.AdminReject(adminID, note); err != nil {
				return err
			}
			return s.requests.Save(txCtx, request)
		}

		if !request.Status.CanAdminFinalize() {
			return shared.NewDomainError("INVALID_STATE", "Funding request is not awaiting admin finalization")
		}
		tx, err := s.post(txCtx, request)
		if err != nil {
			return err
		}
		if err := request.AdminApprove(adminID, note, tx.ID); err != nil {
			return err
		}
		return s.requests.Save(txCtx, request)
	})
	if err != nil {
		return nil, err
	}

	decision := "rejected"
	if approve {
		decision = "approved"
	}
	if s.metrics != nil {
		s.metrics.RecordFundingDecision(ctx, string(request.Kind), decision)
	}
	s.notifyDecision(ctx, request, decision)
	return request, nil
}

// post writes the balanced pair for an approved request. Deposits debit
// the user and credit the liability account; withdrawals reverse the pair,
// which is where the balance check bites.
func (s *RequestService) post(ctx context.Context, request *funding.Request) (*ledger.Transaction, error) {
	userAccount, err := s.accounts.GetOrCreateUserMainAccount(ctx, request.UserID)
	if err != nil {
		return nil, err
	}
	liability, err := s.accounts.GetSystemAccountByCode(ctx, ledger.CodeLiability)
	if err != nil {
		return nil, err
	}

	params := appledger.PostParams{
		Amount:    request.Amount,
		Reference: fmt.Sprintf("funding_request:%s", request.ID),
		UserID:    &request.UserID,
	}
	switch request.Kind {
	case funding.KindDeposit:
		params.Type = ledger.TypeDeposit
		params.DebitAccountID = userAccount.ID
		params.CreditAccountID = liability.ID
	case funding.KindWithdrawal:
		params.Type = ledger.TypeWithdrawal
		params.DebitAccountID = liability.ID
		params.CreditAccountID = userAccount.ID
	default:
		return nil, shared.NewDomainError("INVALID_INPUT", "Funding request kind is not postable")
	}
	return s.poster.Post(ctx, params)
}

// ConfirmPayout records the external payout of an approved withdrawal
func (s *RequestService) ConfirmPayout(ctx context.Context, requestID, operatorID uuid.UUID, payoutRef string) (*funding.Request, error) {
	var request *funding.Request
	err := s.txManager.WithinTx(ctx, func(txCtx context.Context) error {
		var err error
		request, err = s.requests.FindByIDForUpdate(txCtx, requestID)
		if err != nil {
			return err
		}
		if err := request.ConfirmPayout(operatorID, payoutRef); err != nil {
			return err
		}
		return s.requests.Save(txCtx, request)
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, notification.Event{
		Type:    "WITHDRAWAL_PAID",
		UserID:  request.UserID,
		Title:   "Withdrawal sent",
		Message: fmt.Sprintf("Your withdrawal of %s was sent (ref %s).", request.Amount.StringFixed(2), payoutRef),
	})
	return request, nil
}

func (s *RequestService) notifyDecision(ctx context.Context, request *funding.Request, verb string) {
	s.notifier.Notify(ctx, notification.Event{
		Type:    fmt.Sprintf("FUNDING_%s_%s", request.Kind, strings.ToUpper(verb)),
		UserID:  request.UserID,
		Title:   fmt.Sprintf("%s %s", request.Kind, verb),
		Message: fmt.Sprintf("Your %s request of %s was %s.", request.Kind, request.Amount.StringFixed(2), verb),
	})
}
