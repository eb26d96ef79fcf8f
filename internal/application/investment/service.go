package investment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	appledger "github.com/vestfolio/backend/internal/application/ledger"
	"github.com/vestfolio/backend/internal/application/notification"
	"github.com/vestfolio/backend/internal/domain/investment"
	"github.com/vestfolio/backend/internal/domain/ledger"
	"github.com/vestfolio/backend/internal/domain/shared"
)

// CreatePlanParams carries an operator-defined investment plan
type CreatePlanParams struct {
	Name         string
	MinAmount    decimal.Decimal
	MaxAmount    decimal.Decimal
	DurationDays int
}

// Service manages investment plans and positions. Subscribing moves the
// amount from the user's main account into the investment holding account,
// so the user's withdrawable balance shrinks by exactly the stake.
type Service struct {
	plans     investment.PlanRepository
	positions investment.PositionRepository
	accounts  appledger.Accounts
	poster    appledger.Poster
	txManager shared.TxManager
	notifier  notification.Notifier
	logger    *zap.Logger
}

// NewService creates an investment service
func NewService(
	plans investment.PlanRepository,
	positions investment.PositionRepository,
	accounts appledger.Accounts,
	poster appledger.Poster,
	txManager shared.TxManager,
	notifier notification.Notifier,
	logger *zap.Logger,
) *Service {
	return &Service{
		plans:     plans,
		positions: positions,
		accounts:  accounts,
		poster:    poster,
		txManager: txManager,
		notifier:  notifier,
		logger:    logger,
	}
}

// CreatePlan registers a new plan
func (s *Service) CreatePlan(ctx context.Context, params CreatePlanParams) (*investment.Plan, error) {
	plan, err := investment.NewPlan(params.Name, params.MinAmount, params.MaxAmount, params.DurationDays)
	if err != nil {
		return nil, err
	}
	if err := s.plans.Create(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// ListPlans returns the active plans
func (s *Service) ListPlans(ctx context.Context) ([]investment.Plan, error) {
	return s.plans.FindActive(ctx)
}

// Subscribe opens a position, funding it from the user's main account.
// An insufficient balance rejects the subscription and leaves nothing
// behind.
func (s *Service) Subscribe(ctx context.Context, userID, planID uuid.UUID, amount decimal.Decimal) (*investment.Position, error) {
	var position *investment.Position
	err := s.txManager.WithinTx(ctx, func(txCtx context.Context) error {
		plan, err := s.plans.FindByID(txCtx, planID)
		if err != nil {
			return err
		}
		if !plan.Active {
			return shared.NewDomainError("INVALID_STATE", "Plan is no longer open for subscription")
		}
		position, err = investment.NewPosition(userID, plan, amount, time.Now())
		if err != nil {
			return err
		}

		userAccount, err := s.accounts.GetOrCreateUserMainAccount(txCtx, userID)
		if err != nil {
			return err
		}
		holding, err := s.accounts.GetSystemAccountByCode(txCtx, ledger.CodeInvestment)
		if err != nil {
			return err
		}

		_, err = s.poster.Post(txCtx, appledger.PostParams{
			Type:            ledger.TypeInvestment,
			Amount:          amount,
			DebitAccountID:  holding.ID,
			CreditAccountID: userAccount.ID,
			Reference:       fmt.Sprintf("investment:%s", position.ID),
			UserID:          &userID,
		})
		if err != nil {
			return err
		}
		return s.positions.Create(txCtx, position)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("position opened",
		zap.String("position_id", position.ID.String()),
		zap.String("user_id", userID.String()),
		zap.String("amount", amount.String()))
	return position, nil
}

// Redeem completes a matured position and returns the principal to the
// user's main account
func (s *Service) Redeem(ctx context.Context, positionID uuid.UUID) (*investment.Position, error) {
	var position *investment.Position
	err := s.txManager.WithinTx(ctx, func(txCtx context.Context) error {
		var err error
		position, err = s.positions.FindByID(txCtx, positionID)
		if err != nil {
			return err
		}
		if err := position.Complete(); err != nil {
			return err
		}

		userAccount, err := s.accounts.GetOrCreateUserMainAccount(txCtx, position.UserID)
		if err != nil {
			return err
		}
		holding, err := s.accounts.GetSystemAccountByCode(txCtx, ledger.CodeInvestment)
		if err != nil {
			return err
		}

		_, err = s.poster.Post(txCtx, appledger.PostParams{
			Type:            ledger.TypeTransfer,
			Amount:          position.InvestedAmount,
			DebitAccountID:  userAccount.ID,
			CreditAccountID: holding.ID,
			Reference:       fmt.Sprintf("investment_redeem:%s", position.ID),
			UserID:          &position.UserID,
		})
		if err != nil {
			return err
		}
		return s.positions.Save(txCtx, position)
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, notification.Event{
		Type:    "POSITION_REDEEMED",
		UserID:  position.UserID,
		Title:   "Position redeemed",
		Message: fmt.Sprintf("Your position of %s was redeemed to your main account.", position.InvestedAmount.StringFixed(2)),
	})
	return position, nil
}

// GetPosition returns a single position
func (s *Service) GetPosition(ctx context.Context, positionID uuid.UUID) (*investment.Position, error) {
	return s.positions.FindByID(ctx, positionID)
}

// ListPositions returns a user's positions
func (s *Service) ListPositions(ctx context.Context, userID uuid.UUID) ([]investment.Position, error) {
	return s.positions.FindByUserID(ctx, userID)
}
