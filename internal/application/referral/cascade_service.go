package referral

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	appledger "github.com/vestfolio/backend/internal/application/ledger"
	"github.com/vestfolio/backend/internal/application/notification"
	"github.com/vestfolio/backend/internal/domain/ledger"
	"github.com/vestfolio/backend/internal/domain/referral"
	"github.com/vestfolio/backend/internal/domain/shared"
)

// CascadeService pays multi-level referral commissions when a downline
// user receives profit. Each upline level is settled through the
// transaction manager, joining the caller's transaction when one is open,
// and one failing level never blocks the others. Every level posting
// carries an idempotency reference so reruns are harmless.
type CascadeService struct {
	referrals    referral.ReferralRepository
	events       referral.CommissionEventRepository
	commissions  referral.CommissionRepository
	levelConfigs referral.LevelConfigRepository
	accounts     appledger.Accounts
	poster       appledger.Poster
	txManager    shared.TxManager
	notifier     notification.Notifier
	metrics      CommissionMetrics
	logger       *zap.Logger
}

// CommissionMetrics counts settled commission levels
type CommissionMetrics interface {
	RecordCommission(ctx context.Context, level int)
}

// NewCascadeService creates a cascade service
func NewCascadeService(
	referrals referral.ReferralRepository,
	events referral.CommissionEventRepository,
	commissions referral.CommissionRepository,
	levelConfigs referral.LevelConfigRepository,
	accounts appledger.Accounts,
	poster appledger.Poster,
	txManager shared.TxManager,
	notifier notification.Notifier,
	logger *zap.Logger,
) *CascadeService {
	return &CascadeService{
		referrals:    referrals,
		events:       events,
		commissions:  commissions,
		levelConfigs: levelConfigs,
		accounts:     accounts,
		poster:       poster,
		txManager:    txManager,
		notifier:     notifier,
		logger:       logger,
	}
}

// SetMetrics attaches commission instruments. Optional; a nil receiver
// field disables recording.
func (s *CascadeService) SetMetrics(m CommissionMetrics) {
	s.metrics = m
}

// Distribute walks the downline user's upline chain and credits each
// configured level its percentage of the base amount, funded from the
// referral pool account. The (source_type, source_id) pair anchors the
// cascade: a rerun reuses the recorded event and every level settles at
// most once.
func (s *CascadeService) Distribute(ctx context.Context, sourceID, downlineUserID uuid.UUID, baseAmount decimal.Decimal) error {
	event, err := referral.NewCommissionEvent(referral.SourceProfitDistribution, sourceID, downlineUserID, baseAmount)
	if err != nil {
		return err
	}
	event, created, err := s.events.CreateIfAbsent(ctx, event)
	if err != nil {
		return err
	}
	if !created {
		s.logger.Debug("commission cascade resumed",
			zap.String("source_id", sourceID.String()),
			zap.String("event_id", event.ID.String()))
	}

	levels := s.resolveLevels(ctx)
	chain, err := s.referrals.FindUplineChain(ctx, downlineUserID)
	if err != nil {
		return err
	}
	if len(chain) == 0 {
		return nil
	}

	pool, err := s.accounts.GetSystemAccountByCode(ctx, ledger.CodeReferralPool)
	if err != nil {
		return err
	}

	for _, edge := range chain {
		percent, ok := levels.PercentFor(edge.Level)
		if !ok {
			continue
		}
		amount := event.Amount.Mul(percent).Div(decimal.NewFromInt(100)).RoundDown(2)
		if amount.LessThanOrEqual(decimal.Zero) {
			continue
		}

		if err := s.settleLevel(ctx, event, edge, percent, amount, pool); err != nil {
			// one upline failing must not starve the rest of the chain
			s.logger.Error("commission level failed",
				zap.String("event_id", event.ID.String()),
				zap.Int("level", edge.Level),
				zap.String("upline_user_id", edge.ParentUserID.String()),
				zap.Error(err))
		}
	}

	return nil
}

// settleLevel credits one upline inside a transaction scope
func (s *CascadeService) settleLevel(
	ctx context.Context,
	event *referral.CommissionEvent,
	edge referral.Referral,
	percent, amount decimal.Decimal,
	pool *ledger.Account,
) error {
	return s.txManager.WithinTx(ctx, func(txCtx context.Context) error {
		uplineAccount, err := s.accounts.GetOrCreateUserMainAccount(txCtx, edge.ParentUserID)
		if err != nil {
			return err
		}

		reference := fmt.Sprintf("profit_commission:%s:%d:%s", event.ID, edge.Level, edge.ParentUserID)
		tx, err := s.poster.Post(txCtx, appledger.PostParams{
			Type:            ledger.TypeCommission,
			Amount:          amount,
			DebitAccountID:  uplineAccount.ID,
			CreditAccountID: pool.ID,
			Reference:       reference,
			UserID:          &edge.ParentUserID,
		})
		if err != nil {
			return err
		}

		commission, err := referral.NewCommission(event.ID, edge.ParentUserID, event.DownlineUserID, edge.Level, percent, amount, tx.ID)
		if err != nil {
			return err
		}
		recorded, err := s.commissions.UpsertGuard(txCtx, commission)
		if err != nil {
			return err
		}
		if !recorded {
			return nil
		}
		if s.metrics != nil {
			s.metrics.RecordCommission(txCtx, edge.Level)
		}

		s.notifier.Notify(txCtx, notification.Event{
			Type:    "REFERRAL_COMMISSION",
			UserID:  edge.ParentUserID,
			Title:   "Referral commission received",
			Message: fmt.Sprintf("You earned a level %d commission of %s.", edge.Level, amount.StringFixed(2)),
		})
		return nil
	})
}

// resolveLevels loads the operator schedule, falling back to the built-in
// defaults when none is stored or the stored one is malformed.
func (s *CascadeService) resolveLevels(ctx context.Context) referral.LevelConfig {
	stored, err := s.levelConfigs.Find(ctx)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("referral level config load failed, using defaults", zap.Error(err))
		}
		return referral.DefaultLevels()
	}
	return referral.ResolveLevels(stored)
}

// Enroll records a new user under their referrer, materializing the full
// upline chain up to the configured depth.
func (s *CascadeService) Enroll(ctx context.Context, userID, parentID uuid.UUID) error {
	existing, err := s.referrals.FindUplineChain(ctx, userID)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return shared.NewDomainError("ALREADY_EXISTS", "User already has a referrer")
	}

	parentChain, err := s.referrals.FindUplineChain(ctx, parentID)
	if err != nil {
		return err
	}
	edges, err := referral.BuildChain(userID, parentID, parentChain, s.resolveLevels(ctx).MaxDepth())
	if err != nil {
		return err
	}
	return s.referrals.CreateEdges(ctx, edges)
}

// GetUplineChain returns the user's materialized referrer chain
func (s *CascadeService) GetUplineChain(ctx context.Context, userID uuid.UUID) ([]referral.Referral, error) {
	return s.referrals.FindUplineChain(ctx, userID)
}

// GetCommissions lists the commissions a user earned as an upline
func (s *CascadeService) GetCommissions(ctx context.Context, uplineUserID uuid.UUID) ([]referral.Commission, error) {
	return s.commissions.FindByUplineUserID(ctx, uplineUserID)
}

// UpdateLevels replaces the operator commission schedule
func (s *CascadeService) UpdateLevels(ctx context.Context, config referral.LevelConfig) error {
	if err := config.Validate(); err != nil {
		return err
	}
	return s.levelConfigs.Save(ctx, config)
}

// GetLevels returns the effective commission schedule
func (s *CascadeService) GetLevels(ctx context.Context) referral.LevelConfig {
	return s.resolveLevels(ctx)
}
