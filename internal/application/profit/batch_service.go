package profit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vestfolio/backend/internal/application/notification"
	"github.com/vestfolio/backend/internal/domain/profit"
	"github.com/vestfolio/backend/internal/domain/shared"
)

// CreateBatchParams carries an accountant's profit submission
type CreateBatchParams struct {
	PeriodType    profit.PeriodType
	PeriodStart   time.Time
	PeriodEnd     time.Time
	TotalProfit   decimal.Decimal
	SubmittedBy   uuid.UUID
	Note          string
	AttachmentURL string
}

// RejectBatchParams carries an admin's rejection decision
type RejectBatchParams struct {
	BatchID             uuid.UUID
	FinalizedBy         uuid.UUID
	Mode                profit.RejectMode
	AdjustedTotalProfit *decimal.Decimal
	Note                string
}

// ResubmitBatchParams carries an accountant's revised submission
type ResubmitBatchParams struct {
	BatchID       uuid.UUID
	By            uuid.UUID
	TotalProfit   *decimal.Decimal
	Note          string
	AttachmentURL string
}

// BatchService manages the profit batch approval workflow outside of the
// allocation itself: submission, listing, rejection and resubmission.
type BatchService struct {
	batches   profit.BatchRepository
	comments  profit.CommentRepository
	txManager shared.TxManager
	notifier  notification.Notifier
	logger    *zap.Logger
}

// NewBatchService creates a batch service
func NewBatchService(
	batches profit.BatchRepository,
	comments profit.CommentRepository,
	txManager shared.TxManager,
	notifier notification.Notifier,
	logger *zap.Logger,
) *BatchService {
	return &BatchService{
		batches:   batches,
		comments:  comments,
		txManager: txManager,
		notifier:  notifier,
		logger:    logger,
	}
}

// Create records a new profit batch awaiting admin finalization
func (s *BatchService) Create(ctx context.Context, params CreateBatchParams) (*profit.Batch, error) {
	batch, err := profit.NewBatch(params.PeriodType, params.PeriodStart, params.PeriodEnd, params.TotalProfit, params.SubmittedBy)
	if err != nil {
		return nil, err
	}
	batch.SubmittedNote = params.Note
	batch.SubmissionAttachmentURL = params.AttachmentURL

	err = s.txManager.WithinTx(ctx, func(txCtx context.Context) error {
		if err := s.batches.Create(txCtx, batch); err != nil {
			return err
		}
		comment, err := profit.NewComment(batch.ID, params.SubmittedBy, profit.CommentSubmission, params.Note, params.AttachmentURL)
		if err != nil {
			return err
		}
		return s.comments.Create(txCtx, comment)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("profit batch submitted",
		zap.String("batch_id", batch.ID.String()),
		zap.String("period_type", string(batch.PeriodType)),
		zap.String("total_profit", batch.TotalProfit.String()))
	return batch, nil
}

// Get loads one batch
func (s *BatchService) Get(ctx context.Context, id uuid.UUID) (*profit.Batch, error) {
	return s.batches.FindByID(ctx, id)
}

// List returns batches matching the filter with pagination
func (s *BatchService) List(ctx context.Context, filter profit.BatchFilter) (shared.Paginated[profit.Batch], error) {
	batches, total, err := s.batches.List(ctx, filter)
	if err != nil {
		return shared.Paginated[profit.Batch]{}, err
	}
	return shared.NewPaginated(batches, total, filter.Page, filter.PageSize), nil
}

// GetTimeline returns the batch's comment history in submission order
func (s *BatchService) GetTimeline(ctx context.Context, batchID uuid.UUID) ([]profit.Comment, error) {
	if _, err := s.batches.FindByID(ctx, batchID); err != nil {
		return nil, err
	}
	return s.comments.FindByBatchID(ctx, batchID)
}

// FinalReject applies an admin rejection, optionally adjusting the
// submitted figure, and notifies the submitting accountant.
func (s *BatchService) FinalReject(ctx context.Context, params RejectBatchParams) (*profit.Batch, error) {
	var batch *profit.Batch
	err := s.txManager.WithinTx(ctx, func(txCtx context.Context) error {
		var err error
		batch, err = s.batches.FindByIDForUpdate(txCtx, params.BatchID)
		if err != nil {
			return err
		}
		if err := batch.FinalReject(params.FinalizedBy, params.Mode, params.AdjustedTotalProfit); err != nil {
			return err
		}
		if err := s.batches.Save(txCtx, batch); err != nil {
			return err
		}
		kind := profit.CommentRequestChanges
		if params.Mode == profit.RejectFinal {
			kind = profit.CommentFinalReject
		}
		comment, err := profit.NewComment(batch.ID, params.FinalizedBy, kind, params.Note, "")
		if err != nil {
			return err
		}
		return s.comments.Create(txCtx, comment)
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, notification.Event{
		Type:    "PROFIT_BATCH_REJECTED",
		UserID:  batch.SubmittedBy,
		Title:   "Profit batch rejected",
		Message: fmt.Sprintf("Batch for period %s was rejected (%s).", batch.PeriodStart.Format("2006-01-02"), params.Mode),
	})
	return batch, nil
}

// Resubmit returns a rejected batch to the admin queue with revised figures
func (s *BatchService) Resubmit(ctx context.Context, params ResubmitBatchParams) (*profit.Batch, error) {
	var batch *profit.Batch
	err := s.txManager.WithinTx(ctx, func(txCtx context.Context) error {
		var err error
		batch, err = s.batches.FindByIDForUpdate(txCtx, params.BatchID)
		if err != nil {
			return err
		}
		if err := batch.Resubmit(params.By, params.TotalProfit, params.Note, params.AttachmentURL); err != nil {
			return err
		}
		if err := s.batches.Save(txCtx, batch); err != nil {
			return err
		}
		comment, err := profit.NewComment(batch.ID, params.By, profit.CommentResubmit, params.Note, params.AttachmentURL)
		if err != nil {
			return err
		}
		return s.comments.Create(txCtx, comment)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("profit batch resubmitted",
		zap.String("batch_id", batch.ID.String()),
		zap.Int("revision", batch.RevisionCount))
	return batch, nil
}
