package profit

import (
	"context"

	"github.com/google/uuid"

	"github.com/vestfolio/backend/internal/domain/shared"
)

// BatchFilter narrows batch listings
type BatchFilter struct {
	shared.Filter
	Status *BatchStatus
}

// BatchRepository persists profit batches
type BatchRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Batch, error)
	// FindByIDForUpdate loads the batch under a row lock so concurrent
	// finalizations are mutually exclusive.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Batch, error)
	List(ctx context.Context, filter BatchFilter) ([]Batch, int64, error)
	Create(ctx context.Context, batch *Batch) error
	Save(ctx context.Context, batch *Batch) error
}

// AllocationRepository persists profit allocations
type AllocationRepository interface {
	// Upsert inserts the allocation or, when a (batch, user) row already
	// exists and is still pending, refreshes its computed snapshot.
	// Credited rows are never touched.
	Upsert(ctx context.Context, allocation *Allocation) error
	FindByBatchID(ctx context.Context, batchID uuid.UUID) ([]Allocation, error)
	FindPendingByBatchID(ctx context.Context, batchID uuid.UUID) ([]Allocation, error)
	Save(ctx context.Context, allocation *Allocation) error
}

// CommentRepository persists batch timeline comments
type CommentRepository interface {
	Create(ctx context.Context, comment *Comment) error
	FindByBatchID(ctx context.Context, batchID uuid.UUID) ([]Comment, error)
}
