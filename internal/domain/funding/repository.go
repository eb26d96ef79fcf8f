package funding

import (
	"context"

	"github.com/google/uuid"

	"github.com/vestfolio/backend/internal/domain/shared"
)

// RequestFilter narrows funding request listings
type RequestFilter struct {
	shared.Filter
	Kind   *RequestKind
	Status *RequestStatus
	UserID *uuid.UUID
}

// RequestRepository persists funding requests
type RequestRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Request, error)
	// FindByIDForUpdate loads the request under a row lock so a decision
	// is applied at most once.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Request, error)
	List(ctx context.Context, filter RequestFilter) ([]Request, int64, error)
	Create(ctx context.Context, request *Request) error
	Save(ctx context.Context, request *Request) error
}
