package investment

import (
	"context"

	"github.com/google/uuid"
)

// PlanRepository persists investment plans
type PlanRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Plan, error)
	FindActive(ctx context.Context) ([]Plan, error)
	Create(ctx context.Context, plan *Plan) error
	Save(ctx context.Context, plan *Plan) error
}

// PositionRepository persists investment positions
type PositionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Position, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]Position, error)
	// FindActive returns every ACTIVE position; the allocation algorithm
	// groups them by user.
	FindActive(ctx context.Context) ([]Position, error)
	Create(ctx context.Context, position *Position) error
	Save(ctx context.Context, position *Position) error
}
