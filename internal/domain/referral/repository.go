package referral

import (
	"context"

	"github.com/google/uuid"
)

// ReferralRepository persists upline chain edges
type ReferralRepository interface {
	// FindUplineChain returns the user's ancestors ordered ascending by
	// level (closest first).
	FindUplineChain(ctx context.Context, userID uuid.UUID) ([]Referral, error)
	CreateEdges(ctx context.Context, edges []Referral) error
}

// CommissionEventRepository persists cascade idempotency anchors
type CommissionEventRepository interface {
	// CreateIfAbsent inserts the event unless one with the same
	// (source_type, source_id) exists. Returns the persisted event and
	// whether this call created it.
	CreateIfAbsent(ctx context.Context, event *CommissionEvent) (*CommissionEvent, bool, error)
	FindBySource(ctx context.Context, sourceType CommissionSourceType, sourceID uuid.UUID) (*CommissionEvent, error)
}

// CommissionRepository persists per-level commission records
type CommissionRepository interface {
	// UpsertGuard inserts the commission unless a row with the same
	// (event, upline, downline, level) key exists. Reports whether this
	// call created it.
	UpsertGuard(ctx context.Context, commission *Commission) (bool, error)
	FindByEventID(ctx context.Context, eventID uuid.UUID) ([]Commission, error)
	FindByUplineUserID(ctx context.Context, uplineUserID uuid.UUID) ([]Commission, error)
}

// LevelConfigRepository stores the operator-managed commission schedule
type LevelConfigRepository interface {
	// Find returns the stored schedule; shared.ErrNotFound when the
	// operator never configured one.
	Find(ctx context.Context) (LevelConfig, error)
	Save(ctx context.Context, config LevelConfig) error
}
