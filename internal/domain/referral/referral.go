package referral

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/vestfolio/backend/internal/domain/shared"
)

// Referral is one precomputed edge in a user's upline chain: at the given
// level above user_id sits parent_user_id. The full chain is materialized
// at signup (one row per ancestor per level) so commission cascades never
// walk a graph at payout time.
type Referral struct {
	shared.BaseEntity
	UserID       uuid.UUID
	ParentUserID uuid.UUID
	Level        int
	Path         string
}

// NewReferral creates one upline edge
func NewReferral(userID, parentUserID uuid.UUID, level int, path string) (*Referral, error) {
	if userID == uuid.Nil || parentUserID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User and parent IDs are required")
	}
	if userID == parentUserID {
		return nil, shared.NewDomainError("INVALID_INPUT", "A user cannot refer themselves")
	}
	if level < 1 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Referral level must be at least 1")
	}
	return &Referral{
		BaseEntity:   shared.NewBaseEntity(),
		UserID:       userID,
		ParentUserID: parentUserID,
		Level:        level,
		Path:         path,
	}, nil
}

// BuildChain materializes the upline edges for a newly referred user given
// the direct parent's own chain (ordered ascending by level). It rejects
// any edge set that would introduce a cycle.
func BuildChain(userID, parentID uuid.UUID, parentChain []Referral, maxDepth int) ([]Referral, error) {
	if userID == parentID {
		return nil, shared.NewDomainError("INVALID_INPUT", "A user cannot refer themselves")
	}
	for _, edge := range parentChain {
		if edge.ParentUserID == userID {
			return nil, shared.NewDomainError("INVALID_INPUT",
				fmt.Sprintf("Referral edge %s -> %s would introduce a cycle", userID, parentID))
		}
	}

	path := []string{parentID.String()}
	edges := make([]Referral, 0, len(parentChain)+1)

	direct, err := NewReferral(userID, parentID, 1, strings.Join(path, "/"))
	if err != nil {
		return nil, err
	}
	edges = append(edges, *direct)

	for _, ancestor := range parentChain {
		level := ancestor.Level + 1
		if maxDepth > 0 && level > maxDepth {
			break
		}
		path = append(path, ancestor.ParentUserID.String())
		edge, err := NewReferral(userID, ancestor.ParentUserID, level, strings.Join(path, "/"))
		if err != nil {
			return nil, err
		}
		edges = append(edges, *edge)
	}

	return edges, nil
}
