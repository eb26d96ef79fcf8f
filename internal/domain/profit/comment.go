package profit

import (
	"github.com/google/uuid"

	"github.com/vestfolio/backend/internal/domain/shared"
)

// CommentKind classifies a timeline entry on a profit batch
type CommentKind string

const (
	CommentSubmission     CommentKind = "SUBMISSION"
	CommentRequestChanges CommentKind = "REQUEST_CHANGES"
	CommentFinalReject    CommentKind = "FINAL_REJECT"
	CommentResubmit       CommentKind = "RESUBMIT"
	CommentApproval       CommentKind = "APPROVAL"
)

// IsValid checks if the kind is a valid CommentKind
func (k CommentKind) IsValid() bool {
	switch k {
	case CommentSubmission, CommentRequestChanges, CommentFinalReject, CommentResubmit, CommentApproval:
		return true
	}
	return false
}

// Comment is one entry in a batch's audit timeline
type Comment struct {
	shared.BaseEntity
	BatchID       uuid.UUID
	AuthorID      uuid.UUID
	Kind          CommentKind
	Body          string
	AttachmentURL string
}

// NewComment appends a timeline entry to a batch
func NewComment(batchID, authorID uuid.UUID, kind CommentKind, body, attachmentURL string) (*Comment, error) {
	if batchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BATCH", "Batch ID cannot be empty")
	}
	if authorID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "Author ID cannot be empty")
	}
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Comment kind is not valid")
	}
	return &Comment{
		BaseEntity:    shared.NewBaseEntity(),
		BatchID:       batchID,
		AuthorID:      authorID,
		Kind:          kind,
		Body:          body,
		AttachmentURL: attachmentURL,
	}, nil
}
