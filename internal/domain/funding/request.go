package funding

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vestfolio/backend/internal/domain/shared"
)

// RequestKind distinguishes money in from money out
type RequestKind string

const (
	KindDeposit    RequestKind = "DEPOSIT"
	KindWithdrawal RequestKind = "WITHDRAWAL"
)

// IsValid checks if the request kind is valid
func (k RequestKind) IsValid() bool {
	return k == KindDeposit || k == KindWithdrawal
}

// RequestStatus represents where a funding request sits in the two-stage
// approval workflow
type RequestStatus string

const (
	RequestPendingAccountant RequestStatus = "PENDING_ACCOUNTANT"
	RequestPendingAdminFinal RequestStatus = "PENDING_ADMIN_FINAL"
	RequestApproved          RequestStatus = "APPROVED"
	RequestRejected          RequestStatus = "REJECTED"
)

// IsValid checks if the request status is valid
func (s RequestStatus) IsValid() bool {
	switch s {
	case RequestPendingAccountant, RequestPendingAdminFinal, RequestApproved, RequestRejected:
		return true
	}
	return false
}

// CanAccountantReview reports whether the first-stage decision is still open
func (s RequestStatus) CanAccountantReview() bool {
	return s == RequestPendingAccountant
}

// CanAdminFinalize reports whether the second-stage decision is still open
func (s RequestStatus) CanAdminFinalize() bool {
	return s == RequestPendingAdminFinal
}

// IsTerminal reports whether no further decisions apply
func (s RequestStatus) IsTerminal() bool {
	return s == RequestApproved || s == RequestRejected
}

// Request is a user's deposit or withdrawal moving through accountant
// review and admin finalization. Ledger entries are posted exactly once,
// at admin approval, never earlier.
type Request struct {
	shared.BaseAggregateRoot
	UserID          uuid.UUID
	Kind            RequestKind
	Amount          decimal.Decimal
	Currency        string
	Status          RequestStatus
	Note            string
	PaymentProofURL string

	ReviewedBy     *uuid.UUID
	ReviewedAt     *time.Time
	ReviewNote     string
	FinalizedBy    *uuid.UUID
	FinalizedAt    *time.Time
	FinalizeNote   string
	TransactionID  *uuid.UUID
	PayoutRef      string
	PayoutSentAt   *time.Time
	PayoutSentBy   *uuid.UUID
}

// NewRequest creates a funding request awaiting accountant review
func NewRequest(userID uuid.UUID, kind RequestKind, amount decimal.Decimal, currency, note, paymentProofURL string) (*Request, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID is required")
	}
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Funding request kind must be DEPOSIT or WITHDRAWAL")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Funding request amount must be positive")
	}
	if currency == "" {
		currency = "USD"
	}
	return &Request{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
		Kind:              kind,
		Amount:            amount,
		Currency:          currency,
		Status:            RequestPendingAccountant,
		Note:              note,
		PaymentProofURL:   paymentProofURL,
	}, nil
}

// AccountantApprove advances the request to the admin's queue
func (r *Request) AccountantApprove(reviewedBy uuid.UUID, note string) error {
	if !r.Status.CanAccountantReview() {
		return shared.NewDomainError("INVALID_STATE", "Funding request is not awaiting accountant review")
	}
	now := time.Now()
	r.Status = RequestPendingAdminFinal
	r.ReviewedBy = &reviewedBy
	r.ReviewedAt = &now
	r.ReviewNote = note
	r.UpdatedAt = now
	r.IncrementVersion()
	return nil
}

// AccountantReject closes the request at the first stage
func (r *Request) AccountantReject(reviewedBy uuid.UUID, note string) error {
	if !r.Status.CanAccountantReview() {
		return shared.NewDomainError("INVALID_STATE", "Funding request is not awaiting accountant review")
	}
	now := time.Now()
	r.Status = RequestRejected
	r.ReviewedBy = &reviewedBy
	r.ReviewedAt = &now
	r.ReviewNote = note
	r.UpdatedAt = now
	r.IncrementVersion()
	return nil
}

// AdminApprove marks the final approval and pins the ledger transaction
// that was posted for it
func (r *Request) AdminApprove(finalizedBy uuid.UUID, note string, transactionID uuid.UUID) error {
	if !r.Status.CanAdminFinalize() {
		return shared.NewDomainError("INVALID_STATE", "Funding request is not awaiting admin finalization")
	}
	if transactionID == uuid.Nil {
		return shared.NewDomainError("INVALID_INPUT", "Approved funding request requires a ledger transaction")
	}
	now := time.Now()
	r.Status = RequestApproved
	r.FinalizedBy = &finalizedBy
	r.FinalizedAt = &now
	r.FinalizeNote = note
	r.TransactionID = &transactionID
	r.UpdatedAt = now
	r.IncrementVersion()
	return nil
}

// AdminReject closes the request at the final stage without any ledger
// movement
func (r *Request) AdminReject(finalizedBy uuid.UUID, note string) error {
	if !r.Status.CanAdminFinalize() {
		return shared.NewDomainError("INVALID_STATE", "Funding request is not awaiting admin finalization")
	}
	now := time.Now()
	r.Status = RequestRejected
	r.FinalizedBy = &finalizedBy
	r.FinalizedAt = &now
	r.FinalizeNote = note
	r.UpdatedAt = now
	r.IncrementVersion()
	return nil
}

// ConfirmPayout records that an approved withdrawal was actually sent out
// through the external payment rail
func (r *Request) ConfirmPayout(sentBy uuid.UUID, payoutRef string) error {
	if r.Kind != KindWithdrawal {
		return shared.NewDomainError("INVALID_STATE", "Only withdrawals carry a payout confirmation")
	}
	if r.Status != RequestApproved {
		return shared.NewDomainError("INVALID_STATE", "Payout can only be confirmed on an approved withdrawal")
	}
	if r.PayoutSentAt != nil {
		return shared.NewDomainError("INVALID_STATE", "Payout was already confirmed")
	}
	now := time.Now()
	r.PayoutRef = payoutRef
	r.PayoutSentAt = &now
	r.PayoutSentBy = &sentBy
	r.UpdatedAt = now
	r.IncrementVersion()
	return nil
}
