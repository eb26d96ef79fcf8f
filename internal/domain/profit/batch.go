package profit

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vestfolio/backend/internal/domain/shared"
)

// PeriodType is the reporting period of a profit batch
type PeriodType string

const (
	PeriodDaily  PeriodType = "DAILY"
	PeriodWeekly PeriodType = "WEEKLY"
)

// IsValid checks if the period type is valid
func (p PeriodType) IsValid() bool {
	return p == PeriodDaily || p == PeriodWeekly
}

// BatchStatus is the approval state of a profit batch
type BatchStatus string

const (
	BatchPendingAdminFinal BatchStatus = "PENDING_ADMIN_FINAL"
	BatchApproved          BatchStatus = "APPROVED"
	BatchRejected          BatchStatus = "REJECTED"
)

// IsValid checks if the status is a valid BatchStatus
func (s BatchStatus) IsValid() bool {
	switch s {
	case BatchPendingAdminFinal, BatchApproved, BatchRejected:
		return true
	}
	return false
}

// CanFinalize returns true if an admin may approve or reject in this status
func (s BatchStatus) CanFinalize() bool {
	return s == BatchPendingAdminFinal
}

// CanResubmit returns true if the submitting accountant may resubmit
func (s BatchStatus) CanResubmit() bool {
	return s != BatchApproved
}

// RejectMode distinguishes a request for changes from a final rejection
type RejectMode string

const (
	RejectRequestChanges RejectMode = "REQUEST_CHANGES"
	RejectFinal          RejectMode = "FINAL_REJECT"
)

// IsValid checks if the mode is a valid RejectMode
func (m RejectMode) IsValid() bool {
	return m == RejectRequestChanges || m == RejectFinal
}

// Fixed net-profit split applied to every batch
var (
	reservePercent      = decimal.NewFromInt(40)
	investorPoolPercent = decimal.NewFromInt(59)
	referralPoolPercent = decimal.NewFromInt(1)
	hundred             = decimal.NewFromInt(100)
)

// Breakdown is the derived split of a batch's net profit
type Breakdown struct {
	GrossRevenue          decimal.Decimal
	Expenses              decimal.Decimal
	NetProfit             decimal.Decimal
	BusinessReserveAmount decimal.Decimal
	InvestorPoolAmount    decimal.Decimal
	ReferralPoolAmount    decimal.Decimal
}

// ComputeBreakdown derives the fixed-percentage split of a submitted total.
// Expenses are currently always zero, so net profit equals the submitted
// total. Deterministic: same input always yields the same split.
func ComputeBreakdown(totalProfit decimal.Decimal) Breakdown {
	net := totalProfit
	return Breakdown{
		GrossRevenue:          totalProfit,
		Expenses:              decimal.Zero,
		NetProfit:             net,
		BusinessReserveAmount: net.Mul(reservePercent).Div(hundred),
		InvestorPoolAmount:    net.Mul(investorPoolPercent).Div(hundred),
		ReferralPoolAmount:    net.Mul(referralPoolPercent).Div(hundred),
	}
}

// Batch is one period's profit submission, accountant-submitted and
// admin-finalized.
type Batch struct {
	shared.BaseAggregateRoot
	PeriodType  PeriodType
	PeriodStart time.Time
	PeriodEnd   time.Time
	TotalProfit decimal.Decimal
	Breakdown
	Status                  BatchStatus
	SubmittedBy             uuid.UUID
	FinalizedBy             *uuid.UUID
	RevisionCount           int
	TotalInvestmentAmount   *decimal.Decimal
	RecipientCount          *int
	SubmissionAttachmentURL string
	SubmittedNote           string
	ApprovedAt              *time.Time
}

// NewBatch creates a profit batch awaiting admin finalization
func NewBatch(periodType PeriodType, periodStart, periodEnd time.Time, totalProfit decimal.Decimal, submittedBy uuid.UUID) (*Batch, error) {
	if !periodType.IsValid() {
		return nil, shared.NewDomainError("INVALID_PERIOD", "Period type must be DAILY or WEEKLY")
	}
	if periodStart.IsZero() || periodEnd.IsZero() {
		return nil, shared.NewDomainError("INVALID_PERIOD", "Period start and end are required")
	}
	if !periodEnd.After(periodStart) {
		return nil, shared.NewDomainError("INVALID_PERIOD", "Period end must be after period start")
	}
	if totalProfit.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Total profit must be positive")
	}
	if submittedBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "Submitting accountant ID is required")
	}

	return &Batch{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		PeriodType:        periodType,
		PeriodStart:       periodStart,
		PeriodEnd:         periodEnd,
		TotalProfit:       totalProfit,
		Breakdown:         ComputeBreakdown(totalProfit),
		Status:            BatchPendingAdminFinal,
		SubmittedBy:       submittedBy,
	}, nil
}

// SetTotalProfit replaces the submitted total and recomputes the breakdown
func (b *Batch) SetTotalProfit(totalProfit decimal.Decimal) error {
	if totalProfit.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Total profit must be positive")
	}
	b.TotalProfit = totalProfit
	b.Breakdown = ComputeBreakdown(totalProfit)
	b.UpdatedAt = time.Now()
	return nil
}

// InvestorPool returns the pool to distribute across investors, falling
// back to the submitted total for batches predating the breakdown fields.
func (b *Batch) InvestorPool() decimal.Decimal {
	if b.InvestorPoolAmount.IsZero() {
		return b.TotalProfit
	}
	return b.InvestorPoolAmount
}

// FinalApprove transitions the batch to APPROVED, recording the finalizer
// and the allocation snapshot
func (b *Batch) FinalApprove(finalizedBy uuid.UUID, totalInvestment decimal.Decimal, recipientCount int) error {
	if !b.Status.CanFinalize() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot approve batch in %s status", b.Status))
	}
	if finalizedBy == uuid.Nil {
		return shared.NewDomainError("INVALID_USER", "Finalizing admin ID is required")
	}
	now := time.Now()
	b.Status = BatchApproved
	b.FinalizedBy = &finalizedBy
	b.TotalInvestmentAmount = &totalInvestment
	b.RecipientCount = &recipientCount
	b.ApprovedAt = &now
	b.UpdatedAt = now
	b.IncrementVersion()
	return nil
}

// FinalReject transitions the batch to REJECTED. An adjusted total, when
// supplied, replaces the submitted figure and recomputes the breakdown so
// the accountant resubmits from the corrected numbers.
func (b *Batch) FinalReject(finalizedBy uuid.UUID, mode RejectMode, adjustedTotalProfit *decimal.Decimal) error {
	if !b.Status.CanFinalize() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot reject batch in %s status", b.Status))
	}
	if !mode.IsValid() {
		return shared.NewDomainError("INVALID_INPUT", "Reject mode must be REQUEST_CHANGES or FINAL_REJECT")
	}
	if finalizedBy == uuid.Nil {
		return shared.NewDomainError("INVALID_USER", "Finalizing admin ID is required")
	}
	if adjustedTotalProfit != nil {
		if err := b.SetTotalProfit(*adjustedTotalProfit); err != nil {
			return err
		}
	}
	b.Status = BatchRejected
	b.FinalizedBy = &finalizedBy
	b.UpdatedAt = time.Now()
	b.IncrementVersion()
	return nil
}

// Resubmit returns a rejected batch to the admin queue. Only the original
// submitting accountant may resubmit; approved batches are immutable.
func (b *Batch) Resubmit(by uuid.UUID, totalProfit *decimal.Decimal, note, attachmentURL string) error {
	if by != b.SubmittedBy {
		return shared.NewDomainError("FORBIDDEN", "Only the original submitter may resubmit this batch")
	}
	if !b.Status.CanResubmit() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot resubmit batch in %s status", b.Status))
	}
	if totalProfit != nil {
		if err := b.SetTotalProfit(*totalProfit); err != nil {
			return err
		}
	}
	if note != "" {
		b.SubmittedNote = note
	}
	if attachmentURL != "" {
		b.SubmissionAttachmentURL = attachmentURL
	}
	b.Status = BatchPendingAdminFinal
	b.RevisionCount++
	b.UpdatedAt = time.Now()
	b.IncrementVersion()
	return nil
}

// IsApproved reports whether the batch has been finalized as approved
func (b *Batch) IsApproved() bool {
	return b.Status == BatchApproved
}
