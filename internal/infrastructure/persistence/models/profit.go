package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vestfolio/backend/internal/domain/profit"
)

// BatchModel is the persistence model for the profit Batch aggregate root.
type BatchModel struct {
	AggregateModel
	PeriodType            profit.PeriodType  `gorm:"type:varchar(10);not null"`
	PeriodStart           time.Time          `gorm:"not null;index"`
	PeriodEnd             time.Time          `gorm:"not null"`
	TotalProfit           decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	GrossRevenue          decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	Expenses              decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	NetProfit             decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	BusinessReserveAmount decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	InvestorPoolAmount    decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	ReferralPoolAmount    decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	Status                profit.BatchStatus `gorm:"type:varchar(20);not null;index"`
	SubmittedBy           uuid.UUID          `gorm:"type:uuid;not null;index"`
	FinalizedBy           *uuid.UUID         `gorm:"type:uuid"`
	RevisionCount         int                `gorm:"not null;default:0"`
	TotalInvestmentAmount *decimal.Decimal   `gorm:"type:decimal(18,4)"`
	RecipientCount        *int
	SubmissionAttachment  string `gorm:"type:varchar(500);column:submission_attachment_url"`
	SubmittedNote         string `gorm:"type:text"`
	ApprovedAt            *time.Time
}

// TableName returns the table name for GORM
func (BatchModel) TableName() string {
	return "profit_batches"
}

// ToDomain converts the persistence model to a domain Batch.
func (m *BatchModel) ToDomain() *profit.Batch {
	batch := &profit.Batch{
		PeriodType:  m.PeriodType,
		PeriodStart: m.PeriodStart,
		PeriodEnd:   m.PeriodEnd,
		TotalProfit: m.TotalProfit,
		Breakdown: profit.Breakdown{
			GrossRevenue:          m.GrossRevenue,
			Expenses:              m.Expenses,
			NetProfit:             m.NetProfit,
			BusinessReserveAmount: m.BusinessReserveAmount,
			InvestorPoolAmount:    m.InvestorPoolAmount,
			ReferralPoolAmount:    m.ReferralPoolAmount,
		},
		Status:                  m.Status,
		SubmittedBy:             m.SubmittedBy,
		FinalizedBy:             m.FinalizedBy,
		RevisionCount:           m.RevisionCount,
		TotalInvestmentAmount:   m.TotalInvestmentAmount,
		RecipientCount:          m.RecipientCount,
		SubmissionAttachmentURL: m.SubmissionAttachment,
		SubmittedNote:           m.SubmittedNote,
		ApprovedAt:              m.ApprovedAt,
	}
	m.PopulateAggregateRoot(&batch.BaseAggregateRoot)
	return batch
}

// FromDomain populates the persistence model from a domain Batch.
func (m *BatchModel) FromDomain(b *profit.Batch) {
	m.FromDomainAggregateRoot(b.BaseAggregateRoot)
	m.PeriodType = b.PeriodType
	m.PeriodStart = b.PeriodStart
	m.PeriodEnd = b.PeriodEnd
	m.TotalProfit = b.TotalProfit
	m.GrossRevenue = b.GrossRevenue
	m.Expenses = b.Expenses
	m.NetProfit = b.NetProfit
	m.BusinessReserveAmount = b.BusinessReserveAmount
	m.InvestorPoolAmount = b.InvestorPoolAmount
	m.ReferralPoolAmount = b.ReferralPoolAmount
	m.Status = b.Status
	m.SubmittedBy = b.SubmittedBy
	m.FinalizedBy = b.FinalizedBy
	m.RevisionCount = b.RevisionCount
	m.TotalInvestmentAmount = b.TotalInvestmentAmount
	m.RecipientCount = b.RecipientCount
	m.SubmissionAttachment = b.SubmissionAttachmentURL
	m.SubmittedNote = b.SubmittedNote
	m.ApprovedAt = b.ApprovedAt
}

// BatchModelFromDomain creates a new persistence model from a domain Batch.
func BatchModelFromDomain(b *profit.Batch) *BatchModel {
	m := &BatchModel{}
	m.FromDomain(b)
	return m
}

// AllocationModel is the persistence model for the Allocation aggregate root.
// (batch_id, user_id) is unique so one user holds at most one share per batch.
type AllocationModel struct {
	AggregateModel
	BatchID            uuid.UUID               `gorm:"type:uuid;not null;uniqueIndex:idx_allocations_batch_user,priority:1"`
	UserID             uuid.UUID               `gorm:"type:uuid;not null;uniqueIndex:idx_allocations_batch_user,priority:2"`
	InvestmentSnapshot decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	SharePercent       decimal.Decimal         `gorm:"type:decimal(9,4);not null"`
	ProfitAmount       decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	Status             profit.AllocationStatus `gorm:"type:varchar(10);not null;index"`
	TransactionID      *uuid.UUID              `gorm:"type:uuid"`
	CreditedAt         *time.Time
}

// TableName returns the table name for GORM
func (AllocationModel) TableName() string {
	return "profit_allocations"
}

// ToDomain converts the persistence model to a domain Allocation.
func (m *AllocationModel) ToDomain() *profit.Allocation {
	allocation := &profit.Allocation{
		BatchID:            m.BatchID,
		UserID:             m.UserID,
		InvestmentSnapshot: m.InvestmentSnapshot,
		SharePercent:       m.SharePercent,
		ProfitAmount:       m.ProfitAmount,
		Status:             m.Status,
		TransactionID:      m.TransactionID,
		CreditedAt:         m.CreditedAt,
	}
	m.PopulateAggregateRoot(&allocation.BaseAggregateRoot)
	return allocation
}

// FromDomain populates the persistence model from a domain Allocation.
func (m *AllocationModel) FromDomain(a *profit.Allocation) {
	m.FromDomainAggregateRoot(a.BaseAggregateRoot)
	m.BatchID = a.BatchID
	m.UserID = a.UserID
	m.InvestmentSnapshot = a.InvestmentSnapshot
	m.SharePercent = a.SharePercent
	m.ProfitAmount = a.ProfitAmount
	m.Status = a.Status
	m.TransactionID = a.TransactionID
	m.CreditedAt = a.CreditedAt
}

// AllocationModelFromDomain creates a new persistence model from a domain Allocation.
func AllocationModelFromDomain(a *profit.Allocation) *AllocationModel {
	m := &AllocationModel{}
	m.FromDomain(a)
	return m
}

// CommentModel is the persistence model for batch timeline comments.
type CommentModel struct {
	BaseModel
	BatchID       uuid.UUID          `gorm:"type:uuid;not null;index"`
	AuthorID      uuid.UUID          `gorm:"type:uuid;not null"`
	Kind          profit.CommentKind `gorm:"type:varchar(20);not null"`
	Body          string             `gorm:"type:text"`
	AttachmentURL string             `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (CommentModel) TableName() string {
	return "profit_batch_comments"
}

// ToDomain converts the persistence model to a domain Comment.
func (m *CommentModel) ToDomain() *profit.Comment {
	return &profit.Comment{
		BaseEntity:    m.BaseModel.ToDomain(),
		BatchID:       m.BatchID,
		AuthorID:      m.AuthorID,
		Kind:          m.Kind,
		Body:          m.Body,
		AttachmentURL: m.AttachmentURL,
	}
}

// FromDomain populates the persistence model from a domain Comment.
func (m *CommentModel) FromDomain(c *profit.Comment) {
	m.FromDomainBaseEntity(c.BaseEntity)
	m.BatchID = c.BatchID
	m.AuthorID = c.AuthorID
	m.Kind = c.Kind
	m.Body = c.Body
	m.AttachmentURL = c.AttachmentURL
}

// CommentModelFromDomain creates a new persistence model from a domain Comment.
func CommentModelFromDomain(c *profit.Comment) *CommentModel {
	m := &CommentModel{}
	m.FromDomain(c)
	return m
}
