package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vestfolio/backend/internal/domain/funding"
)

// FundingRequestModel is the persistence model for the funding Request
// aggregate root.
type FundingRequestModel struct {
	AggregateModel
	UserID          uuid.UUID             `gorm:"type:uuid;not null;index"`
	Kind            funding.RequestKind   `gorm:"type:varchar(10);not null;index"`
	Amount          decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	Currency        string                `gorm:"type:varchar(3);not null;default:'USD'"`
	Status          funding.RequestStatus `gorm:"type:varchar(20);not null;index"`
	Note            string                `gorm:"type:text"`
	PaymentProofURL string                `gorm:"type:varchar(500)"`

	ReviewedBy    *uuid.UUID `gorm:"type:uuid"`
	ReviewedAt    *time.Time
	ReviewNote    string     `gorm:"type:text"`
	FinalizedBy   *uuid.UUID `gorm:"type:uuid"`
	FinalizedAt   *time.Time
	FinalizeNote  string     `gorm:"type:text"`
	TransactionID *uuid.UUID `gorm:"type:uuid"`
	PayoutRef     string     `gorm:"type:varchar(200)"`
	PayoutSentAt  *time.Time
	PayoutSentBy  *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (FundingRequestModel) TableName() string {
	return "funding_requests"
}

// ToDomain converts the persistence model to a domain Request.
func (m *FundingRequestModel) ToDomain() *funding.Request {
	request := &funding.Request{
		UserID:          m.UserID,
		Kind:            m.Kind,
		Amount:          m.Amount,
		Currency:        m.Currency,
		Status:          m.Status,
		Note:            m.Note,
		PaymentProofURL: m.PaymentProofURL,
		ReviewedBy:      m.ReviewedBy,
		ReviewedAt:      m.ReviewedAt,
		ReviewNote:      m.ReviewNote,
		FinalizedBy:     m.FinalizedBy,
		FinalizedAt:     m.FinalizedAt,
		FinalizeNote:    m.FinalizeNote,
		TransactionID:   m.TransactionID,
		PayoutRef:       m.PayoutRef,
		PayoutSentAt:    m.PayoutSentAt,
		PayoutSentBy:    m.PayoutSentBy,
	}
	m.PopulateAggregateRoot(&request.BaseAggregateRoot)
	return request
}

// FromDomain populates the persistence model from a domain Request.
func (m *FundingRequestModel) FromDomain(r *funding.Request) {
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	m.UserID = r.UserID
	m.Kind = r.Kind
	m.Amount = r.Amount
	m.Currency = r.Currency
	m.Status = r.Status
	m.Note = r.Note
	m.PaymentProofURL = r.PaymentProofURL
	m.ReviewedBy = r.ReviewedBy
	m.ReviewedAt = r.ReviewedAt
	m.ReviewNote = r.ReviewNote
	m.FinalizedBy = r.FinalizedBy
	m.FinalizedAt = r.FinalizedAt
	m.FinalizeNote = r.FinalizeNote
	m.TransactionID = r.TransactionID
	m.PayoutRef = r.PayoutRef
	m.PayoutSentAt = r.PayoutSentAt
	m.PayoutSentBy = r.PayoutSentBy
}

// FundingRequestModelFromDomain creates a new persistence model from a domain Request.
func FundingRequestModelFromDomain(r *funding.Request) *FundingRequestModel {
	m := &FundingRequestModel{}
	m.FromDomain(r)
	return m
}
