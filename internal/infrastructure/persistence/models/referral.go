package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vestfolio/backend/internal/domain/referral"
)

// ReferralModel is the persistence model for one upline chain edge.
// (user_id, level) is unique: a user has exactly one ancestor per level.
type ReferralModel struct {
	BaseModel
	UserID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_referrals_user_level,priority:1"`
	ParentUserID uuid.UUID `gorm:"type:uuid;not null;index"`
	Level        int       `gorm:"not null;uniqueIndex:idx_referrals_user_level,priority:2"`
	Path         string    `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (ReferralModel) TableName() string {
	return "referrals"
}

// ToDomain converts the persistence model to a domain Referral.
func (m *ReferralModel) ToDomain() *referral.Referral {
	return &referral.Referral{
		BaseEntity:   m.BaseModel.ToDomain(),
		UserID:       m.UserID,
		ParentUserID: m.ParentUserID,
		Level:        m.Level,
		Path:         m.Path,
	}
}

// FromDomain populates the persistence model from a domain Referral.
func (m *ReferralModel) FromDomain(r *referral.Referral) {
	m.FromDomainBaseEntity(r.BaseEntity)
	m.UserID = r.UserID
	m.ParentUserID = r.ParentUserID
	m.Level = r.Level
	m.Path = r.Path
}

// ReferralModelFromDomain creates a new persistence model from a domain Referral.
func ReferralModelFromDomain(r *referral.Referral) *ReferralModel {
	m := &ReferralModel{}
	m.FromDomain(r)
	return m
}

// CommissionEventModel is the persistence model for cascade idempotency
// anchors, uniquely keyed by (source_type, source_id).
type CommissionEventModel struct {
	BaseModel
	SourceType     referral.CommissionSourceType `gorm:"type:varchar(30);not null;uniqueIndex:idx_commission_events_source,priority:1"`
	SourceID       uuid.UUID                     `gorm:"type:uuid;not null;uniqueIndex:idx_commission_events_source,priority:2"`
	DownlineUserID uuid.UUID                     `gorm:"type:uuid;not null;index"`
	Amount         decimal.Decimal               `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (CommissionEventModel) TableName() string {
	return "commission_events"
}

// ToDomain converts the persistence model to a domain CommissionEvent.
func (m *CommissionEventModel) ToDomain() *referral.CommissionEvent {
	return &referral.CommissionEvent{
		BaseEntity:     m.BaseModel.ToDomain(),
		SourceType:     m.SourceType,
		SourceID:       m.SourceID,
		DownlineUserID: m.DownlineUserID,
		Amount:         m.Amount,
	}
}

// FromDomain populates the persistence model from a domain CommissionEvent.
func (m *CommissionEventModel) FromDomain(e *referral.CommissionEvent) {
	m.FromDomainBaseEntity(e.BaseEntity)
	m.SourceType = e.SourceType
	m.SourceID = e.SourceID
	m.DownlineUserID = e.DownlineUserID
	m.Amount = e.Amount
}

// CommissionEventModelFromDomain creates a new persistence model from a domain CommissionEvent.
func CommissionEventModelFromDomain(e *referral.CommissionEvent) *CommissionEventModel {
	m := &CommissionEventModel{}
	m.FromDomain(e)
	return m
}

// CommissionModel is the persistence model for per-level commissions,
// uniquely keyed by (event_id, upline_user_id, downline_user_id, level).
type CommissionModel struct {
	BaseModel
	EventID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_commissions_guard,priority:1"`
	UplineUserID   uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_commissions_guard,priority:2;index"`
	DownlineUserID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_commissions_guard,priority:3"`
	Level          int             `gorm:"not null;uniqueIndex:idx_commissions_guard,priority:4"`
	Percent        decimal.Decimal `gorm:"type:decimal(9,4);not null"`
	Amount         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TransactionID  uuid.UUID       `gorm:"type:uuid;not null"`
}

// TableName returns the table name for GORM
func (CommissionModel) TableName() string {
	return "commissions"
}

// ToDomain converts the persistence model to a domain Commission.
func (m *CommissionModel) ToDomain() *referral.Commission {
	return &referral.Commission{
		BaseEntity:     m.BaseModel.ToDomain(),
		EventID:        m.EventID,
		UplineUserID:   m.UplineUserID,
		DownlineUserID: m.DownlineUserID,
		Level:          m.Level,
		Percent:        m.Percent,
		Amount:         m.Amount,
		TransactionID:  m.TransactionID,
	}
}

// FromDomain populates the persistence model from a domain Commission.
func (m *CommissionModel) FromDomain(c *referral.Commission) {
	m.FromDomainBaseEntity(c.BaseEntity)
	m.EventID = c.EventID
	m.UplineUserID = c.UplineUserID
	m.DownlineUserID = c.DownlineUserID
	m.Level = c.Level
	m.Percent = c.Percent
	m.Amount = c.Amount
	m.TransactionID = c.TransactionID
}

// CommissionModelFromDomain creates a new persistence model from a domain Commission.
func CommissionModelFromDomain(c *referral.Commission) *CommissionModel {
	m := &CommissionModel{}
	m.FromDomain(c)
	return m
}

// ReferralLevelModel is one row of the operator-managed commission schedule.
type ReferralLevelModel struct {
	Level   int             `gorm:"primaryKey"`
	Percent decimal.Decimal `gorm:"type:decimal(9,4);not null"`
}

// TableName returns the table name for GORM
func (ReferralLevelModel) TableName() string {
	return "referral_levels"
}
