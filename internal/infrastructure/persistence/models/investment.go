package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vestfolio/backend/internal/domain/investment"
)

// PlanModel is the persistence model for the Plan aggregate root.
type PlanModel struct {
	AggregateModel
	Name         string          `gorm:"type:varchar(100);not null"`
	MinAmount    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	MaxAmount    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	DurationDays int             `gorm:"not null"`
	Active       bool            `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (PlanModel) TableName() string {
	return "investment_plans"
}

// ToDomain converts the persistence model to a domain Plan.
func (m *PlanModel) ToDomain() *investment.Plan {
	plan := &investment.Plan{
		Name:         m.Name,
		MinAmount:    m.MinAmount,
		MaxAmount:    m.MaxAmount,
		DurationDays: m.DurationDays,
		Active:       m.Active,
	}
	m.PopulateAggregateRoot(&plan.BaseAggregateRoot)
	return plan
}

// FromDomain populates the persistence model from a domain Plan.
func (m *PlanModel) FromDomain(p *investment.Plan) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.Name = p.Name
	m.MinAmount = p.MinAmount
	m.MaxAmount = p.MaxAmount
	m.DurationDays = p.DurationDays
	m.Active = p.Active
}

// PlanModelFromDomain creates a new persistence model from a domain Plan.
func PlanModelFromDomain(p *investment.Plan) *PlanModel {
	m := &PlanModel{}
	m.FromDomain(p)
	return m
}

// PositionModel is the persistence model for the Position aggregate root.
type PositionModel struct {
	AggregateModel
	UserID          uuid.UUID                 `gorm:"type:uuid;not null;index"`
	PlanID          uuid.UUID                 `gorm:"type:uuid;not null;index"`
	InvestedAmount  decimal.Decimal           `gorm:"type:decimal(18,4);not null"`
	StartDate       time.Time                 `gorm:"not null"`
	EndDate         time.Time                 `gorm:"not null"`
	Status          investment.PositionStatus `gorm:"type:varchar(10);not null;index"`
	TotalProfitPaid decimal.Decimal           `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (PositionModel) TableName() string {
	return "investment_positions"
}

// ToDomain converts the persistence model to a domain Position.
func (m *PositionModel) ToDomain() *investment.Position {
	position := &investment.Position{
		UserID:          m.UserID,
		PlanID:          m.PlanID,
		InvestedAmount:  m.InvestedAmount,
		StartDate:       m.StartDate,
		EndDate:         m.EndDate,
		Status:          m.Status,
		TotalProfitPaid: m.TotalProfitPaid,
	}
	m.PopulateAggregateRoot(&position.BaseAggregateRoot)
	return position
}

// FromDomain populates the persistence model from a domain Position.
func (m *PositionModel) FromDomain(p *investment.Position) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.UserID = p.UserID
	m.PlanID = p.PlanID
	m.InvestedAmount = p.InvestedAmount
	m.StartDate = p.StartDate
	m.EndDate = p.EndDate
	m.Status = p.Status
	m.TotalProfitPaid = p.TotalProfitPaid
}

// PositionModelFromDomain creates a new persistence model from a domain Position.
func PositionModelFromDomain(p *investment.Position) *PositionModel {
	m := &PositionModel{}
	m.FromDomain(p)
	return m
}
