package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vestfolio/backend/internal/domain/ledger"
	"github.com/vestfolio/backend/internal/domain/shared/valueobject"
)

// WalletModel is the persistence model for the Wallet entity.
type WalletModel struct {
	BaseModel
	UserID   *uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_wallets_user"`
	Name     string     `gorm:"type:varchar(100);not null"`
	Currency string     `gorm:"type:varchar(3);not null;default:'USD'"`
}

// TableName returns the table name for GORM
func (WalletModel) TableName() string {
	return "wallets"
}

// ToDomain converts the persistence model to a domain Wallet.
func (m *WalletModel) ToDomain() *ledger.Wallet {
	return &ledger.Wallet{
		BaseEntity: m.BaseModel.ToDomain(),
		UserID:     m.UserID,
		Name:       m.Name,
		Currency:   valueobject.Currency(m.Currency),
	}
}

// FromDomain populates the persistence model from a domain Wallet.
func (m *WalletModel) FromDomain(w *ledger.Wallet) {
	m.FromDomainBaseEntity(w.BaseEntity)
	m.UserID = w.UserID
	m.Name = w.Name
	m.Currency = string(w.Currency)
}

// WalletModelFromDomain creates a new persistence model from a domain Wallet.
func WalletModelFromDomain(w *ledger.Wallet) *WalletModel {
	m := &WalletModel{}
	m.FromDomain(w)
	return m
}

// AccountModel is the persistence model for the Account aggregate root.
type AccountModel struct {
	AggregateModel
	UserID    *uuid.UUID            `gorm:"type:uuid;uniqueIndex:idx_accounts_user_purpose,priority:1"`
	WalletID  uuid.UUID             `gorm:"type:uuid;not null;index"`
	Name      string                `gorm:"type:varchar(100);not null"`
	Code      string                `gorm:"type:varchar(20);not null;index"`
	Purpose   ledger.AccountPurpose `gorm:"type:varchar(10);not null;uniqueIndex:idx_accounts_user_purpose,priority:2"`
	DeletedAt *time.Time            `gorm:"index"`
}

// TableName returns the table name for GORM
func (AccountModel) TableName() string {
	return "accounts"
}

// ToDomain converts the persistence model to a domain Account.
func (m *AccountModel) ToDomain() *ledger.Account {
	account := &ledger.Account{
		UserID:    m.UserID,
		WalletID:  m.WalletID,
		Name:      m.Name,
		Code:      m.Code,
		Purpose:   m.Purpose,
		DeletedAt: m.DeletedAt,
	}
	m.PopulateAggregateRoot(&account.BaseAggregateRoot)
	return account
}

// FromDomain populates the persistence model from a domain Account.
func (m *AccountModel) FromDomain(a *ledger.Account) {
	m.FromDomainAggregateRoot(a.BaseAggregateRoot)
	m.UserID = a.UserID
	m.WalletID = a.WalletID
	m.Name = a.Name
	m.Code = a.Code
	m.Purpose = a.Purpose
	m.DeletedAt = a.DeletedAt
}

// AccountModelFromDomain creates a new persistence model from a domain Account.
func AccountModelFromDomain(a *ledger.Account) *AccountModel {
	m := &AccountModel{}
	m.FromDomain(a)
	return m
}

// EntryModel is the persistence model for the immutable Entry entity.
type EntryModel struct {
	BaseModel
	AccountID     uuid.UUID        `gorm:"type:uuid;not null;index"`
	Direction     ledger.Direction `gorm:"type:varchar(6);not null"`
	Amount        decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	TransactionID uuid.UUID        `gorm:"type:uuid;not null;index"`
	UserID        *uuid.UUID       `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (EntryModel) TableName() string {
	return "ledger_entries"
}

// ToDomain converts the persistence model to a domain Entry.
func (m *EntryModel) ToDomain() *ledger.Entry {
	return &ledger.Entry{
		BaseEntity:    m.BaseModel.ToDomain(),
		AccountID:     m.AccountID,
		Direction:     m.Direction,
		Amount:        m.Amount,
		TransactionID: m.TransactionID,
		UserID:        m.UserID,
	}
}

// FromDomain populates the persistence model from a domain Entry.
func (m *EntryModel) FromDomain(e *ledger.Entry) {
	m.FromDomainBaseEntity(e.BaseEntity)
	m.AccountID = e.AccountID
	m.Direction = e.Direction
	m.Amount = e.Amount
	m.TransactionID = e.TransactionID
	m.UserID = e.UserID
}

// EntryModelFromDomain creates a new persistence model from a domain Entry.
func EntryModelFromDomain(e *ledger.Entry) *EntryModel {
	m := &EntryModel{}
	m.FromDomain(e)
	return m
}

// TransactionModel is the persistence model for the Transaction aggregate root.
type TransactionModel struct {
	AggregateModel
	Type        ledger.TransactionType   `gorm:"type:varchar(20);not null;index"`
	Amount      decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	Currency    string                   `gorm:"type:varchar(3);not null;default:'USD'"`
	Status      ledger.TransactionStatus `gorm:"type:varchar(10);not null;index"`
	Reference   *string                  `gorm:"type:varchar(200);uniqueIndex:idx_transactions_reference"`
	UserID      *uuid.UUID               `gorm:"type:uuid;index"`
	CompletedAt *time.Time
}

// TableName returns the table name for GORM
func (TransactionModel) TableName() string {
	return "transactions"
}

// ToDomain converts the persistence model to a domain Transaction.
func (m *TransactionModel) ToDomain() *ledger.Transaction {
	tx := &ledger.Transaction{
		Type:        m.Type,
		Amount:      m.Amount,
		Currency:    valueobject.Currency(m.Currency),
		Status:      m.Status,
		Reference:   m.Reference,
		UserID:      m.UserID,
		CompletedAt: m.CompletedAt,
	}
	m.PopulateAggregateRoot(&tx.BaseAggregateRoot)
	return tx
}

// FromDomain populates the persistence model from a domain Transaction.
func (m *TransactionModel) FromDomain(t *ledger.Transaction) {
	m.FromDomainAggregateRoot(t.BaseAggregateRoot)
	m.Type = t.Type
	m.Amount = t.Amount
	m.Currency = string(t.Currency)
	m.Status = t.Status
	m.Reference = t.Reference
	m.UserID = t.UserID
	m.CompletedAt = t.CompletedAt
}

// TransactionModelFromDomain creates a new persistence model from a domain Transaction.
func TransactionModelFromDomain(t *ledger.Transaction) *TransactionModel {
	m := &TransactionModel{}
	m.FromDomain(t)
	return m
}
