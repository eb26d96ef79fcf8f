package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vestfolio/backend/internal/domain/shared"
	"github.com/vestfolio/backend/internal/domain/shared/valueobject"
)

// Reserved system account codes. Accounts carrying one of these codes are
// operator-owned and exempt from the non-negative balance check.
const (
	CodeCash         = "1000" // platform cash
	CodeLiability    = "2000" // customer liability
	CodeInvestment   = "3000" // investment holding
	CodeRewardPool   = "4000" // profit reward pool
	CodeReferralPool = "4100" // referral commission pool
)

// systemCodes is the reserved set checked by the posting engine.
var systemCodes = map[string]struct{}{
	CodeCash:         {},
	CodeLiability:    {},
	CodeInvestment:   {},
	CodeRewardPool:   {},
	CodeReferralPool: {},
}

// IsSystemCode reports whether code belongs to the reserved system set
func IsSystemCode(code string) bool {
	_, ok := systemCodes[code]
	return ok
}

// SystemCodes returns the reserved system account codes
func SystemCodes() []string {
	return []string{CodeCash, CodeLiability, CodeInvestment, CodeRewardPool, CodeReferralPool}
}

// AccountPurpose distinguishes user main accounts from system accounts
type AccountPurpose string

const (
	PurposeMain   AccountPurpose = "MAIN"
	PurposeSystem AccountPurpose = "SYSTEM"
)

// IsValid checks if the purpose is a valid AccountPurpose
func (p AccountPurpose) IsValid() bool {
	return p == PurposeMain || p == PurposeSystem
}

// Wallet groups the ledger accounts of one owner. System accounts share a
// single operator wallet; every user gets a wallet on first use.
type Wallet struct {
	shared.BaseEntity
	UserID   *uuid.UUID
	Name     string
	Currency valueobject.Currency
}

// NewUserWallet creates a wallet for a user
func NewUserWallet(userID uuid.UUID) *Wallet {
	return &Wallet{
		BaseEntity: shared.NewBaseEntity(),
		UserID:     &userID,
		Name:       fmt.Sprintf("wallet-%s", shortID(userID)),
		Currency:   valueobject.DefaultCurrency,
	}
}

// NewSystemWallet creates the operator wallet backing the system accounts
func NewSystemWallet(name string) *Wallet {
	return &Wallet{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		Currency:   valueobject.DefaultCurrency,
	}
}

// Account identifies one balance-bearing entity within a wallet.
// Created once per user/purpose, never mutated except soft delete.
type Account struct {
	shared.BaseAggregateRoot
	UserID    *uuid.UUID
	WalletID  uuid.UUID
	Name      string
	Code      string
	Purpose   AccountPurpose
	DeletedAt *time.Time
}

// NewUserMainAccount creates the primary ledger account for a user
func NewUserMainAccount(userID, walletID uuid.UUID) (*Account, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if walletID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_WALLET", "Wallet ID cannot be empty")
	}
	return &Account{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            &userID,
		WalletID:          walletID,
		Name:              fmt.Sprintf("main-%s", shortID(userID)),
		Code:              fmt.Sprintf("U-%s", shortID(userID)),
		Purpose:           PurposeMain,
	}, nil
}

// NewSystemAccount creates a fixed system account for a reserved code
func NewSystemAccount(walletID uuid.UUID, name, code string) (*Account, error) {
	if !IsSystemCode(code) {
		return nil, shared.NewDomainError("INVALID_CODE", fmt.Sprintf("Code %s is not in the reserved system set", code))
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Account name cannot be empty")
	}
	return &Account{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		WalletID:          walletID,
		Name:              name,
		Code:              code,
		Purpose:           PurposeSystem,
	}, nil
}

// IsSystem reports whether the account's code is in the reserved set
func (a *Account) IsSystem() bool {
	return IsSystemCode(a.Code)
}

// IsDeleted reports whether the account has been soft-deleted
func (a *Account) IsDeleted() bool {
	return a.DeletedAt != nil
}

// SoftDelete marks the account deleted without removing its entry history
func (a *Account) SoftDelete() error {
	if a.IsSystem() {
		return shared.NewDomainError("INVALID_STATE", "System accounts cannot be deleted")
	}
	if a.DeletedAt != nil {
		return shared.NewDomainError("INVALID_STATE", "Account is already deleted")
	}
	now := time.Now()
	a.DeletedAt = &now
	a.UpdatedAt = now
	a.IncrementVersion()
	return nil
}

func shortID(id uuid.UUID) string {
	return strings.Split(id.String(), "-")[0]
}
