package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType classifies a balance-bearing account.
type AccountType string

const (
	AccountTypeChecking   AccountType = "checking"
	AccountTypeSavings    AccountType = "savings"
	AccountTypeCash       AccountType = "cash"
	AccountTypeInvestment AccountType = "investment"
	AccountTypeCreditCard AccountType = "credit_card"
)

// ValidAccountType reports whether t is a known account type.
func ValidAccountType(t AccountType) bool {
	switch t {
	case AccountTypeChecking, AccountTypeSavings, AccountTypeCash,
		AccountTypeInvestment, AccountTypeCreditCard:
		return true
	}

	return false
}

// Account represents a balance-bearing account owned by a user.
//
// CurrentBalance always equals OpeningBalance plus the signed sum of all
// live ledger entries touching the account. The transfer engine maintains
// this incrementally inside each transaction; ReconciliationUseCase can
// recompute it from the entries.
type Account struct {
	ID               string
	OwnerID          string
	Name             string
	Type             AccountType
	OpeningBalance   decimal.Decimal
	CurrentBalance   decimal.Decimal
	AvailableBalance decimal.Decimal
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsCreditCard reports whether the account is a credit line. Credit-card
// accounts may go negative and skip the sufficient-funds check.
func (a *Account) IsCreditCard() bool {
	return a.Type == AccountTypeCreditCard
}

// ValidateDebit checks whether the account can be debited by amount.
func (a *Account) ValidateDebit(amount decimal.Decimal) error {
	if a.IsCreditCard() {
		return nil
	}

	if a.CurrentBalance.LessThan(amount) {
		return &InsufficientFundsError{
			AccountID: a.ID,
			Available: a.CurrentBalance,
			Required:  amount,
		}
	}

	return nil
}
