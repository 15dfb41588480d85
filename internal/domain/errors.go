package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// Account errors
	ErrAccountNotFound    = errors.New("account not found")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrInvalidAccountName = errors.New("invalid account name")
	ErrInvalidAccountType = errors.New("invalid account type")

	// Transfer errors
	ErrSameAccount        = errors.New("cannot transfer to the same account")
	ErrInvalidAmount      = errors.New("amount must be positive")
	ErrAmountTooSmall     = errors.New("amount below minimum allowed")
	ErrAmountTooLarge     = errors.New("amount exceeds maximum allowed")
	ErrDescriptionTooLong = errors.New("description exceeds maximum length")
	ErrNotesTooLong       = errors.New("notes exceed maximum length")
	ErrTransferNotFound   = errors.New("transfer not found")
	ErrEntryNotFound      = errors.New("entry not found")
)

// InsufficientFundsError carries the available and required amounts so the
// API layer can show the client what was missing.
type InsufficientFundsError struct {
	AccountID string
	Available decimal.Decimal
	Required  decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds on account %s: available %s, required %s",
		e.AccountID, e.Available.String(), e.Required.String())
}

// Is makes errors.Is(err, ErrInsufficientFunds) match.
func (e *InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}

// IsValidationError reports whether err is semantically invalid input, as
// opposed to a missing resource or an internal failure. Validation errors
// are never retried.
func IsValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrSameAccount),
		errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrAmountTooSmall),
		errors.Is(err, ErrAmountTooLarge),
		errors.Is(err, ErrDescriptionTooLong),
		errors.Is(err, ErrNotesTooLong),
		errors.Is(err, ErrInsufficientFunds),
		errors.Is(err, ErrInvalidAccountName),
		errors.Is(err, ErrInvalidAccountType):
		return true
	}

	return false
}

// IsNotFoundError reports whether err refers to a missing or not-owned
// resource.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrAccountNotFound) ||
		errors.Is(err, ErrTransferNotFound) ||
		errors.Is(err, ErrEntryNotFound)
}
