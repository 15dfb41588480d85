package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction marks which side of a movement an entry records.
type Direction string

const (
	DirectionDebit  Direction = "debit"
	DirectionCredit Direction = "credit"
)

// EntryStatus is the lifecycle state of an entry. Deletion is a tombstone,
// never a physical removal.
type EntryStatus string

const (
	EntryStatusActive  EntryStatus = "active"
	EntryStatusDeleted EntryStatus = "deleted"
)

// CategoryTransfer is the category of every entry the transfer engine creates.
const CategoryTransfer = "Transfer"

// Entry represents one side of a financial movement on one account.
//
// Transfer-originated entries come in linked pairs: one debit on the source
// account and one credit on the destination, mutually referencing each other
// through LinkedEntryID. LinkedEntryID is nil only transiently while the
// pair is being built inside a transaction; a live transfer entry always has
// a live linked counterpart of the opposite direction and same amount.
type Entry struct {
	ID               string
	OwnerID          string
	AccountID        string
	CounterAccountID string
	LinkedEntryID    *string
	Direction        Direction
	Category         string
	Subcategory      string
	Description      string
	Notes            string
	Amount           decimal.Decimal
	Date             time.Time
	Status           EntryStatus
	CreatedAt        time.Time
	DeletedAt        *time.Time
	DeletedBy        *string
}

// IsLive reports whether the entry has not been soft-deleted.
func (e *Entry) IsLive() bool {
	return e.Status == EntryStatusActive
}

// SignedAmount returns the amount with the direction's sign applied:
// negative for debits, positive for credits.
func (e *Entry) SignedAmount() decimal.Decimal {
	if e.Direction == DirectionDebit {
		return e.Amount.Neg()
	}

	return e.Amount
}
