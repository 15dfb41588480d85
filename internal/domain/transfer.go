package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryRef is the slice of an entry exposed inside a transfer result.
type EntryRef struct {
	ID        string
	AccountID string
	Amount    decimal.Decimal
	Direction Direction
}

// Transfer is the virtual pairing of two linked ledger entries: a debit on
// the source account and a credit on the destination. It has no storage row
// of its own; its identity is the debit entry's ID, and resolving either
// entry of a pair yields the same Transfer.
type Transfer struct {
	ID              string
	OwnerID         string
	FromAccountID   string
	ToAccountID     string
	FromAccountName string
	ToAccountName   string
	Amount          decimal.Decimal
	Date            time.Time
	Description     string
	Notes           string
	FromEntry       EntryRef
	ToEntry         EntryRef
	CreatedAt       time.Time
}

// NewTransferFromPair assembles a Transfer from the two entries of a pair.
// The debit entry defines the source side regardless of which entry was
// looked up, so the operation is symmetric in the entry IDs.
func NewTransferFromPair(debit, credit *Entry, fromName, toName string) *Transfer {
	return &Transfer{
		ID:              debit.ID,
		OwnerID:         debit.OwnerID,
		FromAccountID:   debit.AccountID,
		ToAccountID:     credit.AccountID,
		FromAccountName: fromName,
		ToAccountName:   toName,
		Amount:          debit.Amount,
		Date:            debit.Date,
		Description:     debit.Description,
		Notes:           debit.Notes,
		FromEntry: EntryRef{
			ID:        debit.ID,
			AccountID: debit.AccountID,
			Amount:    debit.Amount,
			Direction: DirectionDebit,
		},
		ToEntry: EntryRef{
			ID:        credit.ID,
			AccountID: credit.AccountID,
			Amount:    credit.Amount,
			Direction: DirectionCredit,
		},
		CreatedAt: debit.CreatedAt,
	}
}

// OrderPair returns the entries of a looked-up pair as (debit, credit),
// classified by direction rather than by lookup order.
func OrderPair(found, linked *Entry) (debit, credit *Entry) {
	if found.Direction == DirectionDebit {
		return found, linked
	}

	return linked, found
}
