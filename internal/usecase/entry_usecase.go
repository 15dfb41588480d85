package usecase

import (
	"context"

	"github.com/famstack/famledger/internal/domain"
)

// EntryUseCase handles ledger entry queries for statement views.
type EntryUseCase struct {
	entryRepo EntryRepository
}

// NewEntryUseCase creates a new EntryUseCase.
func NewEntryUseCase(entryRepo EntryRepository) *EntryUseCase {
	return &EntryUseCase{
		entryRepo: entryRepo,
	}
}

// ListEntriesByAccountInput represents input for listing entries.
type ListEntriesByAccountInput struct {
	AccountID string
	OwnerID   string
	Limit     int
	Offset    int
}

// ListEntriesByAccount lists live entries for an account, newest first.
func (uc *EntryUseCase) ListEntriesByAccount(ctx context.Context, input ListEntriesByAccountInput) ([]*domain.Entry, error) {
	if input.Limit <= 0 {
		input.Limit = DefaultPageSize
	}

	if input.Limit > MaxPageSize {
		input.Limit = MaxPageSize
	}

	return uc.entryRepo.ListByAccount(ctx, input.AccountID, input.OwnerID, input.Limit, input.Offset)
}
