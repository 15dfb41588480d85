package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInconsistentLedger is returned when the ledger is not balanced.
	ErrInconsistentLedger = errors.New("ledger is inconsistent")
)

const (
	consistencyCacheKey = "ledger:consistency"
	consistencyCacheTTL = 30 * time.Second
)

// LedgerUseCase handles ledger-wide checks.
type LedgerUseCase struct {
	ledgerRepo LedgerRepository
	cache      Cache
}

// NewLedgerUseCase creates a new LedgerUseCase. cache may be nil, in which
// case every check scans the ledger.
func NewLedgerUseCase(ledgerRepo LedgerRepository, cache Cache) *LedgerUseCase {
	return &LedgerUseCase{
		ledgerRepo: ledgerRepo,
		cache:      cache,
	}
}

// CheckConsistency verifies the paired-entry invariants ledger-wide: the
// live debit total equals the live credit total, and no transfer entry has a
// broken link (missing pointer, dangling target, or a soft-deleted
// counterpart of a live entry).
// A clean result is cached for a short window; inconsistent results are never
// cached so a repair becomes visible immediately.
func (uc *LedgerUseCase) CheckConsistency(ctx context.Context) (bool, error) {
	if uc.cache != nil {
		if _, err := uc.cache.Get(ctx, consistencyCacheKey); err == nil {
			return true, nil
		}
	}

	totalDebits, totalCredits, brokenLinks, err := uc.ledgerRepo.CheckConsistency(ctx)
	if err != nil {
		return false, err
	}

	if !totalDebits.Equal(totalCredits) {
		return false, fmt.Errorf("%w: debits=%s credits=%s",
			ErrInconsistentLedger, totalDebits.String(), totalCredits.String())
	}

	if brokenLinks != 0 {
		return false, fmt.Errorf("%w: %d entries with broken linkage", ErrInconsistentLedger, brokenLinks)
	}

	if uc.cache != nil {
		// Best effort, a failed write only costs the next check a scan.
		_ = uc.cache.Set(ctx, consistencyCacheKey, []byte("ok"), consistencyCacheTTL)
	}

	return true, nil
}
