package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// LedgerRepository implements usecase.LedgerRepository on PostgreSQL.
type LedgerRepository struct {
	pool *pgxpool.Pool
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

// CheckConsistency computes the live debit and credit totals and counts
// transfer entries with broken linkage: no pointer, a dangling pointer, a
// dead counterpart, or a counterpart that does not point back.
func (r *LedgerRepository) CheckConsistency(ctx context.Context) (decimal.Decimal, decimal.Decimal, int64, error) {
	var debits, credits pgtype.Numeric

	err := r.pool.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE direction = 'debit'), 0),
			COALESCE(SUM(amount) FILTER (WHERE direction = 'credit'), 0)
		FROM entries
		WHERE status = 'active'`,
	).Scan(&debits, &credits)
	if err != nil {
		return decimal.Zero, decimal.Zero, 0, fmt.Errorf("sum directions: %w", err)
	}

	totalDebits, err := numericToDecimal(debits)
	if err != nil {
		return decimal.Zero, decimal.Zero, 0, fmt.Errorf("debit total: %w", err)
	}

	totalCredits, err := numericToDecimal(credits)
	if err != nil {
		return decimal.Zero, decimal.Zero, 0, fmt.Errorf("credit total: %w", err)
	}

	var brokenLinks int64
	err = r.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM entries e
		LEFT JOIN entries l ON l.id = e.linked_entry_id
		WHERE e.category = 'Transfer'
		  AND e.status = 'active'
		  AND (
			e.linked_entry_id IS NULL
			OR l.id IS NULL
			OR l.status <> 'active'
			OR l.linked_entry_id IS DISTINCT FROM e.id
		  )`,
	).Scan(&brokenLinks)
	if err != nil {
		return decimal.Zero, decimal.Zero, 0, fmt.Errorf("count broken links: %w", err)
	}

	return totalDebits, totalCredits, brokenLinks, nil
}
