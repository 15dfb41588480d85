package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/famstack/famledger/internal/domain"
	"github.com/famstack/famledger/internal/usecase"
)

// EntryRepository implements usecase.EntryRepository on PostgreSQL. Transfer
// pairs are stored as two rows mutually linked through linked_entry_id.
type EntryRepository struct {
	pool *pgxpool.Pool
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(pool *pgxpool.Pool) *EntryRepository {
	return &EntryRepository{pool: pool}
}

func entryColumns(alias string) string {
	cols := []string{
		"id", "owner_id", "account_id", "counter_account_id", "linked_entry_id",
		"direction", "category", "subcategory", "description", "notes",
		"amount", "date", "status", "created_at", "deleted_at", "deleted_by",
	}
	for i, c := range cols {
		cols[i] = alias + "." + c
	}
	return strings.Join(cols, ", ")
}

// entryScanDest returns scan targets in entryColumns order. The amount lands
// in a pgtype.Numeric that the caller converts afterwards.
func entryScanDest(e *domain.Entry, amount *pgtype.Numeric) []any {
	return []any{
		&e.ID, &e.OwnerID, &e.AccountID, &e.CounterAccountID, &e.LinkedEntryID,
		&e.Direction, &e.Category, &e.Subcategory, &e.Description, &e.Notes,
		amount, &e.Date, &e.Status, &e.CreatedAt, &e.DeletedAt, &e.DeletedBy,
	}
}

// Create inserts an entry inside the given transaction.
func (r *EntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	pgxTx, err := txFrom(tx)
	if err != nil {
		return err
	}

	_, err = pgxTx.Exec(ctx, `
		INSERT INTO entries (
			id, owner_id, account_id, counter_account_id, linked_entry_id,
			direction, category, subcategory, description, notes,
			amount, date, status, created_at, deleted_at, deleted_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		entry.ID, entry.OwnerID, entry.AccountID, entry.CounterAccountID, entry.LinkedEntryID,
		entry.Direction, entry.Category, entry.Subcategory, entry.Description, entry.Notes,
		decimalToNumeric(entry.Amount), entry.Date, entry.Status, entry.CreatedAt,
		entry.DeletedAt, entry.DeletedBy,
	)
	if err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}

	return nil
}

// SetLinkedEntry patches the linkage pointer of an existing entry.
func (r *EntryRepository) SetLinkedEntry(ctx context.Context, tx usecase.Transaction, id, linkedID string) error {
	pgxTx, err := txFrom(tx)
	if err != nil {
		return err
	}

	tag, err := pgxTx.Exec(ctx,
		`UPDATE entries SET linked_entry_id = $2 WHERE id = $1`,
		id, linkedID,
	)
	if err != nil {
		return fmt.Errorf("set linked entry: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrEntryNotFound
	}

	return nil
}

// pairQuery resolves a live transfer entry and its live counterpart in one
// self-join. Either entry ID of a pair matches.
const pairQuery = `
	SELECT ` + `e.id, e.owner_id, e.account_id, e.counter_account_id, e.linked_entry_id,
		e.direction, e.category, e.subcategory, e.description, e.notes,
		e.amount, e.date, e.status, e.created_at, e.deleted_at, e.deleted_by,
		l.id, l.owner_id, l.account_id, l.counter_account_id, l.linked_entry_id,
		l.direction, l.category, l.subcategory, l.description, l.notes,
		l.amount, l.date, l.status, l.created_at, l.deleted_at, l.deleted_by
	FROM entries e
	JOIN entries l ON l.id = e.linked_entry_id
	WHERE e.id = $1
	  AND e.owner_id = $2
	  AND e.category = 'Transfer'
	  AND e.status = 'active'
	  AND l.status = 'active'`

func (r *EntryRepository) scanPair(row pgx.Row) (*domain.Entry, *domain.Entry, error) {
	var (
		found, linked           domain.Entry
		foundAmount, linkAmount pgtype.Numeric
	)

	dest := append(entryScanDest(&found, &foundAmount), entryScanDest(&linked, &linkAmount)...)

	err := row.Scan(dest...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, domain.ErrTransferNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("select entry pair: %w", err)
	}

	if found.Amount, err = numericToDecimal(foundAmount); err != nil {
		return nil, nil, fmt.Errorf("entry amount: %w", err)
	}

	if linked.Amount, err = numericToDecimal(linkAmount); err != nil {
		return nil, nil, fmt.Errorf("linked entry amount: %w", err)
	}

	return &found, &linked, nil
}

// GetPair resolves a transfer pair by either entry ID.
func (r *EntryRepository) GetPair(ctx context.Context, id, ownerID string) (*domain.Entry, *domain.Entry, error) {
	return r.scanPair(r.pool.QueryRow(ctx, pairQuery, id, ownerID))
}

// GetPairForUpdate resolves a transfer pair and locks both entry rows.
func (r *EntryRepository) GetPairForUpdate(ctx context.Context, tx usecase.Transaction, id, ownerID string) (*domain.Entry, *domain.Entry, error) {
	pgxTx, err := txFrom(tx)
	if err != nil {
		return nil, nil, err
	}

	return r.scanPair(pgxTx.QueryRow(ctx, pairQuery+`
	FOR UPDATE OF e, l`, id, ownerID))
}

// pairFilter builds the shared WHERE clause for ListPairs. The page query
// and the count query run over the identical predicate.
func pairFilter(filter usecase.TransferFilter) (string, []any) {
	conds := []string{
		"d.direction = 'debit'",
		"d.category = 'Transfer'",
		"d.status = 'active'",
		"c.status = 'active'",
	}
	args := []any{filter.OwnerID}
	conds = append(conds, "d.owner_id = $1")

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.AccountID != "" {
		// Single-account filter matches either side and overrides from/to.
		p := arg(filter.AccountID)
		conds = append(conds, fmt.Sprintf("(d.account_id = %s OR d.counter_account_id = %s)", p, p))
	} else {
		if filter.FromAccountID != "" {
			conds = append(conds, "d.account_id = "+arg(filter.FromAccountID))
		}
		if filter.ToAccountID != "" {
			conds = append(conds, "d.counter_account_id = "+arg(filter.ToAccountID))
		}
	}

	if filter.DateFrom != nil {
		conds = append(conds, "d.date >= "+arg(*filter.DateFrom))
	}
	if filter.DateTo != nil {
		conds = append(conds, "d.date <= "+arg(*filter.DateTo))
	}
	if filter.AmountMin != nil {
		conds = append(conds, "d.amount >= "+arg(decimalToNumeric(*filter.AmountMin)))
	}
	if filter.AmountMax != nil {
		conds = append(conds, "d.amount <= "+arg(decimalToNumeric(*filter.AmountMax)))
	}

	return strings.Join(conds, " AND "), args
}

// ListPairs returns a page of transfer pairs anchored on the debit entry,
// plus the total count over the same predicate.
func (r *EntryRepository) ListPairs(ctx context.Context, filter usecase.TransferFilter) ([]*usecase.EntryPair, int64, error) {
	where, args := pairFilter(filter)

	var total int64
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM entries d
		JOIN entries c ON c.id = d.linked_entry_id
		WHERE `+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count transfer pairs: %w", err)
	}

	orderCol := "d.date"
	if filter.SortBy == usecase.SortByAmount {
		orderCol = "d.amount"
	}
	orderDir := "ASC"
	if filter.SortDesc {
		orderDir = "DESC"
	}

	limitArg := fmt.Sprintf("$%d", len(args)+1)
	offsetArg := fmt.Sprintf("$%d", len(args)+2)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.pool.Query(ctx, `
		SELECT `+entryColumns("d")+`, `+entryColumns("c")+`, fa.name, ta.name
		FROM entries d
		JOIN entries c ON c.id = d.linked_entry_id
		JOIN accounts fa ON fa.id = d.account_id
		JOIN accounts ta ON ta.id = c.account_id
		WHERE `+where+`
		ORDER BY `+orderCol+` `+orderDir+`, d.id
		LIMIT `+limitArg+` OFFSET `+offsetArg,
		args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list transfer pairs: %w", err)
	}
	defer rows.Close()

	var pairs []*usecase.EntryPair
	for rows.Next() {
		var (
			debit, credit             domain.Entry
			debitAmount, creditAmount pgtype.Numeric
			fromName, toName          string
		)

		dest := append(entryScanDest(&debit, &debitAmount), entryScanDest(&credit, &creditAmount)...)
		dest = append(dest, &fromName, &toName)

		if err := rows.Scan(dest...); err != nil {
			return nil, 0, fmt.Errorf("scan transfer pair: %w", err)
		}

		if debit.Amount, err = numericToDecimal(debitAmount); err != nil {
			return nil, 0, fmt.Errorf("debit amount: %w", err)
		}

		if credit.Amount, err = numericToDecimal(creditAmount); err != nil {
			return nil, 0, fmt.Errorf("credit amount: %w", err)
		}

		pairs = append(pairs, &usecase.EntryPair{
			Debit:           &debit,
			Credit:          &credit,
			FromAccountName: fromName,
			ToAccountName:   toName,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list transfer pairs: %w", err)
	}

	return pairs, total, nil
}

// SoftDelete tombstones the given entries. Only live entries match, so a
// repeated cancellation affects zero rows and fails the count check.
func (r *EntryRepository) SoftDelete(ctx context.Context, tx usecase.Transaction, ids []string, deletedAt time.Time, deletedBy string) error {
	pgxTx, err := txFrom(tx)
	if err != nil {
		return err
	}

	tag, err := pgxTx.Exec(ctx, `
		UPDATE entries
		SET status = 'deleted', deleted_at = $2, deleted_by = $3
		WHERE id = ANY($1) AND status = 'active'`,
		ids, deletedAt, deletedBy,
	)
	if err != nil {
		return fmt.Errorf("soft delete entries: %w", err)
	}

	if tag.RowsAffected() != int64(len(ids)) {
		return domain.ErrEntryNotFound
	}

	return nil
}

// ListByAccount lists live entries for an account, newest first.
func (r *EntryRepository) ListByAccount(ctx context.Context, accountID, ownerID string, limit, offset int) ([]*domain.Entry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+entryColumns("e")+`
		FROM entries e
		WHERE e.account_id = $1 AND e.owner_id = $2 AND e.status = 'active'
		ORDER BY e.date DESC, e.id DESC
		LIMIT $3 OFFSET $4`,
		accountID, ownerID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var entries []*domain.Entry
	for rows.Next() {
		var (
			e      domain.Entry
			amount pgtype.Numeric
		)

		if err := rows.Scan(entryScanDest(&e, &amount)...); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}

		if e.Amount, err = numericToDecimal(amount); err != nil {
			return nil, fmt.Errorf("entry amount: %w", err)
		}

		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}

	return entries, nil
}

// SumLiveByAccount returns the signed sum of live entries for one account,
// debits negative and credits positive.
func (r *EntryRepository) SumLiveByAccount(ctx context.Context, tx usecase.Transaction, accountID string) (decimal.Decimal, error) {
	pgxTx, err := txFrom(tx)
	if err != nil {
		return decimal.Zero, err
	}

	var sum pgtype.Numeric
	err = pgxTx.QueryRow(ctx, `
		SELECT COALESCE(SUM(CASE WHEN direction = 'debit' THEN -amount ELSE amount END), 0)
		FROM entries
		WHERE account_id = $1 AND status = 'active'`,
		accountID,
	).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum entries: %w", err)
	}

	result, err := numericToDecimal(sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("entry sum: %w", err)
	}

	return result, nil
}
