package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/famstack/famledger/internal/domain"
	"github.com/famstack/famledger/internal/usecase"
)

// AccountRepository implements usecase.AccountRepository on PostgreSQL.
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

const accountColumns = `id, owner_id, name, type, opening_balance, current_balance, available_balance, created_at, updated_at`

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var (
		a                           domain.Account
		opening, current, available pgtype.Numeric
	)

	err := row.Scan(
		&a.ID, &a.OwnerID, &a.Name, &a.Type,
		&opening, &current, &available,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if a.OpeningBalance, err = numericToDecimal(opening); err != nil {
		return nil, fmt.Errorf("opening_balance: %w", err)
	}

	if a.CurrentBalance, err = numericToDecimal(current); err != nil {
		return nil, fmt.Errorf("current_balance: %w", err)
	}

	if a.AvailableBalance, err = numericToDecimal(available); err != nil {
		return nil, fmt.Errorf("available_balance: %w", err)
	}

	return &a, nil
}

// Create inserts an account.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		account.ID, account.OwnerID, account.Name, account.Type,
		decimalToNumeric(account.OpeningBalance),
		decimalToNumeric(account.CurrentBalance),
		decimalToNumeric(account.AvailableBalance),
		account.CreatedAt, account.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}

	return nil
}

// GetByID fetches an account scoped to its owner.
func (r *AccountRepository) GetByID(ctx context.Context, id, ownerID string) (*domain.Account, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE id = $1 AND owner_id = $2`,
		id, ownerID,
	)

	account, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select account: %w", err)
	}

	return account, nil
}

// GetByIDsForUpdate locks the account rows. The ORDER BY keeps lock
// acquisition in ascending ID order across concurrent transactions.
func (r *AccountRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ownerID string, ids []string) ([]*domain.Account, error) {
	pgxTx, err := txFrom(tx)
	if err != nil {
		return nil, err
	}

	rows, err := pgxTx.Query(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE owner_id = $1 AND id = ANY($2)
		ORDER BY id
		FOR UPDATE`,
		ownerID, ids,
	)
	if err != nil {
		return nil, fmt.Errorf("lock accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*domain.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("lock accounts: %w", err)
	}

	return accounts, nil
}

// ApplyBalanceDelta shifts both balances by delta in a single statement, so
// the arithmetic happens on the locked row rather than in Go.
func (r *AccountRepository) ApplyBalanceDelta(ctx context.Context, tx usecase.Transaction, id string, delta decimal.Decimal, updatedAt time.Time) error {
	pgxTx, err := txFrom(tx)
	if err != nil {
		return err
	}

	tag, err := pgxTx.Exec(ctx, `
		UPDATE accounts
		SET current_balance = current_balance + $2,
		    available_balance = available_balance + $2,
		    updated_at = $3
		WHERE id = $1`,
		id, decimalToNumeric(delta), updatedAt,
	)
	if err != nil {
		return fmt.Errorf("apply balance delta: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}

// SetBalances writes both balances absolutely.
func (r *AccountRepository) SetBalances(ctx context.Context, tx usecase.Transaction, id string, current, available decimal.Decimal, updatedAt time.Time) error {
	pgxTx, err := txFrom(tx)
	if err != nil {
		return err
	}

	tag, err := pgxTx.Exec(ctx, `
		UPDATE accounts
		SET current_balance = $2,
		    available_balance = $3,
		    updated_at = $4
		WHERE id = $1`,
		id, decimalToNumeric(current), decimalToNumeric(available), updatedAt,
	)
	if err != nil {
		return fmt.Errorf("set balances: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}

// List returns the owner's accounts ordered by name.
func (r *AccountRepository) List(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Account, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE owner_id = $1
		ORDER BY name, id
		LIMIT $2 OFFSET $3`,
		ownerID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*domain.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	return accounts, nil
}
