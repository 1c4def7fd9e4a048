// Package postgres implements the storage ports on PostgreSQL through a pgx
// connection pool.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"financeflow/internal/core"
	"financeflow/internal/storage"
)

const uniqueViolation = "23505"

type Repository struct {
	pool *pgxpool.Pool
}

var _ storage.Store = (*Repository)(nil)

// NewRepository migrates the schema and opens a connection pool.
func NewRepository(ctx context.Context, databaseURL string) (*Repository, error) {
	if err := RunMigrations(databaseURL); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Repository{pool: pool}, nil
}

func (r *Repository) Close() error {
	r.pool.Close()
	return nil
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Numeric and date columns are read back as text to keep full precision and
// avoid any time zone conversion of calendar dates.
const transactionColumns = `id::text, user_id, amount::text, to_char(date, 'YYYY-MM-DD'),
	description, type, category, created_at, updated_at`

func scanTransaction(row pgx.Row) (core.Transaction, error) {
	var (
		t      core.Transaction
		amount string
		typ    string
	)
	err := row.Scan(&t.ID, &t.UserID, &amount, &t.Date, &t.Description, &typ, &t.Category, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return core.Transaction{}, err
	}
	t.Type = core.TransactionType(typ)
	if t.Amount, err = decimal.NewFromString(amount); err != nil {
		return core.Transaction{}, fmt.Errorf("decode amount of transaction %s: %w", t.ID, err)
	}
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return t, nil
}

func (r *Repository) ListTransactions(ctx context.Context, userID string) ([]core.Transaction, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC, seq DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	out := make([]core.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return out, nil
}

func (r *Repository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO transactions (id, user_id, amount, date, description, type, category, created_at, updated_at)
		VALUES ($1, $2, $3::numeric, $4::date, $5, $6, $7, $8, $9)
		RETURNING `+transactionColumns,
		t.ID, t.UserID, t.Amount.String(), t.Date, t.Description, string(t.Type), t.Category, t.CreatedAt, t.UpdatedAt)
	created, err := scanTransaction(row)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	return created, nil
}

func (r *Repository) UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE transactions
		SET amount = $1::numeric, date = $2::date, description = $3, type = $4, category = $5, updated_at = $6
		WHERE id::text = $7 AND user_id = $8
		RETURNING `+transactionColumns,
		t.Amount.String(), t.Date, t.Description, string(t.Type), t.Category, t.UpdatedAt, t.ID, t.UserID)
	updated, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return core.Transaction{}, core.ErrNotFound
		}
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	return updated, nil
}

func (r *Repository) DeleteTransaction(ctx context.Context, id, userID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM transactions WHERE id::text = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	return nil
}

const budgetColumns = `id::text, user_id, category, amount::text, created_at, updated_at`

func scanBudget(row pgx.Row) (core.Budget, error) {
	var (
		b      core.Budget
		amount string
	)
	if err := row.Scan(&b.ID, &b.UserID, &b.Category, &amount, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return core.Budget{}, err
	}
	var err error
	if b.Amount, err = decimal.NewFromString(amount); err != nil {
		return core.Budget{}, fmt.Errorf("decode amount of budget %s: %w", b.ID, err)
	}
	b.CreatedAt = b.CreatedAt.UTC()
	b.UpdatedAt = b.UpdatedAt.UTC()
	return b, nil
}

func (r *Repository) ListBudgets(ctx context.Context, userID string) ([]core.Budget, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+budgetColumns+`
		FROM budgets
		WHERE user_id = $1
		ORDER BY created_at DESC, seq DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	out := make([]core.Budget, 0)
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	return out, nil
}

func (r *Repository) CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO budgets (id, user_id, category, amount, created_at, updated_at)
		VALUES ($1, $2, $3, $4::numeric, $5, $6)
		RETURNING `+budgetColumns,
		b.ID, b.UserID, b.Category, b.Amount.String(), b.CreatedAt, b.UpdatedAt)
	created, err := scanBudget(row)
	if err != nil {
		if isUniqueViolation(err) {
			return core.Budget{}, core.ErrDuplicateCategory
		}
		return core.Budget{}, fmt.Errorf("create budget: %w", err)
	}
	return created, nil
}

func (r *Repository) UpdateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE budgets
		SET category = $1, amount = $2::numeric, updated_at = $3
		WHERE id::text = $4 AND user_id = $5
		RETURNING `+budgetColumns,
		b.Category, b.Amount.String(), b.UpdatedAt, b.ID, b.UserID)
	updated, err := scanBudget(row)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return core.Budget{}, core.ErrNotFound
		case isUniqueViolation(err):
			return core.Budget{}, core.ErrDuplicateCategory
		}
		return core.Budget{}, fmt.Errorf("update budget: %w", err)
	}
	return updated, nil
}

func (r *Repository) DeleteBudget(ctx context.Context, id, userID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM budgets WHERE id::text = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
