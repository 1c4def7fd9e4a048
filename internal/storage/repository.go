package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"financeflow/internal/core"
)

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

var _ Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows one writer at a time.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context, userID string) ([]core.Transaction, error) {
	rows, err := r.queries.ListTransactions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	out := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		t, err := row.toCore()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	row, err := r.queries.CreateTransaction(ctx, transactionRow(t))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	slog.DebugContext(ctx, "Transaction saved to SQLite",
		"id", row.ID,
		"type", row.Type,
		"category", row.Category)

	return row.toCore()
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	row, err := r.queries.UpdateTransaction(ctx, transactionRow(t))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Transaction{}, core.ErrNotFound
		}
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	return row.toCore()
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id, userID string) error {
	n, err := r.queries.DeleteTransaction(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) ListBudgets(ctx context.Context, userID string) ([]core.Budget, error) {
	rows, err := r.queries.ListBudgets(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	out := make([]core.Budget, 0, len(rows))
	for _, row := range rows {
		b, err := row.toCore()
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

func (r *SQLiteRepository) CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	row, err := r.queries.CreateBudget(ctx, budgetRow(b))
	if err != nil {
		if isUniqueViolation(err) {
			return core.Budget{}, core.ErrDuplicateCategory
		}
		return core.Budget{}, fmt.Errorf("create budget: %w", err)
	}

	slog.DebugContext(ctx, "Budget saved to SQLite", "id", row.ID, "category", row.Category)
	return row.toCore()
}

func (r *SQLiteRepository) UpdateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	row, err := r.queries.UpdateBudget(ctx, budgetRow(b))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return core.Budget{}, core.ErrNotFound
		case isUniqueViolation(err):
			return core.Budget{}, core.ErrDuplicateCategory
		}
		return core.Budget{}, fmt.Errorf("update budget: %w", err)
	}
	return row.toCore()
}

func (r *SQLiteRepository) DeleteBudget(ctx context.Context, id, userID string) error {
	n, err := r.queries.DeleteBudget(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	return errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

func transactionRow(t core.Transaction) TransactionRow {
	return TransactionRow{
		ID:          t.ID,
		UserID:      t.UserID,
		Amount:      t.Amount.String(),
		Date:        t.Date,
		Description: t.Description,
		Type:        string(t.Type),
		Category:    t.Category,
		CreatedAt:   formatTime(t.CreatedAt),
		UpdatedAt:   formatTime(t.UpdatedAt),
	}
}

func (row TransactionRow) toCore() (core.Transaction, error) {
	amount, err := decimal.NewFromString(row.Amount)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("decode amount of transaction %s: %w", row.ID, err)
	}
	created, err := parseTime(row.CreatedAt)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("decode created_at of transaction %s: %w", row.ID, err)
	}
	updated, err := parseTime(row.UpdatedAt)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("decode updated_at of transaction %s: %w", row.ID, err)
	}
	return core.Transaction{
		ID:          row.ID,
		UserID:      row.UserID,
		Amount:      amount,
		Date:        row.Date,
		Description: row.Description,
		Type:        core.TransactionType(row.Type),
		Category:    row.Category,
		CreatedAt:   created,
		UpdatedAt:   updated,
	}, nil
}

func budgetRow(b core.Budget) BudgetRow {
	return BudgetRow{
		ID:        b.ID,
		UserID:    b.UserID,
		Category:  b.Category,
		Amount:    b.Amount.String(),
		CreatedAt: formatTime(b.CreatedAt),
		UpdatedAt: formatTime(b.UpdatedAt),
	}
}

func (row BudgetRow) toCore() (core.Budget, error) {
	amount, err := decimal.NewFromString(row.Amount)
	if err != nil {
		return core.Budget{}, fmt.Errorf("decode amount of budget %s: %w", row.ID, err)
	}
	created, err := parseTime(row.CreatedAt)
	if err != nil {
		return core.Budget{}, fmt.Errorf("decode created_at of budget %s: %w", row.ID, err)
	}
	updated, err := parseTime(row.UpdatedAt)
	if err != nil {
		return core.Budget{}, fmt.Errorf("decode updated_at of budget %s: %w", row.ID, err)
	}
	return core.Budget{
		ID:        row.ID,
		UserID:    row.UserID,
		Category:  row.Category,
		Amount:    amount,
		CreatedAt: created,
		UpdatedAt: updated,
	}, nil
}
