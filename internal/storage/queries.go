package storage

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

// Row types mirror the table columns as stored by SQLite.
type (
	TransactionRow struct {
		ID          string
		UserID      string
		Amount      string
		Date        string
		Description string
		Type        string
		Category    string
		CreatedAt   string
		UpdatedAt   string
	}

	BudgetRow struct {
		ID        string
		UserID    string
		Category  string
		Amount    string
		CreatedAt string
		UpdatedAt string
	}
)

const transactionColumns = `id, user_id, amount, date, description, type, category, created_at, updated_at`

func scanTransaction(s interface{ Scan(...interface{}) error }) (TransactionRow, error) {
	var i TransactionRow
	err := s.Scan(
		&i.ID,
		&i.UserID,
		&i.Amount,
		&i.Date,
		&i.Description,
		&i.Type,
		&i.Category,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listTransactions = `SELECT ` + transactionColumns + `
FROM transactions
WHERE user_id = ?
ORDER BY created_at DESC, rowid DESC`

func (q *Queries) ListTransactions(ctx context.Context, userID string) ([]TransactionRow, error) {
	rows, err := q.db.QueryContext(ctx, listTransactions, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []TransactionRow{}
	for rows.Next() {
		i, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createTransaction = `INSERT INTO transactions (` + transactionColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + transactionColumns

func (q *Queries) CreateTransaction(ctx context.Context, arg TransactionRow) (TransactionRow, error) {
	row := q.db.QueryRowContext(ctx, createTransaction,
		arg.ID,
		arg.UserID,
		arg.Amount,
		arg.Date,
		arg.Description,
		arg.Type,
		arg.Category,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return scanTransaction(row)
}

const updateTransaction = `UPDATE transactions
SET amount = ?, date = ?, description = ?, type = ?, category = ?, updated_at = ?
WHERE id = ? AND user_id = ?
RETURNING ` + transactionColumns

func (q *Queries) UpdateTransaction(ctx context.Context, arg TransactionRow) (TransactionRow, error) {
	row := q.db.QueryRowContext(ctx, updateTransaction,
		arg.Amount,
		arg.Date,
		arg.Description,
		arg.Type,
		arg.Category,
		arg.UpdatedAt,
		arg.ID,
		arg.UserID,
	)
	return scanTransaction(row)
}

const deleteTransaction = `DELETE FROM transactions WHERE id = ? AND user_id = ?`

func (q *Queries) DeleteTransaction(ctx context.Context, id, userID string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteTransaction, id, userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const budgetColumns = `id, user_id, category, amount, created_at, updated_at`

func scanBudget(s interface{ Scan(...interface{}) error }) (BudgetRow, error) {
	var i BudgetRow
	err := s.Scan(
		&i.ID,
		&i.UserID,
		&i.Category,
		&i.Amount,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listBudgets = `SELECT ` + budgetColumns + `
FROM budgets
WHERE user_id = ?
ORDER BY created_at DESC, rowid DESC`

func (q *Queries) ListBudgets(ctx context.Context, userID string) ([]BudgetRow, error) {
	rows, err := q.db.QueryContext(ctx, listBudgets, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []BudgetRow{}
	for rows.Next() {
		i, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createBudget = `INSERT INTO budgets (` + budgetColumns + `)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING ` + budgetColumns

func (q *Queries) CreateBudget(ctx context.Context, arg BudgetRow) (BudgetRow, error) {
	row := q.db.QueryRowContext(ctx, createBudget,
		arg.ID,
		arg.UserID,
		arg.Category,
		arg.Amount,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return scanBudget(row)
}

const updateBudget = `UPDATE budgets
SET category = ?, amount = ?, updated_at = ?
WHERE id = ? AND user_id = ?
RETURNING ` + budgetColumns

func (q *Queries) UpdateBudget(ctx context.Context, arg BudgetRow) (BudgetRow, error) {
	row := q.db.QueryRowContext(ctx, updateBudget,
		arg.Category,
		arg.Amount,
		arg.UpdatedAt,
		arg.ID,
		arg.UserID,
	)
	return scanBudget(row)
}

const deleteBudget = `DELETE FROM budgets WHERE id = ? AND user_id = ?`

func (q *Queries) DeleteBudget(ctx context.Context, id, userID string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteBudget, id, userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
