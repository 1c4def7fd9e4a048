package storage

import (
	"context"

	"financeflow/internal/core"
)

// Ports implemented by every storage backend.
//
// Records are always matched by both ID and user ID. A record that exists
// under another user is reported as core.ErrNotFound.
type (
	TransactionRepository interface {
		// ListTransactions returns the user's transactions, newest first.
		ListTransactions(ctx context.Context, userID string) ([]core.Transaction, error)
		CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
		// UpdateTransaction replaces the mutable fields of the record matched by
		// t.ID and t.UserID. CreatedAt is kept from the stored record.
		UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
		DeleteTransaction(ctx context.Context, id, userID string) error
	}

	BudgetRepository interface {
		ListBudgets(ctx context.Context, userID string) ([]core.Budget, error)
		// CreateBudget fails with core.ErrDuplicateCategory when the user
		// already has a budget for the category.
		CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error)
		UpdateBudget(ctx context.Context, b core.Budget) (core.Budget, error)
		DeleteBudget(ctx context.Context, id, userID string) error
	}

	HealthChecker interface {
		Ping(ctx context.Context) error
	}

	// Store is the full set of capabilities a backend provides.
	Store interface {
		TransactionRepository
		BudgetRepository
		HealthChecker
		Close() error
	}
)
