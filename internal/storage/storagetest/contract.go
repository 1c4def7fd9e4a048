// Package storagetest holds the behaviour every storage backend must share.
package storagetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"financeflow/internal/core"
	"financeflow/internal/storage"
)

// Run exercises newStore against the repository contract. newStore must
// return an empty store; cleanup is registered by the caller via t.Cleanup.
func Run(t *testing.T, newStore func(t *testing.T) storage.Store) {
	t.Helper()

	t.Run("TransactionRoundTrip", func(t *testing.T) { testTransactionRoundTrip(t, newStore(t)) })
	t.Run("TransactionOrdering", func(t *testing.T) { testTransactionOrdering(t, newStore(t)) })
	t.Run("TransactionScoping", func(t *testing.T) { testTransactionScoping(t, newStore(t)) })
	t.Run("BudgetUniqueness", func(t *testing.T) { testBudgetUniqueness(t, newStore(t)) })
	t.Run("BudgetScoping", func(t *testing.T) { testBudgetScoping(t, newStore(t)) })
	t.Run("Ping", func(t *testing.T) {
		if err := newStore(t).Ping(context.Background()); err != nil {
			t.Fatalf("Ping: %v", err)
		}
	})
}

var base = time.Date(2024, time.March, 1, 9, 30, 0, 0, time.UTC)

func Transaction(userID, amount, category string, createdAt time.Time) core.Transaction {
	return core.Transaction{
		ID:          uuid.NewString(),
		UserID:      userID,
		Amount:      decimal.RequireFromString(amount),
		Date:        createdAt.Format(time.DateOnly),
		Description: "entry " + category,
		Type:        core.Expense,
		Category:    category,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
}

func Budget(userID, category, amount string, createdAt time.Time) core.Budget {
	return core.Budget{
		ID:        uuid.NewString(),
		UserID:    userID,
		Category:  category,
		Amount:    decimal.RequireFromString(amount),
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func testTransactionRoundTrip(t *testing.T, s storage.Store) {
	ctx := context.Background()
	in := Transaction("alice", "12.345", "Food & Dining", base)
	in.Description = "Café latte"

	created, err := s.CreateTransaction(ctx, in)
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	if created.ID != in.ID || !created.Amount.Equal(in.Amount) || created.Description != in.Description {
		t.Fatalf("created = %+v, want %+v", created, in)
	}
	if !created.CreatedAt.Equal(in.CreatedAt) {
		t.Fatalf("CreatedAt = %v, want %v", created.CreatedAt, in.CreatedAt)
	}

	upd := created
	upd.Amount = decimal.RequireFromString("99.9")
	upd.Type = core.Income
	upd.Category = "Bonus"
	upd.Date = "2024-04-02"
	upd.UpdatedAt = base.Add(time.Hour)
	got, err := s.UpdateTransaction(ctx, upd)
	if err != nil {
		t.Fatalf("UpdateTransaction: %v", err)
	}
	if !got.Amount.Equal(upd.Amount) || got.Type != core.Income || got.Category != "Bonus" || got.Date != "2024-04-02" {
		t.Fatalf("updated = %+v", got)
	}
	if !got.CreatedAt.Equal(base) || !got.UpdatedAt.Equal(upd.UpdatedAt) {
		t.Fatalf("timestamps after update: created %v updated %v", got.CreatedAt, got.UpdatedAt)
	}

	list, err := s.ListTransactions(ctx, "alice")
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(list) != 1 || list[0].ID != in.ID || !list[0].Amount.Equal(upd.Amount) {
		t.Fatalf("list = %+v", list)
	}

	if err := s.DeleteTransaction(ctx, in.ID, "alice"); err != nil {
		t.Fatalf("DeleteTransaction: %v", err)
	}
	if err := s.DeleteTransaction(ctx, in.ID, "alice"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("second delete: got %v, want ErrNotFound", err)
	}
	if _, err := s.UpdateTransaction(ctx, upd); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("update after delete: got %v, want ErrNotFound", err)
	}

	list, err = s.ListTransactions(ctx, "alice")
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if list == nil || len(list) != 0 {
		t.Fatalf("list after delete = %#v, want empty slice", list)
	}
}

func testTransactionOrdering(t *testing.T, s storage.Store) {
	ctx := context.Background()
	first := Transaction("alice", "1", "A", base)
	second := Transaction("alice", "2", "B", base.Add(time.Minute))
	sameTimeLater := Transaction("alice", "3", "C", base.Add(time.Minute))

	for _, tx := range []core.Transaction{first, second, sameTimeLater} {
		if _, err := s.CreateTransaction(ctx, tx); err != nil {
			t.Fatalf("CreateTransaction: %v", err)
		}
	}

	list, err := s.ListTransactions(ctx, "alice")
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	want := []string{sameTimeLater.ID, second.ID, first.ID}
	if len(list) != len(want) {
		t.Fatalf("got %d transactions, want %d", len(list), len(want))
	}
	for i, id := range want {
		if list[i].ID != id {
			t.Errorf("position %d: got %s (%s), want %s", i, list[i].ID, list[i].Category, id)
		}
	}
}

func testTransactionScoping(t *testing.T, s storage.Store) {
	ctx := context.Background()
	owned := Transaction("alice", "10", "Food", base)
	if _, err := s.CreateTransaction(ctx, owned); err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	stolen := owned
	stolen.UserID = "mallory"
	stolen.Amount = decimal.NewFromInt(1)
	if _, err := s.UpdateTransaction(ctx, stolen); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("foreign update: got %v, want ErrNotFound", err)
	}
	if err := s.DeleteTransaction(ctx, owned.ID, "mallory"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("foreign delete: got %v, want ErrNotFound", err)
	}

	list, err := s.ListTransactions(ctx, "mallory")
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("mallory sees %d transactions", len(list))
	}

	list, err = s.ListTransactions(ctx, "alice")
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(list) != 1 || !list[0].Amount.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("alice's transaction was modified: %+v", list)
	}
}

func testBudgetUniqueness(t *testing.T, s storage.Store) {
	ctx := context.Background()
	if _, err := s.CreateBudget(ctx, Budget("alice", "Food", "500", base)); err != nil {
		t.Fatalf("first CreateBudget: %v", err)
	}
	if _, err := s.CreateBudget(ctx, Budget("alice", "Food", "300", base)); !errors.Is(err, core.ErrDuplicateCategory) {
		t.Fatalf("duplicate CreateBudget: got %v, want ErrDuplicateCategory", err)
	}
	if _, err := s.CreateBudget(ctx, Budget("bob", "Food", "300", base)); err != nil {
		t.Fatalf("same category for another user: %v", err)
	}

	travel, err := s.CreateBudget(ctx, Budget("alice", "Travel", "200", base.Add(time.Second)))
	if err != nil {
		t.Fatalf("CreateBudget: %v", err)
	}
	travel.Category = "Food"
	if _, err := s.UpdateBudget(ctx, travel); !errors.Is(err, core.ErrDuplicateCategory) {
		t.Fatalf("rename onto existing category: got %v, want ErrDuplicateCategory", err)
	}

	travel.Category = "Holidays"
	travel.Amount = decimal.RequireFromString("250.50")
	got, err := s.UpdateBudget(ctx, travel)
	if err != nil {
		t.Fatalf("UpdateBudget: %v", err)
	}
	if got.Category != "Holidays" || !got.Amount.Equal(travel.Amount) {
		t.Fatalf("updated budget = %+v", got)
	}

	list, err := s.ListBudgets(ctx, "alice")
	if err != nil {
		t.Fatalf("ListBudgets: %v", err)
	}
	if len(list) != 2 || list[0].Category != "Holidays" || list[1].Category != "Food" {
		t.Fatalf("alice budgets = %+v", list)
	}
}

func testBudgetScoping(t *testing.T, s storage.Store) {
	ctx := context.Background()
	b, err := s.CreateBudget(ctx, Budget("alice", "Food", "500", base))
	if err != nil {
		t.Fatalf("CreateBudget: %v", err)
	}

	foreign := b
	foreign.UserID = "mallory"
	if _, err := s.UpdateBudget(ctx, foreign); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("foreign update: got %v, want ErrNotFound", err)
	}
	if err := s.DeleteBudget(ctx, b.ID, "mallory"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("foreign delete: got %v, want ErrNotFound", err)
	}
	if err := s.DeleteBudget(ctx, b.ID, "alice"); err != nil {
		t.Fatalf("DeleteBudget: %v", err)
	}
	if _, err := s.CreateBudget(ctx, Budget("alice", "Food", "100", base)); err != nil {
		t.Fatalf("recreate after delete: %v", err)
	}
}
