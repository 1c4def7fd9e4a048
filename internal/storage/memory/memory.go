// Package memory is an in-process storage backend for development and tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"financeflow/internal/core"
	"financeflow/internal/storage"
)

type Store struct {
	mu           sync.Mutex
	transactions []core.Transaction
	budgets      []core.Budget
}

var _ storage.Store = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// ListTransactions returns the user's transactions, newest first. Records with
// equal creation times are returned latest insert first.
func (s *Store) ListTransactions(_ context.Context, userID string) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, 0)
	for i := len(s.transactions) - 1; i >= 0; i-- {
		if s.transactions[i].UserID == userID {
			out = append(out, s.transactions[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) CreateTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions = append(s.transactions, t)
	return t, nil
}

func (s *Store) UpdateTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.findTransaction(t.ID, t.UserID)
	if i < 0 {
		return core.Transaction{}, core.ErrNotFound
	}
	t.CreatedAt = s.transactions[i].CreatedAt
	s.transactions[i] = t
	return t, nil
}

func (s *Store) DeleteTransaction(_ context.Context, id, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.findTransaction(id, userID)
	if i < 0 {
		return core.ErrNotFound
	}
	s.transactions = append(s.transactions[:i], s.transactions[i+1:]...)
	return nil
}

func (s *Store) ListBudgets(_ context.Context, userID string) ([]core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Budget, 0)
	for i := len(s.budgets) - 1; i >= 0; i-- {
		if s.budgets[i].UserID == userID {
			out = append(out, s.budgets[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) CreateBudget(_ context.Context, b core.Budget) (core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.categoryTaken(b.UserID, b.Category, "") {
		return core.Budget{}, core.ErrDuplicateCategory
	}
	s.budgets = append(s.budgets, b)
	return b, nil
}

func (s *Store) UpdateBudget(_ context.Context, b core.Budget) (core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.findBudget(b.ID, b.UserID)
	if i < 0 {
		return core.Budget{}, core.ErrNotFound
	}
	if s.categoryTaken(b.UserID, b.Category, b.ID) {
		return core.Budget{}, core.ErrDuplicateCategory
	}
	b.CreatedAt = s.budgets[i].CreatedAt
	s.budgets[i] = b
	return b, nil
}

func (s *Store) DeleteBudget(_ context.Context, id, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.findBudget(id, userID)
	if i < 0 {
		return core.ErrNotFound
	}
	s.budgets = append(s.budgets[:i], s.budgets[i+1:]...)
	return nil
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }

func (s *Store) findTransaction(id, userID string) int {
	for i, t := range s.transactions {
		if t.ID == id && t.UserID == userID {
			return i
		}
	}
	return -1
}

func (s *Store) findBudget(id, userID string) int {
	for i, b := range s.budgets {
		if b.ID == id && b.UserID == userID {
			return i
		}
	}
	return -1
}

// categoryTaken reports whether another budget of the user already uses the
// category. Comparison is exact, like the unique index of the SQL backends.
func (s *Store) categoryTaken(userID, category, exceptID string) bool {
	for _, b := range s.budgets {
		if b.UserID == userID && b.Category == category && b.ID != exceptID {
			return true
		}
	}
	return false
}
