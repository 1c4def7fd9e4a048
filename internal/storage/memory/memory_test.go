package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"financeflow/internal/storage"
	"financeflow/internal/storage/storagetest"
)

func TestStoreContract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Store { return New() })
}

func TestConcurrentDuplicateBudgets(t *testing.T) {
	s := New()
	ctx := context.Background()
	now := time.Now()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.CreateBudget(ctx, storagetest.Budget("alice", "Food", "100", now)); err == nil {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if created != 1 {
		t.Fatalf("%d concurrent creates succeeded, want exactly 1", created)
	}
	budgets, err := s.ListBudgets(ctx, "alice")
	if err != nil {
		t.Fatalf("ListBudgets: %v", err)
	}
	if len(budgets) != 1 {
		t.Fatalf("store holds %d budgets, want 1", len(budgets))
	}
}
