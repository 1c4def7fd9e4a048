package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"financeflow/internal/storage"
	"financeflow/internal/storage/storagetest"
)

// The contract runs against a real server only when FINANCEFLOW_TEST_DATABASE_URL
// points at a disposable database.
func TestRepositoryContract(t *testing.T) {
	url := os.Getenv("FINANCEFLOW_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("FINANCEFLOW_TEST_DATABASE_URL not set")
	}

	storagetest.Run(t, func(t *testing.T) storage.Store {
		ctx := context.Background()
		repo, err := NewRepository(ctx, url)
		if err != nil {
			t.Fatalf("NewRepository: %v", err)
		}
		if _, err := repo.pool.Exec(ctx, `TRUNCATE transactions, budgets`); err != nil {
			t.Fatalf("truncate: %v", err)
		}
		t.Cleanup(func() { repo.Close() })
		return repo
	})
}

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"unique violation", &pgconn.PgError{Code: "23505"}, true},
		{"wrapped unique violation", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), true},
		{"check violation", &pgconn.PgError{Code: "23514"}, false},
		{"other error", context.Canceled, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isUniqueViolation(tt.err); got != tt.want {
				t.Fatalf("isUniqueViolation() = %v, want %v", got, tt.want)
			}
		})
	}
}
