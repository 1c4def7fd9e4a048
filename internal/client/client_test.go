package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"financeflow/internal/core"
	apihttp "financeflow/internal/http"
	"financeflow/internal/log"
	"financeflow/internal/report"
	"financeflow/internal/services"
	"financeflow/internal/storage/memory"
)

var testNow = time.Date(2024, time.March, 20, 9, 0, 0, 0, time.UTC)

func newTestAPI(t *testing.T) string {
	t.Helper()
	svc := services.NewFinanceService(memory.New(), nil,
		services.WithLogger(log.Discard()),
		services.WithClock(func() time.Time { return testNow }))
	srv := apihttp.NewServer(":0", svc,
		apihttp.WithServerLogger(log.Discard()),
		apihttp.WithServerClock(func() time.Time { return testNow }))
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)
	return ts.URL
}

func lunch() TransactionRequest {
	return TransactionRequest{
		Amount:      decimal.RequireFromString("12.50"),
		Date:        "2024-03-05",
		Description: "Lunch",
		Type:        string(core.Expense),
		Category:    "Food",
	}
}

func TestTransactionRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := New(newTestAPI(t), "alice")

	created, err := c.CreateTransaction(ctx, lunch())
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	if created.ID == "" || created.UserID != "alice" {
		t.Fatalf("created = %+v", created)
	}
	if !created.Amount.Equal(decimal.RequireFromString("12.5")) {
		t.Fatalf("amount = %s", created.Amount)
	}

	req := lunch()
	req.Description = "Dinner"
	updated, err := c.UpdateTransaction(ctx, created.ID, req)
	if err != nil {
		t.Fatalf("UpdateTransaction: %v", err)
	}
	if updated.Description != "Dinner" {
		t.Fatalf("description = %q", updated.Description)
	}

	txs, err := c.ListTransactions(ctx)
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(txs) != 1 {
		t.Fatalf("len = %d, want 1", len(txs))
	}

	stats, err := c.TransactionStats(ctx)
	if err != nil {
		t.Fatalf("TransactionStats: %v", err)
	}
	if stats.TransactionCount != 1 || !stats.TotalExpenses.Equal(decimal.RequireFromString("12.5")) {
		t.Fatalf("stats = %+v", stats)
	}

	if err := c.DeleteTransaction(ctx, created.ID); err != nil {
		t.Fatalf("DeleteTransaction: %v", err)
	}
	if err := c.DeleteTransaction(ctx, created.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestUsersAreIsolated(t *testing.T) {
	ctx := context.Background()
	url := newTestAPI(t)
	alice, bob := New(url, "alice"), New(url, "bob")

	created, err := alice.CreateTransaction(ctx, lunch())
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	txs, err := bob.ListTransactions(ctx)
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(txs) != 0 {
		t.Fatalf("bob sees %d transactions", len(txs))
	}
	if err := bob.DeleteTransaction(ctx, created.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("cross-user delete err = %v, want ErrNotFound", err)
	}
}

func TestBudgetsAndSummary(t *testing.T) {
	ctx := context.Background()
	c := New(newTestAPI(t), "alice")

	budget, err := c.CreateBudget(ctx, BudgetRequest{Category: "Food", Amount: decimal.NewFromInt(10)})
	if err != nil {
		t.Fatalf("CreateBudget: %v", err)
	}
	_, err = c.CreateBudget(ctx, BudgetRequest{Category: "Food", Amount: decimal.NewFromInt(20)})
	if !errors.Is(err, core.ErrDuplicateCategory) {
		t.Fatalf("duplicate err = %v, want ErrDuplicateCategory", err)
	}

	if _, err := c.CreateTransaction(ctx, lunch()); err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	summary, err := c.Summary(ctx, 5)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if len(summary.Recent) != 1 {
		t.Fatalf("recent = %d, want 1", len(summary.Recent))
	}
	if len(summary.BudgetComparison) != 1 || summary.BudgetComparison[0].Status != report.StatusOver {
		t.Fatalf("budget comparison = %+v", summary.BudgetComparison)
	}

	updated, err := c.UpdateBudget(ctx, budget.ID, BudgetRequest{Category: "Food", Amount: decimal.NewFromInt(50)})
	if err != nil {
		t.Fatalf("UpdateBudget: %v", err)
	}
	if !updated.Amount.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("amount = %s", updated.Amount)
	}

	budgets, err := c.ListBudgets(ctx)
	if err != nil || len(budgets) != 1 {
		t.Fatalf("ListBudgets = %v, %v", budgets, err)
	}
	if err := c.DeleteBudget(ctx, budget.ID); err != nil {
		t.Fatalf("DeleteBudget: %v", err)
	}
}

func TestValidationErrorCarriesField(t *testing.T) {
	c := New(newTestAPI(t), "alice")

	req := lunch()
	req.Amount = decimal.Zero
	_, err := c.CreateTransaction(context.Background(), req)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest || apiErr.Code != "validation_error" || apiErr.Field != "amount" {
		t.Fatalf("api error = %+v", apiErr)
	}
	var verr *core.ValidationError
	if !errors.As(err, &verr) || verr.Field != "amount" {
		t.Fatalf("err does not unwrap to a validation error on amount: %v", err)
	}
}

func TestMissingUserID(t *testing.T) {
	c := New(newTestAPI(t), "")
	if _, err := c.ListBudgets(context.Background()); !errors.Is(err, core.ErrMissingUserID) {
		t.Fatalf("err = %v, want ErrMissingUserID", err)
	}
}

func TestCategories(t *testing.T) {
	c := New(newTestAPI(t), "alice")
	cats, err := c.Categories(context.Background())
	if err != nil {
		t.Fatalf("Categories: %v", err)
	}
	if len(cats[core.Expense]) == 0 || len(cats[core.Income]) == 0 {
		t.Fatalf("categories = %v", cats)
	}
}

func TestNonJSONErrorResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer ts.Close()

	_, err := New(ts.URL, "alice").ListTransactions(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadGateway {
		t.Fatalf("err = %v, want 502 APIError", err)
	}
	if apiErr.Message != http.StatusText(http.StatusBadGateway) {
		t.Fatalf("message = %q", apiErr.Message)
	}
}

func TestTimeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer ts.Close()

	c := New(ts.URL, "alice", WithTimeout(20*time.Millisecond))
	if _, err := c.ListBudgets(context.Background()); err == nil {
		t.Fatal("expected timeout error")
	}
}
