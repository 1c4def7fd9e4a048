package report

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"financeflow/internal/core"
)

func tx(id string, amount string, typ core.TransactionType, category, date string) core.Transaction {
	return core.Transaction{
		ID:       id,
		UserID:   "user-1",
		Amount:   decimal.RequireFromString(amount),
		Date:     date,
		Type:     typ,
		Category: category,
	}
}

func marchSample() []core.Transaction {
	return []core.Transaction{
		tx("1", "1000", core.Income, "Salary", "2024-03-01"),
		tx("2", "300", core.Expense, "Food", "2024-03-05"),
		tx("3", "200", core.Expense, "Food", "2024-03-10"),
	}
}

func TestEndToEndExample(t *testing.T) {
	txs := marchSample()

	if got := TotalBalance(txs); !got.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("TotalBalance = %s, want 500", got)
	}

	cats := CategoryBreakdown(txs)
	if len(cats) != 1 {
		t.Fatalf("CategoryBreakdown returned %d rows, want 1", len(cats))
	}
	c := cats[0]
	if c.Category != "Food" || !c.Amount.Equal(decimal.NewFromInt(500)) || c.Count != 2 || c.Percentage != 100 {
		t.Fatalf("CategoryBreakdown[0] = %+v", c)
	}

	months := MonthlySeries(txs)
	if len(months) != 1 {
		t.Fatalf("MonthlySeries returned %d rows, want 1", len(months))
	}
	m := months[0]
	if m.Month != "2024-03" ||
		!m.Income.Equal(decimal.NewFromInt(1000)) ||
		!m.Expenses.Equal(decimal.NewFromInt(500)) ||
		!m.Amount.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("MonthlySeries[0] = %+v", m)
	}
}

func TestEmptyInput(t *testing.T) {
	if got := TotalBalance(nil); !got.IsZero() {
		t.Errorf("TotalBalance(nil) = %s, want 0", got)
	}
	if got := MonthlySeries(nil); got == nil || len(got) != 0 {
		t.Errorf("MonthlySeries(nil) = %#v, want empty slice", got)
	}
	if got := CategoryBreakdown(nil); got == nil || len(got) != 0 {
		t.Errorf("CategoryBreakdown(nil) = %#v, want empty slice", got)
	}
	if got := RecentTransactions(nil, 5); got == nil || len(got) != 0 {
		t.Errorf("RecentTransactions(nil) = %#v, want empty slice", got)
	}
	if got := BudgetComparison(nil, nil, time.Now()); got == nil || len(got) != 0 {
		t.Errorf("BudgetComparison(nil) = %#v, want empty slice", got)
	}
}

func TestMonthlySeriesCoversEveryTransaction(t *testing.T) {
	txs := []core.Transaction{
		tx("1", "10.50", core.Income, "Salary", "2024-01-31"),
		tx("2", "4.25", core.Expense, "Food", "2023-12-01"),
		tx("3", "7", core.Expense, "Travel", "2024-01-01"),
		tx("4", "100", core.Income, "Bonus", "2024-02-29"),
	}

	series := MonthlySeries(txs)
	wantMonths := []string{"2023-12", "2024-01", "2024-02"}
	if len(series) != len(wantMonths) {
		t.Fatalf("got %d months, want %d", len(series), len(wantMonths))
	}

	sum := decimal.Zero
	for i, m := range series {
		if m.Month != wantMonths[i] {
			t.Errorf("series[%d].Month = %s, want %s", i, m.Month, wantMonths[i])
		}
		sum = sum.Add(m.Income).Add(m.Expenses)
	}

	all := decimal.Zero
	for _, tr := range txs {
		all = all.Add(tr.Amount)
	}
	if !sum.Equal(all) {
		t.Fatalf("monthly income+expenses = %s, want %s", sum, all)
	}
}

func TestCategoryBreakdown(t *testing.T) {
	txs := []core.Transaction{
		tx("1", "50", core.Expense, "Travel", "2024-03-01"),
		tx("2", "25", core.Expense, "Food", "2024-03-02"),
		tx("3", "25", core.Expense, "Utilities", "2024-03-03"),
		tx("4", "999", core.Income, "Salary", "2024-03-04"),
		tx("5", "100", core.Expense, "Housing", "2024-03-05"),
	}

	got := CategoryBreakdown(txs)
	wantOrder := []string{"Housing", "Travel", "Food", "Utilities"}
	if len(got) != len(wantOrder) {
		t.Fatalf("got %d rows, want %d", len(got), len(wantOrder))
	}

	var total float64
	for i, row := range got {
		if row.Category != wantOrder[i] {
			t.Errorf("row %d = %s, want %s", i, row.Category, wantOrder[i])
		}
		total += row.Percentage
	}
	if math.Abs(total-100) > 1e-9 {
		t.Errorf("percentages sum to %v, want 100", total)
	}
	if got[0].Percentage != 50 {
		t.Errorf("Housing percentage = %v, want 50", got[0].Percentage)
	}
}

func TestCategoryBreakdownIncomeOnly(t *testing.T) {
	txs := []core.Transaction{tx("1", "10", core.Income, "Salary", "2024-03-01")}
	if got := CategoryBreakdown(txs); len(got) != 0 {
		t.Fatalf("expected empty breakdown, got %+v", got)
	}
}

func TestRecentTransactions(t *testing.T) {
	txs := []core.Transaction{
		tx("a", "1", core.Expense, "Food", "2024-03-01"),
		tx("b", "1", core.Expense, "Food", "2024-03-09"),
		tx("c", "1", core.Expense, "Food", "2024-03-05"),
		tx("d", "1", core.Expense, "Food", "2024-03-09"),
		tx("e", "1", core.Expense, "Food", "2024-02-28"),
	}

	tests := []struct {
		name  string
		limit int
		want  []string
	}{
		{"top three", 3, []string{"b", "d", "c"}},
		{"limit larger than input", 10, []string{"b", "d", "c", "a", "e"}},
		{"zero", 0, []string{}},
		{"negative", -1, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RecentTransactions(txs, tt.limit)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d items, want %d", len(got), len(tt.want))
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Errorf("item %d = %s, want %s", i, got[i].ID, id)
				}
			}
		})
	}

	if txs[0].ID != "a" || txs[1].ID != "b" {
		t.Fatal("input slice was reordered")
	}
}

func TestBudgetComparisonStatus(t *testing.T) {
	now := time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)
	budgets := []core.Budget{{Category: "Food", Amount: decimal.NewFromInt(500)}}

	tests := []struct {
		name    string
		spent   string
		status  BudgetStatus
		percent float64
	}{
		{"at budget", "500", StatusOver, 100},
		{"over budget", "650", StatusOver, 130},
		{"warning threshold", "400", StatusWarning, 80},
		{"just under warning", "399", StatusUnder, 79.8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txs := []core.Transaction{tx("1", tt.spent, core.Expense, "Food", "2024-03-02")}
			rows := BudgetComparison(txs, budgets, now)
			if len(rows) != 1 {
				t.Fatalf("got %d rows, want 1", len(rows))
			}
			row := rows[0]
			if row.Status != tt.status {
				t.Errorf("status = %s, want %s", row.Status, tt.status)
			}
			if math.Abs(row.Percentage-tt.percent) > 1e-9 {
				t.Errorf("percentage = %v, want %v", row.Percentage, tt.percent)
			}
			wantRemaining := decimal.NewFromInt(500).Sub(decimal.RequireFromString(tt.spent))
			if !row.Remaining.Equal(wantRemaining) {
				t.Errorf("remaining = %s, want %s", row.Remaining, wantRemaining)
			}
		})
	}
}

func TestBudgetComparisonCurrentMonthOnly(t *testing.T) {
	now := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	txs := []core.Transaction{
		tx("1", "100", core.Expense, "Food", "2024-02-29"),
		tx("2", "100", core.Expense, "Food", "2023-03-10"),
		tx("3", "40", core.Expense, "Food", "2024-03-31"),
		tx("4", "1000", core.Income, "Food", "2024-03-02"),
		tx("5", "20", core.Expense, "Travel", "2024-03-02"),
	}
	budgets := []core.Budget{
		{Category: "Food", Amount: decimal.NewFromInt(200)},
		{Category: "Housing", Amount: decimal.NewFromInt(800)},
		{Category: "Gifts", Amount: decimal.Zero},
	}

	rows := BudgetComparison(txs, budgets, now)
	if len(rows) != len(budgets) {
		t.Fatalf("got %d rows, want one per budget", len(rows))
	}
	if !rows[0].Spent.Equal(decimal.NewFromInt(40)) || rows[0].Percentage != 20 {
		t.Errorf("Food row = %+v", rows[0])
	}
	if !rows[1].Spent.IsZero() || rows[1].Status != StatusUnder {
		t.Errorf("Housing row = %+v", rows[1])
	}
	if rows[2].Percentage != 0 || rows[2].Status != StatusUnder {
		t.Errorf("zero budget row = %+v", rows[2])
	}
}

func TestStatsMatchesBalance(t *testing.T) {
	txs := marchSample()
	s := Stats(txs)
	if !s.TotalIncome.Equal(decimal.NewFromInt(1000)) || !s.TotalExpenses.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("Stats = %+v", s)
	}
	if !s.Balance.Equal(TotalBalance(txs)) {
		t.Fatalf("Stats.Balance = %s, TotalBalance = %s", s.Balance, TotalBalance(txs))
	}
	if s.TransactionCount != 3 {
		t.Fatalf("TransactionCount = %d, want 3", s.TransactionCount)
	}
}

func TestBuildSummary(t *testing.T) {
	now := time.Date(2024, time.March, 20, 0, 0, 0, 0, time.UTC)
	budgets := []core.Budget{{Category: "Food", Amount: decimal.NewFromInt(625)}}

	s := BuildSummary(marchSample(), budgets, 2, now)
	if !s.Balance.Equal(s.Stats.Balance) {
		t.Errorf("Balance %s differs from Stats.Balance %s", s.Balance, s.Stats.Balance)
	}
	if len(s.Recent) != 2 || s.Recent[0].ID != "3" {
		t.Errorf("Recent = %+v", s.Recent)
	}
	if len(s.BudgetComparison) != 1 || s.BudgetComparison[0].Status != StatusWarning {
		t.Errorf("BudgetComparison = %+v", s.BudgetComparison)
	}
	if !s.GeneratedAt.Equal(now) {
		t.Errorf("GeneratedAt = %v, want %v", s.GeneratedAt, now)
	}
}
