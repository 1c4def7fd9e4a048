// Package report computes derived views over a user's transactions and budgets.
//
// Every function here is pure: it works on an in-memory snapshot already scoped
// to one user, performs no I/O and never mutates its input.
package report

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"financeflow/internal/core"
)

// DefaultRecentLimit is the number of transactions shown as "recent".
const DefaultRecentLimit = 5

// Budget status thresholds, in percent of the budget amount.
var (
	overThreshold    = decimal.NewFromInt(100)
	warningThreshold = decimal.NewFromInt(80)
	hundred          = decimal.NewFromInt(100)
)

type BudgetStatus string

const (
	StatusUnder   BudgetStatus = "under"
	StatusWarning BudgetStatus = "warning"
	StatusOver    BudgetStatus = "over"
)

type (
	// MonthlySummary holds totals for one calendar month; Amount is income minus expenses.
	MonthlySummary struct {
		Month    string          `json:"month"` // YYYY-MM
		Income   decimal.Decimal `json:"income"`
		Expenses decimal.Decimal `json:"expenses"`
		Amount   decimal.Decimal `json:"amount"`
	}

	CategoryAmount struct {
		Category   string          `json:"category"`
		Amount     decimal.Decimal `json:"amount"`
		Count      int             `json:"count"`
		Percentage float64         `json:"percentage"`
	}

	BudgetRow struct {
		Category   string          `json:"category"`
		Budget     decimal.Decimal `json:"budget"`
		Spent      decimal.Decimal `json:"spent"`
		Remaining  decimal.Decimal `json:"remaining"`
		Percentage float64         `json:"percentage"`
		Status     BudgetStatus    `json:"status"`
	}

	TransactionStats struct {
		TotalIncome      decimal.Decimal `json:"totalIncome"`
		TotalExpenses    decimal.Decimal `json:"totalExpenses"`
		Balance          decimal.Decimal `json:"balance"`
		TransactionCount int             `json:"transactionCount"`
	}

	// Summary bundles every view the dashboard shows.
	Summary struct {
		Balance          decimal.Decimal    `json:"balance"`
		Stats            TransactionStats   `json:"stats"`
		Monthly          []MonthlySummary   `json:"monthly"`
		Categories       []CategoryAmount   `json:"categories"`
		Recent           []core.Transaction `json:"recent"`
		BudgetComparison []BudgetRow        `json:"budgetComparison"`
		GeneratedAt      time.Time          `json:"generatedAt"`
	}
)

// TotalBalance returns the sum of income minus the sum of expenses.
func TotalBalance(txs []core.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, t := range txs {
		switch t.Type {
		case core.Income:
			total = total.Add(t.Amount)
		case core.Expense:
			total = total.Sub(t.Amount)
		}
	}
	return total
}

// Stats returns income and expense totals, the balance and the number of transactions.
func Stats(txs []core.Transaction) TransactionStats {
	s := TransactionStats{TotalIncome: decimal.Zero, TotalExpenses: decimal.Zero}
	for _, t := range txs {
		switch t.Type {
		case core.Income:
			s.TotalIncome = s.TotalIncome.Add(t.Amount)
		case core.Expense:
			s.TotalExpenses = s.TotalExpenses.Add(t.Amount)
		}
	}
	s.Balance = s.TotalIncome.Sub(s.TotalExpenses)
	s.TransactionCount = len(txs)
	return s
}

// MonthlySeries groups transactions by the year-month of their own date and
// returns one row per month in chronological order.
func MonthlySeries(txs []core.Transaction) []MonthlySummary {
	byMonth := make(map[string]*MonthlySummary)
	for _, t := range txs {
		key := t.MonthKey()
		m, ok := byMonth[key]
		if !ok {
			m = &MonthlySummary{Month: key, Income: decimal.Zero, Expenses: decimal.Zero}
			byMonth[key] = m
		}
		if t.Type == core.Income {
			m.Income = m.Income.Add(t.Amount)
		} else {
			m.Expenses = m.Expenses.Add(t.Amount)
		}
	}

	out := make([]MonthlySummary, 0, len(byMonth))
	for _, m := range byMonth {
		m.Amount = m.Income.Sub(m.Expenses)
		out = append(out, *m)
	}
	// YYYY-MM keys sort chronologically as strings.
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// CategoryBreakdown groups expenses by category with their share of total
// expenses, largest first. Returns an empty slice when there are no expenses.
func CategoryBreakdown(txs []core.Transaction) []CategoryAmount {
	total := decimal.Zero
	index := make(map[string]int)
	out := make([]CategoryAmount, 0)
	for _, t := range txs {
		if t.Type != core.Expense {
			continue
		}
		total = total.Add(t.Amount)
		i, ok := index[t.Category]
		if !ok {
			i = len(out)
			index[t.Category] = i
			out = append(out, CategoryAmount{Category: t.Category, Amount: decimal.Zero})
		}
		out[i].Amount = out[i].Amount.Add(t.Amount)
		out[i].Count++
	}
	if total.IsZero() {
		return []CategoryAmount{}
	}

	for i := range out {
		out[i].Percentage = out[i].Amount.Div(total).Mul(hundred).InexactFloat64()
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Amount.GreaterThan(out[j].Amount) })
	return out
}

// RecentTransactions returns up to limit transactions with the latest dates,
// newest first. Equal dates keep their input order. The input is not modified.
func RecentTransactions(txs []core.Transaction, limit int) []core.Transaction {
	if limit <= 0 {
		return []core.Transaction{}
	}
	sorted := make([]core.Transaction, len(txs))
	copy(sorted, txs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date > sorted[j].Date })
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

// BudgetComparison compares each budget with the expenses recorded in the
// calendar month of now. It returns exactly one row per budget.
func BudgetComparison(txs []core.Transaction, budgets []core.Budget, now time.Time) []BudgetRow {
	year, month := now.Year(), now.Month()
	spending := make(map[string]decimal.Decimal)
	for _, t := range txs {
		if t.Type != core.Expense || !t.InMonth(year, month) {
			continue
		}
		spending[t.Category] = spending[t.Category].Add(t.Amount)
	}

	out := make([]BudgetRow, 0, len(budgets))
	for _, b := range budgets {
		spent, ok := spending[b.Category]
		if !ok {
			spent = decimal.Zero
		}
		pct := decimal.Zero
		if b.Amount.IsPositive() {
			pct = spent.Div(b.Amount).Mul(hundred)
		}
		out = append(out, BudgetRow{
			Category:   b.Category,
			Budget:     b.Amount,
			Spent:      spent,
			Remaining:  b.Amount.Sub(spent),
			Percentage: pct.InexactFloat64(),
			Status:     classify(pct),
		})
	}
	return out
}

func classify(pct decimal.Decimal) BudgetStatus {
	switch {
	case pct.GreaterThanOrEqual(overThreshold):
		return StatusOver
	case pct.GreaterThanOrEqual(warningThreshold):
		return StatusWarning
	default:
		return StatusUnder
	}
}

// BuildSummary computes all dashboard views from one snapshot.
func BuildSummary(txs []core.Transaction, budgets []core.Budget, recent int, now time.Time) Summary {
	return Summary{
		Balance:          TotalBalance(txs),
		Stats:            Stats(txs),
		Monthly:          MonthlySeries(txs),
		Categories:       CategoryBreakdown(txs),
		Recent:           RecentTransactions(txs, recent),
		BudgetComparison: BudgetComparison(txs, budgets, now),
		GeneratedAt:      now,
	}
}
