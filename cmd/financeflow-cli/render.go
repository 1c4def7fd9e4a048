package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"financeflow/internal/core"
	"financeflow/internal/report"
)

func newTable(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
}

func renderTransactions(out io.Writer, txs []core.Transaction) error {
	if len(txs) == 0 {
		_, err := fmt.Fprintln(out, "No transactions.")
		return err
	}
	tw := newTable(out)
	fmt.Fprintln(tw, "DATE\tTYPE\tCATEGORY\tAMOUNT\tDESCRIPTION\tID")
	for _, t := range txs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			t.Date, t.Type, t.Category, t.Amount.StringFixed(2), t.Description, t.ID)
	}
	return tw.Flush()
}

func renderStats(out io.Writer, s report.TransactionStats) error {
	tw := newTable(out)
	fmt.Fprintf(tw, "Income\t%s\n", s.TotalIncome.StringFixed(2))
	fmt.Fprintf(tw, "Expenses\t%s\n", s.TotalExpenses.StringFixed(2))
	fmt.Fprintf(tw, "Balance\t%s\n", s.Balance.StringFixed(2))
	fmt.Fprintf(tw, "Transactions\t%d\n", s.TransactionCount)
	return tw.Flush()
}

func renderBudgets(out io.Writer, budgets []core.Budget, rows []report.BudgetRow) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(out, "No budgets.")
		return err
	}
	ids := make(map[string]string, len(budgets))
	for _, b := range budgets {
		ids[b.Category] = b.ID
	}

	tw := newTable(out)
	fmt.Fprintln(tw, "CATEGORY\tBUDGET\tSPENT\tREMAINING\tUSED\tSTATUS\tID")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.1f%%\t%s\t%s\n",
			r.Category, r.Budget.StringFixed(2), r.Spent.StringFixed(2), r.Remaining.StringFixed(2),
			r.Percentage, r.Status, ids[r.Category])
	}
	return tw.Flush()
}

func renderSummary(out io.Writer, s report.Summary) error {
	fmt.Fprintf(out, "Balance: %s\n\n", s.Balance.StringFixed(2))
	if err := renderStats(out, s.Stats); err != nil {
		return err
	}

	if len(s.Monthly) > 0 {
		fmt.Fprintln(out, "\nMonthly")
		tw := newTable(out)
		fmt.Fprintln(tw, "MONTH\tINCOME\tEXPENSES\tNET")
		for _, m := range s.Monthly {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
				m.Month, m.Income.StringFixed(2), m.Expenses.StringFixed(2), m.Amount.StringFixed(2))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if len(s.Categories) > 0 {
		fmt.Fprintln(out, "\nExpenses by category")
		tw := newTable(out)
		fmt.Fprintln(tw, "CATEGORY\tAMOUNT\tCOUNT\tSHARE")
		for _, c := range s.Categories {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%.1f%%\n", c.Category, c.Amount.StringFixed(2), c.Count, c.Percentage)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if len(s.BudgetComparison) > 0 {
		fmt.Fprintln(out, "\nBudgets this month")
		tw := newTable(out)
		fmt.Fprintln(tw, "CATEGORY\tBUDGET\tSPENT\tREMAINING\tUSED\tSTATUS")
		for _, r := range s.BudgetComparison {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.1f%%\t%s\n",
				r.Category, r.Budget.StringFixed(2), r.Spent.StringFixed(2), r.Remaining.StringFixed(2),
				r.Percentage, r.Status)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if len(s.Recent) > 0 {
		fmt.Fprintln(out, "\nRecent")
		return renderTransactions(out, s.Recent)
	}
	return nil
}
