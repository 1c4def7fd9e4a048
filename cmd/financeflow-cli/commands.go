package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"financeflow/internal/client"
	"financeflow/internal/core"
	"financeflow/internal/report"
)

type app struct {
	api *client.Client
	out io.Writer
	now func() time.Time
}

func (a *app) clock() time.Time {
	if a.now != nil {
		return a.now()
	}
	return time.Now()
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%s: %v: %w", fs.Name(), err, errUsage)
	}
	return nil
}

// transactionFlags registers the flags shared by add and update.
type transactionFlags struct {
	amount, date, desc, typ, category *string
}

func registerTransactionFlags(fs *flag.FlagSet, today string) transactionFlags {
	return transactionFlags{
		amount:   fs.String("amount", "", "positive amount, e.g. 12.50"),
		date:     fs.String("date", today, "date as YYYY-MM-DD"),
		desc:     fs.String("desc", "", "description, 1 to 100 characters"),
		typ:      fs.String("type", string(core.Expense), "income or expense"),
		category: fs.String("category", "", "category name"),
	}
}

func (f transactionFlags) request() (client.TransactionRequest, error) {
	amount, err := core.ParseAmount(*f.amount)
	if err != nil {
		return client.TransactionRequest{}, fmt.Errorf("-amount: %w", err)
	}
	return client.TransactionRequest{
		Amount:      amount,
		Date:        *f.date,
		Description: *f.desc,
		Type:        *f.typ,
		Category:    *f.category,
	}, nil
}

// merge overlays the flags set on the command line onto an existing transaction.
func (f transactionFlags) merge(fs *flag.FlagSet, current core.Transaction) (client.TransactionRequest, error) {
	req := client.TransactionRequest{
		Amount:      current.Amount,
		Date:        current.Date,
		Description: current.Description,
		Type:        string(current.Type),
		Category:    current.Category,
	}

	var err error
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "amount":
			amount, perr := core.ParseAmount(*f.amount)
			if perr != nil {
				err = fmt.Errorf("-amount: %w", perr)
				return
			}
			req.Amount = amount
		case "date":
			req.Date = *f.date
		case "desc":
			req.Description = *f.desc
		case "type":
			req.Type = *f.typ
		case "category":
			req.Category = *f.category
		}
	})
	return req, err
}

func (a *app) list(ctx context.Context, args []string) error {
	fs := newFlagSet("list")
	month := fs.String("month", "", "only show YYYY-MM")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	txs, err := a.api.ListTransactions(ctx)
	if err != nil {
		return err
	}
	if *month != "" {
		filtered := txs[:0:0]
		for _, t := range txs {
			if strings.HasPrefix(t.Date, *month) {
				filtered = append(filtered, t)
			}
		}
		txs = filtered
	}
	return renderTransactions(a.out, txs)
}

func (a *app) add(ctx context.Context, args []string) error {
	fs := newFlagSet("add")
	flags := registerTransactionFlags(fs, a.clock().Format(time.DateOnly))
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	req, err := flags.request()
	if err != nil {
		return err
	}

	t, err := a.api.CreateTransaction(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Created %s %s %s (%s)\n", t.Type, t.Amount.StringFixed(2), t.Category, t.ID)
	return nil
}

// update starts from the stored record and overrides only the flags given.
func (a *app) update(ctx context.Context, args []string) error {
	id, rest, err := takeID("update", args)
	if err != nil {
		return err
	}
	fs := newFlagSet("update")
	flags := registerTransactionFlags(fs, "")
	if err := parseFlags(fs, rest); err != nil {
		return err
	}

	current, err := a.findTransaction(ctx, id)
	if err != nil {
		return err
	}
	req, err := flags.merge(fs, current)
	if err != nil {
		return err
	}

	t, err := a.api.UpdateTransaction(ctx, id, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Updated %s\n", t.ID)
	return nil
}

func (a *app) findTransaction(ctx context.Context, id string) (core.Transaction, error) {
	txs, err := a.api.ListTransactions(ctx)
	if err != nil {
		return core.Transaction{}, err
	}
	for _, t := range txs {
		if t.ID == id {
			return t, nil
		}
	}
	return core.Transaction{}, fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
}

func (a *app) delete(ctx context.Context, args []string) error {
	id, _, err := takeID("delete", args)
	if err != nil {
		return err
	}
	if err := a.api.DeleteTransaction(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted %s\n", id)
	return nil
}

func (a *app) stats(ctx context.Context) error {
	s, err := a.api.TransactionStats(ctx)
	if err != nil {
		return err
	}
	return renderStats(a.out, s)
}

// summary renders the server aggregate, or with -local computes it from the raw lists.
func (a *app) summary(ctx context.Context, args []string) error {
	fs := newFlagSet("summary")
	recent := fs.Int("recent", report.DefaultRecentLimit, "number of recent transactions")
	local := fs.Bool("local", false, "compute the aggregates locally")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	var (
		s   report.Summary
		err error
	)
	if *local {
		s, err = a.localSummary(ctx, *recent)
	} else {
		s, err = a.api.Summary(ctx, *recent)
	}
	if err != nil {
		return err
	}
	return renderSummary(a.out, s)
}

func (a *app) localSummary(ctx context.Context, recent int) (report.Summary, error) {
	txs, err := a.api.ListTransactions(ctx)
	if err != nil {
		return report.Summary{}, err
	}
	budgets, err := a.api.ListBudgets(ctx)
	if err != nil {
		return report.Summary{}, err
	}
	return report.BuildSummary(txs, budgets, recent, a.clock()), nil
}

func (a *app) budgets(ctx context.Context) error {
	budgets, err := a.api.ListBudgets(ctx)
	if err != nil {
		return err
	}
	txs, err := a.api.ListTransactions(ctx)
	if err != nil {
		return err
	}
	return renderBudgets(a.out, budgets, report.BudgetComparison(txs, budgets, a.clock()))
}

func (a *app) budget(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("budget needs add, update or delete: %w", errUsage)
	}

	sub, rest := args[0], args[1:]
	switch sub {
	case "add":
		fs := newFlagSet("budget add")
		category := fs.String("category", "", "category name")
		amount := fs.String("amount", "", "monthly ceiling")
		if err := parseFlags(fs, rest); err != nil {
			return err
		}
		req, err := budgetRequest(*category, *amount)
		if err != nil {
			return err
		}
		b, err := a.api.CreateBudget(ctx, req)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Created budget %s %s (%s)\n", b.Category, b.Amount.StringFixed(2), b.ID)
		return nil

	case "update":
		id, rest, err := takeID("budget update", rest)
		if err != nil {
			return err
		}
		fs := newFlagSet("budget update")
		category := fs.String("category", "", "category name")
		amount := fs.String("amount", "", "monthly ceiling")
		if err := parseFlags(fs, rest); err != nil {
			return err
		}
		req, err := budgetRequest(*category, *amount)
		if err != nil {
			return err
		}
		b, err := a.api.UpdateBudget(ctx, id, req)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Updated budget %s\n", b.ID)
		return nil

	case "delete":
		id, _, err := takeID("budget delete", rest)
		if err != nil {
			return err
		}
		if err := a.api.DeleteBudget(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Deleted budget %s\n", id)
		return nil

	default:
		return fmt.Errorf("unknown budget command %q: %w", sub, errUsage)
	}
}

func (a *app) categories(ctx context.Context) error {
	cats, err := a.api.Categories(ctx)
	if err != nil {
		return err
	}
	for _, typ := range []core.TransactionType{core.Income, core.Expense} {
		fmt.Fprintf(a.out, "%s: %s\n", typ, strings.Join(cats[typ], ", "))
	}
	return nil
}

func budgetRequest(category, amount string) (client.BudgetRequest, error) {
	value, err := core.ParseAmount(amount)
	if err != nil {
		return client.BudgetRequest{}, fmt.Errorf("-amount: %w", err)
	}
	return client.BudgetRequest{Category: category, Amount: value}, nil
}

func takeID(cmd string, args []string) (string, []string, error) {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return "", nil, fmt.Errorf("%s needs a record ID: %w", cmd, errUsage)
	}
	return args[0], args[1:], nil
}

