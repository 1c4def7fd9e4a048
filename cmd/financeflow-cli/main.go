// Command financeflow-cli records transactions and budgets through the
// financeflow API and prints the aggregated views as text tables.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"financeflow/internal/cli"
	"financeflow/internal/client"
	"financeflow/internal/config"
	"financeflow/internal/core"
)

const usage = `usage: financeflow-cli <command> [flags]

commands:
  whoami                         print the user ID sent with every request
  list [-month YYYY-MM]          list transactions
  add -amount N -desc TEXT ...   record a transaction
  update ID [-amount N ...]      change the given fields of a transaction
  delete ID                      delete a transaction
  stats                          income, expense and balance totals
  summary [-recent N] [-local]   dashboard views
  budgets                        list budgets with this month's usage
  budget add|update|delete       manage budgets
  categories                     default categories per type
`

func main() {
	cli.LoadEnvFile()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, config.LoadClient()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", describe(err))
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		os.Exit(1)
	}
}

var errUsage = errors.New("invalid usage")

func run(ctx context.Context, args []string, out io.Writer, cfg *config.ClientConfig) error {
	if len(args) == 0 {
		return errUsage
	}

	userID, err := client.ResolveIdentity(cfg.IdentityFile, cfg.UserID)
	if err != nil {
		return err
	}
	app := &app{
		api: client.New(cfg.APIURL, userID, client.WithTimeout(cfg.Timeout)),
		out: out,
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "whoami":
		fmt.Fprintln(out, userID)
		return nil
	case "list":
		return app.list(ctx, rest)
	case "add":
		return app.add(ctx, rest)
	case "update":
		return app.update(ctx, rest)
	case "delete":
		return app.delete(ctx, rest)
	case "stats":
		return app.stats(ctx)
	case "summary":
		return app.summary(ctx, rest)
	case "budgets":
		return app.budgets(ctx)
	case "budget":
		return app.budget(ctx, rest)
	case "categories":
		return app.categories(ctx)
	case "help", "-h", "--help":
		fmt.Fprint(out, usage)
		return nil
	default:
		return fmt.Errorf("unknown command %q: %w", cmd, errUsage)
	}
}

// describe turns API errors into a single readable line.
func describe(err error) string {
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		return err.Error()
	}
	var verr *core.ValidationError
	if errors.As(err, &verr) {
		return fmt.Sprintf("invalid %s: %s", apiErr.Field, apiErr.Message)
	}
	return apiErr.Message
}
