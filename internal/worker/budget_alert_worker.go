// Package worker turns record events into budget alerts.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"financeflow/internal/amqp"
	"financeflow/internal/cache"
	"financeflow/internal/core"
	"financeflow/internal/log"
	"financeflow/internal/report"
)

type (
	// RecordReader loads a user's records. FinanceService satisfies it.
	RecordReader interface {
		ListTransactions(ctx context.Context, userID string) ([]core.Transaction, error)
		ListBudgets(ctx context.Context, userID string) ([]core.Budget, error)
	}

	EventConsumer interface {
		ConsumeRecordEvents(ctx context.Context, handler func(context.Context, *amqp.RecordEvent) error) error
	}

	AlertSink interface {
		Notify(ctx context.Context, alert Alert) error
	}

	Alert struct {
		UserID     string
		Category   string
		Month      string
		Status     report.BudgetStatus
		Percentage float64
		Spent      decimal.Decimal
		Budget     decimal.Decimal
	}
)

// BudgetAlertWorker recomputes the budget comparison of the affected user on
// every event and raises an alert when a category enters warning or over.
// Each status is reported once per user, category and month.
type BudgetAlertWorker struct {
	reader RecordReader
	sink   AlertSink
	now    func() time.Time
	logger *log.Logger

	reported *cache.LRUCache[report.BudgetStatus]
}

// Alert state is kept for this many (user, category, month) keys and expires
// after the month can no longer be the current one.
const (
	maxTrackedBudgets = 10000
	alertStateTTL     = 32 * 24 * time.Hour
)

func NewBudgetAlertWorker(reader RecordReader, sink AlertSink, logger *log.Logger) *BudgetAlertWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentWorker)
	if sink == nil {
		sink = LogSink{Logger: logger}
	}
	return &BudgetAlertWorker{
		reader:   reader,
		sink:     sink,
		now:      time.Now,
		logger:   logger,
		reported: cache.NewLRUCache[report.BudgetStatus](maxTrackedBudgets, alertStateTTL),
	}
}

// Run consumes events until ctx is cancelled.
func (w *BudgetAlertWorker) Run(ctx context.Context, consumer EventConsumer) error {
	w.logger.InfoContext(ctx, "Budget alert worker started")
	err := consumer.ConsumeRecordEvents(ctx, w.HandleRecordEvent)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// HandleRecordEvent processes one event. A returned error makes the consumer requeue it.
func (w *BudgetAlertWorker) HandleRecordEvent(ctx context.Context, e *amqp.RecordEvent) error {
	if e.UserID == "" {
		w.logger.WarnContext(ctx, "Dropping record event without user", log.FieldRecordID, e.ID)
		return nil
	}

	var (
		txs     []core.Transaction
		budgets []core.Budget
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		txs, err = w.reader.ListTransactions(gctx, e.UserID)
		return err
	})
	g.Go(func() (err error) {
		budgets, err = w.reader.ListBudgets(gctx, e.UserID)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("load records of %s: %w", e.UserID, err)
	}

	now := w.now()
	month := now.Format("2006-01")
	for _, row := range report.BudgetComparison(txs, budgets, now) {
		if !w.transition(e.UserID, row.Category, month, row.Status) {
			continue
		}
		alert := Alert{
			UserID:     e.UserID,
			Category:   row.Category,
			Month:      month,
			Status:     row.Status,
			Percentage: row.Percentage,
			Spent:      row.Spent,
			Budget:     row.Budget,
		}
		if err := w.sink.Notify(ctx, alert); err != nil {
			w.forget(e.UserID, row.Category, month)
			return fmt.Errorf("notify %s alert for %s: %w", row.Status, row.Category, err)
		}
	}
	return nil
}

// transition records status and reports whether it is a new warning or over state.
func (w *BudgetAlertWorker) transition(userID, category, month string, status report.BudgetStatus) bool {
	prev, seen := w.reported.Swap(alertKey(userID, category, month), status)
	if status == report.StatusUnder {
		return false
	}
	return !seen || prev != status
}

func (w *BudgetAlertWorker) forget(userID, category, month string) {
	w.reported.Delete(alertKey(userID, category, month))
}

func alertKey(userID, category, month string) string {
	return userID + "\x00" + category + "\x00" + month
}

// LogSink writes alerts to the log.
type LogSink struct {
	Logger *log.Logger
}

func (s LogSink) Notify(ctx context.Context, a Alert) error {
	args := []any{
		log.FieldUserID, a.UserID,
		log.FieldCategory, a.Category,
		"month", a.Month,
		"status", a.Status,
		"percentage", a.Percentage,
		"spent", a.Spent.String(),
		"budget", a.Budget.String(),
	}
	if a.Status == report.StatusOver {
		s.Logger.WarnContext(ctx, "Budget exceeded", args...)
	} else {
		s.Logger.InfoContext(ctx, "Budget nearly used", args...)
	}
	return nil
}
