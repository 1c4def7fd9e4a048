package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"financeflow/internal/amqp"
	"financeflow/internal/core"
	"financeflow/internal/log"
	"financeflow/internal/report"
	"financeflow/internal/storage"
)

// DefaultStoreTimeout bounds every repository call.
const DefaultStoreTimeout = 5 * time.Second

// EventPublisher receives a notification after every successful write.
type EventPublisher interface {
	PublishRecordEvent(ctx context.Context, event *amqp.RecordEvent) error
}

// FinanceService is the single entry point for reading and writing a user's
// transactions and budgets. It scopes every call to a user, validates input
// before it reaches the store and announces writes to the publisher.
type FinanceService struct {
	store     storage.Store
	publisher EventPublisher
	timeout   time.Duration
	newID     func() string
	now       func() time.Time
	logger    *log.Logger
	records   *log.StructuredLogger
}

type Option func(*FinanceService)

func WithStoreTimeout(d time.Duration) Option {
	return func(s *FinanceService) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *FinanceService) { s.now = now }
}

func WithLogger(l *log.Logger) Option {
	return func(s *FinanceService) { s.logger = l }
}

// NewFinanceService wires a service over store. publisher may be nil, in
// which case no events are emitted.
func NewFinanceService(store storage.Store, publisher EventPublisher, opts ...Option) *FinanceService {
	s := &FinanceService{
		store:     store,
		publisher: publisher,
		timeout:   DefaultStoreTimeout,
		newID:     uuid.NewString,
		now:       time.Now,
		logger:    log.New(log.DefaultConfig()),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.records = log.NewStructuredLogger(s.logger)
	return s
}

func (s *FinanceService) ListTransactions(ctx context.Context, userID string) ([]core.Transaction, error) {
	userID, err := requireUser(userID)
	if err != nil {
		return nil, err
	}
	ctx, cancel := s.storeContext(ctx)
	defer cancel()

	txs, err := s.store.ListTransactions(ctx, userID)
	return txs, s.storeError(err)
}

func (s *FinanceService) CreateTransaction(ctx context.Context, userID string, in core.TransactionInput) (core.Transaction, error) {
	userID, err := requireUser(userID)
	if err != nil {
		return core.Transaction{}, err
	}
	fields, err := in.Validate()
	if err != nil {
		return core.Transaction{}, err
	}

	now := s.now().UTC()
	t := core.Transaction{
		ID:          s.newID(),
		UserID:      userID,
		Amount:      fields.Amount,
		Date:        fields.Date,
		Description: fields.Description,
		Type:        fields.Type,
		Category:    fields.Category,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()
	created, err := s.store.CreateTransaction(storeCtx, t)
	if err != nil {
		return core.Transaction{}, s.storeError(err)
	}

	s.afterWrite(ctx, amqp.KindTransaction, amqp.ActionCreated, created.ID, userID, created.Category)
	return created, nil
}

func (s *FinanceService) UpdateTransaction(ctx context.Context, id, userID string, in core.TransactionInput) (core.Transaction, error) {
	userID, err := requireUser(userID)
	if err != nil {
		return core.Transaction{}, err
	}
	fields, err := in.Validate()
	if err != nil {
		return core.Transaction{}, err
	}
	if strings.TrimSpace(id) == "" {
		return core.Transaction{}, core.ErrNotFound
	}

	t := core.Transaction{
		ID:          id,
		UserID:      userID,
		Amount:      fields.Amount,
		Date:        fields.Date,
		Description: fields.Description,
		Type:        fields.Type,
		Category:    fields.Category,
		UpdatedAt:   s.now().UTC(),
	}

	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()
	updated, err := s.store.UpdateTransaction(storeCtx, t)
	if err != nil {
		return core.Transaction{}, s.storeError(err)
	}

	s.afterWrite(ctx, amqp.KindTransaction, amqp.ActionUpdated, updated.ID, userID, updated.Category)
	return updated, nil
}

func (s *FinanceService) DeleteTransaction(ctx context.Context, id, userID string) error {
	userID, err := requireUser(userID)
	if err != nil {
		return err
	}
	if strings.TrimSpace(id) == "" {
		return core.ErrNotFound
	}

	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()
	if err := s.store.DeleteTransaction(storeCtx, id, userID); err != nil {
		return s.storeError(err)
	}

	s.afterWrite(ctx, amqp.KindTransaction, amqp.ActionDeleted, id, userID, "")
	return nil
}

func (s *FinanceService) ListBudgets(ctx context.Context, userID string) ([]core.Budget, error) {
	userID, err := requireUser(userID)
	if err != nil {
		return nil, err
	}
	ctx, cancel := s.storeContext(ctx)
	defer cancel()

	budgets, err := s.store.ListBudgets(ctx, userID)
	return budgets, s.storeError(err)
}

func (s *FinanceService) CreateBudget(ctx context.Context, userID string, in core.BudgetInput) (core.Budget, error) {
	userID, err := requireUser(userID)
	if err != nil {
		return core.Budget{}, err
	}
	fields, err := in.Validate()
	if err != nil {
		return core.Budget{}, err
	}

	now := s.now().UTC()
	b := core.Budget{
		ID:        s.newID(),
		UserID:    userID,
		Category:  fields.Category,
		Amount:    fields.Amount,
		CreatedAt: now,
		UpdatedAt: now,
	}

	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()
	created, err := s.store.CreateBudget(storeCtx, b)
	if err != nil {
		return core.Budget{}, s.storeError(err)
	}

	s.afterWrite(ctx, amqp.KindBudget, amqp.ActionCreated, created.ID, userID, created.Category)
	return created, nil
}

func (s *FinanceService) UpdateBudget(ctx context.Context, id, userID string, in core.BudgetInput) (core.Budget, error) {
	userID, err := requireUser(userID)
	if err != nil {
		return core.Budget{}, err
	}
	fields, err := in.Validate()
	if err != nil {
		return core.Budget{}, err
	}
	if strings.TrimSpace(id) == "" {
		return core.Budget{}, core.ErrNotFound
	}

	b := core.Budget{
		ID:        id,
		UserID:    userID,
		Category:  fields.Category,
		Amount:    fields.Amount,
		UpdatedAt: s.now().UTC(),
	}

	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()
	updated, err := s.store.UpdateBudget(storeCtx, b)
	if err != nil {
		return core.Budget{}, s.storeError(err)
	}

	s.afterWrite(ctx, amqp.KindBudget, amqp.ActionUpdated, updated.ID, userID, updated.Category)
	return updated, nil
}

func (s *FinanceService) DeleteBudget(ctx context.Context, id, userID string) error {
	userID, err := requireUser(userID)
	if err != nil {
		return err
	}
	if strings.TrimSpace(id) == "" {
		return core.ErrNotFound
	}

	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()
	if err := s.store.DeleteBudget(storeCtx, id, userID); err != nil {
		return s.storeError(err)
	}

	s.afterWrite(ctx, amqp.KindBudget, amqp.ActionDeleted, id, userID, "")
	return nil
}

// TransactionStats returns income and expense totals over all of the user's transactions.
func (s *FinanceService) TransactionStats(ctx context.Context, userID string) (report.TransactionStats, error) {
	txs, err := s.ListTransactions(ctx, userID)
	if err != nil {
		return report.TransactionStats{}, err
	}
	return report.Stats(txs), nil
}

// Summary loads transactions and budgets concurrently and builds the
// dashboard views. Budget comparison uses the calendar month of now.
func (s *FinanceService) Summary(ctx context.Context, userID string, now time.Time, recent int) (report.Summary, error) {
	userID, err := requireUser(userID)
	if err != nil {
		return report.Summary{}, err
	}

	var (
		txs     []core.Transaction
		budgets []core.Budget
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		txs, err = s.ListTransactions(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		budgets, err = s.ListBudgets(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return report.Summary{}, err
	}

	return report.BuildSummary(txs, budgets, recent, now), nil
}

// Ping reports whether the store is reachable.
func (s *FinanceService) Ping(ctx context.Context) error {
	ctx, cancel := s.storeContext(ctx)
	defer cancel()
	return s.store.Ping(ctx)
}

// Close releases the store and the publisher when it can be closed.
func (s *FinanceService) Close() error {
	var errs []error

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if c, ok := s.publisher.(interface{ Close() error }); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close finance service: %w", errors.Join(errs...))
	}
	return nil
}

func (s *FinanceService) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// storeError marks deadline overruns so they are not mistaken for client cancellation.
func (s *FinanceService) storeError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("store did not answer within %s: %w", s.timeout, err)
	}
	return err
}

// afterWrite logs the change and publishes an event. Publishing failures are
// logged only: the record is already stored. Publishing ignores cancellation
// of the request context.
func (s *FinanceService) afterWrite(ctx context.Context, kind amqp.RecordKind, action amqp.RecordAction, id, userID, category string) {
	ctx = context.WithoutCancel(ctx)
	s.records.LogRecordChange(ctx, opFor(action), string(kind), id, userID, category)

	if s.publisher == nil {
		return
	}
	event := amqp.NewRecordEvent(kind, action, id, userID, category)
	if err := s.publisher.PublishRecordEvent(ctx, event); err != nil {
		s.records.LogError(ctx, "Failed to publish record event", err, log.ComponentAMQP, log.OpPublish,
			log.NewFields().WithRecord(string(kind), id, userID, category))
	}
}

func opFor(action amqp.RecordAction) string {
	switch action {
	case amqp.ActionCreated:
		return log.OpCreate
	case amqp.ActionUpdated:
		return log.OpUpdate
	default:
		return log.OpDelete
	}
}

func requireUser(userID string) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", core.ErrMissingUserID
	}
	return userID, nil
}
