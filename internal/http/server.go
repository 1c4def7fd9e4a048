package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"financeflow/internal/core"
	"financeflow/internal/log"
	"financeflow/internal/middleware/ratelimit"
	"financeflow/internal/middleware/security"
	"financeflow/internal/middleware/trace"
	"financeflow/internal/report"
)

// FinanceAPI is the part of the finance service the handlers call.
type FinanceAPI interface {
	ListTransactions(ctx context.Context, userID string) ([]core.Transaction, error)
	CreateTransaction(ctx context.Context, userID string, in core.TransactionInput) (core.Transaction, error)
	UpdateTransaction(ctx context.Context, id, userID string, in core.TransactionInput) (core.Transaction, error)
	DeleteTransaction(ctx context.Context, id, userID string) error
	TransactionStats(ctx context.Context, userID string) (report.TransactionStats, error)

	ListBudgets(ctx context.Context, userID string) ([]core.Budget, error)
	CreateBudget(ctx context.Context, userID string, in core.BudgetInput) (core.Budget, error)
	UpdateBudget(ctx context.Context, id, userID string, in core.BudgetInput) (core.Budget, error)
	DeleteBudget(ctx context.Context, id, userID string) error

	Summary(ctx context.Context, userID string, now time.Time, recent int) (report.Summary, error)
	Ping(ctx context.Context) error
}

type Server struct {
	http.Server
	api    FinanceAPI
	logger *log.Logger
	now    func() time.Time

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware
	appMetrics       *appMetrics

	shutdownOnce sync.Once
}

type serverOptions struct {
	logger             *log.Logger
	rateLimitPerMinute int
	now                func() time.Time
}

type ServerOption func(*serverOptions)

func WithServerLogger(l *log.Logger) ServerOption {
	return func(o *serverOptions) { o.logger = l }
}

// WithRateLimit sets the number of mutating requests a client may send per minute.
func WithRateLimit(perMinute int) ServerOption {
	return func(o *serverOptions) { o.rateLimitPerMinute = perMinute }
}

func WithServerClock(now func() time.Time) ServerOption {
	return func(o *serverOptions) { o.now = now }
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, api FinanceAPI, opts ...ServerOption) *Server {
	o := serverOptions{
		logger:             log.New(log.DefaultConfig()),
		rateLimitPerMinute: ratelimit.DefaultConfig().RequestsPerMinute,
		now:                time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}

	detector := security.NewDetector()
	s := &Server{
		api:              api,
		logger:           o.logger.WithComponent(log.ComponentHTTP),
		now:              o.now,
		rateLimiter:      ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: o.rateLimitPerMinute}),
		securityDetector: detector,
		traceMiddleware:  trace.NewMiddleware(o.logger, detector.ExtractClientIP),
		appMetrics:       newAppMetrics(o.now()),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)
	mux.HandleFunc("GET /categories", s.handleCategories)
	mux.HandleFunc("GET /summary", s.handleSummary)

	mux.HandleFunc("GET /transactions", s.handleListTransactions)
	mux.HandleFunc("POST /transactions", s.handleCreateTransaction)
	mux.HandleFunc("GET /transactions/stats", s.handleTransactionStats)
	mux.HandleFunc("PUT /transactions/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("DELETE /transactions/{id}", s.handleDeleteTransaction)

	mux.HandleFunc("GET /budgets", s.handleListBudgets)
	mux.HandleFunc("POST /budgets", s.handleCreateBudget)
	mux.HandleFunc("PUT /budgets/{id}", s.handleUpdateBudget)
	mux.HandleFunc("DELETE /budgets/{id}", s.handleDeleteBudget)

	limited := s.rateLimiter.Middleware(detector.ExtractClientIP, ratelimit.MutatingOnly, s.onRateLimit)(mux)
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.traceMiddleware.Middleware(headers.Middleware(detector.Middleware(limited))),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) onRateLimit(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.securityDetector.ExtractClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	_ = TooManyRequestsError().Write(w)
}

// Shutdown stops the rate limiter and gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
