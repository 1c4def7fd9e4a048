package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"financeflow/internal/core"
	"financeflow/internal/log"
)

type appMetrics struct {
	startedAt           time.Time
	transactionsCreated int64
	budgetsCreated      int64
	recordsUpdated      int64
	recordsDeleted      int64
	internalErrors      int64
}

func newAppMetrics(now time.Time) *appMetrics {
	return &appMetrics{startedAt: now}
}

// failure names what went wrong in the messages returned to clients.
type failure struct {
	notFound string
	internal string
}

// writeError maps err onto the error taxonomy. Internal details are logged, never returned.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, f failure) {
	ctx := r.Context()
	logger := log.FromContext(ctx)

	var ve *core.ValidationError
	var resp *JSONResponseBuilder
	switch {
	case errors.Is(err, core.ErrMissingUserID):
		resp = BadRequestError(CodeMissingUserID, "User ID is required", "userId")
	case errors.As(err, &ve):
		resp = BadRequestError(CodeValidation, ve.Error(), ve.Field)
	case errors.Is(err, ErrInvalidBody):
		resp = BadRequestError(CodeInvalidBody, "Request body must be a JSON object", "")
	case errors.Is(err, core.ErrDuplicateCategory):
		resp = BadRequestError(CodeDuplicateCategory, "Budget for this category already exists", "category")
	case errors.Is(err, core.ErrNotFound):
		resp = NotFoundError(f.notFound)
	default:
		atomic.AddInt64(&s.appMetrics.internalErrors, 1)
		level := logger.ErrorContext
		if errors.Is(err, context.Canceled) {
			level = logger.WarnContext
		}
		level(ctx, f.internal,
			log.FieldError, err,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path)
		resp = InternalServerError(f.internal)
	}

	if resp.statusCode < http.StatusInternalServerError {
		logger.DebugContext(ctx, "Request rejected", log.FieldError, err, log.FieldStatusCode, resp.statusCode)
	}
	_ = resp.Write(w)
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = NewJSONResponse().Body(map[string]any{
		"status":    "ok",
		"timestamp": s.now().UTC().Format(time.RFC3339),
		"uptime":    s.now().Sub(s.appMetrics.startedAt).Round(time.Second).String(),
	}).Write(w)
}

// handleReady reports whether the store answers.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	status, httpStatus := "ready", http.StatusOK
	checks := map[string]any{
		"rate_limiter": map[string]any{"active_clients": s.rateLimiter.ActiveClients()},
	}
	if err := s.api.Ping(ctx); err != nil {
		log.FromContext(ctx).WarnContext(ctx, "Readiness check failed", log.FieldError, err)
		checks["storage"] = "unavailable"
		status, httpStatus = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["storage"] = "ok"
	}

	_ = NewJSONResponse().Status(httpStatus).Body(map[string]any{
		"status":    status,
		"timestamp": s.now().UTC().Format(time.RFC3339),
		"checks":    checks,
	}).Write(w)
}

// handleMetrics provides application and security metrics in plain text format
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	traceMetrics := s.traceMiddleware.GetMetrics()
	rateLimitMetrics := s.rateLimiter.GetMetrics()
	securityMetrics := s.securityDetector.GetMetrics()

	counter := func(name, help string, value int64) {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s counter\n%s %d\n\n", name, help, name, name, value)
	}
	gauge := func(name, help string, value int64) {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s gauge\n%s %d\n\n", name, help, name, name, value)
	}

	w.WriteHeader(http.StatusOK)
	counter("http_requests_total", "Total number of HTTP requests", traceMetrics.TotalRequests)
	counter("http_server_errors_total", "Responses with a 5xx status", traceMetrics.ServerErrors)
	gauge("http_average_response_microseconds", "Average response time", traceMetrics.AverageResponseTime)
	counter("transactions_created_total", "Transactions created", atomic.LoadInt64(&s.appMetrics.transactionsCreated))
	counter("budgets_created_total", "Budgets created", atomic.LoadInt64(&s.appMetrics.budgetsCreated))
	counter("records_updated_total", "Transactions and budgets updated", atomic.LoadInt64(&s.appMetrics.recordsUpdated))
	counter("records_deleted_total", "Transactions and budgets deleted", atomic.LoadInt64(&s.appMetrics.recordsDeleted))
	counter("internal_errors_total", "Requests that failed with an internal error", atomic.LoadInt64(&s.appMetrics.internalErrors))
	counter("rate_limit_hits_total", "Total rate limit hits", rateLimitMetrics.TotalHits)
	gauge("active_rate_limit_clients", "Currently tracked rate limit clients", rateLimitMetrics.ClientCount)
	counter("suspicious_requests_total", "Total suspicious requests detected", securityMetrics.SuspiciousRequests)
	counter("invalid_forwarded_ip_total", "Forwarding headers with an invalid address", securityMetrics.InvalidIPAttempts)
	gauge("uptime_seconds", "Application uptime in seconds", int64(s.now().Sub(s.appMetrics.startedAt).Seconds()))
}
