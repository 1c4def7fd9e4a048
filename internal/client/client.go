// Package client is a typed client for the financeflow REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"financeflow/internal/core"
	"financeflow/internal/report"
)

const defaultTimeout = 10 * time.Second

// Client calls the API on behalf of one user.
type Client struct {
	baseURL    string
	userID     string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

func New(baseURL, userID string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		userID:     userID,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) UserID() string { return c.userID }

type (
	TransactionRequest struct {
		Amount      decimal.Decimal `json:"amount"`
		Date        string          `json:"date"`
		Description string          `json:"description"`
		Type        string          `json:"type"`
		Category    string          `json:"category"`
	}

	BudgetRequest struct {
		Category string          `json:"category"`
		Amount   decimal.Decimal `json:"amount"`
	}

	// APIError is a non-2xx response decoded from the error payload.
	APIError struct {
		StatusCode int
		Code       string
		Message    string
		Field      string
	}
)

func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s (%s, field %s, status %d)", e.Message, e.Code, e.Field, e.StatusCode)
	}
	return fmt.Sprintf("%s (%s, status %d)", e.Message, e.Code, e.StatusCode)
}

// Unwrap maps the error code onto the shared sentinel errors so callers can use errors.Is.
func (e *APIError) Unwrap() error {
	switch e.Code {
	case "missing_user_id":
		return core.ErrMissingUserID
	case "duplicate_category":
		return core.ErrDuplicateCategory
	case "not_found":
		return core.ErrNotFound
	case "validation_error":
		return core.NewValidationError(e.Field, e.Message)
	default:
		return nil
	}
}

func (c *Client) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	var out []core.Transaction
	err := c.do(ctx, http.MethodGet, "/transactions", c.userQuery(), nil, &out)
	return out, err
}

func (c *Client) CreateTransaction(ctx context.Context, req TransactionRequest) (core.Transaction, error) {
	var out core.Transaction
	err := c.do(ctx, http.MethodPost, "/transactions", nil, transactionPayload{c.userID, req}, &out)
	return out, err
}

func (c *Client) UpdateTransaction(ctx context.Context, id string, req TransactionRequest) (core.Transaction, error) {
	var out core.Transaction
	err := c.do(ctx, http.MethodPut, "/transactions/"+url.PathEscape(id), nil, transactionPayload{c.userID, req}, &out)
	return out, err
}

func (c *Client) DeleteTransaction(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/transactions/"+url.PathEscape(id), c.userQuery(), nil, nil)
}

func (c *Client) TransactionStats(ctx context.Context) (report.TransactionStats, error) {
	var out report.TransactionStats
	err := c.do(ctx, http.MethodGet, "/transactions/stats", c.userQuery(), nil, &out)
	return out, err
}

func (c *Client) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	var out []core.Budget
	err := c.do(ctx, http.MethodGet, "/budgets", c.userQuery(), nil, &out)
	return out, err
}

func (c *Client) CreateBudget(ctx context.Context, req BudgetRequest) (core.Budget, error) {
	var out core.Budget
	err := c.do(ctx, http.MethodPost, "/budgets", nil, budgetPayload{c.userID, req}, &out)
	return out, err
}

func (c *Client) UpdateBudget(ctx context.Context, id string, req BudgetRequest) (core.Budget, error) {
	var out core.Budget
	err := c.do(ctx, http.MethodPut, "/budgets/"+url.PathEscape(id), nil, budgetPayload{c.userID, req}, &out)
	return out, err
}

func (c *Client) DeleteBudget(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/budgets/"+url.PathEscape(id), c.userQuery(), nil, nil)
}

// Summary fetches the server-side dashboard aggregate.
func (c *Client) Summary(ctx context.Context, recent int) (report.Summary, error) {
	q := c.userQuery()
	q.Set("recent", strconv.Itoa(recent))
	var out report.Summary
	err := c.do(ctx, http.MethodGet, "/summary", q, nil, &out)
	return out, err
}

func (c *Client) Categories(ctx context.Context) (map[core.TransactionType][]string, error) {
	var out map[core.TransactionType][]string
	err := c.do(ctx, http.MethodGet, "/categories", nil, nil, &out)
	return out, err
}

func (c *Client) userQuery() url.Values {
	return url.Values{"userId": {c.userID}}
}

// Request bodies carry the user ID next to the record fields.
type (
	transactionPayload struct {
		UserID string `json:"userId"`
		TransactionRequest
	}

	budgetPayload struct {
		UserID string `json:"userId"`
		BudgetRequest
	}
)

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "financeflow-cli")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	var body struct {
		Error string `json:"error"`
		Code  string `json:"code"`
		Field string `json:"field"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(data, &body); err == nil && body.Error != "" {
		apiErr.Message = body.Error
		apiErr.Code = body.Code
		apiErr.Field = body.Field
	}
	return apiErr
}
