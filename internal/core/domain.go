package core

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

// MaxDescriptionLength is counted in characters, not bytes.
const MaxDescriptionLength = 100

type (
	TransactionType string

	Transaction struct {
		ID          string          `json:"id"`
		UserID      string          `json:"userId"`
		Amount      decimal.Decimal `json:"amount"`
		Date        string          `json:"date"` // YYYY-MM-DD
		Description string          `json:"description"`
		Type        TransactionType `json:"type"`
		Category    string          `json:"category"`
		CreatedAt   time.Time       `json:"createdAt"`
		UpdatedAt   time.Time       `json:"updatedAt"`
	}

	Budget struct {
		ID        string          `json:"id"`
		UserID    string          `json:"userId"`
		Category  string          `json:"category"`
		Amount    decimal.Decimal `json:"amount"`
		CreatedAt time.Time       `json:"createdAt"`
		UpdatedAt time.Time       `json:"updatedAt"`
	}

	// TransactionInput is the raw, client supplied form of a transaction.
	// Amount is kept as text so both JSON numbers and strings are accepted.
	TransactionInput struct {
		Amount      string
		Date        string
		Description string
		Type        string
		Category    string
	}

	// TransactionFields holds validated, normalized transaction values ready to persist.
	TransactionFields struct {
		Amount      decimal.Decimal
		Date        string
		Description string
		Type        TransactionType
		Category    string
	}

	BudgetInput struct {
		Category string
		Amount   string
	}

	BudgetFields struct {
		Category string
		Amount   decimal.Decimal
	}
)

// IsValid reports whether t is one of the known transaction types.
func (t TransactionType) IsValid() bool {
	switch t {
	case Income, Expense:
		return true
	default:
		return false
	}
}

// Validate checks every field rule and returns the normalized fields.
// The first violated rule is reported as a *ValidationError.
func (in TransactionInput) Validate() (TransactionFields, error) {
	amount, err := ParseAmount(in.Amount)
	if err != nil {
		return TransactionFields{}, NewValidationError("amount", "must be a positive number")
	}

	if strings.TrimSpace(in.Date) == "" {
		return TransactionFields{}, NewValidationError("date", "is required")
	}
	date, err := NormalizeDate(in.Date)
	if err != nil {
		return TransactionFields{}, NewValidationError("date", "must be a valid ISO-8601 date")
	}

	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		return TransactionFields{}, NewValidationError("description", "is required")
	}
	if utf8.RuneCountInString(desc) > MaxDescriptionLength {
		return TransactionFields{}, NewValidationError("description", "must be between 1 and 100 characters")
	}

	typ := TransactionType(strings.TrimSpace(in.Type))
	if !typ.IsValid() {
		return TransactionFields{}, NewValidationError("type", "must be either income or expense")
	}

	category := strings.TrimSpace(in.Category)
	if category == "" {
		return TransactionFields{}, NewValidationError("category", "is required")
	}

	return TransactionFields{
		Amount:      amount,
		Date:        date,
		Description: desc,
		Type:        typ,
		Category:    category,
	}, nil
}

// Validate checks the budget rules and returns the normalized fields.
func (in BudgetInput) Validate() (BudgetFields, error) {
	category := strings.TrimSpace(in.Category)
	if category == "" {
		return BudgetFields{}, NewValidationError("category", "is required")
	}
	amount, err := ParseAmount(in.Amount)
	if err != nil {
		return BudgetFields{}, NewValidationError("amount", "must be a positive number")
	}
	return BudgetFields{Category: category, Amount: amount}, nil
}

// NormalizeDate accepts YYYY-MM-DD or an RFC 3339 timestamp and returns the
// calendar date as written, without converting between time zones.
func NormalizeDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if len(s) > 10 {
		if _, err := time.Parse(time.RFC3339, s); err != nil {
			return "", err
		}
		s = s[:10]
	}
	if _, err := time.Parse(time.DateOnly, s); err != nil {
		return "", err
	}
	return s, nil
}

// MonthKey returns the YYYY-MM the transaction belongs to, taken from its own date.
func (t Transaction) MonthKey() string {
	if len(t.Date) < 7 {
		return t.Date
	}
	return t.Date[:7]
}

// InMonth reports whether the transaction date falls in the given calendar month.
func (t Transaction) InMonth(year int, month time.Month) bool {
	d, err := time.Parse(time.DateOnly, t.Date)
	if err != nil {
		return false
	}
	return d.Year() == year && d.Month() == month
}
