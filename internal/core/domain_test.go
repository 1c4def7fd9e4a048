package core

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func validInput() TransactionInput {
	return TransactionInput{
		Amount:      "12.50",
		Date:        "2024-03-05",
		Description: "  Groceries  ",
		Type:        "expense",
		Category:    " Food & Dining ",
	}
}

func TestTransactionInputValidate(t *testing.T) {
	f, err := validInput().Validate()
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if f.Description != "Groceries" || f.Category != "Food & Dining" {
		t.Fatalf("expected trimmed fields, got %+v", f)
	}
	if !f.Amount.Equal(decimal.RequireFromString("12.5")) {
		t.Fatalf("amount = %s", f.Amount)
	}
	if f.Type != Expense || f.Date != "2024-03-05" {
		t.Fatalf("unexpected fields %+v", f)
	}
}

func TestTransactionInputValidateFailures(t *testing.T) {
	cases := []struct {
		name  string
		edit  func(*TransactionInput)
		field string
	}{
		{"zero amount", func(in *TransactionInput) { in.Amount = "0" }, "amount"},
		{"negative amount", func(in *TransactionInput) { in.Amount = "-3" }, "amount"},
		{"non numeric amount", func(in *TransactionInput) { in.Amount = "ten" }, "amount"},
		{"huge exponent amount", func(in *TransactionInput) { in.Amount = "1e7000000" }, "amount"},
		{"tiny exponent amount", func(in *TransactionInput) { in.Amount = "1e-400" }, "amount"},
		{"too many decimals", func(in *TransactionInput) { in.Amount = "1.123456789" }, "amount"},
		{"missing date", func(in *TransactionInput) { in.Date = " " }, "date"},
		{"bad date", func(in *TransactionInput) { in.Date = "2024-13-40" }, "date"},
		{"blank description", func(in *TransactionInput) { in.Description = "   " }, "description"},
		{"long description", func(in *TransactionInput) { in.Description = strings.Repeat("a", 101) }, "description"},
		{"bad type", func(in *TransactionInput) { in.Type = "transfer" }, "type"},
		{"blank category", func(in *TransactionInput) { in.Category = "" }, "category"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.edit(&in)
			_, err := in.Validate()
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if ve.Field != tc.field {
				t.Fatalf("field = %q, want %q", ve.Field, tc.field)
			}
		})
	}
}

func TestDescriptionLengthCountsCharacters(t *testing.T) {
	in := validInput()
	in.Description = strings.Repeat("é", 100)
	if _, err := in.Validate(); err != nil {
		t.Fatalf("100 characters should be accepted, got %v", err)
	}
}

func TestNormalizeDate(t *testing.T) {
	cases := []struct {
		in, out string
		ok      bool
	}{
		{"2024-03-01", "2024-03-01", true},
		{"2024-03-31T23:30:00-05:00", "2024-03-31", true},
		{"2024-04-01T00:10:00Z", "2024-04-01", true},
		{"03/01/2024", "", false},
		{"2024-02-30", "", false},
	}
	for _, tc := range cases {
		got, err := NormalizeDate(tc.in)
		if tc.ok && (err != nil || got != tc.out) {
			t.Fatalf("%q expected %q, got %q (err=%v)", tc.in, tc.out, got, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestBudgetInputValidate(t *testing.T) {
	f, err := BudgetInput{Category: " Travel ", Amount: "500"}.Validate()
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if f.Category != "Travel" || !f.Amount.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("unexpected fields %+v", f)
	}

	bads := []BudgetInput{
		{Category: "", Amount: "10"},
		{Category: "Travel", Amount: "0"},
		{Category: "Travel", Amount: ""},
		{Category: "Travel", Amount: "1e7000000"},
		{Category: "Travel", Amount: "1e-400"},
	}
	for i, in := range bads {
		var ve *ValidationError
		if _, err := in.Validate(); !errors.As(err, &ve) || ve.Field != "category" && ve.Field != "amount" {
			t.Fatalf("case %d expected validation error, got %v", i, err)
		}
	}
}

func TestTransactionMonthHelpers(t *testing.T) {
	tx := Transaction{Date: "2024-03-31"}
	if tx.MonthKey() != "2024-03" {
		t.Fatalf("MonthKey = %q", tx.MonthKey())
	}
	if !tx.InMonth(2024, time.March) || tx.InMonth(2024, time.April) {
		t.Fatalf("InMonth mismatch")
	}
}

func TestAmountMarshalsAsNumber(t *testing.T) {
	if !decimal.MarshalJSONWithoutQuotes {
		t.Fatal("importing core should switch decimals to JSON numbers")
	}
	b, err := json.Marshal(Budget{Amount: decimal.RequireFromString("500")})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), `"amount":500`) {
		t.Fatalf("amount should be a JSON number: %s", b)
	}
}
