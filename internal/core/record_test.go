package core

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestCheckHeader(t *testing.T) {
	if err := CheckHeader([]string{"date", "amount", "category", "description"}); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := CheckHeader([]string{"\ufeffdate", "amount", "category", "description"}); err != nil {
		t.Fatalf("expected BOM to be tolerated, got %v", err)
	}
	for _, bad := range [][]string{
		{"date", "amount", "category"},
		{"amount", "date", "category", "description"},
		{"date", "amount", "category", "description", "extra"},
	} {
		if err := CheckHeader(bad); !errors.Is(err, ErrSchemaMismatch) {
			t.Fatalf("%v expected ErrSchemaMismatch, got %v", bad, err)
		}
	}
}

func TestEncodeDecodeRecord(t *testing.T) {
	tx := Transaction{
		Date:        NewDate(2024, 1, 1),
		Amount:      decimal.RequireFromString("100.00"),
		Category:    Income,
		Description: "Salary, January",
	}
	row := EncodeRecord(tx, DateLayout)
	want := []string{"01-01-2024", "100.00", "Income", "Salary, January"}
	for i := range want {
		if row[i] != want[i] {
			t.Fatalf("field %d: got %q, want %q", i, row[i], want[i])
		}
	}

	back, err := DecodeRecord(row, DateLayout)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !back.Date.Equal(tx.Date.Time) || !back.Amount.Equal(tx.Amount) ||
		back.Category != tx.Category || back.Description != tx.Description {
		t.Fatalf("round trip mismatch: %+v vs %+v", back, tx)
	}
}

func TestDecodeRecordErrors(t *testing.T) {
	cases := []struct {
		row  []string
		want error
	}{
		{[]string{"2024-01-01", "1", "Income", "x"}, ErrInvalidDate},
		{[]string{"01-01-2024", "one", "Income", "x"}, ErrInvalidAmount},
		{[]string{"01-01-2024", "1", "Gift", "x"}, ErrUnknownCategory},
		{[]string{"01-01-2024", "1", "Income"}, ErrSchemaMismatch},
	}
	for i, tc := range cases {
		if _, err := DecodeRecord(tc.row, DateLayout); !errors.Is(err, tc.want) {
			t.Fatalf("case %d: expected %v, got %v", i, tc.want, err)
		}
	}
}

func TestFilterRange(t *testing.T) {
	rows := []Transaction{
		{Date: NewDate(2024, 1, 3), Category: Expense, Description: "c"},
		{Date: NewDate(2024, 1, 1), Category: Income, Description: "a"},
		{Date: NewDate(2024, 1, 2), Category: Expense, Description: "b"},
		{Date: NewDate(2024, 1, 1), Category: Expense, Description: "a2"},
	}

	got := FilterRange(rows, NewDate(2024, 1, 1), NewDate(2024, 1, 2))
	if len(got) != 3 || got[0].Description != "a" || got[1].Description != "b" || got[2].Description != "a2" {
		t.Fatalf("unexpected rows: %+v", got)
	}

	single := FilterRange(rows, NewDate(2024, 1, 1), NewDate(2024, 1, 1))
	if len(single) != 2 {
		t.Fatalf("single-day span: expected 2 rows, got %d", len(single))
	}

	if rev := FilterRange(rows, NewDate(2024, 1, 3), NewDate(2024, 1, 1)); len(rev) != 0 {
		t.Fatalf("reversed range should be empty, got %d", len(rev))
	}
	if none := FilterRange(rows, NewDate(1999, 1, 1), NewDate(1999, 12, 31)); none == nil || len(none) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", none)
	}
}
