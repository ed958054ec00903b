package core

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Columns is the fixed table header, in order.
var Columns = []string{"date", "amount", "category", "description"}

// CheckHeader verifies a header row against Columns.
func CheckHeader(fields []string) error {
	if len(fields) != len(Columns) {
		return fmt.Errorf("%w: header has %d columns, want %d", ErrSchemaMismatch, len(fields), len(Columns))
	}
	for i, name := range Columns {
		// Tolerate a UTF-8 BOM on the first cell.
		got := strings.TrimPrefix(strings.TrimSpace(fields[i]), "\ufeff")
		if got != name {
			return fmt.Errorf("%w: column %d is %q, want %q", ErrSchemaMismatch, i+1, got, name)
		}
	}
	return nil
}

// EncodeRecord converts a transaction into a table row.
func EncodeRecord(t Transaction, layout string) []string {
	return []string{
		t.Date.Format(layout),
		FormatAmount(t.Amount),
		string(t.Category),
		t.Description,
	}
}

// DecodeRecord parses one table row. No constraint beyond well-formedness
// is checked: the amount may be any decimal.
func DecodeRecord(fields []string, layout string) (Transaction, error) {
	if len(fields) != len(Columns) {
		return Transaction{}, fmt.Errorf("%w: row has %d fields, want %d", ErrSchemaMismatch, len(fields), len(Columns))
	}
	date, err := ParseDateLayout(fields[0], layout)
	if err != nil {
		return Transaction{}, err
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(fields[1]))
	if err != nil {
		return Transaction{}, fmt.Errorf("%w %q: %v", ErrInvalidAmount, fields[1], err)
	}
	category, err := ParseCategory(fields[2])
	if err != nil {
		return Transaction{}, err
	}
	return Transaction{
		Date:        date,
		Amount:      amount,
		Category:    category,
		Description: fields[3],
	}, nil
}

// FilterRange keeps the rows dated within [start, end], preserving order.
// A reversed range yields nothing.
func FilterRange(rows []Transaction, start, end Date) []Transaction {
	out := make([]Transaction, 0)
	if start.After(end.Time) {
		return out
	}
	for _, r := range rows {
		if r.Date.Between(start, end) {
			out = append(out, r)
		}
	}
	return out
}
