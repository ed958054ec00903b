package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income  Category = "Income"
	Expense Category = "Expense"
)

// DateLayout is the persisted date format (DD-MM-YYYY).
const DateLayout = "02-01-2006"

type (
	// Category is the closed set of transaction kinds.
	Category string

	Date struct {
		time.Time
	}

	Transaction struct {
		Date        Date
		Amount      decimal.Decimal
		Category    Category
		Description string
	}
)

var (
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrUnknownCategory = errors.New("unknown category")
	ErrSchemaMismatch  = errors.New("table schema mismatch")
)

// MinAmount is the smallest amount the input form accepts.
var MinAmount = decimal.New(1, -2)

// Categories returns every valid category in display order.
func Categories() []Category {
	return []Category{Income, Expense}
}

// ParseCategory maps user or stored text onto the enum. Matching ignores
// case and surrounding whitespace; the canonical value is returned.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for _, c := range Categories() {
		if strings.EqualFold(s, string(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

func (c Category) Valid() bool {
	switch c {
	case Income, Expense:
		return true
	default:
		return false
	}
}

// CheckCategory returns ErrUnknownCategory unless c is exactly one of the
// enum values. Stores call it before writing so that every stored row reads
// back unchanged.
func CheckCategory(c Category) error {
	if !c.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, string(c))
	}
	return nil
}

func (c Category) String() string {
	return string(c)
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses s using DateLayout.
func ParseDate(s string) (Date, error) {
	return ParseDateLayout(s, DateLayout)
}

// ParseDateLayout parses s with an explicit layout. The whole string must
// match; there is no lenient fallback.
func ParseDateLayout(s, layout string) (Date, error) {
	t, err := time.Parse(layout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w %q: %v", ErrInvalidDate, s, err)
	}
	return DateOf(t), nil
}

// String renders the date in the persisted layout.
func (d Date) String() string {
	return d.Format(DateLayout)
}

// Key is a sortable day identifier (YYYY-MM-DD).
func (d Date) Key() string {
	return d.Format("2006-01-02")
}

// AddDays returns the date n calendar days later.
func (d Date) AddDays(n int) Date {
	return Date{Time: d.AddDate(0, 0, n)}
}

// Between reports whether start <= d <= end.
func (d Date) Between(start, end Date) bool {
	return !d.Before(start.Time) && !d.After(end.Time)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return fmt.Errorf("%w: date cannot be zero", ErrInvalidDate)
	}
	return nil
}

// Validate applies the input form's constraints. The stores never call it.
func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if t.Amount.LessThan(MinAmount) {
		return fmt.Errorf("%w: must be at least %s", ErrInvalidAmount, MinAmount.StringFixed(2))
	}
	return CheckCategory(t.Category)
}
