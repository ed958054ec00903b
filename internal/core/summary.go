package core

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Summary holds the totals over a set of transactions.
type Summary struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
	Net     decimal.Decimal
	Count   int
}

// Point is one day of a series.
type Point struct {
	Date   Date
	Amount decimal.Decimal
}

// Series is the per-day view used by the chart.
type Series struct {
	Income  []Point
	Expense []Point
}

// Summarize totals income and expense. Net is income minus expense.
func Summarize(rows []Transaction) (Summary, error) {
	s := Summary{Income: decimal.Zero, Expense: decimal.Zero, Net: decimal.Zero}
	for i, r := range rows {
		switch r.Category {
		case Income:
			s.Income = s.Income.Add(r.Amount)
		case Expense:
			s.Expense = s.Expense.Add(r.Amount)
		default:
			return Summary{}, fmt.Errorf("summarize row %d: %w: %q", i, ErrUnknownCategory, string(r.Category))
		}
		s.Count++
	}
	s.Net = s.Income.Sub(s.Expense)
	return s, nil
}

// TimeSeries splits rows per category and resamples each to one point per
// day. Same-day amounts are summed; days inside a series' first..last span
// with no transaction are zero.
func TimeSeries(rows []Transaction) (Series, error) {
	income := map[string]decimal.Decimal{}
	expense := map[string]decimal.Decimal{}
	for i, r := range rows {
		var bucket map[string]decimal.Decimal
		switch r.Category {
		case Income:
			bucket = income
		case Expense:
			bucket = expense
		default:
			return Series{}, fmt.Errorf("time series row %d: %w: %q", i, ErrUnknownCategory, string(r.Category))
		}
		k := r.Date.Key()
		if cur, ok := bucket[k]; ok {
			bucket[k] = cur.Add(r.Amount)
		} else {
			bucket[k] = r.Amount
		}
	}
	return Series{Income: resampleDaily(income), Expense: resampleDaily(expense)}, nil
}

func resampleDaily(byDay map[string]decimal.Decimal) []Point {
	if len(byDay) == 0 {
		return nil
	}
	keys := make([]string, 0, len(byDay))
	for k := range byDay {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	first, _ := ParseDateLayout(keys[0], "2006-01-02")
	last, _ := ParseDateLayout(keys[len(keys)-1], "2006-01-02")

	var out []Point
	for d := first; !d.After(last.Time); d = d.AddDays(1) {
		amt, ok := byDay[d.Key()]
		if !ok {
			amt = decimal.Zero
		}
		out = append(out, Point{Date: d, Amount: amt})
	}
	return out
}

// Max returns the largest amount across both series, zero when empty.
func (s Series) Max() decimal.Decimal {
	m := decimal.Zero
	for _, pts := range [][]Point{s.Income, s.Expense} {
		for _, p := range pts {
			if p.Amount.GreaterThan(m) {
				m = p.Amount
			}
		}
	}
	return m
}

// Span returns the earliest and latest day covered by either series.
func (s Series) Span() (Date, Date, bool) {
	var first, last Date
	found := false
	for _, pts := range [][]Point{s.Income, s.Expense} {
		if len(pts) == 0 {
			continue
		}
		if !found || pts[0].Date.Before(first.Time) {
			first = pts[0].Date
		}
		if !found || pts[len(pts)-1].Date.After(last.Time) {
			last = pts[len(pts)-1].Date
		}
		found = true
	}
	return first, last, found
}
