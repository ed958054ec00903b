package core

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestSummarizeEmpty(t *testing.T) {
	s, err := Summarize(nil)
	require.NoError(t, err)
	assert.True(t, s.Income.IsZero())
	assert.True(t, s.Expense.IsZero())
	assert.True(t, s.Net.IsZero())
	assert.Equal(t, 0, s.Count)
}

func TestSummarizeSalaryGroceries(t *testing.T) {
	rows := []Transaction{
		{Date: NewDate(2024, 1, 1), Amount: dec("100.00"), Category: Income, Description: "Salary"},
		{Date: NewDate(2024, 1, 2), Amount: dec("40.00"), Category: Expense, Description: "Groceries"},
	}
	s, err := Summarize(rows)
	require.NoError(t, err)
	assert.True(t, s.Income.Equal(dec("100.00")), "income=%s", s.Income)
	assert.True(t, s.Expense.Equal(dec("40.00")), "expense=%s", s.Expense)
	assert.True(t, s.Net.Equal(dec("60.00")), "net=%s", s.Net)
	assert.Equal(t, 2, s.Count)
}

func TestSummarizeNegativeNet(t *testing.T) {
	rows := []Transaction{
		{Amount: dec("10"), Category: Income},
		{Amount: dec("25.5"), Category: Expense},
		{Amount: dec("0.1"), Category: Expense},
	}
	s, err := Summarize(rows)
	require.NoError(t, err)
	assert.Equal(t, "-15.6", s.Net.String())
}

func TestSummarizeRejectsUnknownCategory(t *testing.T) {
	_, err := Summarize([]Transaction{{Amount: dec("1"), Category: "Transfer"}})
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestTimeSeriesResamplesDaily(t *testing.T) {
	rows := []Transaction{
		{Date: NewDate(2024, 1, 1), Amount: dec("100"), Category: Income},
		{Date: NewDate(2024, 1, 4), Amount: dec("50"), Category: Income},
		{Date: NewDate(2024, 1, 1), Amount: dec("25"), Category: Income},
		{Date: NewDate(2024, 1, 2), Amount: dec("40"), Category: Expense},
		{Date: NewDate(2024, 1, 2), Amount: dec("2.5"), Category: Expense},
	}
	s, err := TimeSeries(rows)
	require.NoError(t, err)

	require.Len(t, s.Income, 4)
	assert.Equal(t, "01-01-2024", s.Income[0].Date.String())
	assert.True(t, s.Income[0].Amount.Equal(dec("125")))
	assert.True(t, s.Income[1].Amount.IsZero())
	assert.True(t, s.Income[2].Amount.IsZero())
	assert.True(t, s.Income[3].Amount.Equal(dec("50")))

	require.Len(t, s.Expense, 1)
	assert.Equal(t, "02-01-2024", s.Expense[0].Date.String())
	assert.True(t, s.Expense[0].Amount.Equal(dec("42.5")))

	assert.True(t, s.Max().Equal(dec("125")))
	first, last, ok := s.Span()
	require.True(t, ok)
	assert.Equal(t, "01-01-2024", first.String())
	assert.Equal(t, "04-01-2024", last.String())
}

func TestTimeSeriesEmpty(t *testing.T) {
	s, err := TimeSeries(nil)
	require.NoError(t, err)
	assert.Empty(t, s.Income)
	assert.Empty(t, s.Expense)
	_, _, ok := s.Span()
	assert.False(t, ok)
}

func TestTimeSeriesCrossesMonthBoundary(t *testing.T) {
	rows := []Transaction{
		{Date: NewDate(2024, 2, 28), Amount: dec("1"), Category: Expense},
		{Date: NewDate(2024, 3, 1), Amount: dec("2"), Category: Expense},
	}
	s, err := TimeSeries(rows)
	require.NoError(t, err)
	require.Len(t, s.Expense, 3) // 2024 is a leap year
	assert.Equal(t, "29-02-2024", s.Expense[1].Date.String())
}

func TestTimeSeriesRejectsUnknownCategory(t *testing.T) {
	_, err := TimeSeries([]Transaction{{Date: NewDate(2024, 1, 1), Amount: dec("1"), Category: "Transfer"}})
	assert.ErrorIs(t, err, ErrUnknownCategory)
}
