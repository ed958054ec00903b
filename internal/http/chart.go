package http

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

const (
	chartTitle   = "Income and Expenses Over Time"
	chartWidth   = 800
	chartHeight  = 360
	chartLeft    = 70.0
	chartRight   = 20.0
	chartTop     = 40.0
	chartBottom  = 60.0
	maxDateTicks = 6
	valueTicks   = 4
)

type chartTick struct {
	Pos   string
	Label string
}

type chartLine struct {
	Label  string
	Color  string
	Points string
}

// chartData is the view model of the inline SVG line chart.
type chartData struct {
	Title         string
	Width, Height int
	Left, Right   string
	Top, Bottom   string
	Lines         []chartLine
	XTicks        []chartTick
	YTicks        []chartTick
}

// buildChart lays the income (green) and expense (red) series out on a
// shared day axis. It returns false when both series are empty.
func buildChart(s core.Series) (chartData, bool) {
	first, last, ok := s.Span()
	if !ok {
		return chartData{}, false
	}

	plotW := chartWidth - chartLeft - chartRight
	plotH := chartHeight - chartTop - chartBottom
	days := daysBetween(first, last)

	maxAmount := s.Max()
	if !maxAmount.IsPositive() {
		maxAmount = decimal.NewFromInt(1)
	}
	maxF := maxAmount.InexactFloat64()

	x := func(d core.Date) float64 {
		if days == 0 {
			return chartLeft + plotW/2
		}
		return chartLeft + plotW*float64(daysBetween(first, d))/float64(days)
	}
	y := func(a decimal.Decimal) float64 {
		return chartTop + plotH - plotH*a.InexactFloat64()/maxF
	}
	polyline := func(pts []core.Point) string {
		var b strings.Builder
		for i, p := range pts {
			if i > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "%.1f,%.1f", x(p.Date), y(p.Amount))
		}
		return b.String()
	}

	c := chartData{
		Title:  chartTitle,
		Width:  chartWidth,
		Height: chartHeight,
		Left:   coord(chartLeft),
		Right:  coord(chartWidth - chartRight),
		Top:    coord(chartTop),
		Bottom: coord(chartTop + plotH),
	}
	if len(s.Income) > 0 {
		c.Lines = append(c.Lines, chartLine{Label: "Income", Color: "green", Points: polyline(s.Income)})
	}
	if len(s.Expense) > 0 {
		c.Lines = append(c.Lines, chartLine{Label: "Expense", Color: "red", Points: polyline(s.Expense)})
	}

	step := 1
	if days+1 > maxDateTicks {
		step = (days + maxDateTicks - 1) / (maxDateTicks - 1)
	}
	for i := 0; i <= days; i += step {
		d := first.AddDays(i)
		c.XTicks = append(c.XTicks, chartTick{Pos: coord(x(d)), Label: d.String()})
	}

	for i := 0; i <= valueTicks; i++ {
		v := maxAmount.Mul(decimal.NewFromInt(int64(i))).Div(decimal.NewFromInt(valueTicks))
		c.YTicks = append(c.YTicks, chartTick{Pos: coord(y(v)), Label: v.StringFixed(2)})
	}
	return c, true
}

func daysBetween(a, b core.Date) int {
	return int(b.Sub(a.Time).Hours() / 24)
}

func coord(f float64) string {
	return fmt.Sprintf("%.1f", f)
}
