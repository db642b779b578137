// Package report renders valuation results as Markdown and HTML.
package report

import (
	"math"

	"github.com/shopspring/decimal"
)

var currencyScales = []struct {
	threshold decimal.Decimal
	suffix    string
}{
	{decimal.New(1, 12), "T"},
	{decimal.New(1, 9), "B"},
	{decimal.New(1, 6), "M"},
	{decimal.New(1, 3), "K"},
}

// FormatCurrency renders value in dollars with a T/B/M/K suffix chosen by magnitude,
// e.g. FormatCurrency(1.5e9, 2) = "$1.50B". Rounding is half away from zero.
func FormatCurrency(value float64, decimals int32) string {
	if !finite(value) {
		return "n/a"
	}
	d := decimal.NewFromFloat(value)
	for _, s := range currencyScales {
		if d.Abs().GreaterThanOrEqual(s.threshold) {
			return "$" + d.Div(s.threshold).StringFixed(decimals) + s.suffix
		}
	}
	return "$" + d.StringFixed(decimals)
}

// FormatPercent renders a decimal fraction as a percentage: FormatPercent(0.1234, 1) = "12.3%".
func FormatPercent(value float64, decimals int32) string {
	if !finite(value) {
		return "n/a"
	}
	return decimal.NewFromFloat(value).Shift(2).StringFixed(decimals) + "%"
}

// FormatPrice renders a per-share amount to the cent without a suffix.
func FormatPrice(value float64) string {
	if !finite(value) {
		return "n/a"
	}
	return "$" + decimal.NewFromFloat(value).StringFixed(2)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
