// Package calc derives historical metrics from reported annual statements.
// These metrics seed default assumptions and the analyst prompt.
package calc

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"dcf_valuation/pkg/models"
)

// maxCAGRPeriods bounds the compounding window to the last five years.
const maxCAGRPeriods = 5

// ErrInsufficientHistory is returned when fewer than two statements are supplied.
var ErrInsufficientHistory = errors.New("insufficient history")

// HistoricalMetrics summarizes a company's reported history.
// Ratios are decimal fractions; averages run over every statement with non-zero revenue.
// The tax rate divides by max(1, pre-tax income) so loss years stay finite.
type HistoricalMetrics struct {
	Years                  int     `json:"years"`
	RevenueCAGR            float64 `json:"revenue_cagr"`
	LatestRevenue          float64 `json:"latest_revenue"`
	AvgGrossMargin         float64 `json:"avg_gross_margin"`
	AvgOperatingMargin     float64 `json:"avg_operating_margin"`
	AvgTaxRate             float64 `json:"avg_tax_rate"`
	AvgCapexPercent        float64 `json:"avg_capex_percent"`
	AvgDepreciationPercent float64 `json:"avg_depreciation_percent"`
	LatestTotalDebt        float64 `json:"latest_total_debt"`
}

// ComputeHistoricalMetrics computes CAGR and average ratios from statements ordered oldest to newest.
func ComputeHistoricalMetrics(statements []models.FinancialStatement) (HistoricalMetrics, error) {
	n := len(statements)
	if n < 2 {
		return HistoricalMetrics{}, fmt.Errorf("%w: need at least 2 statements, got %d", ErrInsufficientHistory, n)
	}

	recent := statements[n-1]
	m := HistoricalMetrics{
		Years:           n,
		LatestRevenue:   recent.Revenue,
		LatestTotalDebt: recent.TotalDebt,
	}

	// 1. Revenue CAGR over at most five periods ending at the latest year
	periods := n - 1
	if periods > maxCAGRPeriods {
		periods = maxCAGRPeriods
	}
	older := statements[n-1-periods]
	m.RevenueCAGR = CAGR(older.Revenue, recent.Revenue, periods)

	// 2. Averages of per-year ratios
	var gross, operating, tax, capex, dep []float64
	for _, s := range statements {
		if s.Revenue == 0 {
			continue
		}
		gross = append(gross, s.GrossProfit/s.Revenue)
		operating = append(operating, s.OperatingIncome/s.Revenue)
		tax = append(tax, s.IncomeTaxExpense/math.Max(1, s.IncomeBeforeTax))
		capex = append(capex, s.CapitalExpenditures/s.Revenue)
		dep = append(dep, s.Depreciation/s.Revenue)
	}

	m.AvgGrossMargin = mean(gross)
	m.AvgOperatingMargin = mean(operating)
	m.AvgTaxRate = mean(tax)
	m.AvgCapexPercent = mean(capex)
	m.AvgDepreciationPercent = mean(dep)

	return m, nil
}

// CAGR is the compound annual growth rate from start to end over periods years.
// It returns 0 when either endpoint is non-positive or periods < 1.
func CAGR(start, end float64, periods int) float64 {
	if start <= 0 || end <= 0 || periods < 1 {
		return 0
	}
	return math.Pow(end/start, 1/float64(periods)) - 1
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return stat.Mean(xs, nil)
}
