package assumption

import (
	"math"

	"dcf_valuation/pkg/core/calc"
	"dcf_valuation/pkg/core/valuation"
	"dcf_valuation/pkg/models"
)

// Default market and terminal inputs.
const (
	DefaultEquityRiskPremium = 0.055
	DefaultCostOfDebt        = 0.05
	DefaultNWCPercent        = 0.10
	DefaultProjectionYears   = 5

	maxBaseGrowth  = 0.15
	growthFade     = 0.02
	finalYearFloor = 0.03
	minimumTaxRate = 0.21
)

// DefaultBundle builds conservative scenarios from history. Base growth starts at the
// historical CAGR capped at 15% and fades 2 points a year, with the final year floored at 3%.
// Bull and bear scale the base growth path and the historical margins.
func DefaultBundle(m calc.HistoricalMetrics, company models.Company, riskFreeRate float64) Bundle {
	start := math.Min(m.RevenueCAGR, maxBaseGrowth)
	growth := make([]float64, DefaultProjectionYears)
	for i := range growth {
		growth[i] = start - growthFade*float64(i)
	}
	growth[len(growth)-1] = math.Max(finalYearFloor, growth[len(growth)-1])

	base := valuation.DCFAssumptions{
		RevenueGrowthRates:             growth,
		GrossMargin:                    m.AvgGrossMargin * 0.98,
		OperatingMargin:                m.AvgOperatingMargin * 0.95,
		TaxRate:                        math.Max(m.AvgTaxRate, minimumTaxRate),
		DepreciationAsPercentOfRevenue: m.AvgDepreciationPercent,
		CapexAsPercentOfRevenue:        m.AvgCapexPercent,
		NWCAsPercentOfRevenue:          DefaultNWCPercent,
		ProjectionYears:                DefaultProjectionYears,
	}

	bull := base
	bull.RevenueGrowthRates = scale(growth, 1.3)
	bull.GrossMargin = m.AvgGrossMargin * 1.02
	bull.OperatingMargin = m.AvgOperatingMargin * 1.1

	bear := base
	bear.RevenueGrowthRates = scale(growth, 0.5)
	bear.GrossMargin = m.AvgGrossMargin * 0.95
	bear.OperatingMargin = m.AvgOperatingMargin * 0.8

	return Bundle{
		Assumptions:    valuation.ScenarioSet{Bull: bull, Base: base, Bear: bear},
		WACCInputs:     marketWACCInputs(company, m, riskFreeRate, DefaultEquityRiskPremium, DefaultCostOfDebt, base.TaxRate),
		TerminalInputs: valuation.Perpetuity(valuation.DefaultPerpetuityGrowth),
		Reasoning: Reasoning{
			RevenueGrowth: "Based on historical CAGR with gradual fade to long-term GDP growth.",
			Margins:       "Assumes slight margin compression from competitive pressures.",
			WACC:          "Using CAPM with standard equity risk premium.",
			TerminalValue: "Gordon Growth Model with 2.5% perpetuity growth (long-term GDP).",
		},
		Risks:     []string{"Competitive pressure", "Margin compression", "Economic slowdown"},
		Catalysts: []string{"Market expansion", "New products", "Operating leverage"},
		Origin:    OriginHistorical,
	}
}

// marketWACCInputs completes WACC inputs with observed market data. Market cap falls back
// to price times shares when the snapshot carries none.
func marketWACCInputs(company models.Company, m calc.HistoricalMetrics, riskFreeRate, erp, costOfDebt, taxRate float64) valuation.WACCInputs {
	marketCap := company.MarketCap
	if marketCap <= 0 {
		marketCap = company.CurrentPrice * company.SharesOutstanding
	}
	return valuation.WACCInputs{
		RiskFreeRate:      riskFreeRate,
		Beta:              company.Beta,
		EquityRiskPremium: erp,
		CostOfDebt:        costOfDebt,
		MarketCapEquity:   marketCap,
		TotalDebt:         m.LatestTotalDebt,
		TaxRate:           taxRate,
	}
}

func scale(xs []float64, factor float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = x * factor
	}
	return out
}
