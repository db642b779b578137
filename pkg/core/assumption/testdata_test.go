package assumption

import (
	"context"
	"errors"

	"dcf_valuation/pkg/core/llm"
	"dcf_valuation/pkg/models"
)

func sampleStatement(year int, revenue float64) models.FinancialStatement {
	return models.FinancialStatement{
		Year:                year,
		Revenue:             revenue,
		GrossProfit:         revenue * 0.40,
		OperatingIncome:     revenue * 0.20,
		IncomeBeforeTax:     revenue * 0.18,
		IncomeTaxExpense:    revenue * 0.18 * 0.25,
		Depreciation:        revenue * 0.03,
		CapitalExpenditures: revenue * 0.05,
		TotalDebt:           500,
		SharesOutstanding:   100,
	}
}

func sampleCompany() models.Company {
	return models.Company{
		Ticker:            "ACME",
		Name:              "Acme Corp",
		Sector:            "Industrials",
		Industry:          "Machinery",
		CurrentPrice:      20,
		Beta:              1.1,
		SharesOutstanding: 100,
		TotalDebt:         500,
		Cash:              100,
		HistoricalFinancials: []models.FinancialStatement{
			sampleStatement(2022, 800),
			sampleStatement(2023, 900),
			sampleStatement(2024, 1000),
		},
	}
}

type fakePrompter struct {
	replies map[string]string
	err     error
	calls   []string
	opts    []llm.Options
}

func (f *fakePrompter) ExecutePrompt(_ context.Context, role, prompt, _ string, opts llm.Options) (string, error) {
	f.calls = append(f.calls, role+"|"+prompt)
	f.opts = append(f.opts, opts)
	if f.err != nil {
		return "", f.err
	}
	reply, ok := f.replies[role]
	if !ok {
		return "", errors.New("no reply configured")
	}
	return reply, nil
}

const aiReplyJSON = `Sure, here is the model:
{
  "assumptions": {
    "bull": {"revenueGrowthRates": [0.2, 0.18, 0.15, 0.12, 0.1], "grossMargin": 0.45, "operatingMargin": 0.25,
             "taxRate": 0.21, "depreciationAsPercentOfRevenue": 0.03, "capexAsPercentOfRevenue": 0.04,
             "nwcAsPercentOfRevenue": 0.08, "projectionYears": 5},
    "base": {"revenueGrowthRates": [0.12, 0.1, 0.08, 0.06, 0.05], "grossMargin": 0.4, "operatingMargin": 0.2,
             "taxRate": 0.22, "depreciationAsPercentOfRevenue": 0.03, "capexAsPercentOfRevenue": 0.05,
             "nwcAsPercentOfRevenue": 0.1, "projectionYears": 5},
    "bear": {"revenueGrowthRates": [0.05, 0.04, 0.03, 0.02, 0.02], "grossMargin": 0.36, "operatingMargin": 0.15,
             "taxRate": 0.22, "depreciationAsPercentOfRevenue": 0.03, "capexAsPercentOfRevenue": 0.05,
             "nwcAsPercentOfRevenue": 0.1, "projectionYears": 5},
  },
  "waccInputs": {"equityRiskPremium": 0.06, "costOfDebt": 0.045},
  "terminalInputs": {"method": "perpetuity", "perpetuityGrowthRate": 0.02},
  "reasoning": {"revenueGrowth": "Order backlog", "margins": "Mix shift", "wacc": "CAPM", "terminalValue": "GDP"},
  "risks": ["Tariffs", "Cyclicality"],
  "catalysts": ["Automation demand"],
}`
