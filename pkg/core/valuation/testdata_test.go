package valuation

import "dcf_valuation/pkg/models"

func sampleBaseYear() models.FinancialStatement {
	return models.FinancialStatement{
		Year:                2024,
		Revenue:             1_000_000,
		GrossProfit:         400_000,
		OperatingIncome:     200_000,
		Depreciation:        30_000,
		CapitalExpenditures: 40_000,
		TotalDebt:           500_000,
		TotalEquity:         500_000,
		SharesOutstanding:   100_000,
	}
}

func sampleCompany() models.Company {
	prior := sampleBaseYear()
	prior.Year = 2023
	prior.Revenue = 900_000
	return models.Company{
		Ticker:               "TEST",
		CurrentPrice:         20,
		SharesOutstanding:    100_000,
		TotalDebt:            500_000,
		Cash:                 100_000,
		HistoricalFinancials: []models.FinancialStatement{prior, sampleBaseYear()},
	}
}

func sampleAssumptions() DCFAssumptions {
	return DCFAssumptions{
		RevenueGrowthRates:             []float64{0.10, 0.10, 0.10, 0.10, 0.10},
		GrossMargin:                    0.40,
		OperatingMargin:                0.20,
		TaxRate:                        0.21,
		DepreciationAsPercentOfRevenue: 0.03,
		CapexAsPercentOfRevenue:        0.04,
		NWCAsPercentOfRevenue:          0.10,
		ProjectionYears:                5,
	}
}

func sampleWACCInputs() WACCInputs {
	return WACCInputs{
		RiskFreeRate:      0.04,
		Beta:              1.0,
		EquityRiskPremium: 0.055,
		CostOfDebt:        0.05,
		MarketCapEquity:   1_000_000,
		TotalDebt:         500_000,
		TaxRate:           0.21,
	}
}

// sampleWACC is 0.095*2/3 + 0.0395*1/3.
const sampleWACC = 0.0765
