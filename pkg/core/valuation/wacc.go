package valuation

import "fmt"

// ComputeWACC computes the Weighted Average Cost of Capital using CAPM for the cost of equity
// and market-value capital weights. Negative betas and rates are accepted.
func ComputeWACC(input WACCInputs) (WACCResult, error) {
	// 1. Cost of Equity (CAPM)
	// Ke = Rf + Beta * ERP
	ke := input.RiskFreeRate + input.Beta*input.EquityRiskPremium

	// 2. Cost of Debt (After-tax)
	// Kd = PreTaxKd * (1 - t)
	kd := input.CostOfDebt * (1 - input.TaxRate)

	// 3. Weights
	// V = E + D
	totalCapital := input.MarketCapEquity + input.TotalDebt
	if totalCapital <= 0 {
		return WACCResult{}, fmt.Errorf("%w: equity %.2f + debt %.2f must be positive",
			ErrInvalidCapitalStructure, input.MarketCapEquity, input.TotalDebt)
	}
	we := input.MarketCapEquity / totalCapital
	wd := input.TotalDebt / totalCapital

	// 4. WACC
	wacc := (ke * we) + (kd * wd)

	return WACCResult{
		WACC:               wacc,
		CostOfEquity:       ke,
		AfterTaxCostOfDebt: kd,
		WeightEquity:       we,
		WeightDebt:         wd,
	}, nil
}
