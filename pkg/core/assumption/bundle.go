// Package assumption produces the inputs of a valuation: three scenario assumption sets,
// WACC inputs and terminal-value inputs, with the reasoning behind them.
package assumption

import (
	"fmt"
	"math"

	"dcf_valuation/pkg/core/valuation"
)

// Origin records where a bundle came from.
type Origin string

const (
	OriginAI         Origin = "ai"
	OriginHistorical Origin = "historical"
	OriginRequest    Origin = "request"
)

// Reasoning explains each major assumption group.
type Reasoning struct {
	RevenueGrowth string `json:"revenueGrowth" yaml:"revenueGrowth"`
	Margins       string `json:"margins" yaml:"margins"`
	WACC          string `json:"wacc" yaml:"wacc"`
	TerminalValue string `json:"terminalValue" yaml:"terminalValue"`
}

// Bundle is everything needed to value a company under bull, base and bear scenarios.
type Bundle struct {
	Assumptions    valuation.ScenarioSet         `json:"assumptions" yaml:"assumptions"`
	WACCInputs     valuation.WACCInputs          `json:"waccInputs" yaml:"waccInputs"`
	TerminalInputs valuation.TerminalValueInputs `json:"terminalInputs" yaml:"terminalInputs"`
	Reasoning      Reasoning                     `json:"reasoning" yaml:"reasoning"`
	Risks          []string                      `json:"risks" yaml:"risks"`
	Catalysts      []string                      `json:"catalysts" yaml:"catalysts"`
	Origin         Origin                        `json:"origin" yaml:"origin"`
}

// Validate checks the bundle's structure. Economic plausibility is not judged here;
// the engine still rejects divergent or inconsistent combinations at valuation time.
func (b Bundle) Validate() error {
	for _, name := range valuation.Scenarios {
		a, _ := b.Assumptions.Get(name)
		if err := validateAssumptions(a); err != nil {
			return fmt.Errorf("%s scenario: %w", name, err)
		}
	}

	w := b.WACCInputs
	for label, v := range map[string]float64{
		"riskFreeRate": w.RiskFreeRate, "beta": w.Beta, "equityRiskPremium": w.EquityRiskPremium,
		"costOfDebt": w.CostOfDebt, "marketCapEquity": w.MarketCapEquity, "totalDebt": w.TotalDebt, "taxRate": w.TaxRate,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: waccInputs.%s is not finite", valuation.ErrMalformedInput, label)
		}
	}

	switch b.TerminalInputs.Method {
	case valuation.TerminalPerpetuity:
		if b.TerminalInputs.PerpetuityGrowthRate == nil {
			return fmt.Errorf("%w: perpetuityGrowthRate is required", valuation.ErrInvalidTerminalValueConfig)
		}
	case valuation.TerminalExitMultiple:
		if b.TerminalInputs.ExitMultiple == nil {
			return fmt.Errorf("%w: exitMultiple is required", valuation.ErrInvalidTerminalValueConfig)
		}
	default:
		return fmt.Errorf("%w: unknown terminal method %q", valuation.ErrInvalidTerminalValueConfig, b.TerminalInputs.Method)
	}

	return nil
}

func validateAssumptions(a valuation.DCFAssumptions) error {
	if a.ProjectionYears <= 0 {
		return fmt.Errorf("%w: projectionYears must be positive, got %d", valuation.ErrMalformedInput, a.ProjectionYears)
	}
	if len(a.RevenueGrowthRates) == 0 {
		return fmt.Errorf("%w: revenueGrowthRates is empty", valuation.ErrMalformedInput)
	}
	for i, g := range a.RevenueGrowthRates {
		if math.IsNaN(g) || math.IsInf(g, 0) || g <= -1 {
			return fmt.Errorf("%w: revenueGrowthRates[%d] = %v", valuation.ErrMalformedInput, i, g)
		}
	}
	for label, v := range map[string]float64{
		"grossMargin": a.GrossMargin, "operatingMargin": a.OperatingMargin, "taxRate": a.TaxRate,
		"depreciationAsPercentOfRevenue": a.DepreciationAsPercentOfRevenue,
		"capexAsPercentOfRevenue":        a.CapexAsPercentOfRevenue,
		"nwcAsPercentOfRevenue":          a.NWCAsPercentOfRevenue,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s is not finite", valuation.ErrMalformedInput, label)
		}
	}
	if a.TaxRate < 0 || a.TaxRate >= 1 {
		return fmt.Errorf("%w: taxRate must be in [0, 1), got %v", valuation.ErrMalformedInput, a.TaxRate)
	}
	return nil
}
