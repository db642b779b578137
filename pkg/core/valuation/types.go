package valuation

import (
	"time"

	"dcf_valuation/pkg/models"
)

// DCFAssumptions drive one scenario's projection. Rates are decimal fractions (0.21 = 21%).
//
// RevenueGrowthRates may be shorter than ProjectionYears; the last rate is then
// carried forward for the remaining years (see GrowthRateForYear).
type DCFAssumptions struct {
	RevenueGrowthRates             []float64 `json:"revenueGrowthRates" yaml:"revenueGrowthRates"`
	GrossMargin                    float64   `json:"grossMargin" yaml:"grossMargin"`
	OperatingMargin                float64   `json:"operatingMargin" yaml:"operatingMargin"`
	TaxRate                        float64   `json:"taxRate" yaml:"taxRate"`
	DepreciationAsPercentOfRevenue float64   `json:"depreciationAsPercentOfRevenue" yaml:"depreciationAsPercentOfRevenue"`
	CapexAsPercentOfRevenue        float64   `json:"capexAsPercentOfRevenue" yaml:"capexAsPercentOfRevenue"`
	NWCAsPercentOfRevenue          float64   `json:"nwcAsPercentOfRevenue" yaml:"nwcAsPercentOfRevenue"`
	ProjectionYears                int       `json:"projectionYears" yaml:"projectionYears"`
}

// GrowthRateForYear returns the growth rate for zero-based projection year i.
// Years past the end of RevenueGrowthRates reuse the last supplied rate (fade-forward).
func (a DCFAssumptions) GrowthRateForYear(i int) float64 {
	if i < len(a.RevenueGrowthRates) {
		return a.RevenueGrowthRates[i]
	}
	return a.RevenueGrowthRates[len(a.RevenueGrowthRates)-1]
}

// WithUniformGrowth returns a copy whose growth sequence is g for every projection year.
func (a DCFAssumptions) WithUniformGrowth(g float64) DCFAssumptions {
	rates := make([]float64, a.ProjectionYears)
	for i := range rates {
		rates[i] = g
	}
	a.RevenueGrowthRates = rates
	return a
}

// WACCInputs are the capital-structure and risk inputs to ComputeWACC.
type WACCInputs struct {
	RiskFreeRate      float64 `json:"riskFreeRate" yaml:"riskFreeRate"`
	Beta              float64 `json:"beta" yaml:"beta"`
	EquityRiskPremium float64 `json:"equityRiskPremium" yaml:"equityRiskPremium"`
	CostOfDebt        float64 `json:"costOfDebt" yaml:"costOfDebt"` // Pre-tax
	MarketCapEquity   float64 `json:"marketCapEquity" yaml:"marketCapEquity"`
	TotalDebt         float64 `json:"totalDebt" yaml:"totalDebt"`
	TaxRate           float64 `json:"taxRate" yaml:"taxRate"`
}

// WACCResult holds the discount rate and its components.
type WACCResult struct {
	WACC               float64 `json:"wacc"`
	CostOfEquity       float64 `json:"costOfEquity"`
	AfterTaxCostOfDebt float64 `json:"afterTaxCostOfDebt"`
	WeightEquity       float64 `json:"weightEquity"`
	WeightDebt         float64 `json:"weightDebt"`
}

// TerminalMethod selects how value beyond the projection horizon is estimated.
type TerminalMethod string

const (
	TerminalPerpetuity   TerminalMethod = "perpetuity"
	TerminalExitMultiple TerminalMethod = "exitMultiple"
)

// DefaultPerpetuityGrowth is used by the reverse-DCF solver when no perpetuity rate is supplied.
const DefaultPerpetuityGrowth = 0.025

// TerminalValueInputs is a choice between perpetuity growth and an EV/EBITDA exit multiple.
// Only the companion field of the selected method is read.
type TerminalValueInputs struct {
	Method               TerminalMethod `json:"method" yaml:"method"`
	PerpetuityGrowthRate *float64       `json:"perpetuityGrowthRate,omitempty" yaml:"perpetuityGrowthRate"`
	ExitMultiple         *float64       `json:"exitMultiple,omitempty" yaml:"exitMultiple"`
}

// Perpetuity builds perpetuity-growth terminal inputs.
func Perpetuity(g float64) TerminalValueInputs {
	return TerminalValueInputs{Method: TerminalPerpetuity, PerpetuityGrowthRate: &g}
}

// ExitMultiple builds exit-multiple terminal inputs.
func ExitMultiple(multiple float64) TerminalValueInputs {
	return TerminalValueInputs{Method: TerminalExitMultiple, ExitMultiple: &multiple}
}

// withGrowth returns a copy with the perpetuity growth replaced. Exit-multiple inputs are returned unchanged.
func (t TerminalValueInputs) withGrowth(g float64) TerminalValueInputs {
	if t.Method != TerminalPerpetuity {
		return t
	}
	t.PerpetuityGrowthRate = &g
	return t
}

// TerminalValueResult is the undiscounted terminal value and its present value.
type TerminalValueResult struct {
	TerminalValue   float64 `json:"terminalValue"`
	TerminalValuePV float64 `json:"terminalValuePV"`
}

// ProjectedFinancials is one projected year.
type ProjectedFinancials struct {
	Year            int     `json:"year"`
	Revenue         float64 `json:"revenue"`
	GrossProfit     float64 `json:"grossProfit"`
	OperatingIncome float64 `json:"operatingIncome"`
	NOPAT           float64 `json:"nopat"`
	Depreciation    float64 `json:"depreciation"`
	Capex           float64 `json:"capex"`
	ChangeInNWC     float64 `json:"changeInNWC"`
	FCF             float64 `json:"fcf"`
	DiscountFactor  float64 `json:"discountFactor"`
	PresentValue    float64 `json:"presentValue"`
}

// EBITDA is operating income plus depreciation.
func (p ProjectedFinancials) EBITDA() float64 {
	return p.OperatingIncome + p.Depreciation
}

// DCFResult is a complete valuation for one scenario.
type DCFResult struct {
	Projections []ProjectedFinancials `json:"projections"`

	WACC         float64 `json:"wacc"`
	CostOfEquity float64 `json:"costOfEquity"`
	CostOfDebt   float64 `json:"costOfDebt"` // After-tax

	TerminalValue       float64        `json:"terminalValue"`
	TerminalValuePV     float64        `json:"terminalValuePV"`
	TerminalValueMethod TerminalMethod `json:"terminalValueMethod"`

	SumOfPVs        float64 `json:"sumOfPVs"`
	EnterpriseValue float64 `json:"enterpriseValue"`

	NetDebt     float64 `json:"netDebt"`
	EquityValue float64 `json:"equityValue"`

	SharesOutstanding      float64 `json:"sharesOutstanding"`
	IntrinsicValuePerShare float64 `json:"intrinsicValuePerShare"`
	CurrentPrice           float64 `json:"currentPrice"`
	ImpliedUpside          float64 `json:"impliedUpside"`

	CalculatedAt time.Time `json:"calculatedAt"`
}

// Range is an inclusive stepped axis for the sensitivity grid.
type Range struct {
	Min  float64 `json:"min" yaml:"min"`
	Max  float64 `json:"max" yaml:"max"`
	Step float64 `json:"step" yaml:"step"`
}

// SensitivityTable holds per-share prices indexed [waccIndex][growthIndex].
// Cells that could not be computed hold 0 and are counted in FailedCells.
type SensitivityTable struct {
	WACCValues   []float64   `json:"waccValues"`
	GrowthValues []float64   `json:"growthValues"`
	Matrix       [][]float64 `json:"matrix"`
	FailedCells  int         `json:"failedCells"`
}

// ImpliedGrowthResult is the outcome of a reverse-DCF search.
type ImpliedGrowthResult struct {
	Growth     float64 `json:"growth"`
	TargetEV   float64 `json:"targetEV"`
	ResultEV   float64 `json:"resultEV"`
	Iterations int     `json:"iterations"`
	Converged  bool    `json:"converged"`
}

// valuationInput is the company-level data every pipeline run needs.
type valuationInput struct {
	base              models.FinancialStatement
	netDebt           float64
	sharesOutstanding float64
}
