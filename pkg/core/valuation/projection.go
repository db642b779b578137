package valuation

import (
	"fmt"
	"math"
	"time"

	"dcf_valuation/pkg/models"
)

// Options tunes engine behavior. The zero value reproduces the reference behavior.
type Options struct {
	// RejectNegativeRevenue fails a projection when any year's revenue drops below zero.
	RejectNegativeRevenue bool

	// Now stamps DCFResult.CalculatedAt. Defaults to time.Now.
	Now func() time.Time
}

// Engine runs valuations with fixed Options. It holds no mutable state and is safe for concurrent use.
type Engine struct {
	opts Options
}

// NewEngine creates an engine with the given options.
func NewEngine(opts Options) Engine {
	return Engine{opts: opts}
}

// Now reports the engine clock.
func (e Engine) Now() time.Time {
	if e.opts.Now != nil {
		return e.opts.Now()
	}
	return time.Now()
}

// Project advances baseYear forward using the default engine.
func Project(baseYear models.FinancialStatement, assumptions DCFAssumptions, wacc float64) ([]ProjectedFinancials, error) {
	return Engine{}.Project(baseYear, assumptions, wacc)
}

// Project advances baseYear forward assumptions.ProjectionYears years.
//
// Each year depends only on the previous projected year's revenue and NWC. Cash flows are
// discounted with the mid-year convention: year i (zero-based) uses exponent i+0.5.
func (e Engine) Project(baseYear models.FinancialStatement, assumptions DCFAssumptions, wacc float64) ([]ProjectedFinancials, error) {
	if err := validateAssumptions(assumptions); err != nil {
		return nil, err
	}
	if wacc <= -1 {
		return nil, fmt.Errorf("%w: wacc %.4f must be greater than -1", ErrInvalidDiscountRate, wacc)
	}

	projections := make([]ProjectedFinancials, 0, assumptions.ProjectionYears)
	previousRevenue := baseYear.Revenue
	previousNWC := baseYear.Revenue * assumptions.NWCAsPercentOfRevenue

	for i := 0; i < assumptions.ProjectionYears; i++ {
		growth := assumptions.GrowthRateForYear(i)

		// Revenue
		revenue := previousRevenue * (1 + growth)
		if e.opts.RejectNegativeRevenue && revenue < 0 {
			return nil, fmt.Errorf("%w: year %d revenue %.2f", ErrNegativeRevenue, baseYear.Year+i+1, revenue)
		}

		// Profit
		grossProfit := revenue * assumptions.GrossMargin
		operatingIncome := revenue * assumptions.OperatingMargin
		nopat := operatingIncome * (1 - assumptions.TaxRate)

		// Reinvestment
		depreciation := revenue * assumptions.DepreciationAsPercentOfRevenue
		capex := revenue * assumptions.CapexAsPercentOfRevenue
		currentNWC := revenue * assumptions.NWCAsPercentOfRevenue
		changeInNWC := currentNWC - previousNWC

		// FCF = NOPAT + D&A - CapEx - dNWC
		fcf := nopat + depreciation - capex - changeInNWC

		discountFactor := 1 / math.Pow(1+wacc, float64(i)+0.5)

		projections = append(projections, ProjectedFinancials{
			Year:            baseYear.Year + i + 1,
			Revenue:         revenue,
			GrossProfit:     grossProfit,
			OperatingIncome: operatingIncome,
			NOPAT:           nopat,
			Depreciation:    depreciation,
			Capex:           capex,
			ChangeInNWC:     changeInNWC,
			FCF:             fcf,
			DiscountFactor:  discountFactor,
			PresentValue:    fcf * discountFactor,
		})

		previousRevenue = revenue
		previousNWC = currentNWC
	}

	return projections, nil
}

func validateAssumptions(a DCFAssumptions) error {
	if a.ProjectionYears <= 0 {
		return fmt.Errorf("%w: projectionYears must be at least 1, got %d", ErrMalformedInput, a.ProjectionYears)
	}
	if len(a.RevenueGrowthRates) == 0 {
		return fmt.Errorf("%w: revenueGrowthRates is empty", ErrMalformedInput)
	}
	return nil
}
