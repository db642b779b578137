package valuation

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"dcf_valuation/pkg/models"
)

// RunDCF performs a full DCF valuation with the default engine.
func RunDCF(company models.Company, assumptions DCFAssumptions, waccInputs WACCInputs, terminalInputs TerminalValueInputs) (*DCFResult, error) {
	return Engine{}.RunDCF(company, assumptions, waccInputs, terminalInputs)
}

// RunDCF composes WACC, projection and terminal value into a DCFResult.
// Component errors are returned as produced; no partial result is ever returned.
// A result that is not finite fails with ErrMalformedInput.
func (e Engine) RunDCF(company models.Company, assumptions DCFAssumptions, waccInputs WACCInputs, terminalInputs TerminalValueInputs) (*DCFResult, error) {
	in, err := prepare(company)
	if err != nil {
		return nil, err
	}

	w, err := ComputeWACC(waccInputs)
	if err != nil {
		return nil, err
	}

	run, err := e.discount(in.base, assumptions, w.WACC, terminalInputs)
	if err != nil {
		return nil, err
	}

	equityValue := run.enterpriseValue - in.netDebt
	perShare := equityValue / in.sharesOutstanding

	upside := 0.0
	if company.CurrentPrice > 0 {
		upside = (perShare - company.CurrentPrice) / company.CurrentPrice
	}

	for _, v := range []float64{run.enterpriseValue, equityValue, perShare, upside} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: valuation overflows float64 (enterprise value %g)", ErrMalformedInput, run.enterpriseValue)
		}
	}

	return &DCFResult{
		Projections:            run.projections,
		WACC:                   w.WACC,
		CostOfEquity:           w.CostOfEquity,
		CostOfDebt:             w.AfterTaxCostOfDebt,
		TerminalValue:          run.terminal.TerminalValue,
		TerminalValuePV:        run.terminal.TerminalValuePV,
		TerminalValueMethod:    terminalInputs.Method,
		SumOfPVs:               run.sumOfPVs,
		EnterpriseValue:        run.enterpriseValue,
		NetDebt:                in.netDebt,
		EquityValue:            equityValue,
		SharesOutstanding:      in.sharesOutstanding,
		IntrinsicValuePerShare: perShare,
		CurrentPrice:           company.CurrentPrice,
		ImpliedUpside:          upside,
		CalculatedAt:           e.Now(),
	}, nil
}

// pipelineRun is the enterprise-level output shared by RunDCF, the sensitivity grid and the reverse solver.
type pipelineRun struct {
	projections     []ProjectedFinancials
	sumOfPVs        float64
	terminal        TerminalValueResult
	enterpriseValue float64
}

// discount projects the base year at a fixed wacc and adds the discounted terminal value.
func (e Engine) discount(base models.FinancialStatement, assumptions DCFAssumptions, wacc float64, terminalInputs TerminalValueInputs) (pipelineRun, error) {
	projections, err := e.Project(base, assumptions, wacc)
	if err != nil {
		return pipelineRun{}, err
	}

	pvs := make([]float64, len(projections))
	for i, p := range projections {
		pvs[i] = p.PresentValue
	}
	sumOfPVs := floats.Sum(pvs)

	finalYear := projections[len(projections)-1]
	tv, err := TerminalValue(finalYear.FCF, finalYear.EBITDA(), wacc, terminalInputs, assumptions.ProjectionYears)
	if err != nil {
		return pipelineRun{}, err
	}

	return pipelineRun{
		projections:     projections,
		sumOfPVs:        sumOfPVs,
		terminal:        tv,
		enterpriseValue: sumOfPVs + tv.TerminalValuePV,
	}, nil
}

// prepare checks the company-level inputs and extracts the base year.
func prepare(company models.Company) (valuationInput, error) {
	base, ok := company.BaseYear()
	if !ok {
		return valuationInput{}, fmt.Errorf("%w: historical financials are empty", ErrMalformedInput)
	}
	if company.SharesOutstanding <= 0 {
		return valuationInput{}, fmt.Errorf("%w: sharesOutstanding must be positive, got %.2f", ErrMalformedInput, company.SharesOutstanding)
	}
	return valuationInput{
		base:              base,
		netDebt:           company.NetDebt(),
		sharesOutstanding: company.SharesOutstanding,
	}, nil
}
