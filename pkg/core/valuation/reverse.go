package valuation

import (
	"fmt"
	"math"

	"dcf_valuation/pkg/models"
)

const (
	impliedGrowthLow           = -0.10
	impliedGrowthHigh          = 0.50
	impliedGrowthTolerance     = 1e-4
	impliedGrowthMaxIterations = 50
)

// ImpliedGrowth solves for the uniform growth rate implied by targetPrice with the default engine.
func ImpliedGrowth(targetPrice float64, company models.Company, assumptions DCFAssumptions, wacc float64, terminalInputs TerminalValueInputs) (ImpliedGrowthResult, error) {
	return Engine{}.ImpliedGrowth(targetPrice, company, assumptions, wacc, terminalInputs)
}

// ImpliedGrowth binary-searches [-10%, 50%] for the uniform revenue growth rate whose enterprise
// value matches targetPrice*shares + netDebt within a relative tolerance of 1e-4.
//
// The uniform rate replaces the whole growth sequence. Under the perpetuity method a missing
// growth rate defaults to DefaultPerpetuityGrowth.
//
// Precondition: enterprise value must increase with growth over the search interval. Margins
// that make FCF fall as revenue rises violate this and the search result is meaningless.
//
// When the iteration cap is exhausted the midpoint of the final bracket is returned together
// with ErrNoConvergence; this is also the outcome for targets outside the interval's EV range.
func (e Engine) ImpliedGrowth(targetPrice float64, company models.Company, assumptions DCFAssumptions, wacc float64, terminalInputs TerminalValueInputs) (ImpliedGrowthResult, error) {
	in, err := prepare(company)
	if err != nil {
		return ImpliedGrowthResult{}, err
	}
	if err := validateAssumptions(assumptions); err != nil {
		return ImpliedGrowthResult{}, err
	}

	terminal := terminalInputs
	if terminal.Method == TerminalPerpetuity && terminal.PerpetuityGrowthRate == nil {
		terminal = Perpetuity(DefaultPerpetuityGrowth)
	}

	targetEV := targetPrice*in.sharesOutstanding + in.netDebt
	tolerance := impliedGrowthTolerance * math.Abs(targetEV)

	evAt := func(g float64) (float64, error) {
		run, err := e.discount(in.base, assumptions.WithUniformGrowth(g), wacc, terminal)
		if err != nil {
			return 0, err
		}
		return run.enterpriseValue, nil
	}

	low, high := impliedGrowthLow, impliedGrowthHigh
	res := ImpliedGrowthResult{TargetEV: targetEV}

	for i := 0; i < impliedGrowthMaxIterations; i++ {
		mid := (low + high) / 2
		ev, err := evAt(mid)
		if err != nil {
			return ImpliedGrowthResult{}, err
		}
		res.Iterations = i + 1

		if math.Abs(ev-targetEV) < tolerance {
			res.Growth = mid
			res.ResultEV = ev
			res.Converged = true
			return res, nil
		}

		if ev < targetEV {
			low = mid
		} else {
			high = mid
		}
	}

	res.Growth = (low + high) / 2
	ev, err := evAt(res.Growth)
	if err != nil {
		return ImpliedGrowthResult{}, err
	}
	res.ResultEV = ev

	return res, fmt.Errorf("%w: target EV %.2f, closest EV %.2f at growth %.6f after %d iterations",
		ErrNoConvergence, targetEV, ev, res.Growth, res.Iterations)
}
