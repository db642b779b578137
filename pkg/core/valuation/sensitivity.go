package valuation

import (
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"dcf_valuation/pkg/models"
)

const (
	maxAxisPoints = 1000
	axisTolerance = 1e-9
)

// DefaultSensitivityRanges centers the WACC axis on wacc (±2%, 0.5% steps) and spans
// terminal growth from 1% to 4% in 0.5% steps.
func DefaultSensitivityRanges(wacc float64) (waccRange, growthRange Range) {
	return Range{Min: wacc - 0.02, Max: wacc + 0.02, Step: 0.005},
		Range{Min: 0.01, Max: 0.04, Step: 0.005}
}

// Sensitivity re-runs the valuation across a WACC x growth grid with the default engine.
func Sensitivity(company models.Company, assumptions DCFAssumptions, waccInputs WACCInputs, terminalInputs TerminalValueInputs, waccRange, growthRange Range) (*SensitivityTable, error) {
	return Engine{}.Sensitivity(company, assumptions, waccInputs, terminalInputs, waccRange, growthRange)
}

// Sensitivity re-runs projection and terminal value for every (wacc, growth) pair.
//
// WACC is substituted directly as the discount rate; waccInputs are not re-derived per cell.
// Growth replaces the perpetuity growth rate and has no effect under the exit-multiple method.
// A cell that cannot be computed is reported as 0 so the grid is always complete.
func (e Engine) Sensitivity(company models.Company, assumptions DCFAssumptions, _ WACCInputs, terminalInputs TerminalValueInputs, waccRange, growthRange Range) (*SensitivityTable, error) {
	in, err := prepare(company)
	if err != nil {
		return nil, err
	}
	if err := validateAssumptions(assumptions); err != nil {
		return nil, err
	}
	waccValues, err := axis("wacc", waccRange)
	if err != nil {
		return nil, err
	}
	growthValues, err := axis("growth", growthRange)
	if err != nil {
		return nil, err
	}

	matrix := make([][]float64, len(waccValues))
	failed := make([]int, len(waccValues))

	// Rows are independent; each goroutine owns exactly one row and one failure counter.
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for wi, wacc := range waccValues {
		g.Go(func() error {
			row := make([]float64, len(growthValues))
			for gi, growth := range growthValues {
				price, ok := e.cellPrice(in, assumptions, wacc, terminalInputs.withGrowth(growth))
				if !ok {
					failed[wi]++
					continue
				}
				row[gi] = price
			}
			matrix[wi] = row
			return nil
		})
	}
	_ = g.Wait()

	total := 0
	for _, n := range failed {
		total += n
	}

	return &SensitivityTable{
		WACCValues:   waccValues,
		GrowthValues: growthValues,
		Matrix:       matrix,
		FailedCells:  total,
	}, nil
}

// cellPrice returns the per-share value rounded to the cent, or ok=false when the cell cannot be computed.
func (e Engine) cellPrice(in valuationInput, assumptions DCFAssumptions, wacc float64, terminalInputs TerminalValueInputs) (float64, bool) {
	run, err := e.discount(in.base, assumptions, wacc, terminalInputs)
	if err != nil {
		return 0, false
	}
	price := (run.enterpriseValue - in.netDebt) / in.sharesOutstanding
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, false
	}
	return math.Round(price*100) / 100, true
}

// axis expands r into its stepped values, rounded to 3 decimals. Max is included when
// it is reachable within axisTolerance. A range with Min == Max yields a single point.
func axis(name string, r Range) ([]float64, error) {
	for _, v := range []float64{r.Min, r.Max, r.Step} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: %s range contains a non-finite value", ErrMalformedInput, name)
		}
	}
	if r.Min > r.Max {
		return nil, fmt.Errorf("%w: %s range min %.4f exceeds max %.4f", ErrMalformedInput, name, r.Min, r.Max)
	}
	if r.Min == r.Max {
		return []float64{round3(r.Min)}, nil
	}
	if r.Step <= 0 {
		return nil, fmt.Errorf("%w: %s range step must be positive, got %.4f", ErrMalformedInput, name, r.Step)
	}

	steps := math.Floor((r.Max-r.Min)/r.Step + axisTolerance)
	if steps+1 > maxAxisPoints {
		return nil, fmt.Errorf("%w: %s range has more than %d points", ErrMalformedInput, name, maxAxisPoints)
	}

	n := int(steps) + 1
	values := make([]float64, n)
	for i := 0; i < n; i++ {
		values[i] = round3(r.Min + float64(i)*r.Step)
	}
	return values, nil
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
