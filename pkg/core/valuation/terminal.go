package valuation

import (
	"fmt"
	"math"
)

// TerminalValue computes the value of cash flows beyond the projection horizon and discounts it
// with the full-year convention: the terminal value sits at the end of the final projected year.
func TerminalValue(finalYearFCF, finalYearEBITDA, wacc float64, inputs TerminalValueInputs, projectionYears int) (TerminalValueResult, error) {
	if wacc <= -1 {
		return TerminalValueResult{}, fmt.Errorf("%w: wacc %.4f must be greater than -1", ErrInvalidDiscountRate, wacc)
	}

	var tv float64
	switch inputs.Method {
	case TerminalPerpetuity:
		if inputs.PerpetuityGrowthRate == nil {
			return TerminalValueResult{}, fmt.Errorf("%w: perpetuity method requires perpetuityGrowthRate", ErrInvalidTerminalValueConfig)
		}
		g := *inputs.PerpetuityGrowthRate
		if g >= wacc {
			return TerminalValueResult{}, fmt.Errorf("%w: growth %.4f is not below wacc %.4f", ErrDivergentTerminalValue, g, wacc)
		}
		// Gordon Growth: TV = FCF * (1 + g) / (WACC - g)
		tv = finalYearFCF * (1 + g) / (wacc - g)
	case TerminalExitMultiple:
		if inputs.ExitMultiple == nil {
			return TerminalValueResult{}, fmt.Errorf("%w: exitMultiple method requires exitMultiple", ErrInvalidTerminalValueConfig)
		}
		if *inputs.ExitMultiple <= 0 {
			return TerminalValueResult{}, fmt.Errorf("%w: exit multiple %.2f must be positive", ErrInvalidTerminalValueConfig, *inputs.ExitMultiple)
		}
		tv = finalYearEBITDA * *inputs.ExitMultiple
	default:
		return TerminalValueResult{}, fmt.Errorf("%w: unknown method %q", ErrInvalidTerminalValueConfig, inputs.Method)
	}

	return TerminalValueResult{
		TerminalValue:   tv,
		TerminalValuePV: tv / math.Pow(1+wacc, float64(projectionYears)),
	}, nil
}
