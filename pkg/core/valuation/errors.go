package valuation

import "errors"

var (
	// ErrInvalidCapitalStructure is returned when equity plus debt is not positive.
	ErrInvalidCapitalStructure = errors.New("invalid capital structure")

	// ErrInvalidDiscountRate is returned when WACC is at or below -100%.
	ErrInvalidDiscountRate = errors.New("invalid discount rate")

	// ErrDivergentTerminalValue is returned when perpetuity growth is not below WACC.
	ErrDivergentTerminalValue = errors.New("divergent terminal value")

	// ErrInvalidTerminalValueConfig is returned when the terminal method or its companion parameter is unusable.
	ErrInvalidTerminalValueConfig = errors.New("invalid terminal value config")

	// ErrMalformedInput covers structurally invalid inputs (empty history, non-positive horizon, bad ranges).
	ErrMalformedInput = errors.New("malformed input")

	// ErrNegativeRevenue is only produced when Options.RejectNegativeRevenue is set.
	ErrNegativeRevenue = errors.New("projected revenue is negative")

	// ErrNoConvergence is returned by the reverse-DCF solver when the iteration cap is exhausted.
	ErrNoConvergence = errors.New("implied growth did not converge")
)

// IsInputError reports whether err stems from caller-supplied inputs rather than an internal failure.
func IsInputError(err error) bool {
	return errors.Is(err, ErrInvalidCapitalStructure) ||
		errors.Is(err, ErrInvalidDiscountRate) ||
		errors.Is(err, ErrDivergentTerminalValue) ||
		errors.Is(err, ErrInvalidTerminalValueConfig) ||
		errors.Is(err, ErrMalformedInput) ||
		errors.Is(err, ErrNegativeRevenue)
}
