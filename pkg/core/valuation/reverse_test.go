package valuation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImpliedGrowth_RecoversKnownGrowth(t *testing.T) {
	testCases := []struct {
		name     string
		growth   float64
		terminal TerminalValueInputs
	}{
		{"perpetuity 7%", 0.07, Perpetuity(DefaultPerpetuityGrowth)},
		{"perpetuity 0%", 0.0, Perpetuity(DefaultPerpetuityGrowth)},
		{"perpetuity 25%", 0.25, Perpetuity(DefaultPerpetuityGrowth)},
		{"exit multiple 12%", 0.12, ExitMultiple(9)},
		{"perpetuity -5% custom terminal", -0.05, Perpetuity(0.01)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			company, a := sampleCompany(), sampleAssumptions()

			known, err := RunDCF(company, a.WithUniformGrowth(tc.growth), sampleWACCInputs(), tc.terminal)
			require.NoError(t, err)

			res, err := ImpliedGrowth(known.IntrinsicValuePerShare, company, a, known.WACC, tc.terminal)
			require.NoError(t, err)

			assert.True(t, res.Converged)
			assert.InDelta(t, tc.growth, res.Growth, 1e-3)
			assert.LessOrEqual(t, res.Iterations, impliedGrowthMaxIterations)
			assert.InDelta(t, known.EnterpriseValue, res.TargetEV, 1e-6*known.EnterpriseValue)
		})
	}
}

func TestImpliedGrowth_DefaultsPerpetuityGrowth(t *testing.T) {
	company, a := sampleCompany(), sampleAssumptions()

	known, err := RunDCF(company, a.WithUniformGrowth(0.08), sampleWACCInputs(), Perpetuity(DefaultPerpetuityGrowth))
	require.NoError(t, err)

	res, err := ImpliedGrowth(known.IntrinsicValuePerShare, company, a, known.WACC, TerminalValueInputs{Method: TerminalPerpetuity})
	require.NoError(t, err)
	assert.InDelta(t, 0.08, res.Growth, 1e-3)
}

func TestImpliedGrowth_NoConvergence(t *testing.T) {
	company, a := sampleCompany(), sampleAssumptions()

	res, err := ImpliedGrowth(1e9, company, a, sampleWACC, Perpetuity(DefaultPerpetuityGrowth))
	assert.ErrorIs(t, err, ErrNoConvergence)
	assert.False(t, res.Converged)
	assert.Equal(t, impliedGrowthMaxIterations, res.Iterations)
	assert.InDelta(t, impliedGrowthHigh, res.Growth, 1e-9)
}

func TestImpliedGrowth_PropagatesEngineErrors(t *testing.T) {
	company, a := sampleCompany(), sampleAssumptions()

	_, err := ImpliedGrowth(20, company, a, 0.02, Perpetuity(DefaultPerpetuityGrowth))
	assert.ErrorIs(t, err, ErrDivergentTerminalValue)

	_, err = ImpliedGrowth(20, company, a, sampleWACC, TerminalValueInputs{Method: TerminalExitMultiple})
	assert.ErrorIs(t, err, ErrInvalidTerminalValueConfig)

	a.ProjectionYears = 0
	_, err = ImpliedGrowth(20, company, a, sampleWACC, Perpetuity(DefaultPerpetuityGrowth))
	assert.ErrorIs(t, err, ErrMalformedInput)
}

func TestWithUniformGrowth_DoesNotMutateInput(t *testing.T) {
	a := sampleAssumptions()
	b := a.WithUniformGrowth(0.3)

	assert.Equal(t, []float64{0.10, 0.10, 0.10, 0.10, 0.10}, a.RevenueGrowthRates)
	assert.Equal(t, []float64{0.3, 0.3, 0.3, 0.3, 0.3}, b.RevenueGrowthRates)
}
