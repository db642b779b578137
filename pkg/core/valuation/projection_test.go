package valuation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProject_SampleScenario(t *testing.T) {
	projections, err := Project(sampleBaseYear(), sampleAssumptions(), sampleWACC)
	require.NoError(t, err)
	require.Len(t, projections, 5)

	y1 := projections[0]
	assert.Equal(t, 2025, y1.Year)
	assert.InDelta(t, 1_100_000, y1.Revenue, 1e-6)
	assert.InDelta(t, 440_000, y1.GrossProfit, 1e-6)
	assert.InDelta(t, 220_000, y1.OperatingIncome, 1e-6)
	assert.InDelta(t, 173_800, y1.NOPAT, 1e-6)
	assert.InDelta(t, 33_000, y1.Depreciation, 1e-6)
	assert.InDelta(t, 44_000, y1.Capex, 1e-6)
	assert.InDelta(t, 10_000, y1.ChangeInNWC, 1e-6)
	assert.InDelta(t, 152_800, y1.FCF, 1e-6)

	// Year 5: revenue 1.1^5 * 1M; FCF = 0.148 * R5 - 0.1 * (R5 - R4)
	y5 := projections[4]
	assert.Equal(t, 2029, y5.Year)
	assert.InDelta(t, 1_610_510, y5.Revenue, 1e-6)
	assert.InDelta(t, 14_641, y5.ChangeInNWC, 1e-6)
	assert.InDelta(t, 223_714.48, y5.FCF, 1e-6)
}

func TestProject_MidYearDiscounting(t *testing.T) {
	projections, err := Project(sampleBaseYear(), sampleAssumptions(), sampleWACC)
	require.NoError(t, err)

	for i, p := range projections {
		expected := 1 / math.Pow(1+sampleWACC, float64(i)+0.5)
		assert.InDelta(t, expected, p.DiscountFactor, 1e-15, "year %d", i+1)
		assert.InDelta(t, p.FCF*expected, p.PresentValue, 1e-9, "year %d", i+1)
	}
}

func TestProject_FadeForwardGrowth(t *testing.T) {
	a := sampleAssumptions()
	a.RevenueGrowthRates = []float64{0.20, 0.10}
	a.ProjectionYears = 4

	projections, err := Project(sampleBaseYear(), a, sampleWACC)
	require.NoError(t, err)
	require.Len(t, projections, 4)

	assert.InDelta(t, 1_200_000, projections[0].Revenue, 1e-6)
	assert.InDelta(t, 1_320_000, projections[1].Revenue, 1e-6)
	assert.InDelta(t, 1_452_000, projections[2].Revenue, 1e-6)
	assert.InDelta(t, 1_597_200, projections[3].Revenue, 1e-6)
}

func TestProject_LongerGrowthSequenceIsTruncated(t *testing.T) {
	a := sampleAssumptions()
	a.ProjectionYears = 2

	projections, err := Project(sampleBaseYear(), a, sampleWACC)
	require.NoError(t, err)
	assert.Len(t, projections, 2)
}

func TestProject_Idempotent(t *testing.T) {
	first, err := Project(sampleBaseYear(), sampleAssumptions(), sampleWACC)
	require.NoError(t, err)
	second, err := Project(sampleBaseYear(), sampleAssumptions(), sampleWACC)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestProject_PositiveRevenueUnderNormalGrowth(t *testing.T) {
	a := sampleAssumptions()
	a.RevenueGrowthRates = []float64{0.5, -0.3, -0.99, 0, 0.05, -0.5}
	a.ProjectionYears = 10

	projections, err := Project(sampleBaseYear(), a, sampleWACC)
	require.NoError(t, err)
	for _, p := range projections {
		assert.Greater(t, p.Revenue, 0.0, "year %d", p.Year)
	}
}

func TestProject_Errors(t *testing.T) {
	t.Run("discount rate at -100%", func(t *testing.T) {
		_, err := Project(sampleBaseYear(), sampleAssumptions(), -1)
		assert.ErrorIs(t, err, ErrInvalidDiscountRate)
	})

	t.Run("zero projection years", func(t *testing.T) {
		a := sampleAssumptions()
		a.ProjectionYears = 0
		_, err := Project(sampleBaseYear(), a, sampleWACC)
		assert.ErrorIs(t, err, ErrMalformedInput)
	})

	t.Run("empty growth rates", func(t *testing.T) {
		a := sampleAssumptions()
		a.RevenueGrowthRates = nil
		_, err := Project(sampleBaseYear(), a, sampleWACC)
		assert.ErrorIs(t, err, ErrMalformedInput)
	})
}

func TestProject_NegativeRevenueToggle(t *testing.T) {
	a := sampleAssumptions()
	a.RevenueGrowthRates = []float64{-1.5}

	// Default: negative revenue propagates.
	projections, err := Project(sampleBaseYear(), a, sampleWACC)
	require.NoError(t, err)
	assert.Less(t, projections[0].Revenue, 0.0)

	strict := NewEngine(Options{RejectNegativeRevenue: true})
	_, err = strict.Project(sampleBaseYear(), a, sampleWACC)
	assert.ErrorIs(t, err, ErrNegativeRevenue)
	assert.True(t, IsInputError(err))
}
