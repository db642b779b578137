package report

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatCurrency(t *testing.T) {
	testCases := []struct {
		value    float64
		decimals int32
		expected string
	}{
		{2.5e12, 2, "$2.50T"},
		{1.5e9, 2, "$1.50B"},
		{-3.456e6, 1, "$-3.5M"},
		{12_345, 0, "$12K"},
		{1000, 2, "$1.00K"},
		{999.5, 2, "$999.50"},
		{0, 2, "$0.00"},
		{1.005, 2, "$1.01"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, FormatCurrency(tc.value, tc.decimals))
		})
	}
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "12.3%", FormatPercent(0.1234, 1))
	assert.Equal(t, "7.65%", FormatPercent(0.0765, 2))
	assert.Equal(t, "-40.0%", FormatPercent(-0.4, 1))
	assert.Equal(t, "0%", FormatPercent(0, 0))
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "$25.31", FormatPrice(25.3149))
	assert.Equal(t, "$-1.20", FormatPrice(-1.2))
}

func TestFormat_NonFinite(t *testing.T) {
	for _, v := range []float64{math.Inf(1), math.Inf(-1), math.NaN()} {
		assert.Equal(t, "n/a", FormatCurrency(v, 2))
		assert.Equal(t, "n/a", FormatPercent(v, 1))
		assert.Equal(t, "n/a", FormatPrice(v))
	}
}
