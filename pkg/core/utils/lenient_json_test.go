package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reply struct {
	GrowthRates []float64 `json:"revenueGrowthRates"`
	Margin      float64   `json:"operatingMargin"`
	Method      string    `json:"method"`
}

func TestSmartParse(t *testing.T) {
	testCases := []struct {
		name  string
		input string
	}{
		{"strict json", `{"revenueGrowthRates":[0.1,0.08],"operatingMargin":0.2,"method":"perpetuity"}`},
		{"wrapped in prose", "Here are the assumptions:\n```json\n{\"revenueGrowthRates\":[0.1,0.08],\"operatingMargin\":0.2,\"method\":\"perpetuity\"}\n```\nLet me know."},
		{"trailing comma", `{"revenueGrowthRates":[0.1,0.08,],"operatingMargin":0.2,"method":"perpetuity",}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var r reply
			out, err := SmartParse(tc.input, &r)
			require.NoError(t, err)
			assert.NotEmpty(t, out)
			assert.Equal(t, []float64{0.1, 0.08}, r.GrowthRates)
			assert.Equal(t, 0.2, r.Margin)
			assert.Equal(t, "perpetuity", r.Method)
		})
	}
}

func TestSmartParse_LenientInputKeepsFloat64(t *testing.T) {
	input := "```json\n{\n  // model note\n  \"revenueGrowthRates\": [0.12, 0.1, 0.0825,],\n  \"operatingMargin\": 0.22,\n  \"method\": \"perpetuity\",\n}\n```"

	var r reply
	out, err := SmartParse(input, &r)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.12, 0.1, 0.0825}, r.GrowthRates)
	assert.Equal(t, 0.22, r.Margin)
	assert.Contains(t, out, "0.0825")
	assert.NotContains(t, out, "0.2199999")
}

func TestSmartParse_TypeMismatch(t *testing.T) {
	var r reply
	_, err := SmartParse(`{"revenueGrowthRates":"fast"}`, &r)
	assert.ErrorIs(t, err, ErrUnparseable)
}

func TestExtractJSONObject(t *testing.T) {
	obj, ok := ExtractJSONObject(`noise {"a": {"b": 1}} tail`)
	assert.True(t, ok)
	assert.Equal(t, `{"a": {"b": 1}}`, obj)

	_, ok = ExtractJSONObject("no braces here")
	assert.False(t, ok)

	_, ok = ExtractJSONObject("} backwards {")
	assert.False(t, ok)
}

func TestParseHJSON(t *testing.T) {
	out, err := ParseHJSON("{\n  // comment\n  name: acme\n  years: 5\n}")
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"acme","years":5}`, out)
}

func TestCleanMarkdown(t *testing.T) {
	assert.Equal(t, "# Thesis\n\nBody", CleanMarkdown("```markdown\n# Thesis\n\nBody\n```"))
	assert.Equal(t, "plain text", CleanMarkdown("  plain text \n"))
	assert.Equal(t, "x = 1", CleanMarkdown("```\nx = 1\n```"))
}
