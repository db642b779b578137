package prompt

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_LoadsEmbeddedPrompts(t *testing.T) {
	r, err := Default()
	require.NoError(t, err)
	assert.Equal(t, []string{IDAssumptions, IDThesis}, r.IDs())

	tmpl, err := r.Get(IDAssumptions)
	require.NoError(t, err)
	assert.Equal(t, float32(0.3), tmpl.Temperature)
	assert.Equal(t, 2000, tmpl.MaxTokens)
}

func TestRender_Thesis(t *testing.T) {
	r, err := Default()
	require.NoError(t, err)

	out, err := r.Render(IDThesis, map[string]interface{}{
		"Ticker":          "ACME",
		"CompanyName":     "Acme Corp",
		"CurrentPrice":    20.0,
		"IntrinsicValue":  25.5,
		"ImpliedUpside":   0.275,
		"GrowthRates":     []string{"10%", "8%"},
		"OperatingMargin": 0.2,
		"Risks":           []string{"Competition"},
		"Catalysts":       []string{"New products", "Buybacks"},
	})
	require.NoError(t, err)

	assert.Contains(t, out.User, "Acme Corp (ACME)")
	assert.Contains(t, out.User, "Intrinsic Value (DCF): $25.50")
	assert.Contains(t, out.User, "Implied Upside: 27.5%")
	assert.Contains(t, out.User, "Revenue Growth (Yr 1-5): 10%, 8%")
	assert.Contains(t, out.User, "CATALYSTS: New products, Buybacks")
	assert.Contains(t, out.System, "portfolio manager")
	assert.Equal(t, 800, out.MaxTokens)
}

func TestRender_MissingVariable(t *testing.T) {
	r, err := Default()
	require.NoError(t, err)

	_, err = r.Render(IDThesis, map[string]interface{}{"Ticker": "ACME"})
	assert.Error(t, err)

	_, err = r.Render("valuation.unknown", nil)
	assert.ErrorContains(t, err, "prompt not found")
}

func TestLoadFS_DerivesIDFromPath(t *testing.T) {
	fsys := fstest.MapFS{
		"lib/review/summary.yaml": {Data: []byte("system_prompt: be brief\nuser_template: \"Hello {{.Name}}\"\n")},
		"lib/review/notes.txt":    {Data: []byte("ignored")},
	}

	r := NewRegistry()
	require.NoError(t, r.LoadFS(fsys, "lib"))
	assert.Equal(t, []string{"review.summary"}, r.IDs())

	out, err := r.Render("review.summary", struct{ Name string }{"analyst"})
	require.NoError(t, err)
	assert.Equal(t, "Hello analyst", out.User)
	assert.Equal(t, "be brief", out.System)
}

func TestLoadFS_InvalidYAML(t *testing.T) {
	fsys := fstest.MapFS{"lib/bad.yaml": {Data: []byte("id: [unterminated")}}
	assert.Error(t, NewRegistry().LoadFS(fsys, "lib"))
}
