package assumption

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dcf_valuation/pkg/core/valuation"
)

const yamlRequest = `
company:
  ticker: ACME
  currentPrice: 20
  sharesOutstanding: 100
  totalDebt: 500
  cash: 100
  beta: 1.1
  historicalFinancials:
    - {year: 2023, revenue: 900, grossProfit: 360, operatingIncome: 180, depreciation: 27, capitalExpenditures: 45, totalDebt: 500}
    - {year: 2024, revenue: 1000, grossProfit: 400, operatingIncome: 200, depreciation: 30, capitalExpenditures: 50, totalDebt: 500}
riskFreeRate: 0.04
terminalInputs:
  method: exitMultiple
  exitMultiple: 10
`

const hjsonRequest = `{
  # hand-edited
  company: {
    ticker: ACME
    currentPrice: 20
    sharesOutstanding: 100
    historicalFinancials: [
      {year: 2023, revenue: 900}
      {year: 2024, revenue: 1000}
    ]
  }
  riskFreeRate: 0.04
}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadRequest_Formats(t *testing.T) {
	req, err := LoadRequest(writeFile(t, "acme.yaml", yamlRequest))
	require.NoError(t, err)
	assert.Equal(t, "ACME", req.Company.Ticker)
	require.Len(t, req.Company.HistoricalFinancials, 2)
	assert.Equal(t, 50.0, req.Company.HistoricalFinancials[1].CapitalExpenditures)
	require.NotNil(t, req.TerminalInputs)
	assert.Equal(t, valuation.TerminalExitMultiple, req.TerminalInputs.Method)
	require.NotNil(t, req.TerminalInputs.ExitMultiple)
	assert.Equal(t, 10.0, *req.TerminalInputs.ExitMultiple)
	assert.Nil(t, req.Assumptions)

	req, err = LoadRequest(writeFile(t, "acme.hjson", hjsonRequest))
	require.NoError(t, err)
	assert.Equal(t, 1000.0, req.Company.HistoricalFinancials[1].Revenue)
	assert.Equal(t, 0.04, req.RiskFreeRate)

	req, err = LoadRequest(writeFile(t, "acme.json", `{"company":{"ticker":"ACME","sharesOutstanding":100},"riskFreeRate":0.035}`))
	require.NoError(t, err)
	assert.Equal(t, 0.035, req.RiskFreeRate)
}

const tomlRequest = `
riskFreeRate = 0.04

[company]
ticker = "ACME"
currentPrice = 20.0
sharesOutstanding = 100.0

[[company.historicalFinancials]]
year = 2023
revenue = 900.0

[[company.historicalFinancials]]
year = 2024
revenue = 1000.0

[terminalInputs]
method = "perpetuity"
perpetuityGrowthRate = 0.02
`

func TestLoadRequest_TOML(t *testing.T) {
	req, err := LoadRequest(writeFile(t, "acme.toml", tomlRequest))
	require.NoError(t, err)
	assert.Equal(t, "ACME", req.Company.Ticker)
	assert.Equal(t, 0.04, req.RiskFreeRate)
	require.Len(t, req.Company.HistoricalFinancials, 2)
	assert.Equal(t, 2024, req.Company.HistoricalFinancials[1].Year)
	require.NotNil(t, req.TerminalInputs)
	assert.Equal(t, valuation.TerminalPerpetuity, req.TerminalInputs.Method)
	require.NotNil(t, req.TerminalInputs.PerpetuityGrowthRate)
	assert.Equal(t, 0.02, *req.TerminalInputs.PerpetuityGrowthRate)

	_, err = LoadRequest(writeFile(t, "bad.toml", "company = ["))
	assert.ErrorIs(t, err, valuation.ErrMalformedInput)
}

func TestLoadRequest_Errors(t *testing.T) {
	_, err := LoadRequest(writeFile(t, "acme.ini", "ticker = ACME"))
	assert.ErrorIs(t, err, valuation.ErrMalformedInput)

	_, err = LoadRequest(writeFile(t, "acme.json", `{"company": [}`))
	assert.ErrorIs(t, err, valuation.ErrMalformedInput)

	_, err = LoadRequest(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValuationRequest_Resolve(t *testing.T) {
	req, err := LoadRequest(writeFile(t, "acme.yaml", yamlRequest))
	require.NoError(t, err)

	b, err := req.Resolve(context.Background(), HistoricalSource{})
	require.NoError(t, err)
	assert.Equal(t, OriginHistorical, b.Origin)
	assert.Equal(t, valuation.TerminalExitMultiple, b.TerminalInputs.Method)
	assert.Equal(t, 5, b.Assumptions.Base.ProjectionYears)

	set := b.Assumptions
	wacc := b.WACCInputs
	req.Assumptions = &set
	req.WACCInputs = &wacc
	req.Company.HistoricalFinancials = nil

	full, err := req.Resolve(context.Background(), HistoricalSource{})
	require.NoError(t, err)
	assert.Equal(t, OriginRequest, full.Origin)
	assert.Equal(t, set, full.Assumptions)

	req.Assumptions.Bear.ProjectionYears = 0
	_, err = req.Resolve(context.Background(), HistoricalSource{})
	assert.ErrorIs(t, err, valuation.ErrMalformedInput)
}

func TestLoadRequest_AcceptsEveryListedExtension(t *testing.T) {
	empty := map[string]string{".yaml": "{}", ".yml": "{}", ".json": "{}", ".hjson": "{}", ".toml": ""}
	for _, ext := range RequestExtensions {
		t.Run(ext, func(t *testing.T) {
			content, ok := empty[ext]
			require.True(t, ok, "no fixture for %s", ext)
			_, err := LoadRequest(writeFile(t, "empty"+ext, content))
			assert.NoError(t, err)
		})
	}
}
