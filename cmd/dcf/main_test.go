package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dcf_valuation/pkg/app"
	"dcf_valuation/pkg/config"
	"dcf_valuation/pkg/core/store"
)

const request = `
company:
  ticker: ACME
  currentPrice: 20
  sharesOutstanding: 100
  totalDebt: 500
  cash: 100
  beta: 1.1
  historicalFinancials:
    - {year: 2023, revenue: 900, grossProfit: 360, operatingIncome: 180, incomeBeforeTax: 160, incomeTaxExpense: 40, depreciation: 27, capitalExpenditures: 45, totalDebt: 500}
    - {year: 2024, revenue: 1000, grossProfit: 400, operatingIncome: 200, incomeBeforeTax: 180, incomeTaxExpense: 45, depreciation: 30, capitalExpenditures: 50, totalDebt: 500}
`

func setup(t *testing.T) (*config.Config, *app.Services, string) {
	t.Helper()
	cfg := config.Default()
	svc, err := app.New(cfg, zerolog.Nop())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "acme.yaml")
	require.NoError(t, os.WriteFile(path, []byte(request), 0o600))
	return cfg, svc, path
}

func TestRun_Markdown(t *testing.T) {
	cfg, svc, path := setup(t)

	var out bytes.Buffer
	err := run(context.Background(), cfg, svc, nil, options{requestPath: path, format: "markdown", sensitivity: true, thesis: true}, &out, zerolog.Nop())
	require.NoError(t, err)
	assert.Contains(t, out.String(), "ACME")
}

func TestRun_JSON(t *testing.T) {
	cfg, svc, path := setup(t)

	var out bytes.Buffer
	err := run(context.Background(), cfg, svc, nil, options{requestPath: path, format: "json", sensitivity: true}, &out, zerolog.Nop())
	require.NoError(t, err)

	var decoded struct {
		RunID     string `json:"runId"`
		Scenarios []struct {
			Scenario string `json:"scenario"`
		} `json:"scenarios"`
		SensitivityTable *struct {
			WACCValues []float64 `json:"waccValues"`
		} `json:"sensitivityTable"`
		ImpliedGrowth *struct {
			Iterations int `json:"iterations"`
		} `json:"impliedGrowth"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.NotEmpty(t, decoded.RunID)
	require.Len(t, decoded.Scenarios, 3)
	assert.Equal(t, "bull", decoded.Scenarios[0].Scenario)
	require.NotNil(t, decoded.SensitivityTable)
	assert.Len(t, decoded.SensitivityTable.WACCValues, 9)
	require.NotNil(t, decoded.ImpliedGrowth)
}

func TestRun_Errors(t *testing.T) {
	cfg, svc, path := setup(t)

	err := run(context.Background(), cfg, svc, nil, options{requestPath: path, format: "docx"}, &bytes.Buffer{}, zerolog.Nop())
	assert.ErrorContains(t, err, "unknown format")

	err = run(context.Background(), cfg, svc, nil, options{requestPath: filepath.Join(t.TempDir(), "missing.yaml"), format: "json"}, &bytes.Buffer{}, zerolog.Nop())
	assert.Error(t, err)
}

func TestRun_Save(t *testing.T) {
	cfg, svc, path := setup(t)
	runs, err := store.NewRunStore(nil, t.TempDir())
	require.NoError(t, err)

	err = run(context.Background(), cfg, svc, runs, options{requestPath: path, format: "markdown"}, &bytes.Buffer{}, zerolog.Nop())
	require.NoError(t, err)

	saved, err := runs.List(context.Background(), "ACME", 0)
	require.NoError(t, err)
	assert.Len(t, saved, 1)
}

func TestRun_PDF(t *testing.T) {
	cfg, svc, path := setup(t)

	var out bytes.Buffer
	err := run(context.Background(), cfg, svc, nil, options{requestPath: path, format: "pdf", thesis: true}, &out, zerolog.Nop())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out.Bytes(), []byte("%PDF-")))
}

func TestRequestHelp(t *testing.T) {
	help := requestHelp()
	for _, ext := range []string{".yaml", ".yml", ".json", ".hjson", ".toml"} {
		assert.Contains(t, help, ext)
	}
}
