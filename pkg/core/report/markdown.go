package report

import (
	"fmt"
	"strings"
	"time"

	"dcf_valuation/pkg/core/assumption"
	"dcf_valuation/pkg/core/valuation"
	"dcf_valuation/pkg/models"
)

// Report is everything rendered for one valuation run.
type Report struct {
	RunID         string                         `json:"runId"`
	GeneratedAt   time.Time                      `json:"generatedAt"`
	Company       models.Company                 `json:"company"`
	Bundle        *assumption.Bundle             `json:"bundle,omitempty"`
	Scenarios     []valuation.ScenarioResult     `json:"scenarios"`
	Sensitivity   *valuation.SensitivityTable    `json:"sensitivityTable,omitempty"`
	ImpliedGrowth *valuation.ImpliedGrowthResult `json:"impliedGrowth,omitempty"`
	Thesis        string                         `json:"thesis,omitempty"`
}

// RenderMarkdown renders r as a Markdown document.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	title := r.Company.Ticker
	if r.Company.Name != "" {
		title = fmt.Sprintf("%s (%s)", r.Company.Name, r.Company.Ticker)
	}
	sb.WriteString(fmt.Sprintf("# DCF Valuation: %s\n\n", title))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.UTC().Format(time.RFC3339)))
	if r.RunID != "" {
		sb.WriteString(fmt.Sprintf("Run: `%s`\n\n", r.RunID))
	}
	if r.Bundle != nil {
		sb.WriteString(fmt.Sprintf("Assumptions source: %s\n\n", r.Bundle.Origin))
	}

	// Scenario summary
	sb.WriteString("## Scenario Summary\n\n")
	if len(r.Scenarios) > 0 {
		sb.WriteString("| Scenario | Enterprise Value | Equity Value | Value / Share | Price | Upside | WACC |\n")
		sb.WriteString("|----------|------------------|--------------|---------------|-------|--------|------|\n")
		for _, s := range r.Scenarios {
			if s.Result == nil {
				sb.WriteString(fmt.Sprintf("| %s | failed: %s | | | | | |\n", s.Scenario, escapeCell(s.Error)))
				continue
			}
			res := s.Result
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s | %s |\n",
				s.Scenario, FormatCurrency(res.EnterpriseValue, 2), FormatCurrency(res.EquityValue, 2),
				FormatPrice(res.IntrinsicValuePerShare), FormatPrice(res.CurrentPrice),
				FormatPercent(res.ImpliedUpside, 1), FormatPercent(res.WACC, 2)))
		}
	} else {
		sb.WriteString("No scenarios valued.\n")
	}
	sb.WriteString("\n")

	// Base case detail
	if base := baseResult(r.Scenarios); base != nil {
		writeBridge(&sb, base)
		writeProjections(&sb, base)
	}

	if r.Sensitivity != nil {
		writeSensitivity(&sb, r.Sensitivity)
	}

	if r.ImpliedGrowth != nil {
		g := r.ImpliedGrowth
		sb.WriteString("## Reverse DCF\n\n")
		status := "converged"
		if !g.Converged {
			status = "did not converge"
		}
		sb.WriteString(fmt.Sprintf("The current price implies uniform revenue growth of **%s** per year (%s after %d iterations; target EV %s, model EV %s).\n\n",
			FormatPercent(g.Growth, 2), status, g.Iterations, FormatCurrency(g.TargetEV, 2), FormatCurrency(g.ResultEV, 2)))
	}

	if r.Bundle != nil {
		writeRationale(&sb, r.Bundle)
	}

	if r.Thesis != "" {
		sb.WriteString("## Investment Thesis\n\n")
		sb.WriteString(r.Thesis)
		sb.WriteString("\n")
	}

	return sb.String()
}

func baseResult(scenarios []valuation.ScenarioResult) *valuation.DCFResult {
	for _, s := range scenarios {
		if s.Scenario == valuation.ScenarioBase {
			return s.Result
		}
	}
	return nil
}

func writeBridge(sb *strings.Builder, res *valuation.DCFResult) {
	sb.WriteString("## Base Case Valuation Bridge\n\n")
	sb.WriteString("| Item | Value |\n")
	sb.WriteString("|------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Cost of Equity | %s |\n", FormatPercent(res.CostOfEquity, 2)))
	sb.WriteString(fmt.Sprintf("| After-tax Cost of Debt | %s |\n", FormatPercent(res.CostOfDebt, 2)))
	sb.WriteString(fmt.Sprintf("| WACC | %s |\n", FormatPercent(res.WACC, 2)))
	sb.WriteString(fmt.Sprintf("| Sum of PV (FCF) | %s |\n", FormatCurrency(res.SumOfPVs, 2)))
	sb.WriteString(fmt.Sprintf("| Terminal Value (%s) | %s |\n", res.TerminalValueMethod, FormatCurrency(res.TerminalValue, 2)))
	sb.WriteString(fmt.Sprintf("| PV of Terminal Value | %s |\n", FormatCurrency(res.TerminalValuePV, 2)))
	sb.WriteString(fmt.Sprintf("| Enterprise Value | %s |\n", FormatCurrency(res.EnterpriseValue, 2)))
	sb.WriteString(fmt.Sprintf("| Less: Net Debt | %s |\n", FormatCurrency(res.NetDebt, 2)))
	sb.WriteString(fmt.Sprintf("| Equity Value | %s |\n", FormatCurrency(res.EquityValue, 2)))
	sb.WriteString(fmt.Sprintf("| Intrinsic Value / Share | %s |\n", FormatPrice(res.IntrinsicValuePerShare)))
	sb.WriteString("\n")
}

func writeProjections(sb *strings.Builder, res *valuation.DCFResult) {
	sb.WriteString("## Base Case Projections\n\n")
	sb.WriteString("| Year | Revenue | EBIT | NOPAT | D&A | Capex | ΔNWC | FCF | Discount Factor | PV |\n")
	sb.WriteString("|------|---------|------|-------|-----|-------|------|-----|-----------------|----|\n")
	for _, p := range res.Projections {
		sb.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %s | %s | %s | %s | %.4f | %s |\n",
			p.Year, FormatCurrency(p.Revenue, 1), FormatCurrency(p.OperatingIncome, 1), FormatCurrency(p.NOPAT, 1),
			FormatCurrency(p.Depreciation, 1), FormatCurrency(p.Capex, 1), FormatCurrency(p.ChangeInNWC, 1),
			FormatCurrency(p.FCF, 1), p.DiscountFactor, FormatCurrency(p.PresentValue, 1)))
	}
	sb.WriteString("\n")
}

func writeSensitivity(sb *strings.Builder, t *valuation.SensitivityTable) {
	sb.WriteString("## Sensitivity: Value per Share (WACC × Terminal Growth)\n\n")

	sb.WriteString("| WACC \\ g |")
	for _, g := range t.GrowthValues {
		sb.WriteString(" " + FormatPercent(g, 1) + " |")
	}
	sb.WriteString("\n|----------|")
	for range t.GrowthValues {
		sb.WriteString("------|")
	}
	sb.WriteString("\n")

	for i, w := range t.WACCValues {
		sb.WriteString("| " + FormatPercent(w, 1) + " |")
		for _, price := range t.Matrix[i] {
			cell := FormatPrice(price)
			if price == 0 {
				cell = "n/a"
			}
			sb.WriteString(" " + cell + " |")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	if t.FailedCells > 0 {
		sb.WriteString(fmt.Sprintf("%d cell(s) could not be valued (terminal growth at or above WACC) and are shown as n/a.\n\n", t.FailedCells))
	}
}

func writeRationale(sb *strings.Builder, b *assumption.Bundle) {
	rs := b.Reasoning
	if rs != (assumption.Reasoning{}) {
		sb.WriteString("## Assumption Rationale\n\n")
		for _, item := range []struct{ label, text string }{
			{"Revenue growth", rs.RevenueGrowth},
			{"Margins", rs.Margins},
			{"WACC", rs.WACC},
			{"Terminal value", rs.TerminalValue},
		} {
			if item.text != "" {
				sb.WriteString(fmt.Sprintf("- **%s:** %s\n", item.label, item.text))
			}
		}
		sb.WriteString("\n")
	}

	writeList(sb, "Key Risks", b.Risks)
	writeList(sb, "Catalysts", b.Catalysts)
}

func writeList(sb *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(fmt.Sprintf("## %s\n\n", heading))
	for _, item := range items {
		sb.WriteString(fmt.Sprintf("- %s\n", item))
	}
	sb.WriteString("\n")
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
