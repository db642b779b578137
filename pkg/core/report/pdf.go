package report

import (
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"

	"dcf_valuation/pkg/core/valuation"
)

const (
	pdfLineHeight = 6.0
	pdfFontSize   = 9.0
)

// RenderPDF writes r as an A4 PDF: scenario summary, base-case bridge, sensitivity grid,
// reverse DCF, risks and thesis.
func RenderPDF(r *Report, w io.Writer) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.SetTitle("DCF Valuation: "+r.Company.Ticker, true)
	pdf.SetCreationDate(r.GeneratedAt)
	pdf.AddPage()

	p := pdfWriter{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}

	title := r.Company.Ticker
	if r.Company.Name != "" {
		title = fmt.Sprintf("%s (%s)", r.Company.Name, r.Company.Ticker)
	}
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, p.tr("DCF Valuation: "+title), "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", pdfFontSize)
	meta := "Generated " + r.GeneratedAt.UTC().Format(time.RFC3339)
	if r.RunID != "" {
		meta += "  |  Run " + r.RunID
	}
	if r.Bundle != nil {
		meta += "  |  Assumptions: " + string(r.Bundle.Origin)
	}
	pdf.CellFormat(0, pdfLineHeight, p.tr(meta), "", 1, "L", false, 0, "")
	pdf.Ln(3)

	p.heading("Scenario Summary")
	rows := [][]string{{"Scenario", "Enterprise Value", "Equity Value", "Value / Share", "Upside", "WACC"}}
	for _, s := range r.Scenarios {
		if s.Result == nil {
			rows = append(rows, []string{string(s.Scenario), "failed", "", "", "", ""})
			continue
		}
		res := s.Result
		rows = append(rows, []string{
			string(s.Scenario), FormatCurrency(res.EnterpriseValue, 2), FormatCurrency(res.EquityValue, 2),
			FormatPrice(res.IntrinsicValuePerShare), FormatPercent(res.ImpliedUpside, 1), FormatPercent(res.WACC, 2),
		})
	}
	p.table(rows, 30)

	if base := baseResult(r.Scenarios); base != nil {
		p.heading("Base Case Valuation Bridge")
		p.table([][]string{
			{"Item", "Value"},
			{"Sum of PV (FCF)", FormatCurrency(base.SumOfPVs, 2)},
			{"PV of Terminal Value", FormatCurrency(base.TerminalValuePV, 2)},
			{"Enterprise Value", FormatCurrency(base.EnterpriseValue, 2)},
			{"Less: Net Debt", FormatCurrency(base.NetDebt, 2)},
			{"Equity Value", FormatCurrency(base.EquityValue, 2)},
			{"Intrinsic Value / Share", FormatPrice(base.IntrinsicValuePerShare)},
		}, 60)
	}

	if r.Sensitivity != nil {
		p.heading("Sensitivity: Value per Share (WACC x Terminal Growth)")
		p.table(sensitivityRows(r.Sensitivity), 22)
	}

	if g := r.ImpliedGrowth; g != nil {
		p.heading("Reverse DCF")
		status := "converged"
		if !g.Converged {
			status = "did not converge"
		}
		p.paragraph(fmt.Sprintf("The current price implies uniform revenue growth of %s per year (%s after %d iterations).",
			FormatPercent(g.Growth, 2), status, g.Iterations))
	}

	if r.Bundle != nil {
		p.list("Key Risks", r.Bundle.Risks)
		p.list("Catalysts", r.Bundle.Catalysts)
	}

	if r.Thesis != "" {
		p.heading("Investment Thesis")
		p.paragraph(r.Thesis)
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return pdf.Output(w)
}

func sensitivityRows(t *valuation.SensitivityTable) [][]string {
	header := []string{"WACC \\ g"}
	for _, g := range t.GrowthValues {
		header = append(header, FormatPercent(g, 1))
	}
	rows := [][]string{header}
	for i, wacc := range t.WACCValues {
		row := []string{FormatPercent(wacc, 1)}
		for _, price := range t.Matrix[i] {
			if price == 0 {
				row = append(row, "n/a")
				continue
			}
			row = append(row, FormatPrice(price))
		}
		rows = append(rows, row)
	}
	return rows
}

type pdfWriter struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func (p pdfWriter) heading(text string) {
	p.pdf.Ln(2)
	p.pdf.SetFont("Arial", "B", 12)
	p.pdf.CellFormat(0, 8, p.tr(text), "", 1, "L", false, 0, "")
	p.pdf.SetFont("Arial", "", pdfFontSize)
}

func (p pdfWriter) paragraph(text string) {
	p.pdf.MultiCell(0, 5, p.tr(text), "", "L", false)
	p.pdf.Ln(2)
}

func (p pdfWriter) list(heading string, items []string) {
	if len(items) == 0 {
		return
	}
	p.heading(heading)
	for _, item := range items {
		p.pdf.MultiCell(0, 5, p.tr("- "+item), "", "L", false)
	}
}

// table draws rows with the first row as a shaded header. The first column is left-aligned.
func (p pdfWriter) table(rows [][]string, colWidth float64) {
	for i, row := range rows {
		if i == 0 {
			p.pdf.SetFont("Arial", "B", pdfFontSize)
			p.pdf.SetFillColor(230, 230, 230)
		}
		for j, cell := range row {
			align := "R"
			if j == 0 {
				align = "L"
			}
			p.pdf.CellFormat(colWidth, pdfLineHeight, p.tr(cell), "1", 0, align, i == 0, 0, "")
		}
		p.pdf.Ln(-1)
		if i == 0 {
			p.pdf.SetFont("Arial", "", pdfFontSize)
			p.pdf.SetFillColor(255, 255, 255)
		}
	}
	p.pdf.Ln(2)
}
