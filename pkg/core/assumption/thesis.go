package assumption

import (
	"context"
	"fmt"
	"math"
	"strings"

	"dcf_valuation/pkg/core/agent"
	"dcf_valuation/pkg/core/llm"
	"dcf_valuation/pkg/core/prompt"
	"dcf_valuation/pkg/core/utils"
	"dcf_valuation/pkg/core/valuation"
	"dcf_valuation/pkg/models"
)

// Thesis asks the model for a short investment memo on a finished base-case valuation.
// On failure it logs and returns FallbackThesis.
func (s *LLMSource) Thesis(ctx context.Context, company models.Company, res *valuation.DCFResult, bundle Bundle) string {
	growth := make([]string, len(bundle.Assumptions.Base.RevenueGrowthRates))
	for i, g := range bundle.Assumptions.Base.RevenueGrowthRates {
		growth[i] = fmt.Sprintf("%.0f%%", g*100)
	}

	rendered, err := s.prompts.Render(prompt.IDThesis, map[string]interface{}{
		"Ticker":          company.Ticker,
		"CompanyName":     company.Name,
		"CurrentPrice":    res.CurrentPrice,
		"IntrinsicValue":  res.IntrinsicValuePerShare,
		"ImpliedUpside":   res.ImpliedUpside,
		"GrowthRates":     growth,
		"OperatingMargin": bundle.Assumptions.Base.OperatingMargin,
		"Risks":           bundle.Risks,
		"Catalysts":       bundle.Catalysts,
	})
	if err == nil {
		var text string
		text, err = s.prompter.ExecutePrompt(ctx, agent.RoleThesis, rendered.User, rendered.System, llm.Options{
			Temperature: rendered.Temperature,
			MaxTokens:   rendered.MaxTokens,
		})
		if err == nil {
			if cleaned := utils.CleanMarkdown(text); cleaned != "" {
				return cleaned
			}
			err = fmt.Errorf("empty thesis")
		}
	}

	s.log.Warn().Err(err).Str("ticker", company.Ticker).Msg("Thesis generation failed, using fallback")
	return FallbackThesis(company, res, bundle)
}

// FallbackThesis is a one-paragraph summary built without a model.
func FallbackThesis(company models.Company, res *valuation.DCFResult, bundle Bundle) string {
	verdict := "overvalued"
	if res.ImpliedUpside > 0 {
		verdict = "undervalued"
	}
	name := company.Name
	if name == "" {
		name = company.Ticker
	}
	return fmt.Sprintf("Based on our DCF analysis, %s appears to be %s by approximately %.0f%%. Key risks include %s. Potential catalysts include %s.",
		name, verdict, math.Abs(res.ImpliedUpside*100), firstTwo(bundle.Risks), firstTwo(bundle.Catalysts))
}

func firstTwo(xs []string) string {
	if len(xs) > 2 {
		xs = xs[:2]
	}
	if len(xs) == 0 {
		return "none identified"
	}
	return strings.Join(xs, " and ")
}
