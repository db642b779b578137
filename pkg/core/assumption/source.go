package assumption

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"dcf_valuation/pkg/core/agent"
	"dcf_valuation/pkg/core/calc"
	"dcf_valuation/pkg/core/llm"
	"dcf_valuation/pkg/core/prompt"
	"dcf_valuation/pkg/core/utils"
	"dcf_valuation/pkg/core/valuation"
	"dcf_valuation/pkg/models"
)

// Request is the market context an assumption source works from.
type Request struct {
	Company      models.Company `json:"company"`
	RiskFreeRate float64        `json:"riskFreeRate"`
}

// Source produces an assumption bundle for a company.
type Source interface {
	Generate(ctx context.Context, req Request) (Bundle, error)
}

// Prompter executes a prompt for an agent role. *agent.Manager satisfies it.
type Prompter interface {
	ExecutePrompt(ctx context.Context, role, prompt, systemPrompt string, opts llm.Options) (string, error)
}

func metricsFor(req Request) (calc.HistoricalMetrics, error) {
	m, err := calc.ComputeHistoricalMetrics(req.Company.HistoricalFinancials)
	if err != nil {
		return calc.HistoricalMetrics{}, fmt.Errorf("%w: %w", valuation.ErrMalformedInput, err)
	}
	return m, nil
}

// HistoricalSource derives conservative defaults from reported history alone.
type HistoricalSource struct{}

// Generate returns DefaultBundle for the company's history.
func (HistoricalSource) Generate(_ context.Context, req Request) (Bundle, error) {
	m, err := metricsFor(req)
	if err != nil {
		return Bundle{}, err
	}
	return DefaultBundle(m, req.Company, req.RiskFreeRate), nil
}

// LLMSource asks a language model for assumptions. Any failure after the history check
// (provider error, unparseable reply, invalid bundle) falls back to DefaultBundle.
type LLMSource struct {
	prompter Prompter
	prompts  *prompt.Registry
	log      zerolog.Logger
}

// NewLLMSource returns a source that prompts through p with templates from prompts.
func NewLLMSource(p Prompter, prompts *prompt.Registry, log zerolog.Logger) *LLMSource {
	return &LLMSource{
		prompter: p,
		prompts:  prompts,
		log:      log.With().Str("component", "assumption").Logger(),
	}
}

// aiReply is the shape the model is asked to return. WACC market data is filled in locally.
type aiReply struct {
	Assumptions valuation.ScenarioSet `json:"assumptions"`
	WACCInputs  struct {
		EquityRiskPremium float64 `json:"equityRiskPremium"`
		CostOfDebt        float64 `json:"costOfDebt"`
	} `json:"waccInputs"`
	TerminalInputs valuation.TerminalValueInputs `json:"terminalInputs"`
	Reasoning      Reasoning                     `json:"reasoning"`
	Risks          []string                      `json:"risks"`
	Catalysts      []string                      `json:"catalysts"`
}

type assumptionPromptData struct {
	Ticker       string
	CompanyName  string
	Sector       string
	Industry     string
	CurrentPrice float64
	MarketCap    float64
	Beta         float64
	RiskFreeRate float64
	Metrics      calc.HistoricalMetrics
}

// Generate implements Source.
func (s *LLMSource) Generate(ctx context.Context, req Request) (Bundle, error) {
	m, err := metricsFor(req)
	if err != nil {
		return Bundle{}, err
	}

	bundle, err := s.generate(ctx, req, m)
	if err != nil {
		if ctx.Err() != nil {
			return Bundle{}, ctx.Err()
		}
		s.log.Warn().Err(err).Str("ticker", req.Company.Ticker).Msg("AI assumption generation failed, using historical defaults")
		return DefaultBundle(m, req.Company, req.RiskFreeRate), nil
	}

	s.log.Info().Str("ticker", req.Company.Ticker).Msg("AI assumptions generated")
	return bundle, nil
}

func (s *LLMSource) generate(ctx context.Context, req Request, m calc.HistoricalMetrics) (Bundle, error) {
	c := req.Company
	rendered, err := s.prompts.Render(prompt.IDAssumptions, assumptionPromptData{
		Ticker:       c.Ticker,
		CompanyName:  c.Name,
		Sector:       c.Sector,
		Industry:     c.Industry,
		CurrentPrice: c.CurrentPrice,
		MarketCap:    c.MarketCap,
		Beta:         c.Beta,
		RiskFreeRate: req.RiskFreeRate,
		Metrics:      m,
	})
	if err != nil {
		return Bundle{}, err
	}

	raw, err := s.prompter.ExecutePrompt(ctx, agent.RoleAssumptionGeneration, rendered.User, rendered.System, llm.Options{
		Temperature: rendered.Temperature,
		MaxTokens:   rendered.MaxTokens,
		JSON:        true,
	})
	if err != nil {
		return Bundle{}, fmt.Errorf("prompt: %w", err)
	}

	var reply aiReply
	if _, err := utils.SmartParse(raw, &reply); err != nil {
		return Bundle{}, err
	}

	base := reply.Assumptions.Base
	bundle := Bundle{
		Assumptions:    reply.Assumptions,
		WACCInputs:     marketWACCInputs(c, m, req.RiskFreeRate, reply.WACCInputs.EquityRiskPremium, reply.WACCInputs.CostOfDebt, base.TaxRate),
		TerminalInputs: reply.TerminalInputs,
		Reasoning:      reply.Reasoning,
		Risks:          reply.Risks,
		Catalysts:      reply.Catalysts,
		Origin:         OriginAI,
	}
	if err := bundle.Validate(); err != nil {
		return Bundle{}, fmt.Errorf("model reply: %w", err)
	}
	return bundle, nil
}
