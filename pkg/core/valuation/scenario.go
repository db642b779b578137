package valuation

import (
	"context"

	"golang.org/x/sync/errgroup"

	"dcf_valuation/pkg/models"
)

// Scenario names one of the three parallel assumption sets.
type Scenario string

const (
	ScenarioBull Scenario = "bull"
	ScenarioBase Scenario = "base"
	ScenarioBear Scenario = "bear"
)

// Scenarios lists every scenario in presentation order.
var Scenarios = []Scenario{ScenarioBull, ScenarioBase, ScenarioBear}

// ScenarioSet holds one DCFAssumptions per scenario.
type ScenarioSet struct {
	Bull DCFAssumptions `json:"bull" yaml:"bull"`
	Base DCFAssumptions `json:"base" yaml:"base"`
	Bear DCFAssumptions `json:"bear" yaml:"bear"`
}

// Get returns the assumptions for name. ok is false for an unknown scenario.
func (s ScenarioSet) Get(name Scenario) (DCFAssumptions, bool) {
	switch name {
	case ScenarioBull:
		return s.Bull, true
	case ScenarioBase:
		return s.Base, true
	case ScenarioBear:
		return s.Bear, true
	}
	return DCFAssumptions{}, false
}

// ScenarioResult is the outcome of one scenario. Exactly one of Result and Err is set.
type ScenarioResult struct {
	Scenario Scenario   `json:"scenario"`
	Result   *DCFResult `json:"result,omitempty"`
	Err      error      `json:"-"`
	Error    string     `json:"error,omitempty"`
}

// RunScenarios values bull, base and bear concurrently with the default engine.
func RunScenarios(ctx context.Context, company models.Company, set ScenarioSet, waccInputs WACCInputs, terminalInputs TerminalValueInputs) []ScenarioResult {
	return Engine{}.RunScenarios(ctx, company, set, waccInputs, terminalInputs)
}

// RunScenarios values every scenario concurrently. A failure is fatal to its own scenario only;
// results are returned in Scenarios order. Scenarios not yet started when ctx is done report ctx.Err().
func (e Engine) RunScenarios(ctx context.Context, company models.Company, set ScenarioSet, waccInputs WACCInputs, terminalInputs TerminalValueInputs) []ScenarioResult {
	results := make([]ScenarioResult, len(Scenarios))

	var g errgroup.Group
	for i, name := range Scenarios {
		g.Go(func() error {
			results[i] = ScenarioResult{Scenario: name}
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				results[i].Error = err.Error()
				return nil
			}

			assumptions, _ := set.Get(name)
			res, err := e.RunDCF(company, assumptions, waccInputs, terminalInputs)
			if err != nil {
				results[i].Err = err
				results[i].Error = err.Error()
				return nil
			}
			results[i].Result = res
			return nil
		})
	}
	_ = g.Wait()

	return results
}
