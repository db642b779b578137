// Package dcf exposes the valuation engine over HTTP.
package dcf

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"dcf_valuation/pkg/core/assumption"
	"dcf_valuation/pkg/core/report"
	"dcf_valuation/pkg/core/store"
	"dcf_valuation/pkg/core/valuation"
	"dcf_valuation/pkg/models"
)

// RangeFunc returns the sensitivity axes for a base-case WACC.
type RangeFunc func(wacc float64) (waccRange, growthRange valuation.Range)

// ThesisWriter drafts an investment memo for a base-case result.
type ThesisWriter interface {
	Thesis(ctx context.Context, company models.Company, res *valuation.DCFResult, bundle assumption.Bundle) string
}

// RunStore persists scenario runs.
type RunStore interface {
	Save(ctx context.Context, rep *report.Report) error
	Get(ctx context.Context, id string) (*store.Run, error)
	List(ctx context.Context, ticker string, limit int) ([]store.Run, error)
}

// Handlers serves the DCF endpoints.
type Handlers struct {
	engine valuation.Engine
	source assumption.Source
	thesis ThesisWriter
	runs   RunStore
	ranges RangeFunc
	newID  func() string
	// riskFree fills requests that carry no risk-free rate.
	riskFree float64
	validate *validator.Validate
	log      zerolog.Logger
}

// Option customizes Handlers.
type Option func(*Handlers)

// WithRanges overrides the default sensitivity axes.
func WithRanges(f RangeFunc) Option {
	return func(h *Handlers) { h.ranges = f }
}

// WithThesisWriter enables model-written theses on the scenarios endpoint.
func WithThesisWriter(w ThesisWriter) Option {
	return func(h *Handlers) { h.thesis = w }
}

// WithRiskFreeRate sets the rate used when a request omits riskFreeRate.
func WithRiskFreeRate(rate float64) Option {
	return func(h *Handlers) { h.riskFree = rate }
}

// WithRunStore persists every scenario run and enables the runs endpoints.
func WithRunStore(s RunStore) Option {
	return func(h *Handlers) { h.runs = s }
}

// WithIDGenerator replaces uuid run IDs.
func WithIDGenerator(f func() string) Option {
	return func(h *Handlers) { h.newID = f }
}

// NewHandlers creates the DCF handlers. source supplies assumptions when a request omits them.
func NewHandlers(engine valuation.Engine, source assumption.Source, log zerolog.Logger, opts ...Option) *Handlers {
	h := &Handlers{
		engine:   engine,
		source:   source,
		ranges:   valuation.DefaultSensitivityRanges,
		newID:    uuid.NewString,
		validate: validator.New(),
		log:      log.With().Str("handler", "dcf").Logger(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts the routes on r.
func (h *Handlers) Register(r chi.Router) {
	r.Post("/dcf/calculate", h.HandleCalculate)
	r.Post("/dcf/scenarios", h.HandleScenarios)
	r.Get("/dcf/runs", h.HandleListRuns)
	r.Get("/dcf/runs/{id}", h.HandleGetRun)
	r.Post("/ai/assumptions", h.HandleAssumptions)
}

// CalculateRequest values a single assumption set.
type CalculateRequest struct {
	Company              models.Company                 `json:"company"`
	Assumptions          *valuation.DCFAssumptions      `json:"assumptions" validate:"required"`
	WACCInputs           *valuation.WACCInputs          `json:"waccInputs" validate:"required"`
	TerminalInputs       *valuation.TerminalValueInputs `json:"terminalInputs" validate:"required"`
	IncludeSensitivity   *bool                          `json:"includeSensitivity,omitempty"`
	IncludeImpliedGrowth *bool                          `json:"includeImpliedGrowth,omitempty"`
	WACCRange            *valuation.Range               `json:"waccRange,omitempty" validate:"omitempty"`
	GrowthRange          *valuation.Range               `json:"growthRange,omitempty" validate:"omitempty"`
}

// CalculateResponse is the body of a successful calculation.
type CalculateResponse struct {
	Success          bool                           `json:"success"`
	RunID            string                         `json:"runId"`
	Result           *valuation.DCFResult           `json:"result"`
	SensitivityTable *valuation.SensitivityTable    `json:"sensitivityTable"`
	ImpliedGrowth    *valuation.ImpliedGrowthResult `json:"impliedGrowth"`
}

// HandleCalculate runs one DCF with optional sensitivity grid and reverse DCF at the current price.
// POST /api/dcf/calculate
func (h *Handlers) HandleCalculate(w http.ResponseWriter, r *http.Request) {
	var req CalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Missing required fields: "+err.Error())
		return
	}

	runID := h.newID()
	log := h.log.With().Str("run_id", runID).Str("ticker", req.Company.Ticker).Logger()

	result, err := h.engine.RunDCF(req.Company, *req.Assumptions, *req.WACCInputs, *req.TerminalInputs)
	if err != nil {
		h.writeEngineError(w, log, err)
		return
	}

	resp := CalculateResponse{Success: true, RunID: runID, Result: result}

	if req.IncludeSensitivity == nil || *req.IncludeSensitivity {
		waccRange, growthRange := h.ranges(result.WACC)
		if req.WACCRange != nil {
			waccRange = *req.WACCRange
		}
		if req.GrowthRange != nil {
			growthRange = *req.GrowthRange
		}
		table, err := h.engine.Sensitivity(req.Company, *req.Assumptions, *req.WACCInputs, *req.TerminalInputs, waccRange, growthRange)
		if err != nil {
			h.writeEngineError(w, log, err)
			return
		}
		resp.SensitivityTable = table
	}

	if req.IncludeImpliedGrowth == nil || *req.IncludeImpliedGrowth {
		implied, err := h.engine.ImpliedGrowth(req.Company.CurrentPrice, req.Company, *req.Assumptions, result.WACC, *req.TerminalInputs)
		switch {
		case err == nil:
			resp.ImpliedGrowth = &implied
		case errors.Is(err, valuation.ErrNoConvergence):
			log.Warn().Err(err).Msg("Implied growth did not converge")
			resp.ImpliedGrowth = &implied
		default:
			h.writeEngineError(w, log, err)
			return
		}
	}

	log.Info().Float64("value_per_share", result.IntrinsicValuePerShare).Msg("DCF calculated")
	h.writeJSON(w, http.StatusOK, resp)
}

// ScenariosRequest values bull, base and bear. Omitted parts are generated.
type ScenariosRequest struct {
	assumption.ValuationRequest
	IncludeThesis bool `json:"includeThesis,omitempty"`
	// IncludeSensitivity adds the grid and reverse DCF for the base scenario.
	IncludeSensitivity bool `json:"includeSensitivity,omitempty"`
}

// ScenariosResponse is the body of a successful scenario run.
type ScenariosResponse struct {
	Success   bool                       `json:"success"`
	RunID     string                     `json:"runId"`
	Bundle    assumption.Bundle          `json:"bundle"`
	Scenarios []valuation.ScenarioResult `json:"scenarios"`
	Thesis    string                     `json:"thesis,omitempty"`

	SensitivityTable *valuation.SensitivityTable    `json:"sensitivityTable,omitempty"`
	ImpliedGrowth    *valuation.ImpliedGrowthResult `json:"impliedGrowth,omitempty"`
}

// HandleScenarios runs all three scenarios concurrently. ?format=markdown, html or pdf
// returns a rendered report instead of JSON.
// POST /api/dcf/scenarios
func (h *Handlers) HandleScenarios(w http.ResponseWriter, r *http.Request) {
	var req ScenariosRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	runID := h.newID()
	log := h.log.With().Str("run_id", runID).Str("ticker", req.Company.Ticker).Logger()

	if req.RiskFreeRate == 0 {
		req.RiskFreeRate = h.riskFree
	}
	bundle, err := req.Resolve(r.Context(), h.source)
	if err != nil {
		h.writeEngineError(w, log, err)
		return
	}

	results := h.engine.RunScenarios(r.Context(), req.Company, bundle.Assumptions, bundle.WACCInputs, bundle.TerminalInputs)
	resp := ScenariosResponse{Success: true, RunID: runID, Bundle: bundle, Scenarios: results}

	if base := baseResult(results); base != nil {
		if req.IncludeSensitivity {
			waccRange, growthRange := h.ranges(base.WACC)
			table, err := h.engine.Sensitivity(req.Company, bundle.Assumptions.Base, bundle.WACCInputs, bundle.TerminalInputs, waccRange, growthRange)
			if err != nil {
				h.writeEngineError(w, log, err)
				return
			}
			resp.SensitivityTable = table

			implied, err := h.engine.ImpliedGrowth(req.Company.CurrentPrice, req.Company, bundle.Assumptions.Base, base.WACC, bundle.TerminalInputs)
			if err != nil && !errors.Is(err, valuation.ErrNoConvergence) {
				h.writeEngineError(w, log, err)
				return
			}
			resp.ImpliedGrowth = &implied
		}

		if req.IncludeThesis {
			if h.thesis != nil {
				resp.Thesis = h.thesis.Thesis(r.Context(), req.Company, base, bundle)
			} else {
				resp.Thesis = assumption.FallbackThesis(req.Company, base, bundle)
			}
		}
	}

	for _, res := range results {
		if res.Err != nil {
			log.Warn().Err(res.Err).Str("scenario", string(res.Scenario)).Msg("Scenario failed")
		}
	}

	rep := h.report(req.Company, runID, resp)
	if h.runs != nil {
		if err := h.runs.Save(r.Context(), rep); err != nil {
			log.Warn().Err(err).Msg("Failed to save run")
		}
	}

	switch r.URL.Query().Get("format") {
	case "markdown":
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		_, _ = w.Write([]byte(report.RenderMarkdown(rep)))
	case "html":
		page, err := report.RenderHTML(rep)
		if err != nil {
			log.Error().Err(err).Msg("Failed to render report")
			h.writeError(w, http.StatusInternalServerError, "Failed to render report")
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(page))
	case "pdf":
		var buf bytes.Buffer
		if err := report.RenderPDF(rep, &buf); err != nil {
			log.Error().Err(err).Msg("Failed to render report")
			h.writeError(w, http.StatusInternalServerError, "Failed to render report")
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="`+runID+`.pdf"`)
		_, _ = w.Write(buf.Bytes())
	default:
		h.writeJSON(w, http.StatusOK, resp)
	}
}

func (h *Handlers) report(company models.Company, runID string, resp ScenariosResponse) *report.Report {
	bundle := resp.Bundle
	return &report.Report{
		RunID:         runID,
		GeneratedAt:   h.engine.Now(),
		Company:       company,
		Bundle:        &bundle,
		Scenarios:     resp.Scenarios,
		Sensitivity:   resp.SensitivityTable,
		ImpliedGrowth: resp.ImpliedGrowth,
		Thesis:        resp.Thesis,
	}
}

func baseResult(results []valuation.ScenarioResult) *valuation.DCFResult {
	for _, res := range results {
		if res.Scenario == valuation.ScenarioBase {
			return res.Result
		}
	}
	return nil
}

// HandleGetRun returns a saved run with its full report.
// GET /api/dcf/runs/{id}
func (h *Handlers) HandleGetRun(w http.ResponseWriter, r *http.Request) {
	if h.runs == nil {
		h.writeError(w, http.StatusNotFound, "Run storage is disabled")
		return
	}

	run, err := h.runs.Get(r.Context(), chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, store.ErrRunNotFound):
		h.writeError(w, http.StatusNotFound, err.Error())
	case err != nil:
		h.log.Error().Err(err).Msg("Failed to load run")
		h.writeError(w, http.StatusInternalServerError, "Failed to load run")
	default:
		h.writeJSON(w, http.StatusOK, run)
	}
}

// HandleListRuns lists recent runs for ?ticker=, newest first. ?limit= caps the result.
// GET /api/dcf/runs
func (h *Handlers) HandleListRuns(w http.ResponseWriter, r *http.Request) {
	if h.runs == nil {
		h.writeError(w, http.StatusNotFound, "Run storage is disabled")
		return
	}

	ticker := r.URL.Query().Get("ticker")
	if ticker == "" {
		h.writeError(w, http.StatusBadRequest, "ticker is required")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	runs, err := h.runs.List(r.Context(), ticker, limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list runs")
		h.writeError(w, http.StatusInternalServerError, "Failed to list runs")
		return
	}
	if runs == nil {
		runs = []store.Run{}
	}
	h.writeJSON(w, http.StatusOK, runs)
}

// AssumptionsResponse flattens the bundle next to the success flag.
type AssumptionsResponse struct {
	Success bool `json:"success"`
	assumption.Bundle
}

// HandleAssumptions drafts scenario assumptions with the configured source.
// POST /api/ai/assumptions
func (h *Handlers) HandleAssumptions(w http.ResponseWriter, r *http.Request) {
	var req assumption.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := h.validate.Var(req.Company.Ticker, "required"); err != nil {
		h.writeError(w, http.StatusBadRequest, "Missing required fields: ticker")
		return
	}
	if err := h.validate.Var(req.Company.HistoricalFinancials, "min=1"); err != nil {
		h.writeError(w, http.StatusBadRequest, "Missing required fields: historicalFinancials")
		return
	}

	if req.RiskFreeRate == 0 {
		req.RiskFreeRate = h.riskFree
	}
	log := h.log.With().Str("ticker", req.Company.Ticker).Logger()
	bundle, err := h.source.Generate(r.Context(), req)
	if err != nil {
		h.writeEngineError(w, log, err)
		return
	}

	h.writeJSON(w, http.StatusOK, AssumptionsResponse{Success: true, Bundle: bundle})
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// writeEngineError maps malformed input to 400, other input errors to 422 and everything else to 500.
func (h *Handlers) writeEngineError(w http.ResponseWriter, log zerolog.Logger, err error) {
	switch {
	case errors.Is(err, valuation.ErrMalformedInput):
		h.writeError(w, http.StatusBadRequest, err.Error())
	case valuation.IsInputError(err):
		h.writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		log.Error().Err(err).Msg("DCF request failed")
		h.writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, errorResponse{Success: false, Error: msg})
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}
