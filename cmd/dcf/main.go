// Command dcf values a company from a request file and prints a report.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"dcf_valuation/pkg/app"
	"dcf_valuation/pkg/config"
	"dcf_valuation/pkg/core/assumption"
	"dcf_valuation/pkg/core/report"
	"dcf_valuation/pkg/core/store"
	"dcf_valuation/pkg/core/valuation"
	"dcf_valuation/pkg/logger"
)

type options struct {
	requestPath string
	format      string
	thesis      bool
	sensitivity bool
	save        bool
}

func main() {
	var opts options
	configPath := flag.String("config", "", "Path to YAML config (defaults to $DCF_CONFIG)")
	outPath := flag.String("out", "", "Write the report to this file instead of stdout")
	flag.StringVar(&opts.requestPath, "request", "", requestHelp())
	flag.StringVar(&opts.format, "format", "markdown", "Output format: markdown, html, pdf or json")
	flag.BoolVar(&opts.thesis, "thesis", false, "Include an investment thesis")
	flag.BoolVar(&opts.sensitivity, "sensitivity", true, "Include the WACC x growth grid and reverse DCF")
	flag.BoolVar(&opts.save, "save", false, "Persist the run to the configured store")
	flag.Parse()

	if opts.requestPath == "" {
		fmt.Fprintln(os.Stderr, "usage: dcf -request company.yaml [-format markdown|html|pdf|json] [-out report.md]")
		fmt.Fprintln(os.Stderr, "  -request: "+requestHelp())
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Level: cfg.Logging.Level, Pretty: true})

	svc, err := app.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize services")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var out io.Writer = os.Stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create output file")
		}
		defer f.Close()
		out = f
	}

	var runs *store.RunStore
	if opts.save {
		var closeRuns func()
		runs, closeRuns, err = app.OpenRunStore(ctx, cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to open run store")
		}
		defer closeRuns()
	}

	if err := run(ctx, cfg, svc, runs, opts, out, log); err != nil {
		log.Error().Err(err).Msg("Valuation failed")
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, svc *app.Services, runs *store.RunStore, opts options, out io.Writer, log zerolog.Logger) error {
	req, err := assumption.LoadRequest(opts.requestPath)
	if err != nil {
		return err
	}
	if req.RiskFreeRate == 0 {
		req.RiskFreeRate = cfg.Valuation.DefaultRiskFreeRate
	}

	runID := uuid.NewString()
	log = log.With().Str("run_id", runID).Str("ticker", req.Company.Ticker).Logger()

	bundle, err := req.Resolve(ctx, svc.Source)
	if err != nil {
		return fmt.Errorf("resolving assumptions: %w", err)
	}
	log.Info().Str("origin", string(bundle.Origin)).Msg("Assumptions ready")

	rep := &report.Report{
		RunID:       runID,
		GeneratedAt: svc.Engine.Now(),
		Company:     req.Company,
		Bundle:      &bundle,
		Scenarios:   svc.Engine.RunScenarios(ctx, req.Company, bundle.Assumptions, bundle.WACCInputs, bundle.TerminalInputs),
	}

	var base *valuation.DCFResult
	for _, res := range rep.Scenarios {
		if res.Err != nil {
			log.Warn().Err(res.Err).Str("scenario", string(res.Scenario)).Msg("Scenario failed")
		}
		if res.Scenario == valuation.ScenarioBase {
			base = res.Result
		}
	}
	if base == nil {
		return errors.New("base scenario failed")
	}

	if opts.sensitivity {
		waccRange, growthRange := cfg.Sensitivity.Ranges(base.WACC)
		table, err := svc.Engine.Sensitivity(req.Company, bundle.Assumptions.Base, bundle.WACCInputs, bundle.TerminalInputs, waccRange, growthRange)
		if err != nil {
			return fmt.Errorf("sensitivity: %w", err)
		}
		rep.Sensitivity = table

		implied, err := svc.Engine.ImpliedGrowth(req.Company.CurrentPrice, req.Company, bundle.Assumptions.Base, base.WACC, bundle.TerminalInputs)
		if err != nil && !errors.Is(err, valuation.ErrNoConvergence) {
			return fmt.Errorf("implied growth: %w", err)
		}
		rep.ImpliedGrowth = &implied
	}

	if opts.thesis {
		if svc.Thesis != nil {
			rep.Thesis = svc.Thesis.Thesis(ctx, req.Company, base, bundle)
		} else {
			rep.Thesis = assumption.FallbackThesis(req.Company, base, bundle)
		}
	}

	if runs != nil {
		if err := runs.Save(ctx, rep); err != nil {
			return fmt.Errorf("saving run: %w", err)
		}
		log.Info().Msg("Run saved")
	}

	return write(out, opts.format, rep)
}

func requestHelp() string {
	return "Valuation request file (" + strings.Join(assumption.RequestExtensions, ", ") + ")"
}

func write(out io.Writer, format string, rep *report.Report) error {
	switch format {
	case "markdown", "md":
		_, err := io.WriteString(out, report.RenderMarkdown(rep))
		return err
	case "html":
		page, err := report.RenderHTML(rep)
		if err != nil {
			return err
		}
		_, err = io.WriteString(out, page)
		return err
	case "pdf":
		return report.RenderPDF(rep, out)
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}
	return fmt.Errorf("unknown format %q", format)
}
