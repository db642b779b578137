package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"dcf_valuation/pkg/api/config"
	"dcf_valuation/pkg/api/dcf"
	"dcf_valuation/pkg/app"
	appconfig "dcf_valuation/pkg/config"
	"dcf_valuation/pkg/logger"
	"dcf_valuation/pkg/server"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config (defaults to $DCF_CONFIG)")
	flag.Parse()

	cfg, err := appconfig.Load(*configPath)
	if err != nil {
		bootLog := logger.New(logger.Config{Level: "info"})
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Pretty: cfg.Logging.Pretty,
	})
	log.Info().Msg("Starting DCF valuation API")

	srv, closeRuns, err := newServer(context.Background(), cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize server")
	}
	defer closeRuns()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server stopped")
}

// newServer builds the HTTP server from cfg. The returned func releases the run store.
func newServer(ctx context.Context, cfg *appconfig.Config, log zerolog.Logger) (*server.Server, func(), error) {
	svc, err := app.New(cfg, log)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing services: %w", err)
	}

	runs, closeRuns, err := app.OpenRunStore(ctx, cfg, log)
	if err != nil {
		return nil, nil, fmt.Errorf("opening run store: %w", err)
	}

	opts := []dcf.Option{
		dcf.WithRanges(cfg.Sensitivity.Ranges),
		dcf.WithRiskFreeRate(cfg.Valuation.DefaultRiskFreeRate),
	}
	if svc.Thesis != nil {
		opts = append(opts, dcf.WithThesisWriter(svc.Thesis))
	}
	if runs != nil {
		opts = append(opts, dcf.WithRunStore(runs))
	}

	srv := server.New(server.Config{
		Addr:           cfg.Server.Addr,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Timeout:        time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		Log:            log,
		Routes: []server.Routes{
			dcf.NewHandlers(svc.Engine, svc.Source, log, opts...),
			config.NewHandler(svc.Agents, log),
		},
	})
	return srv, closeRuns, nil
}
