// Package app wires configuration into the services shared by the binaries.
package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"dcf_valuation/pkg/config"
	"dcf_valuation/pkg/core/agent"
	"dcf_valuation/pkg/core/assumption"
	"dcf_valuation/pkg/core/llm"
	"dcf_valuation/pkg/core/prompt"
	"dcf_valuation/pkg/core/store"
	"dcf_valuation/pkg/core/valuation"
)

// Services are the long-lived components built from a Config.
type Services struct {
	Engine valuation.Engine
	// Source generates assumption bundles. It is model-backed when any provider has a key.
	Source assumption.Source
	// Thesis is nil when no provider is configured.
	Thesis  *assumption.LLMSource
	Agents  *agent.Manager
	Prompts *prompt.Registry
}

// New builds Services. Providers without an API key are not registered.
func New(cfg *config.Config, log zerolog.Logger) (*Services, error) {
	prompts, err := prompt.Default()
	if err != nil {
		return nil, fmt.Errorf("loading prompts: %w", err)
	}

	var providers []llm.Provider
	if cfg.GeminiAPIKey != "" {
		providers = append(providers, llm.NewGeminiProvider(cfg.GeminiAPIKey, ""))
	}
	if cfg.DeepSeekAPIKey != "" {
		providers = append(providers, llm.NewDeepSeekProvider(cfg.DeepSeekAPIKey))
	}
	if cfg.AnthropicAPIKey != "" {
		providers = append(providers, llm.NewClaudeProvider(cfg.AnthropicAPIKey, ""))
	}

	agentCfg := cfg.Agents
	if len(providers) > 0 {
		if _, ok := findProvider(providers, agentCfg.ActiveProvider); !ok {
			log.Warn().Str("provider", agentCfg.ActiveProvider).Str("using", providers[0].Name()).Msg("Active provider has no API key")
			agentCfg.ActiveProvider = providers[0].Name()
		}
	}

	s := &Services{
		Engine:  valuation.NewEngine(valuation.Options{RejectNegativeRevenue: cfg.Valuation.RejectNegativeRevenue}),
		Agents:  agent.NewManager(agentCfg, log, providers...),
		Prompts: prompts,
	}

	if len(providers) == 0 {
		log.Warn().Msg("No LLM API key configured, assumptions derive from history only")
		s.Source = assumption.HistoricalSource{}
		return s, nil
	}

	s.Thesis = assumption.NewLLMSource(s.Agents, prompts, log)
	s.Source = s.Thesis
	log.Info().Str("provider", agentCfg.ActiveProvider).Int("prompts", prompts.Count()).Msg("LLM assumptions enabled")
	return s, nil
}

func findProvider(providers []llm.Provider, name string) (llm.Provider, bool) {
	for _, p := range providers {
		if p.Name() == name {
			return p, true
		}
	}
	return nil, false
}

// OpenRunStore returns the configured run store and a func releasing it.
// The store is nil when neither a database URL nor a directory is configured.
func OpenRunStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*store.RunStore, func(), error) {
	if cfg.DatabaseURL != "" {
		pool, err := store.OpenDB(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		runs, err := store.NewRunStore(pool, "")
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		log.Info().Msg("Saving runs to Postgres")
		return runs, pool.Close, nil
	}

	if cfg.Store.Dir == "" {
		return nil, func() {}, nil
	}
	runs, err := store.NewRunStore(nil, cfg.Store.Dir)
	if err != nil {
		return nil, nil, err
	}
	log.Info().Str("dir", cfg.Store.Dir).Msg("Saving runs to files")
	return runs, func() {}, nil
}
