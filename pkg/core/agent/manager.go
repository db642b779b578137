// Package agent routes agent roles to configured LLM providers.
package agent

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"dcf_valuation/pkg/core/llm"
)

// Agent roles.
const (
	RoleAssumptionGeneration = "assumption_generation"
	RoleThesis               = "thesis"
)

// ErrProviderNotFound is returned when neither the role override nor the active provider is registered.
var ErrProviderNotFound = errors.New("provider not found")

// Config is the agents section of the YAML configuration.
type Config struct {
	ActiveProvider string                 `yaml:"active_provider"`
	Agents         map[string]AgentConfig `yaml:"agents"`
	// RequestsPerMinute caps model calls across all roles. Zero disables the limit.
	RequestsPerMinute int `yaml:"requests_per_minute"`
}

// AgentConfig overrides provider settings for a single role.
type AgentConfig struct {
	Provider    string  `yaml:"provider"`
	Model       string  `yaml:"model"`
	Temperature float32 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
	Description string  `yaml:"description"`
}

// Manager resolves roles to providers. It is safe for concurrent use.
type Manager struct {
	mu        sync.RWMutex
	config    Config
	providers map[string]llm.Provider
	limiter   *rate.Limiter
	log       zerolog.Logger
}

// NewManager registers providers under their Name().
func NewManager(config Config, log zerolog.Logger, providers ...llm.Provider) *Manager {
	m := &Manager{
		config:    config,
		providers: make(map[string]llm.Provider, len(providers)),
		log:       log.With().Str("component", "agent").Logger(),
	}
	for _, p := range providers {
		m.providers[p.Name()] = p
	}
	if config.RequestsPerMinute > 0 {
		m.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(config.RequestsPerMinute)), config.RequestsPerMinute)
	}
	return m
}

// GetProvider returns the provider for role: the role override first, then the active provider.
func (m *Manager) GetProvider(role string) (llm.Provider, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if ac, ok := m.config.Agents[role]; ok && ac.Provider != "" {
		if p, ok := m.providers[ac.Provider]; ok {
			return p, nil
		}
		m.log.Warn().Str("role", role).Str("provider", ac.Provider).Msg("Role override not registered, using active provider")
	}

	if p, ok := m.providers[m.config.ActiveProvider]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("%w: role %q, active %q, registered %v", ErrProviderNotFound, role, m.config.ActiveProvider, m.names())
}

// GetProviderByName returns the provider registered as name.
func (m *Manager) GetProviderByName(name string) (llm.Provider, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.providers[name]
	return p, ok
}

// ExecutePrompt sends prompt to the role's provider. Role settings fill any zero fields of opts.
func (m *Manager) ExecutePrompt(ctx context.Context, role, prompt, systemPrompt string, opts llm.Options) (string, error) {
	provider, err := m.GetProvider(role)
	if err != nil {
		return "", err
	}

	m.mu.RLock()
	ac := m.config.Agents[role]
	m.mu.RUnlock()

	if opts.Model == "" {
		opts.Model = ac.Model
	}
	if opts.Temperature == 0 {
		opts.Temperature = ac.Temperature
	}
	if opts.MaxTokens == 0 {
		opts.MaxTokens = ac.MaxTokens
	}

	if m.limiter != nil {
		if err := m.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("waiting for rate limit: %w", err)
		}
	}

	m.log.Debug().Str("role", role).Str("provider", provider.Name()).Str("model", opts.Model).Msg("Executing prompt")
	return provider.GenerateResponse(ctx, prompt, systemPrompt, opts)
}

// SetGlobalProvider switches the active provider.
func (m *Manager) SetGlobalProvider(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.providers[name]; !ok {
		return fmt.Errorf("%w: %s", ErrProviderNotFound, name)
	}
	m.config.ActiveProvider = name
	m.log.Info().Str("provider", name).Msg("Global provider set")
	return nil
}

// ActiveProvider returns the name of the global provider.
func (m *Manager) ActiveProvider() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config.ActiveProvider
}

// Providers returns the registered provider names in sorted order.
func (m *Manager) Providers() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.names()
}

func (m *Manager) names() []string {
	names := make([]string, 0, len(m.providers))
	for k := range m.providers {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
