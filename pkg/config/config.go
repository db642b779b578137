// Package config loads process configuration from the environment and an optional YAML file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"dcf_valuation/pkg/core/agent"
	"dcf_valuation/pkg/core/valuation"
)

// Config holds application configuration.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Logging     LoggingConfig     `yaml:"logging"`
	Sensitivity SensitivityConfig `yaml:"sensitivity"`
	Valuation   ValuationConfig   `yaml:"valuation"`
	Store       StoreConfig       `yaml:"store"`
	Agents      agent.Config      `yaml:",inline"`

	GeminiAPIKey    string `yaml:"-"`
	DeepSeekAPIKey  string `yaml:"-"`
	AnthropicAPIKey string `yaml:"-"`
	DatabaseURL     string `yaml:"-"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	TimeoutSeconds int      `yaml:"timeout_seconds"`
}

// LoggingConfig configures pkg/logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// SensitivityConfig overrides the default grid spacing.
type SensitivityConfig struct {
	WACCSpread float64 `yaml:"wacc_spread"`
	WACCStep   float64 `yaml:"wacc_step"`
	GrowthMin  float64 `yaml:"growth_min"`
	GrowthMax  float64 `yaml:"growth_max"`
	GrowthStep float64 `yaml:"growth_step"`
}

// Ranges centers the WACC axis on wacc and returns the configured growth axis.
func (s SensitivityConfig) Ranges(wacc float64) (waccRange, growthRange valuation.Range) {
	return valuation.Range{Min: wacc - s.WACCSpread, Max: wacc + s.WACCSpread, Step: s.WACCStep},
		valuation.Range{Min: s.GrowthMin, Max: s.GrowthMax, Step: s.GrowthStep}
}

// ValuationConfig holds engine options and market defaults.
type ValuationConfig struct {
	RejectNegativeRevenue bool    `yaml:"reject_negative_revenue"`
	DefaultRiskFreeRate   float64 `yaml:"default_risk_free_rate"`
}

// StoreConfig locates persisted valuation runs. Postgres is used when DatabaseURL is set;
// otherwise runs are written as JSON files under Dir. An empty Dir disables persistence.
type StoreConfig struct {
	Dir string `yaml:"dir"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"*"},
			TimeoutSeconds: 60,
		},
		Logging: LoggingConfig{Level: "info"},
		Sensitivity: SensitivityConfig{
			WACCSpread: 0.02,
			WACCStep:   0.005,
			GrowthMin:  0.01,
			GrowthMax:  0.04,
			GrowthStep: 0.005,
		},
		Valuation: ValuationConfig{DefaultRiskFreeRate: 0.0425},
		Store:     StoreConfig{Dir: filepath.Join(".cache", "runs")},
		Agents:    agent.Config{ActiveProvider: "gemini"},
	}
}

// Load builds configuration in three layers: defaults, then the YAML file at path
// (DCF_CONFIG when path is empty; skipped when neither is set), then environment
// variables. A .env file in the working directory is loaded first if present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if path == "" {
		path = os.Getenv("DCF_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.Server.Addr = getEnv("HTTP_ADDR", cfg.Server.Addr)
	cfg.Logging.Level = getEnv("LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Pretty = getEnvAsBool("LOG_PRETTY", cfg.Logging.Pretty)
	cfg.Agents.ActiveProvider = getEnv("LLM_PROVIDER", cfg.Agents.ActiveProvider)
	cfg.Valuation.DefaultRiskFreeRate = getEnvAsFloat("RISK_FREE_RATE", cfg.Valuation.DefaultRiskFreeRate)
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.DeepSeekAPIKey = os.Getenv("DEEPSEEK_API_KEY")
	cfg.AnthropicAPIKey = os.Getenv("ANTHROPIC_API_KEY")
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.Store.Dir = getEnv("RUNS_DIR", cfg.Store.Dir)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the loaded values.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server address is required")
	}
	s := c.Sensitivity
	if s.WACCSpread < 0 || s.WACCStep <= 0 || s.GrowthStep <= 0 || s.GrowthMin > s.GrowthMax {
		return fmt.Errorf("invalid sensitivity grid: %+v", s)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
