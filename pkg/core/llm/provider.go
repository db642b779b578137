// Package llm wraps the language-model backends used to draft valuation assumptions.
package llm

import (
	"context"
	"errors"
)

// ErrMissingAPIKey is returned when a provider is used without credentials.
var ErrMissingAPIKey = errors.New("missing api key")

// Options tunes a single generation request. Zero values select provider defaults.
type Options struct {
	Model       string
	Temperature float32
	MaxTokens   int
	// JSON asks the backend for a JSON-only response where supported.
	JSON bool
}

// Provider is implemented by every LLM backend.
type Provider interface {
	Name() string
	GenerateResponse(ctx context.Context, prompt, systemPrompt string, opts Options) (string, error)
}
