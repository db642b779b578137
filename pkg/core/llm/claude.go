package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	defaultClaudeModel     = "claude-sonnet-4-5"
	defaultClaudeMaxTokens = 4096
)

// ClaudeProvider calls Anthropic's Messages API.
type ClaudeProvider struct {
	APIKey string
	Model  string
	// BaseURL overrides the API endpoint. Empty selects the SDK default.
	BaseURL string
}

var _ Provider = (*ClaudeProvider)(nil)

// NewClaudeProvider returns a provider for apiKey. An empty model selects claude-sonnet-4-5.
func NewClaudeProvider(apiKey, model string) *ClaudeProvider {
	if model == "" {
		model = defaultClaudeModel
	}
	return &ClaudeProvider{APIKey: apiKey, Model: model}
}

func (p *ClaudeProvider) Name() string { return "claude" }

// GenerateResponse sends a single-turn message. Options.JSON is expressed in the system
// prompt since the Messages API has no JSON response mode.
func (p *ClaudeProvider) GenerateResponse(ctx context.Context, prompt, systemPrompt string, opts Options) (string, error) {
	if p.APIKey == "" {
		return "", fmt.Errorf("claude: %w", ErrMissingAPIKey)
	}

	clientOpts := []option.RequestOption{option.WithAPIKey(p.APIKey)}
	if p.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(p.BaseURL))
	}
	client := anthropic.NewClient(clientOpts...)

	model := p.Model
	if opts.Model != "" {
		model = opts.Model
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultClaudeMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if opts.Temperature > 0 {
		params.Temperature = anthropic.Float(float64(opts.Temperature))
	}
	if opts.JSON {
		systemPrompt = strings.TrimSpace(systemPrompt + "\n\nRespond with a single JSON object and nothing else.")
	}
	if systemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: systemPrompt}}
	}

	resp, err := client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("claude: generate: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("claude: empty response")
	}
	return sb.String(), nil
}
