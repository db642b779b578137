// Package prompt holds the LLM prompt library. Prompts are YAML files embedded in the
// binary and rendered with text/template, so wording changes need no code changes.
package prompt

// Prompt IDs.
const (
	IDAssumptions = "valuation.assumptions"
	IDThesis      = "valuation.thesis"
)

// Template is one prompt definition.
type Template struct {
	ID           string   `yaml:"id"`
	Name         string   `yaml:"name"`
	Description  string   `yaml:"description"`
	SystemPrompt string   `yaml:"system_prompt"`
	UserTemplate string   `yaml:"user_template"`
	Variables    []string `yaml:"variables"`
	Version      string   `yaml:"version"`
	Temperature  float32  `yaml:"temperature"`
	MaxTokens    int      `yaml:"max_tokens"`
}

// Rendered is a template executed against concrete data.
type Rendered struct {
	System      string
	User        string
	Temperature float32
	MaxTokens   int
}
