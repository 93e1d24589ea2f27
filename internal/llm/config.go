// Package llm provides model provider configuration and a structured-output
// client abstraction over OpenAI-compatible endpoints and Google Gemini.
package llm

import "fmt"

// ModelTier represents the complexity/capability level of a model
type ModelTier string

const (
	// TierLite is for simple tasks such as classification
	TierLite ModelTier = "lite"
	// TierStandard is for structured extraction
	TierStandard ModelTier = "standard"
	// TierAdvanced is for long-context analysis
	TierAdvanced ModelTier = "advanced"
)

// Provider represents an LLM provider
type Provider string

// Supported providers.
const (
	// ProviderOpenAI is any endpoint speaking the OpenAI chat completions protocol (Kimi by default)
	ProviderOpenAI Provider = "openai"
	// ProviderGemini is the Google Gemini provider
	ProviderGemini Provider = "gemini"
)

// DefaultOpenAIBaseURL is the Moonshot (Kimi) OpenAI-compatible endpoint.
const DefaultOpenAIBaseURL = "https://api.moonshot.cn/v1"

// DefaultTemperature keeps structured output stable across runs.
const DefaultTemperature = 0.1

// Config holds the model configuration for the application
type Config struct {
	Provider    Provider
	BaseURL     string
	Temperature float64
	Models      map[ModelTier]string
	// StrictSchema sends the schema as a strict json_schema response format.
	// Otherwise OpenAI-compatible endpoints get plain JSON mode; the schema is
	// in the prompt either way.
	StrictSchema bool
}

// DefaultConfig returns the default configuration (Kimi over the OpenAI protocol)
func DefaultConfig() *Config {
	return DefaultOpenAIConfig()
}

// DefaultOpenAIConfig returns the default OpenAI-compatible configuration.
func DefaultOpenAIConfig() *Config {
	return &Config{
		Provider:    ProviderOpenAI,
		BaseURL:     DefaultOpenAIBaseURL,
		Temperature: DefaultTemperature,
		Models: map[ModelTier]string{
			TierLite:     "kimi-k2-0711",
			TierStandard: "kimi-k2-0711",
			TierAdvanced: "kimi-k2-0711",
		},
	}
}

// DefaultGeminiConfig returns the default Gemini configuration
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider:    ProviderGemini,
		Temperature: DefaultTemperature,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
	}
}

// ConfigFor returns the default configuration of a provider.
func ConfigFor(p Provider) (*Config, error) {
	switch p {
	case ProviderOpenAI, "":
		return DefaultOpenAIConfig(), nil
	case ProviderGemini:
		return DefaultGeminiConfig(), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", p)
	}
}

// GetModel returns the model name for a given tier
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	// Fallback chain: try standard, then lite
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return ""
}

// WithModel returns a new Config with a specific model for a tier
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	next := *c
	next.Models = make(map[ModelTier]string, len(c.Models)+1)
	for k, v := range c.Models {
		next.Models[k] = v
	}
	next.Models[tier] = model
	return &next
}

// WithAllModels returns a new Config using model for every tier.
func (c *Config) WithAllModels(model string) *Config {
	next := c
	for _, tier := range []ModelTier{TierLite, TierStandard, TierAdvanced} {
		next = next.WithModel(tier, model)
	}
	return next
}
