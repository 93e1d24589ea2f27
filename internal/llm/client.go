package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// StructuredRequest asks a model for one JSON document conforming to Schema.
type StructuredRequest struct {
	System     string
	Prompt     string
	SchemaName string
	Schema     map[string]any
	Tier       ModelTier
}

// Client is an abstraction over LLM providers
type Client interface {
	// GenerateStructured returns the raw JSON text produced for req.
	// The text is not validated against the schema.
	GenerateStructured(ctx context.Context, req StructuredRequest) (string, error)
	// GetModel returns the provider model name used for a tier
	GetModel(tier ModelTier) string
	// Provider names the backing provider
	Provider() Provider
	// Close releases any resources held by the client
	Close() error
}

// NewClient creates a new LLM client based on configuration
func NewClient(ctx context.Context, config *Config, apiKey string) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	switch config.Provider {
	case ProviderGemini:
		return NewGeminiClient(ctx, config, apiKey)
	case ProviderOpenAI, "":
		return NewOpenAIClient(config, apiKey), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", config.Provider)
	}
}

// embedSchema appends the output contract to prompt.
func embedSchema(prompt string, schema map[string]any) (string, error) {
	if len(schema) == 0 {
		return prompt, nil
	}
	raw, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode output schema: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(prompt)
	sb.WriteString("\n\nReturn ONLY one JSON object that validates against this JSON Schema:\n")
	sb.Write(raw)
	sb.WriteString("\n\nDo not wrap the JSON in markdown and do not add fields the schema does not define.\n")
	return sb.String(), nil
}
