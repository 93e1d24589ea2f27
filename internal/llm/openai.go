package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
)

// OpenAIClient implements Client for any OpenAI-compatible chat completions endpoint.
type OpenAIClient struct {
	client openai.Client
	config *Config
}

// NewOpenAIClient creates a client for config.BaseURL. Extra request options
// (HTTP client, middleware) are appended after the key and base URL.
func NewOpenAIClient(config *Config, apiKey string, opts ...option.RequestOption) *OpenAIClient {
	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if config.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(config.BaseURL))
	}
	reqOpts = append(reqOpts, opts...)

	return &OpenAIClient{
		client: openai.NewClient(reqOpts...),
		config: config,
	}
}

// GenerateStructured embeds the schema in the prompt and requests JSON mode,
// or a strict json_schema response format when the config asks for it.
func (c *OpenAIClient) GenerateStructured(ctx context.Context, req StructuredRequest) (string, error) {
	modelName := c.config.GetModel(req.Tier)
	if modelName == "" {
		return "", fmt.Errorf("no model configured for tier %s", req.Tier)
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	prompt, err := embedSchema(req.Prompt, req.Schema)
	if err != nil {
		return "", err
	}
	messages = append(messages, openai.UserMessage(prompt))

	params := openai.ChatCompletionNewParams{
		Model:       modelName,
		Messages:    messages,
		Temperature: openai.Float(c.config.Temperature),
	}
	if len(req.Schema) > 0 {
		params.ResponseFormat = c.responseFormat(req)
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	content := resp.Choices[0].Message.Content
	if content == "" {
		return "", fmt.Errorf("empty completion (finish reason %q)", resp.Choices[0].FinishReason)
	}
	return CleanJSONBlock(content), nil
}

func (c *OpenAIClient) responseFormat(req StructuredRequest) openai.ChatCompletionNewParamsResponseFormatUnion {
	if !c.config.StrictSchema {
		return openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}
	name := req.SchemaName
	if name == "" {
		name = "response"
	}
	return openai.ChatCompletionNewParamsResponseFormatUnion{
		OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
			JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
				Name:   name,
				Schema: req.Schema,
				Strict: openai.Bool(true),
			},
		},
	}
}

// GetModel returns the model name for a tier
func (c *OpenAIClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

// Provider implements Client.
func (c *OpenAIClient) Provider() Provider { return ProviderOpenAI }

// Close is a no-op; the underlying client holds no resources.
func (c *OpenAIClient) Close() error { return nil }
