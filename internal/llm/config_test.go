package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, ProviderOpenAI, config.Provider)
	assert.Equal(t, DefaultOpenAIBaseURL, config.BaseURL)
	assert.Equal(t, "kimi-k2-0711", config.GetModel(TierStandard))
	assert.InDelta(t, 0.1, config.Temperature, 1e-9)
}

func TestDefaultGeminiConfig(t *testing.T) {
	config := DefaultGeminiConfig()

	assert.Equal(t, ProviderGemini, config.Provider)
	assert.Equal(t, "gemini-2.5-flash-lite", config.GetModel(TierLite))
	assert.Equal(t, "gemini-2.5-flash", config.GetModel(TierStandard))
	assert.Equal(t, "gemini-2.5-pro", config.GetModel(TierAdvanced))
}

func TestConfigFor(t *testing.T) {
	cfg, err := ConfigFor(ProviderGemini)
	require.NoError(t, err)
	assert.Equal(t, ProviderGemini, cfg.Provider)

	cfg, err = ConfigFor("")
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, cfg.Provider)

	_, err = ConfigFor("anthropic")
	assert.Error(t, err)
}

func TestGetModel_Fallback(t *testing.T) {
	config := &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite: "fallback-model",
		},
	}

	assert.Equal(t, "fallback-model", config.GetModel("unknown"))
	assert.Equal(t, "", (&Config{Models: map[ModelTier]string{}}).GetModel(TierAdvanced))
}

func TestWithModel(t *testing.T) {
	config := DefaultGeminiConfig()
	newConfig := config.WithModel(TierAdvanced, "custom-model")

	assert.Equal(t, "gemini-2.5-pro", config.GetModel(TierAdvanced))
	assert.Equal(t, "custom-model", newConfig.GetModel(TierAdvanced))
	assert.Equal(t, "gemini-2.5-flash-lite", newConfig.GetModel(TierLite))
	assert.Equal(t, config.Provider, newConfig.Provider)
}

func TestWithAllModels(t *testing.T) {
	config := DefaultOpenAIConfig().WithAllModels("moonshot-v1-128k")

	for _, tier := range []ModelTier{TierLite, TierStandard, TierAdvanced} {
		assert.Equal(t, "moonshot-v1-128k", config.GetModel(tier))
	}
	assert.Equal(t, "kimi-k2-0711", DefaultOpenAIConfig().GetModel(TierLite))
}

func TestNewClient(t *testing.T) {
	_, err := NewClient(context.Background(), nil, "")
	assert.Error(t, err)

	client, err := NewClient(context.Background(), nil, "key")
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, client.Provider())
	assert.NoError(t, client.Close())

	_, err = NewClient(context.Background(), &Config{Provider: "mystery"}, "key")
	assert.Error(t, err)
}
