package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jonathan/brand-analyzer/internal/config"
	"github.com/jonathan/brand-analyzer/internal/fetch"
	"github.com/jonathan/brand-analyzer/internal/pipeline"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	for _, name := range []string{"JINA_API_KEY", "KIMI_API_KEY", "LLM_API_KEY", "GEMINI_API_KEY", "GOOGLE_SEARCH_API_KEY", "GOOGLE_SEARCH_CX", "DATABASE_URL"} {
		t.Setenv(name, "")
	}
	cfg, err := config.Load("")
	require.NoError(t, err)
	return cfg
}

func TestNewFetcher_SelectsMode(t *testing.T) {
	_, ok := newFetcher(config.ReaderConfig{Mode: config.ReaderModeService}, nil, zap.NewNop()).(*fetch.ServiceReader)
	assert.True(t, ok)

	_, ok = newFetcher(config.ReaderConfig{Mode: config.ReaderModeDirect}, nil, zap.NewNop()).(*fetch.DirectReader)
	assert.True(t, ok)
}

func TestNewLLMClient_NoKey(t *testing.T) {
	client, err := newLLMClient(context.Background(), config.LLMConfig{Provider: "openai"})
	require.NoError(t, err)
	assert.Nil(t, client)
}

func TestNewLLMClient_ModelOverride(t *testing.T) {
	client, err := newLLMClient(context.Background(), config.LLMConfig{Provider: "openai", APIKey: "sk-test", Model: "moonshot-v1-32k", Temperature: 0.1})
	require.NoError(t, err)
	defer client.Close()
	assert.Equal(t, "moonshot-v1-32k", client.GetModel("standard"))
}

func TestNewApp_WithoutKeyFailsWithConfigError(t *testing.T) {
	cfg := testConfig(t)

	a, err := newApp(context.Background(), cfg, zap.NewNop(), false)
	require.NoError(t, err)
	defer a.Close()

	assert.Nil(t, a.extractor)
	_, err = a.pipeline.Analyze(context.Background(), pipeline.Request{CompanyName: "Acme"}, nil)
	var ce *pipeline.ConfigError
	assert.ErrorAs(t, err, &ce)
}

func TestServerConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.RateLimit.Whitelist = "10.0.0.1"

	sc := serverConfig(cfg)
	assert.Equal(t, 8080, sc.Port)
	require.NotNil(t, sc.RateLimit)
	assert.True(t, sc.RateLimit.Whitelist["10.0.0.1"])
	assert.NotEmpty(t, sc.RateLimit.EndpointConfigs)
}

func chatCompletion(content string) []byte {
	body, _ := json.Marshal(map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   "kimi-k2-0711",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": content},
		}},
	})
	return body
}

func TestNewApp_EndToEnd(t *testing.T) {
	report, err := os.ReadFile("../../internal/schemas/testdata/valid_report.json")
	require.NoError(t, err)

	var readerCalls sync.Map
	reader := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		readerCalls.Store(r.URL.Path, true)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]string{
			"title":   "Acme",
			"url":     strings.TrimPrefix(r.URL.Path, "/"),
			"content": r.URL.Path + strings.Repeat(" Acme forges anvils.", 10),
		}})
	}))
	defer reader.Close()

	search := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"title":"Acme profile","url":"https://news.example/acme","content":"Acme is an anvil maker."}]}`))
	}))
	defer search.Close()

	var prompt string
	model := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		prompt = string(raw)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(chatCompletion(string(report)))
	}))
	defer model.Close()

	cfg := testConfig(t)
	cfg.Reader.Endpoint = reader.URL + "/"
	cfg.Search.Endpoint = search.URL + "/"
	cfg.LLM.BaseURL = model.URL + "/v1"
	cfg.LLM.APIKey = "sk-test"

	a, err := newApp(context.Background(), cfg, zap.NewNop(), true)
	require.NoError(t, err)
	defer a.Close()

	var events []pipeline.ProgressEvent
	result, err := a.pipeline.Analyze(context.Background(),
		pipeline.Request{URL: "acme.example", CompanyName: "Acme"},
		func(ev pipeline.ProgressEvent) { events = append(events, ev) })
	require.NoError(t, err)

	assert.Equal(t, 27, result.Meta.PagesCrawled)
	assert.Equal(t, 1, result.Meta.SnippetsFound)
	assert.Equal(t, "openai", result.Meta.Provider)
	assert.NotEmpty(t, result.Report.Company.Name)

	_, fetchedHome := readerCalls.Load("/https://acme.example")
	assert.True(t, fetchedHome)
	assert.Contains(t, prompt, "Acme is an anvil maker.")
	assert.Contains(t, prompt, "Acme forges anvils.")

	stored, err := a.reports.Get(context.Background(), result.Meta.ReportID)
	require.NoError(t, err)
	assert.Equal(t, result.Report.Company.Name, stored.Report.Company.Name)

	require.NotEmpty(t, events)
	assert.Equal(t, pipeline.StateSucceeded, events[len(events)-1].State)
}
