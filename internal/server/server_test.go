package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/brand-analyzer/internal/analysis"
	"github.com/jonathan/brand-analyzer/internal/db"
	"github.com/jonathan/brand-analyzer/internal/pipeline"
	"github.com/jonathan/brand-analyzer/internal/server/ratelimit"
	"github.com/jonathan/brand-analyzer/internal/types"
)

type fakeAnalyzer struct {
	requests []pipeline.Request
	result   *types.AnalysisResult
	err      error
	events   []pipeline.ProgressEvent
}

func (f *fakeAnalyzer) Analyze(_ context.Context, req pipeline.Request, onProgress pipeline.ProgressCallback) (*types.AnalysisResult, error) {
	f.requests = append(f.requests, req)
	if onProgress != nil {
		for _, ev := range f.events {
			onProgress(ev)
		}
	}
	return f.result, f.err
}

func sampleResult() *types.AnalysisResult {
	return &types.AnalysisResult{
		Report: types.AnalysisReport{Company: types.CompanyProfile{Name: "Acme"}},
		Meta: types.AnalysisMeta{
			ReportID:    "6f1c1f1e-3b8e-4a53-9a43-1f8d2a0f7c11",
			URL:         "https://acme.example",
			CompanyName: "Acme",
			AnalyzedAt:  time.Date(2026, 3, 1, 4, 0, 0, 0, time.UTC),
		},
	}
}

func newTestServer(analyzer Analyzer, reports db.ReportStore) *Server {
	cfg := DefaultConfig()
	cfg.RateLimit = &ratelimit.Config{Enabled: false}
	return New(cfg, analyzer, reports, nil)
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHealthEndpoint(t *testing.T) {
	w := do(t, newTestServer(&fakeAnalyzer{}, nil), http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decodeBody(t, w)["status"])
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(&fakeAnalyzer{}, nil)
	do(t, s, http.MethodGet, "/health", "")

	w := do(t, s, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}

func TestAnalyze_Success(t *testing.T) {
	analyzer := &fakeAnalyzer{result: sampleResult()}
	w := do(t, newTestServer(analyzer, nil), http.MethodPost, "/api/analyze", `{"url":"https://acme.example","companyName":"Acme"}`)

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Acme", body["analysis"].(map[string]any)["company"].(map[string]any)["name"])
	assert.Equal(t, "https://acme.example", body["meta"].(map[string]any)["url"])

	require.Len(t, analyzer.requests, 1)
	assert.Equal(t, pipeline.Request{URL: "https://acme.example", CompanyName: "Acme"}, analyzer.requests[0])
}

func TestAnalyze_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		err    error
		status int
	}{
		{"invalid json", `{"url":`, nil, http.StatusBadRequest},
		{"url too long", `{"url":"https://` + strings.Repeat("a", 2100) + `"}`, nil, http.StatusBadRequest},
		{"missing input", `{}`, &pipeline.InputError{Message: "a company URL or company name is required"}, http.StatusBadRequest},
		{"missing credential", `{"companyName":"Acme"}`, &pipeline.ConfigError{Message: "model API key is not set"}, http.StatusInternalServerError},
		{"schema violation", `{"companyName":"Acme"}`, &analysis.SchemaViolationError{}, http.StatusBadGateway},
		{"upstream", `{"companyName":"Acme"}`, &analysis.UpstreamError{Provider: "openai", Message: "failed", Cause: errors.New("503")}, http.StatusBadGateway},
		{"deadline", `{"companyName":"Acme"}`, &analysis.UpstreamError{Provider: "openai", Message: "failed", Cause: context.DeadlineExceeded}, http.StatusGatewayTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, newTestServer(&fakeAnalyzer{err: tt.err}, nil), http.MethodPost, "/api/analyze", tt.body)

			assert.Equal(t, tt.status, w.Code)
			body := decodeBody(t, w)
			assert.NotEmpty(t, body["error"])
			assert.NotContains(t, body, "analysis")
		})
	}
}

func TestAnalyze_ValidationNamesJSONField(t *testing.T) {
	w := do(t, newTestServer(&fakeAnalyzer{}, nil), http.MethodPost, "/api/analyze", `{"companyName":"`+strings.Repeat("x", 300)+`"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeBody(t, w)["error"], "companyName")
}

func TestAnalyzeStream(t *testing.T) {
	analyzer := &fakeAnalyzer{
		result: sampleResult(),
		events: []pipeline.ProgressEvent{
			{Step: pipeline.StepCrawl, State: pipeline.StateCrawling, Message: "Crawling"},
			{Step: pipeline.StepDone, State: pipeline.StateSucceeded, Message: "Analysis complete"},
		},
	}
	w := do(t, newTestServer(analyzer, nil), http.MethodPost, "/api/analyze/stream", `{"companyName":"Acme"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))

	body := w.Body.String()
	assert.Equal(t, 2, strings.Count(body, "event: progress\n"))
	completeAt := strings.Index(body, "event: complete\n")
	require.Greater(t, completeAt, strings.LastIndex(body, "event: progress\n"))
	assert.Contains(t, body[completeAt:], `"success":true`)
	assert.NotContains(t, body, "event: error")
}

func TestAnalyzeStream_Error(t *testing.T) {
	analyzer := &fakeAnalyzer{err: &analysis.UpstreamError{Provider: "openai", Message: "failed", Cause: context.DeadlineExceeded}}
	w := do(t, newTestServer(analyzer, nil), http.MethodPost, "/api/analyze/stream", `{"companyName":"Acme"}`)

	body := w.Body.String()
	assert.Contains(t, body, "event: error\n")
	assert.Contains(t, body, `"status":504`)
	assert.NotContains(t, body, "event: complete")
}

func TestGetReport(t *testing.T) {
	store := db.NewMemoryStore(10)
	result := sampleResult()
	require.NoError(t, store.Save(context.Background(), result))
	s := newTestServer(&fakeAnalyzer{}, store)

	w := do(t, s, http.MethodGet, "/api/reports/"+result.Meta.ReportID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, result.Meta.ReportID, decodeBody(t, w)["meta"].(map[string]any)["reportId"])

	w = do(t, s, http.MethodGet, "/api/reports/unknown", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetReport_ArchiveDisabled(t *testing.T) {
	w := do(t, newTestServer(&fakeAnalyzer{}, nil), http.MethodGet, "/api/reports/abc", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListReports(t *testing.T) {
	store := db.NewMemoryStore(10)
	require.NoError(t, store.Save(context.Background(), sampleResult()))
	s := newTestServer(&fakeAnalyzer{}, store)

	w := do(t, s, http.MethodGet, "/api/reports?limit=5", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody(t, w)["reports"], 1)

	w = do(t, s, http.MethodGet, "/api/reports?limit=0", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	w := do(t, newTestServer(&fakeAnalyzer{}, nil), http.MethodOptions, "/api/analyze", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RateLimit = &ratelimit.Config{
		Enabled:         true,
		EndpointConfigs: []ratelimit.EndpointConfig{{Path: "/api/analyze", Method: "POST", Limit: 1, Window: time.Hour, Burst: 1}},
	}
	s := New(cfg, &fakeAnalyzer{result: sampleResult()}, nil, nil)
	defer s.rateLimiter.Stop()

	post := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/analyze", bytes.NewBufferString(`{"companyName":"Acme"}`))
		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, req)
		return w
	}

	first := post()
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Limit"))

	second := post()
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.NotEmpty(t, second.Header().Get("Retry-After"))
}

func TestAPIKeysGuardAPIRoutes(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RateLimit = &ratelimit.Config{Enabled: false}
	cfg.APIKeys = []string{"secret"}
	s := New(cfg, &fakeAnalyzer{result: sampleResult()}, nil, nil)

	w := do(t, s, http.MethodPost, "/api/analyze", `{"companyName":"Acme"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(`{"companyName":"Acme"}`))
	req.Header.Set("Authorization", "Bearer secret")
	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
}
