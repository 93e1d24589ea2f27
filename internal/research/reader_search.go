package research

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/jonathan/brand-analyzer/internal/fetch"
	"github.com/jonathan/brand-analyzer/internal/types"
)

const (
	// DefaultReaderSearchEndpoint is the primary search service prefix.
	DefaultReaderSearchEndpoint = "https://s.jina.ai/"
	// DefaultReaderSearchTimeout bounds one primary search call.
	DefaultReaderSearchTimeout = 15 * time.Second

	readerSearchSuffix = " company brand profile products services"
)

// ReaderSearch queries a search service that returns LLM-ready result
// content in a JSON envelope.
type ReaderSearch struct {
	endpoint string
	apiKey   string
	timeout  time.Duration
	client   *http.Client
}

// ReaderSearchConfig configures ReaderSearch. Zero values select defaults.
type ReaderSearchConfig struct {
	Endpoint string
	APIKey   string
	Timeout  time.Duration
	Client   *http.Client
}

type readerSearchEnvelope struct {
	Data []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"data"`
}

// NewReaderSearch creates the primary search strategy.
func NewReaderSearch(cfg ReaderSearchConfig) *ReaderSearch {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultReaderSearchEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultReaderSearchTimeout
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{}
	}
	return &ReaderSearch{endpoint: cfg.Endpoint, apiKey: cfg.APIKey, timeout: cfg.Timeout, client: cfg.Client}
}

// Name implements Strategy.
func (s *ReaderSearch) Name() string { return "reader" }

// Search implements Strategy.
func (s *ReaderSearch) Search(ctx context.Context, query string) ([]types.SearchSnippet, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	headers := map[string]string{"Accept": "application/json"}
	if s.apiKey != "" {
		headers["Authorization"] = "Bearer " + s.apiKey
	}

	result, err := fetch.URL(ctx, s.endpoint+url.PathEscape(query+readerSearchSuffix), &fetch.Options{
		Client:  s.client,
		Headers: headers,
	})
	if err != nil {
		return nil, asSearchError(s.Name(), err)
	}

	var envelope readerSearchEnvelope
	if err := json.Unmarshal([]byte(result.Body), &envelope); err != nil {
		return nil, &SearchError{Strategy: s.Name(), Message: "malformed search envelope", Cause: err}
	}

	snippets := make([]types.SearchSnippet, 0, len(envelope.Data))
	for _, item := range envelope.Data {
		if len(snippets) == types.MaxSnippets {
			break
		}
		snippets = append(snippets, types.NewSearchSnippet(item.Title, item.URL, item.Content, s.Name()))
	}
	return snippets, nil
}
