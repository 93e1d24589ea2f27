package research

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"

	"github.com/jonathan/brand-analyzer/internal/types"
)

// DefaultGoogleTimeout bounds one Programmable Search call.
const DefaultGoogleTimeout = 10 * time.Second

// GoogleCustomSearch queries Google Programmable Search.
type GoogleCustomSearch struct {
	svc     *customsearch.Service
	cx      string
	timeout time.Duration
}

// NewGoogleCustomSearch creates the Programmable Search strategy. Extra
// client options (endpoint, HTTP client) are passed through to the API client.
func NewGoogleCustomSearch(ctx context.Context, apiKey, cx string, opts ...option.ClientOption) (*GoogleCustomSearch, error) {
	if apiKey == "" || cx == "" {
		return nil, fmt.Errorf("google custom search requires an API key and a search engine id")
	}
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := customsearch.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create customsearch service: %w", err)
	}
	return &GoogleCustomSearch{svc: svc, cx: cx, timeout: DefaultGoogleTimeout}, nil
}

// Name implements Strategy.
func (g *GoogleCustomSearch) Name() string { return "google" }

// Search implements Strategy.
func (g *GoogleCustomSearch) Search(ctx context.Context, query string) ([]types.SearchSnippet, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.svc.Cse.List().Cx(g.cx).Q(query + profileSuffix).Num(int64(types.MaxSnippets)).Context(ctx).Do()
	if err != nil {
		return nil, &SearchError{Strategy: g.Name(), Message: "custom search request failed", Cause: err}
	}

	snippets := make([]types.SearchSnippet, 0, len(resp.Items))
	for _, item := range resp.Items {
		if len(snippets) == types.MaxSnippets {
			break
		}
		if item.Title == "" || item.Snippet == "" {
			continue
		}
		snippets = append(snippets, types.NewSearchSnippet(item.Title, item.Link, item.Snippet, g.Name()))
	}
	return snippets, nil
}
