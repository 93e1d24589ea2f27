package research

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/brand-analyzer/internal/fetch"
	"github.com/jonathan/brand-analyzer/internal/types"
)

const (
	// DefaultDuckDuckGoEndpoint is the HTML-only DuckDuckGo search page.
	DefaultDuckDuckGoEndpoint = "https://html.duckduckgo.com/html/"
	// DefaultDuckDuckGoTimeout bounds one DuckDuckGo call.
	DefaultDuckDuckGoTimeout = 10 * time.Second

	profileSuffix = " company brand profile"
)

// DuckDuckGo scrapes the DuckDuckGo HTML results page.
type DuckDuckGo struct {
	endpoint string
	timeout  time.Duration
	client   *http.Client
}

// NewDuckDuckGo creates the keyless fallback strategy. Empty endpoint and
// zero timeout select the defaults; a nil client uses a default one.
func NewDuckDuckGo(endpoint string, timeout time.Duration, client *http.Client) *DuckDuckGo {
	if endpoint == "" {
		endpoint = DefaultDuckDuckGoEndpoint
	}
	if timeout <= 0 {
		timeout = DefaultDuckDuckGoTimeout
	}
	if client == nil {
		client = &http.Client{}
	}
	return &DuckDuckGo{endpoint: endpoint, timeout: timeout, client: client}
}

// Name implements Strategy.
func (d *DuckDuckGo) Name() string { return "duckduckgo" }

// Search implements Strategy.
func (d *DuckDuckGo) Search(ctx context.Context, query string) ([]types.SearchSnippet, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	result, err := fetch.URL(ctx, d.endpoint+"?q="+url.QueryEscape(query+profileSuffix), &fetch.Options{
		Client:    d.client,
		UserAgent: fetch.BrowserUserAgent,
		Headers:   map[string]string{"Accept": "text/html"},
	})
	if err != nil {
		return nil, asSearchError(d.Name(), err)
	}

	snippets, err := ParseDuckDuckGoHTML(result.Body)
	if err != nil {
		return nil, &SearchError{Strategy: d.Name(), Message: "unparseable results page", Cause: err}
	}
	return snippets, nil
}

// ParseDuckDuckGoHTML extracts up to types.MaxSnippets results from a
// DuckDuckGo HTML results page. Result blocks without a title or snippet
// are skipped.
func ParseDuckDuckGoHTML(html string) ([]types.SearchSnippet, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	snippets := make([]types.SearchSnippet, 0, types.MaxSnippets)
	doc.Find(".result").EachWithBreak(func(_ int, block *goquery.Selection) bool {
		titleSel := block.Find(".result__title")
		title := strings.TrimSpace(titleSel.Text())
		excerpt := strings.TrimSpace(block.Find(".result__snippet").Text())
		if title == "" || excerpt == "" {
			return true
		}

		link := strings.TrimSpace(block.Find(".result__url").First().Text())
		if link == "" {
			link, _ = titleSel.Find("a").First().Attr("href")
		}

		snippets = append(snippets, types.NewSearchSnippet(title, link, excerpt, "duckduckgo"))
		return len(snippets) < types.MaxSnippets
	})
	return snippets, nil
}
