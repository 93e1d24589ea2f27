package fetch

import (
	"context"
	"net/http"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"go.uber.org/zap"

	"github.com/jonathan/brand-analyzer/internal/metrics"
	"github.com/jonathan/brand-analyzer/internal/types"
)

// DirectReader fetches pages itself and converts the main content to
// Markdown. It needs no reader service but cannot execute JavaScript.
type DirectReader struct {
	client    *http.Client
	userAgent string
	log       *zap.Logger
}

// NewDirectReader creates a DirectReader. A nil client uses a default one.
func NewDirectReader(client *http.Client, userAgent string, log *zap.Logger) *DirectReader {
	if client == nil {
		client = &http.Client{}
	}
	if userAgent == "" {
		userAgent = BrowserUserAgent
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &DirectReader{client: client, userAgent: userAgent, log: log.Named("direct_reader")}
}

// FetchPage implements PageFetcher.
func (r *DirectReader) FetchPage(ctx context.Context, target Target) *types.PageResult {
	page, err := r.read(ctx, target)
	if err != nil {
		r.log.Debug("page skipped",
			zap.String("url", target.Address),
			zap.String("label", target.Label),
			zap.Error(err),
		)
		metrics.ObservePageFetch(target.Label, outcome(err))
		return nil
	}
	metrics.ObservePageFetch(target.Label, "ok")
	return page
}

func (r *DirectReader) read(ctx context.Context, target Target) (*types.PageResult, error) {
	if target.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, target.Timeout)
		defer cancel()
	}

	result, err := URL(ctx, target.Address, &Options{
		Client:    r.client,
		UserAgent: r.userAgent,
		Headers:   map[string]string{"Accept": "text/html,application/xhtml+xml"},
	})
	if err != nil {
		return nil, err
	}

	title, mainHTML, err := ExtractMainHTML(result.Body, CompanyPageSelectors())
	if err != nil {
		return nil, &Error{URL: target.Address, Message: "unparseable HTML", Cause: err}
	}

	markdown, err := htmltomarkdown.ConvertString(mainHTML)
	if err != nil {
		return nil, &Error{URL: target.Address, Message: "markdown conversion failed", Cause: err}
	}

	return buildPage(target, title, target.Address, CleanText(markdown))
}
