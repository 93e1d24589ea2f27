package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/brand-analyzer/internal/metrics"
	"github.com/jonathan/brand-analyzer/internal/types"
)

const (
	// DefaultReaderEndpoint is the reader service prefix; the target address is appended verbatim.
	DefaultReaderEndpoint = "https://r.jina.ai/"
	// MinContentChars is the minimum content length for a page to carry signal.
	MinContentChars = 100
)

// Target is one page to fetch. It is a value type and is not modified after construction.
type Target struct {
	Address string
	Label   string
	Cap     int
	Timeout time.Duration
}

// NewTarget builds a Target.
func NewTarget(address, label string, capChars int, timeout time.Duration) Target {
	return Target{Address: address, Label: label, Cap: capChars, Timeout: timeout}
}

// PageFetcher retrieves one page's readable content.
// FetchPage returns nil when the page is absent for any reason; it never returns an error.
type PageFetcher interface {
	FetchPage(ctx context.Context, target Target) *types.PageResult
}

// ReaderConfig configures the reader-service fetcher.
type ReaderConfig struct {
	Endpoint string
	APIKey   string // optional; anonymous requests get a reduced quota
	Client   *http.Client
}

// ServiceReader fetches pages through an external reader service that renders
// a URL into LLM-ready text and returns a JSON envelope.
type ServiceReader struct {
	endpoint string
	apiKey   string
	client   *http.Client
	log      *zap.Logger
}

// readerEnvelope is the reader service response body.
type readerEnvelope struct {
	Data *struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"data"`
}

// NewServiceReader creates a reader-service fetcher. A nil logger disables logging.
func NewServiceReader(cfg ReaderConfig, log *zap.Logger) *ServiceReader {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultReaderEndpoint
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ServiceReader{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		client:   cfg.Client,
		log:      log.Named("reader"),
	}
}

// FetchPage fetches target through the reader service. One outbound call, no retries.
func (r *ServiceReader) FetchPage(ctx context.Context, target Target) *types.PageResult {
	start := time.Now()
	page, err := r.read(ctx, target)
	if err != nil {
		r.log.Debug("page skipped",
			zap.String("url", target.Address),
			zap.String("label", target.Label),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		metrics.ObservePageFetch(target.Label, outcome(err))
		return nil
	}
	metrics.ObservePageFetch(target.Label, "ok")
	return page
}

func (r *ServiceReader) read(ctx context.Context, target Target) (*types.PageResult, error) {
	if target.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, target.Timeout)
		defer cancel()
	}

	headers := map[string]string{
		"Accept":     "application/json",
		"X-No-Cache": "true",
	}
	if r.apiKey != "" {
		headers["Authorization"] = "Bearer " + r.apiKey
	}

	result, err := URL(ctx, r.endpoint+target.Address, &Options{Client: r.client, Headers: headers})
	if err != nil {
		return nil, err
	}

	var envelope readerEnvelope
	if err := json.Unmarshal([]byte(result.Body), &envelope); err != nil {
		return nil, &Error{URL: target.Address, Message: "malformed reader envelope", Cause: err}
	}
	if envelope.Data == nil {
		return nil, &Error{URL: target.Address, Message: "reader envelope has no data"}
	}

	return buildPage(target, envelope.Data.Title, envelope.Data.URL, envelope.Data.Content)
}

// buildPage applies the minimum-signal check and the per-target cap.
func buildPage(target Target, title, canonicalURL, content string) (*types.PageResult, error) {
	if types.CharLen(content) < MinContentChars {
		return nil, &Error{URL: target.Address, Message: fmt.Sprintf("content shorter than %d characters", MinContentChars)}
	}
	if title == "" {
		title = target.Address
	}
	if canonicalURL == "" {
		canonicalURL = target.Address
	}
	if target.Cap > 0 {
		content = types.Truncate(content, target.Cap)
	}
	return &types.PageResult{
		Title:       title,
		URL:         canonicalURL,
		Content:     content,
		SourceLabel: target.Label,
	}, nil
}

// outcome classifies a fetch error for metrics labels.
func outcome(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	var fetchErr *Error
	if errors.As(err, &fetchErr) && fetchErr.StatusCode != 0 {
		return "status"
	}
	return "error"
}
