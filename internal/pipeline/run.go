// Package pipeline orchestrates one brand analysis request: crawl and search
// in parallel, then a single structured extraction.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/brand-analyzer/internal/analysis"
	"github.com/jonathan/brand-analyzer/internal/types"
)

// State is a request lifecycle state.
type State string

// Request states. Crawling and Searching may be active at the same time.
const (
	StateIdle       State = "idle"
	StateCrawling   State = "crawling"
	StateSearching  State = "searching"
	StateExtracting State = "extracting"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

// Step names used in progress events.
const (
	StepCrawl   = "crawl"
	StepSearch  = "search"
	StepExtract = "extract"
	StepDone    = "done"
)

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step    string `json:"step"`
	State   State  `json:"state"`
	Message string `json:"message"`
	Content any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs. Calls are serialized.
type ProgressCallback func(event ProgressEvent)

// Request identifies the company to analyze. At least one field must be set.
type Request struct {
	URL         string `json:"url,omitempty"`
	CompanyName string `json:"companyName,omitempty"`
}

// Query is the search query: the company name, else the URL.
func (r Request) Query() string {
	if name := strings.TrimSpace(r.CompanyName); name != "" {
		return name
	}
	return strings.TrimSpace(r.URL)
}

// Validate checks that the request names a URL or a company.
func (r Request) Validate() error {
	if strings.TrimSpace(r.URL) == "" && strings.TrimSpace(r.CompanyName) == "" {
		return &InputError{Message: "a company URL or company name is required"}
	}
	return nil
}

// Crawler builds a website corpus. It never fails.
type Crawler interface {
	CrawlSite(ctx context.Context, rawURL string) *types.AggregatedCorpus
}

// Searcher finds public search evidence. It never fails; no snippets means no information.
// The pipeline needs the snippets themselves, not only the rendered block,
// because their count goes into progress events and result metadata.
type Searcher interface {
	Search(ctx context.Context, query string) (strategy string, snippets []types.SearchSnippet)
}

// Extractor produces the validated report.
type Extractor interface {
	ExtractReport(ctx context.Context, m analysis.Material, instructions string) (*types.AnalysisReport, error)
	Model() string
	Provider() string
}

// Archive stores successful results.
type Archive interface {
	Save(ctx context.Context, result *types.AnalysisResult) error
}

// Deps are the stage implementations. Extractor is nil when no model
// credential is configured; Archive is optional.
type Deps struct {
	Crawler      Crawler
	Searcher     Searcher
	Extractor    Extractor
	Archive      Archive
	Instructions string
}

// Pipeline runs analysis requests. It holds no per-request state and is
// safe for concurrent use.
type Pipeline struct {
	deps  Deps
	log   *zap.Logger
	now   func() time.Time
	newID func() string
}

// New creates a Pipeline. A nil logger disables logging.
func New(deps Deps, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{
		deps:  deps,
		log:   log.Named("pipeline"),
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Analyze runs one request to completion. Errors are *InputError,
// *ConfigError, *analysis.UpstreamError or *analysis.SchemaViolationError;
// a failed request never returns a partial result.
func (p *Pipeline) Analyze(ctx context.Context, req Request, onProgress ProgressCallback) (*types.AnalysisResult, error) {
	emit := serialize(onProgress)

	fail := func(step string, err error) (*types.AnalysisResult, error) {
		emit(ProgressEvent{Step: step, State: StateFailed, Message: err.Error()})
		return nil, err
	}

	if err := req.Validate(); err != nil {
		return fail(StepDone, err)
	}
	if p.deps.Extractor == nil {
		return fail(StepDone, &ConfigError{Message: "model API key is not set"})
	}

	start := time.Now()
	query := req.Query()
	targetURL := strings.TrimSpace(req.URL)

	var (
		corpus   *types.AggregatedCorpus
		snippets []types.SearchSnippet
	)

	// Both branches always produce a value and never return an error.
	var g errgroup.Group
	if targetURL != "" && p.deps.Crawler != nil {
		g.Go(func() error {
			emit(ProgressEvent{Step: StepCrawl, State: StateCrawling, Message: fmt.Sprintf("Crawling %s", targetURL)})
			corpus = p.deps.Crawler.CrawlSite(ctx, targetURL)
			emit(ProgressEvent{
				Step:    StepCrawl,
				State:   StateCrawling,
				Message: fmt.Sprintf("Collected %d pages", corpus.PageCount()),
				Content: map[string]int{"pages": corpus.PageCount(), "chars": corpus.Chars},
			})
			return nil
		})
	}
	if query != "" && p.deps.Searcher != nil {
		g.Go(func() error {
			emit(ProgressEvent{Step: StepSearch, State: StateSearching, Message: fmt.Sprintf("Searching for %q", query)})
			var strategy string
			strategy, snippets = p.deps.Searcher.Search(ctx, query)
			emit(ProgressEvent{
				Step:    StepSearch,
				State:   StateSearching,
				Message: fmt.Sprintf("Found %d search results", len(snippets)),
				Content: map[string]any{"results": len(snippets), "strategy": strategy},
			})
			return nil
		})
	}
	_ = g.Wait()

	material := analysis.Material{URL: targetURL, SearchBlock: types.RenderSnippets(snippets)}
	pages := 0
	if corpus != nil {
		material.Corpus = corpus.Render()
		pages = corpus.PageCount()
	}

	emit(ProgressEvent{Step: StepExtract, State: StateExtracting, Message: "Generating brand analysis"})
	report, err := p.deps.Extractor.ExtractReport(ctx, material, p.deps.Instructions)
	if err != nil {
		p.log.Warn("analysis failed",
			zap.String("url", targetURL),
			zap.String("query", query),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return fail(StepExtract, err)
	}

	result := &types.AnalysisResult{
		Report: *report,
		Meta: types.AnalysisMeta{
			ReportID:      p.newID(),
			URL:           targetURL,
			CompanyName:   query,
			AnalyzedAt:    p.now().UTC(),
			PagesCrawled:  pages,
			SnippetsFound: len(snippets),
			Provider:      p.deps.Extractor.Provider(),
			Model:         p.deps.Extractor.Model(),
		},
	}

	if p.deps.Archive != nil {
		if err := p.deps.Archive.Save(ctx, result); err != nil {
			p.log.Warn("failed to archive report", zap.String("report_id", result.Meta.ReportID), zap.Error(err))
		}
	}

	p.log.Info("analysis finished",
		zap.String("url", targetURL),
		zap.String("query", query),
		zap.String("report_id", result.Meta.ReportID),
		zap.Int("pages", pages),
		zap.Int("snippets", len(snippets)),
		zap.Duration("duration", time.Since(start)),
	)
	emit(ProgressEvent{Step: StepDone, State: StateSucceeded, Message: "Analysis complete", Content: result.Meta})
	return result, nil
}

// serialize wraps cb so concurrent branches never call it at the same time.
func serialize(cb ProgressCallback) ProgressCallback {
	if cb == nil {
		return func(ProgressEvent) {}
	}
	var mu sync.Mutex
	return func(ev ProgressEvent) {
		mu.Lock()
		defer mu.Unlock()
		cb(ev)
	}
}
