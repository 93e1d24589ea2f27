package research

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/brand-analyzer/internal/fetch"
	"github.com/jonathan/brand-analyzer/internal/metrics"
	"github.com/jonathan/brand-analyzer/internal/types"
)

// Strategy is one way of searching the web for a company.
// An empty result with a nil error means the strategy found nothing.
type Strategy interface {
	Name() string
	Search(ctx context.Context, query string) ([]types.SearchSnippet, error)
}

// Chain tries strategies in order and returns the first non-empty result.
// Each strategy runs at most once per call.
type Chain []Strategy

// Run executes the chain. It returns the winning strategy's name, or an
// empty name and nil snippets when every strategy failed or found nothing.
func (c Chain) Run(ctx context.Context, query string, log *zap.Logger) (string, []types.SearchSnippet) {
	for _, s := range c {
		start := time.Now()
		snippets, err := s.Search(ctx, query)
		switch {
		case err != nil:
			log.Warn("search strategy failed",
				zap.String("strategy", s.Name()),
				zap.Duration("duration", time.Since(start)),
				zap.Error(err),
			)
			metrics.ObserveSearch(s.Name(), "error")
		case len(snippets) == 0:
			log.Debug("search strategy found nothing", zap.String("strategy", s.Name()))
			metrics.ObserveSearch(s.Name(), "empty")
		default:
			metrics.ObserveSearch(s.Name(), "ok")
			return s.Name(), snippets
		}
	}
	return "", nil
}

// Aggregator turns a company query into a rendered evidence block.
type Aggregator struct {
	chain Chain
	log   *zap.Logger
}

// NewAggregator creates an Aggregator over the given strategies, tried in order.
func NewAggregator(log *zap.Logger, strategies ...Strategy) *Aggregator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Aggregator{chain: Chain(strategies), log: log.Named("research")}
}

// Search returns the snippets found for query and the strategy that found them.
func (a *Aggregator) Search(ctx context.Context, query string) (string, []types.SearchSnippet) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", nil
	}
	start := time.Now()
	defer func() { metrics.ObserveStage("search", time.Since(start)) }()
	return a.chain.Run(ctx, query, a.log)
}

// SearchCompany returns the rendered search evidence for query. An empty
// string means no information was found; it never fails.
func (a *Aggregator) SearchCompany(ctx context.Context, query string) string {
	strategy, snippets := a.Search(ctx, query)
	if len(snippets) == 0 {
		return ""
	}
	a.log.Info("search finished", zap.String("strategy", strategy), zap.Int("results", len(snippets)))
	return types.RenderSnippets(snippets)
}

// asSearchError wraps a fetch failure, keeping its HTTP status.
func asSearchError(strategy string, err error) error {
	se := &SearchError{Strategy: strategy, Message: "request failed", Cause: err}
	var fetchErr *fetch.Error
	if errors.As(err, &fetchErr) {
		se.StatusCode = fetchErr.StatusCode
	}
	return se
}
