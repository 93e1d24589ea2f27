package crawling

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/brand-analyzer/internal/fetch"
	"github.com/jonathan/brand-analyzer/internal/metrics"
	"github.com/jonathan/brand-analyzer/internal/types"
)

// Crawl limits. Caps are in characters.
const (
	DefaultHomepageCap      = 8000
	DefaultHomepageTimeout  = 20 * time.Second
	DefaultCandidateCap     = 3000
	DefaultCandidateTimeout = 8 * time.Second
	// DuplicatePrefixChars is how many leading characters two pages must share to count as duplicates.
	DuplicatePrefixChars = 100
)

// Config controls a Crawler. Zero values select the defaults above.
type Config struct {
	Budget           int
	HomepageCap      int
	HomepageTimeout  time.Duration
	CandidateCap     int
	CandidateTimeout time.Duration
	// Concurrency bounds in-flight candidate fetches; 0 means unbounded.
	Concurrency int
}

// DefaultConfig returns the standard crawl limits.
func DefaultConfig() Config {
	return Config{
		Budget:           types.DefaultCorpusBudget,
		HomepageCap:      DefaultHomepageCap,
		HomepageTimeout:  DefaultHomepageTimeout,
		CandidateCap:     DefaultCandidateCap,
		CandidateTimeout: DefaultCandidateTimeout,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Budget <= 0 {
		c.Budget = d.Budget
	}
	if c.HomepageCap <= 0 {
		c.HomepageCap = d.HomepageCap
	}
	if c.HomepageTimeout <= 0 {
		c.HomepageTimeout = d.HomepageTimeout
	}
	if c.CandidateCap <= 0 {
		c.CandidateCap = d.CandidateCap
	}
	if c.CandidateTimeout <= 0 {
		c.CandidateTimeout = d.CandidateTimeout
	}
	if c.Concurrency < 0 {
		c.Concurrency = 0
	}
	return c
}

// Crawler gathers a company site's homepage and well-known pages into a corpus.
type Crawler struct {
	fetcher fetch.PageFetcher
	cfg     Config
	log     *zap.Logger
}

// New creates a Crawler. A nil logger disables logging.
func New(fetcher fetch.PageFetcher, cfg Config, log *zap.Logger) *Crawler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Crawler{fetcher: fetcher, cfg: cfg.withDefaults(), log: log.Named("crawler")}
}

// CrawlSite fetches the homepage, then every candidate page concurrently,
// and assembles the successes in candidate order within the corpus budget.
// It never fails: when nothing could be fetched the corpus is empty and
// renders a placeholder.
func (c *Crawler) CrawlSite(ctx context.Context, rawURL string) *types.AggregatedCorpus {
	start := time.Now()
	qualified, origin := NormalizeBase(rawURL)
	corpus := types.NewAggregatedCorpus(qualified, c.cfg.Budget)

	home := c.fetcher.FetchPage(ctx, fetch.NewTarget(qualified, HomepageLabel, c.cfg.HomepageCap, c.cfg.HomepageTimeout))
	if home != nil {
		corpus.TryAppend(types.SectionFromPage(home))
	}

	targets := candidateTargets(origin, c.cfg.CandidateCap, c.cfg.CandidateTimeout)
	slots := c.fetchAll(ctx, targets)

	for i, page := range slots {
		if page == nil {
			continue
		}
		if corpus.HasDuplicatePrefix(page.Content, DuplicatePrefixChars) {
			c.log.Debug("duplicate page skipped", zap.String("label", targets[i].Label), zap.String("url", page.URL))
			continue
		}
		if !corpus.TryAppend(types.SectionFromPage(page)) {
			c.log.Debug("corpus budget reached", zap.String("label", targets[i].Label), zap.Int("chars", corpus.Chars))
			break
		}
	}

	metrics.ObserveCorpus(corpus.PageCount())
	metrics.ObserveStage("crawl", time.Since(start))
	c.log.Info("crawl finished",
		zap.String("url", origin),
		zap.Int("pages", corpus.PageCount()),
		zap.Int("chars", corpus.Chars),
		zap.Duration("duration", time.Since(start)),
	)
	return corpus
}

// fetchAll settles every target. Each task writes only its own slot and
// never returns an error, so one failure cannot cancel its siblings.
func (c *Crawler) fetchAll(ctx context.Context, targets []fetch.Target) []*types.PageResult {
	slots := make([]*types.PageResult, len(targets))

	var g errgroup.Group
	if c.cfg.Concurrency > 0 {
		g.SetLimit(c.cfg.Concurrency)
	}
	for i, target := range targets {
		g.Go(func() error {
			slots[i] = c.fetcher.FetchPage(ctx, target)
			return nil
		})
	}
	_ = g.Wait()

	return slots
}
