package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/brand-analyzer/internal/analysis"
	"github.com/jonathan/brand-analyzer/internal/config"
	"github.com/jonathan/brand-analyzer/internal/crawling"
	"github.com/jonathan/brand-analyzer/internal/db"
	"github.com/jonathan/brand-analyzer/internal/fetch"
	"github.com/jonathan/brand-analyzer/internal/llm"
	"github.com/jonathan/brand-analyzer/internal/pipeline"
	"github.com/jonathan/brand-analyzer/internal/research"
	"github.com/jonathan/brand-analyzer/internal/server"
	"github.com/jonathan/brand-analyzer/internal/server/ratelimit"
)

// app holds the wired components for one process.
type app struct {
	cfg       *config.Config
	log       *zap.Logger
	crawler   *crawling.Crawler
	searcher  *research.Aggregator
	llm       llm.Client
	extractor *analysis.Extractor
	reports   db.ReportStore
	pipeline  *pipeline.Pipeline
}

// newApp wires every component from cfg. The model client is left nil when
// no credential is configured; requests then fail with a configuration error.
func newApp(ctx context.Context, cfg *config.Config, log *zap.Logger, withArchive bool) (*app, error) {
	client := &http.Client{}
	a := &app{
		cfg:      cfg,
		log:      log,
		crawler:  crawling.New(newFetcher(cfg.Reader, client, log), crawlConfig(cfg.Crawl), log),
		searcher: newSearcher(ctx, cfg.Search, client, log),
	}

	llmClient, err := newLLMClient(ctx, cfg.LLM)
	if err != nil {
		return nil, err
	}
	deps := pipeline.Deps{Crawler: a.crawler, Searcher: a.searcher}
	if llmClient != nil {
		a.llm = llmClient
		a.extractor = analysis.New(llmClient, analysisConfig(cfg.Analysis), log)
		deps.Extractor = a.extractor
	} else {
		log.Warn("no model API key configured; analysis requests will fail", zap.String("provider", cfg.LLM.Provider))
	}

	if withArchive {
		reports, err := db.Open(ctx, cfg.Database.URL, cfg.Database.MemoryLimit)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to open report archive: %w", err)
		}
		a.reports = reports
		deps.Archive = reports
	}

	a.pipeline = pipeline.New(deps, log)
	return a, nil
}

// Close releases the model client and the archive.
func (a *app) Close() {
	if a.llm != nil {
		if err := a.llm.Close(); err != nil {
			a.log.Warn("failed to close model client", zap.Error(err))
		}
	}
	if a.reports != nil {
		a.reports.Close()
	}
}

func newFetcher(cfg config.ReaderConfig, client *http.Client, log *zap.Logger) fetch.PageFetcher {
	if cfg.Mode == config.ReaderModeDirect {
		return fetch.NewDirectReader(client, cfg.UserAgent, log)
	}
	return fetch.NewServiceReader(fetch.ReaderConfig{Endpoint: cfg.Endpoint, APIKey: cfg.APIKey, Client: client}, log)
}

func crawlConfig(cfg config.CrawlConfig) crawling.Config {
	return crawling.Config{
		Budget:           cfg.Budget,
		HomepageCap:      cfg.HomepageCap,
		HomepageTimeout:  cfg.HomepageTimeout,
		CandidateCap:     cfg.CandidateCap,
		CandidateTimeout: cfg.CandidateTimeout,
		Concurrency:      cfg.Concurrency,
	}
}

// newSearcher builds the strategy chain: reader search, Google when
// configured, then DuckDuckGo.
func newSearcher(ctx context.Context, cfg config.SearchConfig, client *http.Client, log *zap.Logger) *research.Aggregator {
	strategies := []research.Strategy{
		research.NewReaderSearch(research.ReaderSearchConfig{
			Endpoint: cfg.Endpoint,
			APIKey:   cfg.APIKey,
			Timeout:  cfg.Timeout,
			Client:   client,
		}),
	}
	if cfg.GoogleEnabled() {
		google, err := research.NewGoogleCustomSearch(ctx, cfg.GoogleAPIKey, cfg.GoogleCX)
		if err != nil {
			log.Warn("google custom search disabled", zap.Error(err))
		} else {
			strategies = append(strategies, google)
		}
	}
	strategies = append(strategies, research.NewDuckDuckGo(cfg.DuckDuckGoEndpoint, cfg.DuckDuckGoTimeout, client))
	return research.NewAggregator(log, strategies...)
}

// newLLMClient returns nil, nil when the selected provider has no key.
func newLLMClient(ctx context.Context, cfg config.LLMConfig) (llm.Client, error) {
	key := cfg.Key()
	if key == "" {
		return nil, nil
	}
	llmCfg, err := llm.ConfigFor(llm.Provider(cfg.Provider))
	if err != nil {
		return nil, err
	}
	if cfg.BaseURL != "" {
		llmCfg.BaseURL = cfg.BaseURL
	}
	if cfg.Model != "" {
		llmCfg = llmCfg.WithAllModels(cfg.Model)
	}
	llmCfg.Temperature = cfg.Temperature
	llmCfg.StrictSchema = cfg.StrictSchema

	client, err := llm.NewClient(ctx, llmCfg, key)
	if err != nil {
		return nil, fmt.Errorf("failed to create model client: %w", err)
	}
	return client, nil
}

func analysisConfig(cfg config.AnalysisConfig) analysis.Config {
	return analysis.Config{
		Tier:     llm.ModelTier(cfg.Tier),
		Language: cfg.Language,
		Timeout:  cfg.Timeout,
	}
}

func serverConfig(cfg *config.Config) server.Config {
	rl := ratelimit.DefaultConfig()
	rl.Enabled = cfg.RateLimit.Enabled
	rl.DefaultLimit = cfg.RateLimit.DefaultLimit
	rl.DefaultWindow = cfg.RateLimit.DefaultWindow
	rl.Whitelist = ratelimit.ParseIPList(cfg.RateLimit.Whitelist)
	rl.Blacklist = ratelimit.ParseIPList(cfg.RateLimit.Blacklist)

	return server.Config{
		Port:            cfg.Server.Port,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		RateLimit:       rl,
		APIKeys:         strings.Split(cfg.Server.APIKeys, ","),
	}
}
