package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/brand-analyzer/internal/llm"
	"github.com/jonathan/brand-analyzer/internal/metrics"
	"github.com/jonathan/brand-analyzer/internal/prompts"
	"github.com/jonathan/brand-analyzer/internal/schemas"
	"github.com/jonathan/brand-analyzer/internal/types"
)

// NoWebsiteContent stands in for the corpus when no site was crawled.
const NoWebsiteContent = "(no website content provided)"

// DefaultLanguage is the report language used when none is configured.
const DefaultLanguage = "Traditional Chinese"

// DefaultTimeout bounds one model call.
const DefaultTimeout = 90 * time.Second

// Material is the evidence gathered for one company.
type Material struct {
	URL         string
	Corpus      string
	SearchBlock string
}

// Config controls an Extractor. Zero values select defaults.
type Config struct {
	Tier     llm.ModelTier
	Language string
	Timeout  time.Duration
}

// Extractor produces reports through an llm.Client.
type Extractor struct {
	client llm.Client
	cfg    Config
	log    *zap.Logger
}

// New creates an Extractor. A nil logger disables logging.
func New(client llm.Client, cfg Config, log *zap.Logger) *Extractor {
	if cfg.Tier == "" {
		cfg.Tier = llm.TierStandard
	}
	if cfg.Language == "" {
		cfg.Language = DefaultLanguage
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Extractor{client: client, cfg: cfg, log: log.Named("analysis")}
}

// Model returns the model name used for extraction.
func (e *Extractor) Model() string {
	return e.client.GetModel(e.cfg.Tier)
}

// Provider returns the backing provider name.
func (e *Extractor) Provider() string {
	return string(e.client.Provider())
}

// DefaultInstructions renders the built-in analyst instructions for language.
func DefaultInstructions(language string) (string, error) {
	if language == "" {
		language = DefaultLanguage
	}
	return prompts.Render(prompts.AnalysisFile, prompts.KeyAnalysisSystem, map[string]string{"Language": language})
}

// BuildUserMessage embeds the material into the user prompt. An empty corpus
// is replaced by NoWebsiteContent; the search section appears only when
// there are search results.
func BuildUserMessage(m Material) (string, error) {
	corpus := m.Corpus
	if strings.TrimSpace(corpus) == "" {
		corpus = NoWebsiteContent
	}

	searchSection := ""
	if strings.TrimSpace(m.SearchBlock) != "" {
		var err error
		searchSection, err = prompts.Render(prompts.AnalysisFile, prompts.KeyAnalysisSearchSection, map[string]string{
			"SearchResults": m.SearchBlock,
		})
		if err != nil {
			return "", err
		}
	}

	return prompts.Render(prompts.AnalysisFile, prompts.KeyAnalysisUser, map[string]string{
		"URL":            m.URL,
		"WebsiteContent": corpus,
		"SearchSection":  searchSection,
	})
}

// ExtractReport makes one structured model call and returns the validated
// report. Empty instructions select DefaultInstructions. Failures are
// *UpstreamError for the call itself and *SchemaViolationError for output
// that does not decode into a valid report.
func (e *Extractor) ExtractReport(ctx context.Context, m Material, instructions string) (*types.AnalysisReport, error) {
	start := time.Now()
	provider := e.Provider()

	if instructions == "" {
		var err error
		instructions, err = DefaultInstructions(e.cfg.Language)
		if err != nil {
			return nil, fmt.Errorf("failed to load analysis instructions: %w", err)
		}
	}
	prompt, err := BuildUserMessage(m)
	if err != nil {
		return nil, fmt.Errorf("failed to build analysis prompt: %w", err)
	}
	schema, err := schemas.AsMap(schemas.AnalysisReportName)
	if err != nil {
		return nil, fmt.Errorf("failed to load report schema: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	raw, err := e.client.GenerateStructured(callCtx, llm.StructuredRequest{
		System:     instructions,
		Prompt:     prompt,
		SchemaName: schemas.AnalysisReportName,
		Schema:     schema,
		Tier:       e.cfg.Tier,
	})
	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) && !errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %v", context.DeadlineExceeded, err)
		}
		metrics.ObserveExtraction(provider, "upstream_error")
		e.log.Warn("model call failed",
			zap.String("stage", "extract"),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return nil, &UpstreamError{Provider: provider, Message: "model call failed", Cause: err}
	}

	report, err := DecodeReport(raw)
	if err != nil {
		metrics.ObserveExtraction(provider, "schema_violation")
		e.log.Warn("model output rejected",
			zap.String("stage", "extract"),
			zap.Int("raw_chars", types.CharLen(raw)),
			zap.Error(err),
		)
		return nil, err
	}

	metrics.ObserveExtraction(provider, "ok")
	metrics.ObserveStage("extract", time.Since(start))
	e.log.Info("report extracted",
		zap.String("stage", "extract"),
		zap.String("model", e.Model()),
		zap.Duration("duration", time.Since(start)),
	)
	return report, nil
}
