package observability

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/brand-analyzer/internal/types"
)

func sampleResult() *types.AnalysisResult {
	return &types.AnalysisResult{
		Report: types.AnalysisReport{
			Company: types.CompanyProfile{Name: "艾克米", NameEn: "Acme", Industry: "Tools", Positioning: "Premium anvils"},
			SWOT: types.SWOT{
				Strengths:     []string{"Brand", "Quality", "Reach", "Price", "Service", "Speed", "Scale"},
				Weaknesses:    []string{"Cost"},
				Opportunities: []string{"Export"},
				Threats:       []string{"Imports"},
			},
			PainPoints: []types.PainPoint{{Issue: "Low awareness"}, {Issue: "Thin content"}, {Issue: "No reviews"}},
			Strategies: []types.Strategy{{Name: "SEO"}, {Name: "Video"}, {Name: "Partners"}, {Name: "Events"}},
			KPIs:       []types.KPI{{Name: "Traffic", Current: "1k", Target: "5k", ProgressPct: 20}},
		},
		Meta: types.AnalysisMeta{ReportID: "r-1", PagesCrawled: 4, SnippetsFound: 5, Provider: "openai", Model: "kimi-k2-0711"},
	}
}

func TestPrintResult(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintResult(sampleResult())
	output := buf.String()

	assert.Contains(t, output, "BRAND ANALYSIS")
	assert.Contains(t, output, "艾克米 (Acme)")
	assert.Contains(t, output, "Low awareness")
	assert.Contains(t, output, "Traffic: 1k → 5k (20%)")
	assert.Contains(t, output, "... and 2 more")
	assert.NotContains(t, output, "Scale")
	assert.Contains(t, output, "4 pages · 5 search results")
}

func TestPrintResult_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintResult(nil)
	assert.Empty(t, buf.String())
}

func TestPrintCorpus(t *testing.T) {
	corpus := types.NewAggregatedCorpus("https://acme.example", 0)
	corpus.TryAppend(types.CorpusSection{Label: "homepage", URL: "https://acme.example", Content: "Anvils"})

	var buf bytes.Buffer
	NewPrinter(&buf).PrintCorpus(corpus)
	output := buf.String()

	assert.Contains(t, output, "WEBSITE CORPUS")
	assert.Contains(t, output, "[homepage] https://acme.example (6 chars)")
}

func TestPrintCorpus_Empty(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintCorpus(types.NewAggregatedCorpus("https://acme.example", 0))
	assert.Contains(t, buf.String(), "No page could be fetched.")
}

func TestPrintSearchResults(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintSearchResults("duckduckgo", []types.SearchSnippet{types.NewSearchSnippet("Acme", "https://acme.example", "x", "duckduckgo")})
	assert.Contains(t, buf.String(), "Strategy: duckduckgo")

	buf.Reset()
	p.PrintSearchResults("", nil)
	assert.Contains(t, buf.String(), "No search results.")
}

func TestPrintBox_TruncatesLongLines(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).printBox("T", strings.Repeat("長", 200))

	for _, line := range strings.Split(buf.String(), "\n") {
		assert.LessOrEqual(t, types.CharLen(line), boxWidth)
	}
	assert.Contains(t, buf.String(), "...")
}
