// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/brand-analyzer/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 72
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s\n", title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		if types.CharLen(line) > boxWidth-4 {
			line = types.Truncate(line, boxWidth-7) + "..."
		}
		fmt.Fprintf(p.out, "│ %s\n", line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// writeList writes up to maxItemsToShow items with an overflow note.
func writeList(sb *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(heading + ":\n")
	for _, item := range items[:min(len(items), maxItemsToShow)] {
		fmt.Fprintf(sb, "  • %s\n", item)
	}
	if len(items) > maxItemsToShow {
		fmt.Fprintf(sb, "  ... and %d more\n", len(items)-maxItemsToShow)
	}
}

// PrintCorpus outputs which pages made it into the corpus.
func (p *Printer) PrintCorpus(corpus *types.AggregatedCorpus) {
	if corpus == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Site:   %s\n", corpus.BaseURL)
	fmt.Fprintf(&sb, "Pages:  %d\n", corpus.PageCount())
	fmt.Fprintf(&sb, "Chars:  %d\n", corpus.Chars)
	if corpus.Empty() {
		sb.WriteString("\nNo page could be fetched.")
	} else {
		sb.WriteString("\n")
		for _, s := range corpus.Sections {
			fmt.Fprintf(&sb, "  • [%s] %s (%d chars)\n", s.Label, s.URL, types.CharLen(s.Content))
		}
	}

	p.printBox("WEBSITE CORPUS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSearchResults outputs the snippets the winning strategy returned.
func (p *Printer) PrintSearchResults(strategy string, snippets []types.SearchSnippet) {
	var sb strings.Builder
	if len(snippets) == 0 {
		sb.WriteString("No search results.")
	} else {
		fmt.Fprintf(&sb, "Strategy: %s\n\n", strategy)
		for _, s := range snippets {
			fmt.Fprintf(&sb, "• %s\n  %s\n", s.Title, s.URL)
		}
	}
	p.printBox("SEARCH RESULTS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintResult outputs a human-readable summary of an analysis result.
func (p *Printer) PrintResult(result *types.AnalysisResult) {
	if result == nil {
		return
	}
	r := result.Report

	var sb strings.Builder
	fmt.Fprintf(&sb, "Company:     %s", r.Company.Name)
	if r.Company.NameEn != "" {
		fmt.Fprintf(&sb, " (%s)", r.Company.NameEn)
	}
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "Industry:    %s\n", r.Company.Industry)
	fmt.Fprintf(&sb, "Positioning: %s\n\n", r.Company.Positioning)

	writeList(&sb, "Strengths", r.SWOT.Strengths)
	writeList(&sb, "Weaknesses", r.SWOT.Weaknesses)
	writeList(&sb, "Opportunities", r.SWOT.Opportunities)
	writeList(&sb, "Threats", r.SWOT.Threats)

	issues := make([]string, 0, len(r.PainPoints))
	for _, pp := range r.PainPoints {
		issues = append(issues, pp.Issue)
	}
	writeList(&sb, "Pain points", issues)

	names := make([]string, 0, len(r.Strategies))
	for _, s := range r.Strategies {
		names = append(names, s.Name)
	}
	writeList(&sb, "Strategies", names)

	kpis := make([]string, 0, len(r.KPIs))
	for _, k := range r.KPIs {
		kpis = append(kpis, fmt.Sprintf("%s: %s → %s (%d%%)", k.Name, k.Current, k.Target, k.ProgressPct))
	}
	writeList(&sb, "KPIs", kpis)

	m := result.Meta
	fmt.Fprintf(&sb, "\nReport %s · %d pages · %d search results · %s/%s",
		m.ReportID, m.PagesCrawled, m.SnippetsFound, m.Provider, m.Model)

	p.printBox("BRAND ANALYSIS", sb.String())
}
