// Package types provides type definitions for structured data used throughout the brand-analyzer system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// DefaultCorpusBudget is the maximum rendered size of a corpus, in characters.
	DefaultCorpusBudget = 30000
	// SectionSeparator separates rendered sections in a corpus.
	SectionSeparator = "\n\n---\n\n"
)

// PageResult is the readable content of one fetched page.
// A nil *PageResult means the page was absent; a non-nil one is always fully populated.
type PageResult struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Content     string `json:"content"`
	SourceLabel string `json:"source_label"`
}

// CorpusSection is one page rendered into the corpus
type CorpusSection struct {
	Label   string `json:"label"`
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// SectionFromPage builds a section from a fetched page
func SectionFromPage(page *PageResult) CorpusSection {
	return CorpusSection{
		Label:   page.SourceLabel,
		Title:   page.Title,
		URL:     page.URL,
		Content: page.Content,
	}
}

// Render formats the section as a Markdown block.
func (s CorpusSection) Render() string {
	return fmt.Sprintf("## %s\n**title:** %s\n**url:** %s\n\n%s", s.Label, s.Title, s.URL, s.Content)
}

// AggregatedCorpus is the ordered set of sections gathered for one site.
// Chars always equals the character length of Render() while at least one
// section is present, and never exceeds Budget.
type AggregatedCorpus struct {
	BaseURL  string          `json:"base_url"`
	Sections []CorpusSection `json:"sections"`
	Chars    int             `json:"chars"`
	Budget   int             `json:"budget"`
}

// NewAggregatedCorpus creates an empty corpus for baseURL.
// A non-positive budget selects DefaultCorpusBudget.
func NewAggregatedCorpus(baseURL string, budget int) *AggregatedCorpus {
	if budget <= 0 {
		budget = DefaultCorpusBudget
	}
	return &AggregatedCorpus{
		BaseURL:  baseURL,
		Sections: []CorpusSection{},
		Budget:   budget,
	}
}

// TryAppend appends section when the rendered corpus stays within budget.
// It reports whether the section was accepted. Sections are never truncated.
func (c *AggregatedCorpus) TryAppend(section CorpusSection) bool {
	next := c.sectionChars() + CharLen(section.Render())
	projected := renderedChars(len(c.Sections)+1, next)
	if projected > c.Budget {
		return false
	}
	c.Sections = append(c.Sections, section)
	c.Chars = projected
	return true
}

// HasDuplicatePrefix reports whether an accepted section's content starts
// with the same n characters as content.
func (c *AggregatedCorpus) HasDuplicatePrefix(content string, n int) bool {
	prefix := Truncate(content, n)
	for _, s := range c.Sections {
		if Truncate(s.Content, n) == prefix {
			return true
		}
	}
	return false
}

// PageCount returns the number of accepted sections
func (c *AggregatedCorpus) PageCount() int {
	return len(c.Sections)
}

// Empty reports whether no page was collected
func (c *AggregatedCorpus) Empty() bool {
	return len(c.Sections) == 0
}

// Render returns the corpus document. An empty corpus renders a placeholder
// naming the unreachable base URL.
func (c *AggregatedCorpus) Render() string {
	if c.Empty() {
		return Placeholder(c.BaseURL)
	}
	parts := make([]string, 0, len(c.Sections))
	for _, s := range c.Sections {
		parts = append(parts, s.Render())
	}
	return corpusHeader(len(c.Sections)) + strings.Join(parts, SectionSeparator)
}

// Placeholder is the corpus text used when no page of baseURL could be fetched.
func Placeholder(baseURL string) string {
	return fmt.Sprintf("(unable to crawl any page of %s)", baseURL)
}

func (c *AggregatedCorpus) sectionChars() int {
	total := 0
	for _, s := range c.Sections {
		total += CharLen(s.Render())
	}
	return total
}

func corpusHeader(pages int) string {
	return fmt.Sprintf("# Website content (%d pages crawled)\n\n", pages)
}

// renderedChars is the length of a rendered corpus holding n sections whose
// rendered bodies add up to sectionChars.
func renderedChars(n, sectionChars int) int {
	if n == 0 {
		return 0
	}
	return CharLen(corpusHeader(n)) + sectionChars + (n-1)*CharLen(SectionSeparator)
}

// CharLen counts characters (runes), not bytes.
func CharLen(s string) int {
	return utf8.RuneCountInString(s)
}

// Truncate hard-slices s to at most n characters.
func Truncate(s string, n int) string {
	if n < 0 {
		n = 0
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
