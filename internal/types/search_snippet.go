// Package types provides type definitions for structured data used throughout the brand-analyzer system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"fmt"
	"strings"
)

const (
	// MaxSnippets is the number of search results kept per query
	MaxSnippets = 5
	// MaxExcerptChars caps each snippet excerpt
	MaxExcerptChars = 500
)

// SearchSnippet is one normalized search hit, regardless of which search path produced it
type SearchSnippet struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Excerpt string `json:"excerpt"`
	Source  string `json:"source,omitempty"` // strategy that produced it
}

// NewSearchSnippet builds a snippet with the excerpt capped to MaxExcerptChars.
func NewSearchSnippet(title, url, excerpt, source string) SearchSnippet {
	return SearchSnippet{
		Title:   strings.TrimSpace(title),
		URL:     strings.TrimSpace(url),
		Excerpt: Truncate(strings.TrimSpace(excerpt), MaxExcerptChars),
		Source:  source,
	}
}

// Render formats the snippet as a "### title / url / excerpt" block.
func (s SearchSnippet) Render() string {
	return fmt.Sprintf("### %s\n%s\n%s", s.Title, s.URL, s.Excerpt)
}

// RenderSnippets renders at most MaxSnippets snippets joined by blank lines.
// An empty slice renders as the empty string.
func RenderSnippets(snippets []SearchSnippet) string {
	if len(snippets) > MaxSnippets {
		snippets = snippets[:MaxSnippets]
	}
	blocks := make([]string, 0, len(snippets))
	for _, s := range snippets {
		blocks = append(blocks, s.Render())
	}
	return strings.Join(blocks, "\n\n")
}
