// Package crawling builds a bounded text corpus from a company website by
// probing a fixed set of well-known page paths.
package crawling

import (
	"net/url"
	"strings"
	"time"

	"github.com/jonathan/brand-analyzer/internal/fetch"
)

// HomepageLabel labels the homepage section of a corpus.
const HomepageLabel = "homepage"

// candidateLabels lists the paths probed under the site origin, highest priority first.
var candidateLabels = []string{
	"about", "about-us", "about_us", "aboutus", "our-story", "company",
	"service", "services", "our-services", "what-we-do",
	"portfolio", "work", "works", "projects", "case-studies", "cases",
	"product", "products",
	"team", "our-team",
	"contact", "contact-us",
	"pricing", "plans",
	"blog", "news",
}

// CandidateLabels returns a copy of the probed path labels in priority order.
func CandidateLabels() []string {
	out := make([]string, len(candidateLabels))
	copy(out, candidateLabels)
	return out
}

// NormalizeBase qualifies rawURL with https:// when it has no scheme and
// returns both the scheme-qualified URL and its scheme://host origin.
// When the URL cannot be parsed, the origin is the qualified URL without a
// trailing slash.
func NormalizeBase(rawURL string) (qualified string, origin string) {
	qualified = strings.TrimSpace(rawURL)
	if !strings.HasPrefix(qualified, "http://") && !strings.HasPrefix(qualified, "https://") {
		qualified = "https://" + qualified
	}

	parsed, err := url.Parse(qualified)
	if err != nil || parsed.Host == "" {
		return qualified, strings.TrimRight(qualified, "/")
	}
	return qualified, parsed.Scheme + "://" + parsed.Host
}

// candidateTargets builds one target per label under origin.
func candidateTargets(origin string, capChars int, timeout time.Duration) []fetch.Target {
	targets := make([]fetch.Target, 0, len(candidateLabels))
	for _, label := range candidateLabels {
		targets = append(targets, fetch.NewTarget(origin+"/"+label, label, capChars, timeout))
	}
	return targets
}
