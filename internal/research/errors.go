// Package research gathers public web search evidence about a company
// through an ordered chain of search strategies.
package research

import "fmt"

// SearchError represents a failed search strategy attempt.
// It is logged and never surfaced to callers of the aggregator.
type SearchError struct {
	Strategy   string
	Message    string
	StatusCode int
	Cause      error
}

func (e *SearchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("search error (%s): %s: %v", e.Strategy, e.Message, e.Cause)
	}
	return fmt.Sprintf("search error (%s): %s", e.Strategy, e.Message)
}

func (e *SearchError) Unwrap() error {
	return e.Cause
}
