// Package analysis turns gathered company material into a validated brand
// analysis report with one structured model call.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jonathan/brand-analyzer/internal/schemas"
)

// SchemaViolationError means the model output did not decode into a valid report.
type SchemaViolationError struct {
	Violations []schemas.FieldError
	Cause      error
}

func (e *SchemaViolationError) Error() string {
	if len(e.Violations) == 0 {
		if e.Cause != nil {
			return fmt.Sprintf("model output violates report schema: %v", e.Cause)
		}
		return "model output violates report schema"
	}
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Field+": "+v.Message)
	}
	return "model output violates report schema: " + strings.Join(parts, "; ")
}

func (e *SchemaViolationError) Unwrap() error {
	return e.Cause
}

// UpstreamError means the model call itself failed.
type UpstreamError struct {
	Provider string
	Message  string
	Cause    error
}

func (e *UpstreamError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("model provider %s: %s: %v", e.Provider, e.Message, e.Cause)
	}
	return fmt.Sprintf("model provider %s: %s", e.Provider, e.Message)
}

func (e *UpstreamError) Unwrap() error {
	return e.Cause
}

// Timeout reports whether the call failed because its deadline passed.
func (e *UpstreamError) Timeout() bool {
	return errors.Is(e.Cause, context.DeadlineExceeded)
}
