package analysis

import (
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/brand-analyzer/internal/llm"
	"github.com/jonathan/brand-analyzer/internal/schemas"
	"github.com/jonathan/brand-analyzer/internal/types"
)

// DecodeReport parses raw model output into a report. Output is fence
// stripped, checked against the report JSON Schema, decoded strictly, and
// checked against the struct constraints. Nothing is clamped or defaulted.
func DecodeReport(raw string) (*types.AnalysisReport, error) {
	text := llm.CleanJSONBlock(raw)
	if text == "" {
		return nil, &SchemaViolationError{Violations: []schemas.FieldError{{Field: "(root)", Message: "empty output"}}}
	}

	if err := schemas.Validate(schemas.AnalysisReportName, text); err != nil {
		var ve *schemas.ValidationError
		if errors.As(err, &ve) {
			return nil, &SchemaViolationError{Violations: ve.Errors, Cause: err}
		}
		return nil, &SchemaViolationError{Cause: err}
	}

	dec := json.NewDecoder(strings.NewReader(text))
	dec.DisallowUnknownFields()
	var report types.AnalysisReport
	if err := dec.Decode(&report); err != nil {
		return nil, &SchemaViolationError{
			Violations: []schemas.FieldError{{Field: "(root)", Message: err.Error()}},
			Cause:      err,
		}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, &SchemaViolationError{Violations: []schemas.FieldError{{Field: "(root)", Message: "trailing data after report"}}}
	}

	if err := report.Validate(); err != nil {
		return nil, &SchemaViolationError{Violations: fieldErrors(err), Cause: err}
	}
	return &report, nil
}

// fieldErrors flattens validator failures into JSON field paths.
func fieldErrors(err error) []schemas.FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []schemas.FieldError{{Field: "(root)", Message: err.Error()}}
	}
	out := make([]schemas.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Namespace()
		if _, rest, ok := strings.Cut(field, "."); ok {
			field = rest
		}
		msg := "failed " + fe.Tag()
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}
		out = append(out, schemas.FieldError{Field: field, Message: msg})
	}
	return out
}
