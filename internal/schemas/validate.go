// Package schemas provides the embedded JSON Schemas for model output and
// validation against them.
package schemas

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// AnalysisReportName is the schema name announced to model providers.
const AnalysisReportName = "analysis_report"

//go:embed *.json
var schemaFS embed.FS

var (
	compiled   = map[string]*gojsonschema.Schema{}
	compiledMu sync.Mutex
)

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// SchemaLoadError represents errors loading or parsing the schema itself
type SchemaLoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Path, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// Raw returns the text of the embedded schema called name.
func Raw(name string) (string, error) {
	data, err := schemaFS.ReadFile(name + ".json")
	if err != nil {
		return "", &SchemaLoadError{Path: name, Message: "not embedded", Cause: err}
	}
	return string(data), nil
}

// providerUnsupported lists keywords strict structured-output modes reject.
// Validate still enforces them locally.
var providerUnsupported = []string{"$schema", "minLength", "maxLength"}

// AsMap decodes the named schema for providers that accept it as an object.
// Keywords in providerUnsupported are removed at every level.
func AsMap(name string) (map[string]any, error) {
	raw, err := Raw(name)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, &SchemaLoadError{Path: name, Message: "invalid JSON", Cause: err}
	}
	stripKeywords(out)
	return out, nil
}

func stripKeywords(node any) {
	switch n := node.(type) {
	case map[string]any:
		for _, k := range providerUnsupported {
			delete(n, k)
		}
		for _, child := range n {
			stripKeywords(child)
		}
	case []any:
		for _, child := range n {
			stripKeywords(child)
		}
	}
}

// Validate checks jsonContent against the named embedded schema.
func Validate(name, jsonContent string) error {
	schema, err := load(name)
	if err != nil {
		return err
	}
	result, err := schema.Validate(gojsonschema.NewStringLoader(jsonContent))
	if err != nil {
		return &ValidationError{Errors: []FieldError{{Field: "(root)", Message: err.Error()}}}
	}
	return fromResult(result)
}

func load(name string) (*gojsonschema.Schema, error) {
	compiledMu.Lock()
	defer compiledMu.Unlock()

	if s, ok := compiled[name]; ok {
		return s, nil
	}
	raw, err := Raw(name)
	if err != nil {
		return nil, err
	}
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(raw))
	if err != nil {
		return nil, &SchemaLoadError{Path: name, Message: "invalid schema", Cause: err}
	}
	compiled[name] = s
	return s, nil
}

func fromResult(result *gojsonschema.Result) error {
	if result.Valid() {
		return nil
	}
	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}
	return validationErr
}
