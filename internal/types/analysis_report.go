// Package types provides type definitions for structured data used throughout the brand-analyzer system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// reportValidator reports field paths using JSON names.
var reportValidator = func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}()

// CompanyProfile summarizes who the company is
type CompanyProfile struct {
	Name        string `json:"name" validate:"required"`
	NameEn      string `json:"nameEn"`
	Industry    string `json:"industry"`
	Founded     string `json:"founded"`
	Products    string `json:"products"`
	Location    string `json:"location"`
	Positioning string `json:"positioning"`
}

// SWOT holds the four analysis quadrants. Every quadrant must be non-empty.
type SWOT struct {
	Strengths     []string `json:"strengths" validate:"min=1,dive,required"`
	Weaknesses    []string `json:"weaknesses" validate:"min=1,dive,required"`
	Opportunities []string `json:"opportunities" validate:"min=1,dive,required"`
	Threats       []string `json:"threats" validate:"min=1,dive,required"`
}

// PainPoint is a diagnosed marketing problem
type PainPoint struct {
	Issue  string `json:"issue" validate:"required"`
	Impact string `json:"impact"`
}

// Strategy is a recommended marketing action
type Strategy struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Benefit     string `json:"benefit"`
}

// KPI is a measurable target. ProgressPct is current/target as an integer percent.
type KPI struct {
	Name        string  `json:"name" validate:"required"`
	Current     string  `json:"current"`
	Target      string  `json:"target"`
	Timeframe   string  `json:"timeframe"`
	ProgressPct Percent `json:"progressPct" validate:"min=0,max=100"`
}

// Percent is an integer percentage. JSON Schema treats 10.0 as an integer,
// so whole-number floats decode; fractional values do not.
type Percent int

// UnmarshalJSON implements json.Unmarshaler.
func (p *Percent) UnmarshalJSON(data []byte) error {
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("percent must be a number, got %s", data)
	}
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return fmt.Errorf("percent must be an integer, got %s", data)
	}
	*p = Percent(f)
	return nil
}

// AnalysisReport is the structured brand analysis produced by the model.
// It is created once per request and not modified after validation.
type AnalysisReport struct {
	Company    CompanyProfile `json:"company"`
	SWOT       SWOT           `json:"swot"`
	PainPoints []PainPoint    `json:"painPoints" validate:"min=3,dive"`
	Strategies []Strategy     `json:"strategies" validate:"min=4,dive"`
	KPIs       []KPI          `json:"kpis" validate:"min=3,dive"`
}

// Validate checks the structural and numeric constraints of the report.
func (r *AnalysisReport) Validate() error {
	return reportValidator.Struct(r)
}

// AnalysisMeta describes the request a report was produced for
type AnalysisMeta struct {
	ReportID      string    `json:"reportId"`
	URL           string    `json:"url"`
	CompanyName   string    `json:"companyName"`
	AnalyzedAt    time.Time `json:"analyzedAt"`
	PagesCrawled  int       `json:"pagesCrawled"`
	SnippetsFound int       `json:"snippetsFound"`
	Provider      string    `json:"provider,omitempty"`
	Model         string    `json:"model,omitempty"`
}

// AnalysisResult is the pipeline's success artifact
type AnalysisResult struct {
	Report AnalysisReport `json:"analysis"`
	Meta   AnalysisMeta   `json:"meta"`
}
