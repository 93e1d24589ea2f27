package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/jonathan/brand-analyzer/internal/pipeline"
	"github.com/jonathan/brand-analyzer/internal/types"
)

const maxRequestBytes = 64 << 10

var requestValidator = newRequestValidator()

func newRequestValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	})
	return v
}

// AnalyzeRequest is the body of the analyze endpoints.
type AnalyzeRequest struct {
	URL         string `json:"url" validate:"omitempty,max=2048"`
	CompanyName string `json:"companyName" validate:"omitempty,max=256"`
}

// AnalyzeResponse is the success body of POST /api/analyze.
type AnalyzeResponse struct {
	Success  bool                 `json:"success"`
	Analysis types.AnalysisReport `json:"analysis"`
	Meta     types.AnalysisMeta   `json:"meta"`
}

func newAnalyzeResponse(result *types.AnalysisResult) AnalyzeResponse {
	return AnalyzeResponse{Success: true, Analysis: result.Report, Meta: result.Meta}
}

// decodeAnalyzeRequest reads and checks the request body.
func decodeAnalyzeRequest(r *http.Request, w http.ResponseWriter) (pipeline.Request, error) {
	var body AnalyzeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&body); err != nil {
		return pipeline.Request{}, &ErrValidation{Field: "body", Message: "invalid JSON"}
	}
	if err := requestValidator.Struct(body); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return pipeline.Request{}, &ErrValidation{Field: fieldErrs[0].Field(), Message: "must be at most " + fieldErrs[0].Param() + " characters"}
		}
		return pipeline.Request{}, &ErrValidation{Field: "body", Message: err.Error()}
	}
	return pipeline.Request{URL: body.URL, CompanyName: body.CompanyName}, nil
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleAnalyze runs one analysis and returns the report.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	req, err := decodeAnalyzeRequest(r, w)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	result, err := s.analyzer.Analyze(r.Context(), req, nil)
	if err != nil {
		s.log.Warn("analysis request failed", zap.String("url", req.URL), zap.Error(err))
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, newAnalyzeResponse(result))
}

// handleAnalyzeStream runs one analysis, streaming progress as SSE.
func (s *Server) handleAnalyzeStream(w http.ResponseWriter, r *http.Request) {
	req, err := decodeAnalyzeRequest(r, w)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	onProgress := func(ev pipeline.ProgressEvent) {
		if err := sse.WriteEvent("progress", ev); err != nil {
			s.log.Debug("failed to write progress event", zap.Error(err))
		}
	}

	result, err := s.analyzer.Analyze(r.Context(), req, onProgress)
	if err != nil {
		_ = sse.WriteError(HTTPStatus(err), err.Error())
		return
	}
	_ = sse.WriteComplete(newAnalyzeResponse(result))
}

// handleGetReport returns an archived result by id.
func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	if s.reports == nil {
		s.errorResponse(w, http.StatusNotFound, "report archive is disabled")
		return
	}
	result, err := s.reports.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		status := HTTPStatus(err)
		if status != http.StatusNotFound {
			s.log.Error("failed to load report", zap.Error(err))
		}
		s.errorResponse(w, status, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, newAnalyzeResponse(result))
}

// handleListReports returns metadata of recent reports. ?limit defaults to 20.
func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	if s.reports == nil {
		s.jsonResponse(w, http.StatusOK, map[string]any{"reports": []types.AnalysisMeta{}})
		return
	}
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 100 {
			s.errorResponse(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = n
	}
	metas, err := s.reports.Recent(r.Context(), limit)
	if err != nil {
		s.log.Error("failed to list reports", zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "failed to list reports")
		return
	}
	if metas == nil {
		metas = []types.AnalysisMeta{}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"reports": metas})
}
