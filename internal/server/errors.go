package server

import (
	"errors"
	"net/http"

	"github.com/jonathan/brand-analyzer/internal/analysis"
	"github.com/jonathan/brand-analyzer/internal/db"
	"github.com/jonathan/brand-analyzer/internal/pipeline"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return "validation error: " + e.Field + " - " + e.Message
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validationErr *ErrValidation
		inputErr      *pipeline.InputError
		configErr     *pipeline.ConfigError
		schemaErr     *analysis.SchemaViolationError
		upstreamErr   *analysis.UpstreamError
	)
	switch {
	case errors.As(err, &validationErr), errors.As(err, &inputErr):
		return http.StatusBadRequest
	case errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &configErr):
		return http.StatusInternalServerError
	case errors.As(err, &schemaErr):
		return http.StatusBadGateway
	case errors.As(err, &upstreamErr):
		if upstreamErr.Timeout() {
			return http.StatusGatewayTimeout
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
