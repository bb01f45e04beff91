package web

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"figaroflows/internal/flows"
)

// APIError is the JSON body of every failed request.
type APIError struct {
	StatusCode int    `json:"status_code"`
	ErrorCode  string `json:"error_code"`
	Message    string `json:"message"`
	Details    any    `json:"details,omitempty"`
	RequestID  string `json:"request_id,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

// Render implements render.Renderer.
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

func newAPIError(statusCode int, errorCode, message string, details any) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
		Details:    details,
	}
}

func invalidParameter(name, message string) *APIError {
	return newAPIError(http.StatusBadRequest, "INVALID_PARAMETER", message, map[string]string{"parameter": name})
}

// flowError maps pipeline failures onto HTTP statuses.
func flowError(err error) *APIError {
	var flowErr *flows.Error
	switch {
	case errors.Is(err, flows.ErrMissingColumn) && errors.As(err, &flowErr):
		return newAPIError(http.StatusNotFound, "YEAR_NOT_FOUND", err.Error(), map[string]any{
			"year":            flowErr.Column,
			"available_years": flowErr.Available,
		})
	case errors.Is(err, flows.ErrIO), errors.Is(err, flows.ErrMalformedTable):
		return newAPIError(http.StatusInternalServerError, "DATASET_UNREADABLE", "Dataset could not be read", err.Error())
	default:
		return newAPIError(http.StatusInternalServerError, "FLOW_EXTRACTION_FAILED", "Flow extraction failed", err.Error())
	}
}
