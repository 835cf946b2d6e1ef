package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/HendryAvila/triz-master/internal/advisor"
	"github.com/HendryAvila/triz-master/internal/ai"
	"github.com/HendryAvila/triz-master/internal/history"
)

// ErrorCode is a stable machine-readable error identifier.
type ErrorCode string

const (
	CodeBadRequest       ErrorCode = "BAD_REQUEST"
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeUnknownParameter ErrorCode = "UNKNOWN_PARAMETER"
	CodeNoPrinciples     ErrorCode = "NO_PRINCIPLES"
	CodeAIDisabled       ErrorCode = "AI_DISABLED"
	CodeHistoryDisabled  ErrorCode = "HISTORY_DISABLED"
	CodeUpstreamError    ErrorCode = "UPSTREAM_ERROR"
	CodeUpstreamTimeout  ErrorCode = "UPSTREAM_UNAVAILABLE"
	CodeInternal         ErrorCode = "INTERNAL_ERROR"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error     ErrorDetails `json:"error"`
	Timestamp string       `json:"timestamp"`
	RequestID string       `json:"request_id,omitempty"`
}

// ErrorDetails describes one failure.
type ErrorDetails struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code ErrorCode, msg string) {
	writeJSON(w, status, ErrorResponse{
		Error:     ErrorDetails{Code: code, Message: msg},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		RequestID: middleware.GetReqID(r.Context()),
	})
}

// writeServiceError maps domain errors onto HTTP statuses.
func (rt *Router) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, advisor.ErrEmptyProblem):
		writeError(w, r, http.StatusBadRequest, CodeValidationFailed, err.Error())
	case errors.Is(err, advisor.ErrUnknownParameter):
		writeError(w, r, http.StatusUnprocessableEntity, CodeUnknownParameter, err.Error())
	case errors.Is(err, advisor.ErrNoPrinciples):
		writeError(w, r, http.StatusUnprocessableEntity, CodeNoPrinciples, err.Error())
	case errors.Is(err, advisor.ErrAIDisabled):
		writeError(w, r, http.StatusServiceUnavailable, CodeAIDisabled, err.Error())
	case errors.Is(err, history.ErrNotFound):
		writeError(w, r, http.StatusNotFound, CodeNotFound, err.Error())
	case ai.IsTransient(err):
		writeError(w, r, http.StatusServiceUnavailable, CodeUpstreamTimeout, err.Error())
	case errors.Is(err, ai.ErrInvalidPayload), errors.Is(err, ai.ErrEmptyResponse), ai.IsFatal(err):
		writeError(w, r, http.StatusBadGateway, CodeUpstreamError, err.Error())
	default:
		rt.logger.Error("request failed", "path", r.URL.Path, "error", err)
		writeError(w, r, http.StatusInternalServerError, CodeInternal, "internal error")
	}
}
