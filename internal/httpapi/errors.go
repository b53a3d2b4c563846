package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"flamed/internal/llm"
	"flamed/internal/manager"
	"flamed/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg, errType string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, ErrorType: errType})
}

// errorStatus maps a service error to its HTTP status and error_type.
func errorStatus(err error) (int, string) {
	switch {
	case llm.IsValidation(err):
		return http.StatusUnprocessableEntity, "validation"
	case llm.IsModelError(err):
		return http.StatusFailedDependency, "generation"
	case manager.IsModelNotFound(err):
		return http.StatusNotFound, "not_found"
	case manager.IsTooBusy(err):
		return http.StatusTooManyRequests, "overloaded"
	case manager.IsDependencyUnavailable(err):
		return http.StatusServiceUnavailable, "unavailable"
	case llm.IsCancelled(err):
		return http.StatusGatewayTimeout, "timeout"
	case llm.IsInvalidState(err):
		return http.StatusInternalServerError, "invalid_state"
	}
	var he HTTPError
	if errors.As(err, &he) {
		return he.StatusCode(), "internal"
	}
	return http.StatusInternalServerError, "internal"
}

// writeServiceError maps err and writes it; 429s are counted as backpressure.
func writeServiceError(w http.ResponseWriter, err error) int {
	status, errType := errorStatus(err)
	if status == http.StatusTooManyRequests {
		IncrementBackpressure(manager.TooBusyReason(err))
	}
	writeJSONError(w, status, err.Error(), errType)
	return status
}
