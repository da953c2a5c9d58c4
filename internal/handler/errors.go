package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/askelund/tripdates/internal/domain"
)

// errorResponse is the JSON error body for every non-2xx response.
type errorResponse struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// respondJSON writes v as the JSON response body with the given status.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// respondBadRequest rejects a request before it reaches the service layer
// (malformed body, bad path parameter, missing member header).
func respondBadRequest(w http.ResponseWriter, message string) {
	respondJSON(w, http.StatusBadRequest, errorResponse{
		Error: errorDetail{Code: "bad_request", Message: message},
	})
}

// respondError maps a service error onto the HTTP status and error code the
// taxonomy prescribes. Anything unrecognized is a 500 with the detail kept
// out of the response body.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	var stateErr *domain.StateError

	switch {
	case errors.Is(err, domain.ErrNotFound):
		respondJSON(w, http.StatusNotFound, errorResponse{
			Error: errorDetail{Code: "not_found", Message: "trip not found"},
		})
	case errors.As(err, &stateErr):
		respondJSON(w, http.StatusConflict, errorResponse{
			Error: errorDetail{Code: "state_error", Message: stateErr.Error()},
		})
	case errors.Is(err, domain.ErrConflict):
		respondJSON(w, http.StatusConflict, errorResponse{
			Error: errorDetail{Code: "conflict", Message: "the trip changed state during the request; re-read and retry"},
		})
	case errors.Is(err, domain.ErrPermission):
		respondJSON(w, http.StatusForbidden, errorResponse{
			Error: errorDetail{Code: "permission_denied", Message: unwrapMessage(err)},
		})
	case errors.Is(err, domain.ErrInvalidWindow):
		respondJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error: errorDetail{Code: "invalid_window", Message: unwrapMessage(err)},
		})
	case errors.Is(err, domain.ErrDuplicateWindow):
		respondJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error: errorDetail{Code: "duplicate_window", Message: unwrapMessage(err)},
		})
	case errors.Is(err, domain.ErrInvalidOption):
		respondJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error: errorDetail{Code: "invalid_option", Message: unwrapMessage(err)},
		})
	case errors.Is(err, domain.ErrValidation):
		respondJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error: errorDetail{Code: "validation_error", Message: unwrapMessage(err)},
		})
	default:
		slog.ErrorContext(r.Context(), "internal error", "error", err)
		respondJSON(w, http.StatusInternalServerError, errorResponse{
			Error: errorDetail{Code: "internal", Message: "internal server error"},
		})
	}
}

// unwrapMessage strips the layer prefixes and sentinel text from a wrapped
// error so clients see only the human-readable part.
// e.g. "service.ScheduleService.SubmitPick: invalid window: 2025-06-09 ..."
// becomes "2025-06-09 ...".
func unwrapMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	for _, sentinel := range []string{
		"validation error: ",
		"invalid window: ",
		"duplicate window: ",
		"invalid option: ",
		"permission denied: ",
	} {
		if i := strings.Index(msg, sentinel); i >= 0 {
			return msg[i+len(sentinel):]
		}
	}
	return msg
}
