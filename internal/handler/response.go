package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/clawhub/clawhub/internal/apperror"
)

// ErrorResponse is the error shape every endpoint returns:
// {"error": "not_found", "message": "skill not found with slug pdf-to-text"}.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps domain errors to HTTP. The service layer never sees
// status codes; the mapping lives here and only here.
//
// The identity-specific sentinels get their own error codes so API
// clients can distinguish "link your GitHub account" from "account too
// new" without string matching. Rate limiting from the upstream API is
// surfaced as 429 so clients back off; any other upstream failure is a
// 502 because the registry itself is healthy.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		errorType := "internal_error"

		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
			errorType = "validation_error"
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
			errorType = "not_found"
		case errors.Is(err, apperror.ErrAccountTooYoung):
			status = http.StatusForbidden
			errorType = "account_too_young"
		case errors.Is(err, apperror.ErrGitHubRequired):
			status = http.StatusForbidden
			errorType = "github_account_required"
		case errors.Is(err, apperror.ErrForbidden):
			status = http.StatusForbidden
			errorType = "forbidden"
		case errors.Is(err, apperror.ErrConflict):
			status = http.StatusConflict
			errorType = "conflict"
		case errors.Is(err, apperror.ErrRateLimited):
			status = http.StatusTooManyRequests
			errorType = "rate_limited"
		case errors.Is(err, apperror.ErrGitHubLookup):
			status = http.StatusBadGateway
			errorType = "github_lookup_failed"
		}

		writeJSON(w, status, ErrorResponse{
			Error:   errorType,
			Message: appErr.Message,
		})
		return
	}

	// Unknown errors stay opaque; raw messages can leak SQL or paths.
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}
