// Package apperror defines the application's error taxonomy.
//
// Every failure a service can return wraps exactly one of the sentinel errors
// below, so callers branch with errors.Is() instead of matching strings.
// The HTTP layer (handler/response.go) translates sentinels to status codes;
// the CLI translates them to user-facing messages. Only ErrRateLimited should
// ever trigger a caller-side backoff.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("conflict")
	ErrForbidden  = errors.New("forbidden")

	// GitHub identity verification failures. These are distinct sentinels
	// (not ErrForbidden variants) so callers can tell "come back in a few
	// days" apart from "link a GitHub account first" apart from "GitHub is
	// rate limiting us, try again later".
	ErrAccountTooYoung = errors.New("account too young")
	ErrGitHubRequired  = errors.New("github account required")
	ErrGitHubLookup    = errors.New("github lookup failed")
	ErrRateLimited     = errors.New("rate limit exceeded")
)

type AppError struct {
	Err     error  // sentinel this error wraps
	Message string // human-readable error message
	Field   string // optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict with id %s", resource, id),
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// AccountTooYoung is returned by the age gate when the verified GitHub
// account is younger than the minimum-age policy allows.
func AccountTooYoung(message string) *AppError {
	return &AppError{
		Err:     ErrAccountTooYoung,
		Message: message,
	}
}

// GitHubRequired is returned when a user has no linked GitHub identity at
// all, as opposed to a lookup that was attempted and failed.
func GitHubRequired(message string) *AppError {
	return &AppError{
		Err:     ErrGitHubRequired,
		Message: message,
	}
}

// GitHubLookup covers corrupt linkage, non-rate-limit HTTP failures, and
// malformed response bodies from the GitHub API.
func GitHubLookup(message string) *AppError {
	return &AppError{
		Err:     ErrGitHubLookup,
		Message: message,
	}
}

// RateLimited is returned when GitHub answers 403 or 429. Callers should
// not retry immediately.
func RateLimited(message string) *AppError {
	return &AppError{
		Err:     ErrRateLimited,
		Message: message,
	}
}
