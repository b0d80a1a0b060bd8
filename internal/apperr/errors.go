// Package apperr defines the failure taxonomy shared by the case engine and its HTTP edge.
package apperr

import (
	"errors"
	"net/http"
)

var (
	// ErrForbidden: the principal lacks the role or ownership the operation needs.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidStatus: the requested status is not a workflow state.
	ErrInvalidStatus = errors.New("invalid status")
	// ErrNotFound: a case, message, user or notification id did not resolve.
	ErrNotFound = errors.New("not found")
	// ErrValidation: malformed input to create or send.
	ErrValidation = errors.New("validation error")
	// ErrStorage wraps failures of the storage transaction itself.
	ErrStorage = errors.New("storage error")
	// ErrUnauthorized: no principal could be authenticated from the request.
	ErrUnauthorized = errors.New("unauthorized")
)

// HTTPStatus maps an error from the taxonomy to the HTTP status code used in responses.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidStatus), errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// Code returns a short machine-readable name for err, used in JSON error bodies.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidStatus):
		return "invalid_status"
	case errors.Is(err, ErrValidation):
		return "validation_error"
	}
	return "storage_error"
}
