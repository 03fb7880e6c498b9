// Package httpx provides the JSON result envelope used by every API handler.
package httpx

import (
	"errors"
	"net/http"

	"github.com/railyard/railyard/internal/shared"
)

// StatusFor maps a domain error to its HTTP status code.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, shared.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, shared.ErrProfileNotFound),
		errors.Is(err, shared.ErrNotAMember),
		errors.Is(err, shared.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, shared.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Error writes err as {"error": "..."} with the mapped status.
func Error(w http.ResponseWriter, err error) {
	JSON(w, StatusFor(err), Failure{Error: shared.PublicMessage(err)})
}
