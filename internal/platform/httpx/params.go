package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/railyard/railyard/internal/shared"
)

// UUIDParam parses a UUID route parameter.
func UUIDParam(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, shared.NewValidationError(name, "must be a valid id")
	}
	return id, nil
}

// ScopedIDs parses the {projectID} and {id} route parameters.
func ScopedIDs(r *http.Request) (projectID, id uuid.UUID, err error) {
	if projectID, err = UUIDParam(r, "projectID"); err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	if id, err = UUIDParam(r, "id"); err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return projectID, id, nil
}
