package shared

import (
	"errors"
	"fmt"
)

var (
	// ErrNotAuthenticated indicates no actor identity could be resolved.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrProfileNotFound indicates the actor has no backing profile record.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrNotAMember indicates the actor holds no membership in the project.
	ErrNotAMember = errors.New("not a member of this project")
	// ErrPermissionDenied indicates the actor's project role lacks the action.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrNotFound indicates the entity does not exist within the project scope.
	ErrNotFound = errors.New("not found")
	// ErrValidation indicates malformed input.
	ErrValidation = errors.New("validation failed")
	// ErrAlreadyMember indicates a duplicate (actor, project) membership.
	ErrAlreadyMember = fmt.Errorf("%w: user is already a member of this project", ErrValidation)
	// ErrInvalidTransition indicates a status change the lifecycle does not allow.
	ErrInvalidTransition = fmt.Errorf("%w: invalid status transition", ErrValidation)
)

// ValidationError describes a single rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError builds a ValidationError for field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// Unwrap lets errors.Is match ErrValidation.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// PublicMessage maps err to the string exposed to callers.
func PublicMessage(err error) string {
	if err == nil {
		return ""
	}
	var verr *ValidationError
	switch {
	case errors.Is(err, ErrNotAuthenticated):
		return "Not authenticated"
	case errors.Is(err, ErrProfileNotFound):
		return "Profile not found"
	case errors.Is(err, ErrNotAMember):
		return "Not a member of this project"
	case errors.Is(err, ErrPermissionDenied):
		return "Permission denied"
	case errors.Is(err, ErrNotFound):
		return "Not found"
	case errors.As(err, &verr):
		return verr.Error()
	case errors.Is(err, ErrAlreadyMember):
		return "User is already a member of this project"
	case errors.Is(err, ErrInvalidTransition):
		return "Invalid status transition"
	case errors.Is(err, ErrValidation):
		return "Validation failed"
	default:
		return "Internal error"
	}
}
