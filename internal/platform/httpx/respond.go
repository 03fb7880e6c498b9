package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/railyard/railyard/internal/shared"
)

const maxBodyBytes = 1 << 20

// Success is the envelope for successful operations.
type Success struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// Failure is the envelope for failed operations.
type Failure struct {
	Error string `json:"error"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Result writes data on success or the mapped failure when err is non-nil.
func Result(w http.ResponseWriter, status int, data any, err error) {
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, status, Success{Success: true, Data: data})
}

// DecodeJSON decodes the request body into target, rejecting unknown fields.
func DecodeJSON(r *http.Request, target any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return shared.NewValidationError("body", "is required")
		}
		return shared.NewValidationError("body", "is malformed")
	}
	return nil
}
