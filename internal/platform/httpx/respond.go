// Package httpx provides JSON response utilities and the API error
// payload shape.
package httpx

import (
	"encoding/json"
	"net/http"
)

// APIError is one entry of the error payload returned on any failure.
type APIError struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Message string `json:"message"`
}

// ErrorPayload is the body shape of every error response:
// {"errors":[{"name","type","message"}]}.
type ErrorPayload struct {
	Errors []APIError `json:"errors"`
}

// NewErrorPayload wraps a single error entry in the payload envelope.
func NewErrorPayload(name, kind, message string) ErrorPayload {
	return ErrorPayload{Errors: []APIError{{Name: name, Type: kind, Message: message}}}
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// NoContent writes a bare 204 response.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// DecodeJSON decodes the JSON request body into the target struct.
func DecodeJSON(r *http.Request, target any) error {
	return json.NewDecoder(r.Body).Decode(target)
}
