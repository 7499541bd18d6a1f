package httpx

import (
	"errors"
	"net/http"
)

// Sentinel errors shared across domain layers.
var (
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Well-known error payload names.
const (
	ErrNameBadRequest     = "error.http.badRequest"
	ErrNameNotFound       = "error.http.notFound"
	ErrNameUnauthorized   = "error.http.unauthorized"
	ErrNameInternalServer = "error.http.internalServer"
)

// BadRequest writes a 400 with the generic bad-request error name.
func BadRequest(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Bad request."
	}
	JSON(w, http.StatusBadRequest, NewErrorPayload(ErrNameBadRequest, "general", message))
}

// NotFound writes a 404 with the generic not-found error name.
func NotFound(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Not found."
	}
	JSON(w, http.StatusNotFound, NewErrorPayload(ErrNameNotFound, "general", message))
}

// Unauthorized writes a 401 with the generic unauthorized error name.
func Unauthorized(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Unauthorized."
	}
	JSON(w, http.StatusUnauthorized, NewErrorPayload(ErrNameUnauthorized, "general", message))
}

// InternalServer writes a 500 with the generic internal error name.
func InternalServer(w http.ResponseWriter) {
	JSON(w, http.StatusInternalServerError, NewErrorPayload(ErrNameInternalServer, "general", "Server error."))
}
