// Package apperr holds the error taxonomy shared by the service layers.
// Lower layers wrap these sentinels with fmt.Errorf("...: %w", ...) and the
// HTTP boundary classifies them with errors.Is.
package apperr

import (
	"errors"
	"net/http"
)

var (
	// ErrAuth covers missing sessions and edits that the caller may not make.
	ErrAuth = errors.New("not authorized")
	// ErrInvalidCredential is a bad password or template code.
	ErrInvalidCredential = errors.New("invalid credential")
	ErrNotFound          = errors.New("not found")
	// ErrConflict is a write that collides with an existing record.
	ErrConflict = errors.New("already exists")
	// ErrPersistence is any failed read or write against a backing store.
	ErrPersistence = errors.New("persistence failure")
	ErrValidation  = errors.New("validation failure")
	// ErrTooLarge is a ValidationFailure for payloads above a size ceiling.
	ErrTooLarge = errors.New("payload too large")
)

// Status maps an error onto the HTTP status the handlers answer with.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidCredential), errors.Is(err, ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrPersistence):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// Message is the user-facing text for an error class.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrInvalidCredential):
		return "invalid credentials"
	case errors.Is(err, ErrAuth):
		return "not authorized"
	case errors.Is(err, ErrNotFound):
		return "not found"
	case errors.Is(err, ErrConflict):
		return err.Error()
	case errors.Is(err, ErrTooLarge):
		return "file size must be under 2MB"
	case errors.Is(err, ErrValidation):
		return err.Error()
	case errors.Is(err, ErrPersistence):
		return "failed to save, please retry"
	}
	return "internal error"
}
